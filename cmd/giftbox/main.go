package main

import (
	"math/rand"
	"time"

	"gift-box/internal/config"
	"gift-box/internal/env"
	"gift-box/internal/graphics"
	"gift-box/internal/logger"
)

func main() {
	log := logger.New()
	if err := env.Load(".env"); err != nil {
		log.Logf("[Env] %v", err)
	}

	cfgPath := env.String(env.ConfigPath, config.Path)
	settings, err := config.Load(cfgPath)
	if err != nil {
		log.Logf("[Config] %v; using defaults", err)
	}

	a := newApp(settings, cfgPath, log, rand.New(rand.NewSource(time.Now().UnixNano())))
	defer a.close()

	graphics.Run(settings.Window, a.load, a.update, a.draw, a.unload)
}
