package main

import (
	"math/rand"
	"time"

	"gift-box/internal/logger"
	"gift-box/internal/sfx"

	"github.com/gopxl/beep/speaker"
)

const chimeVolume = 0.5

// audio plays the synthesized sounds from the frame loop. When the speaker cannot be opened
// every method is a no-op.
type audio struct {
	on  bool
	rng *rand.Rand
}

func newAudio(enabled bool, rng *rand.Rand, log *logger.Logger) *audio {
	a := &audio{rng: rng}
	if !enabled {
		log.Log("[Audio] disabled")
		return a
	}
	if err := speaker.Init(sfx.SampleRate, sfx.SampleRate.N(100*time.Millisecond)); err != nil {
		log.Logf("[Audio] speaker init: %v; sound disabled", err)
		return a
	}
	a.on = true
	return a
}

func (a *audio) rumble(d time.Duration, intensity float32) {
	if !a.on {
		return
	}
	speaker.Play(sfx.Rumble(d, float64(intensity), a.rng))
}

func (a *audio) chime() {
	if !a.on {
		return
	}
	speaker.Play(sfx.Chime(chimeVolume))
}

func (a *audio) close() {
	if a.on {
		speaker.Close()
		a.on = false
	}
}
