package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"gift-box/internal/config"
	"gift-box/internal/fonts"
	"gift-box/internal/gesture"
)

// registerCommands adds the console commands. Output goes to the terminal log.
func (a *app) registerCommands() {
	reg := a.term.Registry()
	out := a.term

	reg.Register("tap", "tap the box as if clicked", nil, func([]string) error {
		res := a.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: time.Now()})
		fmt.Fprintf(out, "taps in burst: %d\n", res.Count)
		return nil
	})

	reg.Register("state", "print the gift box snapshot", nil, func([]string) error {
		data, err := json.Marshal(a.ctrl.Snapshot())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	})

	debugFlags := flag.NewFlagSet("debug", flag.ContinueOnError)
	fps := debugFlags.Bool("fps", false, "show FPS")
	mem := debugFlags.Bool("mem", false, "show heap size")
	state := debugFlags.Bool("state", false, "show gift state")
	reg.Register("debug", "set overlays: debug [-fps] [-mem] [-state]", debugFlags, func([]string) error {
		a.dbg.ShowFPS, a.dbg.ShowMemAlloc, a.dbg.ShowState = *fps, *mem, *state
		a.cfg.Debug = config.Debug{ShowFPS: *fps, ShowMemAlloc: *mem, ShowState: *state}
		// flag values persist between runs of the same FlagSet
		*fps, *mem, *state = false, false, false
		return nil
	})

	reg.Register("card", "draw a new card (after the box opened)", nil, func([]string) error {
		if !a.opened {
			return errors.New("the box is not open yet")
		}
		a.drawCard()
		return nil
	})

	reg.Register("close", "hide the card and stop the snow", nil, func([]string) error {
		a.closeReveal()
		return nil
	})

	reg.Register("font", "font [name]: set the card font, or save it to the download directory", nil, func(args []string) error {
		if a.card == nil {
			return errors.New("no card drawn")
		}
		if len(args) > 0 {
			m, err := fonts.Lookup(a.cfg.Card.FontsDir, a.fonts, strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.setCardFont(m)
			fmt.Fprintf(out, "card font: %s\n", m.File)
			return nil
		}
		if !a.card.HasFont() {
			return errors.New("no card font")
		}
		a.saveFont()
		return nil
	})

	reg.Register("fonts", "reload font_metadata.json", nil, func([]string) error {
		a.loadFonts()
		return nil
	})

	reg.Register("save", "write the current settings to the config file", nil, func([]string) error {
		if err := config.Save(a.cfgPath, a.cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "settings saved to %s\n", a.cfgPath)
		return nil
	})
}
