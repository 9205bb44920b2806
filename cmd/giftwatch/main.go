// Command giftwatch follows the gift box state stream and prints each open-state change.
//
//	giftwatch -addr localhost:8080 [-all]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"time"

	"gift-box/internal/env"
	"gift-box/internal/giftbox"

	"github.com/gorilla/websocket"
)

type snapshot struct {
	State     string     `json:"state"`
	Stage     string     `json:"stage"`
	Separated bool       `json:"separated"`
	Clicks    int        `json:"clicks"`
	Rumbling  bool       `json:"rumbling"`
	Position  [3]float32 `json:"position"`
	Yaw       float32    `json:"yaw"`
	Cover     [3]float32 `json:"cover"`
	Base      [3]float32 `json:"base"`
}

func main() {
	addr := flag.String("addr", env.String(env.APIAddr, "localhost:8080"), "gift box API address")
	all := flag.Bool("all", false, "print every snapshot, not only state changes")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: dialHost(*addr), Path: "/ws/state"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "giftwatch:", err)
		os.Exit(1)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var last, lastStage string
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					fmt.Fprintln(os.Stderr, "giftwatch:", err)
				}
				return
			}
			var s snapshot
			if err := json.Unmarshal(data, &s); err != nil {
				fmt.Fprintln(os.Stderr, "giftwatch: bad message:", err)
				continue
			}
			if *all || s.State != last {
				fmt.Printf("%s %-7s %-10s clicks=%d yaw=%.1f\n", time.Now().Format("15:04:05"), s.State, s.Stage, s.Clicks, s.Yaw)
				last = s.State
			}
			if s.Stage != lastStage && s.Stage == giftbox.Separated.String() {
				fmt.Println("box separated")
			}
			if *all && s.Stage == giftbox.Separated.String() {
				fmt.Printf("  cover=%.2f base=%.2f\n", s.Cover, s.Base)
			}
			lastStage = s.Stage
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

// dialHost turns a listen address like ":8080" into something a client can dial.
func dialHost(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
