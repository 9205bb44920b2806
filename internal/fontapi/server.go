// Package fontapi serves the card fonts and streams gift box state over HTTP and websockets.
package fontapi

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gift-box/internal/fonts"
	"gift-box/internal/giftbox"
	"gift-box/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// sendBuffer is how many snapshots a slow client may fall behind before updates are dropped
	sendBuffer = 16

	shutdownTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server is the font and state API.
type Server struct {
	app      *fiber.App
	fontsDir string
	log      *logger.Logger

	stateMu sync.RWMutex
	state   giftbox.Snapshot
	encoded []byte

	clientsMu sync.Mutex
	clients   map[*client]struct{}
	closed    bool
}

// New builds the routes. Fonts and font_metadata.json are served from fontsDir.
func New(fontsDir string, log *logger.Logger) *Server {
	s := &Server{
		fontsDir: fontsDir,
		log:      log,
		clients:  make(map[*client]struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gift Box",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Get("/fonts", s.handleFonts)
	api.Get("/state", s.handleState)

	app.Static("/fonts", fontsDir)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// handleFonts returns the metadata index as written by cmd/fontmeta.
func (s *Server) handleFonts(c *fiber.Ctx) error {
	list, err := fonts.LoadMetadata(filepath.Join(s.fontsDir, fonts.MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Font metadata not found"})
		}
		s.log.Logf("[API] /api/fonts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if list == nil {
		list = []fonts.Metadata{}
	}
	return c.JSON(list)
}

func (s *Server) handleState(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleStateWS sends the latest snapshot on connect and every published one after that.
// Reads only detect the disconnect.
func (s *Server) handleStateWS(conn *websocket.Conn) {
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	s.stateMu.RLock()
	if s.encoded != nil {
		cl.send <- s.encoded
	}
	s.stateMu.RUnlock()

	if !s.register(cl) {
		conn.Close()
		return
	}
	s.log.Logf("[API] state client connected (%d total)", s.Clients())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range cl.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, []byte{})
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.unregister(cl)
	<-done
	s.log.Logf("[API] state client disconnected (%d remaining)", s.Clients())
}

func (s *Server) register(cl *client) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.closed {
		return false
	}
	s.clients[cl] = struct{}{}
	return true
}

func (s *Server) unregister(cl *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[cl]; ok {
		delete(s.clients, cl)
		close(cl.send)
	}
}

// Publish records snap as the latest state and queues it for every websocket client.
// It never blocks: a client whose buffer is full misses this update.
func (s *Server) Publish(snap giftbox.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Logf("[API] encode snapshot: %v", err)
		return
	}
	s.stateMu.Lock()
	s.state = snap
	s.encoded = data
	s.stateMu.Unlock()

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for cl := range s.clients {
		select {
		case cl.send <- data:
		default:
		}
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Listener serves on an existing listener until Shutdown.
func (s *Server) Listener(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown disconnects websocket clients and stops the server.
func (s *Server) Shutdown() error {
	s.clientsMu.Lock()
	s.closed = true
	for cl := range s.clients {
		delete(s.clients, cl)
		close(cl.send)
		cl.conn.Close()
	}
	s.clientsMu.Unlock()
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}
