// Package wssink pushes samples as JSON frames to WebSocket clients
package wssink

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	FrameHello    = "hello"
	FrameLocation = "location"

	WriteTimeout    = 5 * time.Second
	ShutdownTimeout = 5 * time.Second

	sendBuffer = 64
)

type Config struct {
	Listen string
	Path   string
}

// Frame is the JSON structure sent to clients
type Frame struct {
	Type      string                 `json:"type"`
	Providers []location.Description `json:"providers,omitempty"`
	Location  *location.Location     `json:"location,omitempty"`
	Stamp     int64                  `json:"stamp"`
}

// HelloFunc returns the providers announced to a client on connect
type HelloFunc func() []location.Description

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Sink struct {
	upgrader websocket.Upgrader
	hello    HelloFunc

	clients   map[*client]struct{}
	clientsMu sync.RWMutex
	wg        sync.WaitGroup

	server *http.Server
}

func New(hello HelloFunc) *Sink {
	return &Sink{
		hello:   hello,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve starts an http server on conf.Listen that hands conf.Path to the sink
func (s *Sink) Serve(conf Config) error {
	mux := http.NewServeMux()
	mux.Handle(conf.Path, s)

	ln, err := net.Listen("tcp", conf.Listen)
	if err != nil {
		return err
	}

	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: WriteTimeout}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("websocket server stopped", zap.Error(err))
		}
	}()

	log.Info("websocket sink listening", zap.String("addr", ln.Addr().String()), zap.String("path", conf.Path))
	return nil
}

// Clients returns the number of connected clients
func (s *Sink) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	// queued before registration so the hello frame always comes first
	hello := Frame{Type: FrameHello, Stamp: time.Now().UnixMilli()}
	if s.hello != nil {
		hello.Providers = s.hello()
	}
	if data, err := json.Marshal(hello); err == nil {
		c.send <- data
	}

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	total := len(s.clients)
	s.clientsMu.Unlock()

	log.Debug("websocket client connected", zap.String("remote", r.RemoteAddr), zap.Int("total", total))

	s.wg.Add(2)
	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *Sink) writeLoop(c *client) {
	defer s.wg.Done()
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug("websocket write failed", zap.Error(err))
			break
		}
	}
}

// readLoop drains incoming frames and unregisters the client once the connection dies
func (s *Sink) readLoop(c *client) {
	defer s.wg.Done()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		close(c.send)
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Sink) OnLocationChanged(_ context.Context, loc location.Location) error {
	data, err := json.Marshal(Frame{Type: FrameLocation, Location: &loc, Stamp: time.Now().UnixMilli()})
	if err != nil {
		return err
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop the frame
		}
	}

	return nil
}

// Close stops the server if one was started and disconnects every client
func (s *Sink) Close() error {
	var err error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		err = s.server.Shutdown(ctx)
		cancel()
	}

	s.clientsMu.RLock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.clientsMu.RUnlock()

	s.wg.Wait()
	return err
}
