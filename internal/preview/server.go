// Package preview streams rendered frames to browser clients over
// websockets and feeds control commands back to the render loop. The
// server is itself a word sink: tee the transmitter through it and every
// frame that reaches the hardware also reaches the preview.
package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/ASCCJR/Matriz5x5/internal/diagnostics"
	"github.com/ASCCJR/Matriz5x5/internal/layout"
)

// Command is a control request from a preview client. Commands are
// forwarded over a channel so the render loop stays the sole owner of the
// matrix.
type Command struct {
	Pattern string `json:"pattern,omitempty"`
	Clear   bool   `json:"clear,omitempty"`
	FPS     int    `json:"fps,omitempty"`
}

type Server struct {
	// Driver names the active transmitter, reported in the topology.
	Driver string

	mu          sync.RWMutex
	lay         layout.Layout
	rgb         []byte
	n           int
	frameID     uint64
	start       time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	cmds        chan Command
}

func NewServer(l layout.Layout) *Server {
	return &Server{
		lay:         l,
		rgb:         make([]byte, l.Count()*3),
		start:       time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		cmds:        make(chan Command, 8),
	}
}

// Commands exposes the control channel the render loop drains.
func (s *Server) Commands() <-chan Command { return s.cmds }

// TxPut assembles MSB-aligned GRB words back into an RGB frame; the word
// completing the frame broadcasts it to all connected clients.
func (s *Server) TxPut(word uint32) error {
	s.mu.Lock()
	s.rgb[s.n*3+0] = byte(word >> 16)
	s.rgb[s.n*3+1] = byte(word >> 24)
	s.rgb[s.n*3+2] = byte(word >> 8)
	s.n++
	if s.n < s.lay.Count() {
		s.mu.Unlock()
		return nil
	}
	s.n = 0
	s.frameID++
	buf := append([]byte{}, s.rgb...)
	id := s.frameID
	s.mu.Unlock()

	s.broadcastFrame(id, buf)
	return nil
}

func (s *Server) Close() error { return nil }

// FrameID reports how many complete frames have passed through.
func (s *Server) FrameID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameID
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.diagClients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.PushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: "CTRL.BADJSON", Summary: "Unparseable control message",
			})
			continue
		}
		select {
		case s.cmds <- cmd:
		default:
			s.PushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: "CTRL.BUSY", Summary: "Control queue full, command dropped",
			})
		}
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.start).Seconds(),
		"count":    s.lay.Count(),
		"driver":   s.Driver,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) PushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	top := map[string]any{
		"dim":    map[string]int{"x": s.lay.Dim.X, "y": s.lay.Dim.Y},
		"order":  map[string]bool{"xFlipEveryRow": s.lay.Order.XFlipEveryRow, "yFlip": s.lay.Order.YFlip},
		"count":  s.lay.Count(),
		"driver": s.Driver,
	}
	b, _ := json.Marshal(top)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) broadcastFrame(id uint64, rgb []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}
