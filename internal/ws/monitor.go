// Package ws serves render progress and diagnostics over HTTP and WebSocket.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/beatfall/internal/diagnostics"
)

// Progress is an immutable report of where the frame loop is.
type Progress struct {
	Frame    int     `json:"frame"`
	Total    int     `json:"total"`
	Balls    int     `json:"balls"`
	Effects  int     `json:"effects"`
	Beats    int     `json:"beats"`
	RenderMS float64 `json:"render_ms"`
}

type Monitor struct {
	mu       sync.RWMutex
	wmu      sync.Mutex // serialises websocket writes
	run      string
	progress Progress
	diags    []diag.Diagnostic

	startTime   time.Time
	lastEmit    time.Time
	throttle    time.Duration
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	log zerolog.Logger
}

func NewMonitor(run string, l zerolog.Logger) *Monitor {
	return &Monitor{
		run:         run,
		startTime:   time.Now(),
		throttle:    50 * time.Millisecond, // ~20 updates/s to clients
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		log:         l,
	}
}

// Handler routes /health, /ws and /diag.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", m.HandleHealth)
	mux.HandleFunc("/ws", m.HandleProgressWS)
	mux.HandleFunc("/diag", m.HandleDiagWS)
	return mux
}

// Publish records p and forwards it to progress clients, at most once per
// throttle interval unless p is the last frame.
func (m *Monitor) Publish(p Progress) {
	m.mu.Lock()
	m.progress = p
	now := time.Now()
	last := p.Total > 0 && p.Frame+1 >= p.Total
	if !last && m.lastEmit.Add(m.throttle).After(now) {
		m.mu.Unlock()
		return
	}
	m.lastEmit = now
	m.mu.Unlock()
	m.broadcast(p)
}

// PushDiag keeps d for later /diag clients and sends it to current ones.
func (m *Monitor) PushDiag(d diag.Diagnostic) {
	m.mu.Lock()
	m.diags = append(m.diags, d)
	m.mu.Unlock()

	b, _ := json.Marshal(d)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.diagClients {
		if err := m.write(c, b); err != nil {
			m.log.Debug().Err(err).Msg("write diag")
		}
	}
}

func (m *Monitor) Current() Progress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress
}

func (m *Monitor) HandleProgressWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.clients[conn] = true
	p := m.progress
	m.mu.Unlock()
	m.send(conn, p)
	m.drain(conn, m.clients)
}

func (m *Monitor) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.diagClients[conn] = true
	backlog := append([]diag.Diagnostic(nil), m.diags...)
	m.mu.Unlock()
	for _, d := range backlog {
		b, _ := json.Marshal(d)
		_ = m.write(conn, b)
	}
	m.drain(conn, m.diagClients)
}

func (m *Monitor) HandleHealth(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := map[string]any{
		"run":      m.run,
		"frame":    m.progress.Frame,
		"total":    m.progress.Total,
		"balls":    m.progress.Balls,
		"effects":  m.progress.Effects,
		"uptime_s": time.Since(m.startTime).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// drain discards client messages until the connection drops, then forgets it.
func (m *Monitor) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	go func() {
		defer func() {
			m.mu.Lock()
			delete(set, conn)
			m.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (m *Monitor) broadcast(p Progress) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.clients {
		m.send(c, p)
	}
}

func (m *Monitor) send(c *websocket.Conn, p Progress) {
	type frame struct {
		T   int64  `json:"t"`
		Run string `json:"run"`
		Progress
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), Run: m.run, Progress: p})
	if err := m.write(c, b); err != nil {
		m.log.Debug().Err(err).Msg("write progress")
	}
}

func (m *Monitor) write(c *websocket.Conn, b []byte) error {
	m.wmu.Lock()
	defer m.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return c.WriteMessage(websocket.TextMessage, b)
}
