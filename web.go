package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	ds "github.com/starfederation/datastar-go/datastar"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local bridge, any page may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, static, "static/index.html")
}

// APIHandler serves the latest reading as JSON, or null before the
// first successful parse.
func APIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reading, ok := Cache.Get()
	if !ok {
		_, _ = w.Write([]byte("null\n"))
		return
	}
	if err := json.NewEncoder(w).Encode(reading); err != nil {
		Log.Warnw("encode reading", "error", err)
	}
}

// sseSubscriber bridges the registry to an SSE handler goroutine. Send
// never blocks the broadcasting session: a lagging dashboard skips
// intermediate readings.
type sseSubscriber struct {
	ch chan []byte
}

func newSSESubscriber() *sseSubscriber {
	return &sseSubscriber{ch: make(chan []byte, 16)}
}

func (s *sseSubscriber) Send(data []byte) error {
	select {
	case s.ch <- data:
	default:
	}
	return nil
}

// EventsHandler streams readings to the dashboard as datastar signal
// patches.
func EventsHandler(w http.ResponseWriter, r *http.Request) {
	sse := ds.NewSSE(w, r)

	sub := newSSESubscriber()
	Registry.Add(sub)
	defer Registry.Remove(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-sub.ch:
			if err := sse.PatchSignals(data); err != nil {
				Log.Debugw("sse client gone", "error", err)
				return
			}
		}
	}
}

// wsSubscriber delivers readings as websocket text frames. Writes are
// serialized; the broadcast goroutine and the registry's replay-on-add
// may race otherwise.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSubscriber) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHandler upgrades the connection and registers it for readings.
// Clients only listen; the read loop exists to notice disconnects.
func WSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("websocket upgrade", "error", err)
		return
	}

	sub := &wsSubscriber{conn: conn}
	Registry.Add(sub)
	defer func() {
		Registry.Remove(sub)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
