package ui

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"lightlab/app"
)

// SSEHub broadcasts run lifecycle events to connected browsers as
// server-sent events. It implements app.EventPublisher. Slow clients
// are dropped rather than allowed to block a broadcast.
type SSEHub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

// NewSSEHub creates an empty hub.
func NewSSEHub() *SSEHub {
	return &SSEHub{clients: make(map[chan string]struct{})}
}

// Publish fans the event out to every connected client.
func (h *SSEHub) Publish(ev app.Event) {
	payload := toSSEFormat(ev)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- payload:
		default:
			// Client too slow; prune it so the hub never blocks.
			delete(h.clients, ch)
			close(ch)
		}
	}
}

// toSSEFormat converts the event to SSE wire format.
func toSSEFormat(ev app.Event) string {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, "error marshalling event")
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, data)
}

// ServeHTTP streams events to one client until it disconnects.
func (h *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
		h.mu.Unlock()
	}()

	log.Printf("[SSEHub] client connected")
	for {
		select {
		case <-r.Context().Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprint(w, payload)
			flusher.Flush()
		}
	}
}
