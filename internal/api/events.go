package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/r3labs/sse/v2"
)

// StateStream is the SSE stream carrying dashboard snapshots. Events on it
// are named after the stream.
const StateStream = "state"

// Forward publishes every snapshot from the engine to the SSE stream until
// ctx is done.
func (s *Server) Forward(ctx context.Context) {
	ch, unsubscribe := s.engine.Subscribe()
	defer unsubscribe()

	// Covers changes made between startup and Subscribe
	s.publishSnapshot(s.engine.Snapshot())

	for {
		select {
		case snap := <-ch:
			s.publishSnapshot(snap)
		case <-ctx.Done():
			return
		case <-s.engine.Done():
			return
		}
	}
}

func (s *Server) stateEvent(snap interface{}) (*sse.Event, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return &sse.Event{
		ID:    []byte(uuid.NewString()),
		Data:  data,
		Event: []byte(StateStream),
	}, nil
}

func (s *Server) publishSnapshot(snap interface{}) {
	ev, err := s.stateEvent(snap)
	if err != nil {
		s.lg.Errorf("events: %s", err)
		return
	}
	s.events.TryPublish(StateStream, ev)
}

// primedWriter writes one event ahead of the stream. The sse server flushes
// once right after registering the subscriber, so the primed event reaches
// the client before any published one and nothing published after
// registration is missed.
type primedWriter struct {
	http.ResponseWriter
	flusher http.Flusher
	prime   []byte
}

func (p *primedWriter) Flush() {
	if p.prime != nil {
		p.ResponseWriter.Write(p.prime)
		p.prime = nil
	}
	p.flusher.Flush()
}

func formatEvent(ev *sse.Event) []byte {
	return []byte(fmt.Sprintf("id: %s\ndata: %s\nevent: %s\n\n", ev.ID, ev.Data, ev.Event))
}

// GetEvents handles GET /events
// Streams snapshots as server-sent "state" events, starting with the current
// one
func (s *Server) GetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("stream") == "" {
		q.Set("stream", StateStream)
		r.URL.RawQuery = q.Encode()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}
	if q.Get("stream") != StateStream {
		s.events.ServeHTTP(w, r)
		return
	}

	ev, err := s.stateEvent(s.engine.Snapshot())
	if err != nil {
		s.lg.Errorf("events: %s", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode state", nil)
		return
	}
	s.events.ServeHTTP(&primedWriter{ResponseWriter: w, flusher: flusher, prime: formatEvent(ev)}, r)
}

// Close shuts the event stream down
func (s *Server) Close() {
	s.events.Close()
}
