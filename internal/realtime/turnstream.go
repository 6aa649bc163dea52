package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// TurnStream writes one turn's live events onto the submitting request's
// response body. It enforces the terminal contract: after Done or Error is
// written every further write is a no-op, and at most one terminal event
// ever reaches the wire.
type TurnStream struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	flusher  http.Flusher
	terminal bool
	failed   bool
}

func NewTurnStream(w http.ResponseWriter) (*TurnStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &TurnStream{w: w, flusher: flusher}, nil
}

func (s *TurnStream) write(event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal || s.failed {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, raw); err != nil {
		// Client went away; stop writing but let the orchestrator finish.
		s.failed = true
		return
	}
	s.flusher.Flush()
}

func (s *TurnStream) writeTerminal(event string, payload any) {
	s.mu.Lock()
	if s.terminal {
		s.mu.Unlock()
		return
	}
	s.terminal = true
	failed := s.failed
	s.mu.Unlock()
	if failed {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, raw); err != nil {
		return
	}
	s.flusher.Flush()
}

type DeltaPayload struct {
	Text string `json:"text"`
}

type ArtifactPayload struct {
	Kind    string `json:"kind"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type QuotaPayload struct {
	Used             int  `json:"used"`
	Limit            int  `json:"limit"`
	LimitJustReached bool `json:"limit_just_reached"`
}

type DonePayload struct {
	TurnID    string           `json:"turn_id"`
	FinalText string           `json:"final_text"`
	FullText  string           `json:"full_text,omitempty"`
	Artifact  *ArtifactPayload `json:"artifact,omitempty"`
	XPAwarded int              `json:"xp_awarded,omitempty"`
	Quota     *QuotaPayload    `json:"quota,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *TurnStream) Delta(text string) {
	if text == "" {
		return
	}
	s.write("delta", DeltaPayload{Text: text})
}

func (s *TurnStream) Artifact(p ArtifactPayload) {
	s.write("artifact", p)
}

func (s *TurnStream) Quota(p QuotaPayload) {
	s.write("quota", p)
}

func (s *TurnStream) Done(p DonePayload) {
	s.writeTerminal("done", p)
}

func (s *TurnStream) Error(code, message string) {
	s.writeTerminal("error", ErrorPayload{Code: code, Message: message})
}

// Closed reports whether a terminal event has been written.
func (s *TurnStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}
