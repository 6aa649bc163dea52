package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTurnStreamWritesEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewTurnStream(rec)
	if err != nil {
		t.Fatalf("NewTurnStream: %v", err)
	}

	s.Delta("hello ")
	s.Delta("world")
	s.Artifact(ArtifactPayload{Kind: "table", URL: "https://cdn.test/a.png"})
	s.Done(DonePayload{TurnID: "t1", FinalText: "hello world"})

	body := rec.Body.String()
	if got := strings.Count(body, "event: delta"); got != 2 {
		t.Fatalf("delta events = %d, want 2\n%s", got, body)
	}
	if !strings.Contains(body, "event: artifact") {
		t.Fatalf("artifact event missing\n%s", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Fatalf("done event missing\n%s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestTurnStreamSingleTerminalEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewTurnStream(rec)
	if err != nil {
		t.Fatalf("NewTurnStream: %v", err)
	}

	s.Done(DonePayload{TurnID: "t1"})
	if !s.Closed() {
		t.Fatal("stream not closed after Done")
	}

	s.Done(DonePayload{TurnID: "t2"})
	s.Error("quota_exceeded", "nope")
	s.Delta("late delta")

	body := rec.Body.String()
	if got := strings.Count(body, "event: done"); got != 1 {
		t.Fatalf("done events = %d, want 1\n%s", got, body)
	}
	if strings.Contains(body, "event: error") {
		t.Fatalf("error written after done\n%s", body)
	}
	if strings.Contains(body, "late delta") {
		t.Fatalf("delta written after terminal\n%s", body)
	}
}

func TestTurnStreamErrorThenNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewTurnStream(rec)
	if err != nil {
		t.Fatalf("NewTurnStream: %v", err)
	}

	s.Error("validation_error", "text required")
	s.Done(DonePayload{TurnID: "t1"})

	body := rec.Body.String()
	if got := strings.Count(body, "event: error"); got != 1 {
		t.Fatalf("error events = %d, want 1\n%s", got, body)
	}
	if strings.Contains(body, "event: done") {
		t.Fatalf("done written after error\n%s", body)
	}
}
