package docsign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestAuditLogger_LogEvent(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(zerolog.New(&buf))

	err := audit.LogEvent(context.Background(), &AuditEvent{
		Timestamp:  fixedTime,
		EventType:  EventVerify,
		DocumentID: "doc-1",
		Sender:     "alice",
		Receiver:   "bob",
		Result:     ResultFailure,
		Reason:     ReasonHashMismatch,
		Details:    map[string]any{"bits": 1024},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}

	want := map[string]any{
		"level":       "warn",
		"audit":       EventVerify,
		"result":      ResultFailure,
		"document_id": "doc-1",
		"sender":      "alice",
		"receiver":    "bob",
		"reason":      ReasonHashMismatch,
		"bits":        float64(1024),
		"message":     "audit event",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %v", k, line[k], v)
		}
	}
}

func TestAuditLogger_SetsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(zerolog.New(&buf))

	event := &AuditEvent{EventType: EventSign, Result: ResultSuccess}
	if err := audit.LogEvent(context.Background(), event); err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp was not set")
	}
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Errorf("success event not logged at info: %s", buf.String())
	}
}

func TestSigner_DefaultAuditGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(WithLogger(zerolog.New(&buf)), WithKeyBits(1024), WithPrimalityRounds(20))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	r := s.VerifyPackage(context.Background(), nil, "")
	if r.Reason != ReasonMalformedPackage {
		t.Fatalf("Reason = %q", r.Reason)
	}
	if !strings.Contains(buf.String(), `"audit":"document.verify"`) {
		t.Errorf("audit event missing from log: %s", buf.String())
	}
}

func TestSigner_AuditFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	audit := &recordingAuditLogger{err: errors.New("sink down")}
	s, err := New(WithLogger(zerolog.New(&buf)), WithAuditLogger(audit))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.VerifyPackage(context.Background(), nil, "")
	if !strings.Contains(buf.String(), "sink down") {
		t.Errorf("audit sink error not logged: %s", buf.String())
	}
	if len(audit.byType(EventVerify)) != 1 {
		t.Error("event was not delivered to the sink")
	}
}

func TestAuditEvents_NoKeyMaterial(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
		WithKeyBits(1024),
		WithPrimalityRounds(20),
		WithWorkers(2),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signed, err := s.SignDocument(context.Background(), &SignRequest{
		Document: []byte("top secret body"),
		Sender:   "alice",
		Receiver: "bob",
		Password: []byte("pw"),
	})
	if err != nil {
		t.Fatalf("SignDocument() error = %v", err)
	}

	out := buf.String()
	for _, secret := range []string{"top secret body", signed.KeyPair.D.String(), signed.KeyPair.D.Text(16), "pw\""} {
		if strings.Contains(out, secret) {
			t.Errorf("log output contains %q", secret)
		}
	}
}
