package docsign

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingAuditLogger keeps every event it receives.
type recordingAuditLogger struct {
	mu     sync.Mutex
	events []*AuditEvent
	err    error
}

func (r *recordingAuditLogger) LogEvent(_ context.Context, event *AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingAuditLogger) byType(eventType string) []*AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*AuditEvent
	for _, e := range r.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

var fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// newTestSigner returns a signer with 1024-bit keys and a recording audit log.
func newTestSigner(t *testing.T, opts ...Option) (*Signer, *recordingAuditLogger) {
	t.Helper()

	audit := &recordingAuditLogger{}
	base := []Option{
		WithKeyBits(1024),
		WithPrimalityRounds(20),
		WithWorkers(4),
		WithAuditLogger(audit),
		WithClock(func() time.Time { return fixedTime }),
	}

	s, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, audit
}

// signHello signs "hello world" between two fixed parties.
func signHello(t *testing.T, s *Signer) *SignedDocument {
	t.Helper()

	signed, err := s.SignDocument(context.Background(), &SignRequest{
		Document: []byte("hello world"),
		Sender:   "alice@example.com",
		Receiver: "bob@example.com",
	})
	if err != nil {
		t.Fatalf("SignDocument() error = %v", err)
	}
	return signed
}
