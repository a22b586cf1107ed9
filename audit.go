package docsign

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Audit event types.
const (
	EventKeyGenerate = "keypair.generate"
	EventSign        = "document.sign"
	EventVerify      = "document.verify"
	EventKeySeal     = "key.seal"
	EventKeyOpen     = "key.open"
)

// Audit results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// AuditEvent records one security-relevant operation. It never carries key
// material or document contents.
type AuditEvent struct {
	Timestamp  time.Time
	EventType  string
	DocumentID string
	Sender     string
	Receiver   string
	Result     string
	Reason     string
	Details    map[string]any
}

// AuditLogger receives audit events.
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
}

type logAuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger returns an AuditLogger that writes events to logger.
func NewAuditLogger(logger zerolog.Logger) AuditLogger {
	return &logAuditLogger{logger: logger}
}

// LogEvent writes event as a single structured log line.
func (l *logAuditLogger) LogEvent(_ context.Context, event *AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var e *zerolog.Event
	if event.Result == ResultFailure {
		e = l.logger.Warn()
	} else {
		e = l.logger.Info()
	}

	e = e.Str("audit", event.EventType).
		Time("timestamp", event.Timestamp).
		Str("result", event.Result)
	if event.DocumentID != "" {
		e = e.Str("document_id", event.DocumentID)
	}
	if event.Sender != "" {
		e = e.Str("sender", event.Sender)
	}
	if event.Receiver != "" {
		e = e.Str("receiver", event.Receiver)
	}
	if event.Reason != "" {
		e = e.Str("reason", event.Reason)
	}
	if len(event.Details) > 0 {
		e = e.Fields(event.Details)
	}
	e.Msg("audit event")

	return nil
}

// emit sends an audit event, logging (not returning) sink failures.
func (s *Signer) emit(ctx context.Context, event *AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.cfg.clock().UTC()
	}
	if err := s.audit.LogEvent(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("audit", event.EventType).Msg("Failed to write audit event")
	}
}
