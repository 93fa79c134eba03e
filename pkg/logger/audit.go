package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Key           string
	IPAddress     string
	DeviceID      string
	Success       bool
	FailureReason string
}

// AuditLogger provides audit logging for PIN verification and guardrail
// decisions
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt logs PIN verification attempts
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Key != "" {
		attrs = append(attrs, slog.String("rate_limit_key", event.Key))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogHardBlock logs pattern-detector blocks
func (al *AuditLogger) LogHardBlock(endpoint, ip, deviceID, reason string, until time.Time) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "guardrail"),
		slog.String("event_type", "hard_block"),
		slog.String("endpoint", endpoint),
		slog.String("ip_address", ip),
		slog.String("device_id", deviceID),
		slog.String("reason", reason),
		slog.String("blocked_until", until.UTC().Format(time.RFC3339)),
	)
}

// LogPINChange logs admin and canteen PIN changes
func (al *AuditLogger) LogPINChange(target, ip string, success bool) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit",
		slog.String("audit_type", "pin"),
		slog.String("event_type", "pin_change"),
		slog.String("target", target),
		slog.String("ip_address", ip),
		slog.Bool("success", success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}
