package audit

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
)

// Recorder receives structured audit events. Implementations must never
// block the caller on I/O failure.
type Recorder interface {
	Emit(ctx context.Context, ev domain.AuditEvent)
}

// Config selects the two output streams. Empty paths fall back to stdout,
// which keeps local development runnable without file setup.
type Config struct {
	SecurityLogPath string
	DatabaseLogPath string
}

// Sink writes security events and database events to two separate
// line-oriented JSON streams.
type Sink struct {
	security *logrus.Logger
	database *logrus.Logger
	clock    clock.Clock
}

func NewSink(cfg Config, clk clock.Clock) (*Sink, error) {
	security, err := newStreamLogger(cfg.SecurityLogPath)
	if err != nil {
		return nil, err
	}
	database, err := newStreamLogger(cfg.DatabaseLogPath)
	if err != nil {
		return nil, err
	}
	return &Sink{security: security, database: database, clock: clk}, nil
}

func newStreamLogger(path string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	if path == "" {
		logger.SetOutput(os.Stdout)
		return logger, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(&failoverWriter{primary: f, fallback: os.Stderr})
	return logger, nil
}

// failoverWriter reports primary write errors on the fallback channel and
// swallows them so audit I/O never aborts the caller.
type failoverWriter struct {
	primary  io.Writer
	fallback io.Writer
}

func (w *failoverWriter) Write(p []byte) (int, error) {
	if _, err := w.primary.Write(p); err != nil {
		w.fallback.Write([]byte("audit stream write failed: " + err.Error() + "\n"))
		w.fallback.Write(p)
	}
	return len(p), nil
}

// Emit completes the event with identity, correlation and timestamp from the
// context and routes it to the matching stream.
func (s *Sink) Emit(ctx context.Context, ev domain.AuditEvent) {
	id, ok := domain.IdentityFrom(ctx)
	if !ok {
		id = domain.SystemIdentity(s.clock.Now())
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}
	ev.ActorID = id.ActorID
	ev.ActorName = id.Username
	ev.Role = id.Role
	ev.IP = id.RemoteIP
	ev.SessionID = id.SessionID
	if cid := domain.CorrelationIDFrom(ctx); cid != "" {
		if ev.Details == nil {
			ev.Details = map[string]interface{}{}
		}
		ev.Details["correlation_id"] = cid
	}
	if ev.Severity == "" {
		ev.Severity = "INFO"
	}

	logger := s.security
	switch ev.Operation {
	case domain.AuditDBOperation, domain.AuditTxBegin, domain.AuditTxCommit, domain.AuditTxRollback:
		logger = s.database
	}

	entry := logger.WithFields(logrus.Fields{
		"event_id":    ev.ID,
		"actor_id":    ev.ActorID,
		"actor_name":  ev.ActorName,
		"role":        string(ev.Role),
		"ip":          ev.IP,
		"session":     ev.SessionID,
		"operation":   string(ev.Operation),
		"resource":    ev.Resource,
		"resource_id": ev.ResourceID,
	})
	if ev.DurationMS > 0 {
		entry = entry.WithField("duration_ms", ev.DurationMS)
	}
	if len(ev.Details) > 0 {
		if detailsJSON, err := json.Marshal(ev.Details); err == nil {
			entry = entry.WithField("details_json", string(detailsJSON))
		}
	}

	message := string(ev.Operation) + " - " + ev.Resource
	switch ev.Severity {
	case "ERROR", "CRITICAL":
		entry.Error(message)
	case "WARNING":
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// PermissionCheck records the outcome of a permission or role check.
func PermissionCheck(ctx context.Context, rec Recorder, permission string, granted bool, durationMS float64, reason string) {
	details := map[string]interface{}{
		"permission_required": permission,
		"access_granted":      granted,
	}
	if reason != "" {
		details["reason"] = reason
	}
	severity := "INFO"
	if !granted {
		severity = "WARNING"
	}
	rec.Emit(ctx, domain.AuditEvent{
		Operation:  domain.AuditPermissionCheck,
		Resource:   "access_control",
		Severity:   severity,
		DurationMS: durationMS,
		Details:    details,
	})
}

// DataOperation records a create/update/delete with field-level before and
// after images where the operation permits capture.
func DataOperation(ctx context.Context, rec Recorder, action, resource, resourceID string, oldValues, newValues map[string]interface{}) {
	details := map[string]interface{}{"action": action}
	if oldValues != nil {
		details["old_values"] = oldValues
	}
	if newValues != nil {
		details["new_values"] = newValues
	}
	if oldValues != nil && newValues != nil {
		changes := map[string]interface{}{}
		for key, newVal := range newValues {
			if oldVal, ok := oldValues[key]; !ok || oldVal != newVal {
				changes[key] = map[string]interface{}{"from": oldValues[key], "to": newVal}
			}
		}
		if len(changes) > 0 {
			details["changes"] = changes
		}
	}
	rec.Emit(ctx, domain.AuditEvent{
		Operation:  domain.AuditDataOperation,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	})
}

// AuthAttempt records a login outcome. The attempted username is logged even
// when authentication fails.
func AuthAttempt(ctx context.Context, rec Recorder, username string, success bool, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["attempted_username"] = username
	severity := "INFO"
	if !success {
		severity = "WARNING"
	}
	details["success"] = success
	rec.Emit(ctx, domain.AuditEvent{
		Operation: domain.AuditAuthAttempt,
		Resource:  "authentication",
		Severity:  severity,
		Details:   details,
	})
}

// SuspiciousActivity flags behavior that warrants investigation.
func SuspiciousActivity(ctx context.Context, rec Recorder, activity string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["activity_type"] = activity
	rec.Emit(ctx, domain.AuditEvent{
		Operation: domain.AuditSuspiciousActivity,
		Resource:  "security_monitoring",
		Severity:  "WARNING",
		Details:   details,
	})
}
