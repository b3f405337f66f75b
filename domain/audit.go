package domain

import "time"

// AuditOperation enumerates the event kinds the audit sink accepts.
type AuditOperation string

const (
	AuditAuthAttempt        AuditOperation = "auth_attempt"
	AuditUserRegistration   AuditOperation = "user_registration"
	AuditPermissionCheck    AuditOperation = "permission_check"
	AuditDataOperation      AuditOperation = "data_operation"
	AuditAPIAccess          AuditOperation = "api_access"
	AuditDBOperation        AuditOperation = "db_operation"
	AuditTxBegin            AuditOperation = "tx_begin"
	AuditTxCommit           AuditOperation = "tx_commit"
	AuditTxRollback         AuditOperation = "tx_rollback"
	AuditSuspiciousActivity AuditOperation = "suspicious_activity"
	AuditAdminAction        AuditOperation = "admin_action"
)

// AuditEvent is written once and never mutated. Details carries the
// operation-specific payload (old/new values, statement digests, timings).
type AuditEvent struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	ActorID    int64                  `json:"actor_id"`
	ActorName  string                 `json:"actor_name"`
	Role       Role                   `json:"role"`
	IP         string                 `json:"ip"`
	SessionID  string                 `json:"session"`
	Operation  AuditOperation         `json:"operation"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resource_id,omitempty"`
	Severity   string                 `json:"severity"`
	DurationMS float64                `json:"duration_ms,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}
