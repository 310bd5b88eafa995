package domain

import "time"

// AuditAction names an audited mutation.
type AuditAction string

const (
	AuditUserDeleted     AuditAction = "user.deleted"
	AuditTenantDeleted   AuditAction = "tenant.deleted"
	AuditEngineerLinked  AuditAction = "tenant.engineer_assigned"
	AuditEngineerRemoved AuditAction = "tenant.engineer_unassigned"
)

// AuditEntry records who did what to which record.
type AuditEntry struct {
	Action     AuditAction
	ActorID    string
	TenantID   string
	SubjectID  string
	OccurredAt time.Time
}
