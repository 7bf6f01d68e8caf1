package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditadas.
const (
	AuditCreate   = "create"
	AuditUpdate   = "update"
	AuditDelete   = "delete"
	AuditReceive  = "receive"
	AuditAdjust   = "adjust"
	AuditReturn   = "return"
	AuditLost     = "lost"
	AuditApprove  = "approve"
	AuditDispatch = "dispatch"
	AuditComplete = "complete"
	AuditCancel   = "cancel"
	AuditLogin    = "login"
	AuditPurge    = "purge"
)

// AuditEntry registro de auditoría de una transición exitosa.
type AuditEntry struct {
	ID        string
	UserID    string
	Action    string
	Table     string // tabla/entidad afectada
	EntityID  string
	Details   json.RawMessage
	CreatedAt time.Time
}
