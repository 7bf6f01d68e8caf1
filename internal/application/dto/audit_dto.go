package dto

import (
	"encoding/json"
	"time"
)

// AuditEntryResponse salida de una entrada de auditoría.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Table     string          `json:"table"`
	EntityID  string          `json:"entity_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditListResponse lista paginada de auditoría.
type AuditListResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
