package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// AuditRepository define el puerto de persistencia del log de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditEntry, int, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
