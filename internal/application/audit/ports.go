package audit

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// Logger recibe eventos de auditoría tras cada transición confirmada.
// Fire-and-forget: las implementaciones registran sus propios fallos y nunca los propagan.
type Logger interface {
	Log(ctx context.Context, entry entity.AuditEntry)
}

// NopLogger descarta los eventos.
type NopLogger struct{}

// Log no hace nada.
func (NopLogger) Log(context.Context, entity.AuditEntry) {}
