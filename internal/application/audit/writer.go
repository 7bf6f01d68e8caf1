package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

// Writer persiste eventos de auditoría en segundo plano; un fallo del repositorio se registra y se descarta.
// Wait bloquea hasta que las escrituras pendientes terminen.
type Writer struct {
	repo repository.AuditRepository
	log  *logger.Logger
	now  func() time.Time
	wg   sync.WaitGroup
}

// NewWriter construye el writer sobre el repositorio de auditoría.
func NewWriter(repo repository.AuditRepository, log *logger.Logger) *Writer {
	return &Writer{repo: repo, log: log.Component("auditoria"), now: time.Now}
}

// Log implementa Logger sin bloquear al llamador. ID y fecha se fijan antes de volver;
// la escritura usa un contexto propio para no perder el evento si la petición ya terminó.
func (w *Writer) Log(ctx context.Context, entry entity.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = w.now().UTC()
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()
		if err := w.repo.Create(wctx, &entry); err != nil {
			w.log.Error().Err(err).
				Str("action", entry.Action).
				Str("table", entry.Table).
				Str("entity_id", entry.EntityID).
				Msg("no se pudo registrar auditoría")
		}
	}()
}

// Wait espera las escrituras en curso. Se llama al apagar, antes de cerrar el almacenamiento.
func (w *Writer) Wait() {
	w.wg.Wait()
}

// Event arma una entrada de auditoría serializando details a JSON.
func Event(actorID, action, table, entityID string, details any) entity.AuditEntry {
	var raw json.RawMessage
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			raw = b
		}
	}
	return entity.AuditEntry{
		UserID:   actorID,
		Action:   action,
		Table:    table,
		EntityID: entityID,
		Details:  raw,
	}
}
