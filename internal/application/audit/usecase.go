package audit

import (
	"context"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// UseCase consulta y purga del log de auditoría (solo admin).
type UseCase struct {
	repo            repository.AuditRepository
	audit           Logger
	retentionMonths int
	now             func() time.Time
}

// NewUseCase construye el caso de uso; retentionMonths es el horizonte de purga.
func NewUseCase(repo repository.AuditRepository, audit Logger, retentionMonths int) *UseCase {
	if retentionMonths <= 0 {
		retentionMonths = 6
	}
	return &UseCase{repo: repo, audit: audit, retentionMonths: retentionMonths, now: time.Now}
}

// List lista entradas con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, filter repository.AuditFilter) (*dto.AuditListResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores consultan la auditoría")
	}
	filter.Page = dto.NormalizePage(filter.Page)
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.AuditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Table:     e.Table,
			EntityID:  e.EntityID,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Purge elimina entradas más antiguas que el horizonte de retención.
func (uc *UseCase) Purge(ctx context.Context, actor entity.Actor) (*dto.PurgeResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores purgan la auditoría")
	}
	before := uc.now().AddDate(0, -uc.retentionMonths, 0)
	n, err := uc.repo.DeleteBefore(ctx, before)
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, Event(actor.ID, entity.AuditPurge, "audit_log", "", map[string]any{
		"before": before, "deleted": n,
	}))
	return &dto.PurgeResponse{Before: before, Deleted: n}, nil
}
