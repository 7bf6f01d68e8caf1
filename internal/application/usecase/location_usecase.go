package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones (depósitos, salas, armarios).
type LocationUseCase struct {
	repo  repository.LocationRepository
	audit audit.Logger
	now   func() time.Time
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, auditLog audit.Logger) *LocationUseCase {
	return &LocationUseCase{repo: repo, audit: auditLog, now: time.Now}
}

// Create crea una nueva ubicación.
func (uc *LocationUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar ubicaciones")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("ya existe una ubicación con el código " + in.Code)
	}
	now := uc.now()
	location := &entity.Location{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Address:     in.Address,
		Responsible: in.Responsible,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "locations", location.ID, in))
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.NotFound("ubicación", id)
	}
	return toLocationResponse(location), nil
}

// Update actualiza una ubicación.
func (uc *LocationUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para modificar ubicaciones")
	}
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.NotFound("ubicación", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("name no puede quedar vacío")
		}
		location.Name = name
	}
	if in.Address != nil {
		location.Address = *in.Address
	}
	if in.Responsible != nil {
		location.Responsible = *in.Responsible
	}
	if in.Active != nil {
		location.Active = *in.Active
	}
	location.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditUpdate, "locations", location.ID, in))
	return toLocationResponse(location), nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(ctx context.Context, activeOnly bool, page repository.Page) (*dto.LocationListResponse, error) {
	page = dto.NormalizePage(page)
	list, total, err := uc.repo.List(ctx, activeOnly, page)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete elimina una ubicación sin stock ni transferencias que la referencien.
func (uc *LocationUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("solo administradores eliminan ubicaciones")
	}
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if location == nil {
		return domain.NotFound("ubicación", id)
	}
	used, err := uc.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.Conflict("la ubicación tiene stock o transferencias asociadas; desactívela en su lugar")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditDelete, "locations", id, map[string]any{"code": location.Code}))
	return nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:          l.ID,
		Code:        l.Code,
		Name:        l.Name,
		Address:     l.Address,
		Responsible: l.Responsible,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
