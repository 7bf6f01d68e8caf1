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

// CollaboratorUseCase casos de uso para colaboradores que reciben préstamos.
type CollaboratorUseCase struct {
	repo  repository.CollaboratorRepository
	audit audit.Logger
	now   func() time.Time
}

// NewCollaboratorUseCase construye el caso de uso.
func NewCollaboratorUseCase(repo repository.CollaboratorRepository, auditLog audit.Logger) *CollaboratorUseCase {
	return &CollaboratorUseCase{repo: repo, audit: auditLog, now: time.Now}
}

// Create registra un colaborador; la matrícula es única.
func (uc *CollaboratorUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateCollaboratorRequest) (*dto.CollaboratorResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar colaboradores")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByRegistration(ctx, in.Registration)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("ya existe un colaborador con la matrícula " + in.Registration)
	}
	now := uc.now()
	c := &entity.Collaborator{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Registration: in.Registration,
		Sector:       in.Sector,
		Position:     in.Position,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        in.Phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "collaborators", c.ID, in))
	return toCollaboratorResponse(c), nil
}

// GetByID obtiene un colaborador.
func (uc *CollaboratorUseCase) GetByID(ctx context.Context, id string) (*dto.CollaboratorResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("colaborador", id)
	}
	return toCollaboratorResponse(c), nil
}

// Update actualiza datos del colaborador; la matrícula no cambia.
func (uc *CollaboratorUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateCollaboratorRequest) (*dto.CollaboratorResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para modificar colaboradores")
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("colaborador", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("name no puede quedar vacío")
		}
		c.Name = name
	}
	if in.Sector != nil {
		c.Sector = *in.Sector
	}
	if in.Position != nil {
		c.Position = *in.Position
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditUpdate, "collaborators", c.ID, in))
	return toCollaboratorResponse(c), nil
}

// Deactivate desactiva al colaborador; sus préstamos quedan intactos.
func (uc *CollaboratorUseCase) Deactivate(ctx context.Context, actor entity.Actor, id string) (*dto.CollaboratorResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores desactivan colaboradores")
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("colaborador", id)
	}
	c.Active = false
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditDelete, "collaborators", c.ID, map[string]any{"registration": c.Registration}))
	return toCollaboratorResponse(c), nil
}

// List lista colaboradores con filtros.
func (uc *CollaboratorUseCase) List(ctx context.Context, filter repository.CollaboratorFilter) (*dto.CollaboratorListResponse, error) {
	filter.Page = dto.NormalizePage(filter.Page)
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CollaboratorResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCollaboratorResponse(c))
	}
	return &dto.CollaboratorListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

func toCollaboratorResponse(c *entity.Collaborator) *dto.CollaboratorResponse {
	return &dto.CollaboratorResponse{
		ID:           c.ID,
		Name:         c.Name,
		Registration: c.Registration,
		Sector:       c.Sector,
		Position:     c.Position,
		Email:        c.Email,
		Phone:        c.Phone,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// SupplierUseCase casos de uso para proveedores.
type SupplierUseCase struct {
	repo  repository.SupplierRepository
	audit audit.Logger
	now   func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, auditLog audit.Logger) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, audit: auditLog, now: time.Now}
}

// Create registra un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar proveedores")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Document:  strings.TrimSpace(in.Document),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Contact:   in.Contact,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "suppliers", s.ID, in))
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("proveedor", id)
	}
	return toSupplierResponse(s), nil
}

// Update actualiza un proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para modificar proveedores")
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("proveedor", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("name no puede quedar vacío")
		}
		s.Name = name
	}
	if in.Document != nil {
		s.Document = strings.TrimSpace(*in.Document)
	}
	if in.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Contact != nil {
		s.Contact = *in.Contact
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditUpdate, "suppliers", s.ID, in))
	return toSupplierResponse(s), nil
}

// List lista proveedores por nombre o documento.
func (uc *SupplierUseCase) List(ctx context.Context, search string, page repository.Page) (*dto.SupplierListResponse, error) {
	page = dto.NormalizePage(page)
	list, total, err := uc.repo.List(ctx, strings.TrimSpace(search), page)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Document:  s.Document,
		Email:     s.Email,
		Phone:     s.Phone,
		Contact:   s.Contact,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
