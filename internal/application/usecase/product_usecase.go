package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos y grupos. Stock y costo promedio se manejan vía movimientos.
type ProductUseCase struct {
	repo      repository.ProductRepository
	groups    repository.ProductGroupRepository
	suppliers repository.SupplierRepository
	movements repository.MovementRepository
	audit     audit.Logger
	now       func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	groups repository.ProductGroupRepository,
	suppliers repository.SupplierRepository,
	movements repository.MovementRepository,
	auditLog audit.Logger,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, groups: groups, suppliers: suppliers, movements: movements, audit: auditLog, now: time.Now}
}

// Create crea un nuevo producto con stock en cero.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar productos")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("ya existe un producto con el código " + in.Code)
	}
	if err := uc.checkRefs(ctx, in.GroupID, in.SupplierID); err != nil {
		return nil, err
	}
	cost := decimal.Zero
	if in.CostPrice != nil {
		if in.CostPrice.IsNegative() {
			return nil, domain.Validation("cost_price no puede ser negativo")
		}
		cost = *in.CostPrice
	}
	now := uc.now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Description:  in.Description,
		Unit:         strings.ToUpper(in.Unit),
		GroupID:      in.GroupID,
		SupplierID:   in.SupplierID,
		StockMinimum: in.StockMinimum,
		StockMaximum: in.StockMaximum,
		CostPrice:    cost,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "products", product.ID, in))
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar cantidades (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para modificar productos")
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, domain.Validation("description no puede quedar vacío")
		}
		product.Description = d
	}
	if in.Unit != nil {
		product.Unit = strings.ToUpper(*in.Unit)
	}
	if in.GroupID != nil {
		product.GroupID = *in.GroupID
	}
	if in.SupplierID != nil {
		product.SupplierID = *in.SupplierID
	}
	if in.StockMinimum != nil {
		product.StockMinimum = *in.StockMinimum
	}
	if in.StockMaximum != nil {
		product.StockMaximum = *in.StockMaximum
	}
	if in.CostPrice != nil {
		if in.CostPrice.IsNegative() {
			return nil, domain.Validation("cost_price no puede ser negativo")
		}
		product.CostPrice = *in.CostPrice
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := dto.ValidateMinMax(product.StockMinimum, product.StockMaximum); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, product.GroupID, product.SupplierID); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditUpdate, "products", product.ID, in))
	return toProductResponse(product), nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	filter.Page = dto.NormalizePage(filter.Page)
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Delete elimina el producto; si tiene historial o saldo solo se desactiva.
func (uc *ProductUseCase) Delete(ctx context.Context, actor entity.Actor, id string) (*dto.DeleteProductResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores eliminan productos")
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	n, err := uc.movements.CountByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.DeleteProductResponse{ID: id}
	if n > 0 || product.StockCurrent > 0 || product.StockRequested > 0 {
		product.Active = false
		product.UpdatedAt = uc.now()
		if err := uc.repo.Update(ctx, product); err != nil {
			return nil, err
		}
		out.Deactivated = true
	} else if err := uc.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditDelete, "products", id, out))
	return out, nil
}

// CreateGroup crea un grupo de productos.
func (uc *ProductUseCase) CreateGroup(ctx context.Context, actor entity.Actor, in dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar grupos")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("name es requerido")
	}
	g := &entity.ProductGroup{ID: uuid.New().String(), Name: name, CreatedAt: uc.now()}
	if err := uc.groups.Create(ctx, g); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "product_groups", g.ID, in))
	return &dto.GroupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}, nil
}

// ListGroups lista los grupos por nombre.
func (uc *ProductUseCase) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	list, err := uc.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(list))
	for _, g := range list {
		out = append(out, dto.GroupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt})
	}
	return out, nil
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, groupID, supplierID string) error {
	if groupID != "" {
		g, err := uc.groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.NotFound("grupo", groupID)
		}
	}
	if supplierID != "" {
		s, err := uc.suppliers.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFound("proveedor", supplierID)
		}
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Description:    p.Description,
		Unit:           p.Unit,
		GroupID:        p.GroupID,
		SupplierID:     p.SupplierID,
		StockCurrent:   p.StockCurrent,
		StockMinimum:   p.StockMinimum,
		StockMaximum:   p.StockMaximum,
		StockRequested: p.StockRequested,
		StockLevel:     p.StockLevel(),
		CostPrice:      p.CostPrice,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
