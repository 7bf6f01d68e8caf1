package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

// InventoryUseCase recepciones, ajustes, consultas de saldo y del libro de movimientos.
type InventoryUseCase struct {
	tx           TxRunner
	reads        Repos
	engine       *Engine
	audit        audit.Logger
	log          *logger.Logger
	ledgerMonths int
	now          func() time.Time
}

// NewInventoryUseCase construye el caso de uso. reads son repositorios fuera de transacción.
func NewInventoryUseCase(tx TxRunner, reads Repos, engine *Engine, auditLog audit.Logger, log *logger.Logger, ledgerMonths int) *InventoryUseCase {
	return &InventoryUseCase{
		tx:           tx,
		reads:        reads,
		engine:       engine,
		audit:        auditLog,
		log:          log.Component("inventario"),
		ledgerMonths: ledgerMonths,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InventoryUseCase) WithClock(now func() time.Time) *InventoryUseCase {
	cp := *uc
	cp.now = now
	cp.engine = uc.engine.WithClock(now)
	return &cp
}

// Receive registra una recepción de varias líneas en una sola transacción.
func (uc *InventoryUseCase) Receive(ctx context.Context, actor entity.Actor, req dto.ReceiptRequest) (*dto.ReceiptResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar entradas")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Orden determinístico de bloqueo: producto y luego ubicación.
	lines := append([]dto.ReceiptLine(nil), req.Lines...)
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].LocationID < lines[j].LocationID
	})

	docID := uuid.New().String()
	var code string
	var movs []*entity.Movement
	err := uc.tx.Run(ctx, func(ctx context.Context, r Repos) error {
		movs = movs[:0]
		if req.SupplierID != "" {
			s, err := r.Suppliers.GetByID(ctx, req.SupplierID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.NotFound("proveedor", req.SupplierID)
			}
		}
		var err error
		code, err = NextDocumentCode(ctx, r.Sequences, PrefixReceipt, uc.now())
		if err != nil {
			return err
		}
		reference := code
		if req.Reference != "" {
			reference = fmt.Sprintf("%s (%s)", code, req.Reference)
		}
		for _, l := range lines {
			mov, err := uc.engine.Receive(ctx, r, Op{
				ProductID:  l.ProductID,
				LocationID: l.LocationID,
				Quantity:   l.Quantity,
				UnitCost:   l.UnitCost,
				UserID:     actor.ID,
				DocumentID: docID,
				Reference:  reference,
			})
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("code", code).Int("lines", len(lines)).Str("user_id", actor.ID).Msg("recepción registrada")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditReceive, "movements", docID, map[string]any{
		"code": code, "supplier_id": req.SupplierID, "reference": req.Reference, "lines": req.Lines,
	}))

	out := &dto.ReceiptResponse{DocumentID: docID, Code: code, Movements: make([]dto.MovementResponse, 0, len(movs))}
	for _, m := range movs {
		out.Movements = append(out.Movements, ToMovementResponse(m))
	}
	return out, nil
}

// Adjust registra un ajuste de inventario con motivo.
func (uc *InventoryUseCase) Adjust(ctx context.Context, actor entity.Actor, req dto.AdjustmentRequest) (*dto.MovementResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para ajustar inventario")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var mov *entity.Movement
	err := uc.tx.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		mov, err = uc.engine.Adjust(ctx, r, Op{
			ProductID:  req.ProductID,
			LocationID: req.LocationID,
			Quantity:   req.Delta,
			UserID:     actor.ID,
			DocumentID: uuid.New().String(),
			Reference:  req.Reason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", req.ProductID).Int("delta", req.Delta).Str("user_id", actor.ID).Msg("ajuste registrado")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditAdjust, "movements", mov.ID, req))

	out := ToMovementResponse(mov)
	return &out, nil
}

// StockByLocation saldos de todos los productos en una ubicación.
func (uc *InventoryUseCase) StockByLocation(ctx context.Context, locationID string) ([]dto.StockResponse, error) {
	loc, err := uc.reads.Locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.NotFound("ubicación", locationID)
	}
	list, err := uc.reads.Stock.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStockResponse(s))
	}
	return out, nil
}

// StockByProduct saldo total, prestado, sin ubicación y por ubicación de un producto.
func (uc *InventoryUseCase) StockByProduct(ctx context.Context, productID string) (*dto.ProductStockResponse, error) {
	p, err := uc.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto", productID)
	}
	list, err := uc.reads.Stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductStockResponse{
		ProductID:      p.ID,
		Code:           p.Code,
		StockCurrent:   p.StockCurrent,
		StockRequested: p.StockRequested,
		Locations:      make([]dto.StockResponse, 0, len(list)),
	}
	located := 0
	for _, s := range list {
		located += s.Quantity
		out.Locations = append(out.Locations, toStockResponse(s))
	}
	out.Unlocated = max(0, p.StockCurrent-located)
	return out, nil
}

// ListMovements consulta el libro de movimientos.
func (uc *InventoryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domain.Validation("tipo de movimiento inválido: %s", filter.Kind)
	}
	filter.Page = dto.NormalizePage(filter.Page)
	list, total, err := uc.reads.Movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// PurgeMovements elimina movimientos anteriores al horizonte de retención (mantenimiento, solo admin).
func (uc *InventoryUseCase) PurgeMovements(ctx context.Context, actor entity.Actor) (*dto.PurgeResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores purgan movimientos")
	}
	if uc.ledgerMonths <= 0 {
		return nil, domain.Validation("retención del libro deshabilitada")
	}
	before := uc.now().AddDate(0, -uc.ledgerMonths, 0)
	n, err := uc.reads.Movements.DeleteBefore(ctx, before)
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Time("before", before).Int64("deleted", n).Str("user_id", actor.ID).Msg("purga del libro de movimientos")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditPurge, "movements", "", map[string]any{
		"before": before, "deleted": n,
	}))
	return &dto.PurgeResponse{Before: before, Deleted: n}, nil
}

// ToMovementResponse convierte un movimiento a su DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		Seq:        m.Seq,
		ProductID:  m.ProductID,
		LocationID: m.LocationID,
		Kind:       string(m.Kind),
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		DocumentID: m.DocumentID,
		Reference:  m.Reference,
		UserID:     m.UserID,
		CreatedAt:  m.CreatedAt,
	}
}

func toStockResponse(s *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ProductID:        s.ProductID,
		LocationID:       s.LocationID,
		Quantity:         s.Quantity,
		QuantityReserved: s.QuantityReserved,
		Available:        s.Available(),
		UpdatedAt:        s.UpdatedAt,
	}
}
