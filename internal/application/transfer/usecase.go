// Package transfer implementa la máquina de estados de transferencias entre ubicaciones.
package transfer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

// UseCase transferencias: alta con reserva, aprobación, despacho, conclusión y cancelación.
type UseCase struct {
	tx     inventory.TxRunner
	reads  inventory.Repos
	engine *inventory.Engine
	audit  audit.Logger
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso de transferencias.
func NewUseCase(tx inventory.TxRunner, reads inventory.Repos, engine *inventory.Engine, auditLog audit.Logger, log *logger.Logger) *UseCase {
	return &UseCase{
		tx:     tx,
		reads:  reads,
		engine: engine,
		audit:  auditLog,
		log:    log.Component("transferencias"),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj del caso de uso y del motor (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	cp := *uc
	cp.now = now
	cp.engine = uc.engine.WithClock(now)
	return &cp
}

// Create registra la transferencia en pending y reserva cada ítem en el origen.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar transferencias")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items := append([]dto.TransferItemRequest(nil), req.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	need := make(map[string]int, len(items))
	products := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := need[it.ProductID]; !ok {
			products = append(products, it.ProductID)
		}
		need[it.ProductID] += it.Quantity
	}

	var t *entity.Transfer
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		for _, id := range []string{req.SourceID, req.DestinationID} {
			loc, err := r.Locations.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if loc == nil {
				return domain.NotFound("ubicación", id)
			}
			if !loc.Active {
				return domain.Validation("ubicación %s inactiva", loc.Code)
			}
		}

		for _, id := range products {
			p, available, err := uc.engine.Available(ctx, r, id, req.SourceID)
			if err != nil {
				return err
			}
			if !p.Active {
				return domain.Validation("producto %s inactivo", p.Code)
			}
			if available < need[id] {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductCode: p.Code,
					LocationID:  req.SourceID,
					Requested:   need[id],
					Available:   available,
				}
			}
		}

		now := uc.now()
		code, err := inventory.NextDocumentCode(ctx, r.Sequences, inventory.PrefixTransfer, now)
		if err != nil {
			return err
		}
		t = &entity.Transfer{
			ID:            uuid.New().String(),
			Code:          code,
			SourceID:      req.SourceID,
			DestinationID: req.DestinationID,
			RequestedBy:   actor.ID,
			Status:        entity.TransferPending,
			Note:          strings.TrimSpace(req.Note),
			RequestedAt:   now,
			Items:         make([]entity.TransferItem, 0, len(items)),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for _, it := range items {
			t.Items = append(t.Items, entity.TransferItem{
				ID:                uuid.New().String(),
				TransferID:        t.ID,
				ProductID:         it.ProductID,
				QuantityRequested: it.Quantity,
			})
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		for _, it := range t.Items {
			if err := uc.engine.ReserveForTransfer(ctx, r, inventory.Op{
				ProductID:  it.ProductID,
				LocationID: t.SourceID,
				Quantity:   it.QuantityRequested,
				UserID:     actor.ID,
				DocumentID: t.ID,
				Reference:  t.Code,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", t.ID).Str("code", t.Code).Str("source_id", t.SourceID).Str("destination_id", t.DestinationID).Str("user_id", actor.ID).Msg("transferencia registrada")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "transfers", t.ID, map[string]any{
		"code": t.Code, "source_id": t.SourceID, "destination_id": t.DestinationID, "items": req.Items,
	}))
	return ToTransferResponse(t), nil
}

// Approve aprueba una transferencia pendiente. Requiere rol admin.
func (uc *UseCase) Approve(ctx context.Context, actor entity.Actor, id string) (*dto.TransferResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores aprueban transferencias")
	}
	return uc.transition(ctx, actor, id, domaininv.TransferActionApprove, entity.AuditApprove, nil,
		func(_ context.Context, _ inventory.Repos, t *entity.Transfer, now time.Time) error {
			t.ApprovedBy = actor.ID
			t.ApprovedAt = &now
			return nil
		})
}

// Dispatch marca la transferencia aprobada como en tránsito; envío completo de lo solicitado.
func (uc *UseCase) Dispatch(ctx context.Context, actor entity.Actor, id string) (*dto.TransferResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para despachar transferencias")
	}
	return uc.transition(ctx, actor, id, domaininv.TransferActionDispatch, entity.AuditDispatch, nil,
		func(_ context.Context, _ inventory.Repos, t *entity.Transfer, now time.Time) error {
			t.DispatchedAt = &now
			for i := range t.Items {
				t.Items[i].QuantitySent = t.Items[i].QuantityRequested
			}
			return nil
		})
}

// Complete mueve lo reservado del origen al destino con el par de movimientos por ítem.
func (uc *UseCase) Complete(ctx context.Context, actor entity.Actor, id string) (*dto.TransferResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para concluir transferencias")
	}
	return uc.transition(ctx, actor, id, domaininv.TransferActionComplete, entity.AuditComplete, nil,
		func(ctx context.Context, r inventory.Repos, t *entity.Transfer, now time.Time) error {
			for _, i := range byProduct(t) {
				it := &t.Items[i]
				if _, err := uc.engine.CommitTransfer(ctx, r, inventory.Op{
					ProductID:     it.ProductID,
					LocationID:    t.SourceID,
					DestinationID: t.DestinationID,
					Quantity:      it.QuantityRequested,
					UserID:        actor.ID,
					DocumentID:    t.ID,
					Reference:     t.Code,
				}); err != nil {
					return err
				}
				it.QuantitySent = it.QuantityRequested
				it.QuantityReceived = it.QuantityRequested
			}
			t.CompletedAt = &now
			return nil
		})
}

// Cancel libera las reservas. No genera movimientos.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, id string, req dto.CancelTransferRequest) (*dto.TransferResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para cancelar transferencias")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.Validation("reason es requerido")
	}
	return uc.transition(ctx, actor, id, domaininv.TransferActionCancel, entity.AuditCancel, map[string]any{"reason": reason},
		func(ctx context.Context, r inventory.Repos, t *entity.Transfer, _ time.Time) error {
			for _, i := range byProduct(t) {
				it := t.Items[i]
				if err := uc.engine.ReleaseReservation(ctx, r, inventory.Op{
					ProductID:  it.ProductID,
					LocationID: t.SourceID,
					Quantity:   it.QuantityRequested,
					UserID:     actor.ID,
					DocumentID: t.ID,
				}); err != nil {
					return err
				}
			}
			t.CancelReason = reason
			return nil
		})
}

// transition bloquea la transferencia, valida la acción contra el estado actual y aplica fn.
func (uc *UseCase) transition(
	ctx context.Context,
	actor entity.Actor,
	id, action, auditAction string,
	details map[string]any,
	fn func(ctx context.Context, r inventory.Repos, t *entity.Transfer, now time.Time) error,
) (*dto.TransferResponse, error) {
	var t *entity.Transfer
	var from entity.TransferStatus
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		t, err = r.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NotFound("transferencia", id)
		}
		from = t.Status
		next, err := domaininv.NextTransferStatus(t.Status, action)
		if err != nil {
			return err
		}
		now := uc.now()
		if err := fn(ctx, r, t, now); err != nil {
			return err
		}
		t.Status = next
		t.UpdatedAt = now
		return r.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", t.ID).Str("code", t.Code).Str("from", string(from)).Str("to", string(t.Status)).Str("user_id", actor.ID).Msg("transferencia actualizada")
	if details == nil {
		details = map[string]any{}
	}
	details["code"] = t.Code
	details["from"] = from
	details["to"] = t.Status
	uc.audit.Log(ctx, audit.Event(actor.ID, auditAction, "transfers", t.ID, details))
	return ToTransferResponse(t), nil
}

// byProduct índices de los ítems en orden de producto (orden de bloqueo).
func byProduct(t *entity.Transfer) []int {
	idx := make([]int, len(t.Items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.Items[idx[a]].ProductID < t.Items[idx[b]].ProductID })
	return idx
}

// Get devuelve una transferencia.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.TransferResponse, error) {
	t, err := uc.reads.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("transferencia", id)
	}
	return ToTransferResponse(t), nil
}

// List lista transferencias con filtros.
func (uc *UseCase) List(ctx context.Context, filter repository.TransferFilter) (*dto.TransferListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validation("estado de transferencia inválido: %s", filter.Status)
	}
	filter.Page = dto.NormalizePage(filter.Page)
	list, total, err := uc.reads.Transfers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *ToTransferResponse(t))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// ToTransferResponse convierte una transferencia a su DTO.
func ToTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	out := &dto.TransferResponse{
		ID:            t.ID,
		Code:          t.Code,
		SourceID:      t.SourceID,
		DestinationID: t.DestinationID,
		RequestedBy:   t.RequestedBy,
		ApprovedBy:    t.ApprovedBy,
		Status:        string(t.Status),
		Note:          t.Note,
		CancelReason:  t.CancelReason,
		RequestedAt:   t.RequestedAt,
		ApprovedAt:    t.ApprovedAt,
		DispatchedAt:  t.DispatchedAt,
		CompletedAt:   t.CompletedAt,
		Items:         make([]dto.TransferItemResponse, 0, len(t.Items)),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			QuantityRequested: it.QuantityRequested,
			QuantitySent:      it.QuantitySent,
			QuantityReceived:  it.QuantityReceived,
		})
	}
	return out
}
