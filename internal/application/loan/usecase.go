// Package loan implementa la máquina de estados de préstamos sobre el motor de stock.
package loan

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

// UseCase préstamos: alta, devoluciones, pérdida y consultas.
type UseCase struct {
	tx     inventory.TxRunner
	reads  inventory.Repos
	engine *inventory.Engine
	audit  audit.Logger
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso de préstamos.
func NewUseCase(tx inventory.TxRunner, reads inventory.Repos, engine *inventory.Engine, auditLog audit.Logger, log *logger.Logger) *UseCase {
	return &UseCase{
		tx:     tx,
		reads:  reads,
		engine: engine,
		audit:  auditLog,
		log:    log.Component("prestamos"),
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

type stockKey struct{ productID, locationID string }

// Create registra el préstamo y retira el stock de todos los ítems en una sola transacción.
// Toda la disponibilidad se valida antes de la primera mutación.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, req dto.CreateLoanRequest) (*dto.LoanResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar préstamos")
	}
	now := uc.now()
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	items := append([]dto.LoanItemRequest(nil), req.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ProductID != items[j].ProductID {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].LocationID < items[j].LocationID
	})
	need := make(map[stockKey]int, len(items))
	keys := make([]stockKey, 0, len(items))
	for _, it := range items {
		k := stockKey{it.ProductID, it.LocationID}
		if _, ok := need[k]; !ok {
			keys = append(keys, k)
		}
		need[k] += it.Quantity
	}

	var loan *entity.Loan
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		c, err := r.Collaborators.GetByID(ctx, req.CollaboratorID)
		if err != nil {
			return err
		}
		if c == nil || !c.Active {
			return domain.NotFound("colaborador", req.CollaboratorID)
		}

		for _, k := range keys {
			p, available, err := uc.engine.Available(ctx, r, k.productID, k.locationID)
			if err != nil {
				return err
			}
			if !p.Active {
				return domain.Validation("producto %s inactivo", p.Code)
			}
			if available < need[k] {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductCode: p.Code,
					LocationID:  k.locationID,
					Requested:   need[k],
					Available:   available,
				}
			}
		}

		code, err := inventory.NextDocumentCode(ctx, r.Sequences, inventory.PrefixLoan, now)
		if err != nil {
			return err
		}
		loan = &entity.Loan{
			ID:                 uuid.New().String(),
			Code:               code,
			CollaboratorID:     c.ID,
			RequestedBy:        actor.ID,
			AuthorizedBy:       req.AuthorizedBy,
			IssuedAt:           now,
			DueDate:            req.DueDate,
			Status:             entity.LoanOpen,
			Note:               strings.TrimSpace(req.Note),
			ResponsibilityTerm: req.ResponsibilityTerm,
			Items:              make([]entity.LoanItem, 0, len(items)),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		for _, it := range items {
			cond := it.Condition
			if cond == "" {
				cond = entity.ConditionGood
			}
			loan.Items = append(loan.Items, entity.LoanItem{
				ID:             uuid.New().String(),
				LoanID:         loan.ID,
				ProductID:      it.ProductID,
				LocationID:     it.LocationID,
				QuantityIssued: it.Quantity,
				ConditionOut:   cond,
			})
		}
		if err := r.Loans.Create(ctx, loan); err != nil {
			return err
		}
		for _, it := range loan.Items {
			if _, err := uc.engine.IssueForLoan(ctx, r, inventory.Op{
				ProductID:  it.ProductID,
				LocationID: it.LocationID,
				Quantity:   it.QuantityIssued,
				UserID:     actor.ID,
				DocumentID: loan.ID,
				Reference:  loan.Code,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("loan_id", loan.ID).Str("code", loan.Code).Int("items", len(loan.Items)).Str("user_id", actor.ID).Msg("préstamo registrado")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "loans", loan.ID, map[string]any{
		"code": loan.Code, "collaborator_id": loan.CollaboratorID, "due_date": loan.DueDate, "items": req.Items,
	}))
	return ToLoanResponse(loan), nil
}

// ReturnItems aplica un lote de devoluciones y recalcula el estado con los pendientes de todos los ítems.
func (uc *UseCase) ReturnItems(ctx context.Context, actor entity.Actor, loanID string, req dto.ReturnLoanRequest) (*dto.LoanResponse, error) {
	if !actor.CanWrite() {
		return nil, domain.Forbidden("sin permiso para registrar devoluciones")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var loan *entity.Loan
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		loan, err = r.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return domain.NotFound("préstamo", loanID)
		}
		if err := domaininv.CheckLoanReturn(loan); err != nil {
			return err
		}

		returns := append([]dto.ReturnItemRequest(nil), req.Items...)
		for _, ret := range returns {
			item := loan.Item(ret.ItemID)
			if item == nil {
				return domain.NotFound("ítem de préstamo", ret.ItemID)
			}
			if ret.Quantity > item.Pending() {
				return &domain.Error{
					Kind:    domain.ErrInvalidInput,
					Message: "la cantidad excede lo pendiente",
					Details: map[string]any{"item_id": item.ID, "requested": ret.Quantity, "pending": item.Pending()},
				}
			}
		}
		sort.SliceStable(returns, func(i, j int) bool {
			a, b := loan.Item(returns[i].ItemID), loan.Item(returns[j].ItemID)
			if a.ProductID != b.ProductID {
				return a.ProductID < b.ProductID
			}
			return a.LocationID < b.LocationID
		})

		now := uc.now()
		for _, ret := range returns {
			item := loan.Item(ret.ItemID)
			if _, err := uc.engine.ReturnFromLoan(ctx, r, inventory.Op{
				ProductID:  item.ProductID,
				LocationID: item.LocationID,
				Quantity:   ret.Quantity,
				UserID:     actor.ID,
				DocumentID: loan.ID,
				Reference:  loan.Code,
			}); err != nil {
				return err
			}
			item.QuantityReturned += ret.Quantity
			item.ConditionIn = ret.Condition
			if item.ConditionIn == "" {
				item.ConditionIn = entity.ConditionGood
			}
			if ret.Note != "" {
				item.ReturnNote = ret.Note
			}
			item.ReturnedAt = &now
		}

		loan.Status = domaininv.StatusAfterReturn(loan)
		if loan.Status == entity.LoanReturned {
			loan.ReturnedAt = &now
		}
		loan.UpdatedAt = now
		return r.Loans.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("loan_id", loan.ID).Str("status", string(loan.Status)).Int("pending", loan.Pending()).Str("user_id", actor.ID).Msg("devolución registrada")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditReturn, "loans", loan.ID, map[string]any{
		"code": loan.Code, "status": loan.Status, "items": req.Items,
	}))
	return ToLoanResponse(loan), nil
}

// MarkLost da el préstamo por perdido: lo pendiente sale de stock_requested y no vuelve al stock.
func (uc *UseCase) MarkLost(ctx context.Context, actor entity.Actor, loanID string, req dto.MarkLostRequest) (*dto.LoanResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores marcan préstamos como perdidos")
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, domain.Validation("note es requerido")
	}

	var loan *entity.Loan
	var written int
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		written = 0
		loan, err = r.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return domain.NotFound("préstamo", loanID)
		}
		if err := domaininv.CheckLoanLost(loan); err != nil {
			return err
		}

		pending := map[string]int{}
		products := []string{}
		for _, it := range loan.Items {
			if it.Pending() == 0 {
				continue
			}
			if _, ok := pending[it.ProductID]; !ok {
				products = append(products, it.ProductID)
			}
			pending[it.ProductID] += it.Pending()
		}
		sort.Strings(products)
		for _, id := range products {
			if err := uc.engine.WriteOffLoan(ctx, r, inventory.Op{ProductID: id, Quantity: pending[id], UserID: actor.ID, DocumentID: loan.ID}); err != nil {
				return err
			}
			written += pending[id]
		}

		now := uc.now()
		loan.Status = entity.LoanLost
		if loan.Note != "" {
			loan.Note += "\n"
		}
		loan.Note += note
		loan.UpdatedAt = now
		return r.Loans.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Warn().Str("loan_id", loan.ID).Int("written_off", written).Str("user_id", actor.ID).Msg("préstamo marcado como perdido")
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditLost, "loans", loan.ID, map[string]any{
		"code": loan.Code, "note": note, "written_off": written,
	}))
	return ToLoanResponse(loan), nil
}

// Get devuelve el préstamo, persistiendo antes el paso a overdue si corresponde.
func (uc *UseCase) Get(ctx context.Context, loanID string) (*dto.LoanResponse, error) {
	loan, err := uc.reads.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.NotFound("préstamo", loanID)
	}
	now := uc.now()
	if effective := domaininv.ComputeEffectiveStatus(loan, now); effective != loan.Status {
		if _, err := uc.reads.Loans.MarkOverdue(ctx, []string{loan.ID}, now); err != nil {
			return nil, err
		}
		uc.log.Info().Str("loan_id", loan.ID).Str("code", loan.Code).Msg("préstamo vencido")
		loan.Status = effective
		loan.UpdatedAt = now
	}
	return ToLoanResponse(loan), nil
}

// List marca como vencidos los préstamos que lo estén y luego aplica los filtros.
func (uc *UseCase) List(ctx context.Context, filter repository.LoanFilter) (*dto.LoanListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validation("estado de préstamo inválido: %s", filter.Status)
	}
	n, err := uc.reads.Loans.MarkOverdue(ctx, nil, uc.now())
	if err != nil {
		return nil, err
	}
	if n > 0 {
		uc.log.Info().Int64("count", n).Msg("préstamos vencidos actualizados")
	}

	filter.Page = dto.NormalizePage(filter.Page)
	list, total, err := uc.reads.Loans.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LoanResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *ToLoanResponse(l))
	}
	return &dto.LoanListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// ToLoanResponse convierte un préstamo a su DTO.
func ToLoanResponse(l *entity.Loan) *dto.LoanResponse {
	out := &dto.LoanResponse{
		ID:                 l.ID,
		Code:               l.Code,
		CollaboratorID:     l.CollaboratorID,
		RequestedBy:        l.RequestedBy,
		AuthorizedBy:       l.AuthorizedBy,
		IssuedAt:           l.IssuedAt,
		DueDate:            l.DueDate,
		ReturnedAt:         l.ReturnedAt,
		Status:             string(l.Status),
		Note:               l.Note,
		ResponsibilityTerm: l.ResponsibilityTerm,
		Items:              make([]dto.LoanItemResponse, 0, len(l.Items)),
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
	for i := range l.Items {
		it := &l.Items[i]
		out.Items = append(out.Items, dto.LoanItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			LocationID:       it.LocationID,
			QuantityIssued:   it.QuantityIssued,
			QuantityReturned: it.QuantityReturned,
			Pending:          it.Pending(),
			ConditionOut:     it.ConditionOut,
			ConditionIn:      it.ConditionIn,
			ReturnNote:       it.ReturnNote,
			ReturnedAt:       it.ReturnedAt,
		})
	}
	return out
}
