package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almoxarifado-api/internal/domain/inventory"
)

// Op operación de stock sobre un producto.
type Op struct {
	ProductID     string
	LocationID    string // origen; vacío = saldo sin ubicación
	DestinationID string // solo CommitTransfer
	Quantity      int    // > 0; en Adjust es el delta con signo
	UnitCost      *decimal.Decimal
	UserID        string
	DocumentID    string
	Reference     string
}

// Engine motor de mutación de stock: único escritor de StockCurrent, StockRequested,
// Quantity y QuantityReserved, y único productor de movimientos del libro.
//
// Todas las operaciones corren dentro de la transacción del caller (r debe estar atado a ella).
// Orden de bloqueo: fila del producto primero, luego filas de stock por ID de ubicación ascendente.
type Engine struct {
	now func() time.Time
}

// NewEngine construye el motor con reloj real.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Receive registra una entrada: suma en la ubicación (si hay), en StockCurrent y recalcula costo promedio.
func (e *Engine) Receive(ctx context.Context, r Repos, op Op) (*entity.Movement, error) {
	if op.Quantity <= 0 {
		return nil, domain.Validation("la cantidad recibida debe ser mayor que cero")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, domain.Validation("producto %s inactivo", p.Code)
	}
	if op.LocationID != "" {
		if err := e.checkLocation(ctx, r, op.LocationID); err != nil {
			return nil, err
		}
		st, err := r.Stock.GetForUpdate(ctx, p.ID, op.LocationID)
		if err != nil {
			return nil, err
		}
		st.Quantity += op.Quantity
		if err := e.saveStock(ctx, r, st); err != nil {
			return nil, err
		}
	}

	unitCost := p.CostPrice
	if op.UnitCost != nil {
		unitCost = *op.UnitCost
		p.CostPrice = domaininv.CostCalculator(p.StockCurrent, p.CostPrice, op.Quantity, unitCost)
	}
	p.StockCurrent += op.Quantity
	if err := r.Products.UpdateStock(ctx, p); err != nil {
		return nil, err
	}
	return e.record(ctx, r, op, op.LocationID, entity.MovementEntry, op.Quantity, unitCost)
}

// Adjust aplica un delta con signo sobre una ubicación; nunca la deja por debajo de cero ni de lo reservado.
func (e *Engine) Adjust(ctx context.Context, r Repos, op Op) (*entity.Movement, error) {
	delta := op.Quantity
	if delta == 0 {
		return nil, domain.Validation("el ajuste no puede ser cero")
	}
	if op.LocationID == "" {
		return nil, domain.Validation("el ajuste requiere ubicación")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return nil, err
	}
	if err := e.checkLocation(ctx, r, op.LocationID); err != nil {
		return nil, err
	}
	st, err := r.Stock.GetForUpdate(ctx, p.ID, op.LocationID)
	if err != nil {
		return nil, err
	}
	if delta < 0 && st.Available() < -delta {
		return nil, insufficient(p, op.LocationID, -delta, st.Available())
	}
	st.Quantity += delta
	if err := e.saveStock(ctx, r, st); err != nil {
		return nil, err
	}

	p.StockCurrent += delta
	if err := r.Products.UpdateStock(ctx, p); err != nil {
		return nil, err
	}
	return e.record(ctx, r, op, op.LocationID, entity.MovementAdjustment, delta, p.CostPrice)
}

// IssueForLoan retira stock para un préstamo: baja StockCurrent, sube StockRequested.
// Sin ubicación se descuenta del saldo sin ubicación (StockCurrent - suma por ubicación).
func (e *Engine) IssueForLoan(ctx context.Context, r Repos, op Op) (*entity.Movement, error) {
	if op.Quantity <= 0 {
		return nil, domain.Validation("la cantidad prestada debe ser mayor que cero")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, domain.Validation("producto %s inactivo", p.Code)
	}

	if op.LocationID != "" {
		if err := e.checkLocation(ctx, r, op.LocationID); err != nil {
			return nil, err
		}
		st, err := r.Stock.GetForUpdate(ctx, p.ID, op.LocationID)
		if err != nil {
			return nil, err
		}
		if st.Available() < op.Quantity {
			return nil, insufficient(p, op.LocationID, op.Quantity, st.Available())
		}
		st.Quantity -= op.Quantity
		if err := e.saveStock(ctx, r, st); err != nil {
			return nil, err
		}
	} else {
		unlocated, err := e.unlocated(ctx, r, p)
		if err != nil {
			return nil, err
		}
		if unlocated < op.Quantity {
			return nil, insufficient(p, "", op.Quantity, unlocated)
		}
	}

	p.StockCurrent -= op.Quantity
	p.StockRequested += op.Quantity
	if err := r.Products.UpdateStock(ctx, p); err != nil {
		return nil, err
	}
	return e.record(ctx, r, op, op.LocationID, entity.MovementLoanOut, -op.Quantity, p.CostPrice)
}

// ReturnFromLoan inverso de IssueForLoan. StockRequested no baja de cero.
// La ubicación de origen debe existir; puede estar inactiva (lo prestado vuelve igual).
func (e *Engine) ReturnFromLoan(ctx context.Context, r Repos, op Op) (*entity.Movement, error) {
	if op.Quantity <= 0 {
		return nil, domain.Validation("la cantidad devuelta debe ser mayor que cero")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return nil, err
	}
	if op.LocationID != "" {
		loc, err := r.Locations.GetByID(ctx, op.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.NotFound("ubicación", op.LocationID)
		}
		st, err := r.Stock.GetForUpdate(ctx, p.ID, op.LocationID)
		if err != nil {
			return nil, err
		}
		st.Quantity += op.Quantity
		if err := e.saveStock(ctx, r, st); err != nil {
			return nil, err
		}
	}

	p.StockCurrent += op.Quantity
	p.StockRequested = max(0, p.StockRequested-op.Quantity)
	if err := r.Products.UpdateStock(ctx, p); err != nil {
		return nil, err
	}
	return e.record(ctx, r, op, op.LocationID, entity.MovementLoanReturn, op.Quantity, p.CostPrice)
}

// WriteOffLoan da de baja lo prestado que no volverá (préstamo perdido): baja StockRequested
// sin tocar StockCurrent, que ya se descontó al prestar. No genera movimiento.
func (e *Engine) WriteOffLoan(ctx context.Context, r Repos, op Op) error {
	if op.Quantity <= 0 {
		return domain.Validation("la cantidad a dar de baja debe ser mayor que cero")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return err
	}
	p.StockRequested = max(0, p.StockRequested-op.Quantity)
	return r.Products.UpdateStock(ctx, p)
}

// ReserveForTransfer reserva cantidad en el origen. No genera movimiento.
func (e *Engine) ReserveForTransfer(ctx context.Context, r Repos, op Op) error {
	if op.Quantity <= 0 {
		return domain.Validation("la cantidad a reservar debe ser mayor que cero")
	}
	if op.LocationID == "" {
		return domain.Validation("la reserva requiere ubicación de origen")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return err
	}
	if !p.Active {
		return domain.Validation("producto %s inactivo", p.Code)
	}
	st, err := r.Stock.GetForUpdate(ctx, p.ID, op.LocationID)
	if err != nil {
		return err
	}
	if st.Available() < op.Quantity {
		return insufficient(p, op.LocationID, op.Quantity, st.Available())
	}
	st.QuantityReserved += op.Quantity
	return e.saveStock(ctx, r, st)
}

// ReleaseReservation libera una reserva. QuantityReserved no baja de cero.
func (e *Engine) ReleaseReservation(ctx context.Context, r Repos, op Op) error {
	if op.Quantity <= 0 {
		return domain.Validation("la cantidad a liberar debe ser mayor que cero")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return err
	}
	st, err := r.Stock.GetForUpdate(ctx, p.ID, op.LocationID)
	if err != nil {
		return err
	}
	st.QuantityReserved = max(0, st.QuantityReserved-op.Quantity)
	return e.saveStock(ctx, r, st)
}

// CommitTransfer mueve la cantidad reservada del origen al destino y registra el par
// transfer_out/transfer_in con el mismo documento. StockCurrent no cambia.
func (e *Engine) CommitTransfer(ctx context.Context, r Repos, op Op) ([]*entity.Movement, error) {
	if op.Quantity <= 0 {
		return nil, domain.Validation("la cantidad transferida debe ser mayor que cero")
	}
	if op.LocationID == "" || op.DestinationID == "" || op.LocationID == op.DestinationID {
		return nil, domain.Validation("origen y destino deben ser ubicaciones distintas")
	}
	p, err := e.lockProduct(ctx, r, op.ProductID)
	if err != nil {
		return nil, err
	}

	// Filas de stock en orden de ID de ubicación para evitar deadlocks.
	firstID, secondID := op.LocationID, op.DestinationID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := r.Stock.GetForUpdate(ctx, p.ID, firstID)
	if err != nil {
		return nil, err
	}
	second, err := r.Stock.GetForUpdate(ctx, p.ID, secondID)
	if err != nil {
		return nil, err
	}
	src, dst := first, second
	if src.LocationID != op.LocationID {
		src, dst = second, first
	}

	if src.Quantity < op.Quantity {
		return nil, insufficient(p, op.LocationID, op.Quantity, src.Quantity)
	}
	src.Quantity -= op.Quantity
	src.QuantityReserved = min(max(0, src.QuantityReserved-op.Quantity), src.Quantity)
	dst.Quantity += op.Quantity
	if err := e.saveStock(ctx, r, src); err != nil {
		return nil, err
	}
	if err := e.saveStock(ctx, r, dst); err != nil {
		return nil, err
	}

	out, err := e.record(ctx, r, op, op.LocationID, entity.MovementTransferOut, -op.Quantity, p.CostPrice)
	if err != nil {
		return nil, err
	}
	in, err := e.record(ctx, r, op, op.DestinationID, entity.MovementTransferIn, op.Quantity, p.CostPrice)
	if err != nil {
		return nil, err
	}
	return []*entity.Movement{out, in}, nil
}

// Available bloquea producto (y ubicación si se indica) y devuelve la cantidad disponible.
// Sin ubicación devuelve el saldo sin ubicación. La ubicación indicada debe existir y estar activa.
func (e *Engine) Available(ctx context.Context, r Repos, productID, locationID string) (*entity.Product, int, error) {
	p, err := e.lockProduct(ctx, r, productID)
	if err != nil {
		return nil, 0, err
	}
	if locationID == "" {
		n, err := e.unlocated(ctx, r, p)
		return p, n, err
	}
	if err := e.checkLocation(ctx, r, locationID); err != nil {
		return nil, 0, err
	}
	st, err := r.Stock.GetForUpdate(ctx, p.ID, locationID)
	if err != nil {
		return nil, 0, err
	}
	return p, st.Available(), nil
}

func (e *Engine) lockProduct(ctx context.Context, r Repos, id string) (*entity.Product, error) {
	p, err := r.Products.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto", id)
	}
	return p, nil
}

func (e *Engine) checkLocation(ctx context.Context, r Repos, id string) error {
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
	return nil
}

// unlocated saldo que no está asignado a ninguna ubicación.
func (e *Engine) unlocated(ctx context.Context, r Repos, p *entity.Product) (int, error) {
	located, err := r.Stock.SumByProduct(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	return max(0, p.StockCurrent-located), nil
}

func (e *Engine) saveStock(ctx context.Context, r Repos, st *entity.Stock) error {
	st.UpdatedAt = e.now()
	return r.Stock.Upsert(ctx, st)
}

func (e *Engine) record(ctx context.Context, r Repos, op Op, locationID string, kind entity.MovementKind, qty int, unitCost decimal.Decimal) (*entity.Movement, error) {
	mov := &entity.Movement{
		ID:         uuid.New().String(),
		ProductID:  op.ProductID,
		LocationID: locationID,
		Kind:       kind,
		Quantity:   qty,
		UnitCost:   unitCost,
		DocumentID: op.DocumentID,
		Reference:  op.Reference,
		UserID:     op.UserID,
		CreatedAt:  e.now(),
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func insufficient(p *entity.Product, locationID string, requested, available int) error {
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductCode: p.Code,
		LocationID:  locationID,
		Requested:   requested,
		Available:   available,
	}
}
