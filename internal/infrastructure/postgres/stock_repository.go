package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `product_id, location_id, quantity, quantity_reserved, updated_at`

func (r *StockRepo) getOne(ctx context.Context, op, suffix, productID, locationID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND location_id = $2` + suffix
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, locationID).Scan(
		&s.ProductID, &s.LocationID, &s.Quantity, &s.QuantityReserved, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, LocationID: locationID}, nil
		}
		return nil, mapError(op, err)
	}
	return &s, nil
}

// Get obtiene el stock de un producto en una ubicación (fila en cero si no existe).
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock", "", productID, locationID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Si la fila no existe no hay nada que bloquear: el lock del producto serializa la inserción.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock for update", " FOR UPDATE", productID, locationID)
}

// Upsert inserta o actualiza cantidad y reservado (por producto y ubicación).
func (r *StockRepo) Upsert(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, location_id, quantity, quantity_reserved, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, quantity_reserved = EXCLUDED.quantity_reserved, updated_at = now()`
	_, err := r.q.Exec(ctx, query, s.ProductID, s.LocationID, s.Quantity, s.QuantityReserved)
	return mapError("upsert stock", err)
}

func (r *StockRepo) list(ctx context.Context, op, where, order, arg string) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+` FROM stock WHERE `+where+` ORDER BY `+order, arg)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var out []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.QuantityReserved, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, mapError(op, rows.Err())
}

// ListByLocation saldos de todos los productos en una ubicación.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error) {
	return r.list(ctx, "list stock by location", "location_id = $1", "product_id", locationID)
}

// ListByProduct saldos de un producto en cada ubicación.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	return r.list(ctx, "list stock by product", "product_id = $1", "location_id", productID)
}

// SumByProduct suma las cantidades por ubicación de un producto.
func (r *StockRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, mapError("sum stock", err)
	}
	return total, nil
}
