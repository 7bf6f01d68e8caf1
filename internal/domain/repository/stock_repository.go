package repository

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por ubicación+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve el stock o una fila en cero (no persistida) si no existe.
	Get(ctx context.Context, productID, locationID string) (*entity.Stock, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error)
	// SumByProduct suma las cantidades por ubicación de un producto.
	SumByProduct(ctx context.Context, productID string) (int, error)
}
