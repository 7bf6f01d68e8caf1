package repository

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID/GetByCode devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE); primer lock de toda operación de stock.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update actualiza solo campos de catálogo (nunca cantidades).
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock persiste StockCurrent, StockRequested y CostPrice; uso exclusivo del motor de stock.
	UpdateStock(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	Delete(ctx context.Context, id string) error
}

// ProductGroupRepository define el puerto de persistencia para grupos de productos.
type ProductGroupRepository interface {
	Create(ctx context.Context, group *entity.ProductGroup) error
	GetByID(ctx context.Context, id string) (*entity.ProductGroup, error)
	List(ctx context.Context) ([]*entity.ProductGroup, error)
}
