package repository

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	List(ctx context.Context, activeOnly bool, page Page) ([]*entity.Location, int, error)
	// IsReferenced indica si existe stock o alguna transferencia que apunte a la ubicación.
	IsReferenced(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
