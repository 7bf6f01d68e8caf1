package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos (append-only).
type MovementRepository interface {
	// Create inserta el movimiento y asigna Seq.
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, int, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	// DeleteBefore purga movimientos anteriores a before (retención administrativa).
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
