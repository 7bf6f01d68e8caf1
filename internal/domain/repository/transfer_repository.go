package repository

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para transferencias e ítems.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// Update persiste estado, responsables, fechas y cantidades enviadas/recibidas.
	Update(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, int, error)
}
