package repository

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// CollaboratorRepository define el puerto de persistencia para Collaborator (DIP).
type CollaboratorRepository interface {
	Create(ctx context.Context, c *entity.Collaborator) error
	GetByID(ctx context.Context, id string) (*entity.Collaborator, error)
	GetByRegistration(ctx context.Context, registration string) (*entity.Collaborator, error)
	Update(ctx context.Context, c *entity.Collaborator) error
	List(ctx context.Context, filter CollaboratorFilter) ([]*entity.Collaborator, int, error)
}

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	List(ctx context.Context, search string, page Page) ([]*entity.Supplier, int, error)
}
