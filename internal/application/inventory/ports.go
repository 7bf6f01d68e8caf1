package inventory

import (
	"context"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o al pool, para lecturas).
type Repos struct {
	Products      repository.ProductRepository
	Stock         repository.StockRepository
	Movements     repository.MovementRepository
	Locations     repository.LocationRepository
	Loans         repository.LoanRepository
	Transfers     repository.TransferRepository
	Collaborators repository.CollaboratorRepository
	Suppliers     repository.SupplierRepository
	Sequences     repository.SequenceRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún efecto es observable.
// Timeouts de bloqueo, deadlocks y fallos de serialización llegan como domain.ErrConcurrency.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
