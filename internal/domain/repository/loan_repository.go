package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// LoanRepository define el puerto de persistencia para préstamos e ítems.
type LoanRepository interface {
	// Create inserta el préstamo con sus ítems.
	Create(ctx context.Context, loan *entity.Loan) error
	GetByID(ctx context.Context, id string) (*entity.Loan, error)
	// GetForUpdate bloquea la cabecera del préstamo.
	GetForUpdate(ctx context.Context, id string) (*entity.Loan, error)
	// Update persiste estado, fechas, nota y los campos de devolución de los ítems.
	Update(ctx context.Context, loan *entity.Loan) error
	List(ctx context.Context, filter LoanFilter) ([]*entity.Loan, int, error)
	// MarkOverdue pasa a overdue los préstamos indicados que sigan abiertos y vencidos en now.
	MarkOverdue(ctx context.Context, ids []string, now time.Time) (int64, error)
}
