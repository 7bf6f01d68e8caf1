package inventory

import (
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// ComputeEffectiveStatus devuelve el estado que el préstamo debería tener en now.
// Un préstamo abierto o parcialmente devuelto con la fecha de vencimiento superada pasa a overdue.
// Función pura: quien la usa decide si persiste el cambio.
func ComputeEffectiveStatus(loan *entity.Loan, now time.Time) entity.LoanStatus {
	switch loan.Status {
	case entity.LoanOpen, entity.LoanPartiallyReturned:
		if !loan.DueDate.IsZero() && now.After(loan.DueDate) {
			return entity.LoanOverdue
		}
	}
	return loan.Status
}

// CheckLoanReturn valida que el préstamo admita devoluciones (overdue se comporta como abierto).
func CheckLoanReturn(loan *entity.Loan) error {
	if loan.Status.Terminal() {
		return domain.InvalidState("préstamo", string(loan.Status), "devolución")
	}
	return nil
}

// CheckLoanLost valida que el préstamo pueda marcarse como perdido.
func CheckLoanLost(loan *entity.Loan) error {
	if loan.Status.Terminal() {
		return domain.InvalidState("préstamo", string(loan.Status), "marcar como perdido")
	}
	return nil
}

// StatusAfterReturn estado resultante tras aplicar devoluciones: returned si no queda nada pendiente.
func StatusAfterReturn(loan *entity.Loan) entity.LoanStatus {
	if loan.Pending() == 0 {
		return entity.LoanReturned
	}
	return entity.LoanPartiallyReturned
}
