package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del libro (ledger).
type MovementKind string

// Tipos de movimiento.
const (
	MovementEntry       MovementKind = "entry"        // entrada / recepción
	MovementAdjustment  MovementKind = "adjustment"   // ajuste de inventario (+/-)
	MovementLoanOut     MovementKind = "loan_out"     // salida por préstamo
	MovementLoanReturn  MovementKind = "loan_return"  // devolución de préstamo
	MovementTransferOut MovementKind = "transfer_out" // salida por transferencia (origen)
	MovementTransferIn  MovementKind = "transfer_in"  // entrada por transferencia (destino)
)

// Valid indica si el tipo es conocido.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementAdjustment, MovementLoanOut, MovementLoanReturn, MovementTransferOut, MovementTransferIn:
		return true
	}
	return false
}

// Movement registro inmutable del libro de movimientos.
// Quantity es con signo: positivo entra, negativo sale.
type Movement struct {
	ID         string
	Seq        int64 // orden de commit, asignado por el almacenamiento
	ProductID  string
	LocationID string // vacío = saldo sin ubicación
	Kind       MovementKind
	Quantity   int
	UnitCost   decimal.Decimal
	DocumentID string // préstamo, transferencia o recepción que originó el movimiento
	Reference  string // código legible del documento o motivo del ajuste
	UserID     string
	CreatedAt  time.Time
}
