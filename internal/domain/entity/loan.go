package entity

import "time"

// LoanStatus estado de un préstamo.
type LoanStatus string

// Estados del préstamo. Returned y Lost son terminales.
const (
	LoanOpen              LoanStatus = "open"
	LoanPartiallyReturned LoanStatus = "partially_returned"
	LoanReturned          LoanStatus = "returned"
	LoanOverdue           LoanStatus = "overdue"
	LoanLost              LoanStatus = "lost"
)

// Valid indica si el estado es conocido.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanOpen, LoanPartiallyReturned, LoanReturned, LoanOverdue, LoanLost:
		return true
	}
	return false
}

// Terminal indica si el préstamo ya no admite transiciones.
func (s LoanStatus) Terminal() bool {
	return s == LoanReturned || s == LoanLost
}

// Condiciones de los ítems al salir o volver.
const (
	ConditionNew      = "novo"
	ConditionGood     = "bom"
	ConditionFair     = "regular"
	ConditionDamaged  = "danificado"
	ConditionUnusable = "inutilizavel"
)

// ValidCondition indica si la condición es una de las conocidas (vacío se acepta como "bom").
func ValidCondition(c string) bool {
	switch c {
	case "", ConditionNew, ConditionGood, ConditionFair, ConditionDamaged, ConditionUnusable:
		return true
	}
	return false
}

// Loan préstamo (empréstimo) de materiales a un colaborador.
type Loan struct {
	ID                 string
	Code               string // EMP-YYYY-NNNNN
	CollaboratorID     string
	RequestedBy        string // usuario que registró
	AuthorizedBy       string // opcional
	IssuedAt           time.Time
	DueDate            time.Time
	ReturnedAt         *time.Time
	Status             LoanStatus
	Note               string
	ResponsibilityTerm bool // el colaborador firmó el término de responsabilidad
	Items              []LoanItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LoanItem línea de un préstamo.
type LoanItem struct {
	ID               string
	LoanID           string
	ProductID        string
	LocationID       string // ubicación de origen; vacío = saldo sin ubicación
	QuantityIssued   int
	QuantityReturned int // monotónico, <= QuantityIssued
	ConditionOut     string
	ConditionIn      string
	ReturnNote       string
	ReturnedAt       *time.Time
}

// Pending cantidad aún no devuelta.
func (i *LoanItem) Pending() int {
	return i.QuantityIssued - i.QuantityReturned
}

// Pending suma de pendientes de todos los ítems.
func (l *Loan) Pending() int {
	total := 0
	for i := range l.Items {
		total += l.Items[i].Pending()
	}
	return total
}

// Item busca un ítem por ID.
func (l *Loan) Item(id string) *LoanItem {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}
