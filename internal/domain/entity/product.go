package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un material del almoxarifado.
// StockCurrent y StockRequested solo los modifica el motor de stock; el resto es catálogo.
type Product struct {
	ID             string
	Code           string // código único
	Description    string
	Unit           string // UN, CX, KG...
	GroupID        string // vacío si no tiene grupo
	SupplierID     string // proveedor preferente, opcional
	StockCurrent   int    // saldo total (suma por ubicación + saldo sin ubicación)
	StockMinimum   int
	StockMaximum   int
	StockRequested int             // cantidad prestada (fuera del almoxarifado)
	CostPrice      decimal.Decimal // costo promedio ponderado
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Niveles de stock para reportes.
const (
	StockLevelCritical  = "CRITICO"
	StockLevelAttention = "ATENCION"
	StockLevelNormal    = "NORMAL"
)

// StockLevel clasifica el saldo actual contra el mínimo: <= mínimo crítico, <= 1.5×mínimo atención.
func (p *Product) StockLevel() string {
	switch {
	case p.StockCurrent <= p.StockMinimum:
		return StockLevelCritical
	case p.StockCurrent*2 <= p.StockMinimum*3:
		return StockLevelAttention
	default:
		return StockLevelNormal
	}
}
