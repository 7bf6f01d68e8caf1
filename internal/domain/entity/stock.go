package entity

import "time"

// Stock representa el saldo de un producto en una ubicación.
// Invariante: 0 <= QuantityReserved <= Quantity.
type Stock struct {
	ProductID        string
	LocationID       string
	Quantity         int
	QuantityReserved int // reservado por transferencias pendientes o aprobadas
	UpdatedAt        time.Time
}

// Available cantidad libre para préstamos, ajustes negativos o nuevas transferencias.
func (s *Stock) Available() int {
	return s.Quantity - s.QuantityReserved
}
