package entity

import "time"

// Location representa una ubicación física de almacenamiento (sala, estante, depósito).
type Location struct {
	ID          string
	Code        string // código único
	Name        string
	Address     string
	Responsible string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
