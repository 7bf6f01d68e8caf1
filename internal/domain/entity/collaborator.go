package entity

import "time"

// Collaborator persona que recibe materiales en préstamo.
type Collaborator struct {
	ID           string
	Name         string
	Registration string // matrícula, única
	Sector       string
	Position     string
	Email        string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
