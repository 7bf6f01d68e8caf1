package entity

import "time"

// Supplier representa un proveedor de materiales.
type Supplier struct {
	ID        string
	Name      string
	Document  string // CNPJ/CPF
	Email     string
	Phone     string
	Contact   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
