package repository

import (
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// Page paginación común de listados.
type Page struct {
	Limit  int
	Offset int
}

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string // código o descripción
	GroupID    string
	ActiveOnly bool
	Page
}

// MovementFilter filtros del libro de movimientos.
type MovementFilter struct {
	ProductID  string
	LocationID string
	Kind       entity.MovementKind
	DocumentID string
	From, To   *time.Time
	Page
}

// LoanFilter filtros del listado de préstamos.
type LoanFilter struct {
	Status         entity.LoanStatus
	CollaboratorID string
	Search         string // código del préstamo o nombre del colaborador
	From, To       *time.Time
	Page
}

// TransferFilter filtros del listado de transferencias.
type TransferFilter struct {
	Status     entity.TransferStatus
	LocationID string // origen o destino
	Search     string // código
	Page
}

// CollaboratorFilter filtros del listado de colaboradores.
type CollaboratorFilter struct {
	Search     string
	Sector     string
	ActiveOnly bool
	Page
}

// AuditFilter filtros del log de auditoría.
type AuditFilter struct {
	UserID   string
	Action   string
	Table    string
	EntityID string
	From, To *time.Time
	Page
}
