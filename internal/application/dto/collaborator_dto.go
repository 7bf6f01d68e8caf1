package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
)

// CreateCollaboratorRequest entrada para registrar un colaborador.
type CreateCollaboratorRequest struct {
	Name         string `json:"name"`
	Registration string `json:"registration"`
	Sector       string `json:"sector"`
	Position     string `json:"position"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// Validate valida campos obligatorios.
func (r *CreateCollaboratorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Registration = strings.TrimSpace(r.Registration)
	if r.Name == "" || r.Registration == "" {
		return domain.Validation("name y registration son requeridos")
	}
	return nil
}

// UpdateCollaboratorRequest entrada para actualizar un colaborador.
type UpdateCollaboratorRequest struct {
	Name     *string `json:"name"`
	Sector   *string `json:"sector"`
	Position *string `json:"position"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Active   *bool   `json:"active"`
}

// CollaboratorResponse salida de un colaborador.
type CollaboratorResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Registration string    `json:"registration"`
	Sector       string    `json:"sector"`
	Position     string    `json:"position"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CollaboratorListResponse lista paginada de colaboradores.
type CollaboratorListResponse struct {
	Items []CollaboratorResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// CreateSupplierRequest entrada para registrar un proveedor.
type CreateSupplierRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Contact  string `json:"contact"`
}

// Validate valida campos obligatorios.
func (r *CreateSupplierRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return domain.Validation("name es requerido")
	}
	return nil
}

// UpdateSupplierRequest entrada para actualizar un proveedor.
type UpdateSupplierRequest struct {
	Name     *string `json:"name"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Contact  *string `json:"contact"`
	Active   *bool   `json:"active"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Contact   string    `json:"contact"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
