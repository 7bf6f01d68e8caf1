package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
)

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Responsible string `json:"responsible"`
}

// Validate valida campos obligatorios.
func (r *CreateLocationRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	if r.Code == "" || r.Name == "" {
		return domain.Validation("code y name son requeridos")
	}
	return nil
}

// UpdateLocationRequest entrada para actualizar una ubicación.
type UpdateLocationRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Responsible *string `json:"responsible"`
	Active      *bool   `json:"active"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Responsible string    `json:"responsible"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
