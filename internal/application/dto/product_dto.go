package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
)

// CreateProductRequest entrada para crear un producto. El stock inicial entra por recepción, nunca aquí.
type CreateProductRequest struct {
	Code         string           `json:"code"`
	Description  string           `json:"description"`
	Unit         string           `json:"unit"`
	GroupID      string           `json:"group_id,omitempty"`
	SupplierID   string           `json:"supplier_id,omitempty"`
	StockMinimum int              `json:"stock_minimum"`
	StockMaximum int              `json:"stock_maximum"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
}

// Validate valida campos obligatorios y límites.
func (r *CreateProductRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	r.Description = strings.TrimSpace(r.Description)
	if r.Code == "" {
		return domain.Validation("code es requerido")
	}
	if r.Description == "" {
		return domain.Validation("description es requerido")
	}
	if r.Unit == "" {
		r.Unit = "UN"
	}
	return validateMinMax(r.StockMinimum, r.StockMaximum)
}

// UpdateProductRequest entrada para actualizar un producto (sin cantidades).
type UpdateProductRequest struct {
	Description  *string          `json:"description"`
	Unit         *string          `json:"unit"`
	GroupID      *string          `json:"group_id"`
	SupplierID   *string          `json:"supplier_id"`
	StockMinimum *int             `json:"stock_minimum"`
	StockMaximum *int             `json:"stock_maximum"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	Active       *bool            `json:"active"`
}

func validateMinMax(minimum, maximum int) error {
	if minimum < 0 || maximum < 0 {
		return domain.Validation("stock mínimo y máximo no pueden ser negativos")
	}
	if maximum > 0 && minimum > maximum {
		return domain.Validation("stock mínimo no puede superar el máximo")
	}
	return nil
}

// ValidateMinMax expone la regla para el caso de uso de actualización.
func ValidateMinMax(minimum, maximum int) error { return validateMinMax(minimum, maximum) }

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	Unit           string          `json:"unit"`
	GroupID        string          `json:"group_id,omitempty"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	StockCurrent   int             `json:"stock_current"`
	StockMinimum   int             `json:"stock_minimum"`
	StockMaximum   int             `json:"stock_maximum"`
	StockRequested int             `json:"stock_requested"`
	StockLevel     string          `json:"stock_level"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DeleteProductResponse indica si el producto se eliminó o solo se desactivó.
type DeleteProductResponse struct {
	ID          string `json:"id"`
	Deactivated bool   `json:"deactivated"` // true: tenía movimientos, se desactivó
}

// CreateGroupRequest entrada para crear un grupo de productos.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// GroupResponse salida de un grupo.
type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
