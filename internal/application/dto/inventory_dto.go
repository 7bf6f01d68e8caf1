package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
)

// ReceiptLine una línea de una recepción de materiales.
type ReceiptLine struct {
	ProductID  string           `json:"product_id"`
	LocationID string           `json:"location_id,omitempty"` // opcional: sin ubicación suma al saldo general
	Quantity   int              `json:"quantity"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ReceiptRequest body para POST /api/inventory/receipts.
type ReceiptRequest struct {
	SupplierID string        `json:"supplier_id,omitempty"`
	Reference  string        `json:"reference,omitempty"` // número de nota fiscal u otro documento
	Note       string        `json:"note,omitempty"`
	Lines      []ReceiptLine `json:"lines"`
}

// Validate valida líneas y cantidades antes de abrir la transacción.
func (r *ReceiptRequest) Validate() error {
	if len(r.Lines) == 0 {
		return domain.Validation("la recepción debe tener al menos una línea")
	}
	for i, l := range r.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.Validation("línea %d: product_id es requerido", i+1)
		}
		if l.Quantity <= 0 {
			return domain.Validation("línea %d: quantity debe ser mayor que cero", i+1)
		}
		if l.UnitCost != nil && l.UnitCost.IsNegative() {
			return domain.Validation("línea %d: unit_cost no puede ser negativo", i+1)
		}
	}
	return nil
}

// ReceiptResponse resultado de la recepción.
type ReceiptResponse struct {
	DocumentID string             `json:"document_id"`
	Code       string             `json:"code"` // ENT-YYYY-NNNNN
	Movements  []MovementResponse `json:"movements"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Delta      int    `json:"delta"`
	Reason     string `json:"reason"`
}

// Validate ubicación obligatoria, delta distinto de cero y motivo obligatorio.
func (r *AdjustmentRequest) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return domain.Validation("product_id es requerido")
	}
	if strings.TrimSpace(r.LocationID) == "" {
		return domain.Validation("location_id es requerido en ajustes")
	}
	if r.Delta == 0 {
		return domain.Validation("delta no puede ser cero")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return domain.Validation("reason es requerido en ajustes")
	}
	return nil
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id,omitempty"`
	Kind       string          `json:"kind"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	DocumentID string          `json:"document_id,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	UserID     string          `json:"user_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockResponse saldo de un producto en una ubicación.
type StockResponse struct {
	ProductID        string    `json:"product_id"`
	LocationID       string    `json:"location_id"`
	Quantity         int       `json:"quantity"`
	QuantityReserved int       `json:"quantity_reserved"`
	Available        int       `json:"available"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductStockResponse saldos de un producto: total, prestado, sin ubicación y por ubicación.
type ProductStockResponse struct {
	ProductID      string          `json:"product_id"`
	Code           string          `json:"code"`
	StockCurrent   int             `json:"stock_current"`
	StockRequested int             `json:"stock_requested"`
	Unlocated      int             `json:"unlocated"`
	Locations      []StockResponse `json:"locations"`
}
