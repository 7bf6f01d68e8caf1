package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// LoanItemRequest una línea del préstamo.
type LoanItemRequest struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id,omitempty"`
	Quantity   int    `json:"quantity"`
	Condition  string `json:"condition,omitempty"`
}

// CreateLoanRequest body para POST /api/loans.
type CreateLoanRequest struct {
	CollaboratorID     string            `json:"collaborator_id"`
	AuthorizedBy       string            `json:"authorized_by,omitempty"`
	DueDate            time.Time         `json:"due_date"`
	Note               string            `json:"note,omitempty"`
	ResponsibilityTerm bool              `json:"responsibility_term"`
	Items              []LoanItemRequest `json:"items"`
}

// Validate valida la estructura; disponibilidad y existencia se validan en la transacción.
func (r *CreateLoanRequest) Validate(now time.Time) error {
	if strings.TrimSpace(r.CollaboratorID) == "" {
		return domain.Validation("collaborator_id es requerido")
	}
	if r.DueDate.IsZero() {
		return domain.Validation("due_date es requerido")
	}
	if r.DueDate.Before(now.Truncate(24 * time.Hour)) {
		return domain.Validation("due_date no puede estar en el pasado")
	}
	if len(r.Items) == 0 {
		return domain.Validation("el préstamo debe tener al menos un ítem")
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.Validation("ítem %d: product_id es requerido", i+1)
		}
		if it.Quantity <= 0 {
			return domain.Validation("ítem %d: quantity debe ser mayor que cero", i+1)
		}
		if !entity.ValidCondition(it.Condition) {
			return domain.Validation("ítem %d: condición inválida %q", i+1, it.Condition)
		}
	}
	return nil
}

// ReturnItemRequest devolución de un ítem.
type ReturnItemRequest struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition,omitempty"`
	Note      string `json:"note,omitempty"`
}

// ReturnLoanRequest body para POST /api/loans/:id/returns.
type ReturnLoanRequest struct {
	Items []ReturnItemRequest `json:"items"`
}

// Validate valida cantidades positivas, condiciones e ítems no repetidos.
func (r *ReturnLoanRequest) Validate() error {
	if len(r.Items) == 0 {
		return domain.Validation("debe indicar al menos un ítem a devolver")
	}
	seen := make(map[string]bool, len(r.Items))
	for i, it := range r.Items {
		if strings.TrimSpace(it.ItemID) == "" {
			return domain.Validation("devolución %d: item_id es requerido", i+1)
		}
		if seen[it.ItemID] {
			return domain.Validation("devolución %d: ítem repetido %s", i+1, it.ItemID)
		}
		seen[it.ItemID] = true
		if it.Quantity <= 0 {
			return domain.Validation("devolución %d: quantity debe ser mayor que cero", i+1)
		}
		if !entity.ValidCondition(it.Condition) {
			return domain.Validation("devolución %d: condición inválida %q", i+1, it.Condition)
		}
	}
	return nil
}

// MarkLostRequest body para POST /api/loans/:id/lost.
type MarkLostRequest struct {
	Note string `json:"note"`
}

// LoanItemResponse salida de un ítem de préstamo.
type LoanItemResponse struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	LocationID       string     `json:"location_id,omitempty"`
	QuantityIssued   int        `json:"quantity_issued"`
	QuantityReturned int        `json:"quantity_returned"`
	Pending          int        `json:"pending"`
	ConditionOut     string     `json:"condition_out"`
	ConditionIn      string     `json:"condition_in,omitempty"`
	ReturnNote       string     `json:"return_note,omitempty"`
	ReturnedAt       *time.Time `json:"returned_at,omitempty"`
}

// LoanResponse salida de un préstamo.
type LoanResponse struct {
	ID                 string             `json:"id"`
	Code               string             `json:"code"`
	CollaboratorID     string             `json:"collaborator_id"`
	RequestedBy        string             `json:"requested_by"`
	AuthorizedBy       string             `json:"authorized_by,omitempty"`
	IssuedAt           time.Time          `json:"issued_at"`
	DueDate            time.Time          `json:"due_date"`
	ReturnedAt         *time.Time         `json:"returned_at,omitempty"`
	Status             string             `json:"status"`
	Note               string             `json:"note,omitempty"`
	ResponsibilityTerm bool               `json:"responsibility_term"`
	Items              []LoanItemResponse `json:"items"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// LoanListResponse lista paginada de préstamos.
type LoanListResponse struct {
	Items []LoanResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
