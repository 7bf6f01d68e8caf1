package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
)

// TransferItemRequest una línea de la transferencia.
type TransferItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceID      string                `json:"source_id"`
	DestinationID string                `json:"destination_id"`
	Note          string                `json:"note,omitempty"`
	Items         []TransferItemRequest `json:"items"`
}

// Validate valida origen distinto de destino e ítems con cantidad positiva.
func (r *CreateTransferRequest) Validate() error {
	if strings.TrimSpace(r.SourceID) == "" || strings.TrimSpace(r.DestinationID) == "" {
		return domain.Validation("source_id y destination_id son requeridos")
	}
	if r.SourceID == r.DestinationID {
		return domain.Validation("origen y destino deben ser distintos")
	}
	if len(r.Items) == 0 {
		return domain.Validation("la transferencia debe tener al menos un ítem")
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.Validation("ítem %d: product_id es requerido", i+1)
		}
		if it.Quantity <= 0 {
			return domain.Validation("ítem %d: quantity debe ser mayor que cero", i+1)
		}
	}
	return nil
}

// CancelTransferRequest body para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferItemResponse salida de un ítem de transferencia.
type TransferItemResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	QuantityRequested int    `json:"quantity_requested"`
	QuantitySent      int    `json:"quantity_sent"`
	QuantityReceived  int    `json:"quantity_received"`
}

// TransferResponse salida de una transferencia.
type TransferResponse struct {
	ID            string                 `json:"id"`
	Code          string                 `json:"code"`
	SourceID      string                 `json:"source_id"`
	DestinationID string                 `json:"destination_id"`
	RequestedBy   string                 `json:"requested_by"`
	ApprovedBy    string                 `json:"approved_by,omitempty"`
	Status        string                 `json:"status"`
	Note          string                 `json:"note,omitempty"`
	CancelReason  string                 `json:"cancel_reason,omitempty"`
	RequestedAt   time.Time              `json:"requested_at"`
	ApprovedAt    *time.Time             `json:"approved_at,omitempty"`
	DispatchedAt  *time.Time             `json:"dispatched_at,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
	Items         []TransferItemResponse `json:"items"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de transferencias.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
