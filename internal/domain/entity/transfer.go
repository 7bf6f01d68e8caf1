package entity

import "time"

// TransferStatus estado de una transferencia entre ubicaciones.
type TransferStatus string

// Estados de la transferencia. Completed y Cancelled son terminales.
const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// Valid indica si el estado es conocido.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferApproved, TransferInTransit, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// Transfer transferencia de materiales de una ubicación a otra.
type Transfer struct {
	ID            string
	Code          string // TRF-YYYY-NNNNN
	SourceID      string
	DestinationID string
	RequestedBy   string
	ApprovedBy    string
	Status        TransferStatus
	Note          string
	CancelReason  string
	RequestedAt   time.Time
	ApprovedAt    *time.Time
	DispatchedAt  *time.Time
	CompletedAt   *time.Time
	Items         []TransferItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransferItem línea de una transferencia.
type TransferItem struct {
	ID                string
	TransferID        string
	ProductID         string
	QuantityRequested int
	QuantitySent      int
	QuantityReceived  int
}
