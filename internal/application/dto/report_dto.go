package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPositionItem fila del reporte de posición de stock.
type StockPositionItem struct {
	ProductID      string `json:"product_id"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	Unit           string `json:"unit"`
	Group          string `json:"group,omitempty"`
	StockCurrent   int    `json:"stock_current"`
	StockMinimum   int    `json:"stock_minimum"`
	StockMaximum   int    `json:"stock_maximum"`
	StockRequested int    `json:"stock_requested"`
	Level          string `json:"level"` // CRITICO | ATENCION | NORMAL
}

// StockPositionReport posición de stock con totales por nivel.
type StockPositionReport struct {
	Items     []StockPositionItem `json:"items"`
	Critical  int                 `json:"critical"`
	Attention int                 `json:"attention"`
	Normal    int                 `json:"normal"`
}

// ShortageItem producto en falta y cantidad sugerida para reposición.
type ShortageItem struct {
	StockPositionItem
	Missing   int `json:"missing"`   // mínimo - actual
	Suggested int `json:"suggested"` // hasta el máximo (o el mínimo si no hay máximo)
}

// MovementSummaryItem totales por tipo de movimiento.
type MovementSummaryItem struct {
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}

// MovementSummaryReport resumen del libro en un período.
type MovementSummaryReport struct {
	From  time.Time             `json:"from"`
	To    time.Time             `json:"to"`
	Items []MovementSummaryItem `json:"items"`
}

// StatusCountItem conteo por estado.
type StatusCountItem struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}

// TopProductItem producto más movido.
type TopProductItem struct {
	ProductID   string `json:"product_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Movements   int    `json:"movements"`
	Quantity    int    `json:"quantity"`
}

// DashboardResponse indicadores del panel principal.
type DashboardResponse struct {
	ActiveProducts     int              `json:"active_products"`
	LowStockProducts   int              `json:"low_stock_products"`
	OpenLoans          int              `json:"open_loans"`
	OverdueLoans       int              `json:"overdue_loans"`
	PendingTransfers   int              `json:"pending_transfers"`
	MovementsThisMonth int              `json:"movements_this_month"`
	TopProducts        []TopProductItem `json:"top_products"`
}

// ValuationItem valor del stock en una ubicación.
type ValuationItem struct {
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	Quantity     int             `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
}

// ValuationReport valorización del stock por ubicación.
type ValuationReport struct {
	Items []ValuationItem `json:"items"`
	Total decimal.Decimal `json:"total"`
}
