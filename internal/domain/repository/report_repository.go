package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockPositionRow fila de posición de stock por producto.
type StockPositionRow struct {
	ProductID      string `db:"product_id"`
	Code           string `db:"code"`
	Description    string `db:"description"`
	Unit           string `db:"unit"`
	GroupName      string `db:"group_name"`
	StockCurrent   int    `db:"stock_current"`
	StockMinimum   int    `db:"stock_minimum"`
	StockMaximum   int    `db:"stock_maximum"`
	StockRequested int    `db:"stock_requested"`
}

// MovementSummaryRow totales del libro por tipo de movimiento.
type MovementSummaryRow struct {
	Kind     string `db:"kind"`
	Count    int    `db:"count"`
	Quantity int    `db:"quantity"` // suma de valores absolutos
}

// StatusCountRow conteo por estado (préstamos o transferencias).
type StatusCountRow struct {
	Status   string `db:"status"`
	Count    int    `db:"count"`
	Quantity int    `db:"quantity"` // unidades involucradas
}

// TopProductRow producto con más movimiento en un período.
type TopProductRow struct {
	ProductID   string `db:"product_id"`
	Code        string `db:"code"`
	Description string `db:"description"`
	Movements   int    `db:"movements"`
	Quantity    int    `db:"quantity"`
}

// ValuationRow valor del stock por ubicación (cantidad × costo promedio).
type ValuationRow struct {
	LocationID   string          `db:"location_id"`
	LocationName string          `db:"location_name"`
	Quantity     int             `db:"quantity"`
	Value        decimal.Decimal `db:"value"`
}

// DashboardCounts indicadores del panel principal.
type DashboardCounts struct {
	ActiveProducts     int `db:"active_products"`
	LowStockProducts   int `db:"low_stock_products"`
	OpenLoans          int `db:"open_loans"`
	OverdueLoans       int `db:"overdue_loans"`
	PendingTransfers   int `db:"pending_transfers"`
	MovementsThisMonth int `db:"movements_this_month"`
}

// ReportRepository define las consultas de lectura para reportes.
// Las implementaciones son read-only (no modifican datos).
type ReportRepository interface {
	// StockPosition devuelve productos activos, opcionalmente filtrados por grupo.
	StockPosition(ctx context.Context, groupID string) ([]StockPositionRow, error)
	// Shortages devuelve productos activos con saldo <= mínimo.
	Shortages(ctx context.Context) ([]StockPositionRow, error)
	MovementSummary(ctx context.Context, from, to time.Time) ([]MovementSummaryRow, error)
	// LoanSummary cuenta préstamos por estado efectivo en now (vencidos cuentan como overdue).
	LoanSummary(ctx context.Context, now time.Time) ([]StatusCountRow, error)
	TransferSummary(ctx context.Context) ([]StatusCountRow, error)
	TopMovedProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductRow, error)
	Dashboard(ctx context.Context, monthStart, now time.Time) (DashboardCounts, error)
	StockValuation(ctx context.Context) ([]ValuationRow, error)
}
