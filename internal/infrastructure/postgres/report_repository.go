package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y panel.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func positionQuery() sq.SelectBuilder {
	return psql.Select(
		"p.id AS product_id", "p.code", "p.description", "p.unit", "COALESCE(g.name, '') AS group_name",
		"p.stock_current", "p.stock_minimum", "p.stock_maximum", "p.stock_requested",
	).From("products p").LeftJoin("product_groups g ON g.id = p.group_id").Where(sq.Eq{"p.active": true})
}

// StockPosition posición de stock de productos activos, opcionalmente por grupo.
func (r *ReportRepo) StockPosition(ctx context.Context, groupID string) ([]repository.StockPositionRow, error) {
	b := positionQuery().OrderBy("p.code")
	if groupID != "" {
		b = b.Where(sq.Eq{"p.group_id": groupID})
	}
	return r.selectPositions(ctx, "stock position", b)
}

// Shortages productos activos con saldo <= mínimo, mayor faltante primero.
func (r *ReportRepo) Shortages(ctx context.Context) ([]repository.StockPositionRow, error) {
	b := positionQuery().Where("p.stock_current <= p.stock_minimum").
		OrderBy("p.stock_minimum - p.stock_current DESC", "p.code")
	return r.selectPositions(ctx, "shortages", b)
}

func (r *ReportRepo) selectPositions(ctx context.Context, op string, b sq.SelectBuilder) ([]repository.StockPositionRow, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	out := []repository.StockPositionRow{}
	if err := pgxscan.Select(ctx, r.q, &out, query, args...); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

// MovementSummary totales del libro por tipo en [from, to].
func (r *ReportRepo) MovementSummary(ctx context.Context, from, to time.Time) ([]repository.MovementSummaryRow, error) {
	const query = `
		SELECT kind, COUNT(*) AS count, COALESCE(SUM(ABS(quantity)), 0) AS quantity
		FROM movements WHERE created_at BETWEEN $1 AND $2
		GROUP BY kind ORDER BY kind`
	out := []repository.MovementSummaryRow{}
	if err := pgxscan.Select(ctx, r.q, &out, query, from, to); err != nil {
		return nil, mapError("movement summary", err)
	}
	return out, nil
}

// LoanSummary préstamos por estado efectivo; los abiertos vencidos cuentan como overdue.
func (r *ReportRepo) LoanSummary(ctx context.Context, now time.Time) ([]repository.StatusCountRow, error) {
	const query = `
		WITH effective AS (
			SELECT l.id,
			       CASE WHEN l.status IN ('open', 'partially_returned') AND l.due_date < $1 THEN 'overdue'
			            ELSE l.status END AS status,
			       COALESCE(SUM(i.quantity_issued - i.quantity_returned), 0) AS pending
			FROM loans l LEFT JOIN loan_items i ON i.loan_id = l.id
			GROUP BY l.id, l.status, l.due_date
		)
		SELECT status, COUNT(*) AS count, COALESCE(SUM(pending), 0)::bigint AS quantity
		FROM effective GROUP BY status ORDER BY status`
	out := []repository.StatusCountRow{}
	if err := pgxscan.Select(ctx, r.q, &out, query, now); err != nil {
		return nil, mapError("loan summary", err)
	}
	return out, nil
}

// TransferSummary transferencias por estado con unidades solicitadas.
func (r *ReportRepo) TransferSummary(ctx context.Context) ([]repository.StatusCountRow, error) {
	const query = `
		SELECT t.status, COUNT(DISTINCT t.id) AS count, COALESCE(SUM(i.quantity_requested), 0) AS quantity
		FROM transfers t LEFT JOIN transfer_items i ON i.transfer_id = t.id
		GROUP BY t.status ORDER BY t.status`
	out := []repository.StatusCountRow{}
	if err := pgxscan.Select(ctx, r.q, &out, query); err != nil {
		return nil, mapError("transfer summary", err)
	}
	return out, nil
}

// TopMovedProducts productos con más unidades movidas en [from, to].
func (r *ReportRepo) TopMovedProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProductRow, error) {
	const query = `
		SELECT p.id AS product_id, p.code, p.description,
		       COUNT(*) AS movements, SUM(ABS(m.quantity)) AS quantity
		FROM movements m JOIN products p ON p.id = m.product_id
		WHERE m.created_at BETWEEN $1 AND $2
		GROUP BY p.id, p.code, p.description
		ORDER BY quantity DESC, p.code
		LIMIT $3`
	out := []repository.TopProductRow{}
	if err := pgxscan.Select(ctx, r.q, &out, query, from, to, limit); err != nil {
		return nil, mapError("top moved products", err)
	}
	return out, nil
}

// Dashboard indicadores del panel en una sola consulta.
func (r *ReportRepo) Dashboard(ctx context.Context, monthStart, now time.Time) (repository.DashboardCounts, error) {
	const query = `
		SELECT
		    (SELECT COUNT(*) FROM products WHERE active) AS active_products,
		    (SELECT COUNT(*) FROM products WHERE active AND stock_current <= stock_minimum) AS low_stock_products,
		    (SELECT COUNT(*) FROM loans WHERE status IN ('open', 'partially_returned') AND due_date >= $2) AS open_loans,
		    (SELECT COUNT(*) FROM loans WHERE status = 'overdue'
		        OR (status IN ('open', 'partially_returned') AND due_date < $2)) AS overdue_loans,
		    (SELECT COUNT(*) FROM transfers WHERE status IN ('pending', 'approved', 'in_transit')) AS pending_transfers,
		    (SELECT COUNT(*) FROM movements WHERE created_at BETWEEN $1 AND $2) AS movements_this_month`
	var d repository.DashboardCounts
	if err := pgxscan.Get(ctx, r.q, &d, query, monthStart, now); err != nil {
		return d, mapError("dashboard", err)
	}
	return d, nil
}

// StockValuation valor del stock por ubicación; el saldo sin ubicación va en una fila aparte.
func (r *ReportRepo) StockValuation(ctx context.Context) ([]repository.ValuationRow, error) {
	const query = `
		WITH located AS (
			SELECT product_id, SUM(quantity) AS quantity FROM stock GROUP BY product_id
		), parts AS (
			SELECT l.id::text AS location_id, l.name AS location_name, s.quantity, s.quantity * p.cost_price AS value
			FROM stock s JOIN locations l ON l.id = s.location_id JOIN products p ON p.id = s.product_id
			WHERE s.quantity > 0
			UNION ALL
			SELECT '' AS location_id, 'sin ubicación' AS location_name,
			       p.stock_current - COALESCE(x.quantity, 0),
			       (p.stock_current - COALESCE(x.quantity, 0)) * p.cost_price
			FROM products p LEFT JOIN located x ON x.product_id = p.id
			WHERE p.stock_current > COALESCE(x.quantity, 0)
		)
		SELECT location_id, location_name, SUM(quantity)::bigint AS quantity, SUM(value) AS value
		FROM parts GROUP BY location_id, location_name ORDER BY location_name`
	out := []repository.ValuationRow{}
	if err := pgxscan.Select(ctx, r.q, &out, query); err != nil {
		return nil, mapError("stock valuation", err)
	}
	return out, nil
}
