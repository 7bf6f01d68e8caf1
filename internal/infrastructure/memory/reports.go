package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.ReportRepository = ReportRepo{}

// ReportRepo consultas de reportes calculadas sobre el estado actual.
type ReportRepo struct{ h handle }

func positionRow(st *state, p entity.Product) repository.StockPositionRow {
	return repository.StockPositionRow{
		ProductID:      p.ID,
		Code:           p.Code,
		Description:    p.Description,
		Unit:           p.Unit,
		GroupName:      st.groups[p.GroupID].Name,
		StockCurrent:   p.StockCurrent,
		StockMinimum:   p.StockMinimum,
		StockMaximum:   p.StockMaximum,
		StockRequested: p.StockRequested,
	}
}

func (r ReportRepo) StockPosition(_ context.Context, groupID string) ([]repository.StockPositionRow, error) {
	out := []repository.StockPositionRow{}
	r.h.read(func(st *state) {
		for _, p := range st.products {
			if !p.Active || (groupID != "" && p.GroupID != groupID) {
				continue
			}
			out = append(out, positionRow(st, p))
		}
	})
	return sortedBy(out, func(a, b repository.StockPositionRow) bool { return a.Code < b.Code }), nil
}

func (r ReportRepo) Shortages(_ context.Context) ([]repository.StockPositionRow, error) {
	out := []repository.StockPositionRow{}
	r.h.read(func(st *state) {
		for _, p := range st.products {
			if p.Active && p.StockCurrent <= p.StockMinimum {
				out = append(out, positionRow(st, p))
			}
		}
	})
	return sortedBy(out, func(a, b repository.StockPositionRow) bool {
		return a.StockMinimum-a.StockCurrent > b.StockMinimum-b.StockCurrent ||
			(a.StockMinimum-a.StockCurrent == b.StockMinimum-b.StockCurrent && a.Code < b.Code)
	}), nil
}

func (r ReportRepo) MovementSummary(_ context.Context, from, to time.Time) ([]repository.MovementSummaryRow, error) {
	byKind := map[entity.MovementKind]*repository.MovementSummaryRow{}
	r.h.read(func(st *state) {
		for _, m := range st.movements {
			if !inRange(m.CreatedAt, &from, &to) {
				continue
			}
			row, ok := byKind[m.Kind]
			if !ok {
				row = &repository.MovementSummaryRow{Kind: string(m.Kind)}
				byKind[m.Kind] = row
			}
			row.Count++
			row.Quantity += abs(m.Quantity)
		}
	})
	out := make([]repository.MovementSummaryRow, 0, len(byKind))
	for _, row := range byKind {
		out = append(out, *row)
	}
	return sortedBy(out, func(a, b repository.MovementSummaryRow) bool { return a.Kind < b.Kind }), nil
}

func (r ReportRepo) LoanSummary(_ context.Context, now time.Time) ([]repository.StatusCountRow, error) {
	byStatus := map[entity.LoanStatus]*repository.StatusCountRow{}
	r.h.read(func(st *state) {
		for _, l := range st.loans {
			status := l.Status
			if (status == entity.LoanOpen || status == entity.LoanPartiallyReturned) && l.DueDate.Before(now) {
				status = entity.LoanOverdue
			}
			row, ok := byStatus[status]
			if !ok {
				row = &repository.StatusCountRow{Status: string(status)}
				byStatus[status] = row
			}
			row.Count++
			row.Quantity += l.Pending()
		}
	})
	return statusRows(byStatus), nil
}

func (r ReportRepo) TransferSummary(_ context.Context) ([]repository.StatusCountRow, error) {
	byStatus := map[entity.TransferStatus]*repository.StatusCountRow{}
	r.h.read(func(st *state) {
		for _, t := range st.transfers {
			row, ok := byStatus[t.Status]
			if !ok {
				row = &repository.StatusCountRow{Status: string(t.Status)}
				byStatus[t.Status] = row
			}
			row.Count++
			for _, it := range t.Items {
				row.Quantity += it.QuantityRequested
			}
		}
	})
	return statusRows(byStatus), nil
}

func statusRows[K comparable](m map[K]*repository.StatusCountRow) []repository.StatusCountRow {
	out := make([]repository.StatusCountRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	return sortedBy(out, func(a, b repository.StatusCountRow) bool { return a.Status < b.Status })
}

func (r ReportRepo) TopMovedProducts(_ context.Context, from, to time.Time, limit int) ([]repository.TopProductRow, error) {
	byProduct := map[string]*repository.TopProductRow{}
	r.h.read(func(st *state) {
		for _, m := range st.movements {
			if !inRange(m.CreatedAt, &from, &to) {
				continue
			}
			row, ok := byProduct[m.ProductID]
			if !ok {
				p := st.products[m.ProductID]
				row = &repository.TopProductRow{ProductID: m.ProductID, Code: p.Code, Description: p.Description}
				byProduct[m.ProductID] = row
			}
			row.Movements++
			row.Quantity += abs(m.Quantity)
		}
	})
	out := make([]repository.TopProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sortedBy(out, func(a, b repository.TopProductRow) bool {
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Code < b.Code
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r ReportRepo) Dashboard(_ context.Context, monthStart, now time.Time) (repository.DashboardCounts, error) {
	var d repository.DashboardCounts
	r.h.read(func(st *state) {
		for _, p := range st.products {
			if !p.Active {
				continue
			}
			d.ActiveProducts++
			if p.StockCurrent <= p.StockMinimum {
				d.LowStockProducts++
			}
		}
		for _, l := range st.loans {
			switch {
			case l.Status == entity.LoanOverdue:
				d.OverdueLoans++
			case l.Status == entity.LoanOpen || l.Status == entity.LoanPartiallyReturned:
				if l.DueDate.Before(now) {
					d.OverdueLoans++
				} else {
					d.OpenLoans++
				}
			}
		}
		for _, t := range st.transfers {
			if t.Status == entity.TransferPending || t.Status == entity.TransferApproved || t.Status == entity.TransferInTransit {
				d.PendingTransfers++
			}
		}
		for _, m := range st.movements {
			if !m.CreatedAt.Before(monthStart) && !m.CreatedAt.After(now) {
				d.MovementsThisMonth++
			}
		}
	})
	return d, nil
}

func (r ReportRepo) StockValuation(_ context.Context) ([]repository.ValuationRow, error) {
	byLocation := map[string]*repository.ValuationRow{}
	r.h.read(func(st *state) {
		located := map[string]int{}
		for k, s := range st.stock {
			p := st.products[k.productID]
			located[k.productID] += s.Quantity
			if s.Quantity == 0 {
				continue
			}
			row, ok := byLocation[k.locationID]
			if !ok {
				row = &repository.ValuationRow{LocationID: k.locationID, LocationName: st.locations[k.locationID].Name}
				byLocation[k.locationID] = row
			}
			row.Quantity += s.Quantity
			row.Value = row.Value.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(s.Quantity))))
		}
		for id, p := range st.products {
			rest := p.StockCurrent - located[id]
			if rest <= 0 {
				continue
			}
			row, ok := byLocation[""]
			if !ok {
				row = &repository.ValuationRow{LocationName: "sin ubicación"}
				byLocation[""] = row
			}
			row.Quantity += rest
			row.Value = row.Value.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(rest))))
		}
	})
	out := make([]repository.ValuationRow, 0, len(byLocation))
	for _, row := range byLocation {
		out = append(out, *row)
	}
	return sortedBy(out, func(a, b repository.ValuationRow) bool { return a.LocationName < b.LocationName }), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
