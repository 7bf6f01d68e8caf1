// Package analytics contiene los casos de uso de reportes del almoxarifado y el
// panel principal. Todo es lectura: nada aquí pasa por el motor de stock.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del panel

// ReportUseCase genera los reportes de stock, movimientos, préstamos y transferencias.
//
// Fuente de datos: ReportRepository (consultas read-only).
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reportRepo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	return &ReportUseCase{reportRepo: uc.reportRepo, now: now}
}

// StockPosition posición de stock con nivel por producto y totales por nivel.
func (uc *ReportUseCase) StockPosition(ctx context.Context, groupID string) (*dto.StockPositionReport, error) {
	rows, err := uc.reportRepo.StockPosition(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("reporte: posición de stock: %w", err)
	}
	out := &dto.StockPositionReport{Items: make([]dto.StockPositionItem, 0, len(rows))}
	for _, r := range rows {
		item := toPositionItem(r)
		switch item.Level {
		case entity.StockLevelCritical:
			out.Critical++
		case entity.StockLevelAttention:
			out.Attention++
		default:
			out.Normal++
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// Shortages productos en o por debajo del mínimo con la cantidad sugerida de reposición.
func (uc *ReportUseCase) Shortages(ctx context.Context) ([]dto.ShortageItem, error) {
	rows, err := uc.reportRepo.Shortages(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporte: faltantes: %w", err)
	}
	out := make([]dto.ShortageItem, 0, len(rows))
	for _, r := range rows {
		target := r.StockMaximum
		if target < r.StockMinimum {
			target = r.StockMinimum
		}
		out = append(out, dto.ShortageItem{
			StockPositionItem: toPositionItem(r),
			Missing:           max(0, r.StockMinimum-r.StockCurrent),
			Suggested:         max(0, target-r.StockCurrent),
		})
	}
	return out, nil
}

// MovementSummary totales del libro por tipo en el período [from, to] (AAAA-MM-DD; por defecto el mes en curso).
func (uc *ReportUseCase) MovementSummary(ctx context.Context, from, to string) (*dto.MovementSummaryReport, error) {
	start, end, err := parsePeriod(uc.now(), from, to)
	if err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.MovementSummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("reporte: movimientos: %w", err)
	}
	out := &dto.MovementSummaryReport{From: start, To: end, Items: make([]dto.MovementSummaryItem, 0, len(rows))}
	for _, r := range rows {
		out.Items = append(out.Items, dto.MovementSummaryItem{Kind: r.Kind, Count: r.Count, Quantity: r.Quantity})
	}
	return out, nil
}

// LoanSummary préstamos por estado efectivo (los vencidos cuentan como overdue aunque no se hayan leído).
func (uc *ReportUseCase) LoanSummary(ctx context.Context) ([]dto.StatusCountItem, error) {
	rows, err := uc.reportRepo.LoanSummary(ctx, uc.now())
	if err != nil {
		return nil, fmt.Errorf("reporte: préstamos: %w", err)
	}
	return toStatusItems(rows), nil
}

// TransferSummary transferencias por estado.
func (uc *ReportUseCase) TransferSummary(ctx context.Context) ([]dto.StatusCountItem, error) {
	rows, err := uc.reportRepo.TransferSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporte: transferencias: %w", err)
	}
	return toStatusItems(rows), nil
}

// Dashboard construye el panel principal.
//
// Dos llamadas en paralelo:
//  1. Dashboard(mes)              → contadores
//  2. TopMovedProducts(mes, top 5) → TopProducts
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type countsResult struct {
		counts repository.DashboardCounts
		err    error
	}
	type topResult struct {
		rows []repository.TopProductRow
		err  error
	}
	countsCh := make(chan countsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		c, err := uc.reportRepo.Dashboard(ctx, monthStart, now)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		rows, err := uc.reportRepo.TopMovedProducts(ctx, monthStart, now, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()

	counts := <-countsCh
	top := <-topCh
	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: contadores: %w", counts.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: productos más movidos: %w", top.err)
	}

	products := make([]dto.TopProductItem, 0, len(top.rows))
	for _, r := range top.rows {
		products = append(products, dto.TopProductItem{
			ProductID:   r.ProductID,
			Code:        r.Code,
			Description: r.Description,
			Movements:   r.Movements,
			Quantity:    r.Quantity,
		})
	}
	c := counts.counts
	return &dto.DashboardResponse{
		ActiveProducts:     c.ActiveProducts,
		LowStockProducts:   c.LowStockProducts,
		OpenLoans:          c.OpenLoans,
		OverdueLoans:       c.OverdueLoans,
		PendingTransfers:   c.PendingTransfers,
		MovementsThisMonth: c.MovementsThisMonth,
		TopProducts:        products,
	}, nil
}

// Valuation valor del stock por ubicación al costo promedio.
func (uc *ReportUseCase) Valuation(ctx context.Context) (*dto.ValuationReport, error) {
	rows, err := uc.reportRepo.StockValuation(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporte: valorización: %w", err)
	}
	out := &dto.ValuationReport{Items: make([]dto.ValuationItem, 0, len(rows)), Total: decimal.Zero}
	for _, r := range rows {
		value := r.Value.Round(2)
		out.Items = append(out.Items, dto.ValuationItem{
			LocationID:   r.LocationID,
			LocationName: r.LocationName,
			Quantity:     r.Quantity,
			Value:        value,
		})
		out.Total = out.Total.Add(value)
	}
	return out, nil
}

func toPositionItem(r repository.StockPositionRow) dto.StockPositionItem {
	p := entity.Product{StockCurrent: r.StockCurrent, StockMinimum: r.StockMinimum}
	return dto.StockPositionItem{
		ProductID:      r.ProductID,
		Code:           r.Code,
		Description:    r.Description,
		Unit:           r.Unit,
		Group:          r.GroupName,
		StockCurrent:   r.StockCurrent,
		StockMinimum:   r.StockMinimum,
		StockMaximum:   r.StockMaximum,
		StockRequested: r.StockRequested,
		Level:          p.StockLevel(),
	}
}

func toStatusItems(rows []repository.StatusCountRow) []dto.StatusCountItem {
	out := make([]dto.StatusCountItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StatusCountItem{Status: r.Status, Count: r.Count, Quantity: r.Quantity})
	}
	return out
}

// parsePeriod interpreta fechas AAAA-MM-DD; sin inicio toma el primer día del mes, sin fin toma now.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	if endStr == "" {
		end = now
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, domain.Validation("end_date inválido: %v", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond) // inclusive hasta el final del día
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, domain.Validation("start_date inválido: %v", err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, domain.Validation("start_date no puede ser posterior a end_date")
	}
	return start, end, nil
}
