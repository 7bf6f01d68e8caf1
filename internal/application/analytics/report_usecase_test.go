package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/memory"
)

var testNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

// seed: tres productos (crítico, atención, normal), dos ubicaciones, un préstamo vencido,
// una transferencia pendiente y movimientos de marzo y febrero.
func seed(t *testing.T) (*memory.Store, *analytics.ReportUseCase) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: "la", Code: "A", Name: "Central", Active: true}))
	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: "lb", Code: "B", Name: "Obra", Active: true}))

	for _, p := range []entity.Product{
		{ID: "p1", Code: "P1", Description: "Casco", StockCurrent: 2, StockMinimum: 5, StockMaximum: 20, CostPrice: decimal.RequireFromString("10.005"), Active: true},
		{ID: "p2", Code: "P2", Description: "Guante", StockCurrent: 7, StockMinimum: 5, Active: true},
		{ID: "p3", Code: "P3", Description: "Cinta", StockCurrent: 50, StockMinimum: 5, CostPrice: decimal.NewFromInt(1), Active: true},
		{ID: "p4", Code: "P4", Description: "Baja", StockCurrent: 0, StockMinimum: 5, Active: false},
	} {
		p := p
		require.NoError(t, store.Products().Create(ctx, &p))
	}
	require.NoError(t, store.Stock().Upsert(ctx, &entity.Stock{ProductID: "p1", LocationID: "la", Quantity: 2}))
	require.NoError(t, store.Stock().Upsert(ctx, &entity.Stock{ProductID: "p3", LocationID: "lb", Quantity: 40}))

	march := testNow.Add(-48 * time.Hour)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	for _, m := range []entity.Movement{
		{ID: "m1", ProductID: "p3", LocationID: "lb", Kind: entity.MovementEntry, Quantity: 40, CreatedAt: march},
		{ID: "m2", ProductID: "p3", Kind: entity.MovementEntry, Quantity: 10, CreatedAt: march},
		{ID: "m3", ProductID: "p1", LocationID: "la", Kind: entity.MovementAdjustment, Quantity: -3, CreatedAt: march},
		{ID: "m4", ProductID: "p2", Kind: entity.MovementEntry, Quantity: 7, CreatedAt: feb},
	} {
		m := m
		require.NoError(t, store.Movements().Create(ctx, &m))
	}

	require.NoError(t, store.Loans().Create(ctx, &entity.Loan{
		ID: "loan1", Code: "EMP-2026-00001", Status: entity.LoanOpen, DueDate: testNow.Add(-time.Hour),
		Items: []entity.LoanItem{{ID: "i1", ProductID: "p2", QuantityIssued: 2}},
	}))
	require.NoError(t, store.Transfers().Create(ctx, &entity.Transfer{
		ID: "t1", Code: "TRF-2026-00001", SourceID: "lb", DestinationID: "la", Status: entity.TransferPending,
		Items: []entity.TransferItem{{ID: "ti1", ProductID: "p3", QuantityRequested: 5}},
	}))

	uc := analytics.NewReportUseCase(store.Reports()).WithClock(func() time.Time { return testNow })
	return store, uc
}

// ──────────────────────────────────────────────────────────────────────────────

func TestStockPosition_NivelesYTotales(t *testing.T) {
	_, uc := seed(t)
	out, err := uc.StockPosition(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, out.Items, 3, "los inactivos no aparecen")
	assert.Equal(t, entity.StockLevelCritical, out.Items[0].Level)
	assert.Equal(t, entity.StockLevelAttention, out.Items[1].Level)
	assert.Equal(t, entity.StockLevelNormal, out.Items[2].Level)
	assert.Equal(t, 1, out.Critical)
	assert.Equal(t, 1, out.Attention)
	assert.Equal(t, 1, out.Normal)
}

func TestShortages_SugiereHastaElMaximo(t *testing.T) {
	_, uc := seed(t)
	out, err := uc.Shortages(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "P1", out[0].Code)
	assert.Equal(t, 3, out[0].Missing)
	assert.Equal(t, 18, out[0].Suggested)
}

func TestMovementSummary_PeriodoPorDefectoEsElMes(t *testing.T) {
	_, uc := seed(t)
	out, err := uc.MovementSummary(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), out.From)
	byKind := map[string]int{}
	for _, it := range out.Items {
		byKind[it.Kind] = it.Quantity
	}
	assert.Equal(t, 50, byKind[string(entity.MovementEntry)], "febrero queda fuera")
	assert.Equal(t, 3, byKind[string(entity.MovementAdjustment)], "cantidades en valor absoluto")
}

func TestMovementSummary_RangoExplicitoYErrores(t *testing.T) {
	_, uc := seed(t)
	ctx := context.Background()

	out, err := uc.MovementSummary(ctx, "2026-02-01", "2026-02-10")
	require.NoError(t, err)
	require.Len(t, out.Items, 1, "end_date incluye todo el día")
	assert.Equal(t, 7, out.Items[0].Quantity)

	_, err = uc.MovementSummary(ctx, "01/02/2026", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.MovementSummary(ctx, "2026-03-10", "2026-03-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoanAndTransferSummary(t *testing.T) {
	_, uc := seed(t)
	ctx := context.Background()

	loans, err := uc.LoanSummary(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, string(entity.LoanOverdue), loans[0].Status, "vencido sin haberse leído")
	assert.Equal(t, 2, loans[0].Quantity)

	transfers, err := uc.TransferSummary(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, string(entity.TransferPending), transfers[0].Status)
	assert.Equal(t, 5, transfers[0].Quantity)
}

func TestDashboard(t *testing.T) {
	_, uc := seed(t)
	out, err := uc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, out.ActiveProducts)
	assert.Equal(t, 1, out.LowStockProducts)
	assert.Zero(t, out.OpenLoans)
	assert.Equal(t, 1, out.OverdueLoans)
	assert.Equal(t, 1, out.PendingTransfers)
	assert.Equal(t, 3, out.MovementsThisMonth)
	require.NotEmpty(t, out.TopProducts)
	assert.Equal(t, "P3", out.TopProducts[0].Code)
}

func TestValuation_IncluyeSaldoSinUbicacion(t *testing.T) {
	_, uc := seed(t)
	out, err := uc.Valuation(context.Background())
	require.NoError(t, err)

	values := map[string]string{}
	for _, it := range out.Items {
		values[it.LocationName] = it.Value.StringFixed(2)
	}
	assert.Equal(t, "20.01", values["Central"], "2 × 10.005 redondeado")
	assert.Equal(t, "40.00", values["Obra"])
	assert.Equal(t, "10.00", values["sin ubicación"], "p3 tiene 10 sin ubicar; p2 no tiene costo")
	assert.Equal(t, "70.01", out.Total.StringFixed(2))
}
