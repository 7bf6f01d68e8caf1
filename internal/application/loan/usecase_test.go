package loan_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/application/loan"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	adminActor  = entity.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	writerActor = entity.Actor{ID: "u-user", Role: entity.RoleUser}
	viewerActor = entity.Actor{ID: "u-viewer", Role: entity.RoleViewer}
)

type fixture struct {
	ctx   context.Context
	store *memory.Store
	now   time.Time
	uc    *loan.UseCase
}

// newFixture: p1 con 10 en l1, p2 con 4 sin ubicación, colaborador c1 activo y c2 inactivo.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: memory.New(), now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, f.store.Products().Create(f.ctx, &entity.Product{ID: "p1", Code: "P1", Description: "Taladro", StockCurrent: 10, CostPrice: decimal.NewFromInt(1), Active: true}))
	require.NoError(t, f.store.Products().Create(f.ctx, &entity.Product{ID: "p2", Code: "P2", Description: "Casco", StockCurrent: 4, Active: true}))
	require.NoError(t, f.store.Locations().Create(f.ctx, &entity.Location{ID: "l1", Code: "L1", Name: "Depósito", Active: true}))
	require.NoError(t, f.store.Stock().Upsert(f.ctx, &entity.Stock{ProductID: "p1", LocationID: "l1", Quantity: 10}))
	require.NoError(t, f.store.Collaborators().Create(f.ctx, &entity.Collaborator{ID: "c1", Name: "Ana", Registration: "M-1", Active: true}))
	require.NoError(t, f.store.Collaborators().Create(f.ctx, &entity.Collaborator{ID: "c2", Name: "Bruno", Registration: "M-2", Active: false}))

	f.uc = loan.NewUseCase(f.store, f.store.Repos(), inventory.NewEngine(), audit.NewWriter(f.store.Audit(), logger.Nop()), logger.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) createTwoItemLoan(t *testing.T) *dto.LoanResponse {
	t.Helper()
	out, err := f.uc.Create(f.ctx, writerActor, dto.CreateLoanRequest{
		CollaboratorID: "c1",
		DueDate:        f.now.Add(48 * time.Hour),
		Items: []dto.LoanItemRequest{
			{ProductID: "p1", LocationID: "l1", Quantity: 3},
			{ProductID: "p2", Quantity: 2},
		},
	})
	require.NoError(t, err)
	return out
}

func itemFor(t *testing.T, l *dto.LoanResponse, productID string) dto.LoanItemResponse {
	t.Helper()
	for _, it := range l.Items {
		if it.ProductID == productID {
			return it
		}
	}
	t.Fatalf("el préstamo no tiene ítem para %s", productID)
	return dto.LoanItemResponse{}
}

func (f *fixture) ledger(t *testing.T, documentID string) []*entity.Movement {
	t.Helper()
	list, _, err := f.store.Movements().List(f.ctx, repository.MovementFilter{DocumentID: documentID})
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestLoan_CreateRetiraStockDeTodosLosItems(t *testing.T) {
	f := newFixture(t)
	out := f.createTwoItemLoan(t)

	assert.Equal(t, "EMP-2026-00001", out.Code)
	assert.Equal(t, "open", out.Status)
	assert.Equal(t, writerActor.ID, out.RequestedBy)
	require.Len(t, out.Items, 2)
	assert.Equal(t, entity.ConditionGood, out.Items[0].ConditionOut, "condición por defecto")

	p1, p2 := f.product(t, "p1"), f.product(t, "p2")
	assert.Equal(t, 7, p1.StockCurrent)
	assert.Equal(t, 3, p1.StockRequested)
	assert.Equal(t, 2, p2.StockCurrent)
	assert.Equal(t, 2, p2.StockRequested)

	st, err := f.store.Stock().Get(f.ctx, "p1", "l1")
	require.NoError(t, err)
	assert.Equal(t, 7, st.Quantity)
	assert.Len(t, f.ledger(t, out.ID), 2, "un loan_out por ítem")
}

func TestLoan_CreateSinStockEnUnItem_NoMueveNada(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, writerActor, dto.CreateLoanRequest{
		CollaboratorID: "c1",
		DueDate:        f.now.Add(time.Hour),
		Items: []dto.LoanItemRequest{
			{ProductID: "p1", LocationID: "l1", Quantity: 2},
			{ProductID: "p2", Quantity: 5},
		},
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "p2", ise.ProductID)
	assert.Equal(t, 4, ise.Available)

	assert.Equal(t, 10, f.product(t, "p1").StockCurrent, "el primer ítem no debe haberse aplicado")
	assert.Zero(t, f.product(t, "p1").StockRequested)
}

func TestLoan_CreateSumaCantidadesDelMismoProducto(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, writerActor, dto.CreateLoanRequest{
		CollaboratorID: "c1",
		DueDate:        f.now.Add(time.Hour),
		Items: []dto.LoanItemRequest{
			{ProductID: "p2", Quantity: 3},
			{ProductID: "p2", Quantity: 3},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "3 + 3 supera las 4 disponibles aunque cada línea entre")
}

func TestLoan_CreateValidaciones(t *testing.T) {
	f := newFixture(t)
	base := func() dto.CreateLoanRequest {
		return dto.CreateLoanRequest{
			CollaboratorID: "c1",
			DueDate:        f.now.Add(time.Hour),
			Items:          []dto.LoanItemRequest{{ProductID: "p2", Quantity: 1}},
		}
	}

	req := base()
	req.DueDate = f.now.Add(-72 * time.Hour)
	_, err := f.uc.Create(f.ctx, writerActor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "vencimiento en el pasado")

	req = base()
	req.Items = nil
	_, err = f.uc.Create(f.ctx, writerActor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin ítems")

	req = base()
	req.CollaboratorID = "c2"
	_, err = f.uc.Create(f.ctx, writerActor, req)
	assert.ErrorIs(t, err, domain.ErrNotFound, "colaborador inactivo")

	_, err = f.uc.Create(f.ctx, viewerActor, base())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLoan_CreateValidaUbicacionDelItem(t *testing.T) {
	f := newFixture(t)
	req := func(locationID string) dto.CreateLoanRequest {
		return dto.CreateLoanRequest{
			CollaboratorID: "c1",
			DueDate:        f.now.Add(time.Hour),
			Items:          []dto.LoanItemRequest{{ProductID: "p1", LocationID: locationID, Quantity: 1}},
		}
	}

	_, err := f.uc.Create(f.ctx, writerActor, req("no-existe"))
	assert.ErrorIs(t, err, domain.ErrNotFound, "ubicación inexistente es NotFound, no falta de stock")
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	require.NoError(t, f.store.Locations().Update(f.ctx, &entity.Location{ID: "l1", Code: "L1", Name: "Depósito", Active: false}))
	_, err = f.uc.Create(f.ctx, writerActor, req("l1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se presta desde una ubicación inactiva")

	p1 := f.product(t, "p1")
	assert.Equal(t, 10, p1.StockCurrent)
	assert.Zero(t, p1.StockRequested)
}

func TestLoan_DevolucionAUbicacionDesactivada(t *testing.T) {
	f := newFixture(t)
	created := f.createTwoItemLoan(t)
	require.NoError(t, f.store.Locations().Update(f.ctx, &entity.Location{ID: "l1", Code: "L1", Name: "Depósito", Active: false}))

	_, err := f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: itemFor(t, created, "p1").ID, Quantity: 3}},
	})
	require.NoError(t, err, "lo prestado vuelve aunque la ubicación se haya desactivado")
	assert.Equal(t, 10, f.product(t, "p1").StockCurrent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestLoan_DevolucionParcialYTotal(t *testing.T) {
	f := newFixture(t)
	created := f.createTwoItemLoan(t)
	item1 := itemFor(t, created, "p1")
	item2 := itemFor(t, created, "p2")

	out, err := f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: item1.ID, Quantity: 3, Condition: entity.ConditionDamaged}},
	})
	require.NoError(t, err)
	assert.Equal(t, "partially_returned", out.Status, "item2 sigue pendiente")
	assert.Equal(t, 3, itemFor(t, out, "p1").QuantityReturned)
	assert.Equal(t, entity.ConditionDamaged, itemFor(t, out, "p1").ConditionIn)
	assert.Nil(t, out.ReturnedAt)

	out, err = f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: item2.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "returned", out.Status)
	assert.NotNil(t, out.ReturnedAt)

	p1, p2 := f.product(t, "p1"), f.product(t, "p2")
	assert.Equal(t, 10, p1.StockCurrent)
	assert.Zero(t, p1.StockRequested)
	assert.Equal(t, 4, p2.StockCurrent)
	assert.Zero(t, p2.StockRequested)
	assert.Len(t, f.ledger(t, created.ID), 4)
}

func TestLoan_DevolucionExcedePendiente(t *testing.T) {
	f := newFixture(t)
	created := f.createTwoItemLoan(t)

	_, err := f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: itemFor(t, created, "p1").ID, Quantity: 4}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.EqualValues(t, 3, domain.Details(err)["pending"])
	assert.Equal(t, 7, f.product(t, "p1").StockCurrent)
}

func TestLoan_DevolucionEnEstadoTerminal(t *testing.T) {
	f := newFixture(t)
	created := f.createTwoItemLoan(t)
	all := dto.ReturnLoanRequest{Items: []dto.ReturnItemRequest{
		{ItemID: itemFor(t, created, "p1").ID, Quantity: 3},
		{ItemID: itemFor(t, created, "p2").ID, Quantity: 2},
	}}
	_, err := f.uc.ReturnItems(f.ctx, writerActor, created.ID, all)
	require.NoError(t, err)

	_, err = f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: itemFor(t, created, "p1").ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.MarkLost(f.ctx, adminActor, created.ID, dto.MarkLostRequest{Note: "tarde"})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "un préstamo devuelto no puede perderse")
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimiento y pérdida
// ──────────────────────────────────────────────────────────────────────────────

func TestLoan_VencidoAlConsultar(t *testing.T) {
	f := newFixture(t)
	created := f.createTwoItemLoan(t)

	f.now = f.now.Add(72 * time.Hour)
	got, err := f.uc.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)

	stored, err := f.store.Loans().GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LoanOverdue, stored.Status, "el vencimiento se persiste al leer")

	list, err := f.uc.List(f.ctx, repository.LoanFilter{Status: entity.LoanOverdue})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	out, err := f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{
			{ItemID: itemFor(t, created, "p1").ID, Quantity: 3},
			{ItemID: itemFor(t, created, "p2").ID, Quantity: 2},
		},
	})
	require.NoError(t, err, "un préstamo vencido sigue admitiendo devoluciones")
	assert.Equal(t, "returned", out.Status)
}

func TestLoan_MarcarPerdido(t *testing.T) {
	f := newFixture(t)
	created := f.createTwoItemLoan(t)
	_, err := f.uc.ReturnItems(f.ctx, writerActor, created.ID, dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: itemFor(t, created, "p1").ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.uc.MarkLost(f.ctx, writerActor, created.ID, dto.MarkLostRequest{Note: "extraviado"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo admin")

	_, err = f.uc.MarkLost(f.ctx, adminActor, created.ID, dto.MarkLostRequest{Note: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la nota es obligatoria")

	before := len(f.ledger(t, created.ID))
	out, err := f.uc.MarkLost(f.ctx, adminActor, created.ID, dto.MarkLostRequest{Note: "extraviado en obra"})
	require.NoError(t, err)
	assert.Equal(t, "lost", out.Status)
	assert.Contains(t, out.Note, "extraviado en obra")

	p1, p2 := f.product(t, "p1"), f.product(t, "p2")
	assert.Equal(t, 8, p1.StockCurrent, "lo perdido no vuelve al stock")
	assert.Zero(t, p1.StockRequested, "pero deja de figurar como prestado")
	assert.Equal(t, 2, p2.StockCurrent)
	assert.Zero(t, p2.StockRequested)
	assert.Len(t, f.ledger(t, created.ID), before, "la pérdida no escribe en el libro")

	_, err = f.uc.MarkLost(f.ctx, adminActor, created.ID, dto.MarkLostRequest{Note: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestLoan_NoEncontrado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Get(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.ReturnItems(f.ctx, writerActor, "no-existe", dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: "x", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
