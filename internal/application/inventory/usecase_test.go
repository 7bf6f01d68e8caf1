package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

var (
	adminActor  = entity.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	writerActor = entity.Actor{ID: "u-user", Role: entity.RoleUser}
	viewerActor = entity.Actor{ID: "u-viewer", Role: entity.RoleViewer}
)

func newInventoryUC(f *engineFixture, ledgerMonths int) *inventory.InventoryUseCase {
	return inventory.NewInventoryUseCase(f.store, f.store.Repos(), inventory.NewEngine(), audit.NewWriter(f.store.Audit(), logger.Nop()), logger.Nop(), ledgerMonths).
		WithClock(func() time.Time { return fixedNow })
}

func TestInventoryUseCase_RecepcionMultilinea(t *testing.T) {
	f := newEngineFixture(t)
	f.product(t, "p1", 0)
	f.product(t, "p2", 0)
	f.location(t, "l1")
	uc := newInventoryUC(f, 60)

	out, err := uc.Receive(f.ctx, writerActor, dto.ReceiptRequest{
		Reference: "NF 123",
		Lines: []dto.ReceiptLine{
			{ProductID: "p2", Quantity: 3},
			{ProductID: "p1", LocationID: "l1", Quantity: 7},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ENT-2026-00001", out.Code)
	require.Len(t, out.Movements, 2)
	for _, m := range out.Movements {
		assert.Equal(t, out.DocumentID, m.DocumentID, "todas las líneas comparten documento")
		assert.Equal(t, "ENT-2026-00001 (NF 123)", m.Reference)
	}

	stock, err := uc.StockByProduct(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, stock.StockCurrent)
	assert.Zero(t, stock.Unlocated)
	require.Len(t, stock.Locations, 1)
	assert.Equal(t, 7, stock.Locations[0].Available)

	stock, err = uc.StockByProduct(f.ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 3, stock.Unlocated, "sin ubicación suma al saldo general")

	second, err := uc.Receive(f.ctx, writerActor, dto.ReceiptRequest{Lines: []dto.ReceiptLine{{ProductID: "p1", Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, "ENT-2026-00002", second.Code, "la numeración es correlativa por año")
}

func TestInventoryUseCase_RecepcionConLineaInvalida_NoAplicaNinguna(t *testing.T) {
	f := newEngineFixture(t)
	f.product(t, "p1", 0)
	uc := newInventoryUC(f, 60)

	_, err := uc.Receive(f.ctx, writerActor, dto.ReceiptRequest{Lines: []dto.ReceiptLine{
		{ProductID: "p1", Quantity: 4},
		{ProductID: "p-inexistente", Quantity: 1},
	}})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.getProduct(t, "p1").StockCurrent)
	assert.Empty(t, f.movements(t, "p1"))
}

func TestInventoryUseCase_PermisosPorRol(t *testing.T) {
	f := newEngineFixture(t)
	f.product(t, "p1", 5)
	uc := newInventoryUC(f, 60)

	_, err := uc.Receive(f.ctx, viewerActor, dto.ReceiptRequest{Lines: []dto.ReceiptLine{{ProductID: "p1", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Adjust(f.ctx, viewerActor, dto.AdjustmentRequest{ProductID: "p1", LocationID: "l1", Delta: -1, Reason: "rotura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.PurgeMovements(f.ctx, writerActor)
	assert.ErrorIs(t, err, domain.ErrForbidden, "la purga es solo para administradores")
}

func TestInventoryUseCase_AjusteRequiereMotivoYUbicacion(t *testing.T) {
	f := newEngineFixture(t)
	f.product(t, "p1", 0)
	f.location(t, "l1")
	f.stockAt(t, "p1", "l1", 5)
	uc := newInventoryUC(f, 60)

	_, err := uc.Adjust(f.ctx, writerActor, dto.AdjustmentRequest{ProductID: "p1", LocationID: "l1", Delta: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin motivo")

	_, err = uc.Adjust(f.ctx, writerActor, dto.AdjustmentRequest{ProductID: "p1", Delta: -1, Reason: "conteo físico"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin ubicación")

	mov, err := uc.Adjust(f.ctx, writerActor, dto.AdjustmentRequest{ProductID: "p1", LocationID: "l1", Delta: -2, Reason: "conteo físico"})
	require.NoError(t, err)
	assert.Equal(t, "adjustment", mov.Kind)
	assert.Equal(t, -2, mov.Quantity)
	assert.Equal(t, 3, f.getProduct(t, "p1").StockCurrent)
	assert.Equal(t, 3, f.getStock(t, "p1", "l1").Quantity)
}

func TestInventoryUseCase_ListarMovimientos_TipoInvalido(t *testing.T) {
	f := newEngineFixture(t)
	uc := newInventoryUC(f, 60)
	_, err := uc.ListMovements(f.ctx, repository.MovementFilter{Kind: "robo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInventoryUseCase_PurgaRespetaHorizonte(t *testing.T) {
	f := newEngineFixture(t)
	f.product(t, "p1", 0)
	old := fixedNow.AddDate(0, -13, 0)
	require.NoError(t, f.store.Movements().Create(f.ctx, &entity.Movement{ID: "m-old", ProductID: "p1", Kind: entity.MovementEntry, Quantity: 1, CreatedAt: old}))
	require.NoError(t, f.store.Movements().Create(f.ctx, &entity.Movement{ID: "m-new", ProductID: "p1", Kind: entity.MovementEntry, Quantity: 1, CreatedAt: fixedNow}))

	out, err := newInventoryUC(f, 12).PurgeMovements(f.ctx, adminActor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Deleted)

	left := f.movements(t, "p1")
	require.Len(t, left, 1)
	assert.Equal(t, "m-new", left[0].ID)

	_, err = newInventoryUC(f, 0).PurgeMovements(f.ctx, adminActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin horizonte configurado no se purga")
}

// ──────────────────────────────────────────────────────────────────────────────
// RetryingRunner
// ──────────────────────────────────────────────────────────────────────────────

type flakyRunner struct {
	failures int
	err      error
	calls    int
}

func (r *flakyRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	r.calls++
	if r.calls <= r.failures {
		return r.err
	}
	return fn(ctx, inventory.Repos{})
}

func TestRetryingRunner_ReintentaConflictosDeConcurrencia(t *testing.T) {
	inner := &flakyRunner{failures: 2, err: domain.ErrConcurrency}
	runner := inventory.NewRetryingRunner(inner, retryPolicy(3), logger.Nop())

	executed := 0
	err := runner.Run(context.Background(), func(context.Context, inventory.Repos) error {
		executed++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 1, executed)
}

func TestRetryingRunner_AgotaIntentos(t *testing.T) {
	inner := &flakyRunner{failures: 10, err: domain.ErrConcurrency}
	runner := inventory.NewRetryingRunner(inner, retryPolicy(3), logger.Nop())

	err := runner.Run(context.Background(), func(context.Context, inventory.Repos) error { return nil })
	assert.ErrorIs(t, err, domain.ErrConcurrency)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingRunner_ErrorDeNegocioNoSeReintenta(t *testing.T) {
	inner := &flakyRunner{}
	runner := inventory.NewRetryingRunner(inner, retryPolicy(5), logger.Nop())

	err := runner.Run(context.Background(), func(context.Context, inventory.Repos) error {
		return domain.Validation("dato inválido")
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, inner.calls)
}
