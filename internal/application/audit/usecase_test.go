package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

var (
	adminActor  = entity.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	writerActor = entity.Actor{ID: "u-user", Role: entity.RoleUser}
)

// failingRepo simula una base caída.
type failingRepo struct{ repository.AuditRepository }

func (failingRepo) Create(context.Context, *entity.AuditEntry) error { return errors.New("conexión rechazada") }

func TestEvent_SerializaDetalles(t *testing.T) {
	e := audit.Event("u1", entity.AuditReturn, "loans", "l1", map[string]any{"quantity": 2})
	assert.Equal(t, "loans", e.Table)

	var details map[string]any
	require.NoError(t, json.Unmarshal(e.Details, &details))
	assert.EqualValues(t, 2, details["quantity"])

	assert.Nil(t, audit.Event("u1", entity.AuditLogin, "users", "u1", nil).Details)
}

func TestWriter_CompletaIDyFecha(t *testing.T) {
	store := memory.New()
	w := audit.NewWriter(store.Audit(), logger.Nop())
	w.Log(context.Background(), audit.Event("u1", entity.AuditCreate, "products", "p1", nil))
	w.Wait()

	list, total, err := store.Audit().List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestWriter_FalloNoSePropaga(t *testing.T) {
	w := audit.NewWriter(failingRepo{}, logger.Nop())
	assert.NotPanics(t, func() {
		w.Log(context.Background(), audit.Event("u1", entity.AuditCreate, "products", "p1", nil))
		w.Wait()
	})
}

func TestWriter_ContextoCanceladoIgualRegistra(t *testing.T) {
	store := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := audit.NewWriter(store.Audit(), logger.Nop())
	w.Log(ctx, audit.Event("u1", entity.AuditCreate, "products", "p1", nil))
	w.Wait()

	_, total, err := store.Audit().List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// blockingRepo retiene cada alta hasta que se cierre release.
type blockingRepo struct {
	repository.AuditRepository
	release chan struct{}
}

func (r blockingRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	select {
	case <-r.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.AuditRepository.Create(ctx, e)
}

func TestWriter_NoBloqueaAlLlamador(t *testing.T) {
	store := memory.New()
	repo := blockingRepo{AuditRepository: store.Audit(), release: make(chan struct{})}
	w := audit.NewWriter(repo, logger.Nop())

	done := make(chan struct{})
	go func() {
		w.Log(context.Background(), audit.Event("u1", entity.AuditAdjust, "stock", "p1", nil))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Log no debe esperar a la base de auditoría")
	}

	_, total, err := store.Audit().List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "la escritura sigue pendiente")

	close(repo.release)
	w.Wait()
	_, total, err = store.Audit().List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "Wait deja la entrada persistida")
}

func TestUseCase_ListYPurge(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	old := time.Now().AddDate(-1, 0, 0)
	require.NoError(t, store.Audit().Create(ctx, &entity.AuditEntry{ID: "a1", UserID: "u1", Action: entity.AuditCreate, Table: "products", CreatedAt: old}))
	require.NoError(t, store.Audit().Create(ctx, &entity.AuditEntry{ID: "a2", UserID: "u2", Action: entity.AuditAdjust, Table: "stock", CreatedAt: time.Now()}))

	uc := audit.NewUseCase(store.Audit(), audit.NopLogger{}, 6)

	_, err := uc.List(ctx, writerActor, repository.AuditFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.List(ctx, adminActor, repository.AuditFilter{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "a2", out.Items[0].ID)

	_, err = uc.Purge(ctx, writerActor)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	purged, err := uc.Purge(ctx, adminActor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged.Deleted, "solo la entrada de hace un año")

	rest, err := uc.List(ctx, adminActor, repository.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, rest.Page.Total)
}
