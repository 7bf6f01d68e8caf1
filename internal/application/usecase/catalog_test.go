package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/memory"
)

var (
	adminActor  = entity.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	writerActor = entity.Actor{ID: "u-user", Role: entity.RoleUser}
	viewerActor = entity.Actor{ID: "u-viewer", Role: entity.RoleViewer}
)

func ptr[T any](v T) *T { return &v }

func newProductUC(store *memory.Store) *usecase.ProductUseCase {
	return usecase.NewProductUseCase(store.Products(), store.Groups(), store.Suppliers(), store.Movements(), audit.NopLogger{})
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_CreateYCodigoDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.New())

	cost := decimal.RequireFromString("7.25")
	out, err := uc.Create(ctx, writerActor, dto.CreateProductRequest{Code: " FER-01 ", Description: "Martillo", Unit: "un", StockMinimum: 2, StockMaximum: 10, CostPrice: &cost})
	require.NoError(t, err)
	assert.Equal(t, "FER-01", out.Code)
	assert.Equal(t, "UN", out.Unit)
	assert.Zero(t, out.StockCurrent, "un producto nuevo nace sin stock")
	assert.Equal(t, entity.StockLevelCritical, out.StockLevel)
	assert.True(t, cost.Equal(out.CostPrice))

	_, err = uc.Create(ctx, writerActor, dto.CreateProductRequest{Code: "FER-01", Description: "Otro"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Create(ctx, viewerActor, dto.CreateProductRequest{Code: "FER-02", Description: "Sierra"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProduct_CreateValidaciones(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.New())

	cases := []struct {
		name string
		in   dto.CreateProductRequest
		kind error
	}{
		{"sin código", dto.CreateProductRequest{Description: "x"}, domain.ErrInvalidInput},
		{"sin descripción", dto.CreateProductRequest{Code: "A"}, domain.ErrInvalidInput},
		{"mínimo mayor que máximo", dto.CreateProductRequest{Code: "A", Description: "x", StockMinimum: 5, StockMaximum: 2}, domain.ErrInvalidInput},
		{"mínimo negativo", dto.CreateProductRequest{Code: "A", Description: "x", StockMinimum: -1}, domain.ErrInvalidInput},
		{"costo negativo", dto.CreateProductRequest{Code: "A", Description: "x", CostPrice: ptr(decimal.NewFromInt(-1))}, domain.ErrInvalidInput},
		{"grupo inexistente", dto.CreateProductRequest{Code: "A", Description: "x", GroupID: "g-x"}, domain.ErrNotFound},
		{"proveedor inexistente", dto.CreateProductRequest{Code: "A", Description: "x", SupplierID: "s-x"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, adminActor, tc.in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestProduct_UpdateNoTocaCantidades(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	uc := newProductUC(store)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Code: "P1", Description: "Casco", StockCurrent: 9, StockRequested: 2, Active: true}))

	out, err := uc.Update(ctx, writerActor, "p1", dto.UpdateProductRequest{Description: ptr("Casco blanco"), StockMinimum: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Casco blanco", out.Description)
	assert.Equal(t, 9, out.StockCurrent)
	assert.Equal(t, 2, out.StockRequested)

	_, err = uc.Update(ctx, writerActor, "p1", dto.UpdateProductRequest{Description: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, writerActor, "p1", dto.UpdateProductRequest{StockMaximum: ptr(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el máximo no puede quedar por debajo del mínimo vigente")

	_, err = uc.Update(ctx, writerActor, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_DeleteConHistorialSoloDesactiva(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	uc := newProductUC(store)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Code: "P1", Description: "Con historial", Active: true}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", Code: "P2", Description: "Sin historial", Active: true}))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{ID: "m1", ProductID: "p1", Kind: entity.MovementAdjustment, Quantity: 1}))

	_, err := uc.Delete(ctx, writerActor, "p1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.Delete(ctx, adminActor, "p1")
	require.NoError(t, err)
	assert.True(t, out.Deactivated)
	p1, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.False(t, p1.Active)

	out, err = uc.Delete(ctx, adminActor, "p2")
	require.NoError(t, err)
	assert.False(t, out.Deactivated)
	p2, err := store.Products().GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, p2)
}

func TestProduct_Grupos(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.New())

	g, err := uc.CreateGroup(ctx, writerActor, dto.CreateGroupRequest{Name: " EPI "})
	require.NoError(t, err)
	assert.Equal(t, "EPI", g.Name)

	_, err = uc.CreateGroup(ctx, writerActor, dto.CreateGroupRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := uc.Create(ctx, writerActor, dto.CreateProductRequest{Code: "EPI-1", Description: "Guantes", GroupID: g.ID})
	require.NoError(t, err)
	assert.Equal(t, g.ID, p.GroupID)

	groups, err := uc.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestLocation_CRUD(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	uc := usecase.NewLocationUseCase(store.Locations(), audit.NopLogger{})

	a, err := uc.Create(ctx, writerActor, dto.CreateLocationRequest{Code: "ALM-A", Name: "Almacén A"})
	require.NoError(t, err)
	b, err := uc.Create(ctx, writerActor, dto.CreateLocationRequest{Code: "ALM-B", Name: "Almacén B"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, writerActor, dto.CreateLocationRequest{Code: "ALM-A", Name: "Repetida"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	updated, err := uc.Update(ctx, writerActor, b.ID, dto.UpdateLocationRequest{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	active, err := uc.List(ctx, true, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, active.Page.Total)

	require.NoError(t, store.Stock().Upsert(ctx, &entity.Stock{ProductID: "p1", LocationID: a.ID, Quantity: 1}))
	err = uc.Delete(ctx, adminActor, a.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "con stock no se elimina")

	assert.ErrorIs(t, uc.Delete(ctx, writerActor, b.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, adminActor, b.ID))
	_, err = uc.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores y proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestCollaborator_MatriculaUnicaYDesactivar(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	uc := usecase.NewCollaboratorUseCase(store.Collaborators(), audit.NopLogger{})

	c, err := uc.Create(ctx, writerActor, dto.CreateCollaboratorRequest{Name: "Ana", Registration: "M-1", Email: " Ana@Obra.com "})
	require.NoError(t, err)
	assert.Equal(t, "ana@obra.com", c.Email)
	assert.True(t, c.Active)

	_, err = uc.Create(ctx, writerActor, dto.CreateCollaboratorRequest{Name: "Otra", Registration: "M-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Create(ctx, writerActor, dto.CreateCollaboratorRequest{Name: "Sin matrícula"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Deactivate(ctx, writerActor, c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	off, err := uc.Deactivate(ctx, adminActor, c.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)
}

func TestSupplier_CreateYNoEncontrado(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSupplierUseCase(memory.New().Suppliers(), audit.NopLogger{})

	s, err := uc.Create(ctx, writerActor, dto.CreateSupplierRequest{Name: "Ferretería Central"})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ferretería Central", got.Name)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUser_CreateYEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	uc := usecase.NewUserUseCase(store.Users(), audit.NopLogger{})

	created, err := uc.EnsureAdmin(ctx, "Admin@Obra.com", "clave-segura-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin@obra.com", "otra-clave-1")
	require.NoError(t, err)
	assert.False(t, created, "segunda ejecución no duplica")

	u, err := store.Users().FindByEmail(ctx, "admin@obra.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.NotEqual(t, "clave-segura-1", u.PasswordHash, "nunca se guarda en claro")

	_, err = uc.Create(ctx, writerActor, dto.CreateUserRequest{Email: "x@obra.com", Password: "clave-segura-2"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Create(ctx, adminActor, dto.CreateUserRequest{Email: "x@obra.com", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, adminActor, dto.CreateUserRequest{Email: "x@obra.com", Password: "clave-segura-2", Role: "jefe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.Create(ctx, adminActor, dto.CreateUserRequest{Email: "x@obra.com", Password: "clave-segura-2"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, out.Role, "rol por defecto")

	_, err = uc.Create(ctx, adminActor, dto.CreateUserRequest{Email: "X@obra.com", Password: "clave-segura-2"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
