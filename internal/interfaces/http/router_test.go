package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/Almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/application/loan"
	"github.com/jhoicas/Almoxarifado-api/internal/application/transfer"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app   *fiber.App
	store *memory.Store
	audit *audit.Writer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	log := logger.Nop()
	auditLog := audit.NewWriter(store.Audit(), log)
	engine := inventory.NewEngine()
	reads := store.Repos()

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
			auth.LockoutPolicy{MaxFailedAttempts: 3, Duration: time.Minute}, auditLog, log),
		UserUC:         usecase.NewUserUseCase(store.Users(), auditLog),
		ProductUC:      usecase.NewProductUseCase(reads.Products, store.Groups(), reads.Suppliers, reads.Movements, auditLog),
		LocationUC:     usecase.NewLocationUseCase(reads.Locations, auditLog),
		CollaboratorUC: usecase.NewCollaboratorUseCase(reads.Collaborators, auditLog),
		SupplierUC:     usecase.NewSupplierUseCase(reads.Suppliers, auditLog),
		InventoryUC:    inventory.NewInventoryUseCase(store, reads, engine, auditLog, log, 60),
		LoanUC:         loan.NewUseCase(store, reads, engine, auditLog, log),
		TransferUC:     transfer.NewUseCase(store, reads, engine, auditLog, log),
		ReportUC:       appanalytics.NewReportUseCase(store.Reports()),
		AuditUC:        audit.NewUseCase(store.Audit(), auditLog, 6),
		Idempotency:    memory.NewIdempotencyStore(time.Hour),
		JWTSecret:      testJWTSecret,
	})
	return &testAPI{app: app, store: store, audit: auditLog}
}

func (a *testAPI) call(t *testing.T, method, path, role string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", bearer(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "respuesta JSON inválida: %s", raw)
	return v
}

// seedCatalog crea producto, ubicación y colaborador y recibe qty unidades en la ubicación.
func (a *testAPI) seedCatalog(t *testing.T, qty int) (productID, locationID, collaboratorID string) {
	t.Helper()
	resp, raw := a.call(t, http.MethodPost, "/api/products", "admin", dto.CreateProductRequest{Code: "FER-001", Description: "Furadeira", StockMinimum: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	productID = decode[dto.ProductResponse](t, raw).ID

	resp, raw = a.call(t, http.MethodPost, "/api/locations", "admin", dto.CreateLocationRequest{Code: "ALM-A", Name: "Almacén A"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	locationID = decode[dto.LocationResponse](t, raw).ID

	resp, raw = a.call(t, http.MethodPost, "/api/collaborators", "usuario", dto.CreateCollaboratorRequest{Name: "Ana Souza", Registration: "M-100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	collaboratorID = decode[dto.CollaboratorResponse](t, raw).ID

	if qty > 0 {
		resp, raw = a.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", dto.ReceiptRequest{
			Lines: []dto.ReceiptLine{{ProductID: productID, LocationID: locationID, Quantity: qty}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}
	return productID, locationID, collaboratorID
}

func (a *testAPI) productStock(t *testing.T, productID string) dto.ProductStockResponse {
	t.Helper()
	resp, raw := a.call(t, http.MethodGet, "/api/inventory/products/"+productID+"/stock", "visualizador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	return decode[dto.ProductStockResponse](t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de préstamo
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FlujoPrestamoCompleto(t *testing.T) {
	api := newTestAPI(t)
	productID, locationID, collaboratorID := api.seedCatalog(t, 10)

	resp, raw := api.call(t, http.MethodPost, "/api/loans", "usuario", dto.CreateLoanRequest{
		CollaboratorID: collaboratorID,
		DueDate:        time.Now().Add(72 * time.Hour),
		Items:          []dto.LoanItemRequest{{ProductID: productID, LocationID: locationID, Quantity: 4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[dto.LoanResponse](t, raw)
	assert.Equal(t, "open", created.Status)
	assert.Regexp(t, `^EMP-\d{4}-00001$`, created.Code, "el código debe seguir la numeración EMP-AAAA-NNNNN")
	require.Len(t, created.Items, 1)

	stock := api.productStock(t, productID)
	assert.Equal(t, 6, stock.StockCurrent, "el préstamo retira stock")
	assert.Equal(t, 4, stock.StockRequested, "y lo registra como solicitado")

	resp, raw = api.call(t, http.MethodPost, "/api/loans/"+created.ID+"/returns", "usuario", dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: created.Items[0].ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "partially_returned", decode[dto.LoanResponse](t, raw).Status)

	resp, raw = api.call(t, http.MethodPost, "/api/loans/"+created.ID+"/returns", "usuario", dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: created.Items[0].ID, Quantity: 3}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "returned", decode[dto.LoanResponse](t, raw).Status)

	stock = api.productStock(t, productID)
	assert.Equal(t, 10, stock.StockCurrent, "la devolución completa restituye todo el stock")
	assert.Zero(t, stock.StockRequested)

	resp, raw = api.call(t, http.MethodPost, "/api/loans/"+created.ID+"/returns", "usuario", dto.ReturnLoanRequest{
		Items: []dto.ReturnItemRequest{{ItemID: created.Items[0].ID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "un préstamo devuelto no admite más devoluciones")
	assert.Equal(t, "INVALID_STATE", decode[dto.ErrorResponse](t, raw).Code)
}

func TestRouter_PrestamoSinStock_Retorna409ConDetalles(t *testing.T) {
	api := newTestAPI(t)
	productID, locationID, collaboratorID := api.seedCatalog(t, 3)

	resp, raw := api.call(t, http.MethodPost, "/api/loans", "usuario", dto.CreateLoanRequest{
		CollaboratorID: collaboratorID,
		DueDate:        time.Now().Add(24 * time.Hour),
		Items:          []dto.LoanItemRequest{{ProductID: productID, LocationID: locationID, Quantity: 5}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	assert.EqualValues(t, 3, errResp.Details["available"])
	assert.EqualValues(t, 5, errResp.Details["requested"])

	assert.Equal(t, 3, api.productStock(t, productID).StockCurrent, "el rechazo no debe mover stock")
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_RecepcionIdempotente_ReplicaRespuesta(t *testing.T) {
	api := newTestAPI(t)
	productID, locationID, _ := api.seedCatalog(t, 0)
	body := dto.ReceiptRequest{Lines: []dto.ReceiptLine{{ProductID: productID, LocationID: locationID, Quantity: 5}}}

	first, firstRaw := api.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", body, apphttp.HeaderIdempotencyKey, "rcv-1")
	require.Equal(t, http.StatusCreated, first.StatusCode, string(firstRaw))

	second, secondRaw := api.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", body, apphttp.HeaderIdempotencyKey, "rcv-1")
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("Idempotent-Replay"), "el reintento debe marcarse como replay")
	assert.JSONEq(t, string(firstRaw), string(secondRaw), "el replay devuelve la misma respuesta")

	assert.Equal(t, 5, api.productStock(t, productID).StockCurrent, "la recepción se aplica una sola vez")

	third, _ := api.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", body, apphttp.HeaderIdempotencyKey, "rcv-2")
	assert.Equal(t, http.StatusCreated, third.StatusCode)
	assert.Equal(t, 10, api.productStock(t, productID).StockCurrent, "otra clave es otra operación")
}

func TestRouter_ClaveIdempotenteConOtroCuerpo_Retorna422(t *testing.T) {
	api := newTestAPI(t)
	productID, locationID, _ := api.seedCatalog(t, 0)
	original := dto.ReceiptRequest{Lines: []dto.ReceiptLine{{ProductID: productID, LocationID: locationID, Quantity: 5}}}
	changed := dto.ReceiptRequest{Lines: []dto.ReceiptLine{{ProductID: productID, LocationID: locationID, Quantity: 50}}}

	first, raw := api.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", original, apphttp.HeaderIdempotencyKey, "rcv-9")
	require.Equal(t, http.StatusCreated, first.StatusCode, string(raw))

	reused, raw := api.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", changed, apphttp.HeaderIdempotencyKey, "rcv-9")
	assert.Equal(t, http.StatusUnprocessableEntity, reused.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", decode[dto.ErrorResponse](t, raw).Code)
	assert.Empty(t, reused.Header.Get("Idempotent-Replay"), "no se replica una respuesta ajena")
	assert.Equal(t, 5, api.productStock(t, productID).StockCurrent, "el cuerpo distinto no se ejecuta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización y mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_VisualizadorNoPuedeMutar(t *testing.T) {
	api := newTestAPI(t)
	resp, raw := api.call(t, http.MethodPost, "/api/products", "visualizador", dto.CreateProductRequest{Code: "X", Description: "Y"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "FORBIDDEN")

	resp, _ = api.call(t, http.MethodGet, "/api/products", "visualizador", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "visualizador sí puede consultar")
}

func TestRouter_AuditoriaSoloAdmin(t *testing.T) {
	api := newTestAPI(t)
	api.seedCatalog(t, 1)
	api.audit.Wait()

	resp, _ := api.call(t, http.MethodGet, "/api/audit", "usuario", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := api.call(t, http.MethodGet, "/api/audit", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	list := decode[dto.AuditListResponse](t, raw)
	assert.NotEmpty(t, list.Items, "las altas del catálogo deben quedar auditadas")
}

func TestRouter_MapeoDeErrores(t *testing.T) {
	api := newTestAPI(t)

	resp, raw := api.call(t, http.MethodGet, "/api/loans/00000000-0000-0000-0000-00000000dead", "visualizador", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = api.call(t, http.MethodPost, "/api/inventory/receipts", "usuario", dto.ReceiptRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/loans", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "usuario"))
	r, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode, "cuerpo inválido debe retornar 400")

	resp, _ = api.call(t, http.MethodGet, "/api/reports/movements?start_date=ayer", "visualizador", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)
	resp, raw := api.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "ok")
}
