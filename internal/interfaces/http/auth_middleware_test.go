package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Almoxarifado-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Almoxarifado-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "almoxarifado-test"
	testExpMin    = 60
)

// buildRBACApp monta tres rutas con los mismos niveles que el router:
// consulta (todos los roles), movimiento (admin y usuario) y administración (solo admin).
func buildRBACApp() *fiber.App {
	app := fiber.New()
	echo := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	}
	auth := apphttp.AuthMiddleware(testJWTSecret)
	app.Get("/estoque", auth, apphttp.RequireRole(entity.RoleAdmin, entity.RoleUser, entity.RoleViewer), echo)
	app.Post("/emprestimos", auth, apphttp.RequireRole(entity.RoleAdmin, entity.RoleUser), echo)
	app.Delete("/auditoria", auth, apphttp.RequireRole(entity.RoleAdmin), echo)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func send(t *testing.T, app *fiber.App, method, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole: matriz rol x ruta
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	app := buildRBACApp()

	cases := []struct {
		role   string
		method string
		path   string
		want   int
	}{
		{entity.RoleViewer, http.MethodGet, "/estoque", http.StatusOK},
		{entity.RoleViewer, http.MethodPost, "/emprestimos", http.StatusForbidden},
		{entity.RoleViewer, http.MethodDelete, "/auditoria", http.StatusForbidden},
		{entity.RoleUser, http.MethodGet, "/estoque", http.StatusOK},
		{entity.RoleUser, http.MethodPost, "/emprestimos", http.StatusOK},
		{entity.RoleUser, http.MethodDelete, "/auditoria", http.StatusForbidden},
		{entity.RoleAdmin, http.MethodGet, "/estoque", http.StatusOK},
		{entity.RoleAdmin, http.MethodPost, "/emprestimos", http.StatusOK},
		{entity.RoleAdmin, http.MethodDelete, "/auditoria", http.StatusOK},
		{"almoxarife", http.MethodGet, "/estoque", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role+" "+tc.method+" "+tc.path, func(t *testing.T) {
			resp := send(t, app, tc.method, tc.path, bearer(t, tc.role))
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireRole_DetalleDelRechazo(t *testing.T) {
	resp := send(t, buildRBACApp(), http.MethodDelete, "/auditoria", bearer(t, entity.RoleUser))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeError(t, resp)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Equal(t, entity.RoleUser, body.Details["role"], "el detalle debe indicar el rol rechazado")
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	resp := send(t, buildRBACApp(), http.MethodGet, "/estoque", bearer(t, ""))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decodeError(t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: cabecera y token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CabeceraInvalida(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, entity.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secreto", testUserID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"bearer vacío", "Bearer   ", "MISSING_TOKEN"},
		{"token basura", "Bearer abc.def.ghi", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + foreign, "INVALID_TOKEN"},
	}
	app := buildRBACApp()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := send(t, app, http.MethodGet, "/estoque", tc.header)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Code)
		})
	}
}

func TestAuthMiddleware_CargaClaimsEnLocals(t *testing.T) {
	resp := send(t, buildRBACApp(), http.MethodGet, "/estoque", "bearer "+bearer(t, entity.RoleViewer)[len("Bearer "):])
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "el esquema Bearer no distingue mayúsculas")

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, entity.RoleViewer, body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests pkg/jwt
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, entity.RoleUser, testIssuer, testExpMin)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time), "la expiración debe ser posterior a la emisión")
}

func TestJWT_SecretoVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testUserID, entity.RoleAdmin, testIssuer, testExpMin)
	assert.True(t, errors.Is(err, pkgjwt.ErrEmptySecret))

	_, err = pkgjwt.Parse("", "x.y.z")
	assert.True(t, errors.Is(err, pkgjwt.ErrEmptySecret))
}
