package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
)

func TestMapError_CodigosSQLState(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrDuplicate},
		{"55P03", domain.ErrConcurrency},
		{"40P01", domain.ErrConcurrency},
		{"40001", domain.ErrConcurrency},
		{"57014", domain.ErrConcurrency},
		{"22P02", domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := mapError("get loan", &pgconn.PgError{Code: tc.code})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMapError_OtrosErroresSeEnvuelven(t *testing.T) {
	assert.NoError(t, mapError("get loan", nil))

	cause := errors.New("conexión cerrada")
	err := mapError("get loan", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "get loan")
}
