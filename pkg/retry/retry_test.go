package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/pkg/retry"
)

var errTransient = errors.New("transitorio")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_ReintentaHastaExito(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastPolicy(3), isTransient, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ErrorNoReintentableSeDevuelveTalCual(t *testing.T) {
	permanent := errors.New("validación")
	calls := 0
	err := retry.Do(context.Background(), fastPolicy(5), isTransient, func(ctx context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "no debe reintentar errores permanentes")
}

func TestDo_AgotaIntentos(t *testing.T) {
	calls := 0
	var notified int
	p := fastPolicy(3)
	p.OnRetry = func(err error, wait time.Duration) { notified++ }
	err := retry.Do(context.Background(), p, isTransient, func(ctx context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, notified)
}

func TestDo_UnSoloIntento(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastPolicy(1), isTransient, func(ctx context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}
