// Package retry reintenta operaciones transaccionales que fallan por contención
// (lock timeout, deadlock, serialización) con backoff exponencial.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy parámetros de reintento.
type Policy struct {
	Attempts  int           // intentos totales (1 = sin reintento)
	BaseDelay time.Duration // espera inicial
	MaxDelay  time.Duration
	// OnRetry se invoca antes de cada espera (opcional, para logging).
	OnRetry func(err error, wait time.Duration)
}

// DefaultPolicy 3 intentos empezando en 50ms.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}
}

// Do ejecuta fn y la reintenta mientras retryable(err) sea verdadero y queden intentos.
// Errores no reintentables se devuelven de inmediato y sin envolver.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(ctx context.Context) error) error {
	if p.Attempts <= 1 {
		return fn(ctx)
	}
	b := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		b.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.Attempts)),
	}
	if p.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(p.OnRetry))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := fn(ctx)
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, opts...)
	return err
}
