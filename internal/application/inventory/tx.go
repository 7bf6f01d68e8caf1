package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
	"github.com/jhoicas/Almoxarifado-api/pkg/retry"
)

// Prefijos de numeración de documentos.
const (
	PrefixLoan     = "EMP"
	PrefixTransfer = "TRF"
	PrefixReceipt  = "ENT"
)

// NextDocumentCode genera PREFIJO-AAAA-NNNNN dentro de la transacción del caller.
func NextDocumentCode(ctx context.Context, seq repository.SequenceRepository, prefix string, now time.Time) (string, error) {
	n, err := seq.Next(ctx, prefix, now.Year())
	if err != nil {
		return "", fmt.Errorf("numerar %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, now.Year(), n), nil
}

// RetryingRunner envuelve un TxRunner y reintenta la transacción completa ante domain.ErrConcurrency.
// Cualquier otro error se devuelve tal cual en el primer intento.
type RetryingRunner struct {
	runner TxRunner
	policy retry.Policy
	log    *logger.Logger
}

var _ TxRunner = (*RetryingRunner)(nil)

// NewRetryingRunner construye el runner con la política indicada.
func NewRetryingRunner(runner TxRunner, policy retry.Policy, log *logger.Logger) *RetryingRunner {
	return &RetryingRunner{runner: runner, policy: policy, log: log.Component("tx")}
}

// Run implementa TxRunner.
func (r *RetryingRunner) Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	policy := r.policy
	policy.OnRetry = func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Dur("wait", wait).Msg("conflicto de concurrencia, reintentando transacción")
	}
	return retry.Do(ctx, policy, domain.IsRetryable, func(ctx context.Context) error {
		return r.runner.Run(ctx, fn)
	})
}
