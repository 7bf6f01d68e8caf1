package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
)

var tracer = otel.Tracer("almoxarifado/postgres")

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxOptions límites de espera por transacción.
type TxOptions struct {
	// LockTimeout corta la espera por un row lock; al vencer llega como domain.ErrConcurrency.
	LockTimeout time.Duration
	// StatementTimeout protege contra consultas colgadas.
	StatementTimeout time.Duration
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL read committed.
type TxRunner struct {
	pool *pgxpool.Pool
	opts TxOptions
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions) *TxRunner {
	return &TxRunner{pool: pool, opts: opts}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) (err error) {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(pgx.ReadCommitted)),
			attribute.Int64("tx.lock_timeout_ms", r.opts.LockTimeout.Milliseconds()),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.opts.LockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.opts.LockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	if r.opts.StatementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.opts.StatementTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(ctx, ReposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// ReposFor construye los repositorios del motor sobre q (pool para lecturas, tx dentro de Run).
func ReposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Products:      NewProductRepository(q),
		Stock:         NewStockRepository(q),
		Movements:     NewMovementRepository(q),
		Locations:     NewLocationRepository(q),
		Loans:         NewLoanRepository(q),
		Transfers:     NewTransferRepository(q),
		Collaborators: NewCollaboratorRepository(q),
		Suppliers:     NewSupplierRepository(q),
		Sequences:     NewSequenceRepository(q),
	}
}
