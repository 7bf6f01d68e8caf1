package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento; seq lo asigna la base (orden de inserción).
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, product_id, location_id, kind, quantity, unit_cost, document_id, reference, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, nullable(m.LocationID), string(m.Kind), m.Quantity, m.UnitCost,
		nullable(m.DocumentID), m.Reference, nullable(m.UserID), m.CreatedAt,
	).Scan(&m.Seq)
	return mapError("create movement", err)
}

// List lista movimientos, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	where := sq.And{}
	if f.ProductID != "" {
		where = append(where, sq.Eq{"product_id": f.ProductID})
	}
	if f.LocationID != "" {
		where = append(where, sq.Eq{"location_id": f.LocationID})
	}
	if f.Kind != "" {
		where = append(where, sq.Eq{"kind": string(f.Kind)})
	}
	if f.DocumentID != "" {
		where = append(where, sq.Eq{"document_id": f.DocumentID})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"created_at": *f.To})
	}

	total, err := count(ctx, r.q, "movements", where)
	if err != nil {
		return nil, 0, mapError("count movements", err)
	}
	query, args, err := psql.Select(
		"seq", "id", "product_id", "COALESCE(location_id::text, '')", "kind", "quantity", "unit_cost",
		"COALESCE(document_id::text, '')", "reference", "COALESCE(user_id::text, '')", "created_at",
	).From("movements").Where(where).OrderBy("seq DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build movement query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list movements", err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var kind string
		if err := rows.Scan(&m.Seq, &m.ID, &m.ProductID, &m.LocationID, &kind, &m.Quantity, &m.UnitCost,
			&m.DocumentID, &m.Reference, &m.UserID, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		m.Kind = entity.MovementKind(kind)
		out = append(out, &m)
	}
	return out, total, mapError("list movements", rows.Err())
}

// CountByProduct cantidad de movimientos de un producto.
func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	n, err := count(ctx, r.q, "movements", sq.Eq{"product_id": productID})
	return n, mapError("count movements by product", err)
}

// DeleteBefore purga movimientos anteriores a before.
func (r *MovementRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM movements WHERE created_at < $1`, before)
	if err != nil {
		return 0, mapError("purge movements", err)
	}
	return tag.RowsAffected(), nil
}

// SequenceRepo numeración de documentos por (prefijo, año).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador de secuencias.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa atómicamente la secuencia; la fila queda bloqueada hasta el fin de la tx.
func (r *SequenceRepo) Next(ctx context.Context, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (prefix, year, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET current_val = document_sequences.current_val + 1
		RETURNING current_val`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix, year).Scan(&n); err != nil {
		return 0, mapError("next document sequence", err)
	}
	return n, nil
}
