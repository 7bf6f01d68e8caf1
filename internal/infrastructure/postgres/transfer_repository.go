package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo transferencias e ítems sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, code, source_id, destination_id, requested_by, approved_by, status, note, cancel_reason,
	requested_at, approved_at, dispatched_at, completed_at, created_at, updated_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var status string
	err := row.Scan(&t.ID, &t.Code, &t.SourceID, &t.DestinationID, &t.RequestedBy, &t.ApprovedBy, &status,
		&t.Note, &t.CancelReason, &t.RequestedAt, &t.ApprovedAt, &t.DispatchedAt, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	return &t, nil
}

// Create inserta la cabecera y los ítems de la transferencia.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, code, source_id, destination_id, requested_by, approved_by, status, note,
			cancel_reason, requested_at, approved_at, dispatched_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Code, t.SourceID, t.DestinationID, t.RequestedBy, t.ApprovedBy, string(t.Status), t.Note,
		t.CancelReason, t.RequestedAt, t.ApprovedAt, t.DispatchedAt, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("insert transfer", err)
	}
	for _, it := range t.Items {
		query := `
			INSERT INTO transfer_items (id, transfer_id, product_id, quantity_requested, quantity_sent, quantity_received)
			VALUES ($1, $2, $3, $4, $5, $6)`
		_, err := r.q.Exec(ctx, query, it.ID, t.ID, it.ProductID, it.QuantityRequested, it.QuantitySent, it.QuantityReceived)
		if err != nil {
			return mapError("insert transfer item", err)
		}
	}
	return nil
}

func (r *TransferRepo) getOne(ctx context.Context, op, suffix, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	if err := r.loadItems(ctx, []*entity.Transfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID obtiene una transferencia con sus ítems.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, "get transfer", "", id)
}

// GetForUpdate obtiene la transferencia y bloquea la cabecera.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, "get transfer for update", " FOR UPDATE", id)
}

func (r *TransferRepo) loadItems(ctx context.Context, transfers []*entity.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transfer, len(transfers))
	ids := make([]string, 0, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	query := `
		SELECT id, transfer_id, product_id, quantity_requested, quantity_sent, quantity_received
		FROM transfer_items WHERE transfer_id = ANY($1::uuid[]) ORDER BY product_id, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return mapError("list transfer items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.QuantityRequested, &it.QuantitySent, &it.QuantityReceived); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		if t := byID[it.TransferID]; t != nil {
			t.Items = append(t.Items, it)
		}
	}
	return mapError("list transfer items", rows.Err())
}

// Update persiste estado, responsables, fechas y cantidades de los ítems.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET status = $2, approved_by = $3, note = $4, cancel_reason = $5,
			approved_at = $6, dispatched_at = $7, completed_at = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, t.ID, string(t.Status), t.ApprovedBy, t.Note, t.CancelReason,
		t.ApprovedAt, t.DispatchedAt, t.CompletedAt, t.UpdatedAt)
	if err != nil {
		return mapError("update transfer", err)
	}
	for _, it := range t.Items {
		_, err := r.q.Exec(ctx, `UPDATE transfer_items SET quantity_sent = $2, quantity_received = $3 WHERE id = $1`,
			it.ID, it.QuantitySent, it.QuantityReceived)
		if err != nil {
			return mapError("update transfer item", err)
		}
	}
	return nil
}

// List lista transferencias, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": string(f.Status)})
	}
	if f.LocationID != "" {
		where = append(where, sq.Or{sq.Eq{"source_id": f.LocationID}, sq.Eq{"destination_id": f.LocationID}})
	}
	if f.Search != "" {
		where = append(where, sq.ILike{"code": "%" + f.Search + "%"})
	}
	total, err := count(ctx, r.q, "transfers", where)
	if err != nil {
		return nil, 0, mapError("count transfers", err)
	}
	query, args, err := psql.Select(transferColumns).From("transfers").Where(where).
		OrderBy("requested_at DESC", "code DESC").Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build transfer query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list transfers", err)
	}
	var out []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list transfers", err)
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
