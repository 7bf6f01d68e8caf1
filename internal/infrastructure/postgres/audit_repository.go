package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// Algoritmos de compresión de details.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// defaultCompressThreshold details más grandes que esto se guardan comprimidos.
const defaultCompressThreshold = 4 * 1024

// AuditRepo log de auditoría; los details grandes se comprimen con zstd.
type AuditRepo struct {
	q         Querier
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

// NewAuditRepository construye el adaptador con encoder/decoder zstd reutilizables.
func NewAuditRepository(q Querier) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditRepo{q: q, encoder: encoder, decoder: decoder, threshold: defaultCompressThreshold}, nil
}

// WithThreshold cambia el tamaño a partir del cual se comprime (tests).
func (r *AuditRepo) WithThreshold(n int) *AuditRepo {
	r.threshold = n
	return r
}

// Create persiste una entrada.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	details := []byte(e.Details)
	algo := compressionNone
	if len(details) > r.threshold {
		details = r.encoder.EncodeAll(details, nil)
		algo = compressionZstd
	}
	query := `
		INSERT INTO audit_log (id, user_id, action, table_name, entity_id, details, compression_algo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, e.ID, e.UserID, e.Action, e.Table, e.EntityID, details, algo, e.CreatedAt)
	return mapError("insert audit entry", err)
}

type auditRow struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	Action          string    `db:"action"`
	TableName       string    `db:"table_name"`
	EntityID        string    `db:"entity_id"`
	Details         []byte    `db:"details"`
	CompressionAlgo string    `db:"compression_algo"`
	CreatedAt       time.Time `db:"created_at"`
}

// List lista entradas, más recientes primero.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, int, error) {
	where := sq.And{}
	if f.UserID != "" {
		where = append(where, sq.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		where = append(where, sq.Eq{"action": f.Action})
	}
	if f.Table != "" {
		where = append(where, sq.Eq{"table_name": f.Table})
	}
	if f.EntityID != "" {
		where = append(where, sq.Eq{"entity_id": f.EntityID})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"created_at": *f.To})
	}
	total, err := count(ctx, r.q, "audit_log", where)
	if err != nil {
		return nil, 0, mapError("count audit entries", err)
	}
	query, args, err := psql.Select("id", "user_id", "action", "table_name", "entity_id", "details", "compression_algo", "created_at").
		From("audit_log").Where(where).OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build audit query: %w", err)
	}
	var rows []auditRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, 0, mapError("list audit entries", err)
	}
	out := make([]*entity.AuditEntry, 0, len(rows))
	for _, row := range rows {
		details := row.Details
		if row.CompressionAlgo == compressionZstd {
			if details, err = r.decoder.DecodeAll(row.Details, nil); err != nil {
				return nil, 0, fmt.Errorf("decompress audit %s: %w", row.ID, err)
			}
		}
		out = append(out, &entity.AuditEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    row.Action,
			Table:     row.TableName,
			EntityID:  row.EntityID,
			Details:   details,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, total, nil
}

// DeleteBefore purga entradas anteriores a before.
func (r *AuditRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM audit_log WHERE created_at < $1`, before)
	if err != nil {
		return 0, mapError("purge audit log", err)
	}
	return tag.RowsAffected(), nil
}
