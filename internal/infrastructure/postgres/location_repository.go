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

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, code, name, address, responsible, active, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.Code, &l.Name, &l.Address, &l.Responsible, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una nueva ubicación.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (id, code, name, address, responsible, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, l.ID, l.Code, l.Name, l.Address, l.Responsible, l.Active, l.CreatedAt, l.UpdatedAt)
	return mapError("insert location", err)
}

func (r *LocationRepo) getOne(ctx context.Context, op, where, arg string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return l, nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, "get location", "id = $1", id)
}

// GetByCode obtiene una ubicación por código.
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	return r.getOne(ctx, "get location by code", "lower(code) = lower($1)", code)
}

// Update actualiza nombre, dirección, responsable y estado.
func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) error {
	query := `
		UPDATE locations SET name = $2, address = $3, responsible = $4, active = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, l.ID, l.Name, l.Address, l.Responsible, l.Active, l.UpdatedAt)
	return mapError("update location", err)
}

// List lista ubicaciones por código.
func (r *LocationRepo) List(ctx context.Context, activeOnly bool, page repository.Page) ([]*entity.Location, int, error) {
	where := sq.And{}
	if activeOnly {
		where = append(where, sq.Eq{"active": true})
	}
	total, err := count(ctx, r.q, "locations", where)
	if err != nil {
		return nil, 0, mapError("count locations", err)
	}
	query, args, err := psql.Select(locationColumns).From("locations").Where(where).
		OrderBy("code").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build location query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list locations", err)
	}
	defer rows.Close()
	var out []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, total, mapError("list locations", rows.Err())
}

// IsReferenced indica si la ubicación tiene stock, movimientos, préstamos o transferencias.
func (r *LocationRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock WHERE location_id = $1)
		    OR EXISTS (SELECT 1 FROM movements WHERE location_id = $1)
		    OR EXISTS (SELECT 1 FROM loan_items WHERE location_id = $1)
		    OR EXISTS (SELECT 1 FROM transfers WHERE source_id = $1 OR destination_id = $1)`
	var found bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&found); err != nil {
		return false, mapError("location references", err)
	}
	return found, nil
}

// Delete elimina una ubicación sin referencias.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	return mapError("delete location", err)
}
