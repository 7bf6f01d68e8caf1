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

var (
	_ repository.CollaboratorRepository = (*CollaboratorRepo)(nil)
	_ repository.SupplierRepository     = (*SupplierRepo)(nil)
)

// CollaboratorRepo implementación de CollaboratorRepository (usable con pool o tx).
type CollaboratorRepo struct {
	q Querier
}

// NewCollaboratorRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCollaboratorRepository(q Querier) *CollaboratorRepo {
	return &CollaboratorRepo{q: q}
}

const collaboratorColumns = `id, name, registration, sector, position, email, phone, active, created_at, updated_at`

func scanCollaborator(row pgx.Row) (*entity.Collaborator, error) {
	var c entity.Collaborator
	err := row.Scan(&c.ID, &c.Name, &c.Registration, &c.Sector, &c.Position, &c.Email, &c.Phone,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo colaborador; matrícula repetida => ErrDuplicate.
func (r *CollaboratorRepo) Create(ctx context.Context, c *entity.Collaborator) error {
	query := `
		INSERT INTO collaborators (id, name, registration, sector, position, email, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Registration, c.Sector, c.Position, c.Email, c.Phone, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return mapError("insert collaborator", err)
}

func (r *CollaboratorRepo) getOne(ctx context.Context, op, where, arg string) (*entity.Collaborator, error) {
	c, err := scanCollaborator(r.q.QueryRow(ctx, `SELECT `+collaboratorColumns+` FROM collaborators WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return c, nil
}

// GetByID obtiene un colaborador por ID.
func (r *CollaboratorRepo) GetByID(ctx context.Context, id string) (*entity.Collaborator, error) {
	return r.getOne(ctx, "get collaborator", "id = $1", id)
}

// GetByRegistration obtiene un colaborador por matrícula.
func (r *CollaboratorRepo) GetByRegistration(ctx context.Context, registration string) (*entity.Collaborator, error) {
	return r.getOne(ctx, "get collaborator by registration", "lower(registration) = lower($1)", registration)
}

// Update actualiza datos y estado del colaborador.
func (r *CollaboratorRepo) Update(ctx context.Context, c *entity.Collaborator) error {
	query := `
		UPDATE collaborators SET name = $2, sector = $3, position = $4, email = $5, phone = $6, active = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Sector, c.Position, c.Email, c.Phone, c.Active, c.UpdatedAt)
	return mapError("update collaborator", err)
}

// List lista colaboradores por nombre.
func (r *CollaboratorRepo) List(ctx context.Context, f repository.CollaboratorFilter) ([]*entity.Collaborator, int, error) {
	where := sq.And{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, sq.Or{sq.ILike{"name": like}, sq.ILike{"registration": like}})
	}
	if f.Sector != "" {
		where = append(where, sq.Expr("lower(sector) = lower(?)", f.Sector))
	}
	if f.ActiveOnly {
		where = append(where, sq.Eq{"active": true})
	}
	total, err := count(ctx, r.q, "collaborators", where)
	if err != nil {
		return nil, 0, mapError("count collaborators", err)
	}
	query, args, err := psql.Select(collaboratorColumns).From("collaborators").Where(where).
		OrderBy("name").Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build collaborator query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list collaborators", err)
	}
	defer rows.Close()
	var out []*entity.Collaborator
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan collaborator: %w", err)
		}
		out = append(out, c)
	}
	return out, total, mapError("list collaborators", rows.Err())
}

// SupplierRepo implementación de SupplierRepository (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, COALESCE(document, ''), email, phone, contact, active, created_at, updated_at`

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Document, &s.Email, &s.Phone, &s.Contact, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un proveedor; documento repetido => ErrDuplicate.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, document, email, phone, contact, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Name, nullable(s.Document), s.Email, s.Phone, s.Contact, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	return mapError("insert supplier", err)
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get supplier", err)
	}
	return s, nil
}

// Update actualiza datos del proveedor.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers SET name = $2, document = $3, email = $4, phone = $5, contact = $6, active = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, nullable(s.Document), s.Email, s.Phone, s.Contact, s.Active, s.UpdatedAt)
	return mapError("update supplier", err)
}

// List lista proveedores por nombre con búsqueda en nombre o documento.
func (r *SupplierRepo) List(ctx context.Context, search string, page repository.Page) ([]*entity.Supplier, int, error) {
	where := sq.And{}
	if search != "" {
		like := "%" + search + "%"
		where = append(where, sq.Or{sq.ILike{"name": like}, sq.ILike{"document": like}})
	}
	total, err := count(ctx, r.q, "suppliers", where)
	if err != nil {
		return nil, 0, mapError("count suppliers", err)
	}
	query, args, err := psql.Select(supplierColumns).From("suppliers").Where(where).
		OrderBy("name").Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build supplier query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list suppliers", err)
	}
	defer rows.Close()
	var out []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, s)
	}
	return out, total, mapError("list suppliers", rows.Err())
}
