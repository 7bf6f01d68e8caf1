package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Las columnas se mapean por nombre (snake_case) con scany.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, email, password_hash, name, role, active, failed_attempts, locked_until, last_login_at, created_at, updated_at`

// Create persiste un nuevo usuario; email repetido => ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, active, failed_attempts, locked_until, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.Active,
		user.FailedAttempts, user.LockedUntil, user.LastLoginAt, user.CreatedAt, user.UpdatedAt,
	)
	return mapError("insert user", err)
}

func (r *UserRepo) getOne(ctx context.Context, op, where, arg string) (*entity.User, error) {
	var u entity.User
	if err := pgxscan.Get(ctx, r.q, &u, `SELECT `+userColumns+` FROM users WHERE `+where, arg); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return &u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "get user by id", "id = $1", id)
}

// FindByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", "lower(email) = lower($1)", email)
}

// Update actualiza datos, rol, estado y contadores de bloqueo.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, password_hash = $3, name = $4, role = $5, active = $6,
			failed_attempts = $7, locked_until = $8, last_login_at = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.Active,
		user.FailedAttempts, user.LockedUntil, user.LastLoginAt, user.UpdatedAt,
	)
	return mapError("update user", err)
}

// List lista usuarios por fecha de alta con paginación.
func (r *UserRepo) List(ctx context.Context, page repository.Page) ([]*entity.User, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, mapError("count users", err)
	}
	var list []*entity.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := pgxscan.Select(ctx, r.q, &list, query, page.Limit, page.Offset); err != nil {
		return nil, 0, mapError("list users", err)
	}
	return list, total, nil
}
