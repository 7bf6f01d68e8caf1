package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleUser   = "usuario"
	RoleViewer = "visualizador"
)

// ValidRole indica si el rol es uno de los conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser || role == RoleViewer
}

// User representa un usuario del sistema.
type User struct {
	ID             string
	Email          string
	PasswordHash   string // bcrypt hash
	Name           string
	Role           string // admin, usuario, visualizador
	Active         bool
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked indica si el usuario sigue bloqueado en el instante now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Actor quién ejecuta una operación; se pasa explícito a los casos de uso.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin indica si el actor tiene el rol elevado.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanWrite indica si el actor puede mutar stock, préstamos o transferencias.
func (a Actor) CanWrite() bool { return a.Role == RoleAdmin || a.Role == RoleUser }
