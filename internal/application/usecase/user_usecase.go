package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// UserUseCase alta y consulta de usuarios; solo administradores crean cuentas.
type UserUseCase struct {
	repo  repository.UserRepository
	audit audit.Logger
	now   func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, auditLog audit.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, audit: auditLog, now: time.Now}
}

// Create hashea la contraseña con bcrypt y persiste el usuario.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores crean usuarios")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("ya existe un usuario con el email " + in.Email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = in.Email
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Event(actor.ID, entity.AuditCreate, "users", user.ID, map[string]any{"email": user.Email, "role": user.Role}))
	return ToUserResponse(user), nil
}

// EnsureAdmin crea el administrador inicial si el email aún no existe. Devuelve true si lo creó.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	existing, err := uc.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	system := entity.Actor{ID: "", Role: entity.RoleAdmin}
	_, err = uc.Create(ctx, system, dto.CreateUserRequest{Email: email, Password: password, Name: "Administrador", Role: entity.RoleAdmin})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("usuario", id)
	}
	return ToUserResponse(user), nil
}

// List lista usuarios (solo admin).
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor, page repository.Page) (*dto.UserListResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("solo administradores listan usuarios")
	}
	page = dto.NormalizePage(page)
	list, total, err := uc.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// ToUserResponse convierte un usuario a su DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
