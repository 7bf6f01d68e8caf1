package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/pkg/jwt"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// LockoutPolicy bloqueo temporal tras intentos fallidos consecutivos.
type LockoutPolicy struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

// AuthUseCase login con bloqueo por intentos fallidos.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	lockout  LockoutPolicy
	audit    audit.Logger
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, lockout LockoutPolicy, auditLog audit.Logger, log *logger.Logger) *AuthUseCase {
	if lockout.MaxFailedAttempts <= 0 {
		lockout.MaxFailedAttempts = 5
	}
	if lockout.Duration <= 0 {
		lockout.Duration = 30 * time.Minute
	}
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, lockout: lockout, audit: auditLog, log: log.Component("auth"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	cp := *uc
	cp.now = now
	return &cp
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email inexistente y password incorrecta responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.Validation("email y password son requeridos")
	}
	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &domain.Error{Kind: domain.ErrUnauthorized, Message: "credenciales inválidas"}
	}
	now := uc.now()
	if user.IsLocked(now) {
		return nil, &domain.Error{
			Kind:    domain.ErrAccountLocked,
			Message: "cuenta bloqueada por intentos fallidos",
			Details: map[string]any{"locked_until": user.LockedUntil},
		}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, uc.registerFailure(ctx, user, now)
	}
	if !user.Active {
		return nil, domain.Forbidden("usuario inactivo")
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login")
	uc.audit.Log(ctx, audit.Event(user.ID, entity.AuditLogin, "users", user.ID, nil))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		User:      *usecase.ToUserResponse(user),
	}, nil
}

func (uc *AuthUseCase) registerFailure(ctx context.Context, user *entity.User, now time.Time) error {
	user.FailedAttempts++
	if user.FailedAttempts >= uc.lockout.MaxFailedAttempts {
		until := now.Add(uc.lockout.Duration)
		user.LockedUntil = &until
		user.FailedAttempts = 0
		uc.log.Warn().Str("user_id", user.ID).Time("locked_until", until).Msg("cuenta bloqueada por intentos fallidos")
	}
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return &domain.Error{Kind: domain.ErrUnauthorized, Message: "credenciales inválidas"}
}
