package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/Almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/application/loan"
	"github.com/jhoicas/Almoxarifado-api/internal/application/ports"
	"github.com/jhoicas/Almoxarifado-api/internal/application/transfer"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Almoxarifado-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/Almoxarifado-api/pkg/config"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
	"github.com/jhoicas/Almoxarifado-api/pkg/retry"
)

// storage adaptadores de persistencia elegidos por APP_STORE.
type storage struct {
	tx      inventory.TxRunner
	reads   inventory.Repos
	groups  repository.ProductGroupRepository
	users   repository.UserRepository
	audit   repository.AuditRepository
	reports repository.ReportRepository
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	idem, closeIdem := openIdempotency(ctx, cfg, log)
	defer closeIdem()

	auditLog := audit.NewWriter(store.audit, log)
	engine := inventory.NewEngine()
	txRunner := inventory.NewRetryingRunner(store.tx, retry.Policy{
		Attempts:  cfg.Engine.RetryAttempts,
		BaseDelay: cfg.Engine.RetryBaseDelay,
		MaxDelay:  time.Second,
	}, log)

	userUC := usecase.NewUserUseCase(store.users, auditLog)
	if cfg.Bootstrap.AdminEmail != "" && cfg.Bootstrap.AdminPassword != "" {
		created, err := userUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("administrador inicial creado")
		}
	}

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, auth.LockoutPolicy{
		MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		Duration:          time.Duration(cfg.Auth.LockoutMinutes) * time.Minute,
	}, auditLog, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Almoxarifado API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		ProductUC:      usecase.NewProductUseCase(store.reads.Products, store.groups, store.reads.Suppliers, store.reads.Movements, auditLog),
		LocationUC:     usecase.NewLocationUseCase(store.reads.Locations, auditLog),
		CollaboratorUC: usecase.NewCollaboratorUseCase(store.reads.Collaborators, auditLog),
		SupplierUC:     usecase.NewSupplierUseCase(store.reads.Suppliers, auditLog),
		InventoryUC:    inventory.NewInventoryUseCase(txRunner, store.reads, engine, auditLog, log, cfg.Retention.LedgerMonths),
		LoanUC:         loan.NewUseCase(txRunner, store.reads, engine, auditLog, log),
		TransferUC:     transfer.NewUseCase(txRunner, store.reads, engine, auditLog, log),
		ReportUC:       appanalytics.NewReportUseCase(store.reports),
		AuditUC:        audit.NewUseCase(store.audit, auditLog, cfg.Retention.AuditMonths),
		Idempotency:    idem,
		JWTSecret:      cfg.JWT.Secret,
		LoginPerMinute: cfg.HTTP.LoginPerMin,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	auditLog.Wait()

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Store == "memory" {
		mem := memory.New()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &storage{
			tx:      mem,
			reads:   mem.Repos(),
			groups:  mem.Groups(),
			users:   mem.Users(),
			audit:   mem.Audit(),
			reports: mem.Reports(),
			close:   func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	auditRepo, err := postgres.NewAuditRepository(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		tx: postgres.NewTxRunner(pool, postgres.TxOptions{
			LockTimeout:      cfg.Engine.LockTimeout,
			StatementTimeout: cfg.Engine.StatementTimeout,
		}),
		reads:   postgres.ReposFor(pool),
		groups:  postgres.NewGroupRepository(pool),
		users:   postgres.NewUserRepository(pool),
		audit:   auditRepo,
		reports: postgres.NewReportRepository(pool),
		close:   pool.Close,
	}, nil
}

// openIdempotency usa Redis si está configurado y responde; si no, un almacén local.
func openIdempotency(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.IdempotencyStore, func()) {
	if cfg.Redis.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		client, err := infraredis.Connect(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia en Redis")
			return infraredis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL), func() { _ = client.Close() }
		}
		log.Warn().Err(err).Msg("Redis no disponible, idempotencia en memoria local")
	}
	return memory.NewIdempotencyStore(cfg.Redis.IdempotencyTTL), func() {}
}
