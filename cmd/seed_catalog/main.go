// seed_catalog registra productos a partir de un CSV del catálogo (Latin-1, separado por ';').
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual. Los códigos ya existentes se omiten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Almoxarifado-api/pkg/config"
	"github.com/jhoicas/Almoxarifado-api/pkg/logger"
)

func main() {
	path := "catalogo.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	items, rowErrs, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar CSV: %v\n", err)
		os.Exit(1)
	}
	for _, e := range rowErrs {
		fmt.Fprintf(os.Stderr, "omitida %v\n", e)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}
	auditRepo, err := postgres.NewAuditRepository(pool)
	if err != nil {
		log.Fatal().Err(err).Msg("auditoría")
	}

	repos := postgres.ReposFor(pool)
	auditLog := audit.NewWriter(auditRepo, log)
	defer auditLog.Wait()
	uc := usecase.NewProductUseCase(repos.Products, postgres.NewGroupRepository(pool), repos.Suppliers, repos.Movements, auditLog)
	system := entity.Actor{Role: entity.RoleAdmin}

	var created, skipped int
	for _, in := range items {
		_, err := uc.Create(ctx, system, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			log.Error().Err(err).Str("code", in.Code).Msg("registrar producto")
		}
	}
	log.Info().Int("creados", created).Int("existentes", skipped).Int("con_error", len(rowErrs)).Msg("catálogo importado")
}
