package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// pageFrom lee limit/offset; el caso de uso aplica defaults y topes.
func pageFrom(c *fiber.Ctx) repository.Page {
	return repository.Page{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
}

// queryTime lee un parámetro de fecha (YYYY-MM-DD o RFC3339). endOfDay extiende una fecha
// simple hasta el último instante del día para rangos inclusivos.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.Validation("%s inválido (YYYY-MM-DD o RFC3339): %s", key, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// queryRange lee from/to.
func queryRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = queryTime(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(c, "to", true); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.Validation("to no puede ser anterior a from")
	}
	return from, to, nil
}
