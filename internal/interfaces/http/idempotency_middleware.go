package http

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/ports"
)

// HeaderIdempotencyKey cabecera que identifica un reintento de la misma operación.
const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency garantiza que una misma Idempotency-Key ejecute la operación una sola vez.
// Sin cabecera la petición pasa sin control. La clave se asocia al usuario, a la ruta y al
// SHA-256 del cuerpo: reutilizarla con otro cuerpo responde 422 sin ejecutar nada.
// Respuestas 5xx liberan la clave para permitir el reintento.
func Idempotency(store ports.IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderIdempotencyKey)
		if raw == "" || store == nil {
			return c.Next()
		}
		if len(raw) > 200 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		ctx := c.UserContext()
		key := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + raw
		sum := sha256.Sum256(c.Body())
		requestHash := hex.EncodeToString(sum[:])

		claimed, err := store.Claim(ctx, key, requestHash)
		if err != nil {
			return respondError(c, err)
		}
		if !claimed {
			stored, err := store.Get(ctx, key)
			if err != nil {
				return respondError(c, err)
			}
			if stored != nil && stored.RequestHash != requestHash {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_KEY_REUSED",
					Message: "la Idempotency-Key ya se usó con otro cuerpo",
				})
			}
			if stored == nil || stored.Pending {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_IN_PROGRESS",
					Message: "ya hay una petición en curso con esta Idempotency-Key",
				})
			}
			c.Set("Idempotent-Replay", "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if err := store.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", raw).Msg("no se pudo liberar la clave de idempotencia")
			}
			return nil
		}
		resp := ports.StoredResponse{
			RequestHash: requestHash,
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(ctx, key, resp); err != nil {
			log.Warn().Err(err).Str("key", raw).Msg("no se pudo guardar la respuesta idempotente")
		}
		return nil
	}
}
