package dto

import (
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// Límites de paginación.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizePage aplica valores por defecto y topes a la paginación.
func NormalizePage(p repository.Page) repository.Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// PurgeResponse resultado de una purga por retención.
type PurgeResponse struct {
	Before  time.Time `json:"before"`
	Deleted int64     `json:"deleted"`
}
