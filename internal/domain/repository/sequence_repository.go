package repository

import "context"

// SequenceRepository numeración de documentos por prefijo y año (EMP-2025-00001).
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente número para (prefix, year).
	Next(ctx context.Context, prefix string, year int) (int64, error)
}
