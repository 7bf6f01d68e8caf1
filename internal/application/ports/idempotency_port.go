package ports

import "context"

// StoredResponse estado de una Idempotency-Key: pendiente mientras la petición original corre,
// luego la respuesta final. RequestHash identifica el cuerpo con que se reclamó la clave.
type StoredResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore define el puerto de salida para claves de idempotencia.
// Cualquier adaptador (Redis, memoria) debe implementar esta interfaz.
// La primera petición reclama la clave; las repeticiones reciben la respuesta guardada.
type IdempotencyStore interface {
	// Claim reserva la clave asociada al hash del cuerpo; false si ya existe (en curso o completada).
	Claim(ctx context.Context, key, requestHash string) (bool, error)
	// Get devuelve el estado de la clave (Pending si sigue en curso); nil si no existe.
	Get(ctx context.Context, key string) (*StoredResponse, error)
	// Complete guarda la respuesta final de la clave reclamada.
	Complete(ctx context.Context, key string, resp StoredResponse) error
	// Release libera la clave para permitir reintentos (errores de servidor).
	Release(ctx context.Context, key string) error
}
