package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/application/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type idemEntry struct {
	resp    ports.StoredResponse
	expires time.Time
}

// IdempotencyStore claves de idempotencia en memoria (una sola instancia del servicio).
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]idemEntry
	now     func() time.Time
}

// NewIdempotencyStore crea el almacén con el TTL indicado.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{ttl: ttl, entries: map[string]idemEntry{}, now: time.Now}
}

func (s *IdempotencyStore) live(key string) (idemEntry, bool) {
	e, ok := s.entries[key]
	if ok && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return idemEntry{}, false
	}
	return e, ok
}

func (s *IdempotencyStore) Claim(_ context.Context, key, requestHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.entries[key] = idemEntry{
		resp:    ports.StoredResponse{Pending: true, RequestHash: requestHash},
		expires: s.now().Add(s.ttl),
	}
	return true, nil
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	resp := e.resp
	resp.Body = append([]byte(nil), e.resp.Body...)
	return &resp, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key string, resp ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp.Pending = false
	if cur, ok := s.live(key); ok && resp.RequestHash == "" {
		resp.RequestHash = cur.resp.RequestHash
	}
	resp.Body = append([]byte(nil), resp.Body...)
	s.entries[key] = idemEntry{resp: resp, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
