package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.StockRepository    = StockRepo{}
	_ repository.MovementRepository = MovementRepo{}
	_ repository.SequenceRepository = SequenceRepo{}
	_ repository.AuditRepository    = AuditRepo{}
)

// StockRepo saldos por producto y ubicación.
type StockRepo struct{ h handle }

func (r StockRepo) Get(_ context.Context, productID, locationID string) (*entity.Stock, error) {
	out := &entity.Stock{ProductID: productID, LocationID: locationID}
	r.h.read(func(st *state) {
		if s, ok := st.stock[stockKey{productID, locationID}]; ok {
			*out = s
		}
	})
	return out, nil
}

func (r StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, locationID)
}

func (r StockRepo) Upsert(_ context.Context, s *entity.Stock) error {
	return r.h.write(func(st *state) error {
		st.stock[stockKey{s.ProductID, s.LocationID}] = *s
		return nil
	})
}

func (r StockRepo) ListByLocation(_ context.Context, locationID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	r.h.read(func(st *state) {
		for k, s := range st.stock {
			if k.locationID == locationID {
				out = append(out, &s)
			}
		}
	})
	return sortedBy(out, func(a, b *entity.Stock) bool { return a.ProductID < b.ProductID }), nil
}

func (r StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	r.h.read(func(st *state) {
		for k, s := range st.stock {
			if k.productID == productID {
				out = append(out, &s)
			}
		}
	})
	return sortedBy(out, func(a, b *entity.Stock) bool { return a.LocationID < b.LocationID }), nil
}

func (r StockRepo) SumByProduct(_ context.Context, productID string) (int, error) {
	total := 0
	r.h.read(func(st *state) {
		for k, s := range st.stock {
			if k.productID == productID {
				total += s.Quantity
			}
		}
	})
	return total, nil
}

// MovementRepo libro de movimientos append-only.
type MovementRepo struct{ h handle }

func (r MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.h.write(func(st *state) error {
		st.movementSeq++
		m.Seq = st.movementSeq
		st.movements = append(st.movements, *m)
		return nil
	})
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func (r MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	var all []*entity.Movement
	r.h.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.LocationID != "" && m.LocationID != f.LocationID {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.DocumentID != "" && m.DocumentID != f.DocumentID {
				continue
			}
			if !inRange(m.CreatedAt, f.From, f.To) {
				continue
			}
			all = append(all, &m)
		}
	})
	return paginate(all, f.Page), len(all), nil
}

func (r MovementRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	r.h.read(func(st *state) {
		for _, m := range st.movements {
			if m.ProductID == productID {
				n++
			}
		}
	})
	return n, nil
}

func (r MovementRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.h.write(func(st *state) error {
		kept := st.movements[:0]
		for _, m := range st.movements {
			if m.CreatedAt.Before(before) {
				deleted++
				continue
			}
			kept = append(kept, m)
		}
		st.movements = kept
		return nil
	})
	return deleted, err
}

// SequenceRepo numeradores por prefijo y año.
type SequenceRepo struct{ h handle }

func (r SequenceRepo) Next(_ context.Context, prefix string, year int) (int64, error) {
	var n int64
	err := r.h.write(func(st *state) error {
		k := seqKey{prefix, year}
		st.sequences[k]++
		n = st.sequences[k]
		return nil
	})
	return n, err
}

// AuditRepo log de auditoría.
type AuditRepo struct{ h handle }

func (r AuditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	return r.h.write(func(st *state) error {
		st.audit = append(st.audit, *e)
		return nil
	})
}

func (r AuditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, int, error) {
	var all []*entity.AuditEntry
	r.h.read(func(st *state) {
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			if f.UserID != "" && e.UserID != f.UserID {
				continue
			}
			if f.Action != "" && e.Action != f.Action {
				continue
			}
			if f.Table != "" && e.Table != f.Table {
				continue
			}
			if f.EntityID != "" && e.EntityID != f.EntityID {
				continue
			}
			if !inRange(e.CreatedAt, f.From, f.To) {
				continue
			}
			all = append(all, &e)
		}
	})
	return paginate(all, f.Page), len(all), nil
}

func (r AuditRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.h.write(func(st *state) error {
		kept := st.audit[:0]
		for _, e := range st.audit {
			if e.CreatedAt.Before(before) {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		st.audit = kept
		return nil
	})
	return deleted, err
}
