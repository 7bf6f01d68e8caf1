package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.LoanRepository     = LoanRepo{}
	_ repository.TransferRepository = TransferRepo{}
)

// LoanRepo préstamos con sus ítems.
type LoanRepo struct{ h handle }

func (r LoanRepo) Create(_ context.Context, l *entity.Loan) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.loans {
			if other.Code == l.Code {
				return duplicate("código de préstamo", l.Code)
			}
		}
		st.loans[l.ID] = copyLoan(*l)
		return nil
	})
}

func (r LoanRepo) GetByID(_ context.Context, id string) (*entity.Loan, error) {
	var out *entity.Loan
	r.h.read(func(st *state) {
		if l, ok := st.loans[id]; ok {
			c := copyLoan(l)
			out = &c
		}
	})
	return out, nil
}

func (r LoanRepo) GetForUpdate(ctx context.Context, id string) (*entity.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r LoanRepo) Update(_ context.Context, l *entity.Loan) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.loans[l.ID]; ok {
			st.loans[l.ID] = copyLoan(*l)
		}
		return nil
	})
}

func (r LoanRepo) List(_ context.Context, f repository.LoanFilter) ([]*entity.Loan, int, error) {
	var all []*entity.Loan
	r.h.read(func(st *state) {
		for _, l := range st.loans {
			if f.Status != "" && l.Status != f.Status {
				continue
			}
			if f.CollaboratorID != "" && l.CollaboratorID != f.CollaboratorID {
				continue
			}
			if f.Search != "" && !contains(l.Code, f.Search) && !contains(st.collaborators[l.CollaboratorID].Name, f.Search) {
				continue
			}
			if !inRange(l.IssuedAt, f.From, f.To) {
				continue
			}
			c := copyLoan(l)
			all = append(all, &c)
		}
	})
	sortedBy(all, func(a, b *entity.Loan) bool {
		if a.IssuedAt.Equal(b.IssuedAt) {
			return a.Code > b.Code
		}
		return a.IssuedAt.After(b.IssuedAt)
	})
	return paginate(all, f.Page), len(all), nil
}

func (r LoanRepo) MarkOverdue(_ context.Context, ids []string, now time.Time) (int64, error) {
	var n int64
	err := r.h.write(func(st *state) error {
		mark := func(id string) {
			l, ok := st.loans[id]
			if !ok || (l.Status != entity.LoanOpen && l.Status != entity.LoanPartiallyReturned) {
				return
			}
			if !l.DueDate.Before(now) {
				return
			}
			l.Status = entity.LoanOverdue
			l.UpdatedAt = now
			st.loans[id] = l
			n++
		}
		if ids == nil {
			for id := range st.loans {
				mark(id)
			}
			return nil
		}
		for _, id := range ids {
			mark(id)
		}
		return nil
	})
	return n, err
}

// TransferRepo transferencias con sus ítems.
type TransferRepo struct{ h handle }

func (r TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.transfers {
			if other.Code == t.Code {
				return duplicate("código de transferencia", t.Code)
			}
		}
		st.transfers[t.ID] = copyTransfer(*t)
		return nil
	})
}

func (r TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	r.h.read(func(st *state) {
		if t, ok := st.transfers[id]; ok {
			c := copyTransfer(t)
			out = &c
		}
	})
	return out, nil
}

func (r TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r TransferRepo) Update(_ context.Context, t *entity.Transfer) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			st.transfers[t.ID] = copyTransfer(*t)
		}
		return nil
	})
}

func (r TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, int, error) {
	var all []*entity.Transfer
	r.h.read(func(st *state) {
		for _, t := range st.transfers {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.LocationID != "" && t.SourceID != f.LocationID && t.DestinationID != f.LocationID {
				continue
			}
			if f.Search != "" && !contains(t.Code, f.Search) {
				continue
			}
			c := copyTransfer(t)
			all = append(all, &c)
		}
	})
	sortedBy(all, func(a, b *entity.Transfer) bool {
		if a.RequestedAt.Equal(b.RequestedAt) {
			return a.Code > b.Code
		}
		return a.RequestedAt.After(b.RequestedAt)
	})
	return paginate(all, f.Page), len(all), nil
}
