package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository      = ProductRepo{}
	_ repository.ProductGroupRepository = GroupRepo{}
	_ repository.LocationRepository     = LocationRepo{}
	_ repository.CollaboratorRepository = CollaboratorRepo{}
	_ repository.SupplierRepository     = SupplierRepo{}
	_ repository.UserRepository         = UserRepo{}
)

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ProductRepo productos en memoria.
type ProductRepo struct{ h handle }

func (r ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.products {
			if strings.EqualFold(other.Code, p.Code) {
				return duplicate("código de producto", p.Code)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.h.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	r.h.read(func(st *state) {
		for _, p := range st.products {
			if strings.EqualFold(p.Code, code) {
				out = &p
				return
			}
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene exclusión total.
func (r ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return nil
		}
		cur.Description = p.Description
		cur.Unit = p.Unit
		cur.GroupID = p.GroupID
		cur.SupplierID = p.SupplierID
		cur.StockMinimum = p.StockMinimum
		cur.StockMaximum = p.StockMaximum
		cur.CostPrice = p.CostPrice
		cur.Active = p.Active
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r ProductRepo) UpdateStock(_ context.Context, p *entity.Product) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return nil
		}
		cur.StockCurrent = p.StockCurrent
		cur.StockRequested = p.StockRequested
		cur.CostPrice = p.CostPrice
		st.products[p.ID] = cur
		return nil
	})
}

func (r ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var all []*entity.Product
	r.h.read(func(st *state) {
		for _, p := range st.products {
			if f.ActiveOnly && !p.Active {
				continue
			}
			if f.GroupID != "" && p.GroupID != f.GroupID {
				continue
			}
			if f.Search != "" && !contains(p.Code, f.Search) && !contains(p.Description, f.Search) {
				continue
			}
			all = append(all, &p)
		}
	})
	sortedBy(all, func(a, b *entity.Product) bool { return a.Code < b.Code })
	return paginate(all, f.Page), len(all), nil
}

func (r ProductRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.products, id)
		return nil
	})
}

// GroupRepo grupos de productos en memoria.
type GroupRepo struct{ h handle }

func (r GroupRepo) Create(_ context.Context, g *entity.ProductGroup) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.groups {
			if strings.EqualFold(other.Name, g.Name) {
				return duplicate("grupo", g.Name)
			}
		}
		st.groups[g.ID] = *g
		return nil
	})
}

func (r GroupRepo) GetByID(_ context.Context, id string) (*entity.ProductGroup, error) {
	var out *entity.ProductGroup
	r.h.read(func(st *state) {
		if g, ok := st.groups[id]; ok {
			out = &g
		}
	})
	return out, nil
}

func (r GroupRepo) List(_ context.Context) ([]*entity.ProductGroup, error) {
	var all []*entity.ProductGroup
	r.h.read(func(st *state) {
		for _, g := range st.groups {
			all = append(all, &g)
		}
	})
	return sortedBy(all, func(a, b *entity.ProductGroup) bool { return a.Name < b.Name }), nil
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ h handle }

func (r LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.locations {
			if strings.EqualFold(other.Code, l.Code) {
				return duplicate("código de ubicación", l.Code)
			}
		}
		st.locations[l.ID] = *l
		return nil
	})
}

func (r LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	r.h.read(func(st *state) {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r LocationRepo) GetByCode(_ context.Context, code string) (*entity.Location, error) {
	var out *entity.Location
	r.h.read(func(st *state) {
		for _, l := range st.locations {
			if strings.EqualFold(l.Code, code) {
				out = &l
				return
			}
		}
	})
	return out, nil
}

func (r LocationRepo) Update(_ context.Context, l *entity.Location) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.locations[l.ID]; ok {
			st.locations[l.ID] = *l
		}
		return nil
	})
}

func (r LocationRepo) List(_ context.Context, activeOnly bool, page repository.Page) ([]*entity.Location, int, error) {
	var all []*entity.Location
	r.h.read(func(st *state) {
		for _, l := range st.locations {
			if activeOnly && !l.Active {
				continue
			}
			all = append(all, &l)
		}
	})
	sortedBy(all, func(a, b *entity.Location) bool { return a.Code < b.Code })
	return paginate(all, page), len(all), nil
}

func (r LocationRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	found := false
	r.h.read(func(st *state) {
		for k := range st.stock {
			if k.locationID == id {
				found = true
				return
			}
		}
		for _, t := range st.transfers {
			if t.SourceID == id || t.DestinationID == id {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r LocationRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.locations, id)
		return nil
	})
}

// CollaboratorRepo colaboradores en memoria.
type CollaboratorRepo struct{ h handle }

func (r CollaboratorRepo) Create(_ context.Context, c *entity.Collaborator) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.collaborators {
			if strings.EqualFold(other.Registration, c.Registration) {
				return duplicate("matrícula", c.Registration)
			}
		}
		st.collaborators[c.ID] = *c
		return nil
	})
}

func (r CollaboratorRepo) GetByID(_ context.Context, id string) (*entity.Collaborator, error) {
	var out *entity.Collaborator
	r.h.read(func(st *state) {
		if c, ok := st.collaborators[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r CollaboratorRepo) GetByRegistration(_ context.Context, registration string) (*entity.Collaborator, error) {
	var out *entity.Collaborator
	r.h.read(func(st *state) {
		for _, c := range st.collaborators {
			if strings.EqualFold(c.Registration, registration) {
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r CollaboratorRepo) Update(_ context.Context, c *entity.Collaborator) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.collaborators[c.ID]; ok {
			st.collaborators[c.ID] = *c
		}
		return nil
	})
}

func (r CollaboratorRepo) List(_ context.Context, f repository.CollaboratorFilter) ([]*entity.Collaborator, int, error) {
	var all []*entity.Collaborator
	r.h.read(func(st *state) {
		for _, c := range st.collaborators {
			if f.ActiveOnly && !c.Active {
				continue
			}
			if f.Sector != "" && !strings.EqualFold(c.Sector, f.Sector) {
				continue
			}
			if f.Search != "" && !contains(c.Name, f.Search) && !contains(c.Registration, f.Search) {
				continue
			}
			all = append(all, &c)
		}
	})
	sortedBy(all, func(a, b *entity.Collaborator) bool { return a.Name < b.Name })
	return paginate(all, f.Page), len(all), nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ h handle }

func (r SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.h.write(func(st *state) error {
		if s.Document != "" {
			for _, other := range st.suppliers {
				if other.Document == s.Document {
					return duplicate("documento de proveedor", s.Document)
				}
			}
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.h.read(func(st *state) {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			st.suppliers[s.ID] = *s
		}
		return nil
	})
}

func (r SupplierRepo) List(_ context.Context, search string, page repository.Page) ([]*entity.Supplier, int, error) {
	var all []*entity.Supplier
	r.h.read(func(st *state) {
		for _, s := range st.suppliers {
			if search != "" && !contains(s.Name, search) && !contains(s.Document, search) {
				continue
			}
			all = append(all, &s)
		}
	})
	sortedBy(all, func(a, b *entity.Supplier) bool { return a.Name < b.Name })
	return paginate(all, page), len(all), nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ h handle }

func (r UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.h.write(func(st *state) error {
		for _, other := range st.users {
			if strings.EqualFold(other.Email, u.Email) {
				return duplicate("email", u.Email)
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.h.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.h.read(func(st *state) {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = &u
				return
			}
		}
	})
	return out, nil
}

func (r UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.users[u.ID]; ok {
			st.users[u.ID] = *u
		}
		return nil
	})
}

func (r UserRepo) List(_ context.Context, page repository.Page) ([]*entity.User, int, error) {
	var all []*entity.User
	r.h.read(func(st *state) {
		for _, u := range st.users {
			all = append(all, &u)
		}
	})
	sortedBy(all, func(a, b *entity.User) bool { return a.Email < b.Email })
	return paginate(all, page), len(all), nil
}
