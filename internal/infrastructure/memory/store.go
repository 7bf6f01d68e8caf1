// Package memory implementa todos los puertos de persistencia sobre un estado en memoria
// con transacciones serializadas: snapshot al iniciar, restauración si fn falla.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

type stockKey struct{ productID, locationID string }

type seqKey struct {
	prefix string
	year   int
}

type state struct {
	products      map[string]entity.Product
	groups        map[string]entity.ProductGroup
	locations     map[string]entity.Location
	stock         map[stockKey]entity.Stock
	movements     []entity.Movement
	loans         map[string]entity.Loan
	transfers     map[string]entity.Transfer
	collaborators map[string]entity.Collaborator
	suppliers     map[string]entity.Supplier
	users         map[string]entity.User
	audit         []entity.AuditEntry
	sequences     map[seqKey]int64
	movementSeq   int64
}

func newState() state {
	return state{
		products:      map[string]entity.Product{},
		groups:        map[string]entity.ProductGroup{},
		locations:     map[string]entity.Location{},
		stock:         map[stockKey]entity.Stock{},
		loans:         map[string]entity.Loan{},
		transfers:     map[string]entity.Transfer{},
		collaborators: map[string]entity.Collaborator{},
		suppliers:     map[string]entity.Supplier{},
		users:         map[string]entity.User{},
		sequences:     map[seqKey]int64{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.movements = append([]entity.Movement(nil), s.movements...)
	for k, v := range s.loans {
		c.loans[k] = copyLoan(v)
	}
	for k, v := range s.transfers {
		c.transfers[k] = copyTransfer(v)
	}
	for k, v := range s.collaborators {
		c.collaborators[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.audit = append([]entity.AuditEntry(nil), s.audit...)
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.movementSeq = s.movementSeq
	return c
}

func copyLoan(l entity.Loan) entity.Loan {
	l.Items = append([]entity.LoanItem(nil), l.Items...)
	return l
}

func copyTransfer(t entity.Transfer) entity.Transfer {
	t.Items = append([]entity.TransferItem(nil), t.Items...)
	return t
}

// Store almacén en memoria. Las transacciones se serializan con txMu y trabajan sobre una copia
// del estado que solo se publica al confirmar; mu protege el estado confirmado.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

var _ inventory.TxRunner = (*Store)(nil)

// Run ejecuta fn en exclusión mutua con las demás transacciones. Los lectores externos ven el
// estado confirmado hasta que fn termina sin error; si fn falla o entra en pánico la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	work := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.reposOn(&work)); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// Repos repositorios fuera de transacción (lecturas y escrituras de catálogo).
func (s *Store) Repos() inventory.Repos {
	return s.reposOn(nil)
}

func (s *Store) reposOn(tx *state) inventory.Repos {
	h := handle{s: s, tx: tx}
	return inventory.Repos{
		Products:      ProductRepo{h},
		Stock:         StockRepo{h},
		Movements:     MovementRepo{h},
		Locations:     LocationRepo{h},
		Loans:         LoanRepo{h},
		Transfers:     TransferRepo{h},
		Collaborators: CollaboratorRepo{h},
		Suppliers:     SupplierRepo{h},
		Sequences:     SequenceRepo{h},
	}
}

// Accesores para los casos de uso que no pasan por el motor.
func (s *Store) Products() ProductRepo           { return ProductRepo{handle{s: s}} }
func (s *Store) Groups() GroupRepo               { return GroupRepo{handle{s: s}} }
func (s *Store) Locations() LocationRepo         { return LocationRepo{handle{s: s}} }
func (s *Store) Stock() StockRepo                { return StockRepo{handle{s: s}} }
func (s *Store) Movements() MovementRepo         { return MovementRepo{handle{s: s}} }
func (s *Store) Loans() LoanRepo                 { return LoanRepo{handle{s: s}} }
func (s *Store) Transfers() TransferRepo         { return TransferRepo{handle{s: s}} }
func (s *Store) Collaborators() CollaboratorRepo { return CollaboratorRepo{handle{s: s}} }
func (s *Store) Suppliers() SupplierRepo         { return SupplierRepo{handle{s: s}} }
func (s *Store) Users() UserRepo                 { return UserRepo{handle{s: s}} }
func (s *Store) Audit() AuditRepo                { return AuditRepo{handle{s: s}} }
func (s *Store) Reports() ReportRepo             { return ReportRepo{handle{s: s}} }

// handle da acceso al estado. Con tx opera sobre la copia de la transacción (txMu ya tomado);
// sin tx lee el estado confirmado y escribe tomando txMu como una transacción de una sola sentencia.
type handle struct {
	s  *Store
	tx *state
}

func (h handle) read(fn func(st *state)) {
	if h.tx != nil {
		fn(h.tx)
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	fn(&h.s.st)
}

func (h handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.txMu.Lock()
	defer h.s.txMu.Unlock()
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(&h.s.st)
}

func duplicate(what, value string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrDuplicate, what, value)
}

func paginate[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}

func sortedBy[T any](items []T, less func(a, b T) bool) []T {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}
