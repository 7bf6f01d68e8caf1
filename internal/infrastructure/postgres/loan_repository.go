package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

var _ repository.LoanRepository = (*LoanRepo)(nil)

// LoanRepo préstamos e ítems sobre PostgreSQL (usable con pool o tx).
type LoanRepo struct {
	q Querier
}

// NewLoanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoanRepository(q Querier) *LoanRepo {
	return &LoanRepo{q: q}
}

const loanColumns = `l.id, l.code, l.collaborator_id, l.requested_by, l.authorized_by, l.issued_at, l.due_date,
	l.returned_at, l.status, l.note, l.responsibility_term, l.created_at, l.updated_at`

func scanLoan(row pgx.Row) (*entity.Loan, error) {
	var l entity.Loan
	var status string
	err := row.Scan(&l.ID, &l.Code, &l.CollaboratorID, &l.RequestedBy, &l.AuthorizedBy, &l.IssuedAt, &l.DueDate,
		&l.ReturnedAt, &status, &l.Note, &l.ResponsibilityTerm, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LoanStatus(status)
	return &l, nil
}

// Create inserta la cabecera y los ítems del préstamo.
func (r *LoanRepo) Create(ctx context.Context, l *entity.Loan) error {
	query := `
		INSERT INTO loans (id, code, collaborator_id, requested_by, authorized_by, issued_at, due_date, returned_at,
			status, note, responsibility_term, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Code, l.CollaboratorID, l.RequestedBy, l.AuthorizedBy, l.IssuedAt, l.DueDate, l.ReturnedAt,
		string(l.Status), l.Note, l.ResponsibilityTerm, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return mapError("insert loan", err)
	}
	for _, it := range l.Items {
		query := `
			INSERT INTO loan_items (id, loan_id, product_id, location_id, quantity_issued, quantity_returned,
				condition_out, condition_in, return_note, returned_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := r.q.Exec(ctx, query,
			it.ID, l.ID, it.ProductID, nullable(it.LocationID), it.QuantityIssued, it.QuantityReturned,
			it.ConditionOut, it.ConditionIn, it.ReturnNote, it.ReturnedAt,
		)
		if err != nil {
			return mapError("insert loan item", err)
		}
	}
	return nil
}

func (r *LoanRepo) getOne(ctx context.Context, op, suffix, id string) (*entity.Loan, error) {
	l, err := scanLoan(r.q.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans l WHERE l.id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	if err := r.loadItems(ctx, []*entity.Loan{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// GetByID obtiene un préstamo con sus ítems.
func (r *LoanRepo) GetByID(ctx context.Context, id string) (*entity.Loan, error) {
	return r.getOne(ctx, "get loan", "", id)
}

// GetForUpdate obtiene el préstamo y bloquea la cabecera.
func (r *LoanRepo) GetForUpdate(ctx context.Context, id string) (*entity.Loan, error) {
	return r.getOne(ctx, "get loan for update", " FOR UPDATE", id)
}

// loadItems carga los ítems de todos los préstamos en una sola consulta.
func (r *LoanRepo) loadItems(ctx context.Context, loans []*entity.Loan) error {
	if len(loans) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Loan, len(loans))
	ids := make([]string, 0, len(loans))
	for _, l := range loans {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}
	query := `
		SELECT id, loan_id, product_id, COALESCE(location_id::text, ''), quantity_issued, quantity_returned,
			condition_out, condition_in, return_note, returned_at
		FROM loan_items WHERE loan_id = ANY($1::uuid[]) ORDER BY product_id, location_id NULLS FIRST, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return mapError("list loan items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.LoanItem
		if err := rows.Scan(&it.ID, &it.LoanID, &it.ProductID, &it.LocationID, &it.QuantityIssued, &it.QuantityReturned,
			&it.ConditionOut, &it.ConditionIn, &it.ReturnNote, &it.ReturnedAt); err != nil {
			return fmt.Errorf("scan loan item: %w", err)
		}
		if l := byID[it.LoanID]; l != nil {
			l.Items = append(l.Items, it)
		}
	}
	return mapError("list loan items", rows.Err())
}

// Update persiste estado, fechas y nota, y los campos de devolución de cada ítem.
func (r *LoanRepo) Update(ctx context.Context, l *entity.Loan) error {
	query := `
		UPDATE loans SET status = $2, returned_at = $3, note = $4, authorized_by = $5, updated_at = $6
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, l.ID, string(l.Status), l.ReturnedAt, l.Note, l.AuthorizedBy, l.UpdatedAt); err != nil {
		return mapError("update loan", err)
	}
	for _, it := range l.Items {
		query := `
			UPDATE loan_items SET quantity_returned = $2, condition_in = $3, return_note = $4, returned_at = $5
			WHERE id = $1`
		if _, err := r.q.Exec(ctx, query, it.ID, it.QuantityReturned, it.ConditionIn, it.ReturnNote, it.ReturnedAt); err != nil {
			return mapError("update loan item", err)
		}
	}
	return nil
}

// List lista préstamos, más recientes primero; Search busca en código y nombre del colaborador.
func (r *LoanRepo) List(ctx context.Context, f repository.LoanFilter) ([]*entity.Loan, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"l.status": string(f.Status)})
	}
	if f.CollaboratorID != "" {
		where = append(where, sq.Eq{"l.collaborator_id": f.CollaboratorID})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, sq.Or{sq.ILike{"l.code": like}, sq.ILike{"c.name": like}})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"l.issued_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"l.issued_at": *f.To})
	}
	from := "loans l JOIN collaborators c ON c.id = l.collaborator_id"

	total, err := count(ctx, r.q, from, where)
	if err != nil {
		return nil, 0, mapError("count loans", err)
	}
	query, args, err := psql.Select(loanColumns).From(from).Where(where).
		OrderBy("l.issued_at DESC", "l.code DESC").Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build loan query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list loans", err)
	}
	var out []*entity.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list loans", err)
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkOverdue pasa a overdue los préstamos abiertos con vencimiento anterior a now.
// ids vacío = todos los préstamos.
func (r *LoanRepo) MarkOverdue(ctx context.Context, ids []string, now time.Time) (int64, error) {
	query := `
		UPDATE loans SET status = 'overdue', updated_at = $1
		WHERE status IN ('open', 'partially_returned') AND due_date < $1`
	args := []any{now}
	if ids != nil {
		query += ` AND id = ANY($2::uuid[])`
		args = append(args, ids)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError("mark overdue loans", err)
	}
	return tag.RowsAffected(), nil
}
