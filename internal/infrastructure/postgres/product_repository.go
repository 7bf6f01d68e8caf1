package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// psql builder de squirrel con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	_ repository.ProductRepository      = (*ProductRepo)(nil)
	_ repository.ProductGroupRepository = (*GroupRepo)(nil)
)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, code, description, unit, COALESCE(group_id::text, ''), COALESCE(supplier_id::text, ''),
	stock_current, stock_minimum, stock_maximum, stock_requested, cost_price, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Description, &p.Unit, &p.GroupID, &p.SupplierID,
		&p.StockCurrent, &p.StockMinimum, &p.StockMaximum, &p.StockRequested, &p.CostPrice,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return p, nil
}

// Create persiste un nuevo producto con stock en cero.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, code, description, unit, group_id, supplier_id, stock_current, stock_minimum,
			stock_maximum, stock_requested, cost_price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Code, p.Description, p.Unit, nullable(p.GroupID), nullable(p.SupplierID),
		p.StockCurrent, p.StockMinimum, p.StockMaximum, p.StockRequested, p.CostPrice,
		p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", "id = $1", id)
}

// GetByCode obtiene un producto por código (sin distinguir mayúsculas).
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by code", "lower(code) = lower($1)", code)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update", "id = $1 FOR UPDATE", id)
}

// Update actualiza campos de catálogo; las cantidades quedan fuera.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET description = $2, unit = $3, group_id = $4, supplier_id = $5,
			stock_minimum = $6, stock_maximum = $7, cost_price = $8, active = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Description, p.Unit, nullable(p.GroupID), nullable(p.SupplierID),
		p.StockMinimum, p.StockMaximum, p.CostPrice, p.Active, p.UpdatedAt,
	)
	return mapError("update product", err)
}

// UpdateStock persiste saldo, prestado y costo promedio.
func (r *ProductRepo) UpdateStock(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET stock_current = $2, stock_requested = $3, cost_price = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.StockCurrent, p.StockRequested, p.CostPrice)
	return mapError("update product stock", err)
}

// List lista productos con filtros de texto, grupo y activos.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	where := sq.And{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, sq.Or{sq.ILike{"code": like}, sq.ILike{"description": like}})
	}
	if f.GroupID != "" {
		where = append(where, sq.Eq{"group_id": f.GroupID})
	}
	if f.ActiveOnly {
		where = append(where, sq.Eq{"active": true})
	}

	total, err := count(ctx, r.q, "products", where)
	if err != nil {
		return nil, 0, mapError("count products", err)
	}
	query, args, err := psql.Select(productColumns).From("products").Where(where).
		OrderBy("code").Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build product query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list products", err)
	}
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, mapError("scan product", err)
		}
		out = append(out, p)
	}
	return out, total, mapError("list products", rows.Err())
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return mapError("delete product", err)
}

// count cuenta filas de table que cumplen where.
func count(ctx context.Context, q Querier, table string, where sq.Sqlizer) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GroupRepo grupos de productos.
type GroupRepo struct {
	q Querier
}

// NewGroupRepository construye el adaptador de grupos.
func NewGroupRepository(q Querier) *GroupRepo {
	return &GroupRepo{q: q}
}

// Create persiste un grupo.
func (r *GroupRepo) Create(ctx context.Context, g *entity.ProductGroup) error {
	_, err := r.q.Exec(ctx, `INSERT INTO product_groups (id, name, created_at) VALUES ($1, $2, $3)`, g.ID, g.Name, g.CreatedAt)
	return mapError("insert group", err)
}

// GetByID obtiene un grupo.
func (r *GroupRepo) GetByID(ctx context.Context, id string) (*entity.ProductGroup, error) {
	var g entity.ProductGroup
	err := r.q.QueryRow(ctx, `SELECT id, name, created_at FROM product_groups WHERE id = $1`, id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get group", err)
	}
	return &g, nil
}

// List lista grupos por nombre.
func (r *GroupRepo) List(ctx context.Context) ([]*entity.ProductGroup, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at FROM product_groups ORDER BY name`)
	if err != nil {
		return nil, mapError("list groups", err)
	}
	defer rows.Close()
	var out []*entity.ProductGroup
	for rows.Next() {
		var g entity.ProductGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, mapError("scan group", err)
		}
		out = append(out, &g)
	}
	return out, mapError("list groups", rows.Err())
}
