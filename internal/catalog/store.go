package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/beton-labs/backend-beton/internal/pricing"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// DB is the subset of pgxpool.Pool the store relies on.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides product catalog queries over Postgres.
type Store struct {
	db DB
}

// NewStore constructs a catalog store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const productColumns = `id, name, slug, description, category, product_type, grade, mortar_ratio,
	normal_price, pump_price, tremie_1_price, tremie_2_price, tremie_3_price, unit, stock_quantity`

// ListParams captures the filters for product listing.
type ListParams struct {
	Query       string
	Category    string
	ProductType string
	InStock     *bool
	Limit       int
	Offset      int
}

// List returns products matching the provided filters ordered by name.
func (s *Store) List(ctx context.Context, params ListParams) ([]Product, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR description ILIKE %[1]s)", arg("%"+q+"%")))
	}
	if c := strings.TrimSpace(params.Category); c != "" {
		conds = append(conds, "category = "+arg(c))
	}
	if t := strings.TrimSpace(params.ProductType); t != "" {
		conds = append(conds, "product_type = "+arg(t))
	}
	if params.InStock != nil {
		if *params.InStock {
			conds = append(conds, "stock_quantity > 0")
		} else {
			conds = append(conds, "stock_quantity <= 0")
		}
	}
	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name ASC"
	if params.Limit > 0 {
		query += " LIMIT " + arg(params.Limit)
	}
	if params.Offset > 0 {
		query += " OFFSET " + arg(params.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Count returns the number of products matching the filters.
func (s *Store) Count(ctx context.Context, params ListParams) (int64, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR description ILIKE %[1]s)", arg("%"+q+"%")))
	}
	if c := strings.TrimSpace(params.Category); c != "" {
		conds = append(conds, "category = "+arg(c))
	}
	if t := strings.TrimSpace(params.ProductType); t != "" {
		conds = append(conds, "product_type = "+arg(t))
	}
	if params.InStock != nil {
		if *params.InStock {
			conds = append(conds, "stock_quantity > 0")
		} else {
			conds = append(conds, "stock_quantity <= 0")
		}
	}
	query := "SELECT COUNT(*) FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var total int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// GetBySlug loads a single product by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (Product, error) {
	row := s.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE slug = $1", slug)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// GetByID loads a single product by identifier.
func (s *Store) GetByID(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := s.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// All returns the full catalog, used as recommendation input. Catalog sizes
// stay in the tens to low thousands so a single read is fine.
func (s *Store) All(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, "SELECT "+productColumns+" FROM products ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p           Product
		id          pgtype.UUID
		description pgtype.Text
		grade       pgtype.Text
		ratio       pgtype.Text
		normal      pgtype.Numeric
		pump        pgtype.Numeric
		tremie1     pgtype.Numeric
		tremie2     pgtype.Numeric
		tremie3     pgtype.Numeric
	)
	if err := row.Scan(&id, &p.Name, &p.Slug, &description, &p.Category, &p.ProductType,
		&grade, &ratio, &normal, &pump, &tremie1, &tremie2, &tremie3, &p.Unit, &p.StockQuantity); err != nil {
		return Product{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	if description.Valid {
		p.Description = description.String
	}
	if grade.Valid && strings.TrimSpace(grade.String) != "" {
		g := grade.String
		p.Grade = &g
	}
	if ratio.Valid && strings.TrimSpace(ratio.String) != "" {
		r := ratio.String
		p.MortarRatio = &r
	}
	p.Prices = pricing.PriceSet{
		Normal:  numericToDecimal(normal),
		Pump:    numericToDecimal(pump),
		Tremie1: numericToDecimal(tremie1),
		Tremie2: numericToDecimal(tremie2),
		Tremie3: numericToDecimal(tremie3),
	}
	return p, nil
}

func numericToDecimal(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return nil
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d
}
