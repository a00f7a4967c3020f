package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository stores the catalog in SQLite. Prices are kept as decimal
// text so they survive without float rounding.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time

	idMu   sync.Mutex
	lastID int64
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Seed inserts products when the table is empty.
func (r *SQLiteRepository) Seed(ctx context.Context, products []domain.Product) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if err := insertProduct(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const selectProducts = `
	SELECT id, name, description, image, price, discount_price, category
	FROM products
`

func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]domain.Product, error) {
	query := selectProducts
	var args []any
	if filter.Category != "" && filter.Category != domain.AllCategories {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		// Search is unicode case-insensitive, which SQLite's LIKE is not.
		if filter.Match(p) {
			products = append(products, p)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, selectProducts+` WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *SQLiteRepository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p, err := prepare(p)
	if err != nil {
		return domain.Product{}, err
	}

	r.idMu.Lock()
	defer r.idMu.Unlock()

	if r.lastID == 0 {
		if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM products`).Scan(&r.lastID); err != nil {
			return domain.Product{}, fmt.Errorf("failed to read last product id: %w", err)
		}
	}
	p.ID = nextID(r.now(), r.lastID)

	if err := insertProduct(ctx, r.db, p); err != nil {
		return domain.Product{}, err
	}
	r.lastID = p.ID
	return p, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	p, err := prepare(p)
	if err != nil {
		return domain.Product{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, image = ?, price = ?, discount_price = ?, category = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Description, p.Image, p.Price.String(), discountValue(p), p.Category, p.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	if err := requireAffected(res); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertProduct(ctx context.Context, db execer, p domain.Product) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, image, price, discount_price, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Image, p.Price.String(), discountValue(p), p.Category)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var (
		p        domain.Product
		price    string
		discount sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Image, &price, &discount, &p.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, err
		}
		return domain.Product{}, fmt.Errorf("failed to scan product: %w", err)
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("invalid price for product %d: %w", p.ID, err)
	}
	if discount.Valid {
		d, err := decimal.NewFromString(discount.String)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid discount price for product %d: %w", p.ID, err)
		}
		p.DiscountPrice = &d
	}
	return p, nil
}

func discountValue(p domain.Product) sql.NullString {
	if p.DiscountPrice == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.DiscountPrice.String(), Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
