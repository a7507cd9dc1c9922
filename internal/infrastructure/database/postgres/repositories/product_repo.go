package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	appErrors "github.com/BillWilson/pat-checker/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// ProductRepository
// ─────────────────────────────────────────────────────────────────────────────

// ProductRepository is the PostgreSQL implementation of product.Repository.
// Vectors travel in pgvector's text form.
type ProductRepository struct {
	db     querier
	logger logging.Logger
}

var _ product.Repository = (*ProductRepository)(nil)

// NewProductRepository constructs a ready-to-use ProductRepository.
func NewProductRepository(pool *pgxpool.Pool, logger logging.Logger) *ProductRepository {
	return &ProductRepository{db: pool, logger: logger}
}

// Create inserts p and fills its ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	r.logger.Debug("ProductRepository.Create",
		logging.String(logging.FieldCompanyName, p.CompanyName),
		logging.String("product", p.Name),
	)

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (company_name, name, description, product_vector)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.CompanyName, p.Name, p.Description, p.Vector,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("ProductRepository.Create", logging.Err(err))
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert product")
	}
	return p.ID, nil
}

// UpdateVector replaces the embedding of product id.
func (r *ProductRepository) UpdateVector(ctx context.Context, id int64, vector pgvector.Vector) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET product_vector = $2, updated_at = NOW()
		WHERE id = $1`, id, vector)
	if err != nil {
		r.logger.Error("ProductRepository.UpdateVector", logging.Err(err), logging.Int64("product_id", id))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update product vector")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.Newf(appErrors.ErrCodeNotFound, "product %d not found", id)
	}
	return nil
}

// NearestByCompany ranks company's embedded products by L2 distance.
func (r *ProductRepository) NearestByCompany(ctx context.Context, company string, vector pgvector.Vector, k int) ([]*product.Product, error) {
	r.logger.Debug("ProductRepository.NearestByCompany",
		logging.String(logging.FieldCompanyName, company),
		logging.Int("k", k),
	)
	if k <= 0 {
		return []*product.Product{}, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, company_name, name, description, created_at, updated_at
		FROM products
		WHERE company_name = $1 AND product_vector IS NOT NULL
		ORDER BY product_vector <-> $2, id ASC
		LIMIT $3`, company, vector, k)
	if err != nil {
		r.logger.Error("ProductRepository.NearestByCompany", logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to search products")
	}
	return scanProducts(rows)
}

// ListByCompany returns company's products in insertion order.
func (r *ProductRepository) ListByCompany(ctx context.Context, company string) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_name, name, description, created_at, updated_at
		FROM products
		WHERE company_name = $1
		ORDER BY id ASC`, company)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list products")
	}
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]*product.Product, error) {
	defer rows.Close()

	products := []*product.Product{}
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.CompanyName, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan product row")
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "row iteration error")
	}
	return products, nil
}
