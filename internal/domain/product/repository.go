package product

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// Repository is the persistence contract for products.
type Repository interface {
	// Create inserts p, including its vector when set, and returns its id.
	Create(ctx context.Context, p *Product) (int64, error)

	UpdateVector(ctx context.Context, id int64, vector pgvector.Vector) error

	// NearestByCompany returns up to k products of company ordered by L2
	// distance to vector, ties broken by ascending id.  Products without a
	// vector are excluded.
	NearestByCompany(ctx context.Context, company string, vector pgvector.Vector, k int) ([]*Product, error)

	// ListByCompany returns every product of company in id order.
	ListByCompany(ctx context.Context, company string) ([]*Product, error)
}
