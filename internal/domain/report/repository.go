package report

import "context"

// Repository is the persistence contract for reports.
type Repository interface {
	// Create inserts r and fills its ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, r *Report) error

	// List returns reports newest first (id descending).
	List(ctx context.Context, limit, offset int) ([]*Report, error)

	Count(ctx context.Context) (int64, error)
}
