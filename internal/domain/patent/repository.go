package patent

import "context"

// Repository is the persistence contract for patents.
type Repository interface {
	// Save inserts p and returns its id.  CreatedAt/UpdatedAt are set by the
	// store.
	Save(ctx context.Context, p *Patent) (int64, error)

	// FindByPublicationNumber returns the patent with the given publication
	// number.  When duplicates exist the lowest id wins.  A missing patent
	// yields an error carrying ErrCodePatentNotFound.
	FindByPublicationNumber(ctx context.Context, number string) (*Patent, error)

	Count(ctx context.Context) (int64, error)
}
