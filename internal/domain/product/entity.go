// Package product models the company products that patents are compared
// against.  Each product carries an embedding of its descriptive text.
package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

// EmbeddingDimensions is the width of the product_vector column.
const EmbeddingDimensions = 1536

// Product is one product of one company.
type Product struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Vector is nil until the product has been embedded.  It is never
	// serialized.
	Vector *pgvector.Vector `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds an unsaved product after validating its fields.
func New(companyName, name, description string) (*Product, error) {
	p := &Product{
		CompanyName: strings.TrimSpace(companyName),
		Name:        strings.TrimSpace(name),
		Description: description,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// EmbeddingText is the text submitted to the embedding model for this
// product.
func (p *Product) EmbeddingText() string {
	return fmt.Sprintf("company: %s, product: %s, description: %s", p.CompanyName, p.Name, p.Description)
}

// SetEmbedding attaches an embedding after checking its width.
func (p *Product) SetEmbedding(values []float32) error {
	if len(values) != EmbeddingDimensions {
		return errors.Newf(errors.ErrCodeAIInputInvalid,
			"embedding has %d dimensions, expected %d", len(values), EmbeddingDimensions)
	}
	v := pgvector.NewVector(values)
	p.Vector = &v
	return nil
}

// Validate checks the NOT NULL columns and their length limits.
func (p *Product) Validate() error {
	if p.CompanyName == "" {
		return errors.New(errors.ErrCodeValidation, "product company_name is required")
	}
	if p.Name == "" {
		return errors.New(errors.ErrCodeValidation, "product name is required")
	}
	if len(p.CompanyName) > 255 || len(p.Name) > 255 {
		return errors.New(errors.ErrCodeValidation, "product company_name and name must not exceed 255 characters")
	}
	return nil
}
