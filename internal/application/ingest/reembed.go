package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

// Reembedder recomputes the stored embeddings of one company's products,
// for example after the embedding model changes.
type Reembedder struct {
	repo     product.Repository
	embedder openai.Embedder
	opts     options
}

// NewReembedder returns a Reembedder writing through repo.
func NewReembedder(repo product.Repository, embedder openai.Embedder, opts ...Option) *Reembedder {
	o := buildOptions(opts)
	o.logger = o.logger.Named("ingest.reembed")
	return &Reembedder{repo: repo, embedder: embedder, opts: o}
}

// Reembed embeds every product of company again and replaces its vector.
// A company without products is an empty run, not an error.
func (re *Reembedder) Reembed(ctx context.Context, company string) (Stats, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return Stats{Kind: KindReembed}, errors.New(errors.ErrCodeValidation, "company name is required")
	}

	products, err := re.repo.ListByCompany(ctx, company)
	if err != nil {
		return Stats{Kind: KindReembed}, err
	}

	run := newRun(KindReembed, len(products), re.opts)
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return run.finish(), err
		}

		item := fmt.Sprintf("%s/%s", p.CompanyName, p.Name)
		err := re.reembedOne(ctx, p)
		if run.record(item, err) {
			return run.finish(), errors.Wrap(err, errors.CodeUnknown, "re-embedding stopped").
				WithDetail("product " + item)
		}
	}
	return run.finish(), nil
}

func (re *Reembedder) reembedOne(ctx context.Context, p *product.Product) error {
	values, err := re.embedder.Embed(ctx, p.EmbeddingText())
	if err != nil {
		return err
	}
	if err := p.SetEmbedding(values); err != nil {
		return err
	}
	return re.repo.UpdateVector(ctx, p.ID, *p.Vector)
}
