package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

type companyRecord struct {
	Name     string          `json:"name"`
	Products []productRecord `json:"products"`
}

type productRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductImporter embeds and saves company products.
type ProductImporter struct {
	repo     product.Repository
	embedder openai.Embedder
	opts     options
}

// NewProductImporter returns an importer that embeds each product with
// embedder before writing it to repo.
func NewProductImporter(repo product.Repository, embedder openai.Embedder, opts ...Option) *ProductImporter {
	o := buildOptions(opts)
	o.logger = o.logger.Named("ingest.products")
	return &ProductImporter{repo: repo, embedder: embedder, opts: o}
}

// Import reads a company list and inserts every product with its embedding,
// one at a time.  The company list is the first value of the top-level
// object (for example {"companies": [...]}); a bare array is accepted too.
func (im *ProductImporter) Import(ctx context.Context, r io.Reader) (Stats, error) {
	companies, err := decodeCompanies(r)
	if err != nil {
		return Stats{Kind: KindProduct}, err
	}

	total := 0
	for _, c := range companies {
		total += len(c.Products)
	}

	run := newRun(KindProduct, total, im.opts)
	for _, c := range companies {
		for _, rec := range c.Products {
			if err := ctx.Err(); err != nil {
				return run.finish(), err
			}

			item := fmt.Sprintf("%s/%s", c.Name, rec.Name)
			err := im.importOne(ctx, c.Name, rec)
			if run.record(item, err) {
				return run.finish(), errors.Wrap(err, errors.CodeUnknown, "product import stopped").
					WithDetail("product " + item)
			}
		}
	}
	return run.finish(), nil
}

func (im *ProductImporter) importOne(ctx context.Context, company string, rec productRecord) error {
	p, err := product.New(company, rec.Name, rec.Description)
	if err != nil {
		return err
	}
	values, err := im.embedder.Embed(ctx, p.EmbeddingText())
	if err != nil {
		return err
	}
	if err := p.SetEmbedding(values); err != nil {
		return err
	}
	_, err = im.repo.Create(ctx, p)
	return err
}

// decodeCompanies returns the company array held by the first member of the
// top-level object.
func decodeCompanies(r io.Reader) ([]companyRecord, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeProductImportFailed, "product file is not valid JSON")
	}

	var companies []companyRecord
	switch tok {
	case json.Delim('['):
		for dec.More() {
			var c companyRecord
			if err := dec.Decode(&c); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeProductImportFailed, "malformed company record")
			}
			companies = append(companies, c)
		}
	case json.Delim('{'):
		if !dec.More() {
			return nil, nil
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeProductImportFailed, "product file is not valid JSON")
		}
		if err := dec.Decode(&companies); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeProductImportFailed, "first member of the product file must be a company array")
		}
	default:
		return nil, errors.New(errors.ErrCodeProductImportFailed, "product file must be a JSON object or array")
	}
	return companies, nil
}
