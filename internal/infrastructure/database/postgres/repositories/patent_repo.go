package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BillWilson/pat-checker/internal/domain/patent"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	appErrors "github.com/BillWilson/pat-checker/pkg/errors"
)

const patentColumns = `
	id, publication_number, title, ai_summary, raw_source_url, assignee,
	inventors, priority_date, application_date, grant_date,
	abstract, description, claims, jurisdictions, classifications,
	application_events, citations, image_urls, landscapes, publish_date,
	citations_non_patent, provenance, attachment_urls, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// PatentRepository
// ─────────────────────────────────────────────────────────────────────────────

// PatentRepository is the PostgreSQL implementation of patent.Repository.
type PatentRepository struct {
	db     querier
	logger logging.Logger
}

var _ patent.Repository = (*PatentRepository)(nil)

// NewPatentRepository constructs a ready-to-use PatentRepository.
func NewPatentRepository(pool *pgxpool.Pool, logger logging.Logger) *PatentRepository {
	return &PatentRepository{db: pool, logger: logger}
}

// ─────────────────────────────────────────────────────────────────────────────
// Save
// ─────────────────────────────────────────────────────────────────────────────

// Save inserts p and fills its ID and timestamps.
func (r *PatentRepository) Save(ctx context.Context, p *patent.Patent) (int64, error) {
	r.logger.Debug("PatentRepository.Save", logging.String(logging.FieldPatentID, p.PublicationNumber))

	inventors, err := jsonArray(p.Inventors, p.Inventors == nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode inventors")
	}
	claims, err := jsonArray(p.Claims, p.Claims == nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode claims")
	}
	classifications, err := jsonArray(p.Classifications, p.Classifications == nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode classifications")
	}
	citations, err := nullableJSON(p.Citations, p.Citations == nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode citations")
	}
	imageURLs, err := nullableJSON(p.ImageURLs, p.ImageURLs == nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode image_urls")
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO patents (
			publication_number, title, ai_summary, raw_source_url, assignee,
			inventors, priority_date, application_date, grant_date,
			abstract, description, claims, jurisdictions, classifications,
			application_events, citations, image_urls, landscapes, publish_date,
			citations_non_patent, provenance, attachment_urls
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9,
			$10,$11,$12,$13,$14,
			$15,$16,$17,$18,$19,
			$20,$21,$22
		)
		RETURNING id, created_at, updated_at`,
		p.PublicationNumber, p.Title, p.AISummary, p.RawSourceURL, p.Assignee,
		inventors, p.PriorityDate, p.ApplicationDate, p.GrantDate,
		p.Abstract, p.Description, claims, p.Jurisdictions, classifications,
		p.ApplicationEvents, citations, imageURLs, p.Landscapes, p.PublishDate,
		p.CitationsNonPatent, p.Provenance, p.AttachmentURLs,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("PatentRepository.Save: insert patent", logging.Err(err))
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert patent")
	}
	return p.ID, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByPublicationNumber
// ─────────────────────────────────────────────────────────────────────────────

// FindByPublicationNumber loads the oldest patent with the given number.
func (r *PatentRepository) FindByPublicationNumber(ctx context.Context, number string) (*patent.Patent, error) {
	r.logger.Debug("PatentRepository.FindByPublicationNumber", logging.String(logging.FieldPatentID, number))

	return r.scanPatent(r.db.QueryRow(ctx, `
		SELECT `+patentColumns+`
		FROM patents
		WHERE publication_number = $1
		ORDER BY id ASC
		LIMIT 1`, number))
}

// ─────────────────────────────────────────────────────────────────────────────
// Count
// ─────────────────────────────────────────────────────────────────────────────

// Count returns the number of stored patents.
func (r *PatentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patents`).Scan(&n); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count patents")
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row mapping
// ─────────────────────────────────────────────────────────────────────────────

func (r *PatentRepository) scanPatent(row pgx.Row) (*patent.Patent, error) {
	var p patent.Patent
	var inventors, claims, classifications, citations, images []byte

	err := row.Scan(
		&p.ID, &p.PublicationNumber, &p.Title, &p.AISummary, &p.RawSourceURL, &p.Assignee,
		&inventors, &p.PriorityDate, &p.ApplicationDate, &p.GrantDate,
		&p.Abstract, &p.Description, &claims, &p.Jurisdictions, &classifications,
		&p.ApplicationEvents, &citations, &images, &p.Landscapes, &p.PublishDate,
		&p.CitationsNonPatent, &p.Provenance, &p.AttachmentURLs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodePatentNotFound, "patent not found")
		}
		r.logger.Error("scanPatent", logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan patent row")
	}

	decoders := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"inventors", inventors, &p.Inventors},
		{"claims", claims, &p.Claims},
		{"classifications", classifications, &p.Classifications},
		{"citations", citations, &p.Citations},
		{"image_urls", images, &p.ImageURLs},
	}
	for _, d := range decoders {
		if err := decodeJSON(d.raw, d.dst); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodePatentParseFailed, "failed to decode patent "+d.name)
		}
	}
	return &p, nil
}
