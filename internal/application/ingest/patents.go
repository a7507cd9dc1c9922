package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BillWilson/pat-checker/internal/domain/patent"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

// patentRecord is one entry of the patent export.  The list-valued columns
// arrive as JSON documents encoded inside strings.
type patentRecord struct {
	PublicationNumber  string          `json:"publication_number"`
	Title              string          `json:"title"`
	AISummary          *string         `json:"ai_summary"`
	RawSourceURL       string          `json:"raw_source_url"`
	Assignee           string          `json:"assignee"`
	Inventors          json.RawMessage `json:"inventors"`
	PriorityDate       string          `json:"priority_date"`
	ApplicationDate    string          `json:"application_date"`
	GrantDate          string          `json:"grant_date"`
	Abstract           string          `json:"abstract"`
	Description        string          `json:"description"`
	Claims             json.RawMessage `json:"claims"`
	Jurisdictions      string          `json:"jurisdictions"`
	Classifications    json.RawMessage `json:"classifications"`
	ApplicationEvents  *string         `json:"application_events"`
	Citations          json.RawMessage `json:"citations"`
	ImageURLs          json.RawMessage `json:"image_urls"`
	Landscapes         *string         `json:"landscapes"`
	PublishDate        *string         `json:"publish_date"`
	CitationsNonPatent *string         `json:"citations_non_patent"`
	Provenance         *string         `json:"provenance"`
	AttachmentURLs     *string         `json:"attachment_urls"`
}

// PatentImporter saves patents from a JSON array.
type PatentImporter struct {
	repo patent.Repository
	opts options
}

// NewPatentImporter returns an importer writing to repo.
func NewPatentImporter(repo patent.Repository, opts ...Option) *PatentImporter {
	o := buildOptions(opts)
	o.logger = o.logger.Named("ingest.patents")
	return &PatentImporter{repo: repo, opts: o}
}

// Import decodes r and saves every patent in file order.  The returned error
// is the first record failure unless continue-on-error is set; stats are
// returned either way.
func (im *PatentImporter) Import(ctx context.Context, r io.Reader) (Stats, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return Stats{Kind: KindPatent}, errors.Wrap(err, errors.ErrCodePatentParseFailed, "patent file must be a JSON array")
	}

	run := newRun(KindPatent, len(raws), im.opts)
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return run.finish(), err
		}

		p, err := decodePatent(raw)
		item := fmt.Sprintf("#%d", i+1)
		if p != nil && p.PublicationNumber != "" {
			item = p.PublicationNumber
		}
		if err == nil {
			_, err = im.repo.Save(ctx, p)
		}
		if run.record(item, err) {
			return run.finish(), errors.Wrap(err, errors.CodeUnknown, "patent import stopped").
				WithDetail("record " + item)
		}
	}
	return run.finish(), nil
}

func decodePatent(raw json.RawMessage) (*patent.Patent, error) {
	var rec patentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePatentParseFailed, "malformed patent record")
	}

	p := &patent.Patent{
		PublicationNumber:  strings.TrimSpace(rec.PublicationNumber),
		Title:              rec.Title,
		AISummary:          rec.AISummary,
		RawSourceURL:       rec.RawSourceURL,
		Assignee:           rec.Assignee,
		Abstract:           rec.Abstract,
		Description:        rec.Description,
		Jurisdictions:      rec.Jurisdictions,
		ApplicationEvents:  rec.ApplicationEvents,
		Landscapes:         rec.Landscapes,
		CitationsNonPatent: rec.CitationsNonPatent,
		Provenance:         rec.Provenance,
		AttachmentURLs:     rec.AttachmentURLs,
	}

	nested := []struct {
		name string
		raw  json.RawMessage
		dst  any
	}{
		{"inventors", rec.Inventors, &p.Inventors},
		{"claims", rec.Claims, &p.Claims},
		{"classifications", rec.Classifications, &p.Classifications},
		{"citations", rec.Citations, &p.Citations},
		{"image_urls", rec.ImageURLs, &p.ImageURLs},
	}
	for _, f := range nested {
		if err := decodeEmbedded(f.raw, f.dst); err != nil {
			return p, errors.Wrap(err, errors.ErrCodePatentParseFailed, "malformed "+f.name)
		}
	}

	dates := []struct {
		name string
		in   string
		dst  *time.Time
	}{
		{"priority_date", rec.PriorityDate, &p.PriorityDate},
		{"application_date", rec.ApplicationDate, &p.ApplicationDate},
		{"grant_date", rec.GrantDate, &p.GrantDate},
	}
	for _, d := range dates {
		t, err := patent.ParseDate(d.in)
		if err != nil {
			return p, errors.Wrap(err, errors.ErrCodePatentParseFailed, "invalid "+d.name)
		}
		*d.dst = t
	}
	if rec.PublishDate != nil && strings.TrimSpace(*rec.PublishDate) != "" {
		t, err := patent.ParseTimestamp(*rec.PublishDate)
		if err != nil {
			return p, errors.Wrap(err, errors.ErrCodePatentParseFailed, "invalid publish_date")
		}
		p.PublishDate = &t
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// decodeEmbedded decodes raw into dst.  raw is usually a JSON string holding
// a JSON document; a plain array is also accepted.  null and "" leave dst
// untouched.
func decodeEmbedded(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			return nil
		}
		raw = json.RawMessage(s)
	}
	return json.Unmarshal(raw, dst)
}
