// Package patent models the patent records that infringement analyses are run
// against.  Patents are imported once and never modified.
package patent

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

// DateLayout is the calendar-date format used for priority, application and
// grant dates.
const DateLayout = "2006-01-02"

// ─────────────────────────────────────────────────────────────────────────────
// Loosely-structured list entries
// ─────────────────────────────────────────────────────────────────────────────

// Inventor is one entry of a patent's inventor list.  The raw JSON is kept as
// imported so nothing is lost on the round trip through the database.
type Inventor struct{ json.RawMessage }

// Name returns the inventor's name when the entry is a string or an object
// with a "name" field.
func (i Inventor) Name() string { return rawField(i.RawMessage, "name") }

// Classification is one CPC/IPC classification entry, kept as raw JSON.
type Classification struct{ json.RawMessage }

// Code returns the classification code when present.
func (c Classification) Code() string { return rawField(c.RawMessage, "code") }

// Citation is one patent citation entry, kept as raw JSON.
type Citation struct{ json.RawMessage }

// PublicationNumber returns the cited publication number when present.
func (c Citation) PublicationNumber() string {
	if v := rawField(c.RawMessage, "publication_number"); v != "" {
		return v
	}
	return rawField(c.RawMessage, "patent_number")
}

// rawField extracts a string from raw JSON that is either a bare string or an
// object carrying key.
func rawField(raw json.RawMessage, key string) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	if err := json.Unmarshal(obj[key], &s); err != nil {
		return ""
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Patent aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Patent is one published patent.  Pointer fields are nullable columns.
type Patent struct {
	ID                 int64            `json:"id"`
	PublicationNumber  string           `json:"publication_number"`
	Title              string           `json:"title"`
	AISummary          *string          `json:"ai_summary"`
	RawSourceURL       string           `json:"raw_source_url"`
	Assignee           string           `json:"assignee"`
	Inventors          []Inventor       `json:"inventors"`
	PriorityDate       time.Time        `json:"priority_date"`
	ApplicationDate    time.Time        `json:"application_date"`
	GrantDate          time.Time        `json:"grant_date"`
	Abstract           string           `json:"abstract"`
	Description        string           `json:"description"`
	Claims             []Claim          `json:"claims"`
	Jurisdictions      string           `json:"jurisdictions"`
	Classifications    []Classification `json:"classifications"`
	ApplicationEvents  *string          `json:"application_events"`
	Citations          []Citation       `json:"citations"`
	ImageURLs          []string         `json:"image_urls"`
	Landscapes         *string          `json:"landscapes"`
	PublishDate        *time.Time       `json:"publish_date"`
	CitationsNonPatent *string          `json:"citations_non_patent"`
	Provenance         *string          `json:"provenance"`
	AttachmentURLs     *string          `json:"attachment_urls"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ClaimTexts returns the claim texts in claim order.
func (p *Patent) ClaimTexts() []string {
	texts := make([]string, 0, len(p.Claims))
	for _, c := range p.Claims {
		texts = append(texts, c.Text)
	}
	return texts
}

// Validate checks the fields the schema declares NOT NULL.
func (p *Patent) Validate() error {
	required := []struct {
		name, value string
	}{
		{"publication_number", p.PublicationNumber},
		{"title", p.Title},
		{"raw_source_url", p.RawSourceURL},
		{"assignee", p.Assignee},
		{"abstract", p.Abstract},
		{"description", p.Description},
		{"jurisdictions", p.Jurisdictions},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.Newf(errors.ErrCodeValidation, "patent %s is required", f.name)
		}
	}
	if len(p.PublicationNumber) > 255 {
		return errors.New(errors.ErrCodeValidation, "patent publication_number exceeds 255 characters")
	}
	if p.PriorityDate.IsZero() || p.ApplicationDate.IsZero() || p.GrantDate.IsZero() {
		return errors.Newf(errors.ErrCodeValidation, "patent %s is missing a priority, application or grant date", p.PublicationNumber)
	}
	for i, c := range p.Claims {
		if err := c.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrCodeValidation, "invalid claim").
				WithDetail("index " + strconv.Itoa(i))
		}
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.ErrCodePatentParseFailed, "invalid date")
	}
	return t, nil
}

// ParseTimestamp accepts RFC 3339, "YYYY-MM-DD HH:MM:SS" or a bare date.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf(errors.ErrCodePatentParseFailed, "invalid timestamp %q", s)
}
