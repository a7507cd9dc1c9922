// Package report models persisted infringement analyses and the typed result
// produced by the reviewer model.
package report

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

// DateLayout formats analysis_date.
const DateLayout = "2006-01-02"

// Metadata keys overlaid onto the stored payload by Flatten.
const (
	KeyAnalysisID   = "analysis_id"
	KeyPatentID     = "patent_id"
	KeyCompanyName  = "company_name"
	KeyAnalysisDate = "analysis_date"
)

// Report is one persisted analysis.  Result holds the canonical payload from
// Analysis.Payload.
type Report struct {
	ID          int64
	PatentID    string
	CompanyName string
	Result      json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds an unsaved report.  result must be a JSON object.
func New(patentID, companyName string, result json.RawMessage) (*Report, error) {
	if patentID == "" || companyName == "" {
		return nil, errors.New(errors.ErrCodeValidation, "report patent_id and company_name are required")
	}
	trimmed := bytes.TrimSpace(result)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, errors.New(errors.ErrCodeSerialization, "report result must be a JSON object")
	}
	return &Report{PatentID: patentID, CompanyName: companyName, Result: trimmed}, nil
}

// AnalysisDate is the creation date formatted as YYYY-MM-DD.
func (r *Report) AnalysisDate() string {
	return r.CreatedAt.Format(DateLayout)
}

// Flatten spreads the stored payload and overlays the record's own id,
// patent id, company name and creation date.  The record's values win over
// same-named keys in the payload.  Numbers in the payload keep their
// original text.
func (r *Report) Flatten() (map[string]any, error) {
	out := map[string]any{}
	if len(bytes.TrimSpace(r.Result)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(r.Result))
		dec.UseNumber()
		var payload any
		if err := dec.Decode(&payload); err != nil {
			return nil, errors.NewSerializationError(err, "stored report result is not valid JSON")
		}
		obj, ok := payload.(map[string]any)
		if !ok {
			return nil, errors.NewSerializationError(nil, "stored report result is not a JSON object")
		}
		out = obj
	}

	out[KeyAnalysisID] = r.ID
	out[KeyPatentID] = r.PatentID
	out[KeyCompanyName] = r.CompanyName
	out[KeyAnalysisDate] = r.AnalysisDate()
	return out, nil
}

// MarshalFlat is Flatten followed by json.Marshal.
func (r *Report) MarshalFlat() ([]byte, error) {
	flat, err := r.Flatten()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return nil, errors.NewSerializationError(err, "failed to encode report")
	}
	return b, nil
}

// Analysis decodes the stored payload into the typed result with the
// record's metadata applied.
func (r *Report) Analysis() (*Analysis, error) {
	a, err := ParseAnalysis(r.Result)
	if err != nil {
		return nil, err
	}
	a.AnalysisID = r.ID
	a.PatentID = r.PatentID
	a.CompanyName = r.CompanyName
	a.AnalysisDate = r.AnalysisDate()
	return a, nil
}

// MarshalAnalysis encodes the typed result with the record's metadata.  Only
// the fields of Analysis reach the output.
func (r *Report) MarshalAnalysis() ([]byte, error) {
	a, err := r.Analysis()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, errors.NewSerializationError(err, "failed to encode report")
	}
	return b, nil
}
