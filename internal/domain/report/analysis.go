package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

// Likelihood grades how likely a product infringes.
type Likelihood string

const (
	LikelihoodHigh     Likelihood = "High"
	LikelihoodModerate Likelihood = "Moderate"
	LikelihoodLow      Likelihood = "Low"
)

// ParseLikelihood matches s case-insensitively against the known grades.
func ParseLikelihood(s string) (Likelihood, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return LikelihoodHigh, nil
	case "moderate", "medium":
		return LikelihoodModerate, nil
	case "low":
		return LikelihoodLow, nil
	}
	return "", errors.Newf(errors.ErrCodeValidation, "unknown infringement likelihood %q", s)
}

// UnmarshalJSON normalises the grade's case.
func (l *Likelihood) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLikelihood(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// InfringingProduct is one ranked product in an analysis.
type InfringingProduct struct {
	ProductName            string     `json:"product_name"`
	InfringementLikelihood Likelihood `json:"infringement_likelihood"`
	RelevantClaims         []string   `json:"relevant_claims"`
	Explanation            string     `json:"explanation"`
	SpecificFeatures       []string   `json:"specific_features"`
}

// Analysis is the typed infringement report returned to API clients.
type Analysis struct {
	AnalysisID            int64               `json:"analysis_id"`
	PatentID              string              `json:"patent_id"`
	CompanyName           string              `json:"company_name"`
	AnalysisDate          string              `json:"analysis_date"`
	TopInfringingProducts []InfringingProduct `json:"top_infringing_products"`
	OverallRiskAssessment string              `json:"overall_risk_assessment"`
}

// modelAnalysis is the subset of the model output that is trusted.  The
// metadata fields the model echoes back are replaced by the record's.
type modelAnalysis struct {
	TopInfringingProducts []InfringingProduct `json:"top_infringing_products"`
	OverallRiskAssessment string              `json:"overall_risk_assessment"`
}

// ParseAnalysis decodes and validates a model response.  Every failure is a
// serialization error.
func ParseAnalysis(raw []byte) (*Analysis, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.NewSerializationError(nil, "analysis result is empty")
	}
	if trimmed[0] != '{' {
		return nil, errors.NewSerializationError(nil, "analysis result is not a JSON object")
	}

	var m modelAnalysis
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, errors.NewSerializationError(err, "analysis result does not match the expected shape")
	}

	if m.TopInfringingProducts == nil {
		m.TopInfringingProducts = []InfringingProduct{}
	}
	a := &Analysis{
		TopInfringingProducts: m.TopInfringingProducts,
		OverallRiskAssessment: m.OverallRiskAssessment,
	}
	if err := a.Validate(); err != nil {
		return nil, errors.NewSerializationError(err, "analysis result is incomplete")
	}
	return a, nil
}

// Validate checks the fields a usable report must carry.
func (a *Analysis) Validate() error {
	if strings.TrimSpace(a.OverallRiskAssessment) == "" {
		return errors.New(errors.ErrCodeValidation, "overall_risk_assessment is required")
	}
	for i, p := range a.TopInfringingProducts {
		if field := p.missingField(); field != "" {
			return errors.Newf(errors.ErrCodeValidation, "top_infringing_products[%d].%s is required", i, field)
		}
	}
	return nil
}

// missingField names the first required field p lacks, or "".
func (p InfringingProduct) missingField() string {
	switch {
	case strings.TrimSpace(p.ProductName) == "":
		return "product_name"
	case p.InfringementLikelihood == "":
		return "infringement_likelihood"
	case len(p.RelevantClaims) == 0:
		return "relevant_claims"
	case strings.TrimSpace(p.Explanation) == "":
		return "explanation"
	case p.SpecificFeatures == nil:
		return "specific_features"
	}
	return ""
}

// Payload encodes the model-owned fields in canonical form.  This is what a
// Report stores as its Result; keys the model added on its own are gone.
func (a *Analysis) Payload() (json.RawMessage, error) {
	products := a.TopInfringingProducts
	if products == nil {
		products = []InfringingProduct{}
	}
	b, err := json.Marshal(modelAnalysis{
		TopInfringingProducts: products,
		OverallRiskAssessment: a.OverallRiskAssessment,
	})
	if err != nil {
		return nil, errors.NewSerializationError(err, "failed to encode analysis")
	}
	return b, nil
}
