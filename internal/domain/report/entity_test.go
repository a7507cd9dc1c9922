package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

func TestNew_RequiresObjectPayload(t *testing.T) {
	r, err := New("US1", "Acme", json.RawMessage(` {"overall_risk_assessment":"Low"} `))
	require.NoError(t, err)
	assert.Equal(t, `{"overall_risk_assessment":"Low"}`, string(r.Result))

	_, err = New("US1", "Acme", json.RawMessage(`[1,2]`))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	_, err = New("US1", "Acme", json.RawMessage(`{"broken":`))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	_, err = New("", "Acme", json.RawMessage(`{}`))
	assert.True(t, errors.IsValidation(err))
}

func TestReport_Flatten_OverlaysMetadata(t *testing.T) {
	r := &Report{
		ID:          42,
		PatentID:    "US-RE49889-E1",
		CompanyName: "Walmart Inc.",
		Result:      json.RawMessage(`{"analysis_id":"1","patent_id":"wrong","overall_risk_assessment":"High","score":1.50}`),
		CreatedAt:   time.Date(2024, 10, 31, 23, 59, 0, 0, time.UTC),
	}

	flat, err := r.Flatten()
	require.NoError(t, err)

	assert.Equal(t, int64(42), flat[KeyAnalysisID])
	assert.Equal(t, "US-RE49889-E1", flat[KeyPatentID])
	assert.Equal(t, "Walmart Inc.", flat[KeyCompanyName])
	assert.Equal(t, "2024-10-31", flat[KeyAnalysisDate])
	assert.Equal(t, "High", flat["overall_risk_assessment"])
	assert.Equal(t, json.Number("1.50"), flat["score"])
}

func TestReport_Flatten_EmptyPayload(t *testing.T) {
	r := &Report{ID: 1, PatentID: "P", CompanyName: "C", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	flat, err := r.Flatten()
	require.NoError(t, err)
	assert.Len(t, flat, 4)
}

func TestReport_Flatten_RejectsNonObject(t *testing.T) {
	for _, payload := range []string{`[]`, `"text"`, `12`, `{"a":`} {
		r := &Report{ID: 1, Result: json.RawMessage(payload)}
		_, err := r.Flatten()
		require.Error(t, err, payload)
		assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization), payload)
	}
}

func TestReport_MarshalFlat(t *testing.T) {
	r := &Report{
		ID:          7,
		PatentID:    "US1",
		CompanyName: "Acme",
		Result:      json.RawMessage(`{"top_infringing_products":[],"overall_risk_assessment":"Low"}`),
		CreatedAt:   time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	b, err := r.MarshalFlat()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"analysis_id": 7,
		"patent_id": "US1",
		"company_name": "Acme",
		"analysis_date": "2024-03-04",
		"top_infringing_products": [],
		"overall_risk_assessment": "Low"
	}`, string(b))
}

func TestReport_Analysis(t *testing.T) {
	r := &Report{
		ID:          9,
		PatentID:    "US1",
		CompanyName: "Acme",
		Result:      json.RawMessage(`{"top_infringing_products":[{"product_name":"Widget","infringement_likelihood":"high","relevant_claims":["1"],"explanation":"e","specific_features":["f"]}],"overall_risk_assessment":"High"}`),
		CreatedAt:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	a, err := r.Analysis()
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.AnalysisID)
	assert.Equal(t, "2024-03-04", a.AnalysisDate)
	require.Len(t, a.TopInfringingProducts, 1)
	assert.Equal(t, LikelihoodHigh, a.TopInfringingProducts[0].InfringementLikelihood)
}

func TestReport_MarshalAnalysis(t *testing.T) {
	r := &Report{
		ID:          9,
		PatentID:    "US1",
		CompanyName: "Acme",
		Result:      json.RawMessage(`{"extra":true,"top_infringing_products":[{"product_name":"Widget","infringement_likelihood":"LOW","relevant_claims":["4"],"explanation":"e","specific_features":[]}],"overall_risk_assessment":"Low"}`),
		CreatedAt:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	b, err := r.MarshalAnalysis()
	require.NoError(t, err)
	assert.Equal(t, `{"analysis_id":9,"patent_id":"US1","company_name":"Acme","analysis_date":"2024-03-04",`+
		`"top_infringing_products":[{"product_name":"Widget","infringement_likelihood":"Low","relevant_claims":["4"],"explanation":"e","specific_features":[]}],`+
		`"overall_risk_assessment":"Low"}`, string(b))

	r.Result = json.RawMessage(`{"top_infringing_products":[{"product_name":"Widget","infringement_likelihood":"Low"}],"overall_risk_assessment":"Low"}`)
	_, err = r.MarshalAnalysis()
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}
