package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

func TestParseLikelihood(t *testing.T) {
	cases := map[string]Likelihood{
		"High":      LikelihoodHigh,
		"HIGH":      LikelihoodHigh,
		" moderate": LikelihoodModerate,
		"Medium":    LikelihoodModerate,
		"low":       LikelihoodLow,
	}
	for in, want := range cases {
		got, err := ParseLikelihood(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLikelihood("certain")
	assert.True(t, errors.IsValidation(err))
}

func TestParseAnalysis_Valid(t *testing.T) {
	raw := []byte(`{
		"analysis_id": "1",
		"patent_id": "US-RE49889-E1",
		"company_name": "Walmart Inc.",
		"analysis_date": "2024-10-31",
		"top_infringing_products": [
			{"product_name": "Walmart Shopping App", "infringement_likelihood": "High",
			 "relevant_claims": ["1","2"], "explanation": "x", "specific_features": ["a"]},
			{"product_name": "Walmart+", "infringement_likelihood": "Moderate",
			 "relevant_claims": ["1"], "explanation": "y", "specific_features": []}
		],
		"overall_risk_assessment": "High risk"
	}`)

	a, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, a.TopInfringingProducts, 2)
	assert.Equal(t, LikelihoodModerate, a.TopInfringingProducts[1].InfringementLikelihood)
	assert.Equal(t, "High risk", a.OverallRiskAssessment)
	assert.Zero(t, a.AnalysisID)
	assert.Empty(t, a.PatentID)
}

func TestParseAnalysis_Failures(t *testing.T) {
	cases := map[string]string{
		"empty":               ``,
		"whitespace":          "  \n",
		"array":               `[]`,
		"invalid json":        `{"overall_risk_assessment":`,
		"missing assessment":  `{"top_infringing_products":[]}`,
		"unknown likelihood":  `{"top_infringing_products":[{"product_name":"p","infringement_likelihood":"Certain"}],"overall_risk_assessment":"x"}`,
		"missing name":        `{"top_infringing_products":[{"infringement_likelihood":"Low"}],"overall_risk_assessment":"x"}`,
		"wrong type":          `{"top_infringing_products":"none","overall_risk_assessment":"x"}`,
		"missing claims":      `{"top_infringing_products":[{"product_name":"p","infringement_likelihood":"Low","explanation":"e","specific_features":[]}],"overall_risk_assessment":"x"}`,
		"empty claims":        `{"top_infringing_products":[{"product_name":"p","infringement_likelihood":"Low","relevant_claims":[],"explanation":"e","specific_features":[]}],"overall_risk_assessment":"x"}`,
		"missing explanation": `{"top_infringing_products":[{"product_name":"p","infringement_likelihood":"Low","relevant_claims":["1"],"specific_features":[]}],"overall_risk_assessment":"x"}`,
		"missing features":    `{"top_infringing_products":[{"product_name":"p","infringement_likelihood":"Low","relevant_claims":["1"],"explanation":"e"}],"overall_risk_assessment":"x"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnalysis([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
		})
	}
}

func TestAnalysis_PayloadIsCanonical(t *testing.T) {
	a, err := ParseAnalysis([]byte(`{
		"internal_note": "leak",
		"analysis_id": "99",
		"top_infringing_products": [
			{"product_name": "X", "infringement_likelihood": "hIgH", "relevant_claims": ["1"],
			 "explanation": "e", "specific_features": ["f"], "score": 3},
			{"product_name": "Y", "infringement_likelihood": "medium", "relevant_claims": ["2"],
			 "explanation": "e", "specific_features": []}
		],
		"overall_risk_assessment": "r"
	}`))
	require.NoError(t, err)

	b, err := a.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"top_infringing_products": [
			{"product_name": "X", "infringement_likelihood": "High", "relevant_claims": ["1"],
			 "explanation": "e", "specific_features": ["f"]},
			{"product_name": "Y", "infringement_likelihood": "Moderate", "relevant_claims": ["2"],
			 "explanation": "e", "specific_features": []}
		],
		"overall_risk_assessment": "r"
	}`, string(b))
}

func TestAnalysis_PayloadWithoutProducts(t *testing.T) {
	a, err := ParseAnalysis([]byte(`{"overall_risk_assessment":"Low"}`))
	require.NoError(t, err)

	b, err := a.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"top_infringing_products":[],"overall_risk_assessment":"Low"}`, string(b))
}

func TestAnalysis_ValidateNamesMissingField(t *testing.T) {
	a := &Analysis{
		OverallRiskAssessment: "r",
		TopInfringingProducts: []InfringingProduct{{
			ProductName:            "X",
			InfringementLikelihood: LikelihoodLow,
			Explanation:            "e",
			SpecificFeatures:       []string{},
		}},
	}
	err := a.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "top_infringing_products[0].relevant_claims")
}
