package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

func TestNew_TrimsAndValidates(t *testing.T) {
	p, err := New("  Walmart Inc. ", " Walmart+ ", "Membership program")
	require.NoError(t, err)
	assert.Equal(t, "Walmart Inc.", p.CompanyName)
	assert.Equal(t, "Walmart+", p.Name)
	assert.Nil(t, p.Vector)

	_, err = New("", "x", "y")
	assert.True(t, errors.IsValidation(err))

	_, err = New("c", "  ", "y")
	assert.True(t, errors.IsValidation(err))
}

func TestProduct_EmbeddingText(t *testing.T) {
	p := &Product{CompanyName: "Walmart Inc.", Name: "Walmart+", Description: "Membership program"}
	assert.Equal(t, "company: Walmart Inc., product: Walmart+, description: Membership program", p.EmbeddingText())
}

func TestProduct_SetEmbedding(t *testing.T) {
	p := &Product{}
	err := p.SetEmbedding(make([]float32, 3))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAIInputInvalid))
	assert.Nil(t, p.Vector)

	values := make([]float32, EmbeddingDimensions)
	values[0] = 0.25
	require.NoError(t, p.SetEmbedding(values))
	require.NotNil(t, p.Vector)
	assert.Equal(t, float32(0.25), p.Vector.Slice()[0])
}

func TestProduct_JSONOmitsVector(t *testing.T) {
	p := &Product{ID: 3, CompanyName: "c", Name: "n", Description: "d"}
	require.NoError(t, p.SetEmbedding(make([]float32, EmbeddingDimensions)))

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.NotContains(t, m, "vector")
	assert.NotContains(t, m, "product_vector")
	for _, k := range []string{"id", "company_name", "name", "description", "created_at", "updated_at"} {
		assert.Contains(t, m, k)
	}
}
