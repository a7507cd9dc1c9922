package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillWilson/pat-checker/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.ErrCodeInternal, "unexpected failure"},
		{"patent not found", errors.ErrCodePatentNotFound, "patent US-RE49889-E1 not found"},
		{"validation", errors.ErrCodeValidation, "company_name is required"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	ae := errors.Newf(errors.ErrCodeValidation, "%s must be at most %d characters", "patent_id", 255)
	assert.Equal(t, "patent_id must be at most 255 characters", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeDatabaseError, "failed to query patent")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeDatabaseError, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesInnerCodeWhenUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodePatentNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	assert.Equal(t, errors.ErrCodePatentNotFound, outer.Code)
}

func TestWrap_UnknownOnForeignErrorBecomesInternal(t *testing.T) {
	outer := errors.Wrap(stderrors.New("boom"), errors.CodeUnknown, "adding context")
	assert.Equal(t, errors.ErrCodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() / builders
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.ErrCodeValidation, "patent_id is required")
	assert.Equal(t, "[COMMON_010] patent_id is required", ae.Error())

	withDetail := ae.WithDetail("query=patent_id")
	assert.Equal(t, "[COMMON_010] patent_id is required: query=patent_id", withDetail.Error())

	wrapped := errors.Wrap(stderrors.New("timeout"), errors.ErrCodeUpstream, "embedding request failed")
	assert.Equal(t, "[COMMON_014] embedding request failed: timeout", wrapped.Error())
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	ae := errors.New(errors.ErrCodeNotFound, "missing")
	_ = ae.WithDetail("x")
	assert.Empty(t, ae.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(stderrors.New("x")))
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("eof")
	ae := errors.New(errors.ErrCodeSerialization, "bad json").WithCause(cause)
	assert.True(t, stderrors.Is(ae, cause))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errors.New(errors.ErrCodePatentNotFound, "x").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, errors.NewUpstreamError(nil, "x").HTTPStatus())
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_WalksNestedAppErrors(t *testing.T) {
	inner := errors.New(errors.ErrCodePatentNotFound, "patent not found")
	mid := errors.Wrap(inner, errors.ErrCodeDatabaseError, "lookup failed")
	outer := fmt.Errorf("analyze: %w", mid)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeDatabaseError))
	assert.True(t, errors.IsCode(outer, errors.ErrCodePatentNotFound))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeValidation))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeValidation))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NewNotFoundError("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodePatentNotFound, "x")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("wrapped: %w", errors.NewNotFoundError("x"))))
	assert.False(t, errors.IsNotFound(errors.NewValidationError("x")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, errors.IsValidation(errors.NewValidationError("x")))
	assert.True(t, errors.IsUpstream(errors.NewUpstreamError(stderrors.New("x"), "y")))
	assert.True(t, errors.IsUpstream(errors.New(errors.ErrCodeAIInferenceFailed, "y")))
	assert.True(t, errors.IsCode(errors.NewSerializationError(nil, "x"), errors.ErrCodeSerialization))
	assert.True(t, errors.IsCode(errors.Internal("x"), errors.ErrCodeInternal))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeCacheError,
		errors.GetCode(fmt.Errorf("ctx: %w", errors.New(errors.ErrCodeCacheError, "x"))))
}
