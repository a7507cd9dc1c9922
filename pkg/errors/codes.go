package errors

import (
	"net/http"
	"strings"
)

// ErrorCode identifies a failure category.  Codes are "<MODULE>_<NNN>".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeUpstream           ErrorCode = "COMMON_014"
)

// Patent module
const (
	ErrCodePatentNotFound    ErrorCode = "PAT_001"
	ErrCodePatentParseFailed ErrorCode = "PAT_006"
)

// Product module
const (
	ErrCodeProductImportFailed ErrorCode = "PRD_001"
)

// AI module
const (
	ErrCodeAIInferenceFailed ErrorCode = "AI_002"
	ErrCodeAIInputInvalid    ErrorCode = "AI_004"
)

const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = ""
)

// ErrorCodeHTTPStatus maps codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeUpstream:           http.StatusBadGateway,

	ErrCodePatentNotFound:    http.StatusNotFound,
	ErrCodePatentParseFailed: http.StatusBadRequest,

	ErrCodeProductImportFailed: http.StatusInternalServerError,

	ErrCodeAIInferenceFailed: http.StatusBadGateway,
	ErrCodeAIInputInvalid:    http.StatusBadRequest,
}

// ErrorCodeMessage maps codes to the generic message used when the real one
// must not reach the client.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "failed to produce analysis result",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeUpstream:           "upstream service error",

	ErrCodePatentNotFound:    "patent not found",
	ErrCodePatentParseFailed: "failed to parse patent record",

	ErrCodeProductImportFailed: "failed to import product",

	ErrCodeAIInferenceFailed: "AI inference failed",
	ErrCodeAIInputInvalid:    "invalid input for AI model",
}

// HTTPStatusForCode returns the HTTP status for code, 500 when unmapped.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the generic message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of code.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
