// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes data with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeRawJSON writes an already-encoded JSON body.
func writeRawJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// writeAppError maps err to its status.  Client errors carry their own
// message; server errors get the generic message for their code and the full
// error is logged instead.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	log := logger.WithContext(r.Context()).WithError(err)

	resp := ErrorResponse{Code: code.String(), Message: errors.DefaultMessageForCode(code)}
	if status < http.StatusInternalServerError {
		var ae *errors.AppError
		if errors.As(err, &ae) {
			resp.Message = ae.Message
			if ae.Detail != "" {
				resp.Message += ": " + ae.Detail
			}
		}
		log.Debug("Request rejected", logging.Int("status", status))
	} else {
		log.Error("Request failed", logging.Int("status", status))
	}
	writeJSON(w, status, resp)
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Code:    errors.ErrCodeNotFound.String(),
		Message: "route not found",
	})
}

// MethodNotAllowed is the router's fallback for known paths with the wrong
// method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Code:    errors.ErrCodeBadRequest.String(),
		Message: "method not allowed",
	})
}
