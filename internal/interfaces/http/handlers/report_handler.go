package handlers

import (
	"bytes"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/BillWilson/pat-checker/internal/application/reporting"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
)

// Pagination response headers of GET /api/list.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderPage       = "X-Page"
	HeaderPerPage    = "X-Per-Page"
)

// ReportHandler serves the report history.
type ReportHandler struct {
	svc    reporting.Service
	logger logging.Logger
}

// NewReportHandler returns a ReportHandler backed by svc.
func NewReportHandler(svc reporting.Service, logger logging.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// List handles GET /api/list?page=N.  The body is a plain JSON array;
// pagination metadata travels in headers.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), parsePage(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	w.Header().Set(HeaderTotalCount, strconv.FormatInt(out.Total, 10))
	w.Header().Set(HeaderPage, strconv.Itoa(out.Page))
	w.Header().Set(HeaderPerPage, strconv.Itoa(out.PageSize))

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range out.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	writeRawJSON(w, http.StatusOK, buf.Bytes())
}

// parsePage reads ?page, falling back to 1 for absent or malformed values.
func parsePage(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	page, err := strconv.Atoi(raw)
	if err != nil {
		// Too large to parse is still past the end.
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return math.MaxInt
		}
		return 1
	}
	if page < 1 {
		return 1
	}
	return page
}
