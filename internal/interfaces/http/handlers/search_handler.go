package handlers

import (
	"net/http"

	"github.com/BillWilson/pat-checker/internal/application/infringement"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
)

// HeaderCache reports whether /api/search was answered from cache.
const HeaderCache = "X-Cache"

// SearchHandler serves infringement analyses.
type SearchHandler struct {
	svc    infringement.Service
	logger logging.Logger
}

// NewSearchHandler returns a SearchHandler backed by svc.
func NewSearchHandler(svc infringement.Service, logger logging.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// Search handles GET /api/search?patent_id=&company_name=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.Analyze(r.Context(), infringement.AnalyzeInput{
		PatentID:    q.Get("patent_id"),
		CompanyName: q.Get("company_name"),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	if out.Cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	writeRawJSON(w, http.StatusOK, out.Body)
}
