package http

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleSummary reports the month given by year and month, defaulting to the
// current UTC month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := core.ParsePeriod(q.Get("year"), q.Get("month"), time.Now().UTC())
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, invalidPeriodResponse)
		return
	}
	summary, err := s.svc.Summaries.Summary(r.Context(), ownerID(r), p)
	if err != nil {
		if core.IsKind(err, core.KindInvalidPeriod) {
			writeErrorMessage(w, http.StatusBadRequest, invalidPeriodResponse)
			return
		}
		writeError(w, r, err)
		return
	}
	slog.DebugContext(r.Context(), "Summary served", log.FieldUserID, ownerID(r), log.FieldPeriod, p.String())
	writeJSON(w, http.StatusOK, summary)
}
