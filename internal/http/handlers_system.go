package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const readinessTimeout = 2 * time.Second

// handleRoot lists the resource collections.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"categories":   absoluteURL(r, "/api/categories/"),
		"transactions": absoluteURL(r, "/api/transactions/"),
		"budgets":      absoluteURL(r, "/api/budgets/"),
		"summary":      absoluteURL(r, "/api/summary/"),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var b strings.Builder
	tm := s.tracer.GetMetrics()
	fmt.Fprintf(&b, "http_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(&b, "http_server_errors_total %d\n", tm.ServerErrors)
	fmt.Fprintf(&b, "http_response_time_avg_us %d\n", tm.AverageResponseTime)

	rm := s.limiter.GetMetrics()
	fmt.Fprintf(&b, "rate_limit_hits_total %d\n", rm.TotalHits)
	fmt.Fprintf(&b, "rate_limit_clients %d\n", rm.ClientCount)

	dm := s.detector.GetMetrics()
	fmt.Fprintf(&b, "security_suspicious_requests_total %d\n", dm.SuspiciousRequests)
	fmt.Fprintf(&b, "security_blocked_requests_total %d\n", dm.BlockedRequests)

	for _, cs := range s.caches.Stats() {
		fmt.Fprintf(&b, "%s_cache_entries %d\n", cs.Name, cs.Size)
		fmt.Fprintf(&b, "%s_cache_hits_total %d\n", cs.Name, cs.Hits)
		fmt.Fprintf(&b, "%s_cache_misses_total %d\n", cs.Name, cs.Misses)
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}
