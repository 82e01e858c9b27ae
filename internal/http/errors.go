package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	detailNotFound        = "Not found."
	detailInvalidPage     = "Invalid page."
	detailServerError     = "A server error occurred."
	detailBadCredentials  = "No active account found with the given credentials"
	detailInvalidRefresh  = "Token is invalid or expired"
	detailMalformedJSON   = "JSON parse error."
	detailThrottled       = "Request was throttled. Expected available in 60 seconds."
	codeTokenNotValid     = "token_not_valid"
	invalidPeriodResponse = "Invalid year or month"
)

// writeError maps a service error to its HTTP response. Anything not
// recognised is a 500 and gets logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, validationBody(err))
	case errors.Is(err, core.ErrNotFound):
		writeDetail(w, http.StatusNotFound, detailNotFound)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detailInvalidRefresh, "code": codeTokenNotValid})
	case errors.Is(err, core.ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
		writeDetail(w, http.StatusInternalServerError, detailServerError)
	}
}

func validationBody(err error) fieldErrors {
	body := fieldErrors{}
	var ves core.ValidationErrors
	if errors.As(err, &ves) {
		for _, ve := range ves {
			body.add(ve.Field, ve.Message)
		}
		return body
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.add(ve.Field, ve.Message)
	}
	return body
}
