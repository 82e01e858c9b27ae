package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// fieldErrors is the body of a 400: field name to messages.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	if field == "" {
		field = nonFieldErrors
	}
	fe[field] = append(fe[field], msg)
}

const nonFieldErrors = "non_field_errors"

// page is the body of a paginated listing.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "status", status, "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeErrorMessage writes the {"error": msg} shape used by registration and
// the summary endpoint.
func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pageURL returns the absolute URL of the request with page replaced.
func pageURL(r *http.Request, pageNum int) *string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	if pageNum <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(pageNum))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
