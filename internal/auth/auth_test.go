package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-with-enough-bytes"

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	i, err := NewTokenIssuer(testSecret, 5*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return i
}

func TestNewTokenIssuerValidation(t *testing.T) {
	if _, err := NewTokenIssuer("short", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
	if _, err := NewTokenIssuer(testSecret, 0, time.Hour); err == nil {
		t.Fatal("expected error for zero access ttl")
	}
}

func TestIssueVerifyAndRefresh(t *testing.T) {
	i := newIssuer(t)
	pair, err := i.Issue(Principal{UserID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := i.Verify(pair.Access, AccessToken)
	if err != nil || p.UserID != 42 || p.Username != "alice" {
		t.Fatalf("unexpected principal %+v err=%v", p, err)
	}

	if _, err := i.Verify(pair.Refresh, AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate requests, got %v", err)
	}
	if _, err := i.Refresh(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	access, err := i.Refresh(pair.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if p, err := i.Verify(access, AccessToken); err != nil || p.UserID != 42 {
		t.Fatalf("refreshed token invalid: %+v err=%v", p, err)
	}
}

func TestVerifyRejectsTamperedAndExpired(t *testing.T) {
	i := newIssuer(t)
	pair, _ := i.Issue(Principal{UserID: 1, Username: "bob"})

	other, _ := NewTokenIssuer("another-secret-of-enough-size", time.Minute, time.Hour)
	if _, err := other.Verify(pair.Access, AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}

	i.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := i.Issue(Principal{UserID: 1, Username: "bob"})
	i.now = time.Now
	if _, err := i.Verify(old.Access, AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("password must not be stored in clear")
	}
	if !CheckPassword(hash, "s3cret!") || CheckPassword(hash, "wrong") {
		t.Fatal("password check mismatch")
	}
}

func TestMiddleware(t *testing.T) {
	i := newIssuer(t)
	pair, _ := i.Issue(Principal{UserID: 7, Username: "carol"})

	var seen Principal
	h := Middleware(i)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authentication credentials were not provided."},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Authentication credentials were not provided."},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, "token_not_valid"},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized, "token_not_valid"},
		{"valid", "Bearer " + pair.Access, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			if tt.body != "" && !strings.Contains(rr.Body.String(), tt.body) {
				t.Fatalf("expected body to contain %q, got %s", tt.body, rr.Body.String())
			}
		})
	}
	if seen.UserID != 7 {
		t.Fatalf("expected principal on context, got %+v", seen)
	}
}
