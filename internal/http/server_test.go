package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type testEnv struct {
	t      *testing.T
	server *Server
}

func newTestEnv(t *testing.T, authRateLimit int) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, authRateLimit, memory.New())
}

func newTestEnvWithStore(t *testing.T, authRateLimit int, store storage.Store) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokenIssuer("http-test-secret-0123456789", 5*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	summaryCache := services.NewSummaryCache(32, time.Minute)
	summaries := services.NewSummaryService(store, summaryCache)
	opts := []services.Option{services.WithChangeListener(summaries)}

	srv, err := NewServer(Services{
		Users:        services.NewUserService(store, tokens),
		Categories:   services.NewCategoryService(store, opts...),
		Transactions: services.NewTransactionService(store, opts...),
		Budgets:      services.NewBudgetService(store, opts...),
		Summaries:    summaries,
	}, Options{
		Tokens:        tokens,
		Store:         store,
		Logger:        log.New(log.Config{Level: slog.LevelError, Output: io.Discard}),
		AuthRateLimit: authRateLimit,
		SummaryCache:  summaryCache,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{t: t, server: srv}
}

// do sends body as JSON unless it is already a string.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rr, req)
	return rr
}

// user registers username and returns an access token for it.
func (e *testEnv) user(username string) string {
	e.t.Helper()
	rr := e.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	})
	if rr.Code != http.StatusCreated {
		e.t.Fatalf("register %s: %d %s", username, rr.Code, rr.Body)
	}
	rr = e.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": username, "password": "s3cret-pass"})
	if rr.Code != http.StatusOK {
		e.t.Fatalf("login %s: %d %s", username, rr.Code, rr.Body)
	}
	var pair auth.TokenPair
	decode(e.t, rr, &pair)
	return pair.Access
}

func (e *testEnv) category(token, name, typ string) int64 {
	e.t.Helper()
	rr := e.do(http.MethodPost, "/api/categories", token, map[string]string{"name": name, "type": typ})
	if rr.Code != http.StatusCreated {
		e.t.Fatalf("create category: %d %s", rr.Code, rr.Body)
	}
	var out struct{ ID int64 }
	decode(e.t, rr, &out)
	return out.ID
}

func (e *testEnv) transaction(token string, category int64, amount, date string) int64 {
	e.t.Helper()
	rr := e.do(http.MethodPost, "/api/transactions", token, map[string]any{
		"category": category, "amount": amount, "date": date,
	})
	if rr.Code != http.StatusCreated {
		e.t.Fatalf("create transaction: %d %s", rr.Code, rr.Body)
	}
	var out struct{ ID int64 }
	decode(e.t, rr, &out)
	return out.ID
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestSystemEndpoints(t *testing.T) {
	e := newTestEnv(t, 0)

	if rr := e.do(http.MethodGet, "/healthz", "", nil); rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body)
	}
	if rr := e.do(http.MethodGet, "/readyz", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rr.Code)
	}

	rr := e.do(http.MethodGet, "/api/", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("api root: %d", rr.Code)
	}
	var root map[string]string
	decode(t, rr, &root)
	if root["categories"] != "http://example.com/api/categories/" {
		t.Fatalf("unexpected root document %v", root)
	}
	if rr.Header().Get("X-Request-ID") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing tracing or security headers: %v", rr.Header())
	}

	rr = e.do(http.MethodGet, "/metrics", "", nil)
	if !strings.Contains(rr.Body.String(), "http_requests_total") || !strings.Contains(rr.Body.String(), "summary_cache_entries") {
		t.Fatalf("unexpected metrics body %s", rr.Body)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	e := newTestEnv(t, 0)
	for _, path := range []string{"/api/categories", "/api/transactions/", "/api/budgets", "/api/summary", "/api/transactions/stats"} {
		t.Run(path, func(t *testing.T) {
			if rr := e.do(http.MethodGet, path, "", nil); rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestRegistrationAndTokens(t *testing.T) {
	e := newTestEnv(t, 0)

	rr := e.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw-123456",
		"firstName": "Alice", "lastName": "Liddell",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rr.Code, rr.Body)
	}
	var created struct {
		Message string
		User    registeredUser
	}
	decode(t, rr, &created)
	if created.Message != "User created successfully" || created.User.FirstName != "Alice" || created.User.ID == 0 {
		t.Fatalf("unexpected register body %+v", created)
	}

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"duplicate username", map[string]string{"username": "alice", "email": "other@example.com", "password": "x"}, `{"error":"Username already exists"}`},
		{"duplicate email", map[string]string{"username": "bob", "email": "alice@example.com", "password": "x"}, `{"error":"Email already exists"}`},
		{"missing password", map[string]string{"username": "carol", "email": "carol@example.com"}, `{"error":"Username, email, and password are required"}`},
		{"password too long", map[string]string{"username": "dave", "email": "dave@example.com", "password": strings.Repeat("p", 80)}, `{"error":"Password must be at most 72 bytes long"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(http.MethodPost, "/api/register", "", tt.body)
			if rr.Code != http.StatusBadRequest || strings.TrimSpace(rr.Body.String()) != tt.want {
				t.Fatalf("expected 400 %s, got %d %s", tt.want, rr.Code, rr.Body)
			}
		})
	}

	if rr := e.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "alice", "password": "nope"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rr.Code)
	}
	rr = e.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "alice"})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"password":["This field is required."]`) {
		t.Fatalf("missing password: %d %s", rr.Code, rr.Body)
	}

	rr = e.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "alice", "password": "pw-123456"})
	var pair auth.TokenPair
	decode(t, rr, &pair)

	rr = e.do(http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	var refreshed map[string]string
	decode(t, rr, &refreshed)
	if rr.Code != http.StatusOK || refreshed["access"] == "" {
		t.Fatalf("refresh: %d %s", rr.Code, rr.Body)
	}
	if rr := e.do(http.MethodGet, "/api/categories", refreshed["access"], nil); rr.Code != http.StatusOK {
		t.Fatalf("refreshed access token rejected: %d", rr.Code)
	}
	if rr := e.do(http.MethodPost, "/api/auth/token/refresh", "", map[string]string{"refresh": pair.Access}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("access token must not refresh, got %d", rr.Code)
	}
}

type brokenUserStore struct {
	*memory.Store
}

func (brokenUserStore) CreateUser(context.Context, *core.User) error {
	return errors.New("disk full")
}

func TestRegistrationUnexpectedFailure(t *testing.T) {
	e := newTestEnvWithStore(t, 0, brokenUserStore{memory.New()})
	rr := e.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": "erin", "email": "erin@example.com", "password": "pw-123456",
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d %s", rr.Code, rr.Body)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"create user: disk full"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestAuthRateLimit(t *testing.T) {
	e := newTestEnv(t, 2)
	body := map[string]string{"username": "ghost", "password": "x"}
	for i := 0; i < 2; i++ {
		if rr := e.do(http.MethodPost, "/api/auth/token", "", body); rr.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: expected 401, got %d", i, rr.Code)
		}
	}
	rr := e.do(http.MethodPost, "/api/auth/token", "", body)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d %v", rr.Code, rr.Header())
	}
}

func TestCategoryEndpoints(t *testing.T) {
	e := newTestEnv(t, 0)
	alice, bob := e.user("alice"), e.user("bob")

	id := e.category(alice, "Groceries", "expense")

	rr := e.do(http.MethodPost, "/api/categories/", alice, map[string]string{"name": "Groceries", "type": "expense"})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "A category with this name already exists.") {
		t.Fatalf("duplicate name: %d %s", rr.Code, rr.Body)
	}
	// names are unique per owner only
	e.category(bob, "Groceries", "expense")

	rr = e.do(http.MethodPost, "/api/categories", alice, map[string]string{"name": "Misc", "type": "other"})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"type"`) {
		t.Fatalf("invalid type: %d %s", rr.Code, rr.Body)
	}
	rr = e.do(http.MethodPost, "/api/categories", alice, map[string]string{"name": "Misc"})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"type":["This field is required."]`) {
		t.Fatalf("missing type: %d %s", rr.Code, rr.Body)
	}

	path := "/api/categories/" + itoa(id)
	if rr := e.do(http.MethodGet, path, bob, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign category must be hidden, got %d", rr.Code)
	}
	if rr := e.do(http.MethodDelete, path, bob, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign delete must be hidden, got %d", rr.Code)
	}

	rr = e.do(http.MethodPatch, path, alice, map[string]string{"name": "Food"})
	var updated struct{ Name, Type string }
	decode(t, rr, &updated)
	if rr.Code != http.StatusOK || updated.Name != "Food" || updated.Type != "expense" {
		t.Fatalf("patch: %d %+v", rr.Code, updated)
	}
	if rr := e.do(http.MethodPut, path, alice, map[string]string{"name": "Food"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("put without type: expected 400, got %d", rr.Code)
	}

	e.transaction(alice, id, "12.50", "2024-03-01")
	if rr := e.do(http.MethodDelete, path, alice, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body)
	}
	rr = e.do(http.MethodGet, "/api/transactions", alice, nil)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("transactions must be removed with their category, got %s", rr.Body)
	}
}

func TestTransactionValidation(t *testing.T) {
	e := newTestEnv(t, 0)
	alice, bob := e.user("alice"), e.user("bob")
	cat := e.category(alice, "Salary", "income")
	bobCat := e.category(bob, "Rent", "expense")

	tests := []struct {
		name  string
		body  any
		field string
		msg   string
	}{
		{"foreign category", map[string]any{"category": bobCat, "amount": "10", "date": "2024-03-01"}, "category", "You can only use your own categories."},
		{"unknown category", map[string]any{"category": 9999, "amount": "10", "date": "2024-03-01"}, "category", "You can only use your own categories."},
		{"zero amount", map[string]any{"category": cat, "amount": "0", "date": "2024-03-01"}, "amount", "Amount must be positive."},
		{"negative amount", map[string]any{"category": cat, "amount": -5, "date": "2024-03-01"}, "amount", "Amount must be positive."},
		{"too many decimals", map[string]any{"category": cat, "amount": "1.234", "date": "2024-03-01"}, "amount", msgDecimalPlaces},
		{"not a number", map[string]any{"category": cat, "amount": "ten", "date": "2024-03-01"}, "amount", msgInvalidNumber},
		{"bad date", map[string]any{"category": cat, "amount": "10", "date": "01/03/2024"}, "date", msgInvalidDate},
		{"missing date", map[string]any{"category": cat, "amount": "10"}, "date", msgRequired},
		{"missing category", map[string]any{"amount": "10", "date": "2024-03-01"}, "category", msgRequired},
		{"malformed json", `{"amount":`, nonFieldErrors, detailMalformedJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(http.MethodPost, "/api/transactions", alice, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body)
			}
			var body map[string][]string
			decode(t, rr, &body)
			if len(body[tt.field]) == 0 || body[tt.field][0] != tt.msg {
				t.Fatalf("expected %s: %q, got %v", tt.field, tt.msg, body)
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	e := newTestEnv(t, 0)
	alice, bob := e.user("alice"), e.user("bob")
	cat := e.category(alice, "Groceries", "expense")

	rr := e.do(http.MethodPost, "/api/transactions", alice, map[string]any{
		"category": cat, "amount": 19.9, "date": "2024-03-02", "note": "market",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body)
	}
	var tx struct {
		ID           int64
		Amount       string
		Note         *string
		CategoryName string `json:"category_name"`
		CategoryType string `json:"category_type"`
	}
	decode(t, rr, &tx)
	if tx.Amount != "19.90" || tx.CategoryName != "Groceries" || tx.CategoryType != "expense" || tx.Note == nil {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	path := "/api/transactions/" + itoa(tx.ID)
	if rr := e.do(http.MethodGet, path, bob, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign transaction must be hidden, got %d", rr.Code)
	}

	rr = e.do(http.MethodPatch, path, alice, map[string]any{"amount": "25", "note": nil})
	decode(t, rr, &tx)
	if rr.Code != http.StatusOK || tx.Amount != "25.00" || tx.Note != nil {
		t.Fatalf("patch: %d %+v", rr.Code, tx)
	}

	if rr := e.do(http.MethodDelete, path, alice, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, path, alice, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestTransactionFilters(t *testing.T) {
	e := newTestEnv(t, 0)
	alice, bob := e.user("alice"), e.user("bob")
	salary := e.category(alice, "Salary", "income")
	food := e.category(alice, "Food", "expense")
	bobCat := e.category(bob, "Food", "expense")
	e.transaction(alice, salary, "1000", "2024-03-01")
	e.transaction(alice, food, "20", "2024-03-05")
	e.transaction(alice, food, "35", "2024-04-02")

	count := func(t *testing.T, query string) int {
		t.Helper()
		rr := e.do(http.MethodGet, "/api/transactions?"+query, alice, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", query, rr.Code, rr.Body)
		}
		var out []json.RawMessage
		decode(t, rr, &out)
		return len(out)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"type=expense", 2},
		{"category=" + itoa(food), 2},
		{"category=" + itoa(bobCat), 0},
		{"category=abc", 0},
		{"start_date=2024-03-01&end_date=2024-03-31", 2},
		{"min_amount=20&max_amount=35", 2},
		{"ordering=bogus", 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := count(t, tt.query); got != tt.want {
				t.Fatalf("expected %d results, got %d", tt.want, got)
			}
		})
	}

	rr := e.do(http.MethodGet, "/api/transactions?ordering=amount", alice, nil)
	var ordered []struct{ Amount string }
	decode(t, rr, &ordered)
	if ordered[0].Amount != "20.00" || ordered[2].Amount != "1000.00" {
		t.Fatalf("unexpected ordering %+v", ordered)
	}

	for _, q := range []string{"start_date=yesterday", "min_amount=lots", "type=transfer"} {
		if rr := e.do(http.MethodGet, "/api/transactions?"+q, alice, nil); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestTransactionPagination(t *testing.T) {
	e := newTestEnv(t, 0)
	alice := e.user("alice")
	cat := e.category(alice, "Food", "expense")
	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		e.transaction(alice, cat, "5", d)
	}

	rr := e.do(http.MethodGet, "/api/transactions?page_size=2", alice, nil)
	var first page[struct{ Date string }]
	decode(t, rr, &first)
	if first.Count != 3 || len(first.Results) != 2 || first.Next == nil || first.Previous != nil {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Results[0].Date != "2024-03-03" {
		t.Fatalf("expected newest first, got %s", first.Results[0].Date)
	}
	if !strings.Contains(*first.Next, "page=2") {
		t.Fatalf("unexpected next link %s", *first.Next)
	}

	rr = e.do(http.MethodGet, "/api/transactions?page_size=2&page=2", alice, nil)
	var second page[struct{ Date string }]
	decode(t, rr, &second)
	if len(second.Results) != 1 || second.Next != nil || second.Previous == nil {
		t.Fatalf("unexpected second page %+v", second)
	}

	for _, q := range []string{"page=9", "page=0", "page=x"} {
		rr := e.do(http.MethodGet, "/api/transactions?"+q, alice, nil)
		if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), detailInvalidPage) {
			t.Fatalf("%s: expected invalid page, got %d %s", q, rr.Code, rr.Body)
		}
	}
}

func TestBudgetEndpoints(t *testing.T) {
	e := newTestEnv(t, 0)
	alice := e.user("alice")

	rr := e.do(http.MethodPost, "/api/budgets", alice, map[string]any{"year": 2024, "month": 3, "amount": "200"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body)
	}
	var b struct {
		ID     int64
		Amount string
	}
	decode(t, rr, &b)

	rr = e.do(http.MethodPost, "/api/budgets", alice, map[string]any{"year": 2024, "month": 3, "amount": "100"})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "A budget for this month already exists.") {
		t.Fatalf("duplicate: %d %s", rr.Code, rr.Body)
	}

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"month 13", map[string]any{"year": 2024, "month": 13, "amount": "1"}, "month"},
		{"negative amount", map[string]any{"year": 2024, "month": 4, "amount": "-1"}, "amount"},
		{"year as text", `{"year":"soon","month":4,"amount":"1"}`, "year"},
		{"missing month", map[string]any{"year": 2024, "amount": "1"}, "month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(http.MethodPost, "/api/budgets", alice, tt.body)
			var body map[string][]string
			decode(t, rr, &body)
			if rr.Code != http.StatusBadRequest || len(body[tt.field]) == 0 {
				t.Fatalf("expected 400 on %s, got %d %v", tt.field, rr.Code, body)
			}
		})
	}

	rr = e.do(http.MethodGet, "/api/budgets?year=2024&month=3", alice, nil)
	var list []json.RawMessage
	decode(t, rr, &list)
	if len(list) != 1 {
		t.Fatalf("expected one budget, got %d", len(list))
	}

	path := "/api/budgets/" + itoa(b.ID)
	rr = e.do(http.MethodPatch, path, alice, map[string]any{"amount": "250.5"})
	decode(t, rr, &b)
	if rr.Code != http.StatusOK || b.Amount != "250.50" {
		t.Fatalf("patch: %d %+v", rr.Code, b)
	}
	if rr := e.do(http.MethodDelete, path, alice, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	e := newTestEnv(t, 0)
	alice, bob := e.user("alice"), e.user("bob")
	salary := e.category(alice, "Salary", "income")
	food := e.category(alice, "Food", "expense")
	e.transaction(alice, salary, "100.00", "2024-03-01")
	e.transaction(alice, food, "40.00", "2024-03-15")
	e.transaction(alice, food, "99.00", "2024-04-01")
	if rr := e.do(http.MethodPost, "/api/budgets", alice, map[string]any{"year": 2024, "month": 3, "amount": "200.00"}); rr.Code != http.StatusCreated {
		t.Fatalf("budget: %d", rr.Code)
	}

	type summary struct {
		TotalIncome    string  `json:"total_income"`
		TotalExpenses  string  `json:"total_expenses"`
		Balance        string  `json:"balance"`
		MonthlyBudget  *string `json:"monthly_budget"`
		BudgetVariance *string `json:"budget_variance"`
		ByCategory     []struct {
			CategoryName string `json:"category_name"`
		} `json:"by_category"`
	}

	rr := e.do(http.MethodGet, "/api/summary?year=2024&month=3", alice, nil)
	var s summary
	decode(t, rr, &s)
	if s.TotalIncome != "100.00" || s.TotalExpenses != "40.00" || s.Balance != "60.00" {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.MonthlyBudget == nil || *s.MonthlyBudget != "200.00" || s.BudgetVariance == nil || *s.BudgetVariance != "160.00" {
		t.Fatalf("unexpected budget fields %+v", s)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("expected one line per transaction, got %d", len(s.ByCategory))
	}

	// a write must not be hidden by the cached summary
	e.transaction(alice, food, "10.00", "2024-03-20")
	rr = e.do(http.MethodGet, "/api/summary/?year=2024&month=3", alice, nil)
	decode(t, rr, &s)
	if s.TotalExpenses != "50.00" {
		t.Fatalf("stale summary %+v", s)
	}

	rr = e.do(http.MethodGet, "/api/summary?year=2024&month=3", bob, nil)
	decode(t, rr, &s)
	if s.TotalIncome != "0.00" || s.MonthlyBudget != nil || s.BudgetVariance != nil {
		t.Fatalf("other owners must see nothing, got %+v", s)
	}

	for _, q := range []string{"year=abc", "month=13", "year=2024&month=0"} {
		rr := e.do(http.MethodGet, "/api/summary?"+q, alice, nil)
		if rr.Code != http.StatusBadRequest || strings.TrimSpace(rr.Body.String()) != `{"error":"Invalid year or month"}` {
			t.Fatalf("%s: got %d %s", q, rr.Code, rr.Body)
		}
	}
}

func TestDailyStatsEndpoint(t *testing.T) {
	e := newTestEnv(t, 0)
	alice := e.user("alice")
	salary := e.category(alice, "Salary", "income")
	food := e.category(alice, "Food", "expense")
	e.transaction(alice, food, "5", "2024-03-02")
	e.transaction(alice, salary, "50", "2024-03-01")
	e.transaction(alice, food, "7", "2024-03-02")

	rr := e.do(http.MethodGet, "/api/transactions/stats?start=2024-03-01&end=2024-03-31", alice, nil)
	var stats []struct {
		Day           string  `json:"day"`
		TotalIncome   *string `json:"total_income"`
		TotalExpenses *string `json:"total_expenses"`
	}
	decode(t, rr, &stats)
	if len(stats) != 2 || stats[0].Day != "2024-03-01" || stats[1].TotalExpenses == nil || *stats[1].TotalExpenses != "12.00" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats[1].TotalIncome != nil {
		t.Fatalf("day without income must report null, got %s", *stats[1].TotalIncome)
	}

	if rr := e.do(http.MethodGet, "/api/transactions/stats?start=march", alice, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t, 0)
	rr := e.do(http.MethodGet, "/nowhere", "", nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), detailNotFound) {
		t.Fatalf("expected JSON 404, got %d %s", rr.Code, rr.Body)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
