package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantMsg string
	}{
		{"string", `"12.5"`, "12.50", ""},
		{"number", `12`, "12.00", ""},
		{"comma separator", `"3,75"`, "3.75", ""},
		{"negative passes through", `"-4.00"`, "-4.00", ""},
		{"not a number", `"abc"`, "", msgInvalidNumber},
		{"empty string", `""`, "", msgInvalidNumber},
		{"too many decimals", `"1.234"`, "", msgDecimalPlaces},
		{"too many digits", `"12345678901234"`, "", msgMaxDigits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, msg := parseAmount(json.RawMessage(tt.raw))
			if msg != tt.wantMsg {
				t.Fatalf("message = %q, want %q", msg, tt.wantMsg)
			}
			if tt.wantMsg == "" && m.String() != tt.want {
				t.Errorf("amount = %s, want %s", m, tt.want)
			}
		})
	}
}

func TestParseDateField(t *testing.T) {
	if d, msg := parseDateField(json.RawMessage(`"2024-03-15"`)); msg != "" || d.String() != "2024-03-15" {
		t.Fatalf("unexpected date %s msg=%q", d, msg)
	}
	for _, raw := range []string{`"15/03/2024"`, `20240315`, `"2024-02-30"`} {
		if _, msg := parseDateField(json.RawMessage(raw)); msg != msgInvalidDate {
			t.Errorf("%s: message = %q, want %q", raw, msg, msgInvalidDate)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"empty body", "", nonFieldErrors, "Request body is empty."},
		{"malformed", "{", nonFieldErrors, "JSON parse error."},
		{"wrong int type", `{"year":"soon"}`, "year", msgInvalidInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst budgetRequest
			errs := decodeJSON(req, &dst)
			if len(errs[tt.field]) == 0 || !strings.Contains(errs[tt.field][0], tt.msg) {
				t.Fatalf("expected %s error %q, got %v", tt.field, tt.msg, errs)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"year":2024,"month":3,"amount":"10"}`))
	var dst budgetRequest
	if errs := decodeJSON(req, &dst); errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
	if dst.Year == nil || *dst.Year != 2024 || dst.Month == nil || *dst.Month != 3 {
		t.Fatalf("unexpected decode %+v", dst)
	}
}

func TestParseTransactionFilter(t *testing.T) {
	q := url.Values{
		"start_date": {"2024-03-01"},
		"end_date":   {"2024-03-31"},
		"min_amount": {"10"},
		"category":   {"7"},
		"type":       {"expense"},
		"ordering":   {"-amount"},
	}
	f, empty, errs := parseTransactionFilter(q)
	if errs != nil || empty {
		t.Fatalf("unexpected errs=%v empty=%v", errs, empty)
	}
	if f.StartDate == nil || f.StartDate.String() != "2024-03-01" || f.EndDate == nil {
		t.Errorf("dates not parsed: %+v", f)
	}
	if f.MinAmount == nil || f.MinAmount.String() != "10.00" || f.MaxAmount != nil {
		t.Errorf("amounts not parsed: %+v", f)
	}
	if f.CategoryID == nil || *f.CategoryID != 7 || f.Type != "expense" || f.Ordering != "-amount" {
		t.Errorf("unexpected filter %+v", f)
	}

	t.Run("category that is not an id matches nothing", func(t *testing.T) {
		_, empty, errs := parseTransactionFilter(url.Values{"category": {"food"}})
		if !empty || errs != nil {
			t.Fatalf("expected empty result, got empty=%v errs=%v", empty, errs)
		}
	})

	t.Run("unknown ordering is ignored", func(t *testing.T) {
		f, _, errs := parseTransactionFilter(url.Values{"ordering": {"password"}})
		if errs != nil || f.Ordering != "" {
			t.Fatalf("expected ordering dropped, got %q errs=%v", f.Ordering, errs)
		}
	})

	t.Run("malformed values are field errors", func(t *testing.T) {
		_, _, errs := parseTransactionFilter(url.Values{
			"start_date": {"yesterday"},
			"max_amount": {"lots"},
			"type":       {"transfer"},
		})
		if errs["start_date"][0] != msgEnterDate || errs["max_amount"][0] != msgEnterNumber {
			t.Errorf("unexpected errors %v", errs)
		}
		if !strings.Contains(errs["type"][0], "transfer is not one of the available choices") {
			t.Errorf("unexpected type error %v", errs["type"])
		}
	})
}

func TestParseBudgetFilterAndStatsRange(t *testing.T) {
	f, errs := parseBudgetFilter(url.Values{"year": {"2024"}})
	if errs != nil || f.Year == nil || *f.Year != 2024 || f.Month != nil {
		t.Fatalf("unexpected budget filter %+v errs=%v", f, errs)
	}
	if _, errs := parseBudgetFilter(url.Values{"month": {"march"}}); errs["month"][0] != msgEnterNumber {
		t.Fatalf("expected month error, got %v", errs)
	}

	start, end, errs := parseStatsRange(url.Values{"start": {"2024-03-01"}})
	if errs != nil || start == nil || end != nil {
		t.Fatalf("unexpected range %v %v errs=%v", start, end, errs)
	}
	if _, _, errs := parseStatsRange(url.Values{"end": {"03/2024"}}); errs["end"][0] != msgEnterDate {
		t.Fatalf("expected end error, got %v", errs)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		count     int
		valid     bool
		enabled   bool
		ok        bool
		limit     int
		offset    int
		pageNum   int
		pageCount int
	}{
		{"disabled without params", url.Values{}, 50, true, false, false, 0, 0, 0, 0},
		{"first page default size", url.Values{"page": {"1"}}, 50, true, true, true, 20, 0, 1, 3},
		{"size only", url.Values{"page_size": {"5"}}, 12, true, true, true, 5, 0, 1, 3},
		{"size capped", url.Values{"page_size": {"1000"}}, 150, true, true, true, 100, 0, 1, 2},
		{"last page", url.Values{"page": {"last"}, "page_size": {"10"}}, 25, true, true, true, 10, 20, 3, 3},
		{"empty result has one page", url.Values{"page": {"1"}}, 0, true, true, true, 20, 0, 1, 1},
		{"past the end", url.Values{"page": {"4"}}, 50, true, true, false, 0, 0, 4, 3},
		{"zero page", url.Values{"page": {"0"}}, 50, false, true, false, 0, 0, 0, 0},
		{"not a number", url.Values{"page": {"two"}}, 50, false, true, false, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, valid := parsePagination(tt.query)
			if valid != tt.valid || p.enabled != tt.enabled {
				t.Fatalf("valid=%v enabled=%v, want %v %v", valid, p.enabled, tt.valid, tt.enabled)
			}
			if !valid || !p.enabled {
				return
			}
			limit, offset, pageNum, pages, ok := p.resolve(tt.count)
			if ok != tt.ok || pageNum != tt.pageNum || pages != tt.pageCount {
				t.Fatalf("ok=%v page=%d pages=%d, want %v %d %d", ok, pageNum, pages, tt.ok, tt.pageNum, tt.pageCount)
			}
			if ok && (limit != tt.limit || offset != tt.offset) {
				t.Errorf("limit=%d offset=%d, want %d %d", limit, offset, tt.limit, tt.offset)
			}
		})
	}
}

func TestPageURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.test/api/transactions?page=2&type=expense", nil)
	if got := *pageURL(req, 3); got != "http://api.test/api/transactions?page=3&type=expense" {
		t.Errorf("next = %s", got)
	}
	if got := *pageURL(req, 1); got != "http://api.test/api/transactions?type=expense" {
		t.Errorf("first page should drop the page param, got %s", got)
	}
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := absoluteURL(req, "/api/budgets/"); got != "https://api.test/api/budgets/" {
		t.Errorf("absolute = %s", got)
	}
}
