package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

const (
	msgRequired      = "This field is required."
	msgNotNull       = "This field may not be null."
	msgInvalidInt    = "A valid integer is required."
	msgInvalidNumber = "A valid number is required."
	msgInvalidDate   = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgInvalidString = "Not a valid string."
	msgDecimalPlaces = "Ensure that there are no more than 2 decimal places."
	msgMaxDigits     = "Ensure that there are no more than 12 digits in total."
	msgEnterDate     = "Enter a valid date."
	msgEnterNumber   = "Enter a number."
)

// decodeJSON reads the request body into dst. Type mismatches come back as
// field errors, anything else unreadable as a non field error.
func decodeJSON(r *http.Request, dst any) fieldErrors {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			msg := msgInvalidString
			if typeErr.Type != nil {
				switch typeErr.Type.Kind() {
				case reflect.Int, reflect.Int64:
					msg = msgInvalidInt
				}
			}
			return fieldErrors{typeErr.Field: {msg}}
		}
		if errors.Is(err, io.EOF) {
			return fieldErrors{nonFieldErrors: {"Request body is empty."}}
		}
		return fieldErrors{nonFieldErrors: {detailMalformedJSON}}
	}
	return nil
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func present(raw json.RawMessage) bool { return len(raw) > 0 }

func isNull(raw json.RawMessage) bool { return strings.TrimSpace(string(raw)) == "null" }

// parseAmount accepts a JSON string or number.
func parseAmount(raw json.RawMessage) (core.Money, string) {
	s := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	if s == "" {
		return core.Money{}, msgInvalidNumber
	}
	m, err := core.ParseMoney(s)
	if err == nil {
		return m, ""
	}
	if _, convErr := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); convErr != nil {
		return core.Money{}, msgInvalidNumber
	}
	if i := strings.IndexAny(s, ".,"); i >= 0 && len(s)-i-1 > 2 {
		return core.Money{}, msgDecimalPlaces
	}
	return core.Money{}, msgMaxDigits
}

func parseDateField(raw json.RawMessage) (core.Date, string) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.Date{}, msgInvalidDate
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, msgInvalidDate
	}
	return d, ""
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type categoryRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
	Type *string `json:"type" validate:"omitempty,oneof=income expense"`
}

// patch converts the request. full requires every field, as POST and PUT do.
func (c categoryRequest) patch(full bool) (services.CategoryPatch, fieldErrors) {
	errs := fieldErrors{}
	if full && c.Name == nil {
		errs.add("name", msgRequired)
	}
	if full && c.Type == nil {
		errs.add("type", msgRequired)
	}
	if len(errs) > 0 {
		return services.CategoryPatch{}, errs
	}
	var p services.CategoryPatch
	p.Name = c.Name
	if c.Type != nil {
		t := core.CategoryType(*c.Type)
		p.Type = &t
	}
	return p, nil
}

type transactionRequest struct {
	Category json.RawMessage `json:"category"`
	Amount   json.RawMessage `json:"amount"`
	Date     json.RawMessage `json:"date"`
	Note     json.RawMessage `json:"note"`
}

func (t transactionRequest) patch(full bool) (services.TransactionPatch, fieldErrors) {
	var p services.TransactionPatch
	errs := fieldErrors{}

	switch {
	case !present(t.Category):
		if full {
			errs.add("category", msgRequired)
		}
	case isNull(t.Category):
		errs.add("category", msgNotNull)
	default:
		var id int64
		if err := json.Unmarshal(t.Category, &id); err != nil {
			errs.add("category", fmt.Sprintf("Incorrect type. Expected pk value, received %s.", jsonKind(t.Category)))
		} else {
			p.CategoryID = &id
		}
	}

	switch {
	case !present(t.Amount):
		if full {
			errs.add("amount", msgRequired)
		}
	case isNull(t.Amount):
		errs.add("amount", msgNotNull)
	default:
		if m, msg := parseAmount(t.Amount); msg != "" {
			errs.add("amount", msg)
		} else {
			p.Amount = &m
		}
	}

	switch {
	case !present(t.Date):
		if full {
			errs.add("date", msgRequired)
		}
	case isNull(t.Date):
		errs.add("date", msgNotNull)
	default:
		if d, msg := parseDateField(t.Date); msg != "" {
			errs.add("date", msg)
		} else {
			p.Date = &d
		}
	}

	switch {
	case !present(t.Note):
	case isNull(t.Note):
		p.ClearNote = true
	default:
		var note string
		if err := json.Unmarshal(t.Note, &note); err != nil {
			errs.add("note", msgInvalidString)
		} else {
			p.Note = &note
		}
	}

	if len(errs) > 0 {
		return services.TransactionPatch{}, errs
	}
	return p, nil
}

func jsonKind(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(s, `"`):
		return "str"
	case strings.HasPrefix(s, "{"):
		return "dict"
	case strings.HasPrefix(s, "["):
		return "list"
	case s == "true" || s == "false":
		return "bool"
	default:
		return "float"
	}
}

type budgetRequest struct {
	Year   *int            `json:"year" validate:"omitempty,min=1,max=9999"`
	Month  *int            `json:"month"`
	Amount json.RawMessage `json:"amount"`
}

func (b budgetRequest) patch(full bool) (services.BudgetPatch, fieldErrors) {
	p := services.BudgetPatch{Year: b.Year, Month: b.Month}
	errs := fieldErrors{}
	if full && b.Year == nil {
		errs.add("year", msgRequired)
	}
	if full && b.Month == nil {
		errs.add("month", msgRequired)
	}
	switch {
	case !present(b.Amount):
		if full {
			errs.add("amount", msgRequired)
		}
	case isNull(b.Amount):
		errs.add("amount", msgNotNull)
	default:
		if m, msg := parseAmount(b.Amount); msg != "" {
			errs.add("amount", msg)
		} else {
			p.Amount = &m
		}
	}
	if len(errs) > 0 {
		return services.BudgetPatch{}, errs
	}
	return p, nil
}

// parseTransactionFilter reads the list query. A category value that is not
// an id cannot match anything, so it sets empty instead of failing.
func parseTransactionFilter(q url.Values) (f core.TransactionFilter, empty bool, errs fieldErrors) {
	errs = fieldErrors{}

	dateParam := func(name string) *core.Date {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			return nil
		}
		d, err := core.ParseDate(v)
		if err != nil {
			errs.add(name, msgEnterDate)
			return nil
		}
		return &d
	}
	moneyParam := func(name string) *core.Money {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			return nil
		}
		m, err := core.ParseMoney(v)
		if err != nil {
			errs.add(name, msgEnterNumber)
			return nil
		}
		return &m
	}

	f.StartDate = dateParam("start_date")
	f.EndDate = dateParam("end_date")
	f.MinAmount = moneyParam("min_amount")
	f.MaxAmount = moneyParam("max_amount")

	if v := strings.TrimSpace(q.Get("category")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			empty = true
		} else {
			f.CategoryID = &id
		}
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := core.CategoryType(v)
		if !t.Valid() {
			errs.add("type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v))
		} else {
			f.Type = t
		}
	}
	if v := strings.TrimSpace(q.Get("ordering")); core.ValidOrdering(v) {
		f.Ordering = v
	}

	if len(errs) == 0 {
		errs = nil
	}
	return f, empty, errs
}

func parseBudgetFilter(q url.Values) (core.BudgetFilter, fieldErrors) {
	var f core.BudgetFilter
	errs := fieldErrors{}
	for _, name := range []string{"year", "month"} {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.add(name, msgEnterNumber)
			continue
		}
		if name == "year" {
			f.Year = &n
		} else {
			f.Month = &n
		}
	}
	if len(errs) > 0 {
		return core.BudgetFilter{}, errs
	}
	return f, nil
}

func parseStatsRange(q url.Values) (start, end *core.Date, errs fieldErrors) {
	errs = fieldErrors{}
	for _, name := range []string{"start", "end"} {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			errs.add(name, msgEnterDate)
			continue
		}
		if name == "start" {
			start = &d
		} else {
			end = &d
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return start, end, nil
}

// pagination is requested by page or page_size. valid is false for a page
// number that is not a positive integer.
type pagination struct {
	enabled bool
	page    int
	size    int
}

func parsePagination(q url.Values) (p pagination, valid bool) {
	rawPage, rawSize := strings.TrimSpace(q.Get("page")), strings.TrimSpace(q.Get("page_size"))
	if rawPage == "" && rawSize == "" {
		return pagination{}, true
	}
	p = pagination{enabled: true, page: 1, size: core.DefaultPageSize}
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if rawPage == "last" {
			n, err = -1, nil
		}
		if err != nil || n == 0 || n < -1 {
			return p, false
		}
		p.page = n
	}
	if n, err := strconv.Atoi(rawSize); err == nil && n > 0 {
		p.size = min(n, core.MaxPageSize)
	}
	return p, true
}

// resolve turns a page request into limit and offset given the total count.
// ok is false when the page lies past the end.
func (p pagination) resolve(count int) (limit, offset, pageNum, pages int, ok bool) {
	pages = (count + p.size - 1) / p.size
	if pages == 0 {
		pages = 1
	}
	pageNum = p.page
	if pageNum == -1 {
		pageNum = pages
	}
	if pageNum > pages {
		return 0, 0, pageNum, pages, false
	}
	return p.size, (pageNum - 1) * p.size, pageNum, pages, true
}
