package google

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// matchingRows returns the zero based indexes of the rows whose first cell is
// id. Sheets may hand numbers back as "42" or "42.0".
func matchingRows(values [][]any, id int64) []int {
	var rows []int
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if v, ok := parseID(fmt.Sprint(row[0])); ok && v == id {
			rows = append(rows, i)
		}
	}
	return rows
}

func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

func parseLedger(values [][]any) []sheets.LedgerRow {
	out := make([]sheets.LedgerRow, 0, len(values))
	for _, v := range values {
		if r, ok := sheets.ParseLedgerRow(toStrings(v)); ok {
			out = append(out, r)
		}
	}
	return out
}

func findSheetID(list []*gsheet.Sheet, title string) (int64, bool) {
	for _, s := range list {
		if s == nil || s.Properties == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s.Properties.Title), strings.TrimSpace(title)) {
			return s.Properties.SheetId, true
		}
	}
	return 0, false
}
