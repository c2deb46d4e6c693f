package csvimport

import (
	"strings"
)

// contentSeparator joins fields into the exact content key. The ASCII unit
// separator does not occur in spreadsheet exports.
const contentSeparator = "\x1f"

// KeyFunc returns the normalized business key of a row, or "" when the row
// has none.
type KeyFunc func(row []string) string

// Result is the outcome of Deduplicate.
type Result struct {
	Rows    [][]string
	Skipped int
}

// Deduplicate drops repeated data rows in a single pass, keeping the first
// occurrence. A row is skipped when its exact content was already seen, or
// when its business key is non-empty and was already seen. The header row
// must be removed by the caller. Accepted rows keep their input order.
func Deduplicate(rows [][]string, keyFn KeyFunc) Result {
	contentSeen := make(map[string]struct{}, len(rows))
	keySeen := make(map[string]struct{}, len(rows))
	out := Result{Rows: make([][]string, 0, len(rows))}

	for _, row := range rows {
		content := ContentKey(row)
		if _, dup := contentSeen[content]; dup {
			out.Skipped++
			continue
		}

		key := ""
		if keyFn != nil {
			key = keyFn(row)
		}
		if key != "" {
			if _, dup := keySeen[key]; dup {
				out.Skipped++
				continue
			}
			keySeen[key] = struct{}{}
		}

		contentSeen[content] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// ContentKey is the exact-content identity of a row.
func ContentKey(row []string) string {
	return strings.Join(row, contentSeparator)
}

// LowerTrimKey keys rows by the lower-cased, trimmed value of column col.
// Rows too short to have the column have no key.
func LowerTrimKey(col int) KeyFunc {
	return func(row []string) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(row[col]))
	}
}

// FirstNonEmptyKey tries each key function in order and returns the first
// non-empty key, e.g. email falling back to name.
func FirstNonEmptyKey(fns ...KeyFunc) KeyFunc {
	return func(row []string) string {
		for _, fn := range fns {
			if k := fn(row); k != "" {
				return k
			}
		}
		return ""
	}
}

// ColumnIndex finds a header column by case-insensitive name, -1 if absent.
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}
