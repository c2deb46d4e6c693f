package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name            string
		rows            [][]string
		keyFn           KeyFunc
		expectedRows    [][]string
		expectedSkipped int
	}{
		{
			name:            "no duplicates",
			rows:            [][]string{{"a@x.com", "Alice"}, {"b@x.com", "Bob"}},
			keyFn:           LowerTrimKey(0),
			expectedRows:    [][]string{{"a@x.com", "Alice"}, {"b@x.com", "Bob"}},
			expectedSkipped: 0,
		},
		{
			name:            "identical content",
			rows:            [][]string{{"a@x.com", "Alice"}, {"a@x.com", "Alice"}},
			keyFn:           nil,
			expectedRows:    [][]string{{"a@x.com", "Alice"}},
			expectedSkipped: 1,
		},
		{
			name:            "same business key different casing",
			rows:            [][]string{{"a@x.com", "Alice"}, {"A@X.COM", "Alicia"}},
			keyFn:           LowerTrimKey(0),
			expectedRows:    [][]string{{"a@x.com", "Alice"}},
			expectedSkipped: 1,
		},
		{
			name:            "empty key never skips on key",
			rows:            [][]string{{"", "Alice"}, {" ", "Bob"}, {"", "Alice"}},
			keyFn:           LowerTrimKey(0),
			expectedRows:    [][]string{{"", "Alice"}, {" ", "Bob"}},
			expectedSkipped: 1,
		},
		{
			name: "order preserved",
			rows: [][]string{
				{"c@x.com", "C"}, {"a@x.com", "A"}, {"C@x.com ", "C2"}, {"b@x.com", "B"},
			},
			keyFn:           LowerTrimKey(0),
			expectedRows:    [][]string{{"c@x.com", "C"}, {"a@x.com", "A"}, {"b@x.com", "B"}},
			expectedSkipped: 1,
		},
		{
			name:            "separator prevents field boundary collisions",
			rows:            [][]string{{"ab", "c"}, {"a", "bc"}},
			keyFn:           nil,
			expectedRows:    [][]string{{"ab", "c"}, {"a", "bc"}},
			expectedSkipped: 0,
		},
		{
			name:            "empty input",
			rows:            nil,
			keyFn:           LowerTrimKey(0),
			expectedRows:    [][]string{},
			expectedSkipped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Deduplicate(tt.rows, tt.keyFn)
			assert.Equal(t, tt.expectedRows, res.Rows)
			assert.Equal(t, tt.expectedSkipped, res.Skipped)
			assert.Equal(t, len(tt.rows), len(res.Rows)+res.Skipped)
		})
	}
}

func TestFirstNonEmptyKey(t *testing.T) {
	keyFn := FirstNonEmptyKey(LowerTrimKey(1), LowerTrimKey(0))
	res := Deduplicate([][]string{
		{"Alice", ""},
		{" alice ", ""},
		{"Bob", "bob@x.com"},
		{"Robert", "BOB@x.com"},
	}, keyFn)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Alice", res.Rows[0][0])
	assert.Equal(t, "Bob", res.Rows[1][0])
	assert.Equal(t, 2, res.Skipped)
}

func TestLowerTrimKey_ShortRow(t *testing.T) {
	assert.Equal(t, "", LowerTrimKey(3)([]string{"a"}))
	assert.Equal(t, "", LowerTrimKey(-1)([]string{"a"}))
}

func TestColumnIndex(t *testing.T) {
	header := []string{"\ufeffName", " Email ", "phone"}
	assert.Equal(t, 0, ColumnIndex(header, "name"))
	assert.Equal(t, 1, ColumnIndex(header, "email"))
	assert.Equal(t, 2, ColumnIndex(header, "Phone"))
	assert.Equal(t, -1, ColumnIndex(header, "company"))
}
