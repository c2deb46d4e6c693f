package types

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestResolveTimezone(t *testing.T) {
	assert.Equal(t, "Asia/Kolkata", ResolveTimezone("ist"))
	assert.Equal(t, "Europe/Paris", ResolveTimezone("Europe/Paris"))
	assert.NoError(t, ValidateTimezone("PST"))
	assert.Error(t, ValidateTimezone("Mars/Olympus"))
}

func TestBusinessDate(t *testing.T) {
	loc := LoadBusinessLocation("Asia/Tokyo")
	// 20:00 UTC on Mar 1 is already Mar 2 in Tokyo.
	instant := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), BusinessDate(instant, loc))
	assert.Equal(t, time.UTC, LoadBusinessLocation("not/a-zone"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(nil))
	assert.Equal(t, "2024-02-01", FormatDate(lo.ToPtr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))
}
