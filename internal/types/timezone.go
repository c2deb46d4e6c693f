package types

import (
	"strings"
	"time"
)

// timezoneAliases maps the abbreviations operators tend to type into the
// config file to IANA identifiers.
var timezoneAliases = map[string]string{
	"UTC":  "UTC",
	"GMT":  "Europe/London",
	"BST":  "Europe/London",
	"CET":  "Europe/Berlin",
	"EET":  "Europe/Athens",
	"EST":  "America/New_York",
	"CST":  "America/Chicago",
	"MST":  "America/Denver",
	"PST":  "America/Los_Angeles",
	"IST":  "Asia/Kolkata",
	"JST":  "Asia/Tokyo",
	"AEST": "Australia/Sydney",
}

// ResolveTimezone converts a known abbreviation to its IANA name and returns
// anything else unchanged.
func ResolveTimezone(timezone string) string {
	if iana, ok := timezoneAliases[strings.ToUpper(strings.TrimSpace(timezone))]; ok {
		return iana
	}
	return timezone
}

func ValidateTimezone(timezone string) error {
	_, err := time.LoadLocation(ResolveTimezone(timezone))
	return err
}

// LoadBusinessLocation returns the location used for business dates, UTC when
// the timezone is empty or unknown.
func LoadBusinessLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(ResolveTimezone(timezone))
	if err != nil {
		return time.UTC
	}
	return loc
}

// BusinessDate truncates t to midnight in loc and returns it as a UTC date,
// matching how DATE columns are stored.
func BusinessDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date the way alert rows and CSV exports carry it.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
