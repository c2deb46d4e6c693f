package alert

import (
	"sort"

	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// Rank maps raw rows to unified alerts and orders them by severity (high
// first) and then by date string ascending. An empty date compares lower
// than any non-empty date, so undated alerts lead their severity group.
// Rows for the same entity are not merged. The input is left untouched.
func Rank(rows []RawAlertRow) []UnifiedAlert {
	alerts := lo.Map(rows, func(row RawAlertRow, _ int) UnifiedAlert {
		return FromRawRow(row)
	})

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].Date < alerts[j].Date
	})
	return alerts
}

// Filter keeps alerts matching the filter's severities and types (empty
// means any) and applies its limit.
func Filter(alerts []UnifiedAlert, f *types.AlertFilter) []UnifiedAlert {
	if f == nil {
		return alerts
	}
	out := lo.Filter(alerts, func(a UnifiedAlert, _ int) bool {
		if len(f.Severities) > 0 && !lo.Contains(f.Severities, a.Severity) {
			return false
		}
		if len(f.AlertTypes) > 0 && !lo.Contains(f.AlertTypes, a.Type) {
			return false
		}
		return true
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// CountBySeverity tallies alerts per severity.
func CountBySeverity(alerts []UnifiedAlert) types.AlertSeverityCounts {
	var counts types.AlertSeverityCounts
	for _, a := range alerts {
		switch a.Severity {
		case types.AlertSeverityHigh:
			counts.High++
		case types.AlertSeverityMedium:
			counts.Medium++
		default:
			counts.Low++
		}
	}
	counts.Total = len(alerts)
	return counts
}
