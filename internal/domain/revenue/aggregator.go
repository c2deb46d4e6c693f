package revenue

import (
	"sort"
	"strings"

	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/shopspring/decimal"
)

// TotalMRR sums the monthly equivalent of every record. Callers pass active
// subscriptions only; no status filtering happens here.
func TotalMRR(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.BillingCycle.MonthlyEquivalent(r.Amount))
	}
	return total
}

// GroupMRR buckets monthly equivalents by GroupKey. Buckets whose total is
// zero or negative are dropped, the rest are sorted by total descending (key
// ascending on ties) and cut to topN when topN > 0. Records without a key
// land in the unassigned bucket.
func GroupMRR(records []Record, topN int) []Bucket {
	totals := make(map[string]decimal.Decimal)
	labels := make(map[string]string)
	order := make([]string, 0)

	for _, r := range records {
		key := strings.TrimSpace(r.GroupKey)
		if key == "" {
			key = types.UnassignedGroupKey
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
			totals[key] = decimal.Zero
		}
		totals[key] = totals[key].Add(r.BillingCycle.MonthlyEquivalent(r.Amount))
		if labels[key] == "" {
			labels[key] = strings.TrimSpace(r.GroupLabel)
		}
	}

	buckets := make([]Bucket, 0, len(order))
	for _, key := range order {
		total := totals[key]
		if !total.IsPositive() {
			continue
		}
		label := labels[key]
		if label == "" {
			label = key
		}
		buckets = append(buckets, Bucket{Key: key, Label: label, MonthlyTotal: total})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if c := buckets[i].MonthlyTotal.Cmp(buckets[j].MonthlyTotal); c != 0 {
			return c > 0
		}
		return buckets[i].Key < buckets[j].Key
	})

	if topN > 0 && len(buckets) > topN {
		buckets = buckets[:topN]
	}
	return buckets
}

// SumBuckets adds up bucket totals.
func SumBuckets(buckets []Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.MonthlyTotal)
	}
	return total
}
