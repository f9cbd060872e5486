package dataprocessing

import (
	"sort"
)

// The five aggregate views. All are pure, deterministic, and
// order-independent over the cleaned Dataset; an empty Dataset yields
// empty (never nil) results.

// SentimentCounts groups records by sentiment and counts rows.
// Sorted by count descending, ties broken lexically by the lower-cased
// sentiment label. Labels preserve the first-seen original spelling.
func SentimentCounts(ds *Dataset) []CountEntry {
	counts := make(map[string]int)
	display := make(map[string]string)
	for _, rec := range ds.Records {
		if _, seen := counts[rec.Sentiment]; !seen {
			display[rec.Sentiment] = rec.SentimentDisplay
		}
		counts[rec.Sentiment]++
	}

	keys := sortedKeys(counts)
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	entries := make([]CountEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, CountEntry{Label: display[key], Count: counts[key]})
	}
	return entries
}

// EngagementByDate groups records by calendar date and sums engagements.
// Result is ordered ascending by date with no duplicate dates.
func EngagementByDate(ds *Dataset) []DateEntry {
	sums := make(map[string]int64)
	for _, rec := range ds.Records {
		sums[rec.Date.Format("2006-01-02")] += rec.Engagements
	}

	dates := make([]string, 0, len(sums))
	for date := range sums {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	entries := make([]DateEntry, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, DateEntry{Date: date, Engagements: sums[date]})
	}
	return entries
}

// PlatformEngagement groups records by platform and sums engagements.
// Sorted by summed value descending, ties broken lexically by platform.
func PlatformEngagement(ds *Dataset) []SumEntry {
	sums := make(map[string]int64)
	for _, rec := range ds.Records {
		sums[rec.Platform] += rec.Engagements
	}
	return sortedSums(sums, 0)
}

// MediaTypeCounts groups records by media type and counts rows.
// Sorted by count descending, ties broken lexically.
func MediaTypeCounts(ds *Dataset) []CountEntry {
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		counts[rec.MediaType]++
	}

	keys := sortedKeys(counts)
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	entries := make([]CountEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, CountEntry{Label: key, Count: counts[key]})
	}
	return entries
}

// Top5LocationEngagement groups records by location, sums engagements, and
// keeps the five largest sums (descending, ties lexical). Fewer than five
// distinct locations yields all of them.
func Top5LocationEngagement(ds *Dataset) []SumEntry {
	sums := make(map[string]int64)
	for _, rec := range ds.Records {
		sums[rec.Location] += rec.Engagements
	}
	return sortedSums(sums, 5)
}

// ComputeViews computes all five views over the cleaned Dataset.
func ComputeViews(ds *Dataset) AggregateViews {
	return AggregateViews{
		SentimentCounts:        SentimentCounts(ds),
		EngagementByDate:       EngagementByDate(ds),
		PlatformEngagement:     PlatformEngagement(ds),
		MediaTypeCounts:        MediaTypeCounts(ds),
		Top5LocationEngagement: Top5LocationEngagement(ds),
	}
}

// sortedSums orders a sum map descending by value with lexical tie-break,
// truncated to limit entries when limit > 0.
func sortedSums(sums map[string]int64, limit int) []SumEntry {
	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.SliceStable(labels, func(i, j int) bool {
		if sums[labels[i]] != sums[labels[j]] {
			return sums[labels[i]] > sums[labels[j]]
		}
		return labels[i] < labels[j]
	})

	if limit > 0 && len(labels) > limit {
		labels = labels[:limit]
	}

	entries := make([]SumEntry, 0, len(labels))
	for _, label := range labels {
		entries = append(entries, SumEntry{Label: label, Engagements: sums[label]})
	}
	return entries
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
