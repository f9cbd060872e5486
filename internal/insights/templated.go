// Package insights turns aggregate views into short natural-language
// bullet statements, either templated locally or phrased by the Gemini
// generative-language API.
package insights

import (
	"fmt"
	"strings"

	"mediapulse/internal/dataprocessing"
)

// View names, used as stable keys for insights and prompts.
const (
	ViewSentiment   = "sentiment"
	ViewEngagement  = "engagement_time"
	ViewPlatform    = "platform"
	ViewMediaType   = "media_type"
	ViewLocation    = "location"
)

// noDataMessage is returned for any view computed over an empty aggregate.
const noDataMessage = "No data available for insights."

// Templated phrases 2-3 bullet insights per view from superlatives of the
// aggregate. It never fails: views with fewer than two entries fall back to
// single-entry phrasing, and empty views yield a neutral message.
type Templated struct{}

// NewTemplated creates the templated phraser.
func NewTemplated() *Templated {
	return &Templated{}
}

// Sentiment phrases the sentiment breakdown view.
func (t *Templated) Sentiment(entries []dataprocessing.CountEntry) []string {
	if len(entries) == 0 {
		return []string{noDataMessage}
	}

	// Entries arrive sorted descending with lexical tie-break, so the
	// first and last are the majority and minority sentiments.
	max := entries[0]
	out := []string{
		fmt.Sprintf("Majority sentiment is %s (%d records), indicating overall public perception.", max.Label, max.Count),
	}
	if len(entries) > 1 {
		min := entries[len(entries)-1]
		out = append(out, fmt.Sprintf("%s sentiment is the smallest portion (%d records) and may warrant further investigation.", min.Label, min.Count))
	}

	positive, negative := countFor(entries, "positive"), countFor(entries, "negative")
	if positive > 0 || negative > 0 {
		out = append(out, fmt.Sprintf("The ratio of positive to negative sentiment is %d:%d.", positive, negative))
	}
	return out
}

// Engagement phrases the engagement-over-time view.
func (t *Templated) Engagement(entries []dataprocessing.DateEntry) []string {
	if len(entries) == 0 {
		return []string{noDataMessage}
	}

	peak, low := entries[0], entries[0]
	for _, e := range entries[1:] {
		if e.Engagements > peak.Engagements {
			peak = e
		}
		if e.Engagements < low.Engagements {
			low = e
		}
	}

	out := []string{
		fmt.Sprintf("Engagement peaked on %s with %d engagements, likely tied to a specific event or campaign.", peak.Date, peak.Engagements),
	}
	if len(entries) > 1 {
		out = append(out,
			fmt.Sprintf("The period around %s shows the lowest engagement (%d), suggesting a review of inactive periods.", low.Date, low.Engagements),
			"Recurring daily or weekly patterns can be leveraged for optimal posting schedules.")
	}
	return out
}

// Platform phrases the per-platform engagement view.
func (t *Templated) Platform(entries []dataprocessing.SumEntry) []string {
	if len(entries) == 0 {
		return []string{noDataMessage}
	}

	top := entries[0]
	out := []string{
		fmt.Sprintf("%s is the most effective platform with %d total engagements, a suitable marketing focus.", top.Label, top.Engagements),
	}
	if len(entries) > 1 {
		bottom := entries[len(entries)-1]
		out = append(out,
			fmt.Sprintf("%s has the lowest engagement (%d); its content strategy may need re-evaluation.", bottom.Label, bottom.Engagements),
			"Some platforms show untapped engagement growth potential.")
	}
	return out
}

// MediaType phrases the media-type mix view.
func (t *Templated) MediaType(entries []dataprocessing.CountEntry) []string {
	if len(entries) == 0 {
		return []string{noDataMessage}
	}

	top := entries[0]
	out := []string{
		fmt.Sprintf("%s content is the most frequently used format (%d records), reflecting audience preference or current strategy.", top.Label, top.Count),
	}
	if len(entries) > 1 {
		bottom := entries[len(entries)-1]
		out = append(out,
			fmt.Sprintf("%s media is currently underutilized (%d records) and is an opportunity to experiment.", bottom.Label, bottom.Count),
			"Balancing the media mix can reach a wider and more diverse audience.")
	}
	return out
}

// Location phrases the top-locations view.
func (t *Templated) Location(entries []dataprocessing.SumEntry) []string {
	if len(entries) == 0 {
		return []string{"No location data available for insights."}
	}

	top := entries[0]
	out := []string{
		fmt.Sprintf("%s is the geographic area with the highest engagement (%d), indicating a strong audience concentration.", top.Label, top.Engagements),
	}
	if len(entries) > 1 {
		out = append(out, fmt.Sprintf("Targeted geographic marketing can focus on %s and %s for local campaigns.", top.Label, entries[1].Label))
	} else {
		out = append(out, fmt.Sprintf("Targeted geographic marketing can focus on %s for local campaigns.", top.Label))
	}
	out = append(out, "Understanding audience characteristics in these locations helps tailor future content.")
	return out
}

// ForViews computes templated insights for all five views.
func (t *Templated) ForViews(views dataprocessing.AggregateViews) map[string][]string {
	return map[string][]string{
		ViewSentiment:  t.Sentiment(views.SentimentCounts),
		ViewEngagement: t.Engagement(views.EngagementByDate),
		ViewPlatform:   t.Platform(views.PlatformEngagement),
		ViewMediaType:  t.MediaType(views.MediaTypeCounts),
		ViewLocation:   t.Location(views.Top5LocationEngagement),
	}
}

func countFor(entries []dataprocessing.CountEntry, label string) int {
	for _, e := range entries {
		if strings.EqualFold(e.Label, label) {
			return e.Count
		}
	}
	return 0
}
