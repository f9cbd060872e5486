package dataprocessing

import "time"

// Canonical column keys required after header normalization.
var RequiredColumns = []string{"date", "platform", "sentiment", "location", "engagements", "media_type"}

// Record is one cleaned input row.
type Record struct {
	Date        time.Time `json:"date"`
	Platform    string    `json:"platform"`
	Sentiment   string    `json:"sentiment"` // lower-cased grouping key
	Location    string    `json:"location"`
	Engagements int64     `json:"engagements"`
	MediaType   string    `json:"media_type"`

	// SentimentDisplay preserves the original spelling for presentation.
	SentimentDisplay string `json:"-"`
}

// Dataset is the ordered collection of cleaned records for one request.
type Dataset struct {
	Records []Record
}

// Len returns the number of cleaned records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// CleanReport summarizes what cleaning did to the upload.
type CleanReport struct {
	RowsRead           int `json:"rows_read"`
	RowsKept           int `json:"rows_kept"`
	RowsDroppedBadDate int `json:"rows_dropped_bad_date"`
	EngagementDefaults int `json:"engagement_defaults"`
}

// CountEntry is one label/count pair of a count-reduced aggregate view.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SumEntry is one label/sum pair of an engagement-summed aggregate view.
type SumEntry struct {
	Label       string `json:"label"`
	Engagements int64  `json:"engagements"`
}

// DateEntry is one calendar-date/sum pair of the engagement trend view.
type DateEntry struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Engagements int64  `json:"engagements"`
}

// AggregateViews holds the five derived views, each feeding one chart.
// Every view is always present: populated or explicitly empty, never absent.
type AggregateViews struct {
	SentimentCounts       []CountEntry `json:"sentiment_counts"`
	EngagementByDate      []DateEntry  `json:"engagement_by_date"`
	PlatformEngagement    []SumEntry   `json:"platform_engagement"`
	MediaTypeCounts       []CountEntry `json:"media_type_counts"`
	Top5LocationEngagement []SumEntry  `json:"top5_location_engagement"`
}
