package dataprocessing

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mediapulse/internal/config"
	apperrors "mediapulse/internal/errors"
)

const sampleCSV = `Date,Platform,Sentiment,Location,Engagements,Media Type
2024-01-01,Twitter,Positive,NYC,10,Image
2024-01-01,Facebook,Negative,LA,5,Video
2024-01-02,Twitter,Positive,NYC,,Image
`

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Media Type", want: "media_type"},
		{in: "  Date ", want: "date"},
		{in: "ENGAGEMENTS", want: "engagements"},
		{in: "media  type", want: "media_type"},
		{in: "platform", want: "platform"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in))
	}
}

func TestParseCleanDataset(t *testing.T) {
	p := NewParser(nil, config.PolicyLenient)

	ds, report, err := p.Parse(context.Background(), strings.NewReader(sampleCSV), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, report.RowsRead)
	assert.Equal(t, 3, report.RowsKept)
	assert.Equal(t, 0, report.RowsDroppedBadDate)
	assert.Equal(t, 1, report.EngagementDefaults)

	require.Len(t, ds.Records, 3)
	first := ds.Records[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Twitter", first.Platform)
	assert.Equal(t, "positive", first.Sentiment)
	assert.Equal(t, "Positive", first.SentimentDisplay)
	assert.Equal(t, int64(10), first.Engagements)

	// Blank engagements default to zero
	assert.Equal(t, int64(0), ds.Records[2].Engagements)
}

func TestParseMissingColumn(t *testing.T) {
	csvData := "Date,Platform,Sentiment,Engagements,Media Type\n2024-01-01,Twitter,Positive,10,Image\n"
	p := NewParser(nil, config.PolicyLenient)

	_, _, err := p.Parse(context.Background(), strings.NewReader(csvData), "upload.csv")

	var schemaErr *apperrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"location"}, schemaErr.Missing)
}

func TestParseDropsBadDates(t *testing.T) {
	csvData := `Date,Platform,Sentiment,Location,Engagements,Media Type
not-a-date,Twitter,Positive,NYC,10,Image
2024-01-02,Facebook,Negative,LA,5,Video
`
	p := NewParser(nil, config.PolicyLenient)

	ds, report, err := p.Parse(context.Background(), strings.NewReader(csvData), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, report.RowsDroppedBadDate)
	assert.Equal(t, 1, report.RowsKept)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Facebook", ds.Records[0].Platform)
}

func TestParseStrictPolicyAborts(t *testing.T) {
	csvData := `Date,Platform,Sentiment,Location,Engagements,Media Type
not-a-date,Twitter,Positive,NYC,10,Image
2024-01-02,Facebook,Negative,LA,5,Video
`
	p := NewParser(nil, config.PolicyStrict)

	_, _, err := p.Parse(context.Background(), strings.NewReader(csvData), "upload.csv")

	var dateErr *apperrors.InvalidDatesError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, 1, dateErr.Rows)
}

func TestParseEmptyFile(t *testing.T) {
	p := NewParser(nil, config.PolicyLenient)

	_, _, err := p.Parse(context.Background(), strings.NewReader(""), "upload.csv")
	assert.ErrorIs(t, err, apperrors.ErrEmptyFile)
}

func TestParseHeaderOnly(t *testing.T) {
	csvData := "Date,Platform,Sentiment,Location,Engagements,Media Type\n"
	p := NewParser(nil, config.PolicyLenient)

	_, _, err := p.Parse(context.Background(), strings.NewReader(csvData), "upload.csv")
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestParseExtraColumnsIgnored(t *testing.T) {
	csvData := `Date,Platform,Sentiment,Location,Engagements,Media Type,Campaign
2024-01-01,Twitter,Positive,NYC,10,Image,Spring
`
	p := NewParser(nil, config.PolicyLenient)

	ds, _, err := p.Parse(context.Background(), strings.NewReader(csvData), "upload.csv")
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
}

func TestParseEngagements(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		want        int64
		wantDefault bool
	}{
		{name: "plain integer", value: "42", want: 42},
		{name: "thousands separator", value: "1,200", want: 1200},
		{name: "float truncates", value: "10.7", want: 10},
		{name: "blank defaults", value: "", want: 0, wantDefault: true},
		{name: "non-numeric defaults", value: "lots", want: 0, wantDefault: true},
		{name: "negative clamps", value: "-5", want: 0, wantDefault: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseEngagements(tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDefault, !ok)
		})
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []string{
		"2024-03-05",
		"2024-03-05T14:30:00Z",
		"2024-03-05 14:30:00",
		"2024/03/05",
		"03/05/2024",
		"Mar 5, 2024",
	}

	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			got, ok := parseDate(value)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	_, ok := parseDate("yesterday")
	assert.False(t, ok)
}

func writeWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseXLSX(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		{"Date", "Platform", "Sentiment", "Location", "Engagements", "Media Type"},
		{"2024-01-01", "Twitter", "Positive", "NYC", "10", "Image"},
		{"2024-01-01", "Facebook", "Negative", "LA", "5", "Video"},
		{"2024-01-02", "Twitter", "Positive", "NYC", "", "Image"},
	})

	p := NewParser(nil, config.PolicyLenient)
	ds, report, err := p.Parse(context.Background(), buf, "upload.xlsx")
	require.NoError(t, err)

	csvDS, csvReport, err := p.Parse(context.Background(), strings.NewReader(sampleCSV), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, csvReport, report)
	assert.Equal(t, csvDS.Records, ds.Records)
}

func TestParseXLSX_UppercaseExtension(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		{"Date", "Platform", "Sentiment", "Location", "Engagements", "Media Type"},
		{"2024-01-01", "Twitter", "Positive", "NYC", "10", "Image"},
	})

	p := NewParser(nil, config.PolicyLenient)
	ds, report, err := p.Parse(context.Background(), buf, "UPLOAD.XLSX")
	require.NoError(t, err)

	assert.Equal(t, 1, report.RowsKept)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Twitter", ds.Records[0].Platform)
}

func TestParseXLSX_HeaderOnly(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		{"Date", "Platform", "Sentiment", "Location", "Engagements", "Media Type"},
	})

	p := NewParser(nil, config.PolicyLenient)
	_, _, err := p.Parse(context.Background(), buf, "upload.xlsx")
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestParseXLSX_MissingColumn(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		{"Date", "Platform", "Sentiment", "Engagements", "Media Type"},
		{"2024-01-01", "Twitter", "Positive", "10", "Image"},
	})

	p := NewParser(nil, config.PolicyLenient)
	_, _, err := p.Parse(context.Background(), buf, "upload.xlsx")

	var schemaErr *apperrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"location"}, schemaErr.Missing)
}

func TestParseXLSX_CorruptWorkbook(t *testing.T) {
	p := NewParser(nil, config.PolicyLenient)

	_, _, err := p.Parse(context.Background(), bytes.NewReader([]byte("not a workbook")), "upload.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}
