package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mediapulse/internal/config"
	apperrors "mediapulse/internal/errors"
)

// dateLayouts are tried in order when coercing the date column.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Parser turns an uploaded CSV or XLSX stream into a cleaned Dataset.
//
// Cleaning rules: rows whose date cannot be parsed are dropped (lenient
// policy) or abort the request (strict policy). Engagement values that are
// missing, non-numeric, or negative become 0 and are counted in the report.
// Other fields are opaque strings; empty categorical cells become "unknown"
// so every cleaned record has non-empty grouping keys.
type Parser struct {
	logger *slog.Logger
	policy string
}

// NewParser creates a parser with the given cleaning policy
// (config.PolicyLenient or config.PolicyStrict).
func NewParser(logger *slog.Logger, policy string) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = config.PolicyLenient
	}
	return &Parser{
		logger: logger.With(slog.String("component", "parser")),
		policy: policy,
	}
}

// Parse reads the upload and returns the cleaned Dataset plus a CleanReport.
// The filename selects the tabular format: ".xlsx" is read with excelize,
// everything else as CSV.
func (p *Parser) Parse(ctx context.Context, r io.Reader, filename string) (*Dataset, *CleanReport, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)

	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		headers, rows, err = readXLSX(r)
	} else {
		headers, rows, err = readCSV(r)
	}
	if err != nil {
		return nil, nil, err
	}

	return p.clean(ctx, headers, rows)
}

// readCSV reads a header row plus data rows, tolerating ragged records.
func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, apperrors.ErrEmptyFile
	}
	return all[0], all[1:], nil
}

// readXLSX reads the first sheet of an Excel workbook.
func readXLSX(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperrors.ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, apperrors.ErrEmptyFile
	}
	return rows[0], rows[1:], nil
}

// NormalizeHeader lower-cases a column header, trims surrounding whitespace,
// and replaces interior whitespace with underscores ("Media Type" -> "media_type").
func NormalizeHeader(header string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(header)))
	return strings.Join(fields, "_")
}

// clean validates the schema and coerces every row into a Record.
func (p *Parser) clean(ctx context.Context, headers []string, rows [][]string) (*Dataset, *CleanReport, error) {
	columnMap := make(map[string]int, len(headers))
	for i, header := range headers {
		key := NormalizeHeader(header)
		if _, exists := columnMap[key]; !exists {
			columnMap[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, exists := columnMap[col]; !exists {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, apperrors.NewSchemaError(missing)
	}

	if len(rows) == 0 {
		return nil, nil, apperrors.ErrEmptyDataset
	}

	ds := &Dataset{Records: make([]Record, 0, len(rows))}
	report := &CleanReport{RowsRead: len(rows)}

	for _, row := range rows {
		cell := func(col string) string {
			idx := columnMap[col]
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		date, ok := parseDate(cell("date"))
		if !ok {
			report.RowsDroppedBadDate++
			continue
		}

		engagements, ok := parseEngagements(cell("engagements"))
		if !ok {
			report.EngagementDefaults++
		}

		sentiment := cell("sentiment")
		ds.Records = append(ds.Records, Record{
			Date:             date,
			Platform:         categorical(cell("platform")),
			Sentiment:        strings.ToLower(categorical(sentiment)),
			SentimentDisplay: categorical(sentiment),
			Location:         categorical(cell("location")),
			Engagements:      engagements,
			MediaType:        categorical(cell("media_type")),
		})
	}

	report.RowsKept = len(ds.Records)

	if p.policy == config.PolicyStrict && report.RowsDroppedBadDate > 0 {
		return nil, nil, &apperrors.InvalidDatesError{Rows: report.RowsDroppedBadDate}
	}

	if report.RowsDroppedBadDate > 0 {
		p.logger.WarnContext(ctx, "dropped rows with unparseable dates",
			slog.Int("rows_dropped", report.RowsDroppedBadDate),
			slog.Int("rows_kept", report.RowsKept))
	}

	p.logger.InfoContext(ctx, "cleaning complete",
		slog.Int("rows_read", report.RowsRead),
		slog.Int("rows_kept", report.RowsKept),
		slog.Int("engagement_defaults", report.EngagementDefaults))

	return ds, report, nil
}

// parseDate tries each known layout and truncates to the calendar date.
// Time-of-day and timezone are discarded for grouping.
func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseEngagements coerces an engagement cell to a non-negative integer.
// Missing, non-numeric, and negative values all count as defaults and
// yield 0. Thousands separators are tolerated; fractional counts truncate.
func parseEngagements(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	cleaned := strings.ReplaceAll(value, ",", "")
	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		if f < 0 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// categorical substitutes "unknown" for empty cells so grouping keys are
// never empty.
func categorical(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
