package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapulse/internal/config"
	"mediapulse/internal/dataprocessing"
	apperrors "mediapulse/internal/errors"
	"mediapulse/internal/insights"
)

const sampleCSV = `Date,Platform,Sentiment,Location,Engagements,Media Type
2024-01-01,Twitter,Positive,NYC,10,Image
2024-01-01,Facebook,Negative,LA,5,Video
2024-01-02,Twitter,Positive,NYC,,Image
`

// stubGenerator returns fixed text, or an error when failAll is set.
// Calls arrive from parallel goroutines, hence the atomic counter.
type stubGenerator struct {
	text    string
	failAll bool
	calls   atomic.Int64
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls.Add(1)
	if s.failAll {
		return "", &apperrors.CollaboratorError{Op: "generateContent", Err: errors.New("unreachable")}
	}
	return s.text, nil
}

func newService(generator InsightGenerator) *DashboardService {
	parser := dataprocessing.NewParser(nil, config.PolicyLenient)
	return NewDashboardService(parser, generator, 5*time.Second, nil, nil)
}

func TestAnalyzeTemplatedOnly(t *testing.T) {
	svc := newService(nil)

	result, err := svc.Analyze(context.Background(), strings.NewReader(sampleCSV), "upload.csv")
	require.NoError(t, err)

	assert.False(t, result.Empty)
	assert.Equal(t, 3, result.Report.RowsKept)

	// All five views present, populated
	assert.Len(t, result.Views.SentimentCounts, 2)
	assert.Len(t, result.Views.EngagementByDate, 2)
	assert.Len(t, result.Views.PlatformEngagement, 2)
	assert.Len(t, result.Views.MediaTypeCounts, 2)
	assert.Len(t, result.Views.Top5LocationEngagement, 2)

	// Insights for every view, none generated
	require.Len(t, result.Insights, 5)
	for view, ins := range result.Insights {
		assert.NotEmpty(t, ins.Bullets, "view %s", view)
		assert.False(t, ins.Generated, "view %s", view)
	}
}

func TestAnalyzeWithGenerator(t *testing.T) {
	gen := &stubGenerator{text: "1. First insight.\n2. Second insight.\n3. Third insight."}
	svc := newService(gen)

	result, err := svc.Analyze(context.Background(), strings.NewReader(sampleCSV), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, int64(5), gen.calls.Load())
	for view, ins := range result.Insights {
		assert.True(t, ins.Generated, "view %s", view)
		assert.Len(t, ins.Bullets, 3, "view %s", view)
	}
}

func TestAnalyzeGeneratorFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{failAll: true}
	svc := newService(gen)

	result, err := svc.Analyze(context.Background(), strings.NewReader(sampleCSV), "upload.csv")
	require.NoError(t, err)

	// Full result with templated fallbacks; collaborator failure is never fatal
	require.Len(t, result.Insights, 5)
	for view, ins := range result.Insights {
		assert.False(t, ins.Generated, "view %s", view)
		assert.NotEmpty(t, ins.Bullets, "view %s", view)
	}
}

func TestAnalyzeSchemaError(t *testing.T) {
	svc := newService(nil)
	csvData := "Date,Platform,Sentiment,Engagements,Media Type\n2024-01-01,Twitter,Positive,10,Image\n"

	_, err := svc.Analyze(context.Background(), strings.NewReader(csvData), "upload.csv")

	var schemaErr *apperrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"location"}, schemaErr.Missing)
}

func TestAnalyzeAllRowsDropped(t *testing.T) {
	svc := newService(nil)
	csvData := "Date,Platform,Sentiment,Location,Engagements,Media Type\nbad,Twitter,Positive,NYC,10,Image\n"

	result, err := svc.Analyze(context.Background(), strings.NewReader(csvData), "upload.csv")
	require.NoError(t, err)

	assert.True(t, result.Empty)
	assert.Equal(t, 1, result.Report.RowsDroppedBadDate)
	assert.Empty(t, result.Views.SentimentCounts)

	// Empty aggregates still get neutral insight text
	require.Len(t, result.Insights, 5)
	for view, ins := range result.Insights {
		assert.NotEmpty(t, ins.Bullets, "view %s", view)
	}
}

func TestSplitBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "numbered list",
			in:   "1. One\n2. Two",
			want: []string{"1. One", "2. Two"},
		},
		{
			name: "dashed list",
			in:   "- One\n- Two",
			want: []string{"One", "Two"},
		},
		{
			name: "single block",
			in:   "Just one insight.",
			want: []string{"Just one insight."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitBullets(tt.in))
		})
	}
}

var _ InsightGenerator = (*insights.Generator)(nil)
