package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mediapulse/internal/dataprocessing"
	"mediapulse/internal/infrastructure"
	"mediapulse/internal/insights"
)

// InsightGenerator is the collaborator boundary for generative insight
// phrasing. Implementations must treat every failure as non-fatal.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ViewInsights holds the bullet insights for one aggregate view.
type ViewInsights struct {
	Bullets   []string `json:"bullets"`
	Generated bool     `json:"generated"` // true when phrased by the collaborator
}

// DashboardResult is everything one render cycle needs: the clean report,
// the five aggregate views, and per-view insights.
type DashboardResult struct {
	Report   *dataprocessing.CleanReport   `json:"report"`
	Views    dataprocessing.AggregateViews `json:"views"`
	Insights map[string]ViewInsights       `json:"insights"`
	Empty    bool                          `json:"empty"`
}

// DashboardService runs the full analyze pipeline for one upload.
type DashboardService struct {
	parser         *dataprocessing.Parser
	templated      *insights.Templated
	generator      InsightGenerator
	insightTimeout time.Duration
	logger         *slog.Logger
	metrics        *infrastructure.BusinessMetrics
}

// NewDashboardService creates the dashboard service. generator may be nil,
// in which case all insights are templated locally. metrics may be nil.
func NewDashboardService(parser *dataprocessing.Parser, generator InsightGenerator, insightTimeout time.Duration, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if insightTimeout <= 0 {
		insightTimeout = 20 * time.Second
	}
	return &DashboardService{
		parser:         parser,
		templated:      insights.NewTemplated(),
		generator:      generator,
		insightTimeout: insightTimeout,
		logger:         logger.With(slog.String("component", "dashboard_service")),
		metrics:        metrics,
	}
}

// Analyze cleans the upload, computes the five aggregate views, and phrases
// insights for each. Only schema and unreadable-file errors are returned;
// an empty cleaned dataset yields a result with Empty set, and collaborator
// failures degrade to templated insight text per view.
func (s *DashboardService) Analyze(ctx context.Context, r io.Reader, filename string) (*DashboardResult, error) {
	start := time.Now()

	ds, report, err := s.parser.Parse(ctx, r, filename)
	if err != nil {
		s.observeUpload("error", start)
		return nil, err
	}

	if s.metrics != nil && report.RowsDroppedBadDate > 0 {
		s.metrics.RowsDroppedTotal.Add(float64(report.RowsDroppedBadDate))
	}

	views := dataprocessing.ComputeViews(ds)
	result := &DashboardResult{
		Report:   report,
		Views:    views,
		Empty:    ds.Len() == 0,
		Insights: s.phraseInsights(ctx, views),
	}

	s.observeUpload("success", start)
	s.logger.InfoContext(ctx, "analyze complete",
		slog.String("filename", filename),
		slog.Int("rows_kept", report.RowsKept),
		slog.Int("rows_dropped", report.RowsDroppedBadDate),
		slog.Bool("empty", result.Empty),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// phraseInsights produces the per-view insight map. Templated bullets are
// the baseline; when the collaborator is configured, the five prompts are
// dispatched in parallel with a shared bounded timeout and joined before
// return. A failed or timed-out call leaves that view's templated text in
// place.
func (s *DashboardService) phraseInsights(ctx context.Context, views dataprocessing.AggregateViews) map[string]ViewInsights {
	templated := s.templated.ForViews(views)

	result := make(map[string]ViewInsights, len(templated))
	for view, bullets := range templated {
		result[view] = ViewInsights{Bullets: bullets}
	}

	if s.generator == nil {
		return result
	}

	prompts := map[string]string{
		insights.ViewSentiment:  insights.SentimentPrompt(views.SentimentCounts),
		insights.ViewEngagement: insights.EngagementPrompt(views.EngagementByDate),
		insights.ViewPlatform:   insights.PlatformPrompt(views.PlatformEngagement),
		insights.ViewMediaType:  insights.MediaTypePrompt(views.MediaTypeCounts),
		insights.ViewLocation:   insights.LocationPrompt(views.Top5LocationEngagement),
	}

	gctx, cancel := context.WithTimeout(ctx, s.insightTimeout)
	defer cancel()

	type generated struct {
		view string
		text string
	}

	results := make(chan generated, len(prompts))
	g, gctx := errgroup.WithContext(gctx)

	for view, prompt := range prompts {
		view, prompt := view, prompt // per-iteration copies; go directive is below 1.22
		g.Go(func() error {
			text, err := s.generator.Generate(gctx, prompt)
			if err != nil {
				if s.metrics != nil {
					s.metrics.CollaboratorFailures.Inc()
				}
				s.logger.WarnContext(gctx, "generative insight failed, using templated fallback",
					slog.String("view", view),
					slog.String("error", err.Error()))
				return nil
			}
			results <- generated{view: view, text: text}
			return nil
		})
	}

	// Goroutines never return errors; failures degrade per view.
	_ = g.Wait()
	close(results)

	for r := range results {
		result[r.view] = ViewInsights{Bullets: splitBullets(r.text), Generated: true}
	}
	return result
}

func (s *DashboardService) observeUpload(outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.UploadsTotal.WithLabelValues(outcome).Inc()
	s.metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
}

// splitBullets breaks opaque collaborator text into display lines.
func splitBullets(text string) []string {
	lines := strings.Split(text, "\n")
	bullets := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "*-• "))
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	if len(bullets) == 0 {
		return []string{text}
	}
	return bullets
}
