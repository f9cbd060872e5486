package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"mediapulse/internal/config"
	"mediapulse/internal/dataprocessing"
	apperrors "mediapulse/internal/errors"
)

// Generator calls the Gemini generateContent endpoint to phrase insights.
// The reply is treated as opaque display text. Responses are cached per
// distinct prompt for the process lifetime, so re-renders of the same
// aggregate never repeat a call.
type Generator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewGenerator creates a Gemini-backed insight generator.
func NewGenerator(cfg config.GeminiConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.Endpoint,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(slog.String("component", "gemini")),
		cache:   make(map[string]string),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt as a single-turn request and returns the reply
// text. Any transport, authentication, or response-shape failure yields a
// CollaboratorError; callers substitute fallback text and never treat it
// as fatal.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	if cached, ok := g.cache[prompt]; ok {
		g.mu.Unlock()
		return cached, nil
	}
	g.mu.Unlock()

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &apperrors.CollaboratorError{Op: "marshal request", Err: err}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &apperrors.CollaboratorError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &apperrors.CollaboratorError{Op: "generateContent", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperrors.CollaboratorError{Op: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.CollaboratorError{
			Op:  "generateContent",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return "", &apperrors.CollaboratorError{Op: "parse response", Err: err}
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", &apperrors.CollaboratorError{Op: "parse response", Err: fmt.Errorf("no candidate text in reply")}
	}

	text := strings.TrimSpace(gemResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", &apperrors.CollaboratorError{Op: "parse response", Err: fmt.Errorf("empty candidate text")}
	}

	g.mu.Lock()
	g.cache[prompt] = text
	g.mu.Unlock()

	return text, nil
}

// Prompt builders, one per aggregate view. Each serializes the aggregate
// as a compact key:value listing inside a fixed instruction.

// SentimentPrompt builds the prompt for the sentiment breakdown view.
func SentimentPrompt(entries []dataprocessing.CountEntry) string {
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, fmt.Sprintf("%s: %d", e.Label, e.Count))
	}
	return fmt.Sprintf("Based on the following sentiment counts from media data: {%s}. Provide top 3 concise insights.", strings.Join(pairs, ", "))
}

// EngagementPrompt builds the prompt for the engagement trend view.
func EngagementPrompt(entries []dataprocessing.DateEntry) string {
	if len(entries) == 0 {
		return "No engagement data available. Provide top 3 general insights about engagement trends in media analysis."
	}
	first, last := entries[0], entries[len(entries)-1]
	return fmt.Sprintf(
		"Based on engagement data from %s to %s, with initial engagements of %d and final engagements of %d. Provide top 3 concise insights about the engagement trend.",
		first.Date, last.Date, first.Engagements, last.Engagements)
}

// PlatformPrompt builds the prompt for the per-platform engagement view.
func PlatformPrompt(entries []dataprocessing.SumEntry) string {
	return fmt.Sprintf("Based on platform engagements: {%s}. Provide top 3 concise insights.", joinSums(entries))
}

// MediaTypePrompt builds the prompt for the media-type mix view.
func MediaTypePrompt(entries []dataprocessing.CountEntry) string {
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, fmt.Sprintf("%s: %d", e.Label, e.Count))
	}
	return fmt.Sprintf("Based on media type counts: {%s}. Provide top 3 concise insights.", strings.Join(pairs, ", "))
}

// LocationPrompt builds the prompt for the top-locations view.
func LocationPrompt(entries []dataprocessing.SumEntry) string {
	return fmt.Sprintf("Based on top locations by engagement: {%s}. Provide top 3 concise insights.", joinSums(entries))
}

func joinSums(entries []dataprocessing.SumEntry) string {
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, fmt.Sprintf("%s: %d", e.Label, e.Engagements))
	}
	return strings.Join(pairs, ", ")
}
