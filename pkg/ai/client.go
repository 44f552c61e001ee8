// Package ai wraps the optional language-model sidecar used to triage
// free-text obstacle reports. The service is best effort; every call has
// a deterministic fallback so report handling never depends on it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned when the sidecar cannot be reached or
// answers with anything other than a usable analysis.
var ErrUnavailable = errors.New("ai service unavailable")

// fallbackConfidence is assigned to analyses produced without the model.
const fallbackConfidence = 0.3

// Client talks to the analysis sidecar.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client. An empty base URL disables remote calls;
// AnalyzeReport then always takes the heuristic path.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Analysis is the triage result for one obstacle report.
type Analysis struct {
	Category   string  `json:"category"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Response string `json:"response"`
}

// Ask sends a raw prompt and returns the model text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if c.baseURL == "" {
		return "", ErrUnavailable
	}

	raw, err := json.Marshal(askRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return out.Response, nil
}

// AnalyzeReport classifies an obstacle description. The model is asked
// for a JSON analysis; if it is down or returns something unparseable,
// a keyword heuristic answers instead with reduced confidence.
func (c *Client) AnalyzeReport(ctx context.Context, description string) Analysis {
	prompt := "Classify this sidewalk obstacle report for wheelchair users. " +
		"Reply with JSON {category, severity, confidence, summary}. Report: " + description

	text, err := c.Ask(ctx, prompt)
	if err != nil {
		return heuristicAnalysis(description)
	}

	var out Analysis
	if err := json.Unmarshal([]byte(text), &out); err != nil || out.Category == "" {
		return heuristicAnalysis(description)
	}
	if out.Confidence <= 0 || out.Confidence > 1 {
		out.Confidence = fallbackConfidence
	}
	if out.Severity == "" {
		out.Severity = "medium"
	}
	return out
}

// heuristicAnalysis is the offline classifier. Categories mirror the
// obstacle types the dataset already tracks.
func heuristicAnalysis(description string) Analysis {
	d := strings.ToLower(description)

	category := "other"
	severity := "medium"
	switch {
	case strings.Contains(d, "construction") || strings.Contains(d, "roadwork"):
		category = "construction"
		severity = "high"
	case strings.Contains(d, "stairs") || strings.Contains(d, "steps"):
		category = "stairs"
		severity = "high"
	case strings.Contains(d, "parked") || strings.Contains(d, "scooter") || strings.Contains(d, "car"):
		category = "blocked_path"
	case strings.Contains(d, "broken") || strings.Contains(d, "crack") || strings.Contains(d, "pothole"):
		category = "surface_damage"
	}

	return Analysis{
		Category:   category,
		Severity:   severity,
		Confidence: fallbackConfidence,
		Summary:    "automatic classification without model assistance",
	}
}
