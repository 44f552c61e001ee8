package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/paulmach/orb"

	"accessnav/pkg/ai"
)

// Report is an incoming obstacle report.
type Report struct {
	Type        string    `json:"type"`
	Location    orb.Point `json:"location"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Reporter    string    `json:"reporter"`
}

// Analyzer triages report text. *ai.Client satisfies it.
type Analyzer interface {
	AnalyzeReport(ctx context.Context, description string) ai.Analysis
}

// ReportObstacle records a new report. The analyzer scores its
// credibility and may refine the category; the stored report always gets
// a confidence value even when the analyzer has to guess. Returns the
// stored obstacle and a short acknowledgement for the reporter.
func (s *Store) ReportObstacle(ctx context.Context, analyzer Analyzer, r Report) (Obstacle, string, error) {
	o := Obstacle{
		ID:          newObstacleID(s.now()),
		Type:        r.Type,
		Location:    r.Location,
		Description: r.Description,
		Severity:    r.Severity,
		Reporter:    r.Reporter,
		Status:      StatusReported,
		CreatedAt:   s.now(),
	}
	if o.Type == "" {
		o.Type = "unknown"
	}
	if o.Severity == "" {
		o.Severity = "medium"
	}
	if o.Reporter == "" {
		o.Reporter = "anonymous"
	}

	analysis := analyzer.AnalyzeReport(ctx, r.Description)
	o.Confidence = analysis.Confidence
	if analysis.Category != "" && analysis.Category != "other" {
		o.Type = analysis.Category
	}
	if analysis.Severity != "" {
		o.Severity = analysis.Severity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.obstacles[o.ID] = o
	s.rebuildIndex()
	if err := s.persist(); err != nil {
		return o, "", err
	}
	return o, ackMessage(o.Type), nil
}

// Resolve marks a report as cleared. Returns false for unknown ids.
func (s *Store) Resolve(id, by string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.obstacles[id]
	if !ok {
		return false, nil
	}
	now := s.now()
	o.Status = StatusResolved
	o.ResolvedAt = &now
	if by == "" {
		by = "system"
	}
	o.ResolvedBy = by
	s.obstacles[id] = o
	s.rebuildIndex()
	if err := s.persist(); err != nil {
		return true, err
	}
	return true, nil
}

func newObstacleID(t time.Time) string {
	return fmt.Sprintf("obs_%d_%09d", t.UnixMilli(), rand.Intn(1_000_000_000))
}

func ackMessage(obstacleType string) string {
	switch obstacleType {
	case "construction":
		return "construction recorded, other users will be warned to avoid this stretch"
	case "road_closure":
		return "road closure recorded, route planning will avoid it automatically"
	case "stairs", "stepped_path":
		return "stepped path recorded, accessible routes will be replanned"
	case "ramp_blocked":
		return "blocked ramp recorded, looking for alternative entrances"
	}
	return "obstacle report recorded, thank you for contributing"
}
