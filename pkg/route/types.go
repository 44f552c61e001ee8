// Package route composes wheelchair-accessible routes. It layers three
// strategies: the live external router, the embedded road graph, and
// synthetic curve generation, and applies the accessibility scoring and
// shaping policies on top.
package route

import (
	"time"

	"github.com/paulmach/orb"

	"accessnav/pkg/osrm"
)

// Params are the caller's accessibility requirements.
type Params struct {
	MaxIncline float64 `json:"maximum_incline"`
	MinWidth   float64 `json:"minimum_width"`
}

// DefaultParams returns the standard wheelchair requirements used when
// the caller supplies none.
func DefaultParams() Params {
	return Params{MaxIncline: 0.08, MinWidth: 0.9}
}

// Route sources, recorded in Result.Source and response metadata.
const (
	SourceExternal  = "external"
	SourceGraph     = "graph-fallback"
	SourceSynthetic = "synthetic"
)

// Accessibility levels.
const (
	LevelBasic  = "basic"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Assessment describes how accessible a route is.
type Assessment struct {
	Level                 string         `json:"level"`
	Score                 int            `json:"score"`
	Notes                 string         `json:"notes"`
	Barriers              []osrm.Barrier `json:"barriers,omitempty"`
	SuitableForWheelchair bool           `json:"suitable_for_wheelchair"`
}

// Result is a single computed route. Distance is meters, duration is
// seconds; both are rounded to whole units.
type Result struct {
	Line            orb.LineString `json:"geometry"`
	DistanceMeters  float64        `json:"distance"`
	DurationSeconds float64        `json:"duration"`
	Source          string         `json:"source"`
	Assessment      Assessment     `json:"accessibility"`
}

// Metadata travels with every plan for traceability.
type Metadata struct {
	NormalDestination     orb.Point `json:"normal_destination"`
	AccessibleDestination orb.Point `json:"accessible_destination"`
	Parameters            Params    `json:"parameters_applied"`
	Timestamp             time.Time `json:"timestamp"`
	Note                  string    `json:"note,omitempty"`
}

// Plan is the full composer output. Normal is always present;
// Accessible is nil when the gate fails or the live route is unsuitable.
type Plan struct {
	Normal                   *Result  `json:"normal"`
	Accessible               *Result  `json:"accessible"`
	HasAccessibleAlternative bool     `json:"has_accessible_alternative"`
	Metadata                 Metadata `json:"metadata"`
}
