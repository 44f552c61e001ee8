package api

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"accessnav/pkg/dataset"
	"accessnav/pkg/nav"
	"accessnav/pkg/route"
)

// Requests. Coordinates arrive as [lon, lat] arrays.

type routeRequest struct {
	Start  []float64    `json:"start"`
	End    []float64    `json:"end"`
	Mode   string       `json:"mode"`
	Params *paramsInput `json:"params"`
}

// paramsInput keeps both fields optional so callers can set just one.
type paramsInput struct {
	MaxIncline *float64 `json:"maximum_incline"`
	MinWidth   *float64 `json:"minimum_width"`
}

type navStartRequest struct {
	Start     []float64 `json:"start"`
	End       []float64 `json:"end"`
	RouteType string    `json:"route_type"`
}

type navPositionRequest struct {
	NavigationID    string    `json:"navigation_id"`
	CurrentPosition []float64 `json:"current_position"`
	CurrentStep     int       `json:"current_step"`
}

type navStopRequest struct {
	NavigationID string `json:"navigation_id"`
}

type navRecalculateRequest struct {
	CurrentPosition []float64 `json:"current_position"`
	End             []float64 `json:"end"`
	RouteType       string    `json:"route_type"`
}

type obstacleReportRequest struct {
	Type        string    `json:"type"`
	Location    []float64 `json:"location"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Reporter    string    `json:"reporter"`
}

type obstacleResolveRequest struct {
	ID         string `json:"id"`
	ResolvedBy string `json:"resolved_by"`
}

// Responses.

type planResponse struct {
	Normal                   *geojson.FeatureCollection `json:"normal"`
	Accessible               *geojson.FeatureCollection `json:"accessible"`
	HasAccessibleAlternative bool                       `json:"has_accessible_alternative"`
	Metadata                 route.Metadata             `json:"metadata"`
}

type navStartResponse struct {
	NavigationID      string     `json:"navigation_id"`
	Steps             []nav.Step `json:"steps"`
	TotalSteps        int        `json:"total_steps"`
	TotalDistance     float64    `json:"total_distance"`
	EstimatedDuration float64    `json:"estimated_duration"`
}

type navRecalculateResponse struct {
	RouteGeometry *geojson.FeatureCollection `json:"route_geometry"`
	Steps         []nav.Step                 `json:"steps"`
	TotalSteps    int                        `json:"total_steps"`
	Recalculated  bool                       `json:"recalculated"`
}

type obstacleReportResponse struct {
	Success  bool             `json:"success"`
	Obstacle dataset.Obstacle `json:"obstacle"`
	Message  string           `json:"message"`
}

// toPoint converts a validated [lon, lat] pair.
func toPoint(pair []float64) orb.Point {
	return orb.Point{pair[0], pair[1]}
}

// resultFeatureCollection renders one route result as GeoJSON, with the
// summary in the feature properties and units in the extra members.
func resultFeatureCollection(res *route.Result, ts time.Time) *geojson.FeatureCollection {
	if res == nil {
		return nil
	}

	f := geojson.NewFeature(res.Line)
	f.Properties["summary"] = map[string]any{
		"distance":      res.DistanceMeters,
		"duration":      res.DurationSeconds,
		"accessibility": res.Assessment,
	}
	f.Properties["way_points"] = []int{0, len(res.Line) - 1}

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	fc.ExtraMembers = map[string]any{
		"source":    res.Source,
		"units":     map[string]string{"distance": "meters", "duration": "seconds", "speed": "m/s"},
		"timestamp": ts.Format(time.RFC3339),
	}
	return fc
}
