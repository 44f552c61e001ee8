// Package dataset holds the city accessibility data: curb ramps and
// other facilities, surveyed accessible road segments, and the live set
// of user-reported obstacles. Reported obstacles persist to a JSON file
// so reports survive restarts.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"accessnav/pkg/geo"
)

// Facility is a fixed accessibility installation (ramp, elevator, toilet).
type Facility struct {
	Location    orb.Point `json:"coordinates"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// FacilitySet groups facilities the way the facilities endpoint serves them.
type FacilitySet struct {
	Ramps     []Facility `json:"ramps"`
	Elevators []Facility `json:"elevators"`
	Toilets   []Facility `json:"toilets"`
}

// AccessibleRoad is a surveyed road segment with measured accessibility
// properties.
type AccessibleRoad struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Line    orb.LineString `json:"coordinates"`
	Width   float64        `json:"width"`   // meters
	Incline float64        `json:"incline"` // grade, 0.05 = 5%
	Surface string         `json:"surface"`
	HasRamp bool           `json:"hasRamp"`
}

// Hazard is a fixed known obstacle point used for route shaping.
type Hazard struct {
	Type     string    `json:"type"`
	Location orb.Point `json:"coordinates"`
}

// Obstacle statuses.
const (
	StatusReported = "reported"
	StatusResolved = "resolved"
)

// Obstacle is a user-reported barrier.
type Obstacle struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Location    orb.Point  `json:"location"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	Reporter    string     `json:"reporter"`
	Status      string     `json:"status"`
	Confidence  float64    `json:"confidence"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
}

// Store is the in-memory dataset with JSON persistence for obstacles.
type Store struct {
	mu         sync.RWMutex
	facilities FacilitySet
	roads      []AccessibleRoad
	hazards    []Hazard
	obstacles  map[string]Obstacle
	index      rtree.RTreeG[string] // obstacle id by location
	path       string               // obstacles.json, "" disables persistence
	now        func() time.Time
}

// Open loads the dataset from dir. Missing files fall back to the
// built-in Hualien defaults; a missing obstacles file just means no
// reports yet. Pass an empty dir for a fully in-memory store.
func Open(dir string) (*Store, error) {
	s := &Store{
		facilities: defaultFacilities(),
		roads:      defaultRoads(),
		hazards:    defaultHazards(),
		obstacles:  make(map[string]Obstacle),
		now:        time.Now,
	}
	if dir == "" {
		return s, nil
	}

	if err := loadJSON(filepath.Join(dir, "facilities.json"), &s.facilities); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, "accessible_roads.json"), &s.roads); err != nil {
		return nil, err
	}

	s.path = filepath.Join(dir, "obstacles.json")
	var reports []Obstacle
	if err := loadJSON(s.path, &reports); err != nil {
		return nil, err
	}
	for _, o := range reports {
		s.obstacles[o.ID] = o
	}
	s.rebuildIndex()
	return s, nil
}

// loadJSON decodes path into v, leaving v untouched when the file does
// not exist.
func loadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Facilities returns the full facility set.
func (s *Store) Facilities() FacilitySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facilities
}

// AccessibleRoads returns all surveyed segments.
func (s *Store) AccessibleRoads() []AccessibleRoad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AccessibleRoad, len(s.roads))
	copy(out, s.roads)
	return out
}

// NearestRamp returns the closest ramp to p and its distance in meters.
func (s *Store) NearestRamp(p orb.Point) (Facility, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := Facility{}
	bestDist := math.Inf(1)
	found := false
	for _, r := range s.facilities.Ramps {
		if d := geo.Haversine(p, r.Location); d < bestDist {
			best, bestDist, found = r, d, true
		}
	}
	return best, bestDist, found
}

// RampWithin reports whether any ramp lies within radius meters of p.
func (s *Store) RampWithin(p orb.Point, radius float64) bool {
	_, d, ok := s.NearestRamp(p)
	return ok && d <= radius
}

// NearestAccessibleRoad returns the closest surveyed segment that meets
// the width and incline requirements. The segment's first coordinate
// stands in for its location.
func (s *Store) NearestAccessibleRoad(p orb.Point, minWidth, maxIncline float64) (AccessibleRoad, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := AccessibleRoad{}
	bestDist := math.Inf(1)
	found := false
	for _, r := range s.roads {
		if r.Width < minWidth || r.Incline > maxIncline || len(r.Line) == 0 {
			continue
		}
		if d := geo.Haversine(p, r.Line[0]); d < bestDist {
			best, bestDist, found = r, d, true
		}
	}
	return best, found
}

// ActiveObstaclePoints returns every point a planned route should avoid:
// the fixed hazards plus all unresolved reports.
func (s *Store) ActiveObstaclePoints() []orb.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orb.Point, 0, len(s.hazards)+len(s.obstacles))
	for _, h := range s.hazards {
		out = append(out, h.Location)
	}
	for _, o := range s.obstacles {
		if o.Status != StatusResolved {
			out = append(out, o.Location)
		}
	}
	return out
}

// ObstaclesInArea returns unresolved reports within radius meters of
// center, most credible first.
func (s *Store) ObstaclesInArea(center orb.Point, radius float64) []Obstacle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	min, max := boundingBox(center, radius)
	var out []Obstacle
	s.index.Search(min, max, func(_, _ [2]float64, id string) bool {
		o, ok := s.obstacles[id]
		if ok && o.Status != StatusResolved && geo.Haversine(center, o.Location) <= radius {
			out = append(out, o)
		}
		return true
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Obstacles returns every report, newest first.
func (s *Store) Obstacles() []Obstacle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Obstacle, 0, len(s.obstacles))
	for _, o := range s.obstacles {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// boundingBox converts a radius in meters to a degree box around center.
func boundingBox(center orb.Point, radius float64) (min, max [2]float64) {
	dLat := radius / 111_000
	cos := math.Cos(center.Lat() * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	dLon := radius / (111_000 * cos)
	min = [2]float64{center.Lon() - dLon, center.Lat() - dLat}
	max = [2]float64{center.Lon() + dLon, center.Lat() + dLat}
	return min, max
}

// rebuildIndex rebuilds the spatial index from scratch. Called with the
// write lock held after any obstacle mutation; the report volume is far
// too small for incremental updates to matter.
func (s *Store) rebuildIndex() {
	s.index = rtree.RTreeG[string]{}
	for id, o := range s.obstacles {
		pt := [2]float64{o.Location.Lon(), o.Location.Lat()}
		s.index.Insert(pt, pt, id)
	}
}

// persist writes the obstacle list. Called with the write lock held.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	list := make([]Obstacle, 0, len(s.obstacles))
	for _, o := range s.obstacles {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write obstacles: %w", err)
	}
	return nil
}
