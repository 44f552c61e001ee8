package route

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"accessnav/pkg/dataset"
	"accessnav/pkg/geo"
	"accessnav/pkg/osrm"
	"accessnav/pkg/roadgraph"
)

type stubRouter struct {
	resp *osrm.Response
	err  error
}

func (s stubRouter) FetchRoute(_ context.Context, _, _ orb.Point, _ osrm.FetchOptions) (*osrm.Response, error) {
	return s.resp, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveResponse(distance float64, steps []osrm.Step) *osrm.Response {
	line := orb.LineString{{121.606, 23.975}, {121.608, 23.977}, {121.611, 23.979}}
	return &osrm.Response{
		Code: "Ok",
		Routes: []osrm.Route{{
			Distance: distance,
			Duration: distance / 1.4,
			Geometry: geojson.NewGeometry(line),
			Legs:     []osrm.Leg{{Distance: distance, Steps: steps}},
		}},
	}
}

// Downtown scenario: router down, graph serves the normal route, and no
// ramp sits near the destination so the accessible variant stays nil.
func TestPlanRouterDownGraphFallback(t *testing.T) {
	store, err := dataset.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c := NewComposer(stubRouter{err: osrm.ErrUnavailable}, roadgraph.Hualien(), store, quietLogger())

	start := orb.Point{121.606, 23.975}
	end := orb.Point{121.611, 23.979}
	plan := c.Plan(context.Background(), start, end, DefaultParams(), false)

	if plan.Normal == nil {
		t.Fatal("normal route is nil")
	}
	if plan.Normal.Source != SourceGraph {
		t.Errorf("source = %q, want %q", plan.Normal.Source, SourceGraph)
	}
	if plan.Normal.DistanceMeters <= 0 {
		t.Errorf("distance = %v", plan.Normal.DistanceMeters)
	}
	if plan.Accessible != nil || plan.HasAccessibleAlternative {
		t.Error("accessible variant computed without a ramp near the destination")
	}
	if plan.Metadata.Timestamp.IsZero() {
		t.Error("metadata timestamp not set")
	}

	// The reported distance matches the returned geometry.
	length := geo.PolylineLength(plan.Normal.Line)
	if math.Abs(plan.Normal.DistanceMeters-length) > length*0.05 {
		t.Errorf("distance %v deviates from geometry length %v", plan.Normal.DistanceMeters, length)
	}
}

func TestPlanAccessibleModeForcesVariant(t *testing.T) {
	store, _ := dataset.Open("")
	c := NewComposer(stubRouter{err: osrm.ErrUnavailable}, roadgraph.Hualien(), store, quietLogger())

	plan := c.Plan(context.Background(),
		orb.Point{121.606, 23.975}, orb.Point{121.611, 23.979}, DefaultParams(), true)

	if plan.Accessible == nil {
		t.Fatal("accessible variant is nil in accessible mode")
	}
	if plan.Accessible.Source != SourceSynthetic {
		t.Errorf("source = %q, want %q", plan.Accessible.Source, SourceSynthetic)
	}
	if !plan.HasAccessibleAlternative {
		t.Error("has_accessible_alternative = false")
	}
	if plan.Accessible.DurationSeconds < 1 {
		t.Errorf("duration = %v", plan.Accessible.DurationSeconds)
	}
}

func TestPlanRampGateWithoutAccessibleMode(t *testing.T) {
	store, _ := dataset.Open("")
	c := NewComposer(stubRouter{err: osrm.ErrUnavailable}, roadgraph.Hualien(), store, quietLogger())

	// Destination right next to the curb ramp at [121.605, 23.976].
	plan := c.Plan(context.Background(),
		orb.Point{121.602, 23.974}, orb.Point{121.6052, 23.9761}, DefaultParams(), false)

	if plan.Accessible == nil {
		t.Error("accessible variant is nil despite a ramp within 100 m of the destination")
	}
}

func TestPlanExternalNormal(t *testing.T) {
	c := NewComposer(stubRouter{resp: liveResponse(1500, nil)}, nil, nil, quietLogger())

	plan := c.Plan(context.Background(),
		orb.Point{121.606, 23.975}, orb.Point{121.611, 23.979}, DefaultParams(), false)

	if plan.Normal.Source != SourceExternal {
		t.Errorf("source = %q, want %q", plan.Normal.Source, SourceExternal)
	}
	if plan.Normal.DistanceMeters != 1500 {
		t.Errorf("distance = %v, want 1500", plan.Normal.DistanceMeters)
	}
	// 1500 m / 1.4 m/s = 1071.4 s, reported as 18 whole minutes.
	if plan.Normal.DurationSeconds != 1080 {
		t.Errorf("duration = %v, want 1080", plan.Normal.DurationSeconds)
	}
	if len(plan.Normal.Line) != 3 {
		t.Errorf("geometry has %d points, want 3", len(plan.Normal.Line))
	}
}

func TestPlanDiscardsUnsuitableLiveAccessible(t *testing.T) {
	stairs := []osrm.Step{{Name: "station overpass", Tags: osrm.StepTags{Highway: "steps"}}}
	c := NewComposer(stubRouter{resp: liveResponse(500, stairs)}, nil, nil, quietLogger())

	plan := c.Plan(context.Background(),
		orb.Point{121.606, 23.975}, orb.Point{121.611, 23.979}, DefaultParams(), true)

	// The normal route is served unfiltered, the accessible one is not.
	if plan.Normal == nil || plan.Normal.Source != SourceExternal {
		t.Errorf("normal = %+v", plan.Normal)
	}
	if plan.Accessible != nil {
		t.Error("unsuitable live route returned as accessible variant")
	}
	if plan.HasAccessibleAlternative {
		t.Error("has_accessible_alternative = true for a discarded route")
	}
}

func TestPlanAcceptsSuitableLiveAccessible(t *testing.T) {
	c := NewComposer(stubRouter{resp: liveResponse(1200, []osrm.Step{{Name: "Zhongshan Rd"}})}, nil, nil, quietLogger())

	plan := c.Plan(context.Background(),
		orb.Point{121.606, 23.975}, orb.Point{121.611, 23.979}, DefaultParams(), true)

	if plan.Accessible == nil {
		t.Fatal("accessible variant is nil for a clean 1.2 km route")
	}
	if plan.Accessible.Source != SourceExternal {
		t.Errorf("source = %q, want %q", plan.Accessible.Source, SourceExternal)
	}
	if !plan.Accessible.Assessment.SuitableForWheelchair {
		t.Error("suitable flag not set")
	}
	// Accessibility-parameterized duration uses the speed model, not the
	// upstream estimate.
	want := Duration(1200, DefaultParams())
	if plan.Accessible.DurationSeconds != want {
		t.Errorf("duration = %v, want %v", plan.Accessible.DurationSeconds, want)
	}
}

func TestPlanNeverFails(t *testing.T) {
	// No router, no graph, no data: the synthetic strategy still serves.
	c := NewComposer(stubRouter{err: osrm.ErrUnavailable}, nil, nil, quietLogger())

	start := orb.Point{121.606, 23.975}
	end := orb.Point{121.611, 23.979}
	plan := c.Plan(context.Background(), start, end, DefaultParams(), false)

	if plan.Normal == nil {
		t.Fatal("normal route is nil")
	}
	if plan.Normal.Source != SourceSynthetic {
		t.Errorf("source = %q, want %q", plan.Normal.Source, SourceSynthetic)
	}
	if plan.Normal.Line[0] != start || plan.Normal.Line[len(plan.Normal.Line)-1] != end {
		t.Error("synthetic route lost its endpoints")
	}
}
