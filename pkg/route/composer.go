package route

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"accessnav/pkg/dataset"
	"accessnav/pkg/geo"
	"accessnav/pkg/osrm"
	"accessnav/pkg/roadgraph"
)

// rampGateRadius is how close a known ramp must be to the destination
// before an accessible variant is computed without an explicit request.
const rampGateRadius = 100.0

// Router is the external routing dependency. *osrm.Client satisfies it.
type Router interface {
	FetchRoute(ctx context.Context, start, end orb.Point, opts osrm.FetchOptions) (*osrm.Response, error)
}

// Composer builds route plans from the available strategies.
type Composer struct {
	router Router
	graph  *roadgraph.Graph
	data   *dataset.Store
	log    *slog.Logger
	now    func() time.Time
}

// NewComposer wires the composer. graph and data may be nil; the
// corresponding strategies are then skipped.
func NewComposer(router Router, graph *roadgraph.Graph, data *dataset.Store, log *slog.Logger) *Composer {
	if log == nil {
		log = slog.Default()
	}
	return &Composer{
		router: router,
		graph:  graph,
		data:   data,
		log:    log,
		now:    time.Now,
	}
}

// strategy produces a normal route or reports why it cannot.
type strategy struct {
	name string
	run  func(ctx context.Context, start, end orb.Point, p Params) (*Result, error)
}

// Plan computes the normal route and, when the gate allows, the
// accessible variant. The normal route is guaranteed: strategies are
// tried in order and the last one cannot fail.
func (c *Composer) Plan(ctx context.Context, start, end orb.Point, p Params, accessibleMode bool) Plan {
	normal := c.normalRoute(ctx, start, end, p)

	var accessible *Result
	if c.accessibleGate(end, accessibleMode) {
		accessible = c.accessibleRoute(ctx, start, end, p)
	}

	return Plan{
		Normal:                   normal,
		Accessible:               accessible,
		HasAccessibleAlternative: accessible != nil,
		Metadata: Metadata{
			NormalDestination:     end,
			AccessibleDestination: end,
			Parameters:            p,
			Timestamp:             c.now(),
		},
	}
}

// normalRoute walks the strategy pipeline. The synthetic strategy at the
// end always succeeds, so the return value is never nil.
func (c *Composer) normalRoute(ctx context.Context, start, end orb.Point, p Params) *Result {
	strategies := []strategy{
		{name: SourceExternal, run: c.externalRoute},
		{name: SourceGraph, run: c.graphRoute},
		{name: SourceSynthetic, run: c.syntheticNormal},
	}

	for _, s := range strategies {
		res, err := s.run(ctx, start, end, p)
		if err != nil {
			c.log.Warn("route strategy failed", "strategy", s.name, "error", err)
			continue
		}
		return res
	}
	// Unreachable: syntheticNormal never returns an error.
	res, _ := c.syntheticNormal(ctx, start, end, p)
	return res
}

// externalRoute asks the live router for the general route.
func (c *Composer) externalRoute(ctx context.Context, start, end orb.Point, p Params) (*Result, error) {
	resp, err := c.router.FetchRoute(ctx, start, end, osrm.FetchOptions{})
	if err != nil {
		return nil, err
	}
	r := resp.Routes[0]
	return &Result{
		Line:           r.Line(),
		DistanceMeters: math.Round(r.Distance),
		// The general variant reports whole minutes, expressed in seconds.
		DurationSeconds: 60 * math.Round(r.Duration/60),
		Source:          SourceExternal,
		Assessment:      Assess(p),
	}, nil
}

// graphRoute runs the embedded road graph between snapped endpoints.
func (c *Composer) graphRoute(_ context.Context, start, end orb.Point, p Params) (*Result, error) {
	if c.graph == nil {
		return nil, roadgraph.ErrNoPath
	}
	path, err := c.graph.Path(start, end)
	if err != nil {
		return nil, err
	}

	line := make(orb.LineString, 0, len(path.Line)+2)
	line = append(line, start)
	line = append(line, path.Line...)
	line = append(line, end)

	distance := math.Round(geo.PolylineLength(line))
	notes := "routed over the local road network"
	if len(path.Roads) > 0 {
		notes += " via " + strings.Join(path.Roads, ", ")
	}

	return &Result{
		Line:            line,
		DistanceMeters:  distance,
		DurationSeconds: GraphDuration(distance, p),
		Source:          SourceGraph,
		Assessment: Assessment{
			Level:                 LevelMedium,
			Score:                 Assess(p).Score,
			Notes:                 notes,
			SuitableForWheelchair: true,
		},
	}, nil
}

// syntheticNormal draws the last-resort curve. It cannot fail.
func (c *Composer) syntheticNormal(_ context.Context, start, end orb.Point, p Params) (*Result, error) {
	line := fallbackCurve(start, end)
	distance := math.Round(geo.PolylineLength(line))
	return &Result{
		Line:            line,
		DistanceMeters:  distance,
		DurationSeconds: Duration(distance, p),
		Source:          SourceSynthetic,
		Assessment:      Assess(p),
	}, nil
}

// accessibleGate decides whether an accessible variant should be
// computed at all: either the caller asked for it, or the destination
// has a known ramp within reach.
func (c *Composer) accessibleGate(end orb.Point, accessibleMode bool) bool {
	if accessibleMode {
		return true
	}
	return c.data != nil && c.data.RampWithin(end, rampGateRadius)
}

// accessibleRoute computes the accessible variant. A live route that
// fails the suitability check is discarded entirely; an unreachable
// router degrades to the shaped synthetic route.
func (c *Composer) accessibleRoute(ctx context.Context, start, end orb.Point, p Params) *Result {
	resp, err := c.router.FetchRoute(ctx, start, end, osrm.FetchOptions{Steps: true})
	if err != nil {
		c.log.Warn("accessible route falling back to synthetic", "error", err)
		return c.syntheticAccessibleRoute(start, end, p)
	}

	r := resp.Routes[0]
	barriers := osrm.DetectBarriers(resp.Steps())
	if ok, reason := osrm.IsWheelchairSuitable(r.Distance, barriers); !ok {
		c.log.Info("live route not wheelchair suitable", "reason", reason)
		return nil
	}

	distance := math.Round(r.Distance)
	assessment := Assess(p)
	assessment.Barriers = barriers
	return &Result{
		Line:            r.Line(),
		DistanceMeters:  distance,
		DurationSeconds: Duration(distance, p),
		Source:          SourceExternal,
		Assessment:      assessment,
	}
}

// syntheticAccessibleRoute builds and shapes the template route:
// template by strictness, accessible-road splicing, obstacle avoidance,
// corner smoothing.
func (c *Composer) syntheticAccessibleRoute(start, end orb.Point, p Params) *Result {
	line := syntheticAccessible(start, end, p)
	line = spliceAccessibleRoads(line, start, end, c.data, p)
	if c.data != nil {
		line = avoidObstacles(line, c.data.ActiveObstaclePoints(), obstacleRadiusMeters)
	}
	line = smooth(line, smoothAngleDegrees)

	distance := math.Round(geo.PolylineLength(line))
	return &Result{
		Line:            line,
		DistanceMeters:  distance,
		DurationSeconds: Duration(distance, p),
		Source:          SourceSynthetic,
		Assessment:      Assess(p),
	}
}
