package nav

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"

	"accessnav/pkg/osrm"
	"accessnav/pkg/route"
)

// Planner recomputes routes for recalculation. *route.Composer
// satisfies it.
type Planner interface {
	Plan(ctx context.Context, start, end orb.Point, p route.Params, accessibleMode bool) route.Plan
}

// Manager ties step generation and the session store together.
type Manager struct {
	store   *Store
	router  route.Router
	planner Planner
	log     *slog.Logger
}

// NewManager wires the manager. router may be nil, which forces the
// simulated step script.
func NewManager(store *Store, router route.Router, planner Planner, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: store, router: router, planner: planner, log: log}
}

// Store exposes the underlying session store.
func (m *Manager) Store() *Store {
	return m.store
}

// Start generates steps for the trip and opens a session. It always
// succeeds; when the live router cannot provide maneuvers the session
// runs on the simulated script.
func (m *Manager) Start(ctx context.Context, start, end orb.Point, routeType string) *Session {
	steps := m.generateSteps(ctx, start, end, routeType)
	sess := m.store.Create(start, end, routeType, steps)
	m.log.Info("navigation session started",
		"session", sess.ID, "steps", len(steps), "route_type", routeType)
	return sess
}

// Recalculate plans a fresh route from the current position and builds
// new steps for it. The existing session is left untouched; the client
// starts a new one if it adopts the recalculated route.
func (m *Manager) Recalculate(ctx context.Context, position, end orb.Point, routeType string) (route.Plan, []Step) {
	plan := m.planner.Plan(ctx, position, end, route.DefaultParams(), routeType == "accessible")
	steps := m.generateSteps(ctx, position, end, routeType)
	return plan, steps
}

func (m *Manager) generateSteps(ctx context.Context, start, end orb.Point, routeType string) []Step {
	if m.router == nil {
		return SimulatedSteps(start, end, routeType)
	}

	resp, err := m.router.FetchRoute(ctx, start, end, osrm.FetchOptions{Steps: true})
	if err != nil {
		m.log.Warn("maneuver fetch failed, using simulated steps", "error", err)
		return SimulatedSteps(start, end, routeType)
	}
	steps := StepsFromManeuvers(resp.Steps())
	if len(steps) == 0 {
		return SimulatedSteps(start, end, routeType)
	}
	return steps
}

// TotalDistance sums step distances in meters.
func TotalDistance(steps []Step) float64 {
	var sum float64
	for _, s := range steps {
		sum += s.DistanceMeters
	}
	return sum
}

// TotalDuration sums step durations in minutes.
func TotalDuration(steps []Step) float64 {
	var sum float64
	for _, s := range steps {
		sum += s.DurationMinutes
	}
	return sum
}
