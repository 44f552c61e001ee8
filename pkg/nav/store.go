package nav

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"accessnav/pkg/geo"
)

// ErrSessionNotFound is returned for unknown or expired session ids. It
// is a normal condition, not a fault: sessions expire under their users.
var ErrSessionNotFound = errors.New("navigation session not found")

// Completion thresholds in meters.
const (
	arriveRadius   = 20 // final step: this close to the destination counts as arrival
	nextStepRadius = 15 // non-final step: this close to the next step's start advances
	offRouteLimit  = 50 // further than this from the current step's geometry is off route
)

// Session defaults.
const (
	DefaultMaxAge        = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// PositionSample is one recorded user position.
type PositionSample struct {
	Position orb.Point `json:"position"`
	Step     int       `json:"step"`
	At       time.Time `json:"timestamp"`
}

// Session is one active navigation run.
type Session struct {
	ID        string           `json:"id"`
	Start     orb.Point        `json:"start"`
	End       orb.Point        `json:"end"`
	RouteType string           `json:"route_type"`
	Steps     []Step           `json:"steps"`
	CreatedAt time.Time        `json:"created_at"`
	History   []PositionSample `json:"-"`
}

// Update is the response to a position report.
type Update struct {
	StepCompleted   bool   `json:"step_completed"`
	OffRoute        bool   `json:"off_route"`
	NextInstruction string `json:"next_instruction,omitempty"`
	CurrentStep     int    `json:"current_step"`
	Progress        int    `json:"progress"`
}

// Store holds active sessions and sweeps out expired ones. Construct
// with NewStore and release with Close.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	maxAge   time.Duration
	now      func() time.Time
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewStore creates a session store. Non-positive durations select the
// defaults. The sweep goroutine runs until Close.
func NewStore(maxAge, sweepInterval time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	s := &Store{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Close stops the sweep goroutine. Sessions remain readable afterwards.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

// Create registers a new session and returns it with a fresh id.
func (s *Store) Create(start, end orb.Point, routeType string, steps []Step) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        newSessionID(s.now()),
		Start:     start,
		End:       end,
		RouteType: routeType,
		Steps:     steps,
		CreatedAt: s.now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a session by id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Stop removes a session. Removing an absent id is a no-op.
func (s *Store) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RecordPosition appends the sample to the session history and evaluates
// step completion, off-route state, and overall progress. currentStep is
// the client's view of where it is; the server does not second-guess it.
func (s *Store) RecordPosition(id string, pos orb.Point, currentStep int) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Update{}, ErrSessionNotFound
	}

	// Client step indexes are not trusted.
	if currentStep < 0 {
		currentStep = 0
	}

	sess.History = append(sess.History, PositionSample{
		Position: pos,
		Step:     currentStep,
		At:       s.now(),
	})

	completed := stepCompleted(sess, pos, currentStep)
	update := Update{
		StepCompleted: completed,
		OffRoute:      offRoute(sess, pos, currentStep),
		CurrentStep:   currentStep,
		Progress:      progress(currentStep, completed, len(sess.Steps)),
	}
	if completed && currentStep < len(sess.Steps)-1 {
		update.NextInstruction = sess.Steps[currentStep+1].Instruction
	}
	return update, nil
}

// stepCompleted checks whether the client finished its current step.
func stepCompleted(sess *Session, pos orb.Point, currentStep int) bool {
	if currentStep >= len(sess.Steps)-1 {
		return geo.Haversine(pos, sess.End) < arriveRadius
	}

	next := sess.Steps[currentStep+1]
	if len(next.Line) > 0 {
		return geo.Haversine(pos, next.Line[0]) < nextStepRadius
	}

	// No geometry to measure against: a coarse index-ratio check.
	total := float64(len(sess.Steps))
	stepProgress := math.Min(1, float64(currentStep)/total)
	expected := float64(currentStep+1) / total
	return stepProgress >= expected-0.1
}

// offRoute reports whether pos strayed too far from the current step's
// geometry. Steps without geometry never report off route.
func offRoute(sess *Session, pos orb.Point, currentStep int) bool {
	if currentStep < 0 || currentStep >= len(sess.Steps) {
		return false
	}
	line := sess.Steps[currentStep].Line
	if len(line) == 0 {
		return false
	}

	min := math.Inf(1)
	for _, pt := range line {
		if d := geo.Haversine(pos, pt); d < min {
			min = d
		}
	}
	return min > offRouteLimit
}

func progress(currentStep int, completed bool, totalSteps int) int {
	if totalSteps == 0 {
		return 0
	}
	done := currentStep
	if completed {
		done++
	}
	return int(math.Round(100 * float64(done) / float64(totalSteps)))
}

// sweep drops sessions older than maxAge.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.maxAge {
			delete(s.sessions, id)
		}
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func newSessionID(t time.Time) string {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return fmt.Sprintf("nav_%d_%s", t.UnixMilli(), b.String())
}
