package osrm

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// maxSuitableDistance is the longest live route still considered
// wheelchair friendly. Longer trips get the synthetic treatment instead.
const maxSuitableDistance = 2000.0

// Barrier types reported by DetectBarriers.
const (
	BarrierStairs       = "stairs"
	BarrierAccessDenied = "access_denied"
	BarrierRoughTerrain = "rough_terrain"
	BarrierUnknown      = "unknown"
)

// Barrier is a wheelchair obstacle found on a routed step.
type Barrier struct {
	Type     string    `json:"type"`
	Road     string    `json:"road"`
	Location orb.Point `json:"location"`
	Length   float64   `json:"length_meters"`
	Reason   string    `json:"reason"`
}

// barrierStep reports whether a wheelchair cannot cross this step.
func barrierStep(s Step) bool {
	return s.Tags.Highway == "steps" ||
		strings.Contains(strings.ToLower(s.Name), "steps") ||
		s.Tags.Access == "no" ||
		s.Tags.Foot == "no" ||
		s.Tags.Highway == "track"
}

// barrierType maps an impassable step to a barrier type. A step flagged
// only by its name or by foot=no carries no classifying tag and stays
// unknown.
func barrierType(s Step) string {
	switch {
	case s.Tags.Highway == "steps":
		return BarrierStairs
	case s.Tags.Access == "no":
		return BarrierAccessDenied
	case s.Tags.Highway == "track":
		return BarrierRoughTerrain
	}
	return BarrierUnknown
}

func barrierReason(kind, road string) string {
	if road == "" {
		road = "an unnamed road"
	}
	switch kind {
	case BarrierStairs:
		return fmt.Sprintf("stairs on %s", road)
	case BarrierAccessDenied:
		return fmt.Sprintf("no access on %s", road)
	case BarrierRoughTerrain:
		return fmt.Sprintf("rough terrain on %s", road)
	}
	return fmt.Sprintf("unknown barrier on %s", road)
}

// DetectBarriers scans routed steps for features a wheelchair cannot
// cross. The barrier location is the first point of the offending step.
func DetectBarriers(steps []Step) []Barrier {
	var out []Barrier
	for _, s := range steps {
		if !barrierStep(s) {
			continue
		}
		kind := barrierType(s)
		b := Barrier{
			Type:   kind,
			Road:   s.Name,
			Length: s.Distance,
			Reason: barrierReason(kind, s.Name),
		}
		if line := s.Line(); len(line) > 0 {
			b.Location = line[0]
		}
		out = append(out, b)
	}
	return out
}

// IsWheelchairSuitable decides whether a live route can be served as-is.
// A route qualifies when it is barrier free and at most 2 km long. The
// returned reason explains a rejection and is empty on success.
func IsWheelchairSuitable(distance float64, barriers []Barrier) (bool, string) {
	if len(barriers) > 0 {
		return false, barriers[0].Reason
	}
	if distance > maxSuitableDistance {
		return false, fmt.Sprintf("route is %.0f m, beyond the %.0f m accessible limit", distance, maxSuitableDistance)
	}
	return true, ""
}
