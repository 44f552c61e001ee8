// Package nav manages turn-by-turn navigation sessions: step generation
// from router maneuvers, position tracking against the active step, and
// session expiry.
package nav

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"accessnav/pkg/geo"
	"accessnav/pkg/osrm"
)

// Step is one turn-by-turn instruction. Distances are meters; durations
// are whole minutes, matching what navigation clients display.
type Step struct {
	Index           int            `json:"step"`
	Instruction     string         `json:"instruction"`
	DistanceMeters  float64        `json:"distance"`
	DurationMinutes float64        `json:"duration"`
	Line            orb.LineString `json:"coordinates,omitempty"`
	Type            string         `json:"type"`
}

// StepsFromManeuvers translates router steps into instruction steps.
func StepsFromManeuvers(steps []osrm.Step) []Step {
	out := make([]Step, 0, len(steps))
	for i, s := range steps {
		out = append(out, Step{
			Index:           i,
			Instruction:     instructionFor(s.Maneuver, s.Name, s.Distance),
			DistanceMeters:  math.Round(s.Distance),
			DurationMinutes: math.Round(s.Duration / 60),
			Line:            s.Line(),
			Type:            maneuverType(s.Maneuver),
		})
	}
	return out
}

func maneuverType(m osrm.Maneuver) string {
	if m.Type == "" {
		return "continue"
	}
	return m.Type
}

// instructionFor renders an English instruction for one maneuver.
func instructionFor(m osrm.Maneuver, roadName string, distance float64) string {
	road := "the current road"
	if roadName != "" {
		road = roadName
	}
	dist := ""
	if distance > 0 {
		dist = fmt.Sprintf(" for %.0f m", distance)
	}

	switch m.Type {
	case "depart":
		return fmt.Sprintf("head out along %s%s", road, dist)
	case "arrive":
		return "you have arrived at your destination"
	case "turn":
		switch m.Modifier {
		case "left":
			return fmt.Sprintf("turn left onto %s%s", road, dist)
		case "right":
			return fmt.Sprintf("turn right onto %s%s", road, dist)
		case "sharp left":
			return fmt.Sprintf("make a sharp left onto %s%s", road, dist)
		case "sharp right":
			return fmt.Sprintf("make a sharp right onto %s%s", road, dist)
		case "slight left":
			return fmt.Sprintf("bear left onto %s%s", road, dist)
		case "slight right":
			return fmt.Sprintf("bear right onto %s%s", road, dist)
		}
		return fmt.Sprintf("turn onto %s%s", road, dist)
	case "continue":
		return fmt.Sprintf("continue straight along %s%s", road, dist)
	case "fork":
		side := "right"
		if m.Modifier == "left" {
			side = "left"
		}
		return fmt.Sprintf("keep %s at the fork%s", side, dist)
	case "roundabout":
		exit := m.Exit
		if exit == 0 {
			exit = 1
		}
		return fmt.Sprintf("enter the roundabout and take exit %d%s", exit, dist)
	}
	return fmt.Sprintf("continue along %s%s", road, dist)
}

// SimulatedSteps is the fallback script when no maneuver data exists:
// depart, one continue covering 60% of the distance, arrive with the
// remaining 40%. Durations assume 1.0 m/s.
func SimulatedSteps(start, end orb.Point, routeType string) []Step {
	total := geo.Haversine(start, end)

	continueText := "continue along the planned route"
	if routeType == "accessible" {
		continueText = "continue along the accessible route"
	}

	return []Step{
		{Index: 0, Instruction: "start navigation from the origin", Type: "depart"},
		{
			Index:           1,
			Instruction:     continueText,
			DistanceMeters:  math.Round(total * 0.6),
			DurationMinutes: math.Round(total * 0.6 / 60),
			Type:            "continue",
		},
		{
			Index:           2,
			Instruction:     "approaching your destination",
			DistanceMeters:  math.Round(total * 0.4),
			DurationMinutes: math.Round(total * 0.4 / 60),
			Type:            "arrive",
		},
	}
}
