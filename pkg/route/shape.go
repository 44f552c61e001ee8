package route

import (
	"math"

	"github.com/paulmach/orb"

	"accessnav/pkg/dataset"
	"accessnav/pkg/geo"
)

// Geometry post-processing for synthetic routes: splice in surveyed
// accessible roads near the endpoints, steer around known obstacles,
// then smooth out the jagged corners the splicing introduces.

const (
	obstacleRadiusMeters = 100
	smoothAngleDegrees   = 15
)

// spliceAccessibleRoads prepends the accessible road nearest the start
// and appends the one nearest the end, keeping the middle shape. Applied
// only when both endpoints have a qualifying road, so a lone match does
// not drag the route across town.
func spliceAccessibleRoads(line orb.LineString, start, end orb.Point, data *dataset.Store, p Params) orb.LineString {
	if data == nil || len(line) < 2 {
		return line
	}
	nearStart, okStart := data.NearestAccessibleRoad(start, p.MinWidth, p.MaxIncline)
	nearEnd, okEnd := data.NearestAccessibleRoad(end, p.MinWidth, p.MaxIncline)
	if !okStart || !okEnd {
		return line
	}

	out := make(orb.LineString, 0, len(line)+len(nearStart.Line)+len(nearEnd.Line)+2)
	out = append(out, start)
	out = append(out, nearStart.Line...)
	out = append(out, line[1:len(line)-1]...)
	out = append(out, nearEnd.Line...)
	out = append(out, end)
	return out
}

// avoidObstacles drops every point within radius meters of an obstacle.
// If that would empty the line, the original is returned instead; a
// route through a reported obstacle still beats no route.
func avoidObstacles(line orb.LineString, obstacles []orb.Point, radius float64) orb.LineString {
	if len(obstacles) == 0 {
		return line
	}
	out := make(orb.LineString, 0, len(line))
	for _, pt := range line {
		safe := true
		for _, ob := range obstacles {
			if geo.Haversine(pt, ob) < radius {
				safe = false
				break
			}
		}
		if safe {
			out = append(out, pt)
		}
	}
	if len(out) == 0 {
		return line
	}
	return out
}

// smooth removes interior points whose turn angle is at most angleDeg.
// Endpoints are always kept.
func smooth(line orb.LineString, angleDeg float64) orb.LineString {
	if len(line) < 3 {
		return line
	}
	out := orb.LineString{line[0]}
	for i := 1; i < len(line)-1; i++ {
		if turnAngle(line[i-1], line[i], line[i+1]) > angleDeg {
			out = append(out, line[i])
		}
	}
	out = append(out, line[len(line)-1])
	return out
}

// turnAngle returns the direction change at b in degrees, computed on
// raw coordinate deltas. Degenerate segments count as a full turn so
// duplicate points are kept rather than silently dropped.
func turnAngle(a, b, c orb.Point) float64 {
	v1x, v1y := b.Lon()-a.Lon(), b.Lat()-a.Lat()
	v2x, v2y := c.Lon()-b.Lon(), c.Lat()-b.Lat()

	m1 := math.Hypot(v1x, v1y)
	m2 := math.Hypot(v2x, v2y)
	if m1 == 0 || m2 == 0 {
		return 180
	}

	cos := (v1x*v2x + v1y*v2y) / (m1 * m2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
