// Package geo provides the distance and projection math shared by the
// routing and navigation packages. Coordinates are orb.Points in
// (longitude, latitude) order, matching the wire format.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusMeters = 6_371_000.0

// degToMeters converts degree-scaled planar distances to meters.
const degToMeters = math.Pi / 180 * earthRadiusMeters

func toRad(d float64) float64 {
	return d * math.Pi / 180
}

// Haversine returns the great-circle distance in meters between two points.
// The inner sqrt argument is clamped to [0,1]; rounding noise on antipodal
// or identical points would otherwise push asin out of its domain.
func Haversine(a, b orb.Point) float64 {
	dLat := toRad(b.Lat() - a.Lat())
	dLon := toRad(b.Lon() - a.Lon())

	s1 := math.Sin(dLat / 2)
	s2 := math.Sin(dLon / 2)
	h := s1*s1 + math.Cos(toRad(a.Lat()))*math.Cos(toRad(b.Lat()))*s2*s2

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PolylineLength returns the total length in meters of a line string.
// Lines with fewer than two points have length 0.
func PolylineLength(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += Haversine(line[i-1], line[i])
	}
	return total
}

// Valid reports whether p is a finite (lon, lat) pair within range.
func Valid(p orb.Point) bool {
	if math.IsNaN(p.Lon()) || math.IsNaN(p.Lat()) || math.IsInf(p.Lon(), 0) || math.IsInf(p.Lat(), 0) {
		return false
	}
	return p.Lon() >= -180 && p.Lon() <= 180 && p.Lat() >= -90 && p.Lat() <= 90
}

// DistanceToSegment computes the distance in meters from point P to the
// segment AB, along with the projection ratio (0.0 = at A, 1.0 = at B).
// The projection runs in an equirectangular plane (good enough at city
// scale); the returned distance is the haversine distance from P to the
// projected nearest point.
func DistanceToSegment(p, a, b orb.Point) (dist float64, ratio float64) {
	cosLat := math.Cos(toRad((a.Lat() + b.Lat()) / 2))

	ax, ay := a.Lon()*cosLat, a.Lat()
	bx, by := b.Lon()*cosLat, b.Lat()
	px, py := p.Lon()*cosLat, p.Lat()

	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}

	nearest := orb.Point{
		a.Lon() + t*(b.Lon()-a.Lon()),
		a.Lat() + t*(b.Lat()-a.Lat()),
	}
	return Haversine(p, nearest), t
}

// RouteProgress returns how far along the route the position is, as a
// percentage in [0,100]. The position is matched to the closest segment;
// progress counts the full length of every segment before it. Degenerate
// routes (<2 points) report 0.
func RouteProgress(pos orb.Point, route orb.LineString) float64 {
	if len(route) < 2 {
		return 0
	}

	bestSeg := 0
	bestDist := math.Inf(1)
	for i := 0; i < len(route)-1; i++ {
		d, _ := DistanceToSegment(pos, route[i], route[i+1])
		if d < bestDist {
			bestDist = d
			bestSeg = i
		}
	}

	total := PolylineLength(route)
	if total <= 0 {
		return 0
	}

	var covered float64
	for i := 0; i < bestSeg; i++ {
		covered += Haversine(route[i], route[i+1])
	}

	pct := covered / total * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
