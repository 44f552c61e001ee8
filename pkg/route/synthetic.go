package route

import (
	"math"

	"github.com/paulmach/orb"

	"accessnav/pkg/geo"
)

// Synthetic route generation. When no router or graph can serve, the
// composer draws a plausible curve between the endpoints: linear
// interpolation with a sinusoidal lateral offset so the line does not
// look machine-drawn on a map. Amplitudes are in degrees of longitude;
// 0.0001 is roughly 10 m at this latitude.

// interpolate returns count+1 points from start to end, with offsetAt
// supplying the longitude offset for each progress ratio.
func interpolate(start, end orb.Point, count int, offsetAt func(t float64) float64) orb.LineString {
	line := make(orb.LineString, 0, count+1)
	for i := 0; i <= count; i++ {
		t := float64(i) / float64(count)
		line = append(line, orb.Point{
			start.Lon() + (end.Lon()-start.Lon())*t + offsetAt(t),
			start.Lat() + (end.Lat()-start.Lat())*t,
		})
	}
	return line
}

// highTemplate winds the most, simulating detours toward flatter and
// wider streets.
func highTemplate(start, end orb.Point) orb.LineString {
	d := geo.Haversine(start, end)
	count := int(math.Max(12, math.Round(d/40)))
	return interpolate(start, end, count, func(t float64) float64 {
		return math.Sin(t*math.Pi)*0.0003 + math.Sin(t*math.Pi*3)*0.0001
	})
}

// standardTemplate is a gentle single arc.
func standardTemplate(start, end orb.Point) orb.LineString {
	d := geo.Haversine(start, end)
	count := int(math.Max(8, math.Round(d/60)))
	return interpolate(start, end, count, func(t float64) float64 {
		return math.Sin(t*math.Pi) * 0.0002
	})
}

// basicTemplate is a fixed 8-segment curve with minimal sway, offset on
// both axes.
func basicTemplate(start, end orb.Point) orb.LineString {
	const count = 8
	line := make(orb.LineString, 0, count+1)
	for i := 0; i <= count; i++ {
		t := float64(i) / float64(count)
		curve := math.Sin(t*math.Pi) * 0.0001
		line = append(line, orb.Point{
			start.Lon() + (end.Lon()-start.Lon())*t + curve,
			start.Lat() + (end.Lat()-start.Lat())*t + curve,
		})
	}
	return line
}

// syntheticAccessible picks a template by parameter strictness. Stricter
// requirements get a more winding line, mirroring the longer detours a
// real accessible route would take.
func syntheticAccessible(start, end orb.Point, p Params) orb.LineString {
	switch {
	case p.MaxIncline <= 0.05 && p.MinWidth >= 1.0:
		return highTemplate(start, end)
	case p.MaxIncline <= 0.08 && p.MinWidth >= 0.9:
		return standardTemplate(start, end)
	}
	return basicTemplate(start, end)
}

// fallbackCurve is the last-resort normal route shape.
func fallbackCurve(start, end orb.Point) orb.LineString {
	d := geo.Haversine(start, end)
	count := int(math.Max(10, math.Round(d/60)))
	return interpolate(start, end, count, func(t float64) float64 {
		return math.Sin(t*math.Pi) * 0.0002
	})
}
