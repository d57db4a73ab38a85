package spatial

import "math"

// RouteMatch is the result of matching a point against a route
type RouteMatch struct {
	DistanceMeters float64 // +Inf when the route is empty
	NearestSegment int     // -1 when the route is empty
}

// Evaluable reports whether the match was made against a non-empty route
func (m RouteMatch) Evaluable() bool {
	return m.NearestSegment >= 0 && !math.IsInf(m.DistanceMeters, 1)
}

// DistanceToRoute finds the minimum distance from p to the route polyline and
// the index of the segment achieving it. Ties resolve to the lowest segment
// index. A single-point route is treated as a point with segment index 0.
func DistanceToRoute(p Point, route []Point) RouteMatch {
	switch len(route) {
	case 0:
		return RouteMatch{DistanceMeters: math.Inf(1), NearestSegment: -1}
	case 1:
		return RouteMatch{DistanceMeters: Distance(p, route[0]), NearestSegment: 0}
	}

	best := RouteMatch{DistanceMeters: math.Inf(1), NearestSegment: -1}
	for i := 0; i < len(route)-1; i++ {
		d := ProjectOntoSegment(p, route[i], route[i+1])
		if d < best.DistanceMeters {
			best = RouteMatch{DistanceMeters: d, NearestSegment: i}
		}
	}
	return best
}

// LinearRoute generates steps evenly spaced waypoints from -> to, both included.
// Fewer than two steps yields the two endpoints.
func LinearRoute(from, to Point, steps int) []Point {
	if steps < 2 {
		return []Point{from, to}
	}

	out := make([]Point, 0, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		out = append(out, Point{
			Lat: from.Lat + (to.Lat-from.Lat)*t,
			Lng: from.Lng + (to.Lng-from.Lng)*t,
		})
	}
	return out
}
