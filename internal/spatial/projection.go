package spatial

import "math"

// ProjectOntoSegment returns the distance in meters from p to the segment [a,b].
//
// The three points are mapped onto a local equirectangular plane centered at a
// (longitudes scaled by cos(a.Lat)), p is projected onto the segment with the
// projection parameter clamped to [0,1], and the geodesic distance from p to the
// unprojected foot point is returned. Accurate for segments up to a few
// kilometers; not valid near the poles or across the antimeridian.
func ProjectOntoSegment(p, a, b Point) float64 {
	k := math.Cos(a.Lat * math.Pi / 180)

	dx := (b.Lng - a.Lng) * k
	dy := b.Lat - a.Lat
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return Distance(p, a)
	}

	px := (p.Lng - a.Lng) * k
	py := p.Lat - a.Lat

	t := (px*dx + py*dy) / len2
	t = math.Max(0, math.Min(1, t))

	foot := Point{Lat: a.Lat + t*dy}
	if k == 0 {
		foot.Lng = a.Lng + t*(b.Lng-a.Lng)
	} else {
		foot.Lng = a.Lng + t*dx/k
	}
	return Distance(p, foot)
}
