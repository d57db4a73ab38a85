package tracking

import (
	"math"

	"github.com/safetour/routeguard/internal/models"
	"github.com/safetour/routeguard/internal/spatial"
)

// trackState is the mutable per-subject record. It is only touched while the
// owning subject's lock is held.
type trackState struct {
	route   []spatial.Point
	history []models.PositionSample
	last    *models.PositionSample

	cumulativeMeters float64
	speedKmh         float64
	headingDegrees   float64

	offRoute  bool
	match     spatial.RouteMatch
	evaluated bool
	zone      *spatial.Zone

	tripStart int64
	samples   int64
}

// transition describes what changed when a sample was applied
type transition struct {
	match        spatial.RouteMatch
	offRoute     bool
	wasOffRoute  bool
	routeMissing bool
	zone         *spatial.Zone
	prevZone     *spatial.Zone
}

// enteredZone reports whether the sample moved the subject into a different zone
func (t transition) enteredZone() bool {
	if t.zone == nil {
		return false
	}
	return t.prevZone == nil || t.prevZone.Name != t.zone.Name
}

// advance applies an accepted sample. The caller has already checked that the
// sample is not older than the last accepted one.
func (s *trackState) advance(sample models.PositionSample, cfg Config, zones *spatial.ZoneIndex) transition {
	tr := transition{wasOffRoute: s.offRoute, prevZone: s.zone}

	if s.last == nil {
		s.tripStart = sample.Timestamp
		s.speedKmh = 0
	} else {
		delta := spatial.Distance(s.last.Point(), sample.Point())
		s.cumulativeMeters += delta

		// Equal timestamps keep the previous speed instead of dividing by zero.
		if dtMs := sample.Timestamp - s.last.Timestamp; dtMs > 0 {
			s.speedKmh = (delta / 1000) / (float64(dtMs) / 3600000)
		}
		if delta > 0 {
			s.headingDegrees = spatial.Bearing(s.last.Point(), sample.Point())
		}
	}

	s.history = append(s.history, sample)
	cutoff := int64(math.MinInt64)
	if cfg.HistoryRetention > 0 {
		cutoff = sample.Timestamp - cfg.HistoryRetention.Milliseconds()
	}
	s.trimHistory(cutoff, cfg.HistoryMaxSamples)

	last := sample
	s.last = &last
	s.samples++

	tr.match = spatial.DistanceToRoute(sample.Point(), s.route)
	if tr.match.Evaluable() {
		tr.offRoute = tr.match.DistanceMeters > cfg.OffRouteThresholdMeters
	} else {
		tr.routeMissing = true
		tr.offRoute = cfg.EmptyRoutePolicy == EmptyRouteOffRoute
	}
	s.match = tr.match
	s.offRoute = tr.offRoute
	s.evaluated = true

	if z, ok := zones.Find(sample.Point()); ok {
		s.zone = &z
	} else {
		s.zone = nil
	}
	tr.zone = s.zone

	return tr
}

// trimHistory drops samples older than cutoffMs, then keeps at most maxSamples
// of the newest. Returns the number of samples removed.
func (s *trackState) trimHistory(cutoffMs int64, maxSamples int) int {
	drop := 0
	for drop < len(s.history) && s.history[drop].Timestamp < cutoffMs {
		drop++
	}
	if maxSamples > 0 && len(s.history)-drop > maxSamples {
		drop = len(s.history) - maxSamples
	}
	if drop == 0 {
		return 0
	}

	n := copy(s.history, s.history[drop:])
	s.history = s.history[:n]
	return drop
}

// setRoute replaces the planned route wholesale
func (s *trackState) setRoute(route []spatial.Point) {
	cp := make([]spatial.Point, len(route))
	copy(cp, route)
	s.route = cp
}

// status copies the state into an immutable snapshot
func (s *trackState) status(subjectID string) models.TrackStatus {
	st := models.TrackStatus{
		SubjectID:                subjectID,
		Route:                    make([]spatial.Point, len(s.route)),
		RouteLengthMeters:        spatial.PathLength(s.route),
		CumulativeDistanceMeters: s.cumulativeMeters,
		InstantaneousSpeedKmh:    s.speedKmh,
		HeadingDegrees:           s.headingDegrees,
		OffRoute:                 s.offRoute,
		TripStartTime:            s.tripStart,
		SampleCount:              s.samples,
		HistoryLength:            len(s.history),
	}
	copy(st.Route, s.route)

	if s.last != nil {
		last := *s.last
		st.LastPosition = &last
	}
	if s.evaluated && s.match.Evaluable() {
		d := s.match.DistanceMeters
		st.DeviationMeters = &d
	}
	if s.zone != nil {
		z := *s.zone
		st.InZone = &z
	}
	return st
}

// recent returns a copy of the newest n history samples
func (s *trackState) recent(n int) []models.PositionSample {
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.PositionSample, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}
