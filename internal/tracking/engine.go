package tracking

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
	"github.com/safetour/routeguard/internal/models"
	"github.com/safetour/routeguard/internal/spatial"
)

// Empty route policies
const (
	EmptyRouteOnRoute  = "on-route"  // cannot evaluate, report on-route (no alert)
	EmptyRouteOffRoute = "off-route" // treat a missing route as a deviation
)

// recentSummarySize is the number of history entries included per subject in ListAllTracked
const recentSummarySize = 5

// Config holds the engine's tunables
type Config struct {
	OffRouteThresholdMeters    float64
	EmptyRoutePolicy           string
	AlertOnEveryOffRouteSample bool
	HistoryRetention           time.Duration
	HistoryMaxSamples          int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		OffRouteThresholdMeters:    100,
		EmptyRoutePolicy:           EmptyRouteOnRoute,
		AlertOnEveryOffRouteSample: false,
		HistoryRetention:           24 * time.Hour,
		HistoryMaxSamples:          100,
	}
}

// AlertPublisher receives alerts raised by the engine
type AlertPublisher interface {
	Publish(alert models.Alert)
}

type subject struct {
	mu    sync.Mutex
	state trackState
}

// Engine owns all per-subject tracking state. Mutations for one subject are
// serialized by that subject's lock; different subjects never contend beyond
// the brief map lookup.
type Engine struct {
	cfg    Config
	zones  *spatial.ZoneIndex
	alerts AlertPublisher

	mu       sync.RWMutex
	subjects map[string]*subject
}

// NewEngine creates a tracking engine. alerts may be nil.
func NewEngine(cfg Config, zones *spatial.ZoneIndex, alerts AlertPublisher) *Engine {
	if zones == nil {
		zones = spatial.NewZoneIndex(nil)
	}
	return &Engine{
		cfg:      cfg,
		zones:    zones,
		alerts:   alerts,
		subjects: make(map[string]*subject),
	}
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Zones returns the configured zone index
func (e *Engine) Zones() *spatial.ZoneIndex {
	return e.zones
}

func (e *Engine) lookup(id string) (*subject, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.subjects[id]
	return s, ok
}

func (e *Engine) getOrCreate(id string) *subject {
	if s, ok := e.lookup(id); ok {
		return s
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.subjects[id]; ok {
		return s
	}
	s := &subject{}
	e.subjects[id] = s
	metrics.TrackedSubjects.Set(float64(len(e.subjects)))
	return s
}

func validSubjectID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	return nil
}

func validPoint(p spatial.Point) error {
	if !p.IsFinite() {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrInvalidInput)
	}
	if !p.InRange() {
		return fmt.Errorf("%w: coordinates out of range (%v, %v)", ErrInvalidInput, p.Lat, p.Lng)
	}
	return nil
}

// SetRoute replaces the subject's planned route. Past samples are not re-evaluated.
func (e *Engine) SetRoute(subjectID string, route []spatial.Point) error {
	if err := validSubjectID(subjectID); err != nil {
		return err
	}
	for i, p := range route {
		if err := validPoint(p); err != nil {
			return fmt.Errorf("route[%d]: %w", i, err)
		}
	}

	s := e.getOrCreate(subjectID)
	s.mu.Lock()
	s.state.setRoute(route)
	s.mu.Unlock()

	logger.L().Debug("route_set", "subject", subjectID, "waypoints", len(route))
	return nil
}

// Route returns a copy of the subject's planned route
func (e *Engine) Route(subjectID string) ([]spatial.Point, error) {
	s, ok := e.lookup(subjectID)
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]spatial.Point, len(s.state.route))
	copy(out, s.state.route)
	return out, nil
}

// ReportPosition ingests a live sample, updates the subject's state and raises
// alerts. Off-route alerts are edge-triggered unless AlertOnEveryOffRouteSample
// is set; danger-zone alerts fire when the subject enters a different danger zone.
func (e *Engine) ReportPosition(subjectID string, sample models.PositionSample) (models.RouteMatchResult, error) {
	if err := validSubjectID(subjectID); err != nil {
		return models.RouteMatchResult{}, err
	}
	if err := validPoint(sample.Point()); err != nil {
		return models.RouteMatchResult{}, err
	}

	s := e.getOrCreate(subjectID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if last := s.state.last; last != nil && sample.Timestamp < last.Timestamp {
		return models.RouteMatchResult{}, fmt.Errorf("%w: sample at %d is older than last accepted %d",
			ErrInvalidInput, sample.Timestamp, last.Timestamp)
	}

	tr := s.state.advance(sample, e.cfg, e.zones)
	metrics.PositionsTotal.Inc()

	result := models.RouteMatchResult{
		Accepted:       true,
		OffRoute:       tr.offRoute,
		NearestSegment: tr.match.NearestSegment,
	}
	if !tr.routeMissing {
		d := tr.match.DistanceMeters
		result.DistanceMeters = &d
	}

	if tr.offRoute {
		metrics.OffRouteSamplesTotal.Inc()
		if e.cfg.AlertOnEveryOffRouteSample || !tr.wasOffRoute {
			a := models.NewAlert(subjectID, models.AlertOffRoute, sample, 0)
			if tr.routeMissing {
				a.RouteMissing = true
			} else {
				a.DistanceMeters = tr.match.DistanceMeters
			}
			e.publish(a)
		}
	}

	if tr.enteredZone() && tr.zone.Kind == spatial.ZoneDanger {
		a := models.NewAlert(subjectID, models.AlertDangerZone, sample, spatial.Distance(sample.Point(), tr.zone.Center))
		a.Zone = tr.zone.Name
		e.publish(a)
	}

	return result, nil
}

func (e *Engine) publish(a models.Alert) {
	if e.alerts == nil {
		return
	}
	e.alerts.Publish(a)
}

// Status returns a snapshot of the subject's state
func (e *Engine) Status(subjectID string) (models.TrackStatus, error) {
	s, ok := e.lookup(subjectID)
	if !ok {
		return models.TrackStatus{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.status(subjectID), nil
}

// History returns the retained samples, oldest first
func (e *Engine) History(subjectID string) ([]models.PositionSample, error) {
	s, ok := e.lookup(subjectID)
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.recent(len(s.state.history)), nil
}

// ClearHistory empties the subject's history. Cumulative distance, route and
// last position are kept.
func (e *Engine) ClearHistory(subjectID string) error {
	s, ok := e.lookup(subjectID)
	if !ok {
		return ErrNotFound
	}
	s.mu.Lock()
	s.state.history = s.state.history[:0]
	s.mu.Unlock()
	return nil
}

// ListAllTracked returns a summary of every known subject ordered by id
func (e *Engine) ListAllTracked(now time.Time) []models.TrackedSummary {
	e.mu.RLock()
	ids := make([]string, 0, len(e.subjects))
	for id := range e.subjects {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)

	nowMs := now.UnixMilli()
	out := make([]models.TrackedSummary, 0, len(ids))
	for _, id := range ids {
		s, ok := e.lookup(id)
		if !ok {
			continue
		}
		s.mu.Lock()
		st := s.state.status(id)
		recent := s.state.recent(recentSummarySize)
		s.mu.Unlock()

		out = append(out, models.TrackedSummary{
			TrackStatus:     st,
			DurationMinutes: st.DurationMinutes(nowMs),
			RecentLocations: recent,
		})
	}
	return out
}

// Count returns the number of known subjects
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subjects)
}

// SweepHistory drops samples older than cutoff from every subject's history
// and returns the number removed. Each subject is trimmed under its own lock.
func (e *Engine) SweepHistory(cutoff time.Time) int {
	e.mu.RLock()
	subs := make([]*subject, 0, len(e.subjects))
	for _, s := range e.subjects {
		subs = append(subs, s)
	}
	e.mu.RUnlock()

	cutoffMs := cutoff.UnixMilli()
	removed := 0
	for _, s := range subs {
		s.mu.Lock()
		removed += s.state.trimHistory(cutoffMs, 0)
		s.mu.Unlock()
	}
	return removed
}
