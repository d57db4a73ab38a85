package alert

import (
	"sync"

	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
	"github.com/safetour/routeguard/internal/models"
)

// DefaultMaxLog is the alert log cap used when none is configured
const DefaultMaxLog = 1000

// Subscriber receives every published alert. Notify is called synchronously
// from Publish and must not block; implementations buffer or drop.
type Subscriber interface {
	Notify(a models.Alert)
}

// SubscriberFunc adapts a function to Subscriber
type SubscriberFunc func(a models.Alert)

// Notify calls f(a)
func (f SubscriberFunc) Notify(a models.Alert) { f(a) }

// Sink is a bounded, append-only alert log with fan-out to subscribers.
// The log may exceed its cap between Trim calls; Trim drops the oldest
// excess entries in one pass.
type Sink struct {
	mu     sync.RWMutex
	log    []models.Alert
	maxLog int

	subsMu sync.RWMutex
	subs   map[uint64]Subscriber
	nextID uint64
}

// NewSink creates an alert sink holding at most maxLog entries after each Trim
func NewSink(maxLog int) *Sink {
	if maxLog <= 0 {
		maxLog = DefaultMaxLog
	}
	return &Sink{
		maxLog: maxLog,
		subs:   make(map[uint64]Subscriber),
	}
}

// Publish appends the alert and delivers it once to every current subscriber
func (s *Sink) Publish(a models.Alert) {
	s.mu.Lock()
	s.log = append(s.log, a)
	s.mu.Unlock()

	metrics.AlertsTotal.WithLabelValues(a.Kind).Inc()
	logger.L().Info("alert_published",
		"id", a.ID,
		"subject", a.SubjectID,
		"kind", a.Kind,
		"distance_m", a.DistanceMeters,
		"lat", a.Position.Lat,
		"lng", a.Position.Lng,
	)

	s.subsMu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subsMu.RUnlock()

	for _, sub := range subs {
		notify(sub, a)
	}
}

func notify(sub Subscriber, a models.Alert) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("alert_subscriber_panic", "err", r)
		}
	}()
	sub.Notify(a)
}

// Subscribe registers sub and returns a function that removes it. Removal is
// immediate for subsequent publishes and safe to call more than once.
func (s *Sink) Subscribe(sub Subscriber) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Subscribers returns the number of registered subscribers
func (s *Sink) Subscribers() int {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	return len(s.subs)
}

// ListForSubject returns the subject's alerts in publish order
func (s *Sink) ListForSubject(subjectID string) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Alert{}
	for _, a := range s.log {
		if a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the current log size
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// Trim drops the oldest entries above the cap and returns how many were removed
func (s *Sink) Trim() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.log) - s.maxLog
	if excess <= 0 {
		return 0
	}
	kept := make([]models.Alert, s.maxLog)
	copy(kept, s.log[excess:])
	s.log = kept
	return excess
}

// ChannelSubscriber buffers alerts on a channel and drops them when the
// buffer is full so a slow reader never stalls Publish.
type ChannelSubscriber struct {
	name string
	ch   chan models.Alert
}

// NewChannelSubscriber creates a subscriber with the given buffer size
func NewChannelSubscriber(name string, buffer int) *ChannelSubscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSubscriber{name: name, ch: make(chan models.Alert, buffer)}
}

// Notify enqueues a without blocking
func (c *ChannelSubscriber) Notify(a models.Alert) {
	select {
	case c.ch <- a:
	default:
		metrics.AlertsDroppedTotal.WithLabelValues(c.name).Inc()
	}
}

// C returns the receive side of the buffer
func (c *ChannelSubscriber) C() <-chan models.Alert {
	return c.ch
}
