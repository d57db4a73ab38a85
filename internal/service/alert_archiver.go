package service

import (
	"context"
	"sync"

	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
	"github.com/safetour/routeguard/internal/models"
)

// AlertStore is implemented by repository.AlertRepository
type AlertStore interface {
	Insert(ctx context.Context, a models.Alert) error
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]models.Alert, error)
	Hotspots(ctx context.Context, precision, limit int) ([]models.Hotspot, error)
}

// AlertArchiver copies published alerts into durable storage. Notify only
// queues, so a slow disk never stalls position reporting.
type AlertArchiver struct {
	store AlertStore
	queue chan models.Alert
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewAlertArchiver creates an archiver with a bounded queue
func NewAlertArchiver(store AlertStore, buffer int) *AlertArchiver {
	if buffer <= 0 {
		buffer = 256
	}
	return &AlertArchiver{
		store: store,
		queue: make(chan models.Alert, buffer),
		stop:  make(chan struct{}),
	}
}

// Notify implements alert.Subscriber
func (a *AlertArchiver) Notify(alert models.Alert) {
	select {
	case a.queue <- alert:
	default:
		metrics.AlertsDroppedTotal.WithLabelValues("archive").Inc()
		logger.L().Warn("archive_queue_full", "alert", alert.ID, "subject", alert.SubjectID)
	}
}

// Start writes queued alerts until Close is called. It is independent of the
// server context so alerts raised by requests still in flight during
// shutdown are archived.
func (a *AlertArchiver) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case alert := <-a.queue:
				a.write(context.Background(), alert)
			case <-a.stop:
				for {
					select {
					case alert := <-a.queue:
						a.write(context.Background(), alert)
					default:
						return
					}
				}
			}
		}
	}()
}

// Close drains the queue and blocks until the writer goroutine exits.
// Call it after the HTTP server has stopped accepting requests.
func (a *AlertArchiver) Close() {
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
}

func (a *AlertArchiver) write(ctx context.Context, alert models.Alert) {
	if err := a.store.Insert(ctx, alert); err != nil {
		logger.L().Error("archive_insert_error", "alert", alert.ID, "err", err)
	}
}

// List returns archived alerts for a subject, newest first
func (a *AlertArchiver) List(ctx context.Context, subjectID string, limit int) ([]models.Alert, error) {
	if limit > 1000 {
		limit = 1000
	}
	return a.store.ListBySubject(ctx, subjectID, limit)
}

// Hotspots returns the cells with the most archived alerts
func (a *AlertArchiver) Hotspots(ctx context.Context, precision, limit int) ([]models.Hotspot, error) {
	if limit > 500 {
		limit = 500
	}
	return a.store.Hotspots(ctx, precision, limit)
}
