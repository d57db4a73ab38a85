package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
)

// LogTrimmer is anything holding a bounded log that is trimmed in bulk
type LogTrimmer interface {
	Trim() int
}

// Sweeper periodically trims subject histories past the retention window and
// the alert log past its cap. A failing pass is logged and the loop continues.
type Sweeper struct {
	engine    *Engine
	alerts    LogTrimmer
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewSweeper creates a sweeper. alerts may be nil.
func NewSweeper(engine *Engine, alerts LogTrimmer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		engine:    engine,
		alerts:    alerts,
		interval:  interval,
		retention: engine.Config().HistoryRetention,
		now:       time.Now,
	}
}

// Run blocks until ctx is done, sweeping once per interval
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(); err != nil {
				logger.L().Error("sweep_error", "err", err)
			}
		}
	}
}

// SweepOnce performs a single pass. Panics are converted into errors.
func (s *Sweeper) SweepOnce() (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panicked: %v", r)
		}
		metrics.SweepDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	samples := 0
	if s.retention > 0 {
		samples = s.engine.SweepHistory(s.now().Add(-s.retention))
	}
	alerts := 0
	if s.alerts != nil {
		alerts = s.alerts.Trim()
	}

	logger.L().Debug("sweep_done", "samples_trimmed", samples, "alerts_trimmed", alerts)
	return nil
}
