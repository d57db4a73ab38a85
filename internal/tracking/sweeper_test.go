package tracking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTrimmer struct {
	calls atomic.Int32
	panic bool
}

func (c *countingTrimmer) Trim() int {
	c.calls.Add(1)
	if c.panic {
		panic("trim failed")
	}
	return 2
}

func TestSweepOnceTrimsByWallClock(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.HistoryRetention = time.Hour
	e, _ := newTestEngine(cfg)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		ts := base.Add(time.Duration(i) * 30 * time.Minute).UnixMilli()
		_, err := e.ReportPosition("u1", sample(0, float64(i)*0.001, ts))
		require.NoError(t, err)
	}

	trim := &countingTrimmer{}
	sw := NewSweeper(e, trim, time.Minute)
	sw.now = func() time.Time { return base.Add(2 * time.Hour) }

	require.NoError(t, sw.SweepOnce())
	assert.Equal(t, int32(1), trim.calls.Load())

	h, err := e.History("u1")
	require.NoError(t, err)
	require.Len(t, h, 2, "samples at or after the cutoff survive")
	assert.Equal(t, base.Add(60*time.Minute).UnixMilli(), h[0].Timestamp)
	assert.Equal(t, base.Add(90*time.Minute).UnixMilli(), h[1].Timestamp)
}

func TestSweepOnceRecoversFromPanic(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(DefaultConfig())
	sw := NewSweeper(e, &countingTrimmer{panic: true}, time.Minute)

	var err error
	require.NotPanics(t, func() { err = sw.SweepOnce() })
	assert.ErrorContains(t, err, "trim failed")
}

func TestSweeperRunKeepsGoingAndStops(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(DefaultConfig())
	trim := &countingTrimmer{panic: true}
	sw := NewSweeper(e, trim, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return trim.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
