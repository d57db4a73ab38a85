package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safetour/routeguard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	alerts []models.Alert
	fail   bool
	block  chan struct{}
}

func (m *memStore) Insert(ctx context.Context, a models.Alert) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *memStore) ListBySubject(ctx context.Context, subjectID string, limit int) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, 0)
	for i := len(m.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.alerts[i].SubjectID == subjectID {
			out = append(out, m.alerts[i])
		}
	}
	return out, nil
}

func (m *memStore) Hotspots(ctx context.Context, precision, limit int) ([]models.Hotspot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []models.Hotspot{{Cell: "ttnf", Count: int64(len(m.alerts))}}, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

func alertAt(ts int64) models.Alert {
	return models.NewAlert("u1", models.AlertOffRoute, models.PositionSample{Timestamp: ts}, 200)
}

func TestAlertArchiverWritesAndLists(t *testing.T) {
	store := &memStore{}
	arch := NewAlertArchiver(store, 8)
	arch.Start()

	arch.Notify(alertAt(1))
	arch.Notify(alertAt(2))
	require.Eventually(t, func() bool { return store.len() == 2 }, time.Second, 5*time.Millisecond)

	got, err := arch.List(context.Background(), "u1", 5000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Timestamp)

	spots, err := arch.Hotspots(context.Background(), 4, 10)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, int64(2), spots[0].Count)

	arch.Close()
}

func TestAlertArchiverDrainsOnShutdown(t *testing.T) {
	store := &memStore{}
	arch := NewAlertArchiver(store, 16)
	for i := int64(0); i < 10; i++ {
		arch.Notify(alertAt(i))
	}

	arch.Start()
	arch.Close()

	assert.Equal(t, 10, store.len())
}

func TestAlertArchiverKeepsWritingUntilClosed(t *testing.T) {
	store := &memStore{}
	arch := NewAlertArchiver(store, 64)
	arch.Start()

	for i := int64(0); i < 20; i++ {
		arch.Notify(alertAt(i))
	}
	arch.Close()
	arch.Close()

	assert.Equal(t, 20, store.len(), "alerts published before Close are archived")
}

func TestAlertArchiverDropsWhenQueueFull(t *testing.T) {
	store := &memStore{block: make(chan struct{})}
	arch := NewAlertArchiver(store, 2)

	done := make(chan struct{})
	go func() {
		for i := int64(0); i < 50; i++ {
			arch.Notify(alertAt(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
	assert.Len(t, arch.queue, 2)
	close(store.block)
}

func TestAlertArchiverSurvivesStoreErrors(t *testing.T) {
	store := &memStore{fail: true}
	arch := NewAlertArchiver(store, 4)
	arch.Start()

	arch.Notify(alertAt(1))
	assert.Eventually(t, func() bool { return len(arch.queue) == 0 }, time.Second, 5*time.Millisecond)

	arch.Close()
}
