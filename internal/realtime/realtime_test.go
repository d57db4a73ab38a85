package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/safetour/routeguard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert(subject string) models.Alert {
	return models.NewAlert(subject, models.AlertOffRoute, models.PositionSample{Lat: 28.7, Lng: 77.1, Timestamp: 1000}, 140)
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(8)
	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readAlert(t *testing.T, conn *websocket.Conn) models.Alert {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string       `json:"event"`
		Data  models.Alert `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "alert", msg.Event)
	return msg.Data
}

func TestHubBroadcast(t *testing.T) {
	hub, url := startHub(t)
	c1 := dial(t, url)
	c2 := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	a := testAlert("u1")
	hub.Notify(a)

	got1 := readAlert(t, c1)
	got2 := readAlert(t, c2)
	assert.Equal(t, a.ID, got1.ID)
	assert.Equal(t, a.ID, got2.ID)
	assert.Equal(t, "u1", got1.SubjectID)
}

func TestHubSubjectFilter(t *testing.T) {
	hub, url := startHub(t)
	only := dial(t, url+"?subjectId=u2")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Notify(testAlert("u1"))
	want := testAlert("u2")
	hub.Notify(want)

	assert.Equal(t, want.ID, readAlert(t, only).ID, "other subjects are skipped")
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.NotPanics(t, func() { hub.Notify(testAlert("u1")) })
}

type fakePublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func TestRedisRelayPublishes(t *testing.T) {
	pub := &fakePublisher{}
	relay := NewRedisRelay(pub, "routeguard:alerts", 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	a := testAlert("u1")
	relay.Notify(a)
	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, "routeguard:alerts", pub.channels[0])
	var msg struct {
		Event string       `json:"event"`
		Data  models.Alert `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, a.ID, msg.Data.ID)
}

func TestRedisRelayDropsWhenFull(t *testing.T) {
	relay := NewRedisRelay(&fakePublisher{}, "c", 2)
	for i := 0; i < 10; i++ {
		relay.Notify(testAlert("u1"))
	}
	assert.Len(t, relay.queue, 2)
}

func TestRedisRelaySurvivesErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	relay := NewRedisRelay(pub, "c", 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	relay.Notify(testAlert("u1"))
	relay.Notify(testAlert("u1"))
	assert.Eventually(t, func() bool { return len(relay.queue) == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestOpenRedisWithoutAddr(t *testing.T) {
	assert.Nil(t, OpenRedis("", "", 0))
}
