package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
	"github.com/safetour/routeguard/internal/models"
)

// Publisher is the subset of *redis.Client the relay needs
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// OpenRedis returns nil when addr is empty
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	logger.L().Debug("redis_open", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// RedisRelay republishes alerts on a Redis channel so that other
// processes can consume them. Notify queues; Run does the network I/O.
type RedisRelay struct {
	pub     Publisher
	channel string
	queue   chan models.Alert
	timeout time.Duration
}

// NewRedisRelay creates a relay with a bounded queue
func NewRedisRelay(pub Publisher, channel string, buffer int) *RedisRelay {
	if buffer <= 0 {
		buffer = 64
	}
	return &RedisRelay{
		pub:     pub,
		channel: channel,
		queue:   make(chan models.Alert, buffer),
		timeout: 2 * time.Second,
	}
}

// Notify implements alert.Subscriber
func (r *RedisRelay) Notify(a models.Alert) {
	select {
	case r.queue <- a:
	default:
		metrics.AlertsDroppedTotal.WithLabelValues("redis").Inc()
	}
}

// Run publishes queued alerts until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-r.queue:
			if err := r.publish(ctx, a); err != nil {
				logger.L().Warn("redis_publish_error", "channel", r.channel, "alert", a.ID, "err", err)
			}
		}
	}
}

func (r *RedisRelay) publish(ctx context.Context, a models.Alert) error {
	payload, err := json.Marshal(Message{Event: "alert", Data: a})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.pub.Publish(ctx, r.channel, payload).Err()
}
