package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/metrics"
	"github.com/gigboard/gigadmin/internal/models"
)

// DefaultChannel is the redis channel used when none is configured.
const DefaultChannel = "gigadmin:admin-actions"

const (
	defaultQueueSize = 1000
	publishTimeout   = 5 * time.Second
)

// ErrQueueFull is returned by Update when an action had to be dropped.
var ErrQueueFull = errors.New("publish queue full")

// Publisher sends a payload to a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisClient adapts a go-redis client to Publisher.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a RedisClient for addr.
func NewRedisClient(addr, password string, db int) *RedisClient {
	return &RedisClient{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Publish sends payload to channel.
func (r *RedisClient) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

// Ping checks connectivity.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Envelope is the JSON message published for each admin action.
type Envelope struct {
	models.AuditDetails
	PublishedAt time.Time `json:"publishedAt"`
}

// RedisPublisher buffers admin actions and publishes them from a single
// worker goroutine, so a slow broker never delays a mutation.
type RedisPublisher struct {
	pub     Publisher
	channel string
	log     *logrus.Logger
	jobs    chan Envelope
	now     func() time.Time
}

// NewRedisPublisher creates a RedisPublisher with the given queue capacity.
func NewRedisPublisher(pub Publisher, channel string, queueSize int, log *logrus.Logger) *RedisPublisher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	if channel == "" {
		channel = DefaultChannel
	}

	return &RedisPublisher{
		pub:     pub,
		channel: channel,
		log:     log,
		jobs:    make(chan Envelope, queueSize),
		now:     time.Now,
	}
}

// Name labels the observer in logs and metrics.
func (p *RedisPublisher) Name() string { return "redis_publisher" }

// Update enqueues the action. Non-blocking; a full queue drops it and returns ErrQueueFull.
func (p *RedisPublisher) Update(_ context.Context, action models.Action, details models.AuditDetails) error {
	details.Action = action

	select {
	case p.jobs <- Envelope{AuditDetails: details, PublishedAt: p.now().UTC()}:
		metrics.PublishQueueDepth.Set(float64(len(p.jobs)))

		return nil
	default:
		metrics.PublishDropped.Inc()

		return ErrQueueFull
	}
}

// Run publishes queued actions until ctx is cancelled, then drains the rest.
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case env := <-p.jobs:
			p.process(env)
		}
	}
}

func (p *RedisPublisher) drain() {
	for {
		select {
		case env := <-p.jobs:
			p.process(env)
		default:
			return
		}
	}
}

func (p *RedisPublisher) process(env Envelope) {
	metrics.PublishQueueDepth.Set(float64(len(p.jobs)))

	payload, err := json.Marshal(env)
	if err != nil {
		p.log.WithError(err).WithField("action", env.Action).Warn("encoding admin action envelope")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.pub.Publish(ctx, p.channel, payload); err != nil {
		p.log.WithError(fmt.Errorf("publishing to %s: %w", p.channel, err)).WithFields(logrus.Fields{
			"action":    env.Action,
			"entity_id": env.EntityID,
		}).Warn("admin action publish failed")
	}
}
