// Package notify publishes "state changed" events so presentation clients
// know when to re-render.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventKind names the mutation that produced an event.
type EventKind string

const (
	EventCatalogLoaded   EventKind = "catalog.loaded"
	EventPollCreated     EventKind = "poll.created"
	EventVoteCast        EventKind = "vote.cast"
	EventPollPromoted    EventKind = "poll.promoted"
	EventReactionToggled EventKind = "reaction.toggled"
)

// Event is the payload published on every state change.
type Event struct {
	Kind    EventKind `json:"kind"`
	PollID  string    `json:"pollId,omitempty"`
	Version int64     `json:"version"`
	At      time.Time `json:"at"`
}

// Publisher announces state changes.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// RedisPublisher bumps a version counter and publishes each event on a
// Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher connects to redisURL and verifies the connection.
func NewRedisPublisher(redisURL, channel string, logger *zap.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisPublisherWithClient(client, channel, logger), nil
}

// NewRedisPublisherWithClient wraps an existing client.
func NewRedisPublisherWithClient(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

func (p *RedisPublisher) versionKey() string {
	return p.channel + ":version"
}

// Publish increments the version counter, stamps it on the event and
// publishes the JSON payload.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	version, err := p.client.Incr(ctx, p.versionKey()).Result()
	if err != nil {
		return fmt.Errorf("bump state version: %w", err)
	}
	event.Version = version
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.Debug("published state change",
		zap.String("kind", string(event.Kind)),
		zap.String("poll_id", event.PollID),
		zap.Int64("version", version),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// Version returns the current state version, zero before the first event.
func (p *RedisPublisher) Version(ctx context.Context) (int64, error) {
	v, err := p.client.Get(ctx, p.versionKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read state version: %w", err)
	}
	return v, nil
}

// Ping checks if Redis is reachable.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
