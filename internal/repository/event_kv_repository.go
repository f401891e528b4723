package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/models"
)

// EventKVRepository stores events in Redis: each event as JSON in a hash keyed
// by id, and the stored order as a list of ids.
type EventKVRepository struct {
	client   *redis.Client
	logger   *zap.Logger
	dataKey  string
	orderKey string
	now      func() time.Time
}

// NewEventKVRepository constructs a Redis-backed event store under prefix.
func NewEventKVRepository(client *redis.Client, prefix string, logger *zap.Logger) *EventKVRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "eventcal"
	}
	return &EventKVRepository{
		client:   client,
		logger:   logger,
		dataKey:  prefix + ":events:data",
		orderKey: prefix + ":events:order",
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns every event in stored order.
func (r *EventKVRepository) List(ctx context.Context) ([]models.Event, error) {
	ids, err := r.client.LRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", r.orderKey, err)
	}
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	values, err := r.client.HMGet(ctx, r.dataKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hmget %s: %w", r.dataKey, err)
	}
	events := make([]models.Event, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			r.logger.Warn("event id listed without payload", zap.String("id", ids[i]))
			continue
		}
		var event models.Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("unmarshal event %s: %w", ids[i], err)
		}
		events = append(events, event)
	}
	return events, nil
}

// GetByID fetches an event. A missing id is sql.ErrNoRows.
func (r *EventKVRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	raw, err := r.client.HGet(ctx, r.dataKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("redis hget %s: %w", id, err)
	}
	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", id, err)
	}
	return &event, nil
}

// Create stores a new event.
func (r *EventKVRepository) Create(ctx context.Context, event *models.Event) error {
	return r.CreateMany(ctx, []*models.Event{event})
}

// CreateMany stores events atomically, appending them to the stored order.
func (r *EventKVRepository) CreateMany(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	now := r.now()
	payloads := make(map[string]interface{}, len(events))
	ids := make([]interface{}, 0, len(events))
	for _, event := range events {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = now
		}
		event.UpdatedAt = now
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %q: %w", event.Title, err)
		}
		payloads[event.ID] = payload
		ids = append(ids, event.ID)
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.dataKey, payloads)
		pipe.RPush(ctx, r.orderKey, ids...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store events: %w", err)
	}
	return nil
}

// Update overwrites an existing event.
func (r *EventKVRepository) Update(ctx context.Context, event *models.Event) error {
	existing, err := r.GetByID(ctx, event.ID)
	if err != nil {
		return err
	}
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = r.now()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if err := r.client.HSet(ctx, r.dataKey, event.ID, payload).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", event.ID, err)
	}
	return nil
}

// Delete removes an event and its position in the stored order.
func (r *EventKVRepository) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, r.dataKey, id)
		pipe.LRem(ctx, r.orderKey, 0, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if removed.Val() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateBaseYear rewrites the base year of every nth event.
func (r *EventKVRepository) UpdateBaseYear(ctx context.Context, year int) (int64, error) {
	events, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	now := r.now()
	payloads := make(map[string]interface{})
	for _, event := range events {
		if event.DateType != models.DateTypeNth {
			continue
		}
		y := year
		event.BaseYear = &y
		event.UpdatedAt = now
		payload, err := json.Marshal(event)
		if err != nil {
			return 0, fmt.Errorf("marshal event %s: %w", event.ID, err)
		}
		payloads[event.ID] = payload
	}
	if len(payloads) == 0 {
		return 0, nil
	}
	if err := r.client.HSet(ctx, r.dataKey, payloads).Err(); err != nil {
		return 0, fmt.Errorf("redis rebase events: %w", err)
	}
	return int64(len(payloads)), nil
}

// Close releases the underlying Redis connection.
func (r *EventKVRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
