package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/event-calendar-api/internal/models"
)

// MemoryEventRepository keeps events in a process-local map. Insertion order
// is the stored order.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events map[string]models.Event
	order  []string
	now    func() time.Time
}

// NewMemoryEventRepository constructs an empty in-memory store.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[string]models.Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns a copy of every event in stored order.
func (r *MemoryEventRepository) List(ctx context.Context) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]models.Event, 0, len(r.order))
	for _, id := range r.order {
		events = append(events, r.events[id])
	}
	return events, nil
}

// GetByID returns a copy of the event or sql.ErrNoRows.
func (r *MemoryEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &event, nil
}

// Create stores a new event.
func (r *MemoryEventRepository) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(event)
	return nil
}

// CreateMany stores events in order.
func (r *MemoryEventRepository) CreateMany(ctx context.Context, events []*models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range events {
		r.insert(event)
	}
	return nil
}

// Update replaces a stored event.
func (r *MemoryEventRepository) Update(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.events[event.ID]
	if !ok {
		return sql.ErrNoRows
	}
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = r.now()
	r.events[event.ID] = *event
	return nil
}

// Delete removes an event.
func (r *MemoryEventRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.events, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateBaseYear sets the base year of every nth event.
func (r *MemoryEventRepository) UpdateBaseYear(ctx context.Context, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	now := r.now()
	for id, event := range r.events {
		if event.DateType != models.DateTypeNth {
			continue
		}
		y := year
		event.BaseYear = &y
		event.UpdatedAt = now
		r.events[id] = event
		updated++
	}
	return updated, nil
}

func (r *MemoryEventRepository) insert(event *models.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := r.now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	if _, exists := r.events[event.ID]; !exists {
		r.order = append(r.order, event.ID)
	}
	r.events[event.ID] = *event
}
