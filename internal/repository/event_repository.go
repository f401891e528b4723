package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-calendar-api/internal/models"
)

const eventColumns = `id, title, description, location, date_type, start_date, end_date, nth_occurrence, day_of_week, month, base_year,
relative_period, relative_unit, relative_direction, relative_event_name, created_at, updated_at`

const insertEventQuery = `INSERT INTO events (` + eventColumns + `)
VALUES (:id, :title, :description, :location, :date_type, :start_date, :end_date, :nth_occurrence, :day_of_week, :month, :base_year,
:relative_period, :relative_unit, :relative_direction, :relative_event_name, :created_at, :updated_at)`

// EventRepository persists events in PostgreSQL.
type EventRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewEventRepository constructs a PostgreSQL event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// List returns every event in stored order.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY created_at ASC, id ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetByID fetches an event. A missing row is sql.ErrNoRows.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event, assigning id and timestamps.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	r.stamp(event)
	if _, err := r.db.NamedExecContext(ctx, insertEventQuery, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// CreateMany inserts events in one transaction, keeping their order.
func (r *EventRepository) CreateMany(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	base := r.now()
	for i, event := range events {
		// Distinct creation times keep the import order stable in List.
		r.stampAt(event, base.Add(time.Duration(i)*time.Microsecond))
		if _, err := tx.NamedExecContext(ctx, insertEventQuery, event); err != nil {
			return fmt.Errorf("import event %q: %w", event.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Update overwrites an event's mutable fields.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = r.now()
	query := `UPDATE events SET title = :title, description = :description, location = :location, date_type = :date_type,
start_date = :start_date, end_date = :end_date, nth_occurrence = :nth_occurrence, day_of_week = :day_of_week, month = :month,
base_year = :base_year, relative_period = :relative_period, relative_unit = :relative_unit, relative_direction = :relative_direction,
relative_event_name = :relative_event_name, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(res)
}

// UpdateBaseYear sets base_year on every nth event and returns how many changed.
func (r *EventRepository) UpdateBaseYear(ctx context.Context, year int) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE events SET base_year = $1, updated_at = $2 WHERE date_type = $3", year, r.now(), models.DateTypeNth)
	if err != nil {
		return 0, fmt.Errorf("rebase events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rebase events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) stamp(event *models.Event) {
	r.stampAt(event, r.now())
}

func (r *EventRepository) stampAt(event *models.Event, at time.Time) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = at
	}
	event.UpdatedAt = at
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
