package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/internal/resolver"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	CreateMany(ctx context.Context, events []*models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	UpdateBaseYear(ctx context.Context, year int) (int64, error)
}

const (
	defaultEventPageSize = 50
	maxEventPageSize     = 500
)

// EventService manages events and resolves their dates against the current
// store snapshot.
type EventService struct {
	repo      eventRepository
	resolver  *resolver.Resolver
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, res *resolver.Resolver, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *EventService {
	if res == nil {
		res = resolver.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		repo:      repo,
		resolver:  res,
		validator: registerEventValidations(validate),
		metrics:   metrics,
		logger:    logger,
	}
}

// Snapshot loads every stored event and resolves it. Results keep store order.
func (s *EventService) Snapshot(ctx context.Context) ([]dto.ResolvedEvent, error) {
	events, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(events), nil
}

// List returns resolved events, optionally filtered by date type, one page at a time.
func (s *EventService) List(ctx context.Context, query dto.EventListQuery) ([]dto.ResolvedEvent, *models.Pagination, error) {
	if query.DateType != "" {
		switch models.DateType(query.DateType) {
		case models.DateTypeFixed, models.DateTypeNth, models.DateTypeRelative:
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_type must be fixed, nth or relative")
		}
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultEventPageSize
	}
	if query.PageSize > maxEventPageSize {
		query.PageSize = maxEventPageSize
	}

	resolved, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	filtered := resolved
	if query.DateType != "" {
		filtered = make([]dto.ResolvedEvent, 0, len(resolved))
		for _, item := range resolved {
			if string(item.DateType) == query.DateType {
				filtered = append(filtered, item)
			}
		}
	}

	total := len(filtered)
	start := (query.Page - 1) * query.PageSize
	if start > total {
		start = total
	}
	end := start + query.PageSize
	if end > total {
		end = total
	}
	pagination := &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: total}
	return filtered[start:end], pagination, nil
}

// Get returns a single resolved event.
func (s *EventService) Get(ctx context.Context, id string) (*dto.ResolvedEvent, error) {
	events, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		if event.ID == id {
			view := s.resolveOne(event, events)
			return &view, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, req dto.EventRequest) (*dto.ResolvedEvent, error) {
	if err := validateEventRequest(s.validator, req); err != nil {
		return nil, err
	}
	event := eventFromRequest(req)
	event.ID = uuid.NewString()

	start := time.Now()
	err := s.repo.Create(ctx, &event)
	s.metrics.ObserveStore("create", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("date_type", string(event.DateType)))
	return s.Get(ctx, event.ID)
}

// Update replaces an event's content. Events that reference it by title see
// the change on their next resolution.
func (s *EventService) Update(ctx context.Context, id string, req dto.EventRequest) (*dto.ResolvedEvent, error) {
	if err := validateEventRequest(s.validator, req); err != nil {
		return nil, err
	}
	event := eventFromRequest(req)
	event.ID = id

	start := time.Now()
	err := s.repo.Update(ctx, &event)
	s.metrics.ObserveStore("update", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.logger.Info("event updated", zap.String("event_id", id))
	return s.Get(ctx, id)
}

// Delete removes an event. Events that referenced it become unresolvable.
func (s *EventService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStore("delete", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.logger.Info("event deleted", zap.String("event_id", id))
	return nil
}

// Preview resolves a payload against the stored events without saving it.
func (s *EventService) Preview(ctx context.Context, req dto.EventRequest) (*dto.ResolvedEvent, error) {
	if err := validateEventRequest(s.validator, req); err != nil {
		return nil, err
	}
	events, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	candidate := eventFromRequest(req)
	candidate.ID = "preview-" + uuid.NewString()
	view := s.resolveOne(candidate, events)
	return &view, nil
}

// RebaseYear moves every nth event to year.
func (s *EventService) RebaseYear(ctx context.Context, req dto.RebaseYearRequest) (*dto.RebaseYearResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "year must be between 1 and 9999")
	}
	start := time.Now()
	updated, err := s.repo.UpdateBaseYear(ctx, req.Year)
	s.metrics.ObserveStore("rebase_year", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rebase events")
	}
	s.logger.Info("nth events rebased", zap.Int("year", req.Year), zap.Int64("updated", updated))
	return &dto.RebaseYearResult{Year: req.Year, Updated: updated}, nil
}

// ImportEvents stores already validated events in one batch.
func (s *EventService) ImportEvents(ctx context.Context, events []*models.Event) error {
	for _, event := range events {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
	}
	start := time.Now()
	err := s.repo.CreateMany(ctx, events)
	s.metrics.ObserveStore("create_many", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported events")
	}
	return nil
}

// Validate checks a payload the way Create does, without storing it.
func (s *EventService) Validate(req dto.EventRequest) (models.Event, error) {
	if err := validateEventRequest(s.validator, req); err != nil {
		return models.Event{}, err
	}
	return eventFromRequest(req), nil
}

func (s *EventService) list(ctx context.Context) ([]models.Event, error) {
	start := time.Now()
	events, err := s.repo.List(ctx)
	s.metrics.ObserveStore("list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}
	return events, nil
}

func (s *EventService) resolveAll(events []models.Event) []dto.ResolvedEvent {
	results := s.resolver.ResolveAll(events)
	views := make([]dto.ResolvedEvent, len(results))
	for i, result := range results {
		views[i] = s.toView(result)
	}
	return views
}

func (s *EventService) resolveOne(event models.Event, all []models.Event) dto.ResolvedEvent {
	date, err := s.resolver.Resolve(event, all)
	return s.toView(resolver.Result{Event: event, Date: date, Err: err})
}

func (s *EventService) toView(result resolver.Result) dto.ResolvedEvent {
	view := dto.ResolvedEvent{Event: result.Event, Pattern: result.Event.Pattern()}
	if result.Resolved() {
		date := result.Date
		view.ResolvedDate = &date
		s.metrics.RecordResolution(string(result.Event.DateType), "resolved")
		return view
	}
	info := &dto.UnresolvedInfo{Reason: string(resolver.ReasonOf(result.Err))}
	var rerr *resolver.Error
	if errors.As(result.Err, &rerr) {
		info.EventID = rerr.EventID
		info.Detail = rerr.Detail
	}
	view.Unresolved = info
	s.metrics.RecordResolution(string(result.Event.DateType), info.Reason)
	s.logger.Debug("event unresolved",
		zap.String("event_id", result.Event.ID),
		zap.String("reason", info.Reason),
		zap.String("stopped_at", info.EventID),
	)
	return view
}
