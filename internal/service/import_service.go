package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
	"github.com/noah-isme/event-calendar-api/pkg/export"
)

// importColumns is the CSV layout read by imports and written by CSV exports.
var importColumns = []string{
	"title", "date_type", "start_date", "end_date",
	"nth_occurrence", "day_of_week", "month", "base_year",
	"relative_period", "relative_unit", "relative_direction", "relative_event_name",
	"description", "location",
}

type eventImporter interface {
	Validate(req dto.EventRequest) (models.Event, error)
	ImportEvents(ctx context.Context, events []*models.Event) error
}

// ImportService converts uploaded CSV and ICS files into events.
type ImportService struct {
	events  eventImporter
	metrics *MetricsService
	logger  *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(events eventImporter, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{events: events, metrics: metrics, logger: logger}
}

// Import reads format from r. Valid rows are stored together; invalid rows are
// reported and do not stop the batch.
func (s *ImportService) Import(ctx context.Context, format string, r io.Reader) (*dto.ImportReport, error) {
	var (
		candidates []importCandidate
		err        error
	)
	switch format {
	case dto.ImportFormatCSV:
		candidates, err = csvCandidates(r)
	case dto.ImportFormatICS:
		candidates, err = icsCandidates(r)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFile, fmt.Sprintf("unsupported import format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read import file")
	}

	report := &dto.ImportReport{
		Format: format,
		Total:  len(candidates),
		Failed: []dto.ImportRowError{},
		Events: []models.Event{},
	}
	valid := make([]*models.Event, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.err != nil {
			report.Failed = append(report.Failed, candidate.rowError(candidate.err))
			continue
		}
		event, err := s.events.Validate(candidate.req)
		if err != nil {
			report.Failed = append(report.Failed, candidate.rowError(err))
			continue
		}
		valid = append(valid, &event)
	}

	if len(valid) > 0 {
		if err := s.events.ImportEvents(ctx, valid); err != nil {
			return nil, err
		}
	}
	for _, event := range valid {
		report.Events = append(report.Events, *event)
	}
	report.Imported = len(valid)

	s.metrics.RecordImport(format, report.Imported, len(report.Failed))
	s.logger.Info("events imported",
		zap.String("format", format),
		zap.Int("total", report.Total),
		zap.Int("imported", report.Imported),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

type importCandidate struct {
	line int
	req  dto.EventRequest
	err  error
}

func (c importCandidate) rowError(err error) dto.ImportRowError {
	message := err.Error()
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Err == nil {
		message = appErr.Message
	}
	return dto.ImportRowError{Line: c.line, Title: c.req.Title, Message: message}
}

func csvCandidates(r io.Reader) ([]importCandidate, error) {
	records, err := export.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	candidates := make([]importCandidate, 0, len(records))
	for _, record := range records {
		req, err := requestFromRecord(record)
		candidates = append(candidates, importCandidate{line: record.Line, req: req, err: err})
	}
	return candidates, nil
}

func requestFromRecord(record export.Record) (dto.EventRequest, error) {
	req := dto.EventRequest{
		Title:             record.Get("title"),
		DateType:          record.Get("date_type"),
		Description:       optionalText(record.Get("description")),
		Location:          optionalText(record.Get("location")),
		RelativeUnit:      optionalText(record.Get("relative_unit")),
		RelativeDirection: optionalText(record.Get("relative_direction")),
		RelativeEventName: optionalText(record.Get("relative_event_name")),
	}
	var err error
	if req.StartDate, err = optionalDate(record, "start_date"); err != nil {
		return req, err
	}
	if req.EndDate, err = optionalDate(record, "end_date"); err != nil {
		return req, err
	}
	ints := []struct {
		column string
		target **int
	}{
		{"nth_occurrence", &req.NthOccurrence},
		{"day_of_week", &req.DayOfWeek},
		{"month", &req.Month},
		{"base_year", &req.BaseYear},
		{"relative_period", &req.RelativePeriod},
	}
	for _, field := range ints {
		if *field.target, err = optionalInt(record, field.column); err != nil {
			return req, err
		}
	}
	return req, nil
}

func icsCandidates(r io.Reader) ([]importCandidate, error) {
	parsed, err := export.ParseICS(r)
	if err != nil {
		return nil, err
	}
	candidates := make([]importCandidate, 0, len(parsed))
	for _, item := range parsed {
		start := item.Start
		candidate := importCandidate{
			line: item.Ordinal,
			req: dto.EventRequest{
				Title:       item.Summary,
				DateType:    string(models.DateTypeFixed),
				StartDate:   &start,
				EndDate:     item.End,
				Description: optionalText(item.Description),
				Location:    optionalText(item.Location),
			},
			err: item.Err,
		}
		if item.Err != nil {
			candidate.req.StartDate = nil
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func optionalText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func optionalInt(record export.Record, column string) (*int, error) {
	raw := record.Get(column)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer", column, raw)
	}
	return &v, nil
}

func optionalDate(record export.Record, column string) (*civil.Date, error) {
	raw := record.Get(column)
	if raw == "" {
		return nil, nil
	}
	d, err := civil.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", column, err)
	}
	return &d, nil
}
