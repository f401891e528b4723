package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/internal/models"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
	"github.com/noah-isme/event-calendar-api/pkg/export"
)

type eventSnapshotter interface {
	Snapshot(ctx context.Context) ([]dto.ResolvedEvent, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type icsRenderer interface {
	Render(entries []export.CalendarEntry, stamp time.Time) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	CalendarName string
}

// ExportService renders the resolved event snapshot as ICS, CSV or PDF.
type ExportService struct {
	events  eventSnapshotter
	ics     icsRenderer
	csv     csvRenderer
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(events eventSnapshotter, ics icsRenderer, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CalendarName == "" {
		cfg.CalendarName = "Events"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		events:  events,
		ics:     ics,
		csv:     csv,
		pdf:     pdf,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// csvColumns lead with the import columns so an export can be re-imported.
var csvColumns = append(append([]string{}, importColumns...),
	"id", "resolved_date", "unresolved_reason", "pattern")

// Export renders the current snapshot in format.
func (s *ExportService) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	switch format {
	case dto.ExportFormatICS, dto.ExportFormatCSV, dto.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	snapshot, err := s.events.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	var file *dto.ExportFile
	switch format {
	case dto.ExportFormatICS:
		file, err = s.renderICS(snapshot, now)
	case dto.ExportFormatCSV:
		file, err = s.renderCSV(snapshot)
	case dto.ExportFormatPDF:
		file, err = s.renderPDF(snapshot)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Filename = fmt.Sprintf("events-%s.%s", now.UTC().Format("20060102"), format)

	for _, skipped := range file.Skipped {
		s.logger.Info("event skipped from export",
			zap.String("format", format),
			zap.String("event_id", skipped.ID),
			zap.String("reason", skipped.Reason),
		)
	}
	s.metrics.RecordExport(format)
	return file, nil
}

func (s *ExportService) renderICS(snapshot []dto.ResolvedEvent, now time.Time) (*dto.ExportFile, error) {
	resolved, skipped := partition(snapshot)
	entries := make([]export.CalendarEntry, 0, len(resolved))
	for _, item := range resolved {
		entries = append(entries, export.CalendarEntry{
			ID:          item.ID,
			Summary:     item.Title,
			Description: deref(item.Description),
			Location:    deref(item.Location),
			Date:        *item.ResolvedDate,
		})
	}
	data, err := s.ics.Render(entries, now)
	if err != nil {
		return nil, err
	}
	return &dto.ExportFile{
		ContentType: "text/calendar; charset=utf-8",
		Data:        data,
		Included:    len(entries),
		Skipped:     skipped,
	}, nil
}

// renderCSV keeps unresolved events, with an empty date and the reason.
func (s *ExportService) renderCSV(snapshot []dto.ResolvedEvent) (*dto.ExportFile, error) {
	rows := make([]map[string]string, 0, len(snapshot))
	for _, item := range snapshot {
		row := eventRow(item.Event)
		row["id"] = item.ID
		row["pattern"] = item.Pattern
		if item.ResolvedDate != nil {
			row["resolved_date"] = item.ResolvedDate.String()
		} else if item.Unresolved != nil {
			row["unresolved_reason"] = item.Unresolved.Reason
		}
		rows = append(rows, row)
	}
	data, err := s.csv.Render(export.Dataset{Headers: csvColumns, Rows: rows})
	if err != nil {
		return nil, err
	}
	return &dto.ExportFile{
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
		Included:    len(rows),
	}, nil
}

// renderPDF lists resolved events as an agenda ordered by date.
func (s *ExportService) renderPDF(snapshot []dto.ResolvedEvent) (*dto.ExportFile, error) {
	resolved, skipped := partition(snapshot)
	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].ResolvedDate.Before(*resolved[j].ResolvedDate)
	})
	rows := make([]map[string]string, 0, len(resolved))
	for _, item := range resolved {
		rows = append(rows, map[string]string{
			"Date":     item.ResolvedDate.String(),
			"Day":      item.ResolvedDate.Weekday().String(),
			"Event":    item.Title,
			"Rule":     item.Pattern,
			"Location": deref(item.Location),
		})
	}
	data, err := s.pdf.Render(export.Dataset{
		Headers: []string{"Date", "Day", "Event", "Rule", "Location"},
		Rows:    rows,
		Widths:  []float64{2, 2, 4, 5, 3},
	}, s.cfg.CalendarName)
	if err != nil {
		return nil, err
	}
	return &dto.ExportFile{
		ContentType: "application/pdf",
		Data:        data,
		Included:    len(rows),
		Skipped:     skipped,
	}, nil
}

func partition(snapshot []dto.ResolvedEvent) ([]dto.ResolvedEvent, []dto.SkippedEvent) {
	resolved := make([]dto.ResolvedEvent, 0, len(snapshot))
	var skipped []dto.SkippedEvent
	for _, item := range snapshot {
		if item.ResolvedDate != nil {
			resolved = append(resolved, item)
			continue
		}
		reason := ""
		if item.Unresolved != nil {
			reason = item.Unresolved.Reason
		}
		skipped = append(skipped, dto.SkippedEvent{ID: item.ID, Title: item.Title, Reason: reason})
	}
	return resolved, skipped
}

// eventRow flattens an event into the import column layout.
func eventRow(event models.Event) map[string]string {
	row := map[string]string{
		"title":               event.Title,
		"date_type":           string(event.DateType),
		"description":         deref(event.Description),
		"location":            deref(event.Location),
		"nth_occurrence":      itoa(event.NthOccurrence),
		"day_of_week":         itoa(event.DayOfWeek),
		"month":               itoa(event.Month),
		"base_year":           itoa(event.BaseYear),
		"relative_period":     itoa(event.RelativePeriod),
		"relative_event_name": deref(event.RelativeEventName),
	}
	if event.StartDate != nil {
		row["start_date"] = event.StartDate.String()
	}
	if event.EndDate != nil {
		row["end_date"] = event.EndDate.String()
	}
	if event.RelativeUnit != nil {
		row["relative_unit"] = string(*event.RelativeUnit)
	}
	if event.RelativeDirection != nil {
		row["relative_direction"] = string(*event.RelativeDirection)
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func itoa(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
