package dto

import "github.com/noah-isme/event-calendar-api/internal/models"

// Import formats accepted by the upload endpoint.
const (
	ImportFormatCSV = "csv"
	ImportFormatICS = "ics"
)

// ImportRowError describes a rejected import row. Line is 1-based and counts
// the header row for CSV; for ICS it is the VEVENT ordinal.
type ImportRowError struct {
	Line    int    `json:"line"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// ImportReport summarises an import.
type ImportReport struct {
	Format   string           `json:"format"`
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Failed   []ImportRowError `json:"failed"`
	Events   []models.Event   `json:"events"`
}

// Export formats.
const (
	ExportFormatICS = "ics"
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// SkippedEvent is an event left out of an export because it has no date.
type SkippedEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// ExportFile is a rendered export ready to be written to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Included    int
	Skipped     []SkippedEvent
}
