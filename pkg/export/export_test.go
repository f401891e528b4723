package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

func TestICSEncoderRendersAllDayEvents(t *testing.T) {
	enc := NewICSEncoder("-//test//EN", "Holidays", "example.org")
	stamp := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

	data, err := enc.Render([]CalendarEntry{
		{ID: "e1", Summary: "Christmas", Description: "Family", Location: "Home", Date: civil.MustParse("2024-12-25")},
		{ID: "e2", Summary: "New Year's Eve", Date: civil.MustParse("2024-12-31")},
	}, stamp)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:-//test//EN")
	assert.Contains(t, out, "VERSION:2.0")
	assert.Contains(t, out, "CALSCALE:GREGORIAN")
	assert.Contains(t, out, "X-WR-CALNAME:Holidays")
	assert.Contains(t, out, "UID:e1@example.org")
	assert.Contains(t, out, "DTSTAMP:20240601T083000Z")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20241225")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20241226")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250101")
	assert.Contains(t, out, "LOCATION:Home")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Less(t, strings.Index(out, "UID:e1"), strings.Index(out, "UID:e2"))
}

func TestICSEncoderEmptyCalendar(t *testing.T) {
	data, err := NewICSEncoder("-//test//EN", "", "").Render(nil, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "BEGIN:VEVENT")
	assert.NotContains(t, string(data), "X-WR-CALNAME")
}

func TestParseICSReadsRenderedCalendar(t *testing.T) {
	data, err := NewICSEncoder("-//test//EN", "Holidays", "example.org").Render([]CalendarEntry{
		{ID: "e1", Summary: "Christmas", Date: civil.MustParse("2024-12-25")},
	}, time.Now())
	require.NoError(t, err)

	parsed, err := ParseICS(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.NoError(t, parsed[0].Err)
	assert.Equal(t, "Christmas", parsed[0].Summary)
	assert.Equal(t, "2024-12-25", parsed[0].Start.String())
	assert.Nil(t, parsed[0].End)
}

func TestParseICSMultiDayTimedAndMissingStart(t *testing.T) {
	input := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//other//EN",
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Conference",
		"DTSTART;VALUE=DATE:20240910",
		"DTEND;VALUE=DATE:20240913",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Standup",
		"DTSTART:20240315T093000Z",
		"DTEND:20240315T100000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:c",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Undated",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	parsed, err := ParseICS(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, "2024-09-10", parsed[0].Start.String())
	require.NotNil(t, parsed[0].End)
	assert.Equal(t, "2024-09-12", parsed[0].End.String())

	assert.Equal(t, "2024-03-15", parsed[1].Start.String())
	assert.Nil(t, parsed[1].End)

	assert.Equal(t, 3, parsed[2].Ordinal)
	assert.ErrorIs(t, parsed[2].Err, ErrMissingStart)
}

func TestReadCSVKeysByHeader(t *testing.T) {
	input := "\ufeffTitle, date_type ,start_date\n" +
		"Christmas,fixed,2024-12-25\n" +
		"\n" +
		"\"Multi\nline\",nth\n"

	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "Christmas", records[0].Get("title"))
	assert.Equal(t, "fixed", records[0].Get("date_type"))
	assert.Equal(t, "2024-12-25", records[0].Get("start_date"))

	assert.Equal(t, 4, records[1].Line)
	assert.Equal(t, "Multi\nline", records[1].Get("title"))
	assert.Equal(t, "", records[1].Get("start_date"))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyCSV)
}

func TestCSVExporterRender(t *testing.T) {
	data, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"title", "date"},
		Rows:    []map[string]string{{"title": "A, B", "date": "2024-01-01"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "title,date\n\"A, B\",2024-01-01\n", string(data))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	rows := make([]map[string]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, map[string]string{"title": strings.Repeat("Très long title ", 10), "date": "2024-01-01"})
	}
	data, err := NewPDFExporter().Render(Dataset{Headers: []string{"title", "date"}, Rows: rows, Widths: []float64{3, 1}}, "Agenda")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestColumnWidthsFallsBackToEvenSplit(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{0, 0}})
	assert.InDelta(t, pdfPageWidth/2, widths[0], 0.001)

	widths = columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{3, 1}})
	assert.InDelta(t, pdfPageWidth*0.75, widths[0], 0.001)
}
