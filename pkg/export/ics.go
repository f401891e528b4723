package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

// CalendarEntry is one all-day VEVENT.
type CalendarEntry struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Date        civil.Date
}

// ICSEncoder renders entries as an RFC 5545 calendar.
type ICSEncoder struct {
	ProductID    string
	CalendarName string
	UIDDomain    string
}

// NewICSEncoder constructs an encoder.
func NewICSEncoder(productID, calendarName, uidDomain string) *ICSEncoder {
	return &ICSEncoder{ProductID: productID, CalendarName: calendarName, UIDDomain: uidDomain}
}

// Render writes one VEVENT per entry, in order. DTEND is the day after DTSTART
// because all-day end dates are exclusive.
func (e *ICSEncoder) Render(entries []CalendarEntry, stamp time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, e.ProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	if e.CalendarName != "" {
		cal.Props.SetText("X-WR-CALNAME", e.CalendarName)
	}

	stamp = stamp.UTC()
	for _, entry := range entries {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.uid(entry.ID))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDate(ical.PropDateTimeStart, entry.Date.In(time.UTC))
		event.Props.SetDate(ical.PropDateTimeEnd, entry.Date.AddDays(1).In(time.UTC))
		event.Props.SetText(ical.PropSummary, entry.Summary)
		if entry.Description != "" {
			event.Props.SetText(ical.PropDescription, entry.Description)
		}
		if entry.Location != "" {
			event.Props.SetText(ical.PropLocation, entry.Location)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ICSEncoder) uid(id string) string {
	if e.UIDDomain == "" {
		return id
	}
	return id + "@" + e.UIDDomain
}

// ParsedEvent is a VEVENT read from an ICS file. Ordinal is the 1-based
// position of the VEVENT in the input. End is inclusive and nil for
// single-day events. Err is set when the VEVENT could not be converted.
type ParsedEvent struct {
	Ordinal     int
	Summary     string
	Description string
	Location    string
	Start       civil.Date
	End         *civil.Date
	Err         error
}

// ErrMissingStart is reported for a VEVENT without DTSTART.
var ErrMissingStart = errors.New("VEVENT has no DTSTART")

// ParseICS reads every VEVENT from r. Timed starts keep the calendar date they
// name in their own zone; the time of day is dropped.
func ParseICS(r io.Reader) ([]ParsedEvent, error) {
	dec := ical.NewDecoder(r)
	var parsed []ParsedEvent
	ordinal := 0
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode ics: %w", err)
		}
		for _, event := range cal.Events() {
			ordinal++
			parsed = append(parsed, parseEvent(ordinal, event))
		}
	}
	return parsed, nil
}

func parseEvent(ordinal int, event ical.Event) ParsedEvent {
	item := ParsedEvent{Ordinal: ordinal}
	item.Summary, _ = event.Props.Text(ical.PropSummary)
	item.Summary = strings.TrimSpace(item.Summary)
	item.Description, _ = event.Props.Text(ical.PropDescription)
	item.Location, _ = event.Props.Text(ical.PropLocation)

	start, err := event.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		item.Err = fmt.Errorf("invalid DTSTART: %w", err)
		return item
	}
	if start.IsZero() {
		item.Err = ErrMissingStart
		return item
	}
	item.Start = civil.Of(start)

	end, err := event.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
	if err != nil {
		item.Err = fmt.Errorf("invalid DTEND: %w", err)
		return item
	}
	if !end.IsZero() {
		last := civil.Of(end)
		if isDateValue(event.Props.Get(ical.PropDateTimeEnd)) || isMidnight(end) {
			last = last.AddDays(-1)
		}
		if last.After(item.Start) {
			item.End = &last
		}
	}
	return item
}

func isDateValue(prop *ical.Prop) bool {
	if prop == nil {
		return false
	}
	return prop.ValueType() == ical.ValueDate || len(prop.Value) == len("20060102")
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}
