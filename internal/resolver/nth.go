package resolver

import (
	"time"

	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

func (r *Resolver) resolveNth(event models.Event) (civil.Date, error) {
	switch {
	case event.NthOccurrence == nil:
		return civil.Date{}, fail(ReasonMissingField, event.ID, "nth_occurrence is required")
	case event.DayOfWeek == nil:
		return civil.Date{}, fail(ReasonMissingField, event.ID, "day_of_week is required")
	case event.Month == nil:
		return civil.Date{}, fail(ReasonMissingField, event.ID, "month is required")
	case *event.DayOfWeek < 0 || *event.DayOfWeek > 6:
		return civil.Date{}, fail(ReasonMissingField, event.ID, "day_of_week %d is not 0-6", *event.DayOfWeek)
	case *event.Month < 1 || *event.Month > 12:
		return civil.Date{}, fail(ReasonMissingField, event.ID, "month %d is not 1-12", *event.Month)
	}

	year := r.now().Year()
	if event.BaseYear != nil {
		year = *event.BaseYear
	}

	date, err := NthWeekday(year, time.Month(*event.Month), time.Weekday(*event.DayOfWeek), *event.NthOccurrence)
	if err != nil {
		err.EventID = event.ID
		return civil.Date{}, err
	}
	return date, nil
}

// NthWeekday returns the nth weekday of the month, or the last one when n is
// models.LastOccurrence. A month without an nth such weekday is an
// ErrOutOfRangeOccurrence; the date is never clamped.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) (civil.Date, *Error) {
	if n == models.LastOccurrence {
		return lastWeekday(year, month, weekday), nil
	}
	if n < 1 {
		return civil.Date{}, fail(ReasonOutOfRangeOccurrence, "", "occurrence %d is not valid", n)
	}

	date := firstWeekday(year, month, weekday).AddDays((n - 1) * 7)
	if date.Month != month || date.Year != year {
		return civil.Date{}, fail(ReasonOutOfRangeOccurrence, "", "%s %d has no occurrence %d of %s", month, year, n, weekday)
	}
	return date, nil
}

// firstWeekday scans forward from the 1st.
func firstWeekday(year int, month time.Month, weekday time.Weekday) civil.Date {
	date := civil.Date{Year: year, Month: month, Day: 1}
	for date.Weekday() != weekday {
		date = date.AddDays(1)
	}
	return date
}

// lastWeekday scans backward from the last day of the month. It is kept apart
// from firstWeekday because a month holds either four or five of a weekday.
func lastWeekday(year int, month time.Month, weekday time.Weekday) civil.Date {
	date := civil.Date{Year: year, Month: month, Day: civil.DaysIn(year, month)}
	for date.Weekday() != weekday {
		date = date.AddDays(-1)
	}
	return date
}
