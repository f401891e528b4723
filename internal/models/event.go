package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

// DateType discriminates how an event's date is specified.
type DateType string

const (
	DateTypeFixed    DateType = "fixed"
	DateTypeNth      DateType = "nth"
	DateTypeRelative DateType = "relative"
)

// RelativeUnit is the unit of a relative offset.
type RelativeUnit string

const (
	UnitDays   RelativeUnit = "days"
	UnitWeeks  RelativeUnit = "weeks"
	UnitMonths RelativeUnit = "months"
	UnitYears  RelativeUnit = "years"
)

// RelativeDirection places a relative event before or after its reference.
type RelativeDirection string

const (
	DirectionBefore RelativeDirection = "before"
	DirectionAfter  RelativeDirection = "after"
)

// LastOccurrence is the nth_occurrence value meaning "last in the month".
const LastOccurrence = -1

// Event is a stored calendar entry. Only the field group matching DateType is
// meaningful; the others are ignored.
type Event struct {
	ID          string   `db:"id" json:"id"`
	Title       string   `db:"title" json:"title"`
	Description *string  `db:"description" json:"description,omitempty"`
	Location    *string  `db:"location" json:"location,omitempty"`
	DateType    DateType `db:"date_type" json:"date_type"`

	StartDate *civil.Date `db:"start_date" json:"start_date,omitempty"`
	EndDate   *civil.Date `db:"end_date" json:"end_date,omitempty"`

	NthOccurrence *int `db:"nth_occurrence" json:"nth_occurrence,omitempty"`
	DayOfWeek     *int `db:"day_of_week" json:"day_of_week,omitempty"`
	Month         *int `db:"month" json:"month,omitempty"`
	BaseYear      *int `db:"base_year" json:"base_year,omitempty"`

	RelativePeriod    *int               `db:"relative_period" json:"relative_period,omitempty"`
	RelativeUnit      *RelativeUnit      `db:"relative_unit" json:"relative_unit,omitempty"`
	RelativeDirection *RelativeDirection `db:"relative_direction" json:"relative_direction,omitempty"`
	RelativeEventName *string            `db:"relative_event_name" json:"relative_event_name,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows listings.
type EventFilter struct {
	DateType DateType
	Page     int
	PageSize int
}

var ordinals = map[int]string{1: "First", 2: "Second", 3: "Third", 4: "Fourth", 5: "Fifth", LastOccurrence: "Last"}

// Pattern describes the date specification in words. It is shown in place of a
// date when the event cannot be resolved.
func (e Event) Pattern() string {
	switch e.DateType {
	case DateTypeFixed:
		if e.StartDate == nil {
			return "Fixed date (not set)"
		}
		if e.EndDate != nil && e.EndDate.After(*e.StartDate) {
			return fmt.Sprintf("%s to %s", e.StartDate, e.EndDate)
		}
		return e.StartDate.String()
	case DateTypeNth:
		if e.NthOccurrence == nil || e.DayOfWeek == nil || e.Month == nil {
			return "Nth weekday (incomplete)"
		}
		ordinal, ok := ordinals[*e.NthOccurrence]
		if !ok {
			ordinal = fmt.Sprintf("#%d", *e.NthOccurrence)
		}
		weekday := fmt.Sprintf("day %d", *e.DayOfWeek)
		if *e.DayOfWeek >= 0 && *e.DayOfWeek <= 6 {
			weekday = time.Weekday(*e.DayOfWeek).String()
		}
		month := fmt.Sprintf("month %d", *e.Month)
		if *e.Month >= 1 && *e.Month <= 12 {
			month = time.Month(*e.Month).String()
		}
		desc := fmt.Sprintf("%s %s of %s", ordinal, weekday, month)
		if e.BaseYear != nil {
			desc = fmt.Sprintf("%s %d", desc, *e.BaseYear)
		}
		return desc
	case DateTypeRelative:
		if e.RelativePeriod == nil || e.RelativeUnit == nil || e.RelativeDirection == nil || e.RelativeEventName == nil {
			return "Relative date (incomplete)"
		}
		unit := string(*e.RelativeUnit)
		if *e.RelativePeriod == 1 {
			unit = strings.TrimSuffix(unit, "s")
		}
		return fmt.Sprintf("%d %s %s %s", *e.RelativePeriod, unit, *e.RelativeDirection, *e.RelativeEventName)
	default:
		return fmt.Sprintf("Unknown date type %q", e.DateType)
	}
}
