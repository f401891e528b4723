package dto

import (
	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

// EventRequest is the create/update payload. Per-mode completeness is checked
// by the service after tag validation.
type EventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Location    *string `json:"location" validate:"omitempty,max=500"`
	DateType    string  `json:"date_type" validate:"required,date_type"`

	StartDate *civil.Date `json:"start_date"`
	EndDate   *civil.Date `json:"end_date"`

	NthOccurrence *int `json:"nth_occurrence" validate:"omitempty,oneof=1 2 3 4 -1"`
	DayOfWeek     *int `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	Month         *int `json:"month" validate:"omitempty,min=1,max=12"`
	BaseYear      *int `json:"base_year" validate:"omitempty,min=1,max=9999"`

	RelativePeriod    *int    `json:"relative_period" validate:"omitempty,min=1"`
	RelativeUnit      *string `json:"relative_unit" validate:"omitempty,relative_unit"`
	RelativeDirection *string `json:"relative_direction" validate:"omitempty,relative_direction"`
	RelativeEventName *string `json:"relative_event_name" validate:"omitempty,min=1,max=200"`
}

// EventListQuery captures list filters.
type EventListQuery struct {
	DateType string
	Page     int
	PageSize int
}

// UnresolvedInfo explains why an event has no date.
type UnresolvedInfo struct {
	Reason  string `json:"reason"`
	EventID string `json:"event_id,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// ResolvedEvent is an event with its resolution. Exactly one of ResolvedDate
// and Unresolved is set.
type ResolvedEvent struct {
	models.Event
	ResolvedDate *civil.Date     `json:"resolved_date"`
	Unresolved   *UnresolvedInfo `json:"unresolved,omitempty"`
	Pattern      string          `json:"pattern"`
}

// RebaseYearRequest moves every nth event to a new base year.
type RebaseYearRequest struct {
	Year int `json:"year" validate:"required,min=1,max=9999"`
}

// RebaseYearResult reports how many events were re-based.
type RebaseYearResult struct {
	Year    int   `json:"year"`
	Updated int64 `json:"updated"`
}
