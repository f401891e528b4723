package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/internal/models"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
)

// registerEventValidations adds the enum checks used by dto.EventRequest.
func registerEventValidations(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("date_type", func(fl validator.FieldLevel) bool {
		switch models.DateType(fl.Field().String()) {
		case models.DateTypeFixed, models.DateTypeNth, models.DateTypeRelative:
			return true
		}
		return false
	})
	_ = validate.RegisterValidation("relative_unit", func(fl validator.FieldLevel) bool {
		switch models.RelativeUnit(fl.Field().String()) {
		case models.UnitDays, models.UnitWeeks, models.UnitMonths, models.UnitYears:
			return true
		}
		return false
	})
	_ = validate.RegisterValidation("relative_direction", func(fl validator.FieldLevel) bool {
		switch models.RelativeDirection(fl.Field().String()) {
		case models.DirectionBefore, models.DirectionAfter:
			return true
		}
		return false
	})
	return validate
}

// validateEventRequest runs tag validation plus the per-mode required fields.
func validateEventRequest(validate *validator.Validate, req dto.EventRequest) error {
	if err := validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	switch models.DateType(req.DateType) {
	case models.DateTypeFixed:
		if req.StartDate == nil {
			return appErrors.Clone(appErrors.ErrValidation, "start_date is required for fixed events")
		}
		if req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
			return appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
		}
	case models.DateTypeNth:
		if req.NthOccurrence == nil || req.DayOfWeek == nil || req.Month == nil {
			return appErrors.Clone(appErrors.ErrValidation, "nth_occurrence, day_of_week and month are required for nth events")
		}
	case models.DateTypeRelative:
		if req.RelativePeriod == nil || req.RelativeUnit == nil || req.RelativeDirection == nil || req.RelativeEventName == nil {
			return appErrors.Clone(appErrors.ErrValidation, "relative_period, relative_unit, relative_direction and relative_event_name are required for relative events")
		}
	}
	return nil
}

// eventFromRequest builds an event carrying only the active mode's fields.
func eventFromRequest(req dto.EventRequest) models.Event {
	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		DateType:    models.DateType(req.DateType),
	}
	switch event.DateType {
	case models.DateTypeFixed:
		event.StartDate = req.StartDate
		event.EndDate = req.EndDate
	case models.DateTypeNth:
		event.NthOccurrence = req.NthOccurrence
		event.DayOfWeek = req.DayOfWeek
		event.Month = req.Month
		event.BaseYear = req.BaseYear
	case models.DateTypeRelative:
		event.RelativePeriod = req.RelativePeriod
		if req.RelativeUnit != nil {
			unit := models.RelativeUnit(*req.RelativeUnit)
			event.RelativeUnit = &unit
		}
		if req.RelativeDirection != nil {
			direction := models.RelativeDirection(*req.RelativeDirection)
			event.RelativeDirection = &direction
		}
		event.RelativeEventName = req.RelativeEventName
	}
	return event
}
