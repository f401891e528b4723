package resolver

import (
	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

// link is one relative hop: the offset an event applies to its reference.
type link struct {
	eventID   string
	period    int
	unit      models.RelativeUnit
	direction models.RelativeDirection
}

// resolveRelative walks the reference chain depth-first with an explicit stack
// and visited set, resolves the non-relative event at its end and then applies
// the collected offsets from the innermost hop outwards.
func (r *Resolver) resolveRelative(event models.Event, all []models.Event) (civil.Date, error) {
	visited := map[string]struct{}{event.ID: {}}
	var chain []link

	current := event
	for current.DateType == models.DateTypeRelative {
		hop, err := relativeLink(current)
		if err != nil {
			return civil.Date{}, err
		}
		name := *current.RelativeEventName
		ref, ok := FindByTitle(all, name)
		if !ok {
			return civil.Date{}, fail(ReasonReferenceNotFound, current.ID, "no event titled %q", name)
		}
		if _, seen := visited[ref.ID]; seen {
			return civil.Date{}, fail(ReasonCircularReference, current.ID, "reference %q leads back to event %s", name, ref.ID)
		}
		visited[ref.ID] = struct{}{}
		chain = append(chain, hop)
		current = ref
	}

	date, err := r.resolveBase(current)
	if err != nil {
		return civil.Date{}, err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		hop := chain[i]
		if date, err = Offset(date, hop.period, hop.unit, hop.direction); err != nil {
			err.(*Error).EventID = hop.eventID
			return civil.Date{}, err
		}
	}
	return date, nil
}

func relativeLink(event models.Event) (link, error) {
	switch {
	case event.RelativePeriod == nil:
		return link{}, fail(ReasonMissingField, event.ID, "relative_period is required")
	case event.RelativeUnit == nil:
		return link{}, fail(ReasonMissingField, event.ID, "relative_unit is required")
	case event.RelativeDirection == nil:
		return link{}, fail(ReasonMissingField, event.ID, "relative_direction is required")
	case event.RelativeEventName == nil || *event.RelativeEventName == "":
		return link{}, fail(ReasonMissingField, event.ID, "relative_event_name is required")
	}
	if !validUnit(*event.RelativeUnit) {
		return link{}, fail(ReasonInvalidUnit, event.ID, "unit %q is not one of days, weeks, months, years", *event.RelativeUnit)
	}
	return link{
		eventID:   event.ID,
		period:    *event.RelativePeriod,
		unit:      *event.RelativeUnit,
		direction: *event.RelativeDirection,
	}, nil
}

func validUnit(unit models.RelativeUnit) bool {
	switch unit {
	case models.UnitDays, models.UnitWeeks, models.UnitMonths, models.UnitYears:
		return true
	}
	return false
}

// Offset shifts base by period units. Any direction other than "before" moves
// forward. Months and years use normalising calendar arithmetic.
func Offset(base civil.Date, period int, unit models.RelativeUnit, direction models.RelativeDirection) (civil.Date, error) {
	n := period
	if direction == models.DirectionBefore {
		n = -period
	}
	switch unit {
	case models.UnitDays:
		return base.AddDays(n), nil
	case models.UnitWeeks:
		return base.AddDays(7 * n), nil
	case models.UnitMonths:
		return base.AddMonths(n), nil
	case models.UnitYears:
		return base.AddYears(n), nil
	default:
		return civil.Date{}, fail(ReasonInvalidUnit, "", "unit %q is not one of days, weeks, months, years", unit)
	}
}

// FindByTitle returns the first event in snapshot order whose title equals
// title exactly. Duplicate titles are resolved by this first-match rule.
func FindByTitle(events []models.Event, title string) (models.Event, bool) {
	for _, event := range events {
		if event.Title == title {
			return event, true
		}
	}
	return models.Event{}, false
}
