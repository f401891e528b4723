package resolver

import (
	"errors"
	"fmt"
)

// Reason classifies why an event has no concrete date. These are data
// conditions, not program faults.
type Reason string

const (
	ReasonMissingField         Reason = "missing-fields"
	ReasonOutOfRangeOccurrence Reason = "no-such-occurrence"
	ReasonInvalidUnit          Reason = "invalid-unit"
	ReasonReferenceNotFound    Reason = "reference-not-found"
	ReasonCircularReference    Reason = "circular-reference"
)

// Sentinels for errors.Is checks against *Error.
var (
	ErrMissingField         = errors.New(string(ReasonMissingField))
	ErrOutOfRangeOccurrence = errors.New(string(ReasonOutOfRangeOccurrence))
	ErrInvalidUnit          = errors.New(string(ReasonInvalidUnit))
	ErrReferenceNotFound    = errors.New(string(ReasonReferenceNotFound))
	ErrCircularReference    = errors.New(string(ReasonCircularReference))
)

var sentinels = map[Reason]error{
	ReasonMissingField:         ErrMissingField,
	ReasonOutOfRangeOccurrence: ErrOutOfRangeOccurrence,
	ReasonInvalidUnit:          ErrInvalidUnit,
	ReasonReferenceNotFound:    ErrReferenceNotFound,
	ReasonCircularReference:    ErrCircularReference,
}

// Error is the unresolvable outcome of a resolution. EventID names the event
// in the chain where resolution stopped, which may differ from the event that
// was asked for.
type Error struct {
	Reason  Reason
	EventID string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("event %s: %s", e.EventID, e.Reason)
	}
	return fmt.Sprintf("event %s: %s: %s", e.EventID, e.Reason, e.Detail)
}

// Is matches the sentinel for e.Reason.
func (e *Error) Is(target error) bool {
	return sentinels[e.Reason] == target
}

// ReasonOf extracts the Reason from err, or "" when err is not an *Error.
func ReasonOf(err error) Reason {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Reason
	}
	return ""
}

func fail(reason Reason, eventID, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, EventID: eventID, Detail: fmt.Sprintf(format, args...)}
}
