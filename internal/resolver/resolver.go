// Package resolver turns an event's date specification into a concrete civil
// date. Resolution is pure: it reads an immutable snapshot of events, never
// mutates them and never caches, so every call recomputes from scratch.
package resolver

import (
	"sync"
	"time"

	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

// Resolver resolves event dates. The zero value is not usable; call New.
type Resolver struct {
	now     func() time.Time
	workers int
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used to default a missing base year.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithWorkers bounds the goroutines used by ResolveAll.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New constructs a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result pairs an event with its resolution outcome.
type Result struct {
	Event models.Event
	Date  civil.Date
	Err   error
}

// Resolved reports whether the event produced a date.
func (r Result) Resolved() bool {
	return r.Err == nil
}

// Resolve computes the date of event. all is the full snapshot used to look up
// relative references. Unresolvable input yields a *Error, never a panic.
func (r *Resolver) Resolve(event models.Event, all []models.Event) (civil.Date, error) {
	if event.DateType == models.DateTypeRelative {
		return r.resolveRelative(event, all)
	}
	return r.resolveBase(event)
}

// ResolveAll resolves every event against the same snapshot. Results keep the
// order of events.
func (r *Resolver) ResolveAll(events []models.Event) []Result {
	results := make([]Result, len(events))
	workers := r.workers
	if workers > len(events) {
		workers = len(events)
	}
	if workers <= 1 {
		for i, event := range events {
			date, err := r.Resolve(event, events)
			results[i] = Result{Event: event, Date: date, Err: err}
		}
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				date, err := r.Resolve(events[i], events)
				results[i] = Result{Event: events[i], Date: date, Err: err}
			}
		}()
	}
	for i := range events {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return results
}

// resolveBase handles the modes that do not depend on other events.
func (r *Resolver) resolveBase(event models.Event) (civil.Date, error) {
	switch event.DateType {
	case models.DateTypeFixed:
		return resolveFixed(event)
	case models.DateTypeNth:
		return r.resolveNth(event)
	default:
		return civil.Date{}, fail(ReasonMissingField, event.ID, "unknown date type %q", event.DateType)
	}
}

func resolveFixed(event models.Event) (civil.Date, error) {
	if event.StartDate == nil || event.StartDate.IsZero() {
		return civil.Date{}, fail(ReasonMissingField, event.ID, "start_date is required")
	}
	return *event.StartDate, nil
}
