// Package schedule evaluates schedule windows against wall-clock time.
// The resolver treats window definitions as opaque and asks this package
// whether one is live right now.
package schedule

import (
	"time"

	"github.com/roomcast/roomcast/internal/model"
)

// Recurrence values understood by the evaluator.
const (
	RecurrenceNone   = "none"
	RecurrenceDaily  = "daily"
	RecurrenceWeekly = "weekly"
)

// Activator decides whether a schedule window is live at a given instant.
type Activator interface {
	IsActiveNow(w model.ScheduleWindow, now time.Time) bool
}

// Evaluator is the standard window evaluator.
type Evaluator struct{}

func NewEvaluator() Evaluator { return Evaluator{} }

// IsActiveNow reports whether the window covers now, expanding daily and
// weekly recurrences from the window's first occurrence.
func (Evaluator) IsActiveNow(w model.ScheduleWindow, now time.Time) bool {
	if !w.Enabled {
		return false
	}
	if now.Before(w.Start) {
		return false
	}

	switch w.Recurrence {
	case RecurrenceDaily, RecurrenceWeekly:
		if w.RecurUntil != nil && now.After(*w.RecurUntil) {
			return false
		}
		step := 24 * time.Hour
		if w.Recurrence == RecurrenceWeekly {
			step = 7 * 24 * time.Hour
		}
		length := w.End.Sub(w.Start)
		if length <= 0 {
			return false
		}
		// position of now within the current recurrence cycle
		offset := now.Sub(w.Start) % step
		return offset < length
	default:
		// one-shot window
		return now.Before(w.End)
	}
}

// NextBoundary returns the next instant at which the window's activation
// can change, used by callers that cache resolution results.
func (Evaluator) NextBoundary(w model.ScheduleWindow, now time.Time) time.Time {
	if now.Before(w.Start) {
		return w.Start
	}
	switch w.Recurrence {
	case RecurrenceDaily, RecurrenceWeekly:
		step := 24 * time.Hour
		if w.Recurrence == RecurrenceWeekly {
			step = 7 * 24 * time.Hour
		}
		length := w.End.Sub(w.Start)
		offset := now.Sub(w.Start) % step
		if offset < length {
			// currently active; next change is this occurrence's end
			return now.Add(length - offset)
		}
		return now.Add(step - offset)
	default:
		return w.End
	}
}
