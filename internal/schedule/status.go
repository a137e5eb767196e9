package schedule

import (
	"strings"
	"time"
)

// Status is the evaluator's verdict for one (workflow, date) pair.
//
// The zero value is StatusNotScheduled: "no predicted occurrence" is the
// neutral answer, not an error.
type Status int

const (
	StatusNotScheduled Status = iota
	StatusCompleted
	StatusFailed
	StatusMissed
	StatusNotYet
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusMissed:
		return "missed"
	case StatusNotYet:
		return "not_yet"
	default:
		return "not_scheduled"
	}
}

// Execution is one entry of a workflow's recent run history. It is supplied
// by the snapshot layer and never mutated here. Status is the upstream
// system's free-form string; normalization happens once, inside Resolve.
type Execution struct {
	Status      string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Resolve decides what happened (or should have happened) to a workflow on
// the target date:
//
//  1. No cron expression: the workflow is manual, StatusNotScheduled.
//  2. An execution that started on the date wins: completed/success map to
//     StatusCompleted, failed/error to StatusFailed. A record with any other
//     status string falls through as if absent; the date is then judged by
//     the schedule alone. That gap is inherited upstream behavior, kept
//     until product intent says otherwise.
//  3. No usable execution: if the schedule is not due on the date (or the
//     cron is unparseable), StatusNotScheduled.
//  4. Due but not run: StatusMissed once the fire time has passed relative
//     to now, StatusNotYet before it. Dates before today have always passed,
//     dates after today never have, and an unknown fire time on today counts
//     as passed (an indeterminate slot cannot still be pending).
//
// Executions are matched by calendar day only, first hit wins; the caller
// supplies them pre-sorted.
func Resolve(cronExpr string, executions []Execution, date, now time.Time) Status {
	if strings.TrimSpace(cronExpr) == "" {
		return StatusNotScheduled
	}

	for _, exec := range executions {
		if !sameDay(exec.StartedAt, date) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(exec.Status)) {
		case "completed", "success":
			return StatusCompleted
		case "failed", "error":
			return StatusFailed
		}
		break
	}

	spec := Parse(cronExpr)
	if !OccursOn(spec, date) {
		return StatusNotScheduled
	}

	if firePassed(spec, date, now) {
		return StatusMissed
	}
	return StatusNotYet
}

func firePassed(s *Spec, date, now time.Time) bool {
	switch {
	case beforeDay(date, now):
		return true
	case beforeDay(now, date):
		return false
	}

	fire := FireTimeOf(s)
	if !fire.Known {
		return true
	}
	return now.Hour()*60+now.Minute() >= fire.Hour*60+fire.Minute
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// beforeDay reports whether a falls on an earlier calendar day than b.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
