// Package schedule evaluates workflow cron schedules against execution
// history.
//
// # Overview
//
// The package is a stack of small pure functions, each depending only on the
// one below it:
//
//   - Parse turns a 5-field cron string into a Spec (or nil when malformed).
//   - FireTimeOf derives the single daily hour:minute a Spec fires at, when
//     one exists.
//   - OccursOn decides whether a Spec is due on a calendar date.
//   - Resolve combines a cron string, a workflow's recent executions, a
//     target date and the current time into a Status.
//   - Classify and Position are presentation-facing: the former buckets a
//     cron string into a frequency label, the latter maps a fire time onto a
//     zoomable 24-hour ruler.
//
// Nothing in this package reads the clock, touches the filesystem, or keeps
// state; callers pass dates and "now" explicitly, so results are fully
// reproducible in tests.
//
// # Deliberate deviations from POSIX cron
//
// Parse is permissive: semantically out-of-range values (minute 99) are
// accepted and simply never match a real date. OccursOn combines day-of-week
// and day-of-month with AND, not the traditional OR-when-both-restricted.
// Both behaviors are load-bearing for existing workflow definitions and must
// not be "fixed" here; Validate offers a strict advisory check for callers
// that want one.
package schedule
