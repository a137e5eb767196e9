package schedule

import "time"

// OccursOn reports whether the schedule is due to fire on the given calendar
// date (local time). A nil spec never occurs.
//
// The day-of-week, day-of-month and month predicates are ANDed; a wildcard
// field is automatically true. Note that ANDing day-of-week with day-of-month
// deviates from POSIX cron, which ORs them when both are restricted. The
// deviation is intentional and relied upon by existing workflow schedules.
func OccursOn(s *Spec, date time.Time) bool {
	if s == nil {
		return false
	}
	if !s.DayOfWeek.contains(int(date.Weekday())) {
		return false
	}
	if !s.DayOfMonth.contains(date.Day()) {
		return false
	}
	return s.Month.contains(int(date.Month()))
}
