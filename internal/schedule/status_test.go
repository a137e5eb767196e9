package schedule

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestResolveNoExecutions(t *testing.T) {
	t.Parallel()

	today := day(2024, time.March, 12)
	yesterday := day(2024, time.March, 11)
	tomorrow := day(2024, time.March, 13)

	tests := []struct {
		name string
		cron string
		date time.Time
		now  time.Time
		want Status
	}{
		{name: "empty cron", cron: "", date: today, now: at(2024, time.March, 12, 12, 0), want: StatusNotScheduled},
		{name: "blank cron", cron: "   ", date: today, now: at(2024, time.March, 12, 12, 0), want: StatusNotScheduled},
		{name: "unparseable cron", cron: "bogus", date: today, now: at(2024, time.March, 12, 12, 0), want: StatusNotScheduled},
		{name: "not due that date", cron: "0 9 * * 1", date: today, now: at(2024, time.March, 12, 12, 0), want: StatusNotScheduled}, // 2024-03-12 is a Tuesday
		{name: "yesterday always passed", cron: "0 9 * * *", date: yesterday, now: at(2024, time.March, 12, 0, 1), want: StatusMissed},
		{name: "tomorrow never passed", cron: "0 9 * * *", date: tomorrow, now: at(2024, time.March, 12, 23, 59), want: StatusNotYet},
		{name: "today before fire", cron: "0 9 * * *", date: today, now: at(2024, time.March, 12, 8, 0), want: StatusNotYet},
		{name: "today after fire", cron: "0 9 * * *", date: today, now: at(2024, time.March, 12, 9, 1), want: StatusMissed},
		{name: "today at fire minute", cron: "0 9 * * *", date: today, now: at(2024, time.March, 12, 9, 0), want: StatusMissed},
		{name: "unknown fire time counts as passed", cron: "* * * * *", date: today, now: at(2024, time.March, 12, 0, 0), want: StatusMissed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.cron, nil, tt.date, tt.now); got != tt.want {
				t.Fatalf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveWithExecutions(t *testing.T) {
	t.Parallel()

	target := day(2024, time.March, 12)
	now := at(2024, time.March, 12, 6, 0)

	run := func(status string, d time.Time) Execution {
		return Execution{Status: status, StartedAt: d, CompletedAt: d.Add(5 * time.Minute)}
	}

	tests := []struct {
		name  string
		execs []Execution
		want  Status
	}{
		{name: "completed wins over time checks", execs: []Execution{run("completed", at(2024, time.March, 12, 22, 0))}, want: StatusCompleted},
		{name: "success normalizes to completed", execs: []Execution{run("SUCCESS", at(2024, time.March, 12, 9, 2))}, want: StatusCompleted},
		{name: "failed", execs: []Execution{run("failed", at(2024, time.March, 12, 9, 2))}, want: StatusFailed},
		{name: "error normalizes to failed", execs: []Execution{run("Error", at(2024, time.March, 12, 9, 2))}, want: StatusFailed},
		{name: "other day ignored", execs: []Execution{run("completed", at(2024, time.March, 11, 9, 2))}, want: StatusNotYet},
		{name: "first match wins", execs: []Execution{run("failed", at(2024, time.March, 12, 9, 2)), run("completed", at(2024, time.March, 12, 10, 0))}, want: StatusFailed},
		// Inherited gap: a status outside the known buckets is treated as
		// if no record existed, so the schedule check answers instead.
		{name: "unrecognized status falls through", execs: []Execution{run("running", at(2024, time.March, 12, 9, 2))}, want: StatusNotYet},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve("0 9 * * *", tt.execs, target, now); got != tt.want {
				t.Fatalf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()
	execs := []Execution{{Status: "completed", StartedAt: at(2024, time.March, 12, 9, 2)}}
	date := day(2024, time.March, 12)
	now := at(2024, time.March, 12, 12, 0)

	first := Resolve("0 9 * * *", execs, date, now)
	second := Resolve("0 9 * * *", execs, date, now)
	if first != second {
		t.Fatalf("Resolve not idempotent: %v then %v", first, second)
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNotScheduled, "not_scheduled"},
		{StatusCompleted, "completed"},
		{StatusFailed, "failed"},
		{StatusMissed, "missed"},
		{StatusNotYet, "not_yet"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Fatalf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
