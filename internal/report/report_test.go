package report

import (
	"strings"
	"testing"
	"time"

	"schedlens/internal/schedule"
	"schedlens/internal/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	completed := snapshot.Execution{
		Status:      "completed",
		StartedAt:   time.Date(2024, time.March, 11, 9, 2, 0, 0, time.Local),
		CompletedAt: time.Date(2024, time.March, 11, 9, 5, 0, 0, time.Local),
	}
	return &snapshot.Snapshot{Workflows: []snapshot.Workflow{
		{Name: "ingest-orders", Domain: "sales", CronExpression: "0 9 * * *",
			Executions: []snapshot.Execution{completed}},
		{Name: "weekly-rollup", Domain: "sales", CronExpression: "0 6 * * 1"},
		{Name: "manual-export", Domain: "finance"},
	}}
}

func TestBuildDaily(t *testing.T) {
	t.Parallel()

	// Window 2024-03-11 (Mon) .. 2024-03-12 (Tue); now is Tuesday 08:00.
	end := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.Local)
	now := time.Date(2024, time.March, 12, 8, 0, 0, 0, time.Local)

	d := BuildDaily(testSnapshot(), end, now, 2)
	if len(d.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(d.Rows))
	}

	byName := map[string]Row{}
	for _, r := range d.Rows {
		byName[r.Name] = r
	}

	ingest := byName["ingest-orders"]
	if got := ingest.Cells[0].Status; got != schedule.StatusCompleted {
		t.Fatalf("ingest Monday = %v, want completed", got)
	}
	if got := ingest.Cells[1].Status; got != schedule.StatusNotYet {
		t.Fatalf("ingest Tuesday at 08:00 = %v, want not_yet", got)
	}

	rollup := byName["weekly-rollup"]
	if got := rollup.Cells[0].Status; got != schedule.StatusMissed {
		t.Fatalf("rollup Monday with no run = %v, want missed", got)
	}
	if got := rollup.Cells[1].Status; got != schedule.StatusNotScheduled {
		t.Fatalf("rollup Tuesday = %v, want not_scheduled", got)
	}

	manual := byName["manual-export"]
	if manual.Label != schedule.LabelManual {
		t.Fatalf("manual label = %q", manual.Label)
	}
	if manual.Counts.Scheduled() != 0 {
		t.Fatalf("manual workflow has scheduled cells: %+v", manual.Counts)
	}

	if d.Total.Completed != 1 || d.Total.Missed != 1 || d.Total.NotYet != 1 {
		t.Fatalf("totals = %+v", d.Total)
	}
	if sales := d.Domains["sales"]; sales.Missed != 1 {
		t.Fatalf("sales counts = %+v", sales)
	}

	missed := d.Missed()
	if len(missed) != 1 || missed[0].Name != "weekly-rollup" {
		t.Fatalf("Missed() = %+v", missed)
	}
}

func TestBuildDailyRowsGroupedByDomain(t *testing.T) {
	t.Parallel()
	end := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.Local)
	d := BuildDaily(testSnapshot(), end, end, 1)

	// Domains sort ascending, so finance rows come before sales rows.
	if d.Rows[0].Domain != "finance" || d.Rows[1].Domain != "sales" {
		t.Fatalf("row domains = %q, %q, %q", d.Rows[0].Domain, d.Rows[1].Domain, d.Rows[2].Domain)
	}
}

func TestBuildTimeline(t *testing.T) {
	t.Parallel()
	snap := &snapshot.Snapshot{Workflows: []snapshot.Workflow{
		{Name: "afternoon", Domain: "sales", CronExpression: "0 14 * * *"},
		{Name: "morning", Domain: "sales", CronExpression: "0 9 * * *"},
		{Name: "constant", Domain: "sales", CronExpression: "* * * * *"},
		{Name: "early", Domain: "sales", CronExpression: "30 0 * * *"},
		{Name: "quarter", Domain: "sales", CronExpression: "*/15 * * * *"},
		{Name: "elsewhere", Domain: "finance", CronExpression: "0 9 * * *"},
	}}

	tl := BuildTimeline(snap, "sales", 60)
	if len(tl.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(tl.Groups), tl.Groups)
	}
	if tl.Groups[0].Label != "Every 15 min" {
		t.Fatalf("first group = %q, want most frequent bucket", tl.Groups[0].Label)
	}

	var daily Group
	for _, g := range tl.Groups {
		if g.Label == "Daily" {
			daily = g
		}
	}
	wantOrder := []string{"early", "morning", "afternoon"}
	if len(daily.Entries) != len(wantOrder) {
		t.Fatalf("daily entries = %+v", daily.Entries)
	}
	for i, name := range wantOrder {
		if daily.Entries[i].Name != name {
			t.Fatalf("daily[%d] = %q, want %q", i, daily.Entries[i].Name, name)
		}
	}
	if got := daily.Entries[1].Offset; got != 9*schedule.UnitWidth {
		t.Fatalf("morning offset = %v, want %v", got, 9*schedule.UnitWidth)
	}

	// "constant" classifies verbatim and cannot be placed on the ruler.
	var constant *Entry
	for i := range tl.Groups {
		for j := range tl.Groups[i].Entries {
			if tl.Groups[i].Entries[j].Name == "constant" {
				constant = &tl.Groups[i].Entries[j]
			}
		}
	}
	if constant == nil || constant.Placed {
		t.Fatalf("constant entry = %+v, want unplaced", constant)
	}
}

func TestRenderDaily(t *testing.T) {
	t.Parallel()
	end := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.Local)
	now := time.Date(2024, time.March, 12, 23, 0, 0, 0, time.Local)
	d := BuildDaily(testSnapshot(), end, now, 2)

	var buf strings.Builder
	if err := RenderDaily(&buf, d); err != nil {
		t.Fatalf("RenderDaily: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ingest-orders", "weekly-rollup", "Daily", "Weekly", "Manual", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTimeline(t *testing.T) {
	t.Parallel()
	snap := &snapshot.Snapshot{Workflows: []snapshot.Workflow{
		{Name: "morning", Domain: "sales", CronExpression: "0 9 * * *"},
		{Name: "constant", Domain: "sales", CronExpression: "* * * * *"},
	}}
	var buf strings.Builder
	if err := RenderTimeline(&buf, BuildTimeline(snap, "sales", 60)); err != nil {
		t.Fatalf("RenderTimeline: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "09:00") || !strings.Contains(out, "no fixed fire time") {
		t.Fatalf("unexpected timeline output:\n%s", out)
	}
}
