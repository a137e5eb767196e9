// Package report composes the two schedule views of the catalog: the
// all-domains daily adherence report and the per-domain 24-hour timeline.
// Both are pure derivations over a snapshot; rebuilding them on every
// refresh is cheap (tens of workflows, five executions each).
package report

import (
	"sort"
	"time"

	"schedlens/internal/schedule"
	"schedlens/internal/snapshot"
)

const defaultWindowDays = 7

// Cell is one (workflow, date) verdict.
type Cell struct {
	Date   time.Time
	Status schedule.Status
}

// Counts aggregates statuses for a row, a domain, or the whole report.
type Counts struct {
	Completed    int
	Failed       int
	Missed       int
	NotYet       int
	NotScheduled int
}

func (c *Counts) add(st schedule.Status) {
	switch st {
	case schedule.StatusCompleted:
		c.Completed++
	case schedule.StatusFailed:
		c.Failed++
	case schedule.StatusMissed:
		c.Missed++
	case schedule.StatusNotYet:
		c.NotYet++
	default:
		c.NotScheduled++
	}
}

// Scheduled counts the cells that had a predicted occurrence.
func (c Counts) Scheduled() int {
	return c.Completed + c.Failed + c.Missed + c.NotYet
}

// Row is one workflow across the report window.
type Row struct {
	Name   string
	Domain string
	Cron   string
	Label  string
	Cells  []Cell
	Counts Counts
}

// Daily is the all-domains schedule report for a window of calendar days
// ending at End (inclusive), oldest day first.
type Daily struct {
	Start time.Time
	End   time.Time
	Rows  []Row

	Domains map[string]Counts
	Total   Counts
}

// Missed lists the rows with at least one missed occurrence, for alerting.
func (d *Daily) Missed() []Row {
	var out []Row
	for _, r := range d.Rows {
		if r.Counts.Missed > 0 {
			out = append(out, r)
		}
	}
	return out
}

// BuildDaily resolves every (workflow, date) pair in the window. Rows keep
// snapshot order within a domain; domains are sorted so the report is stable
// across runs.
func BuildDaily(snap *snapshot.Snapshot, end, now time.Time, windowDays int) *Daily {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	end = midnight(end)
	start := end.AddDate(0, 0, -(windowDays - 1))

	d := &Daily{Start: start, End: end, Domains: map[string]Counts{}}
	if snap == nil {
		return d
	}

	for _, domain := range snap.Domains() {
		for _, w := range snap.ByDomain(domain) {
			row := Row{
				Name:   w.Name,
				Domain: w.Domain,
				Cron:   w.CronExpression,
				Label:  schedule.Classify(w.CronExpression),
			}
			history := w.History()
			for i := 0; i < windowDays; i++ {
				date := start.AddDate(0, 0, i)
				st := schedule.Resolve(w.CronExpression, history, date, now)
				row.Cells = append(row.Cells, Cell{Date: date, Status: st})
				row.Counts.add(st)
			}

			dc := d.Domains[w.Domain]
			dc.Completed += row.Counts.Completed
			dc.Failed += row.Counts.Failed
			dc.Missed += row.Counts.Missed
			dc.NotYet += row.Counts.NotYet
			dc.NotScheduled += row.Counts.NotScheduled
			d.Domains[w.Domain] = dc

			d.Total.Completed += row.Counts.Completed
			d.Total.Failed += row.Counts.Failed
			d.Total.Missed += row.Counts.Missed
			d.Total.NotYet += row.Counts.NotYet
			d.Total.NotScheduled += row.Counts.NotScheduled

			d.Rows = append(d.Rows, row)
		}
	}
	return d
}

// Entry is one workflow placed (or not) on the timeline ruler.
type Entry struct {
	Name   string
	Cron   string
	Fire   schedule.FireTime
	Offset float64
	Placed bool
}

// Group is one frequency bucket of a domain's timeline.
type Group struct {
	Label   string
	Entries []Entry
}

// Timeline is the per-domain schedule view at one zoom level.
type Timeline struct {
	Domain         string
	ZoomMinPerUnit int
	Groups         []Group
}

// BuildTimeline groups a domain's workflows by frequency bucket and orders
// each bucket by fire time, unknown fire times last. Buckets run from most
// to least frequent; verbatim-cron buckets tie-break alphabetically.
func BuildTimeline(snap *snapshot.Snapshot, domain string, zoomMinPerUnit int) *Timeline {
	if zoomMinPerUnit <= 0 {
		zoomMinPerUnit = 60
	}
	tl := &Timeline{Domain: domain, ZoomMinPerUnit: zoomMinPerUnit}
	if snap == nil {
		return tl
	}

	byLabel := map[string][]Entry{}
	for _, w := range snap.ByDomain(domain) {
		fire := schedule.FireTimeOf(schedule.Parse(w.CronExpression))
		offset, placed := schedule.Position(fire, zoomMinPerUnit)
		label := schedule.Classify(w.CronExpression)
		byLabel[label] = append(byLabel[label], Entry{
			Name:   w.Name,
			Cron:   w.CronExpression,
			Fire:   fire,
			Offset: offset,
			Placed: placed,
		})
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := schedule.BucketRank(labels[i]), schedule.BucketRank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})

	for _, label := range labels {
		entries := byLabel[label]
		sort.SliceStable(entries, func(i, j int) bool {
			ki, kj := entries[i].Fire.SortKey(), entries[j].Fire.SortKey()
			if ki != kj {
				return ki < kj
			}
			return entries[i].Name < entries[j].Name
		})
		tl.Groups = append(tl.Groups, Group{Label: label, Entries: entries})
	}
	return tl
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
