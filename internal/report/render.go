package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"schedlens/internal/schedule"
)

// statusMark is the one-character cell rendering of a verdict. NotScheduled
// renders as a dash: "no occurrence" is neutral, not an error.
func statusMark(st schedule.Status) string {
	switch st {
	case schedule.StatusCompleted:
		return "✓"
	case schedule.StatusFailed:
		return "✗"
	case schedule.StatusMissed:
		return "!"
	case schedule.StatusNotYet:
		return "·"
	default:
		return "-"
	}
}

// RenderDaily writes the all-domains report as a text table: one row per
// workflow, one column per day, followed by per-domain and total counts.
func RenderDaily(w io.Writer, d *Daily) error {
	fmt.Fprintf(w, "Schedule report %s .. %s\n\n",
		d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"))

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	header := []string{"DOMAIN", "WORKFLOW", "SCHEDULE"}
	if len(d.Rows) > 0 {
		for _, c := range d.Rows[0].Cells {
			header = append(header, c.Date.Format("01-02"))
		}
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range d.Rows {
		cols := []string{row.Domain, row.Name, row.Label}
		for _, c := range row.Cells {
			cols = append(cols, statusMark(c.Status))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	domains := make([]string, 0, len(d.Domains))
	for name := range d.Domains {
		domains = append(domains, name)
	}
	sort.Strings(domains)

	fmt.Fprintln(w)
	for _, name := range domains {
		c := d.Domains[name]
		fmt.Fprintf(w, "%-20s completed=%d failed=%d missed=%d pending=%d\n",
			name, c.Completed, c.Failed, c.Missed, c.NotYet)
	}
	c := d.Total
	fmt.Fprintf(w, "%-20s completed=%d failed=%d missed=%d pending=%d\n",
		"total", c.Completed, c.Failed, c.Missed, c.NotYet)
	return nil
}

// RenderTimeline writes a domain's 24-hour view, one frequency bucket per
// section. Workflows with a derivable fire time carry their ruler offset;
// the rest are listed at the end of their bucket without one.
func RenderTimeline(w io.Writer, tl *Timeline) error {
	fmt.Fprintf(w, "Timeline for %q (zoom: %d min/unit)\n", tl.Domain, tl.ZoomMinPerUnit)
	for _, g := range tl.Groups {
		fmt.Fprintf(w, "\n%s\n", g.Label)
		for _, e := range g.Entries {
			if e.Placed {
				fmt.Fprintf(w, "  %02d:%02d  %-30s offset=%.0f\n", e.Fire.Hour, e.Fire.Minute, e.Name, e.Offset)
			} else {
				fmt.Fprintf(w, "  --:--  %-30s (no fixed fire time)\n", e.Name)
			}
		}
	}
	return nil
}
