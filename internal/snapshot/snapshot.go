// Package snapshot reads the workflow/execution snapshot file that the
// catalog sync layer produces. The evaluator core never touches the
// filesystem; this package is the boundary that turns the snapshot JSON into
// typed records once, up front.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"schedlens/internal/schedule"
)

// Upstream truncates history to the five most recent runs; cap defensively
// in case an older sync wrote more.
const maxExecutions = 5

// Execution mirrors one entry of a workflow's recent run history as written
// by the sync layer. Timestamps are RFC 3339.
type Execution struct {
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Workflow is one catalog entry. CronExpression is empty for manual
// workflows.
type Workflow struct {
	Name           string      `json:"name"`
	Domain         string      `json:"domain"`
	CronExpression string      `json:"cron_expression,omitempty"`
	Executions     []Execution `json:"last_five_executions,omitempty"`
}

// History converts the raw execution records into the evaluator's type,
// preserving the sync layer's ordering (most recent first).
func (w Workflow) History() []schedule.Execution {
	if len(w.Executions) == 0 {
		return nil
	}
	out := make([]schedule.Execution, 0, len(w.Executions))
	for _, e := range w.Executions {
		out = append(out, schedule.Execution{
			Status:      e.Status,
			StartedAt:   e.StartedAt,
			CompletedAt: e.CompletedAt,
		})
	}
	return out
}

// Snapshot is the full workflow catalog at one sync point.
type Snapshot struct {
	FetchedAt time.Time  `json:"fetched_at,omitempty"`
	Workflows []Workflow `json:"workflows"`
}

// Load reads and normalizes a snapshot file. A missing file yields an empty
// snapshot rather than an error: the tool is expected to start before the
// first sync has run. Workflows without a name are dropped, execution lists
// are capped at the upstream bound.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return &Snapshot{}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snap.normalize()
	return &snap, nil
}

func (s *Snapshot) normalize() {
	kept := s.Workflows[:0]
	for _, w := range s.Workflows {
		w.Name = strings.TrimSpace(w.Name)
		if w.Name == "" {
			continue
		}
		w.Domain = strings.TrimSpace(w.Domain)
		if len(w.Executions) > maxExecutions {
			w.Executions = w.Executions[:maxExecutions]
		}
		kept = append(kept, w)
	}
	s.Workflows = kept
}

// Domains lists the distinct domain names, sorted. Workflows without a
// domain are grouped under "".
func (s *Snapshot) Domains() []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range s.Workflows {
		if !seen[w.Domain] {
			seen[w.Domain] = true
			out = append(out, w.Domain)
		}
	}
	sort.Strings(out)
	return out
}

// ByDomain returns the workflows belonging to one domain, in snapshot order.
func (s *Snapshot) ByDomain(domain string) []Workflow {
	var out []Workflow
	for _, w := range s.Workflows {
		if w.Domain == domain {
			out = append(out, w)
		}
	}
	return out
}
