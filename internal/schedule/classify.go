package schedule

import (
	"strconv"
	"strings"
)

// Label returned for workflows without a cron expression.
const LabelManual = "Manual"

// Classify buckets a cron expression into a human frequency label for
// grouping and sorting: "Every 15 min", "Every 30 min", "Hourly", "Daily",
// "Weekly", "Monthly". Expressions outside those shapes are displayed
// verbatim; an empty expression is "Manual".
//
// The tests run against the raw tokens, not the parsed Spec, so only the
// spellings actually used by the workflow catalog are recognized
// ("0,30 * * * *" is not folded into "Every 30 min"). Good enough for a
// hand-authored cron set; revisit if expressions ever arrive
// machine-generated.
func Classify(cronExpr string) string {
	raw := strings.TrimSpace(cronExpr)
	if raw == "" {
		return LabelManual
	}

	f := strings.Fields(raw)
	if len(f) != 5 {
		return raw
	}

	wild := func(i int) bool { return f[i] == "*" }
	fixed := func(i int) bool {
		_, err := strconv.Atoi(f[i])
		return err == nil
	}

	switch {
	case f[0] == "*/15" && wild(1) && wild(2) && wild(3) && wild(4):
		return "Every 15 min"
	case f[0] == "*/30" && wild(1) && wild(2) && wild(3) && wild(4):
		return "Every 30 min"
	case fixed(0) && wild(1) && wild(2) && wild(3) && wild(4):
		return "Hourly"
	case fixed(0) && fixed(1) && wild(2) && wild(3) && wild(4):
		return "Daily"
	case fixed(0) && fixed(1) && wild(2) && wild(3) && fixed(4):
		return "Weekly"
	case fixed(0) && fixed(1) && fixed(2) && wild(3) && wild(4):
		return "Monthly"
	}
	return raw
}

// BucketRank ranks Classify labels from most to least frequent for bucket
// ordering in the timeline view. Unrecognized labels (verbatim crons) rank
// after the named buckets, Manual last.
func BucketRank(label string) int {
	switch label {
	case "Every 15 min":
		return 0
	case "Every 30 min":
		return 1
	case "Hourly":
		return 2
	case "Daily":
		return 3
	case "Weekly":
		return 4
	case "Monthly":
		return 5
	case LabelManual:
		return 7
	default:
		return 6
	}
}
