package schedule

import (
	cron "github.com/robfig/cron/v3"
)

// strictParser accepts the standard 5-field form plus @descriptors. It is
// deliberately separate from Parse: Parse preserves the permissive legacy
// behavior the evaluator depends on, strictParser exists for callers that
// want to surface typos in newly authored expressions.
var strictParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks an expression against a strict cron grammar. The result
// is advisory only; an expression rejected here may still evaluate fine
// through Parse (and vice versa for out-of-range values Parse lets through).
func Validate(cronExpr string) error {
	_, err := strictParser.Parse(cronExpr)
	return err
}
