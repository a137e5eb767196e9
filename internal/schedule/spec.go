package schedule

import (
	"strconv"
	"strings"
)

// FieldKind describes how a single cron field constrains its unit of time.
type FieldKind int

const (
	FieldWildcard FieldKind = iota
	FieldSet
	FieldRange
)

// Field is one of the five positions of a cron expression.
//
// Exactly one interpretation applies: a wildcard matches everything, a set
// matches its members, and a range (day-of-month only) matches the inclusive
// span [Start, End].
type Field struct {
	Kind   FieldKind
	Values []int
	Start  int
	End    int
}

// Spec is an immutable parsed cron expression.
//
// Day-of-week uses 0 = Sunday. Values are stored as written; Parse does not
// reject out-of-range numbers, they just never match a real date.
type Spec struct {
	Minute     Field
	Hour       Field
	DayOfMonth Field
	Month      Field
	DayOfWeek  Field
}

// Parse parses a 5-field cron string (minute hour day-of-month month
// day-of-week). It returns nil when the expression is malformed; a partial
// Spec is never produced. Ranges ("1-10") are accepted only in the
// day-of-month position.
func Parse(raw string) *Spec {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) < 5 {
		return nil
	}

	minute, ok := parseField(parts[0], false)
	if !ok {
		return nil
	}
	hour, ok := parseField(parts[1], false)
	if !ok {
		return nil
	}
	dom, ok := parseField(parts[2], true)
	if !ok {
		return nil
	}
	month, ok := parseField(parts[3], false)
	if !ok {
		return nil
	}
	dow, ok := parseField(parts[4], false)
	if !ok {
		return nil
	}

	return &Spec{Minute: minute, Hour: hour, DayOfMonth: dom, Month: month, DayOfWeek: dow}
}

func parseField(tok string, allowRange bool) (Field, bool) {
	if tok == "*" {
		return Field{Kind: FieldWildcard}, true
	}

	if allowRange && strings.Contains(tok, "-") {
		bounds := strings.SplitN(tok, "-", 2)
		start, err1 := strconv.Atoi(bounds[0])
		end, err2 := strconv.Atoi(bounds[1])
		if err1 != nil || err2 != nil || start > end {
			return Field{}, false
		}
		return Field{Kind: FieldRange, Start: start, End: end}, true
	}

	var values []int
	for _, part := range strings.Split(tok, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Field{}, false
		}
		values = append(values, n)
	}
	return Field{Kind: FieldSet, Values: values}, true
}

// contains reports whether n matches the field. Wildcards match everything;
// ranges are inclusive on both ends.
func (f Field) contains(n int) bool {
	switch f.Kind {
	case FieldWildcard:
		return true
	case FieldRange:
		return n >= f.Start && n <= f.End
	default:
		for _, v := range f.Values {
			if v == n {
				return true
			}
		}
		return false
	}
}

// singleton returns the field's only value when it is a set of exactly one.
func (f Field) singleton() (int, bool) {
	if f.Kind == FieldSet && len(f.Values) == 1 {
		return f.Values[0], true
	}
	return 0, false
}
