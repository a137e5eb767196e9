package schedule

// FireTime is the single daily hour:minute a schedule is predicted to
// trigger. Known is false when no single slot exists (wildcard or multi-value
// minute/hour fields), in which case Hour and Minute are meaningless.
type FireTime struct {
	Hour   int
	Minute int
	Known  bool
}

// FireTimeOf derives the daily fire time of a parsed schedule. Schedules
// whose minute or hour field is not a single fixed value have no one slot to
// report ("every minute" patterns, multiple daily fires) and return an
// unknown FireTime, as does a nil spec.
func FireTimeOf(s *Spec) FireTime {
	if s == nil {
		return FireTime{}
	}
	minute, ok := s.Minute.singleton()
	if !ok {
		return FireTime{}
	}
	hour, ok := s.Hour.singleton()
	if !ok {
		return FireTime{}
	}
	return FireTime{Hour: hour, Minute: minute, Known: true}
}

// unknownSortKey pushes schedules without a derivable fire time past every
// real minute-of-day (max 1439) when ordering timeline rows.
const unknownSortKey = 9999

// SortKey orders fire times ascending by minute of day; unknown fire times
// sort last.
func (t FireTime) SortKey() int {
	if !t.Known {
		return unknownSortKey
	}
	return t.Hour*60 + t.Minute
}
