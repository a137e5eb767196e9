package schedule

// UnitWidth is the rendered width of one timeline unit. At a zoom of 60
// minutes per unit the 24-hour ruler spans 24 units.
const UnitWidth = 60.0

// Position maps a fire time onto the 24-hour timeline at the given zoom
// (minutes of wall-clock time per ruler unit, e.g. 60/30/15/5). The offset
// is monotonic in time-of-day at every zoom. Unknown fire times have no
// place on the ruler and report ok=false.
func Position(t FireTime, zoomMinutesPerUnit int) (offset float64, ok bool) {
	if !t.Known || zoomMinutesPerUnit <= 0 {
		return 0, false
	}
	minuteOfDay := t.Hour*60 + t.Minute
	return float64(minuteOfDay) * UnitWidth / float64(zoomMinutesPerUnit), true
}
