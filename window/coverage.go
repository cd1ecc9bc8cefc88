package window

// CoverageOK reports whether the window carries at least minDays non-missing
// step values and at least minDays non-missing sleep values. The two
// thresholds are independent; failing either rejects the window before any
// scoring work.
func CoverageOK(w Window, minDays int) bool {
	steps, sleep := 0, 0
	for _, day := range w.Days {
		if day.Steps != nil {
			steps++
		}
		if day.SleepMinutes != nil {
			sleep++
		}
	}
	return steps >= minDays && sleep >= minDays
}
