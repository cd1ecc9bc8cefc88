package dataset

import (
	"fmt"
	"time"
)

// DailyRecord is one participant-day observation. Optional metrics are nil
// when the source cell was absent, unparseable, or negative. Records are
// value types and are never mutated after construction.
type DailyRecord struct {
	ParticipantID string
	Date          time.Time
	Steps         *int
	SleepMinutes  *int
	RestingHR     *float64
	Weekday       string
	IsWeekend     bool
}

// StepsValue returns the step count as a float and whether it is present.
func (r DailyRecord) StepsValue() (float64, bool) {
	if r.Steps == nil {
		return 0, false
	}
	return float64(*r.Steps), true
}

// SleepHours returns the sleep duration in hours and whether it is present.
func (r DailyRecord) SleepHours() (float64, bool) {
	if r.SleepMinutes == nil {
		return 0, false
	}
	return float64(*r.SleepMinutes) / 60.0, true
}

// RestingHRValue returns the resting heart rate and whether it is present.
func (r DailyRecord) RestingHRValue() (float64, bool) {
	if r.RestingHR == nil {
		return 0, false
	}
	return *r.RestingHR, true
}

// ParticipantSeries holds one participant's records sorted ascending by
// date, one entry per observed calendar date. Gaps are absent entries.
type ParticipantSeries struct {
	ID      string
	Records []DailyRecord
}

// Table is the fully loaded dataset, series ordered by participant id.
type Table struct {
	Series       []ParticipantSeries
	Rows         int
	HasRestingHR bool
}

// SeriesFor returns the series for a participant id, if present.
func (t *Table) SeriesFor(id string) (ParticipantSeries, bool) {
	for _, s := range t.Series {
		if s.ID == id {
			return s, true
		}
	}
	return ParticipantSeries{}, false
}

// MalformedInputError reports an unusable source table: a missing required
// column or an unparseable required cell. It aborts the run before scoring.
type MalformedInputError struct {
	Reason string
	Line   int
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}
