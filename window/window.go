// Package window enumerates and validates fixed-length contiguous calendar
// windows over a participant's daily series.
package window

import (
	"fmt"
	"iter"
	"time"

	"github.com/lifesnaps/persona-extract/dataset"
)

// Window is a gap-free span of exactly WindowDays consecutive calendar days
// for one participant. Days holds one record per date in order. Windows are
// never mutated after creation.
type Window struct {
	ParticipantID string
	Start         time.Time
	End           time.Time
	Days          []dataset.DailyRecord
}

// InsufficientHistoryError is returned by Extract when a participant cannot
// cover the requested span. During enumeration short series simply yield no
// windows; this is not a run-level failure.
type InsufficientHistoryError struct {
	ParticipantID string
	Days          int
	WindowDays    int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("participant %s has %d days of history, need %d", e.ParticipantID, e.Days, e.WindowDays)
}

// Enumerate yields every window of windowDays consecutive calendar dates in
// the series. Series dates are ascending and unique, so a span is gap-free
// exactly when the record at offset windowDays-1 lands on
// start+windowDays-1 days; the check is date arithmetic, not index
// arithmetic, because the series itself may contain calendar gaps. The
// sequence is lazy and restartable.
func Enumerate(series dataset.ParticipantSeries, windowDays int) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if windowDays <= 0 {
			return
		}
		for i := 0; i+windowDays <= len(series.Records); i++ {
			start := series.Records[i].Date
			end := start.AddDate(0, 0, windowDays-1)
			if !series.Records[i+windowDays-1].Date.Equal(end) {
				continue
			}
			if !yield(Window{
				ParticipantID: series.ID,
				Start:         start,
				End:           end,
				Days:          series.Records[i : i+windowDays : i+windowDays],
			}) {
				return
			}
		}
	}
}

// Extract returns the single window beginning at start, or an error when the
// participant's history cannot produce it.
func Extract(series dataset.ParticipantSeries, start time.Time, windowDays int) (Window, error) {
	if len(series.Records) < windowDays {
		return Window{}, &InsufficientHistoryError{
			ParticipantID: series.ID,
			Days:          len(series.Records),
			WindowDays:    windowDays,
		}
	}
	for w := range Enumerate(series, windowDays) {
		if w.Start.Equal(start) {
			return w, nil
		}
	}
	return Window{}, fmt.Errorf("participant %s has no contiguous %d-day window starting %s",
		series.ID, windowDays, start.Format("2006-01-02"))
}
