package window

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsMeansAndCV(t *testing.T) {
	// Monday 2024-03-04 through Sunday 2024-03-10.
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := contiguousSeries(start, 7)
	stepValues := []int{4000, 5000, 6000, 5000, 4000, 6000, 5000}
	for i := range series.Records {
		series.Records[i].Steps = &stepValues[i]
	}

	w, err := Extract(series, start, 7)
	require.NoError(t, err)
	s := Stats(w)

	require.True(t, s.MeanSteps.OK)
	assert.InDelta(t, 5000.0, s.MeanSteps.Value, 1e-9)

	// Sample (n-1) deviation of the step values is sqrt(4e6/6).
	wantCV := math.Sqrt(4e6/6.0) / 5000.0
	require.True(t, s.CVSteps.OK)
	assert.InDelta(t, wantCV, s.CVSteps.Value, 1e-12)

	require.True(t, s.MeanSleepHours.OK)
	assert.InDelta(t, 6.0, s.MeanSleepHours.Value, 1e-9)
	require.True(t, s.CVSleepHours.OK)
	assert.InDelta(t, 0.0, s.CVSleepHours.Value, 1e-12)
}

func TestStatsWeekendSleepDelta(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // Monday
	series := contiguousSeries(start, 7)
	for i := range series.Records {
		minutes := 360
		if series.Records[i].IsWeekend {
			minutes = 450
		}
		series.Records[i].SleepMinutes = &minutes
	}

	w, err := Extract(series, start, 7)
	require.NoError(t, err)
	s := Stats(w)

	require.True(t, s.WeekendSleepDeltaMin.OK)
	assert.InDelta(t, 90.0, s.WeekendSleepDeltaMin.Value, 1e-9)
}

func TestStatsWeekendDeltaNeedsBothSides(t *testing.T) {
	// Monday through Friday only: no weekend sleep samples.
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := contiguousSeries(start, 5)
	w, err := Extract(series, start, 5)
	require.NoError(t, err)

	s := Stats(w)
	assert.False(t, s.WeekendSleepDeltaMin.OK)
}

func TestStatsMissingMetricIsUnavailable(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := contiguousSeries(start, 7)
	for i := range series.Records {
		series.Records[i].Steps = nil
	}

	w, err := Extract(series, start, 7)
	require.NoError(t, err)
	s := Stats(w)

	assert.False(t, s.MeanSteps.OK)
	assert.False(t, s.CVSteps.OK)
	assert.False(t, s.MeanRestingHR.OK, "no resting heart rate in the fixture")
	assert.True(t, s.MeanSleepHours.OK)
}

func TestStatsRestingHR(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := contiguousSeries(start, 7)
	for i := range series.Records {
		hr := 60.0 + float64(i)
		series.Records[i].RestingHR = &hr
	}

	w, err := Extract(series, start, 7)
	require.NoError(t, err)
	s := Stats(w)

	require.True(t, s.MeanRestingHR.OK)
	assert.InDelta(t, 63.0, s.MeanRestingHR.Value, 1e-9)
}

func TestStatsCVGuardsNearZeroMean(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := contiguousSeries(start, 7)
	zero := 0
	for i := range series.Records {
		series.Records[i].Steps = &zero
	}

	w, err := Extract(series, start, 7)
	require.NoError(t, err)
	s := Stats(w)

	require.True(t, s.CVSteps.OK)
	assert.Equal(t, 0.0, s.CVSteps.Value)
	assert.False(t, math.IsNaN(s.CVSteps.Value))
}
