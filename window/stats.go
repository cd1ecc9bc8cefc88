package window

import "math"

// Metric holds one window statistic and whether it could be computed.
// A statistic over zero non-missing samples is unavailable, never zero.
type Metric struct {
	Value float64
	OK    bool
}

// Summary carries the window statistics the persona scorer consumes. All
// statistics are computed over non-missing days only. Standard deviations
// are sample (n-1) deviations.
type Summary struct {
	MeanSteps            Metric
	CVSteps              Metric
	MeanSleepHours       Metric
	CVSleepHours         Metric
	WeekendSleepDeltaMin Metric
	MeanRestingHR        Metric
}

// Stats computes the scoring statistics for a window.
func Stats(w Window) Summary {
	var steps, sleepHours, restingHR []float64
	var weekdaySleep, weekendSleep []float64

	for _, day := range w.Days {
		if v, ok := day.StepsValue(); ok {
			steps = append(steps, v)
		}
		if v, ok := day.SleepHours(); ok {
			sleepHours = append(sleepHours, v)
		}
		if v, ok := day.RestingHRValue(); ok {
			restingHR = append(restingHR, v)
		}
		if day.SleepMinutes != nil {
			if day.IsWeekend {
				weekendSleep = append(weekendSleep, float64(*day.SleepMinutes))
			} else {
				weekdaySleep = append(weekdaySleep, float64(*day.SleepMinutes))
			}
		}
	}

	s := Summary{
		MeanSteps:      mean(steps),
		MeanSleepHours: mean(sleepHours),
		MeanRestingHR:  mean(restingHR),
	}
	s.CVSteps = cv(steps, 1.0)
	s.CVSleepHours = cv(sleepHours, 1e-6)

	wd, we := mean(weekdaySleep), mean(weekendSleep)
	if wd.OK && we.OK {
		s.WeekendSleepDeltaMin = Metric{Value: we.Value - wd.Value, OK: true}
	}
	return s
}

func mean(values []float64) Metric {
	if len(values) == 0 {
		return Metric{}
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return Metric{Value: sum / float64(len(values)), OK: true}
}

// cv is the coefficient of variation with the mean floored at minMean to
// guard the division.
func cv(values []float64, minMean float64) Metric {
	m := mean(values)
	if !m.OK {
		return Metric{}
	}
	return Metric{Value: sampleStddev(values, m.Value) / math.Max(m.Value, minMean), OK: true}
}

func sampleStddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
