// Package insights computes summary statistics from persona records. It
// consumes only the serialized record shape and assumes nothing else about
// the extraction engine.
package insights

import (
	"math"
	"time"

	"github.com/lifesnaps/persona-extract/export"
)

const dayEntryLayout = "Monday, 2006-01-02"

// Trend slope classification parameters: exponential decay weights recent
// days more, and slopes within the threshold band count as stable.
const (
	trendDecay     = 0.95
	trendThreshold = 0.15
)

// Statistics is the full per-persona statistics artifact.
type Statistics struct {
	Metadata        Metadata        `json:"metadata"`
	BaseStats       BaseStats       `json:"base_stats"`
	Correlations    Correlations    `json:"correlations"`
	Trends          Trends          `json:"trends"`
	WeekdayPatterns WeekdayPatterns `json:"weekday_patterns"`
}

// Metadata identifies the record the statistics were computed from.
type Metadata struct {
	Persona    string    `json:"persona"`
	ID         string    `json:"id"`
	StartDate  string    `json:"start_date"`
	ComputedAt time.Time `json:"computed_at"`
	DaysCount  int       `json:"days_count"`
}

// BaseStats holds per-metric aggregates over non-missing days. Variances
// and standard deviations are sample (n-1) statistics.
type BaseStats struct {
	AvgSteps      float64   `json:"avg_steps"`
	AvgSleep      float64   `json:"avg_sleep"`
	StepsVariance float64   `json:"steps_variance"`
	SleepVariance float64   `json:"sleep_variance"`
	StepsStd      float64   `json:"steps_std"`
	SleepStd      float64   `json:"sleep_std"`
	StepsMin      float64   `json:"steps_min"`
	StepsMax      float64   `json:"steps_max"`
	SleepMin      float64   `json:"sleep_min"`
	SleepMax      float64   `json:"sleep_max"`
	DateRange     DateRange `json:"date_range"`
}

type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Correlations holds pairwise metric correlations; nil when fewer than 3
// paired observations exist or a metric has no variance.
type Correlations struct {
	StepsSleep *float64 `json:"steps_sleep"`
}

// Trends classifies each metric's direction over the window.
type Trends struct {
	Steps *Trend `json:"steps"`
	Sleep *Trend `json:"sleep"`
}

// Trend is a decay-weighted linear-regression slope and its classification:
// increasing, decreasing, stable, or insufficient_data.
type Trend struct {
	Trend string  `json:"trend"`
	Slope float64 `json:"slope"`
}

// WeekdayPatterns compares weekday and weekend averages.
type WeekdayPatterns struct {
	WeekdayAvgSteps  float64 `json:"weekday_avg_steps"`
	WeekendAvgSteps  float64 `json:"weekend_avg_steps"`
	WeekdayAvgSleep  float64 `json:"weekday_avg_sleep"`
	WeekendAvgSleep  float64 `json:"weekend_avg_sleep"`
	StepsWeekendDiff float64 `json:"steps_weekend_diff"`
	SleepWeekendDiff float64 `json:"sleep_weekend_diff"`
}

type dayPoint struct {
	date      time.Time
	isWeekend bool
	steps     *float64
	sleep     *float64
}

// Compute derives the full statistics artifact from a persona record.
func Compute(rec export.PersonaRecord) Statistics {
	points := parseDays(rec.Days)

	stats := Statistics{
		Metadata: Metadata{
			Persona:    rec.Persona,
			ID:         rec.ID,
			StartDate:  rec.StartDate,
			ComputedAt: time.Now().UTC(),
			DaysCount:  len(rec.Days),
		},
	}

	var steps, sleep []float64
	var stepsPts, sleepPts []weightedPoint
	var pairedSteps, pairedSleep []float64
	for _, p := range points {
		if p.steps != nil {
			steps = append(steps, *p.steps)
			stepsPts = append(stepsPts, weightedPoint{x: dayOrdinal(p.date), y: *p.steps})
		}
		if p.sleep != nil {
			sleep = append(sleep, *p.sleep)
			sleepPts = append(sleepPts, weightedPoint{x: dayOrdinal(p.date), y: *p.sleep})
		}
		if p.steps != nil && p.sleep != nil {
			pairedSteps = append(pairedSteps, *p.steps)
			pairedSleep = append(pairedSleep, *p.sleep)
		}
	}

	stats.BaseStats = baseStats(points, steps, sleep)
	stats.Correlations.StepsSleep = pearson(pairedSteps, pairedSleep)
	stats.Trends.Steps = identifyTrend(stepsPts)
	stats.Trends.Sleep = identifyTrend(sleepPts)
	stats.WeekdayPatterns = weekdayPatterns(points)
	return stats
}

func parseDays(days []export.DayEntry) []dayPoint {
	points := make([]dayPoint, 0, len(days))
	for _, d := range days {
		date, err := time.Parse(dayEntryLayout, d.Date)
		if err != nil {
			continue
		}
		p := dayPoint{date: date, isWeekend: date.Weekday() == time.Saturday || date.Weekday() == time.Sunday}
		if d.Steps != nil {
			v := float64(*d.Steps)
			p.steps = &v
		}
		if d.SleepHours != nil {
			v := *d.SleepHours
			p.sleep = &v
		}
		points = append(points, p)
	}
	return points
}

func baseStats(points []dayPoint, steps, sleep []float64) BaseStats {
	base := BaseStats{}
	if len(points) > 0 {
		base.DateRange = DateRange{
			Start: points[0].date.Format("2006-01-02"),
			End:   points[len(points)-1].date.Format("2006-01-02"),
		}
	}
	if len(steps) > 0 {
		base.AvgSteps = meanOf(steps)
		base.StepsVariance = sampleVariance(steps, base.AvgSteps)
		base.StepsStd = math.Sqrt(base.StepsVariance)
		base.StepsMin, base.StepsMax = minMax(steps)
	}
	if len(sleep) > 0 {
		base.AvgSleep = meanOf(sleep)
		base.SleepVariance = sampleVariance(sleep, base.AvgSleep)
		base.SleepStd = math.Sqrt(base.SleepVariance)
		base.SleepMin, base.SleepMax = minMax(sleep)
	}
	return base
}

// pearson returns the correlation of two equal-length series, or nil when
// fewer than 3 pairs exist or either side has no variance.
func pearson(xs, ys []float64) *float64 {
	if len(xs) < 3 || len(xs) != len(ys) {
		return nil
	}
	mx, my := meanOf(xs), meanOf(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return nil
	}
	r := sxy / math.Sqrt(sxx*syy)
	return &r
}

type weightedPoint struct {
	x, y float64
}

// identifyTrend fits a decay-weighted regression line through the metric's
// non-missing days and classifies its slope per day.
func identifyTrend(points []weightedPoint) *Trend {
	if len(points) < 3 {
		return &Trend{Trend: "insufficient_data", Slope: 0}
	}
	n := len(points)
	var sw, swx, swy, swxx, swxy float64
	for i, p := range points {
		w := math.Pow(trendDecay, float64(n-i-1))
		w *= w
		sw += w
		swx += w * p.x
		swy += w * p.y
		swxx += w * p.x * p.x
		swxy += w * p.x * p.y
	}
	denom := sw*swxx - swx*swx
	if denom == 0 {
		return &Trend{Trend: "stable", Slope: 0}
	}
	slope := (sw*swxy - swx*swy) / denom

	label := "stable"
	if slope > trendThreshold {
		label = "increasing"
	} else if slope < -trendThreshold {
		label = "decreasing"
	}
	return &Trend{Trend: label, Slope: slope}
}

func weekdayPatterns(points []dayPoint) WeekdayPatterns {
	var wdSteps, weSteps, wdSleep, weSleep []float64
	for _, p := range points {
		if p.steps != nil {
			if p.isWeekend {
				weSteps = append(weSteps, *p.steps)
			} else {
				wdSteps = append(wdSteps, *p.steps)
			}
		}
		if p.sleep != nil {
			if p.isWeekend {
				weSleep = append(weSleep, *p.sleep)
			} else {
				wdSleep = append(wdSleep, *p.sleep)
			}
		}
	}
	patterns := WeekdayPatterns{}
	if len(wdSteps) > 0 {
		patterns.WeekdayAvgSteps = meanOf(wdSteps)
	}
	if len(weSteps) > 0 {
		patterns.WeekendAvgSteps = meanOf(weSteps)
	}
	if len(wdSleep) > 0 {
		patterns.WeekdayAvgSleep = meanOf(wdSleep)
	}
	if len(weSleep) > 0 {
		patterns.WeekendAvgSleep = meanOf(weSleep)
	}
	patterns.StepsWeekendDiff = patterns.WeekendAvgSteps - patterns.WeekdayAvgSteps
	patterns.SleepWeekendDiff = patterns.WeekendAvgSleep - patterns.WeekdayAvgSleep
	return patterns
}

func dayOrdinal(t time.Time) float64 {
	return float64(t.Unix()) / 86400.0
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleVariance(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
