package insights

import (
	"fmt"
	"strings"
)

// FormatSummary renders one persona's statistics as a human-readable
// markdown section.
func FormatSummary(stats Statistics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Persona %s (participant %s, start %s)\n\n",
		stats.Metadata.Persona, stats.Metadata.ID, stats.Metadata.StartDate)

	base := stats.BaseStats
	fmt.Fprintf(&b, "Steps: avg %.0f | std %.0f | range [%.0f, %.0f]\n",
		base.AvgSteps, base.StepsStd, base.StepsMin, base.StepsMax)
	fmt.Fprintf(&b, "Sleep: avg %.2fh | std %.2fh | range [%.2f, %.2f]\n",
		base.AvgSleep, base.SleepStd, base.SleepMin, base.SleepMax)

	if corr := stats.Correlations.StepsSleep; corr != nil {
		fmt.Fprintf(&b, "Correlation steps~sleep: %.3f\n", *corr)
	}
	if t := stats.Trends.Steps; t != nil {
		fmt.Fprintf(&b, "Steps trend: %s (slope %.4f/day)\n", t.Trend, t.Slope)
	}
	if t := stats.Trends.Sleep; t != nil {
		fmt.Fprintf(&b, "Sleep trend: %s (slope %.4f/day)\n", t.Trend, t.Slope)
	}

	wp := stats.WeekdayPatterns
	fmt.Fprintf(&b, "Weekday/weekend steps: %.0f / %.0f (diff %+.0f)\n",
		wp.WeekdayAvgSteps, wp.WeekendAvgSteps, wp.StepsWeekendDiff)
	fmt.Fprintf(&b, "Weekday/weekend sleep: %.2fh / %.2fh (diff %+.2fh)\n",
		wp.WeekdayAvgSleep, wp.WeekendAvgSleep, wp.SleepWeekendDiff)

	return b.String()
}
