package personas

// Defaults returns the two shipped persona profiles. They mirror the study's
// target behavioral archetypes; additional profiles load from TOML without
// touching the scorer.
func Defaults() []Definition {
	return []Definition{
		{
			Label:       "A",
			Description: "Sleep-deprived with weekend recovery",
			Threshold:   0.5,
			Components: []Component{
				{
					Name:      "activity_level",
					Statistic: StatMeanSteps,
					Weight:    0.35,
					Closeness: ClosenessLinear,
					Target:    5000,
					Width:     5000,
					OnMissing: OnMissingError,
				},
				{
					Name:      "sleep_duration",
					Statistic: StatMeanSleepHours,
					Weight:    0.35,
					Closeness: ClosenessLinear,
					Target:    5.75,
					Width:     2,
					OnMissing: OnMissingError,
				},
				{
					Name:      "weekend_rebound",
					Statistic: StatWeekendSleepDeltaMin,
					Weight:    0.20,
					Closeness: ClosenessRamp,
					Scale:     120,
					OnMissing: OnMissingZero,
				},
				{
					Name:      "activity_variability",
					Statistic: StatCVSteps,
					Weight:    0.10,
					Closeness: ClosenessRamp,
					Scale:     1,
					OnMissing: OnMissingError,
				},
			},
		},
		{
			Label:       "B",
			Description: "Active lifestyle with irregular routine",
			Threshold:   0.5,
			Components: []Component{
				{
					Name:      "activity_level",
					Statistic: StatMeanSteps,
					Weight:    0.40,
					Closeness: ClosenessGaussian,
					Target:    11000,
					Sigma:     3000,
					OnMissing: OnMissingError,
				},
				{
					Name:      "step_irregularity",
					Statistic: StatCVSteps,
					Weight:    0.25,
					Closeness: ClosenessGaussian,
					Target:    0.45,
					Sigma:     0.15,
					OnMissing: OnMissingError,
				},
				{
					Name:      "sleep_irregularity",
					Statistic: StatCVSleepHours,
					Weight:    0.20,
					Closeness: ClosenessGaussian,
					Target:    0.35,
					Sigma:     0.15,
					OnMissing: OnMissingError,
				},
				{
					Name:      "resting_heart_rate",
					Statistic: StatMeanRestingHR,
					Weight:    0.15,
					Closeness: ClosenessGaussian,
					Target:    72,
					Sigma:     6,
					OnMissing: OnMissingOmit,
				},
			},
		},
	}
}
