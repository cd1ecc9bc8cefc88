// Package personas defines behavioral persona profiles and scores candidate
// windows against them. Profiles are data: an ordered list of weighted
// components, each pairing a window statistic with a closeness function.
// Adding a persona is a configuration change, not a code change.
package personas

import (
	"fmt"
	"math"

	"github.com/lifesnaps/persona-extract/window"
)

// Statistic names a value computed from a window by window.Stats.
type Statistic string

const (
	StatMeanSteps            Statistic = "mean_steps"
	StatCVSteps              Statistic = "cv_steps"
	StatMeanSleepHours       Statistic = "mean_sleep_hours"
	StatCVSleepHours         Statistic = "cv_sleep_hours"
	StatWeekendSleepDeltaMin Statistic = "weekend_sleep_delta_min"
	StatMeanRestingHR        Statistic = "mean_resting_hr"
)

// Closeness kinds supported by the scorer. Each maps a realized statistic to
// a [0,1] match degree: 1 at the target, degrading toward 0 with distance.
const (
	ClosenessLinear   = "linear"   // clamp01(1 - |x-target|/width)
	ClosenessGaussian = "gaussian" // exp(-(x-target)^2 / 2*sigma^2)
	ClosenessRamp     = "ramp"     // clamp01(x/scale)
)

// Policies for a component whose statistic cannot be computed.
const (
	OnMissingError = "error" // internal-consistency failure
	OnMissingZero  = "zero"  // component scores 0, weight kept
	OnMissingOmit  = "omit"  // component dropped, remaining weights renormalized
)

// Component is one weighted scoring term of a persona profile.
type Component struct {
	Name      string    `toml:"name"`
	Statistic Statistic `toml:"statistic"`
	Weight    float64   `toml:"weight"`
	Closeness string    `toml:"closeness"`
	Target    float64   `toml:"target"`
	Width     float64   `toml:"width"`
	Sigma     float64   `toml:"sigma"`
	Scale     float64   `toml:"scale"`
	OnMissing string    `toml:"on_missing"`
}

// Definition is a named persona profile. Component weights sum to 1.
type Definition struct {
	Label       string      `toml:"label"`
	Description string      `toml:"description"`
	Threshold   float64     `toml:"threshold"`
	Components  []Component `toml:"component"`
}

// ComponentScore records one component's match degree and its weighted
// contribution to the overall score, after any renormalization.
type ComponentScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoredCandidate is a window scored against one persona.
type ScoredCandidate struct {
	Window     window.Window
	Persona    string
	Score      float64
	Components map[string]ComponentScore
}

// Score computes the weighted multi-component fitness of a coverage-valid
// window for one persona. Components with on_missing="omit" whose statistic
// is unavailable are dropped and the remaining weights renormalized to sum
// to 1; on_missing="zero" keeps the weight with a zero match degree. An
// unavailable statistic on an on_missing="error" component means the window
// violated its invariants upstream.
func Score(def Definition, w window.Window) (ScoredCandidate, error) {
	summary := window.Stats(w)

	type term struct {
		comp  Component
		score float64
	}
	terms := make([]term, 0, len(def.Components))
	weightSum := 0.0

	for _, comp := range def.Components {
		metric, err := statistic(summary, comp.Statistic)
		if err != nil {
			return ScoredCandidate{}, err
		}
		if !metric.OK {
			switch comp.OnMissing {
			case OnMissingOmit:
				continue
			case OnMissingZero:
				terms = append(terms, term{comp: comp, score: 0})
				weightSum += comp.Weight
				continue
			default:
				return ScoredCandidate{}, fmt.Errorf(
					"persona %s: statistic %s unavailable for %s window starting %s",
					def.Label, comp.Statistic, w.ParticipantID, w.Start.Format("2006-01-02"))
			}
		}
		terms = append(terms, term{comp: comp, score: closeness(comp, metric.Value)})
		weightSum += comp.Weight
	}
	if weightSum <= 0 {
		return ScoredCandidate{}, fmt.Errorf("persona %s: no scorable components", def.Label)
	}

	cand := ScoredCandidate{
		Window:     w,
		Persona:    def.Label,
		Components: make(map[string]ComponentScore, len(terms)),
	}
	for _, t := range terms {
		weight := t.comp.Weight / weightSum
		cand.Components[t.comp.Name] = ComponentScore{
			Score:        t.score,
			Weight:       weight,
			Contribution: weight * t.score,
		}
		cand.Score += weight * t.score
	}
	return cand, nil
}

func statistic(s window.Summary, name Statistic) (window.Metric, error) {
	switch name {
	case StatMeanSteps:
		return s.MeanSteps, nil
	case StatCVSteps:
		return s.CVSteps, nil
	case StatMeanSleepHours:
		return s.MeanSleepHours, nil
	case StatCVSleepHours:
		return s.CVSleepHours, nil
	case StatWeekendSleepDeltaMin:
		return s.WeekendSleepDeltaMin, nil
	case StatMeanRestingHR:
		return s.MeanRestingHR, nil
	default:
		return window.Metric{}, fmt.Errorf("unknown statistic %q", name)
	}
}

func closeness(comp Component, x float64) float64 {
	switch comp.Closeness {
	case ClosenessGaussian:
		d := x - comp.Target
		return math.Exp(-(d * d) / (2 * comp.Sigma * comp.Sigma))
	case ClosenessRamp:
		return clamp01(x / comp.Scale)
	default:
		return clamp01(1 - math.Abs(x-comp.Target)/comp.Width)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
