package personas

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"

	"github.com/lifesnaps/persona-extract/window"
)

const weightTolerance = 1e-6

// emptySummary exists only to probe statistic names during validation.
var emptySummary window.Summary

type profileFile struct {
	Persona []Definition `toml:"persona"`
}

// Load reads persona profiles from a TOML file and validates them.
func Load(path string) ([]Definition, error) {
	var file profileFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode persona profiles: %w", err)
	}
	if len(file.Persona) == 0 {
		return nil, fmt.Errorf("persona profiles: no [[persona]] entries in %s", path)
	}
	seen := make(map[string]struct{}, len(file.Persona))
	for i := range file.Persona {
		def := &file.Persona[i]
		applyComponentDefaults(def)
		if err := Validate(*def); err != nil {
			return nil, err
		}
		if _, dup := seen[def.Label]; dup {
			return nil, fmt.Errorf("persona profiles: duplicate label %q", def.Label)
		}
		seen[def.Label] = struct{}{}
	}
	return file.Persona, nil
}

func applyComponentDefaults(def *Definition) {
	for i := range def.Components {
		if def.Components[i].OnMissing == "" {
			def.Components[i].OnMissing = OnMissingError
		}
	}
}

// Validate checks a persona definition: weights summing to 1, positive
// closeness parameters, and known statistic, closeness, and missing-value
// policy names.
func Validate(def Definition) error {
	if def.Label == "" {
		return fmt.Errorf("persona profile without a label")
	}
	if def.Threshold < 0 || def.Threshold > 1 {
		return fmt.Errorf("persona %s: threshold %v outside [0,1]", def.Label, def.Threshold)
	}
	if len(def.Components) == 0 {
		return fmt.Errorf("persona %s: no components", def.Label)
	}

	sum := 0.0
	for _, comp := range def.Components {
		if comp.Name == "" {
			return fmt.Errorf("persona %s: component without a name", def.Label)
		}
		if comp.Weight <= 0 {
			return fmt.Errorf("persona %s: component %s weight %v must be positive", def.Label, comp.Name, comp.Weight)
		}
		sum += comp.Weight

		if _, err := statistic(emptySummary, comp.Statistic); err != nil {
			return fmt.Errorf("persona %s: component %s: %w", def.Label, comp.Name, err)
		}
		switch comp.Closeness {
		case ClosenessLinear:
			if comp.Width <= 0 {
				return fmt.Errorf("persona %s: component %s needs width > 0", def.Label, comp.Name)
			}
		case ClosenessGaussian:
			if comp.Sigma <= 0 {
				return fmt.Errorf("persona %s: component %s needs sigma > 0", def.Label, comp.Name)
			}
		case ClosenessRamp:
			if comp.Scale <= 0 {
				return fmt.Errorf("persona %s: component %s needs scale > 0", def.Label, comp.Name)
			}
		default:
			return fmt.Errorf("persona %s: component %s: unknown closeness %q", def.Label, comp.Name, comp.Closeness)
		}
		switch comp.OnMissing {
		case OnMissingError, OnMissingZero, OnMissingOmit:
		default:
			return fmt.Errorf("persona %s: component %s: unknown on_missing %q", def.Label, comp.Name, comp.OnMissing)
		}
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("persona %s: component weights sum to %v, want 1.0", def.Label, sum)
	}
	return nil
}
