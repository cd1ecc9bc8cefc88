// Package pipeline orchestrates the persona window extraction run: load,
// enumerate, validate, score, select, serialize.
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	personas "github.com/lifesnaps/persona-extract"
	"github.com/lifesnaps/persona-extract/dataset"
	"github.com/lifesnaps/persona-extract/export"
	"github.com/lifesnaps/persona-extract/insights"
	"github.com/lifesnaps/persona-extract/selection"
	"github.com/lifesnaps/persona-extract/window"
)

// Run executes the full extraction pipeline and writes all artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	opts.applyDefaults()
	if opts.Format != "parquet" && opts.Format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", opts.Format)
	}
	if opts.TopK < 1 {
		return nil, fmt.Errorf("top-k must be at least 1, got %d", opts.TopK)
	}
	if opts.MinDays > opts.WindowDays {
		return nil, fmt.Errorf("min-days %d exceeds window-days %d", opts.MinDays, opts.WindowDays)
	}

	profiles, err := loadProfiles(opts.PersonaPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read daily table: %w", err)
	}
	sum := sha256.Sum256(data)

	table, err := dataset.ReadTable(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	log.Info().Int("rows", table.Rows).Int("participants", len(table.Series)).
		Bool("resting_hr", table.HasRestingHR).Msg("Loaded daily table")

	if err := export.EnsureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	pool, windows, validWindows, err := scoreAll(table, profiles, opts)
	if err != nil {
		return nil, err
	}
	log.Info().Int("windows", windows).Int("valid_windows", validWindows).
		Int("candidates", poolSize(pool)).Msg("Scored candidate windows")

	// One generator per run: reproducibility requires a single seeded
	// source shared across personas.
	var rng *rand.Rand
	if opts.Seed != nil {
		rng = rand.New(rand.NewSource(*opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	result := &Result{
		OutputDir:       opts.OutDir,
		RecordPaths:     make(map[string]string),
		StatisticsPaths: make(map[string]string),
		Rows:            table.Rows,
		Participants:    len(table.Series),
		Windows:         windows,
		ValidWindows:    validWindows,
		Candidates:      poolSize(pool),
	}

	var summary strings.Builder
	summary.WriteString("# Persona window selection\n\n")

	for _, def := range profiles {
		sel, err := selection.Select(pool[def.Label], def.Label, def.Threshold, opts.TopK, rng, opts.Seed)
		var noViable *selection.NoViableCandidateError
		if errors.As(err, &noViable) {
			outcome := emptyPoolOutcome(def.Label, noViable, table.Rows, windows, validWindows)
			log.Warn().Str("persona", def.Label).Str("status", outcome.Status).Msg(outcome.Detail)
			result.Outcomes = append(result.Outcomes, outcome)
			fmt.Fprintf(&summary, "## Persona %s\n\nNot selected: %s\n\n", def.Label, outcome.Detail)
			continue
		}
		if err != nil {
			return nil, err
		}

		rec := export.BuildRecord(sel.Persona, sel.Candidate.Window)
		recPath := filepath.Join(opts.OutDir, "persona_"+slug(def.Label)+".json")
		if err := export.WriteJSON(recPath, rec); err != nil {
			return nil, fmt.Errorf("write persona record: %w", err)
		}
		result.RecordPaths[def.Label] = recPath

		stats := insights.Compute(rec)
		statsPath := filepath.Join(opts.OutDir, "statistics_"+slug(def.Label)+".json")
		if err := export.WriteJSON(statsPath, stats); err != nil {
			return nil, fmt.Errorf("write statistics: %w", err)
		}
		result.StatisticsPaths[def.Label] = statsPath

		summary.WriteString(insights.FormatSummary(stats))
		fmt.Fprintf(&summary, "Fit score %.4f via %s (pool %d)\n\n",
			sel.Candidate.Score, sel.Method, sel.PoolSize)

		result.Selections = append(result.Selections, sel)
		result.Outcomes = append(result.Outcomes, export.Outcome{
			Persona:       def.Label,
			Status:        export.OutcomeSelected,
			ParticipantID: sel.Candidate.Window.ParticipantID,
			StartDate:     sel.Candidate.Window.Start.Format("2006-01-02"),
			Score:         sel.Candidate.Score,
			Method:        sel.Method,
			PoolSize:      sel.PoolSize,
		})
		log.Info().Str("persona", def.Label).
			Str("id", sel.Candidate.Window.ParticipantID).
			Str("start", sel.Candidate.Window.Start.Format("2006-01-02")).
			Float64("score", sel.Candidate.Score).
			Str("method", sel.Method).Msg("Selected window")
	}

	candidatesPath, err := writeCandidates(opts, pool, profiles)
	if err != nil {
		return nil, err
	}
	result.CandidatesPath = candidatesPath

	summaryPath := filepath.Join(opts.OutDir, "selection_summary.md")
	if err := os.WriteFile(summaryPath, []byte(summary.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write selection summary: %w", err)
	}
	result.SummaryPath = summaryPath

	manifest := export.Manifest{
		FormatVersion:  export.FormatVersion,
		GeneratedAt:    time.Now().UTC(),
		RunID:          uuid.NewString(),
		InputPath:      opts.InputPath,
		InputSHA256:    hex.EncodeToString(sum[:]),
		InputRows:      table.Rows,
		Participants:   len(table.Series),
		WindowDays:     opts.WindowDays,
		MinDays:        opts.MinDays,
		TopK:           opts.TopK,
		Seed:           opts.Seed,
		CandidateCount: result.Candidates,
		Artifacts:      artifactIndex(result),
		Outcomes:       result.Outcomes,
	}
	manifestPath := filepath.Join(opts.OutDir, "manifest.json")
	if err := export.WriteJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}

func loadProfiles(path string) ([]personas.Definition, error) {
	if strings.TrimSpace(path) == "" {
		return personas.Defaults(), nil
	}
	return personas.Load(path)
}

// scoreAll fans participants out over a bounded worker pool. Enumeration,
// validation, and scoring carry no cross-participant state; the pool is
// fully assembled before selection runs.
func scoreAll(table *dataset.Table, profiles []personas.Definition, opts Options) (map[string][]personas.ScoredCandidate, int, int, error) {
	var (
		mu           sync.Mutex
		pool         = make(map[string][]personas.ScoredCandidate, len(profiles))
		windows      int
		validWindows int
	)

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for _, series := range table.Series {
		g.Go(func() error {
			local := make(map[string][]personas.ScoredCandidate, len(profiles))
			enumerated, valid := 0, 0
			for w := range window.Enumerate(series, opts.WindowDays) {
				enumerated++
				if !window.CoverageOK(w, opts.MinDays) {
					continue
				}
				valid++
				for _, def := range profiles {
					cand, err := personas.Score(def, w)
					if err != nil {
						return err
					}
					local[def.Label] = append(local[def.Label], cand)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			windows += enumerated
			validWindows += valid
			for label, cands := range local {
				pool[label] = append(pool[label], cands...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}
	return pool, windows, validWindows, nil
}

func writeCandidates(opts Options, pool map[string][]personas.ScoredCandidate, profiles []personas.Definition) (string, error) {
	var all []personas.ScoredCandidate
	for _, def := range profiles {
		all = append(all, selection.Rank(pool[def.Label])...)
	}
	rows := export.CandidateRows(all)

	path := filepath.Join(opts.OutDir, "candidates."+opts.Format)
	switch opts.Format {
	case "csv":
		if err := export.WriteCandidatesCSV(path, rows); err != nil {
			return "", fmt.Errorf("write candidates csv: %w", err)
		}
	default:
		if err := export.WriteCandidatesParquet(path, rows); err != nil {
			return "", fmt.Errorf("write candidates parquet: %w", err)
		}
	}
	return path, nil
}

// emptyPoolOutcome distinguishes why a persona ended without a selection:
// no input data, no contiguous windows, no coverage-valid windows, or no
// candidate above the viability threshold.
func emptyPoolOutcome(label string, err *selection.NoViableCandidateError, rows, windows, validWindows int) export.Outcome {
	outcome := export.Outcome{Persona: label}
	switch {
	case rows == 0:
		outcome.Status = export.OutcomeNoInputData
		outcome.Detail = "input table has no rows"
	case windows == 0:
		outcome.Status = export.OutcomeNoWindows
		outcome.Detail = "no participant has a contiguous window of the requested length"
	case validWindows == 0:
		outcome.Status = export.OutcomeNoCoverage
		outcome.Detail = "no contiguous window meets the coverage thresholds"
	default:
		outcome.Status = export.OutcomeNoViableCandidate
		outcome.Detail = err.Error()
	}
	return outcome
}

func artifactIndex(result *Result) map[string]string {
	artifacts := map[string]string{
		"candidates": filepath.Base(result.CandidatesPath),
		"summary":    filepath.Base(result.SummaryPath),
	}
	for label, path := range result.RecordPaths {
		artifacts["persona_"+slug(label)] = filepath.Base(path)
	}
	for label, path := range result.StatisticsPaths {
		artifacts["statistics_"+slug(label)] = filepath.Base(path)
	}
	return artifacts
}

func slug(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func poolSize(pool map[string][]personas.ScoredCandidate) int {
	total := 0
	for _, cands := range pool {
		total += len(cands)
	}
	return total
}
