package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	personas "github.com/lifesnaps/persona-extract"
	"github.com/lifesnaps/persona-extract/dataset"
	"github.com/lifesnaps/persona-extract/export"
	"github.com/lifesnaps/persona-extract/pipeline"
	"github.com/lifesnaps/persona-extract/window"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	root := &cobra.Command{
		Use:   "persona-extract",
		Short: "Extract persona-matching daily windows from wearable data",
		Long:  "persona-extract scans multi-participant daily step/sleep/heart-rate tables for contiguous windows that best match configured persona profiles.",
	}
	root.AddCommand(runCmd(), extractCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		configPath string
		opts       pipeline.Options
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full extraction pipeline and write artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fileOpts, err := pipeline.LoadConfig(configPath)
				if err != nil {
					return err
				}
				mergeOptions(&opts, fileOpts, cmd)
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}

			result, err := pipeline.Run(opts)
			if err != nil {
				return err
			}

			fmt.Printf("persona-extract complete\n")
			fmt.Printf("Output dir:    %s\n", result.OutputDir)
			fmt.Printf("manifest:      %s\n", result.ManifestPath)
			fmt.Printf("candidates:    %s\n", result.CandidatesPath)
			fmt.Printf("summary:       %s\n", result.SummaryPath)
			for persona, path := range result.RecordPaths {
				fmt.Printf("persona %-6s %s\n", persona+":", path)
			}
			for _, outcome := range result.Outcomes {
				if outcome.Status != export.OutcomeSelected {
					fmt.Printf("warning:       persona %s: %s\n", outcome.Persona, outcome.Detail)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML run configuration (flags override)")
	cmd.Flags().StringVar(&opts.InputPath, "input", "", "Path to daily metrics CSV")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&opts.PersonaPath, "personas", "", "Persona profile TOML (built-in profiles when unset)")
	cmd.Flags().IntVar(&opts.WindowDays, "window-days", pipeline.DefaultWindowDays, "Window length in days")
	cmd.Flags().IntVar(&opts.MinDays, "min-days", pipeline.DefaultMinDays, "Minimum non-missing days per metric")
	cmd.Flags().IntVar(&opts.TopK, "top-k", pipeline.DefaultTopK, "Selection pool size (1 = deterministic best)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for top-k selection")
	cmd.Flags().StringVar(&opts.Format, "format", pipeline.DefaultFormat, "Candidate table format: parquet|csv")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	cmd.Flags().IntVar(&opts.Workers, "workers", pipeline.DefaultWorkers, "Concurrent participant workers")
	return cmd
}

// mergeOptions fills unset CLI options from the config file. A flag the user
// set explicitly always wins over the file value.
func mergeOptions(opts *pipeline.Options, file pipeline.Options, cmd *cobra.Command) {
	if !cmd.Flags().Changed("input") && file.InputPath != "" {
		opts.InputPath = file.InputPath
	}
	if !cmd.Flags().Changed("out") && file.OutDir != "" {
		opts.OutDir = file.OutDir
	}
	if !cmd.Flags().Changed("personas") && file.PersonaPath != "" {
		opts.PersonaPath = file.PersonaPath
	}
	if !cmd.Flags().Changed("window-days") && file.WindowDays != 0 {
		opts.WindowDays = file.WindowDays
	}
	if !cmd.Flags().Changed("min-days") && file.MinDays != 0 {
		opts.MinDays = file.MinDays
	}
	if !cmd.Flags().Changed("top-k") && file.TopK != 0 {
		opts.TopK = file.TopK
	}
	if !cmd.Flags().Changed("seed") && file.Seed != nil {
		opts.Seed = file.Seed
	}
	if !cmd.Flags().Changed("format") && file.Format != "" {
		opts.Format = file.Format
	}
	if !cmd.Flags().Changed("overwrite") && file.Overwrite {
		opts.Overwrite = true
	}
	if !cmd.Flags().Changed("workers") && file.Workers != 0 {
		opts.Workers = file.Workers
	}
}

func extractCmd() *cobra.Command {
	var (
		inputPath   string
		personaPath string
		id          string
		start       string
		windowDays  int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract and score one explicit window",
		Long:  "Extract the window starting at --start for participant --id, print its record as JSON, and report its fit score against every configured persona.",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("parse start date %q: %w", start, err)
			}

			profiles, err := loadProfiles(personaPath)
			if err != nil {
				return err
			}

			table, err := dataset.Load(inputPath)
			if err != nil {
				return err
			}
			series, ok := table.SeriesFor(id)
			if !ok {
				return fmt.Errorf("participant %s not found in %s", id, inputPath)
			}

			w, err := window.Extract(series, startDate, windowDays)
			if err != nil {
				return err
			}

			rec := export.BuildRecord("", w)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rec); err != nil {
				return err
			}

			for _, def := range profiles {
				cand, err := personas.Score(def, w)
				if err != nil {
					fmt.Fprintf(os.Stderr, "persona %s: %v\n", def.Label, err)
					continue
				}
				fmt.Fprintf(os.Stderr, "persona %s: score %.4f (threshold %.2f)\n",
					def.Label, cand.Score, def.Threshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to daily metrics CSV")
	cmd.Flags().StringVar(&personaPath, "personas", "", "Persona profile TOML (built-in profiles when unset)")
	cmd.Flags().StringVar(&id, "id", "", "Participant id")
	cmd.Flags().StringVar(&start, "start", "", "Window start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&windowDays, "window-days", pipeline.DefaultWindowDays, "Window length in days")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func loadProfiles(path string) ([]personas.Definition, error) {
	if path == "" {
		return personas.Defaults(), nil
	}
	return personas.Load(path)
}
