package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lifesnaps/persona-extract/export"
	"github.com/lifesnaps/persona-extract/selection"
)

// Defaults applied by Run for unset options.
const (
	DefaultWindowDays = 14
	DefaultMinDays    = 12
	DefaultTopK       = 1
	DefaultFormat     = "parquet"
	DefaultWorkers    = 4
)

// Options configures one extraction run.
type Options struct {
	InputPath   string
	OutDir      string
	PersonaPath string
	WindowDays  int
	MinDays     int
	TopK        int
	Seed        *int64
	Format      string // parquet|csv
	Overwrite   bool
	Workers     int
}

// Result returns generated artifact paths and run counts.
type Result struct {
	OutputDir       string                `json:"output_dir"`
	ManifestPath    string                `json:"manifest_path"`
	CandidatesPath  string                `json:"candidates_path"`
	SummaryPath     string                `json:"summary_path"`
	RecordPaths     map[string]string     `json:"record_paths"`
	StatisticsPaths map[string]string     `json:"statistics_paths"`
	Rows            int                   `json:"rows"`
	Participants    int                   `json:"participants"`
	Windows         int                   `json:"windows"`
	ValidWindows    int                   `json:"valid_windows"`
	Candidates      int                   `json:"candidates"`
	Outcomes        []export.Outcome      `json:"outcomes"`
	Selections      []selection.Selection `json:"-"`
}

// FileConfig is the optional YAML run configuration. Explicit CLI flags win
// over file values.
type FileConfig struct {
	Input      string `yaml:"input"`
	OutDir     string `yaml:"out_dir"`
	Personas   string `yaml:"personas"`
	WindowDays int    `yaml:"window_days"`
	MinDays    int    `yaml:"min_days"`
	TopK       int    `yaml:"top_k"`
	Seed       *int64 `yaml:"seed"`
	Format     string `yaml:"format"`
	Overwrite  bool   `yaml:"overwrite"`
	Workers    int    `yaml:"workers"`
}

// LoadConfig reads a YAML run configuration into Options.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read run config: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Options{}, fmt.Errorf("parse run config: %w", err)
	}
	return Options{
		InputPath:   cfg.Input,
		OutDir:      cfg.OutDir,
		PersonaPath: cfg.Personas,
		WindowDays:  cfg.WindowDays,
		MinDays:     cfg.MinDays,
		TopK:        cfg.TopK,
		Seed:        cfg.Seed,
		Format:      cfg.Format,
		Overwrite:   cfg.Overwrite,
		Workers:     cfg.Workers,
	}, nil
}

func (o *Options) applyDefaults() {
	if o.WindowDays == 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.MinDays == 0 {
		o.MinDays = DefaultMinDays
	}
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
}
