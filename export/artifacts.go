package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Manifest captures run metadata and pointers to generated artifacts.
type Manifest struct {
	FormatVersion  string            `json:"format_version"`
	GeneratedAt    time.Time         `json:"generated_at"`
	RunID          string            `json:"run_id"`
	InputPath      string            `json:"input_path"`
	InputSHA256    string            `json:"input_sha256"`
	InputRows      int               `json:"input_rows"`
	Participants   int               `json:"participants"`
	WindowDays     int               `json:"window_days"`
	MinDays        int               `json:"min_days"`
	TopK           int               `json:"top_k"`
	Seed           *int64            `json:"seed,omitempty"`
	CandidateCount int               `json:"candidate_count"`
	Artifacts      map[string]string `json:"artifacts"`
	Outcomes       []Outcome         `json:"outcomes"`
}

// Per-persona outcome statuses, ordered by how far the pipeline got.
const (
	OutcomeNoInputData       = "no_input_data"
	OutcomeNoWindows         = "no_contiguous_windows"
	OutcomeNoCoverage        = "no_coverage_valid_windows"
	OutcomeNoViableCandidate = "no_viable_candidates"
	OutcomeSelected          = "selected"
)

// Outcome reports how one persona's selection ended.
type Outcome struct {
	Persona       string  `json:"persona"`
	Status        string  `json:"status"`
	Detail        string  `json:"detail,omitempty"`
	ParticipantID string  `json:"id,omitempty"`
	StartDate     string  `json:"start_date,omitempty"`
	Score         float64 `json:"score,omitempty"`
	Method        string  `json:"method,omitempty"`
	PoolSize      int     `json:"pool_size,omitempty"`
}

// EnsureOutputDir creates the output directory, refusing a non-empty one
// unless overwrite is set.
func EnsureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite to allow)", path)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCandidatesCSV writes the full scored candidate pool as a CSV table.
func WriteCandidatesCSV(path string, rows []CandidateRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"persona", "id", "start_date", "end_date", "score", "components"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Persona,
			row.ID,
			row.StartDate,
			row.EndDate,
			strconv.FormatFloat(row.Score, 'f', 6, 64),
			row.Components,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
