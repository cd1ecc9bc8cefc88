package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	personas "github.com/lifesnaps/persona-extract"
	"github.com/lifesnaps/persona-extract/window"
)

func TestEnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, EnsureOutputDir(dir, false))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.json"), []byte("{}"), 0o644))
	err := EnsureOutputDir(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")

	assert.NoError(t, EnsureOutputDir(dir, true))
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	manifest := Manifest{
		FormatVersion: FormatVersion,
		RunID:         "test-run",
		InputRows:     42,
		Artifacts:     map[string]string{"candidates": "candidates.csv"},
	}
	require.NoError(t, WriteJSON(path, manifest))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format_version": "persona_window_v1"`)
	assert.Contains(t, string(data), `"input_rows": 42`)
}

func TestCandidateRowsAndCSV(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	cands := []personas.ScoredCandidate{
		{
			Window:  window.Window{ParticipantID: "p1", Start: start, End: start.AddDate(0, 0, 13)},
			Persona: "A",
			Score:   0.8125,
			Components: map[string]personas.ComponentScore{
				"activity_level": {Score: 1, Weight: 0.5, Contribution: 0.5},
			},
		},
		{
			Window:  window.Window{ParticipantID: "p2", Start: start, End: start.AddDate(0, 0, 13)},
			Persona: "B",
			Score:   0.25,
		},
	}

	rows := CandidateRows(cands)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Persona)
	assert.Equal(t, "2024-03-04", rows[0].StartDate)
	assert.Equal(t, "2024-03-17", rows[0].EndDate)
	assert.Contains(t, rows[0].Components, "activity_level")

	path := filepath.Join(t.TempDir(), "candidates.csv")
	require.NoError(t, WriteCandidatesCSV(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"persona", "id", "start_date", "end_date", "score", "components"}, records[0])
	assert.Equal(t, "0.812500", records[1][4])
}
