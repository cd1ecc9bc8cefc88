package personas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfiles(t *testing.T) {
	path := writeProfiles(t, `
[[persona]]
label = "A"
description = "test profile"
threshold = 0.5

  [[persona.component]]
  name = "activity_level"
  statistic = "mean_steps"
  weight = 0.7
  closeness = "linear"
  target = 5000
  width = 5000

  [[persona.component]]
  name = "resting_heart_rate"
  statistic = "mean_resting_hr"
  weight = 0.3
  closeness = "gaussian"
  target = 72
  sigma = 6
  on_missing = "omit"
`)

	defs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "A", def.Label)
	assert.Equal(t, 0.5, def.Threshold)
	require.Len(t, def.Components, 2)
	assert.Equal(t, OnMissingError, def.Components[0].OnMissing, "default policy applies when unset")
	assert.Equal(t, OnMissingOmit, def.Components[1].OnMissing)
	assert.Equal(t, StatMeanRestingHR, def.Components[1].Statistic)
}

func TestLoadRejectsBadProfiles(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no personas",
			content: "# empty\n",
			wantErr: "no [[persona]] entries",
		},
		{
			name: "weights do not sum to one",
			content: `
[[persona]]
label = "A"
threshold = 0.5
  [[persona.component]]
  name = "a"
  statistic = "mean_steps"
  weight = 0.7
  closeness = "linear"
  target = 5000
  width = 5000
`,
			wantErr: "weights sum",
		},
		{
			name: "unknown statistic",
			content: `
[[persona]]
label = "A"
threshold = 0.5
  [[persona.component]]
  name = "a"
  statistic = "median_steps"
  weight = 1.0
  closeness = "linear"
  target = 5000
  width = 5000
`,
			wantErr: "unknown statistic",
		},
		{
			name: "unknown closeness",
			content: `
[[persona]]
label = "A"
threshold = 0.5
  [[persona.component]]
  name = "a"
  statistic = "mean_steps"
  weight = 1.0
  closeness = "cubic"
  target = 5000
`,
			wantErr: "unknown closeness",
		},
		{
			name: "missing width",
			content: `
[[persona]]
label = "A"
threshold = 0.5
  [[persona.component]]
  name = "a"
  statistic = "mean_steps"
  weight = 1.0
  closeness = "linear"
  target = 5000
`,
			wantErr: "width",
		},
		{
			name: "threshold out of range",
			content: `
[[persona]]
label = "A"
threshold = 1.5
  [[persona.component]]
  name = "a"
  statistic = "mean_steps"
  weight = 1.0
  closeness = "linear"
  target = 5000
  width = 5000
`,
			wantErr: "threshold",
		},
		{
			name: "duplicate labels",
			content: `
[[persona]]
label = "A"
threshold = 0.5
  [[persona.component]]
  name = "a"
  statistic = "mean_steps"
  weight = 1.0
  closeness = "linear"
  target = 5000
  width = 5000

[[persona]]
label = "A"
threshold = 0.5
  [[persona.component]]
  name = "a"
  statistic = "mean_steps"
  weight = 1.0
  closeness = "linear"
  target = 5000
  width = 5000
`,
			wantErr: "duplicate label",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeProfiles(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
