package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0666))
	return path
}

func TestLoadComputeDefaults(t *testing.T) {
	cfg, err := config.LoadCompute(writeConfig(t, `
source:
  uri: /data/obs.json
  fields:
    - {name: userId, type: int64}
    - {name: amount, type: int64}
outputs:
  - keys: [userId]
    aggregates:
      - kind: sum
        field: amount
    path: /data/out.json
`))
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Source.FrameName())
	assert.Equal(t, 1, cfg.Parallelism)
	require.Len(t, cfg.Outputs, 1)
	out := cfg.Outputs[0]
	assert.Equal(t, "table0", out.Name)
	assert.Equal(t, config.ModeOverwrite, out.Mode)
	require.Len(t, out.Aggregates, 1)
	assert.Equal(t, "sum_amount", out.Aggregates[0].As)
}

func TestLoadComputeFull(t *testing.T) {
	cfg, err := config.LoadCompute(writeConfig(t, `
source:
  uri: s3://bucket/obs.json
  frame: events
  format: json
  fields:
    - {name: userId, type: int64}
    - {name: day, type: int64}
    - {name: amount, type: float64}
parallelism: 8
noCombine: true
outputs:
  - name: daily
    keys: [userId, day]
    aggregates:
      - {kind: sum, field: amount, as: total}
      - {kind: count, as: n}
    path: s3://bucket/daily
    mode: append
    format: parquet
`))
	require.NoError(t, err)
	assert.Equal(t, "events", cfg.Source.FrameName())
	assert.Equal(t, 8, cfg.Parallelism)
	assert.True(t, cfg.NoCombine)
	out := cfg.Outputs[0]
	assert.Equal(t, "daily", out.Name)
	assert.Equal(t, []string{"userId", "day"}, out.Keys)
	assert.Equal(t, config.ModeAppend, out.Mode)
	assert.Equal(t, "parquet", out.Format)
}

func TestLoadComputeErrors(t *testing.T) {
	cases := map[string]string{
		"missing uri": `
source:
  fields: [{name: a, type: int64}]
outputs:
  - {keys: [a], path: /out}
`,
		"no outputs": `
source:
  uri: /data/obs.json
  fields: [{name: a, type: int64}]
`,
		"no keys": `
source:
  uri: /data/obs.json
  fields: [{name: a, type: int64}]
outputs:
  - {path: /out}
`,
		"no path": `
source:
  uri: /data/obs.json
  fields: [{name: a, type: int64}]
outputs:
  - {keys: [a]}
`,
		"bad mode": `
source:
  uri: /data/obs.json
  fields: [{name: a, type: int64}]
outputs:
  - {keys: [a], path: /out, mode: upsert}
`,
		"bad type": `
source:
  uri: /data/obs.json
  fields: [{name: a, type: decimal}]
outputs:
  - {keys: [a], path: /out}
`,
		"missing kind": `
source:
  uri: /data/obs.json
  fields: [{name: a, type: int64}]
outputs:
  - keys: [a]
    path: /out
    aggregates:
      - {field: a}
`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadCompute(writeConfig(t, text))
			assert.Error(t, err)
		})
	}
}

func TestLoadBuild(t *testing.T) {
	cfg, err := config.LoadBuild(writeConfig(t, `
name: merged
sources:
  - uri: /data/users.json
    fields: [{name: userId, type: int64}, {name: name, type: string}]
  - uri: /data/profiles.json
    fields: [{name: userId, type: int64}, {name: score, type: float64}]
keys: [userId]
path: /data/merged.json
`))
	require.NoError(t, err)
	assert.Equal(t, "merged", cfg.Name)
	assert.Len(t, cfg.Sources, 2)
	assert.Equal(t, config.ModeOverwrite, cfg.Mode)
	assert.Equal(t, 1, cfg.Parallelism)
}

func TestLoadBuildErrors(t *testing.T) {
	cases := map[string]string{
		"missing name": `
sources:
  - {uri: /a, fields: [{name: k, type: int64}]}
keys: [k]
path: /out
`,
		"no sources": `
name: merged
keys: [k]
path: /out
`,
		"no keys": `
name: merged
sources:
  - {uri: /a, fields: [{name: k, type: int64}]}
path: /out
`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadBuild(writeConfig(t, text))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.LoadCompute(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
