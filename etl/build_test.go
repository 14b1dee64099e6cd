package etl_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/etl"
	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeNamedInput(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	require.NoError(t, os.WriteFile(path, data, 0666))
	return path
}

func TestRunBuildMergesSources(t *testing.T) {
	users := writeNamedInput(t, "users.json",
		`{"userId": 1, "name": "ann", "region": "east"}`,
		`{"userId": 2, "name": "bo"}`,
	)
	profiles := writeNamedInput(t, "profiles.json",
		`{"userId": 1, "region": "west", "score": 9.5}`,
	)
	out := filepath.Join(t.TempDir(), "merged.json")
	cfg := &config.Build{
		Name: "merged",
		Sources: []config.Source{
			{URI: users, Fields: []config.Field{
				{Name: "userId", Type: "int64"},
				{Name: "name", Type: "string"},
				{Name: "region", Type: "string"},
			}},
			{URI: profiles, Fields: []config.Field{
				{Name: "userId", Type: "int64"},
				{Name: "region", Type: "string"},
				{Name: "score", Type: "float64"},
			}},
		},
		Keys: []string{"userId"},
		Path: out,
	}
	require.NoError(t, cfg.Validate())
	stats, err := etl.RunBuild(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.InputRecords)
	require.Len(t, stats.Tables, 1)
	assert.Equal(t, int64(2), stats.Tables[0].Rows)

	// Merged schema: key first, then every other column of every source in
	// declaration order.
	schema := exhibit.NewSchema("merged", []exhibit.Field{
		exhibit.NewField("userId", exhibit.TypeInt64),
		exhibit.NewField("name", exhibit.TypeString),
		exhibit.NewField("region", exhibit.TypeString),
		exhibit.NewField("score", exhibit.TypeFloat64),
	})
	rows := readOutput(t, out, schema)
	require.Len(t, rows, 2)
	// Both sources contributed to key 1; the later source wins the shared
	// region column.
	assert.Equal(t, []any{int64(1), "ann", "west", 9.5}, rows[0].Values)
	assert.Equal(t, []any{int64(2), "bo", nil, nil}, rows[1].Values)
}

func TestRunBuildSkipsNullKeys(t *testing.T) {
	src := writeNamedInput(t, "users.json",
		`{"userId": 1, "name": "ann"}`,
		`{"name": "ghost"}`,
	)
	out := filepath.Join(t.TempDir(), "merged.json")
	cfg := &config.Build{
		Name: "merged",
		Sources: []config.Source{
			{URI: src, Fields: []config.Field{
				{Name: "userId", Type: "int64"},
				{Name: "name", Type: "string"},
			}},
		},
		Keys: []string{"userId"},
		Path: out,
	}
	require.NoError(t, cfg.Validate())
	stats, err := etl.RunBuild(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.KeysSkipped)
	assert.Equal(t, int64(1), stats.Tables[0].Rows)
}

func TestRunBuildUnvalidatedParallelism(t *testing.T) {
	src := writeNamedInput(t, "users.json", `{"userId": 1, "name": "ann"}`)
	out := filepath.Join(t.TempDir(), "merged.json")
	cfg := &config.Build{
		Name: "merged",
		Sources: []config.Source{
			{URI: src, Fields: []config.Field{
				{Name: "userId", Type: "int64"},
				{Name: "name", Type: "string"},
			}},
		},
		Keys: []string{"userId"},
		Path: out,
		Mode: config.ModeOverwrite,
	}
	stats, err := etl.RunBuild(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Tables[0].Rows)
}

func TestRunBuildKeyTypeMismatch(t *testing.T) {
	cfg := &config.Build{
		Name: "merged",
		Sources: []config.Source{
			{URI: "a.json", Fields: []config.Field{{Name: "userId", Type: "int64"}}},
			{URI: "b.json", Fields: []config.Field{{Name: "userId", Type: "string"}}},
		},
		Keys: []string{"userId"},
		Path: "out.json",
	}
	require.NoError(t, cfg.Validate())
	_, err := etl.RunBuild(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
