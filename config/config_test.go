package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/ladder/pipeline"
	"github.com/spektr-org/ladder/source"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, source.DefaultMinYear, cfg.Sources.MinYear)
	assert.Equal(t, source.DefaultMaxYear, cfg.Sources.MaxYear)
	assert.Equal(t, pipeline.DefaultSnapshotYear, cfg.Merge.SnapshotYear)
	assert.Equal(t, "intersect", cfg.Merge.Coverage)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 10, cfg.Output.TopN)
	assert.Equal(t, 3, cfg.Output.Decimals)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ladder.yaml")

	want := DefaultConfig()
	want.Sources.PanelPath = "data/panel.csv"
	want.Sources.SnapshotPath = "data/snapshot.xlsx"
	want.Sources.Sheet = "2021"
	want.Sources.SkipMalformed = true
	want.Merge.Coverage = "panel"
	want.Output.Format = "json"
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merge:\n  snapshot_year: 2020\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2020, cfg.Merge.SnapshotYear)
	assert.Equal(t, "intersect", cfg.Merge.Coverage)
	assert.Equal(t, 10, cfg.Output.TopN)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merge: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  panel_path: from-file.csv\n"), 0644))

	t.Setenv("LADDER_PANEL_PATH", "from-env.csv")
	t.Setenv("LADDER_SNAPSHOT_YEAR", "2019")
	t.Setenv("LADDER_SKIP_MALFORMED", "true")
	t.Setenv("LADDER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.csv", cfg.Sources.PanelPath)
	assert.Equal(t, 2019, cfg.Merge.SnapshotYear)
	assert.True(t, cfg.Sources.SkipMalformed)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("LADDER_TOP_N", "many")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources.MinYear = 2022
	cfg.Merge.Coverage = "union"
	cfg.Logging.Format = "xml"
	cfg.Output.TopN = -1

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"min_year", "merge.coverage", "logging.format", "output.top_n"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "output.format")
}

func TestValidate_NormalizesEnumerations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = " JSON "
	cfg.Logging.Format = "Console"
	cfg.Logging.Level = "WARN"
	cfg.Merge.Coverage = "Panel"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "panel", cfg.Merge.Coverage)
}

func TestDelimiterRune(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{",", ',', false},
		{";", ';', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"|", '|', false},
		{`"`, 0, true},
		{"\n", 0, true},
		{",,", 0, true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Sources.Delimiter = tt.in
		got, err := cfg.DelimiterRune()
		if tt.wantErr {
			assert.Error(t, err, "%q", tt.in)
			continue
		}
		require.NoError(t, err, "%q", tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	assert.Len(t, cfg.SourceOptions(), 2)

	cfg.Sources.Delimiter = ";"
	cfg.Sources.Sheet = "Data"
	assert.Len(t, cfg.SourceOptions(), 4)

	assert.Len(t, cfg.PipelineOptions(), 1)
}
