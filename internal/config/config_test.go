package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, 10, c.Analysis.TopN)
	assert.Equal(t, 0.3, c.Analysis.WeakLinkThreshold)
	assert.Equal(t, 500, c.Analysis.EigenvectorMaxIter)
	assert.Equal(t, 0.85, c.Analysis.PageRankDamping)
	assert.Equal(t, 5.0, c.Weights.NameBonus)
	assert.True(t, c.Storage.Enabled)
	assert.Equal(t, "info", c.Log.Level)
	require.NoError(t, c.Validate())

	d, err := c.WatchDebounce()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[analysis]
top_n = 5
detector_workers = 1

[weights]
name_bonus = 2.5

[weights.categories]
evasion = 4.0
removal = 3.5

[storage]
enabled = false

[log]
level = "debug"
format = "json"

[watch]
debounce = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 5, c.Analysis.TopN)
	assert.Equal(t, 1, c.Analysis.DetectorWorkers)
	assert.Equal(t, 0.3, c.Analysis.WeakLinkThreshold, "unset keys keep defaults")
	assert.Equal(t, 2.5, c.Weights.NameBonus)
	assert.Equal(t, map[string]float64{"evasion": 4.0, "removal": 3.5}, c.Weights.Categories)
	assert.False(t, c.Storage.Enabled)
	assert.Equal(t, "json", c.Log.Format)

	d, err := c.WatchDebounce()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoadFrom_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[analysis\ntop_n = "), 0o644))
	_, err := LoadFrom(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[log]\nlevel = \"loud\"\n"), 0o644))
	_, err = LoadFrom(invalid)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative top_n", func(c *Config) { c.Analysis.TopN = -1 }},
		{"zero top_n", func(c *Config) { c.Analysis.TopN = 0 }},
		{"zero eigenvector_max_iter", func(c *Config) { c.Analysis.EigenvectorMaxIter = 0 }},
		{"zero damping", func(c *Config) { c.Analysis.PageRankDamping = 0 }},
		{"zero tolerance", func(c *Config) { c.Analysis.PageRankTolerance = 0 }},
		{"threshold above one", func(c *Config) { c.Analysis.WeakLinkThreshold = 1.5 }},
		{"damping of one", func(c *Config) { c.Analysis.PageRankDamping = 1 }},
		{"negative tolerance", func(c *Config) { c.Analysis.EigenvectorTolerance = -1 }},
		{"negative name bonus", func(c *Config) { c.Weights.NameBonus = -1 }},
		{"negative category weight", func(c *Config) { c.Weights.Categories["combat"] = -2 }},
		{"negative keep_reports", func(c *Config) { c.Storage.KeepReports = -1 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_ZeroWeakLinkThreshold(t *testing.T) {
	c := DefaultConfig()
	c.Analysis.WeakLinkThreshold = 0
	assert.NoError(t, c.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	c := DefaultConfig()
	c.Analysis.TopN = 3
	c.Weights.Categories["tokens"] = 2.25
	c.Collection.Catalog = "/data/cards.json"
	require.NoError(t, c.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestDatabasePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	c := DefaultConfig()
	path, err := c.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, "seers-orb.db"), path)

	c.Storage.Path = "~/data/orb.db"
	path, err = c.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "orb.db"), path)

	c.Storage.Path = "/var/lib/orb.db"
	path, err = c.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/orb.db", path)
}
