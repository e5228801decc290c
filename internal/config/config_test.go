package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, 6, cfg.MaxHistory)
	assert.Equal(t, 2018, cfg.TrainBefore)
	assert.Equal(t, "https://www.football-data.co.uk/mmz4281/2021/E0.csv", cfg.OddsURL())
}

func TestLoadYamlThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formscore.yaml")
	yamlDoc := "cache_path: " + dir + "/cache\nmax_history: 4\nboth_form_max: 2\nodds_season: \"1920\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	t.Setenv("FORMSCORE_TRAIN_BEFORE", "2010")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.CachePath)
	assert.Equal(t, 4, cfg.MaxHistory)
	assert.Equal(t, 2, cfg.BothFormMax)
	assert.Equal(t, "1920", cfg.OddsSeason)
	assert.Equal(t, 2010, cfg.TrainBefore)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfigRejects(t *testing.T) {
	cases := map[string]func(c *FormscoreConfig){
		"max history":   func(c *FormscoreConfig) { c.MaxHistory = 0 },
		"both form":     func(c *FormscoreConfig) { c.BothFormMax = 9 },
		"log base one":  func(c *FormscoreConfig) { c.LogBase = 1 },
		"log base half": func(c *FormscoreConfig) { c.LogBase = 0.5 },
		"log base neg":  func(c *FormscoreConfig) { c.LogBase = -2 },
		"season length": func(c *FormscoreConfig) { c.OddsSeason = "2020/2021" },
		"season digits": func(c *FormscoreConfig) { c.OddsSeason = "20x1" },
		"log output":    func(c *FormscoreConfig) { c.LogOutput = "z" },
		"chart":         func(c *FormscoreConfig) { c.ChartWidthCm = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestValidateConfigAcceptsLogBases(t *testing.T) {
	for _, base := range []float64{0, 2, 10} {
		cfg := DefaultConfig()
		cfg.LogBase = base
		assert.NoError(t, ValidateConfig(cfg), base)
	}
}

func TestLoadRejectsMalformedEnvironment(t *testing.T) {
	for _, key := range []string{"FORMSCORE_MAX_HISTORY", "FORMSCORE_TRAIN_BEFORE"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "six")
			_, err := Load("")
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadWrittenOddsSeason(t *testing.T) {
	for in, want := range map[string]string{"2020/21": "2021", "1999-2000": "9900", "2122": "2122"} {
		t.Setenv("FORMSCORE_ODDS_SEASON", in)
		cfg, err := Load("")
		require.NoError(t, err, in)
		assert.Equal(t, want, cfg.OddsSeason, in)
	}

	t.Setenv("FORMSCORE_ODDS_SEASON", "2020/22")
	_, err := Load("")
	assert.Error(t, err)
}
