package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/richard-senior/formscore/pkg/datasource"
	"gopkg.in/yaml.v3"
)

// FormscoreConfig contains every parameter that influences downloads, evaluation and output
// This centralizes all magic numbers and constants for easy adjustment
type FormscoreConfig struct {
	// === Paths ===
	CachePath  string `yaml:"cache_path"`  // where downloaded CSVs are kept
	OutputPath string `yaml:"output_path"` // where cleaned CSVs, score frames and charts are written
	DbPath     string `yaml:"db_path"`     // optional sqlite database, empty disables persistence

	// === Sources ===
	ResultsURL    string `yaml:"results_url"`     // engsoccerdata england.csv
	OddsURLFormat string `yaml:"odds_url_format"` // football-data.co.uk url, %s is the season code
	OddsIndexURL  string `yaml:"odds_index_url"`  // football-data.co.uk page listing England CSVs
	OddsSeason    string `yaml:"odds_season"`     // season code such as "2021" (2020/2021)
	ForceDownload bool   `yaml:"force_download"`  // ignore the cache and fetch again
	CABundlePath  string `yaml:"ca_bundle_path"`  // extra PEM roots for TLS behind a proxy

	// === Evaluation ===
	MaxHistory  int     `yaml:"max_history"`   // rows need at least this many prior games for both sides
	TrainBefore int     `yaml:"train_before"`  // seasons before this train, the rest test
	BothFormMax int     `yaml:"both_form_max"` // largest window used for the combined home+away key
	LogBase     float64 `yaml:"log_base"`      // 0 or e for natural log, 2 for bits

	// === Output ===
	ChartWidthCm  float64 `yaml:"chart_width_cm"`
	ChartHeightCm float64 `yaml:"chart_height_cm"`

	// === Logging ===
	LogLevel  string `yaml:"log_level"`
	LogOutput string `yaml:"log_output"` // c, f or b
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *FormscoreConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	assets := filepath.Join(home, ".formscore")
	return &FormscoreConfig{
		CachePath:  filepath.Join(assets, "cache"),
		OutputPath: filepath.Join(assets, "out"),
		DbPath:     "",

		ResultsURL:    "https://raw.githubusercontent.com/jalapic/engsoccerdata/master/data-raw/england.csv",
		OddsURLFormat: "https://www.football-data.co.uk/mmz4281/%s/E0.csv",
		OddsIndexURL:  "https://www.football-data.co.uk/englandm.php",
		OddsSeason:    "2021",
		ForceDownload: false,

		MaxHistory:  6,
		TrainBefore: 2018,
		BothFormMax: 3,
		LogBase:     0,

		ChartWidthCm:  20,
		ChartHeightCm: 14,

		LogLevel:  "info",
		LogOutput: "c",
	}
}

// Global configuration instance
var Config *FormscoreConfig

func init() {
	Config = DefaultConfig()
}

// UpdateConfig replaces the global configuration
func UpdateConfig(newConfig *FormscoreConfig) {
	Config = newConfig
}

// Load builds a configuration from defaults, an optional yaml file and then the environment
// (a .env file in the working directory is read first if present)
func Load(path string) (*FormscoreConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := normaliseOddsSeason(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *FormscoreConfig) error {
	cfg.CachePath = envStr("FORMSCORE_CACHE_PATH", cfg.CachePath)
	cfg.OutputPath = envStr("FORMSCORE_OUTPUT_PATH", cfg.OutputPath)
	cfg.DbPath = envStr("FORMSCORE_DB_PATH", cfg.DbPath)
	cfg.OddsSeason = envStr("FORMSCORE_ODDS_SEASON", cfg.OddsSeason)
	cfg.LogLevel = envStr("FORMSCORE_LOG_LEVEL", cfg.LogLevel)
	cfg.CABundlePath = envStr("FORMSCORE_CA_BUNDLE", cfg.CABundlePath)

	var err error
	if cfg.MaxHistory, err = envInt("FORMSCORE_MAX_HISTORY", cfg.MaxHistory); err != nil {
		return err
	}
	if cfg.TrainBefore, err = envInt("FORMSCORE_TRAIN_BEFORE", cfg.TrainBefore); err != nil {
		return err
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

// normaliseOddsSeason turns a written season such as 2020/21 or 2020-2021 into the
// football-data code (2021). Four character values are left for validation.
func normaliseOddsSeason(cfg *FormscoreConfig) error {
	if !strings.ContainsAny(cfg.OddsSeason, "/-") {
		return nil
	}
	first, err := datasource.ParseSeason(cfg.OddsSeason)
	if err != nil {
		return fmt.Errorf("odds_season: %w", err)
	}
	cfg.OddsSeason = datasource.SeasonCode(first)
	return nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *FormscoreConfig) error {
	if config.CachePath == "" {
		return fmt.Errorf("CachePath must be set")
	}
	if config.OutputPath == "" {
		return fmt.Errorf("OutputPath must be set")
	}
	if config.MaxHistory < 1 {
		return fmt.Errorf("MaxHistory must be at least 1, got: %d", config.MaxHistory)
	}
	if config.BothFormMax < 1 || config.BothFormMax > config.MaxHistory {
		return fmt.Errorf("BothFormMax must be between 1 and MaxHistory (%d), got: %d", config.MaxHistory, config.BothFormMax)
	}
	if config.LogBase != 0 && config.LogBase <= 1 {
		return fmt.Errorf("LogBase must be 0 (natural) or greater than 1, got: %f", config.LogBase)
	}
	if len(config.OddsSeason) != 4 {
		return fmt.Errorf("OddsSeason must be a four digit season code such as 2021, got: %q", config.OddsSeason)
	}
	if _, err := strconv.Atoi(config.OddsSeason); err != nil {
		return fmt.Errorf("OddsSeason must be numeric, got: %q", config.OddsSeason)
	}
	switch config.LogOutput {
	case "c", "f", "b":
	default:
		return fmt.Errorf("LogOutput must be one of c, f or b, got: %q", config.LogOutput)
	}
	if config.ChartWidthCm <= 0 || config.ChartHeightCm <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}
	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// OddsURL returns the football-data.co.uk url for the configured season
func (c *FormscoreConfig) OddsURL() string {
	return fmt.Sprintf(c.OddsURLFormat, c.OddsSeason)
}

// Output joins name onto the output directory
func (c *FormscoreConfig) Output(name string) string {
	return filepath.Join(c.OutputPath, name)
}
