package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration settings.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Paths    PathsConfig    `yaml:"paths"`
	Rating   RatingConfig   `yaml:"rating"`
}

// DatabaseConfig selects the storage driver.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	// DSN is the Postgres connection string; ignored for sqlite.
	DSN string `yaml:"dsn"`
	// Path is the sqlite database file; ignored for postgres.
	Path string `yaml:"path"`
}

// PathsConfig holds filesystem locations used by the import pipeline.
type PathsConfig struct {
	// DataDir holds the profile and match-rule JSON stores.
	DataDir string `yaml:"data_dir"`
	// NormsXLSX is the rank-threshold workbook. Empty means the bundled
	// default next to DataDir, materialized on first use.
	NormsXLSX string `yaml:"norms_xlsx"`
}

// RatingConfig holds rolling-rating parameters.
type RatingConfig struct {
	// Window is the number of most recent tournaments counted per player.
	Window int `yaml:"window"`
}

const (
	defaultWindow   = 6
	defaultDataDir  = "darts-data"
	defaultDBFile   = "darts.db"
	normsFileName   = "norms.xlsx"
	rulesFileName   = "match_rules.json"
	profileFileName = "import_profiles.json"
)

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func loadConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Driver: os.Getenv("DARTS_DB_DRIVER"),
			DSN:    os.Getenv("DARTS_DB_DSN"),
			Path:   os.Getenv("DARTS_DB_PATH"),
		},
		Paths: PathsConfig{
			DataDir:   os.Getenv("DARTS_DATA_DIR"),
			NormsXLSX: os.Getenv("DARTS_NORMS_XLSX"),
		},
	}
	if raw := os.Getenv("DARTS_RATING_WINDOW"); raw != "" {
		window, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DARTS_RATING_WINDOW %q: %w", raw, err)
		}
		cfg.Rating.Window = window
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Paths.DataDir, defaultDBFile)
	}
	if c.Rating.Window <= 0 {
		c.Rating.Window = defaultWindow
	}
}

// NormsPath returns the configured norms workbook path. The DARTS_NORMS_XLSX
// environment variable wins over the config file.
func (c *Config) NormsPath() string {
	if env := os.Getenv("DARTS_NORMS_XLSX"); env != "" {
		return env
	}
	if c.Paths.NormsXLSX != "" {
		return c.Paths.NormsXLSX
	}
	return filepath.Join(c.Paths.DataDir, normsFileName)
}

// MatchRulesPath returns the remembered player-match rules JSON document.
func (c *Config) MatchRulesPath() string {
	return filepath.Join(c.Paths.DataDir, rulesFileName)
}

// ImportProfilesPath returns the import-profile JSON document.
func (c *Config) ImportProfilesPath() string {
	return filepath.Join(c.Paths.DataDir, profileFileName)
}
