package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/emilianohg/dailyhill/internal/categorize"
)

type Config struct {
	DatabasePath  string      `toml:"database_path"`
	ReportsOutput string      `toml:"reports_output"`
	LogLevel      string      `toml:"log_level"`
	Workers       int         `toml:"workers"`
	MinStreak     int         `toml:"min_streak"`
	Rules         RulesConfig `toml:"rules"`
}

// RulesConfig overrides parts of the built-in classification tables.
type RulesConfig struct {
	KidsKeywords []string `toml:"kids_keywords"`
	AdultAge     int      `toml:"adult_age"`
}

func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		ReportsOutput: filepath.Join(homeDir, "Documents", "reports"),
		LogLevel:      "info",
		MinStreak:     2,
		Rules: RulesConfig{
			AdultAge: 16,
		},
	}
}

func DailyhillDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dailyhill"), nil
}

func ConfigPath() (string, error) {
	dir, err := DailyhillDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := DailyhillDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "dailyhill.sqlite"), nil
}

func ErrorLogPath() (string, error) {
	dir, err := DailyhillDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "errors.log"), nil
}

func EnsureDirectories() error {
	dir, err := DailyhillDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	dbDir := filepath.Join(dir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	// First run: write the defaults so users have a file to edit.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	cfg.ReportsOutput = expandPath(cfg.ReportsOutput)
	cfg.DatabasePath = expandPath(cfg.DatabasePath)
	if cfg.MinStreak < 1 {
		cfg.MinStreak = 1
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// WorkerCount is the number of goroutines used for batch work.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// CategorizeRules applies the configured overrides to the built-in rules.
func (c *Config) CategorizeRules() categorize.Rules {
	rules := categorize.DefaultRules()
	if len(c.Rules.KidsKeywords) > 0 {
		rules.KidsKeywords = c.Rules.KidsKeywords
	}
	if c.Rules.AdultAge > 0 {
		rules.AdultAge = c.Rules.AdultAge
	}
	return rules
}
