package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/budgetkit/budget/internal/categories"
	"github.com/budgetkit/budget/internal/model"
	"github.com/budgetkit/budget/internal/validate"
)

// FileName is the default config file name.
const FileName = "budget.yaml"

// Environment variables that override the file.
const (
	EnvDataPath  = "BUDGET_DATA_PATH"
	EnvLogLevel  = "BUDGET_LOG_LEVEL"
	EnvLogFormat = "BUDGET_LOG_FORMAT"
)

// Config represents the top-level budget.yaml configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Log        LogConfig        `yaml:"log"`
	Limits     LimitsConfig     `yaml:"limits"`
	Categories CategoriesConfig `yaml:"categories"`

	// dir is where the file was loaded from; relative paths resolve
	// against it.
	dir string
}

// DataConfig locates the ledger file.
type DataConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// LimitsConfig bounds accepted input. Amounts are decimal strings.
type LimitsConfig struct {
	MinAmount            string `yaml:"min_amount"`
	MaxAmount            string `yaml:"max_amount"`
	DescriptionMaxLength int    `yaml:"description_max_length"`
}

// CategoriesConfig lists the recommended categories per type.
type CategoriesConfig struct {
	Income  []string `yaml:"income"`
	Expense []string `yaml:"expense"`
}

// Load reads a budget.yaml file from disk. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default() rooted at
// the file's directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.dir = filepath.Dir(path)
		return cfg, nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	limits := validate.DefaultLimits()
	set := categories.Default()
	return &Config{
		Data: DataConfig{
			Path: filepath.Join("data", "transactions.csv"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Limits: LimitsConfig{
			MinAmount:            limits.MinAmount.String(),
			MaxAmount:            limits.MaxAmount.String(),
			DescriptionMaxLength: limits.DescriptionMaxLength,
		},
		Categories: CategoriesConfig{
			Income:  set[model.TypeIncome],
			Expense: set[model.TypeExpense],
		},
		dir: ".",
	}
}

// ApplyEnv overrides fields from the environment. Empty variables are
// ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataPath); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
}

// Validate checks that the limits parse and make sense.
func (c *Config) Validate() error {
	if _, err := c.ValidationLimits(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format %q must be console or json", c.Log.Format)
	}
	return nil
}

// DataPath returns the ledger location, resolving a relative path against
// the config file's directory.
func (c *Config) DataPath() string {
	if filepath.IsAbs(c.Data.Path) {
		return c.Data.Path
	}
	return filepath.Join(c.dir, c.Data.Path)
}

// ValidationLimits converts the limits section to validate.Limits.
func (c *Config) ValidationLimits() (validate.Limits, error) {
	lo, err := decimal.NewFromString(c.Limits.MinAmount)
	if err != nil {
		return validate.Limits{}, fmt.Errorf("limits.min_amount %q: %w", c.Limits.MinAmount, err)
	}
	hi, err := decimal.NewFromString(c.Limits.MaxAmount)
	if err != nil {
		return validate.Limits{}, fmt.Errorf("limits.max_amount %q: %w", c.Limits.MaxAmount, err)
	}
	if !lo.IsPositive() {
		return validate.Limits{}, fmt.Errorf("limits.min_amount must be greater than zero")
	}
	if hi.LessThan(lo) {
		return validate.Limits{}, fmt.Errorf("limits.max_amount %s is below min_amount %s", hi, lo)
	}
	if c.Limits.DescriptionMaxLength < 0 {
		return validate.Limits{}, fmt.Errorf("limits.description_max_length must not be negative")
	}
	return validate.Limits{
		MinAmount:            lo,
		MaxAmount:            hi,
		DescriptionMaxLength: c.Limits.DescriptionMaxLength,
	}, nil
}

// CategorySet returns the recommended categories keyed by type.
func (c *Config) CategorySet() map[model.TransactionType][]string {
	return map[model.TransactionType][]string{
		model.TypeIncome:  c.Categories.Income,
		model.TypeExpense: c.Categories.Expense,
	}
}
