// Package config loads the pipeline configuration from config.yaml,
// falling back to catalog defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
	"gopkg.in/yaml.v3"
)

// Default file locations and table names.
const (
	DefaultConfigPath = "config.yaml"
	DefaultStorePath  = "seo_master.db"
	DefaultLedgerPath = "runs.db"

	DefaultGSCTable    = "gsc_data_daily"
	DefaultGA4Table    = "ga4_data_daily"
	DefaultOutputTable = "analysis_raw"

	DefaultWindowDays   = 7
	DefaultCadenceDays  = 28
	DefaultTelegramAPI  = "https://api.telegram.org"
	DefaultTokenEnv     = "TELEGRAM_BOT_TOKEN"
	DefaultChatIDEnv    = "TELEGRAM_CHAT_ID"
	DefaultAnchorEnv    = "ANCHOR_TIMESTAMP_UTC"
)

// Config is the full pipeline configuration.
type Config struct {
	Store      StoreConfig               `yaml:"store"`
	Tables     TablesConfig              `yaml:"tables"`
	WindowDays int                       `yaml:"window_days"`
	RunLedger  string                    `yaml:"run_ledger"`
	Metrics    map[string]MetricOverride `yaml:"metrics"`
	Notify     NotifyConfig              `yaml:"notify"`
	Schedule   ScheduleConfig            `yaml:"schedule"`
}

// StoreConfig selects the tabular store backend.
type StoreConfig struct {
	// Backend is one of: sqlite | csv.
	Backend string `yaml:"backend"`

	// Path is the sqlite database file, or the directory of CSV tables.
	Path string `yaml:"path"`
}

// TablesConfig names the two source tables and the destination table.
type TablesConfig struct {
	GSC    string `yaml:"gsc"`
	GA4    string `yaml:"ga4"`
	Output string `yaml:"output"`
}

// MetricOverride tweaks the sanitization policy of one catalog metric.
// Nil fields keep the catalog default.
type MetricOverride struct {
	MinBaseline     *float64 `yaml:"min_baseline"`
	MaxAbsVariation *float64 `yaml:"max_abs_variation"`
	Clamp           *float64 `yaml:"clamp"`
	Multiplier      *float64 `yaml:"multiplier"`
	Label           *string  `yaml:"label"`
}

// NotifyConfig configures the Telegram run-summary notifier. The token and
// chat id are resolved from the environment, never stored in the file.
type NotifyConfig struct {
	BaseURL    string `yaml:"base_url"`
	TokenEnv   string `yaml:"token_env"`
	ChatIDEnv  string `yaml:"chat_id_env"`
}

// Token returns the bot token resolved from the environment.
func (n NotifyConfig) Token() string { return os.Getenv(n.TokenEnv) }

// ChatID returns the destination chat resolved from the environment.
func (n NotifyConfig) ChatID() string { return os.Getenv(n.ChatIDEnv) }

// ScheduleConfig configures the external run-cadence gate.
type ScheduleConfig struct {
	AnchorEnv   string `yaml:"anchor_env"`
	CadenceDays int    `yaml:"cadence_days"`
}

// Default returns the configuration used when no config.yaml exists.
func Default() Config {
	return Config{
		Store:      StoreConfig{Backend: "sqlite", Path: DefaultStorePath},
		Tables:     TablesConfig{GSC: DefaultGSCTable, GA4: DefaultGA4Table, Output: DefaultOutputTable},
		WindowDays: DefaultWindowDays,
		RunLedger:  DefaultLedgerPath,
		Notify: NotifyConfig{
			BaseURL:   DefaultTelegramAPI,
			TokenEnv:  DefaultTokenEnv,
			ChatIDEnv: DefaultChatIDEnv,
		},
		Schedule: ScheduleConfig{
			AnchorEnv:   DefaultAnchorEnv,
			CadenceDays: DefaultCadenceDays,
		},
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// at the default path is not an error; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigPath {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.WindowDays < 1 {
		return fmt.Errorf("window_days must be at least 1, got %d", c.WindowDays)
	}
	if c.Tables.GSC == "" || c.Tables.GA4 == "" || c.Tables.Output == "" {
		return fmt.Errorf("tables.gsc, tables.ga4 and tables.output must all be set")
	}
	for key := range c.Metrics {
		if !knownMetric(key) {
			return fmt.Errorf("unknown metric in config: %s", key)
		}
	}
	return nil
}

func knownMetric(key string) bool {
	for _, m := range model.Catalog() {
		if m.Key == key {
			return true
		}
	}
	return false
}

// MetricSpecs returns the metric catalog with config overrides applied, in
// output column order.
func (c Config) MetricSpecs() []model.MetricSpec {
	specs := model.Catalog()
	for i, spec := range specs {
		ov, ok := c.Metrics[spec.Key]
		if !ok {
			continue
		}
		if ov.MinBaseline != nil {
			specs[i].MinBaseline = *ov.MinBaseline
		}
		if ov.MaxAbsVariation != nil {
			specs[i].MaxAbsVariation = *ov.MaxAbsVariation
		}
		if ov.Clamp != nil {
			specs[i].Clamp = *ov.Clamp
		}
		if ov.Multiplier != nil {
			specs[i].Multiplier = *ov.Multiplier
		}
		if ov.Label != nil {
			specs[i].Label = *ov.Label
		}
	}
	return specs
}
