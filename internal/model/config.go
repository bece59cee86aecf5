package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// PollConfig holds scheduler settings.
type PollConfig struct {
	// IntervalSec is how often (in seconds) the poller refreshes every
	// tracked address. Changing it at runtime takes effect immediately.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// ProviderConfig holds per-provider preferences.
type ProviderConfig struct {
	// Default is the registry key preselected in the create-address form.
	Default string `mapstructure:"default" yaml:"default"`

	// PreferredDomains maps a provider key to the domain requested when
	// creating addresses with that provider, for providers that allow
	// domain choice.
	PreferredDomains map[string]string `mapstructure:"preferred_domains" yaml:"preferred_domains"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DataDir holds the SQLite database and log file. Empty means
	// ~/.local/share/tempmail.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	Poll     PollConfig     `mapstructure:"poll" yaml:"poll"`
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tempmail/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tempmail", "config.yaml")
}

// DefaultDataDir returns the default directory for local state.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "tempmail")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		DataDir: DefaultDataDir(),
		Poll: PollConfig{
			IntervalSec: 5,
		},
		Provider: ProviderConfig{
			Default:          "guerrillamail",
			PreferredDomains: map[string]string{},
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("poll.interval_sec", 5)
	v.SetDefault("provider.default", "guerrillamail")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Poll.IntervalSec <= 0 {
		cfg.Poll.IntervalSec = 5
	}
	if cfg.Provider.PreferredDomains == nil {
		cfg.Provider.PreferredDomains = map[string]string{}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("data_dir", cfg.DataDir)
	v.Set("poll", cfg.Poll)
	v.Set("provider", cfg.Provider)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
