package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Extract  ExtractConfig
	Archive  ArchiveConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ExtractConfig holds Gemini settings for bill extraction.
type ExtractConfig struct {
	Model          string
	APIKeyEnv      string
	APIKey         string
	TimeoutSeconds int
}

// ArchiveConfig holds the history-view gate. The PIN is a UX speed-bump, not
// a security control; it lives in plain config on purpose.
type ArchiveConfig struct {
	PIN string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string
	Timezone       string
}

// Load reads configuration from file and env. Env var overrides use prefix
// MERCHANTBOOK_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "merchantbook", "merchantbook.db"))
	v.SetDefault("extract.model", "gemini-3-flash-preview")
	v.SetDefault("extract.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("extract.api_key", "")
	v.SetDefault("extract.timeout_seconds", 30)
	v.SetDefault("archive.pin", "1234")
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.timezone", "Asia/Kolkata")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MERCHANTBOOK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "merchantbook"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MERCHANTBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// APIKey resolves the Gemini key: env var first, then the config value.
func (c ExtractConfig) ResolveAPIKey() string {
	env := strings.TrimSpace(c.APIKeyEnv)
	if env == "" {
		env = "GEMINI_API_KEY"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return strings.TrimSpace(c.APIKey)
}

// Save writes the provided config to disk, creating the config directory if
// needed.
func Save(cfg Config) error {
	path := os.Getenv("MERCHANTBOOK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "merchantbook", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("extract.model", cfg.Extract.Model)
	v.Set("extract.api_key_env", cfg.Extract.APIKeyEnv)
	v.Set("extract.api_key", cfg.Extract.APIKey)
	v.Set("extract.timeout_seconds", cfg.Extract.TimeoutSeconds)
	v.Set("archive.pin", cfg.Archive.PIN)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
