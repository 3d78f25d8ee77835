package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Addr     string `mapstructure:"addr"`
	DefsPath string `mapstructure:"defsPath"`
	LogLevel string `mapstructure:"logLevel"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Addr:     ":8080",
		DefsPath: "configs/defs.json",
		LogLevel: "info",
	}
}

// LoadAppConfig reads the server config JSON, falling back to defaults when
// the file does not exist.
func LoadAppConfig(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if path == "" {
		return cfg, nil
	}
	cleanPath := filepath.Clean(path)
	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("defsPath", cfg.DefsPath)
	v.SetDefault("logLevel", cfg.LogLevel)
	v.SetConfigFile(cleanPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read server config %q: %w", cleanPath, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse server config %q: %w", cleanPath, err)
	}
	return cfg, nil
}

// AppConfigOverrides are optional command-line overrides applied on top of
// the config file.
type AppConfigOverrides struct {
	Addr     *string
	DefsPath *string
	LogLevel *string
}

func (o AppConfigOverrides) Apply(base AppConfig) AppConfig {
	if o.Addr != nil {
		base.Addr = *o.Addr
	}
	if o.DefsPath != nil {
		base.DefsPath = *o.DefsPath
	}
	if o.LogLevel != nil {
		base.LogLevel = *o.LogLevel
	}
	return base
}
