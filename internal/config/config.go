package config

import (
	"errors"
	"fmt"

	"github.com/dfryer1193/alttext/shared/db/sqlite"
	"github.com/spf13/viper"
)

const (
	DefaultPort     = 8080
	DefaultLogLevel = "info"
	envPrefix       = "alttext"
)

type Config struct {
	Port        int    `mapstructure:"port"`
	DBPath      string `mapstructure:"db_path"`
	NonceSecret string `mapstructure:"nonce_secret"`
	UploadsDir  string `mapstructure:"uploads_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogPretty   bool   `mapstructure:"log_pretty"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:     DefaultPort,
		DBPath:   sqlite.NewSQLiteConfig().Path,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from the optional file at path, then from ALTTEXT_* environment
// variables. SQLITE_DB_PATH is honoured for the database location as well.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults := DefaultConfig()

	v.SetDefault("port", defaults.Port)
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("nonce_secret", "")
	v.SetDefault("uploads_dir", "")
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_pretty", false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("db_path", "ALTTEXT_DB_PATH", "SQLITE_DB_PATH"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// RequireSecret reports an error when no nonce secret is configured.
func (c *Config) RequireSecret() error {
	if c.NonceSecret == "" {
		return errors.New("ALTTEXT_NONCE_SECRET is not set")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
