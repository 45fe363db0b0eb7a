// Package config loads client configuration from environment variables and
// an optional config file. Values are read by viper; environment variables
// use the CHAT_ prefix (CHAT_BASE_URL, CHAT_TOKEN, ...).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the client needs to reach the QA backend. UserID
// and Token come from whatever authenticated the user; an empty Token means
// requests go out without an Authorization header.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	UserID  int64         `mapstructure:"user_id"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Authenticated reports whether a user identity is configured. Sending
// questions requires one.
func (c Config) Authenticated() bool {
	return c.UserID != 0
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables override file values.
func Load(configFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("token", "")
	v.SetDefault("user_id", 0)
	v.SetDefault("timeout", 60*time.Second)

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("base_url must not be empty")
	}
	return cfg, nil
}
