// Package config loads tool configuration from an optional .fkorder.yaml
// file and FKORDER_* environment variables. Flags always override what is
// loaded here.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the resolved tool configuration.
type Config struct {
	Source  string `mapstructure:"source"`  // Source database DSN
	Target  string `mapstructure:"target"`  // Target database DSN for --exec
	Schema  string `mapstructure:"schema"`  // Schema to operate on
	Verbose bool   `mapstructure:"verbose"` // Enable detailed progress output
}

// Init wires viper to the config file and environment. Call once from the
// root command before any subcommand runs.
func Init() error {
	viper.SetConfigName(".fkorder")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("FKORDER")
	viper.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys to Unmarshal;
	// each key must be bound explicitly.
	for _, key := range []string{"source", "target", "schema", "verbose"} {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has defaults or flags.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// Load unmarshals the current viper state and applies defaults.
func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Schema == "" {
		cfg.Schema = "public"
	}

	return &cfg, nil
}
