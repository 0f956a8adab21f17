// Package config provides configuration loading, defaults, and validation
// for the docketcalc engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "DOCKETCALC"

// newViper builds a pre-configured Viper instance with the engine's
// standard settings: YAML file type, DOCKETCALC_ env prefix, automatic env
// binding, and a key replacer that maps "." → "_" so that nested keys like
// "rules.dir" resolve to "DOCKETCALC_RULES_DIR".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only visits keys viper knows about; registering every key
	// as a default makes env-only loading see DOCKETCALC_* variables.
	v.SetDefault("rules.dir", "")
	v.SetDefault("rules.watch", false)
	v.SetDefault("calendars.dir", "")
	v.SetDefault("engine.default_jurisdiction", "")
	v.SetDefault("engine.extensions_file", "")
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output", "")
	v.SetDefault("log.enable_caller", false)
	v.SetDefault("log.enable_stacktrace", false)
	return v
}

// Load reads the YAML file at configPath, merges any DOCKETCALC_*
// environment variable overrides, applies defaults for unset fields, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from DOCKETCALC_* environment
// variables, with no config file required.  This is the preferred loading
// strategy for containerised deployments.
//
// Environment variable naming convention:
//
//	DOCKETCALC_<SECTION>_<FIELD>   e.g.  DOCKETCALC_RULES_DIR, DOCKETCALC_LOG_LEVEL
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct,
// applies defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always
// fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
