// Package config defines all configuration structures for the docketcalc
// engine.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// RulesConfig holds rule-registry settings.
type RulesConfig struct {
	// Dir is the directory of YAML rule documents loaded at startup.
	// Empty means no file-based rules; callers may still register rules
	// programmatically.
	Dir string `mapstructure:"dir"`

	// Watch reloads the rule directory when files change on disk.
	Watch bool `mapstructure:"watch"`
}

// CalendarsConfig holds court-calendar settings.
type CalendarsConfig struct {
	// Dir is an optional directory of YAML calendar documents registered
	// on top of the built-in state and federal calendars.
	Dir string `mapstructure:"dir"`
}

// EngineConfig holds deadline-engine behaviour settings.
type EngineConfig struct {
	// DefaultJurisdiction is used when a request names none.
	DefaultJurisdiction string `mapstructure:"default_jurisdiction"`

	// ExtensionsFile optionally replaces the built-in service-extension
	// tables with a YAML document.
	ExtensionsFile string `mapstructure:"extensions_file"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine.
type Config struct {
	Rules     RulesConfig     `mapstructure:"rules"`
	Calendars CalendarsConfig `mapstructure:"calendars"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Log       LogConfig       `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error
// as fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Engine.DefaultJurisdiction == "" {
		return fmt.Errorf("config: engine.default_jurisdiction is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
