package config

// Default values applied to any field left unset by the config file and
// environment overrides.
const (
	DefaultJurisdiction = "state"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultLogOutput    = "stderr"
)

// ApplyDefaults fills unset fields with engine defaults.  Zero values that
// are legitimate settings (booleans, empty optional paths) are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Engine.DefaultJurisdiction == "" {
		cfg.Engine.DefaultJurisdiction = DefaultJurisdiction
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}
}
