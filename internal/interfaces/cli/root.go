// Package cli implements the docketcalc command-line interface: global
// flag registration, configuration loading, logger initialisation, engine
// wiring, and the calculate / evaluate / cascade / holidays subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praxis-legal/docketcalc/internal/application/docket"
	"github.com/praxis-legal/docketcalc/internal/config"
	"github.com/praxis-legal/docketcalc/internal/domain/calendar"
	"github.com/praxis-legal/docketcalc/internal/domain/rules"
	"github.com/praxis-legal/docketcalc/internal/infrastructure/monitoring/logging"
	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
}

// CLIContext carries initialised dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Calendars    *calendar.Registry
	Rules        *rules.Registry
	Calculator   docket.Calculator
	Evaluator    docket.Evaluator
	Cascade      docket.Cascade
	OutputFormat string
	Verbose      bool

	// StopRuleWatch releases the rule-directory watcher when rules.watch
	// is enabled; nil otherwise.
	StopRuleWatch func() error
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "docketcalc",
		Short: "docketcalc — court deadline calculation and dependency cascade engine",
		Long: "docketcalc computes litigation deadlines with full audit trails:\n" +
			"calendar/court-day arithmetic over jurisdiction holiday calendars,\n" +
			"service-method extensions, trigger-driven deadline chains, and\n" +
			"cascade previews when an upstream date moves.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil || cliCtx.StopRuleWatch == nil {
				return nil
			}
			return cliCtx.StopRuleWatch()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./docketcalc.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(
		newCalculateCmd(),
		newEvaluateCmd(),
		newCascadeCmd(),
		newHolidaysCmd(),
	)

	return cmd
}

// persistentPreRun initialises config, logger, registries, and services,
// then stores the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	// Command results go to stdout; logs stay on stderr.
	cfg.Log.Output = "stderr"

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	calendars := calendar.NewRegistry()
	if cfg.Calendars.Dir != "" {
		if err := calendars.LoadDir(cfg.Calendars.Dir); err != nil {
			return fmt.Errorf("loading calendars from %s: %w", cfg.Calendars.Dir, err)
		}
	}

	ruleReg := rules.NewRegistry()
	if cfg.Rules.Dir != "" {
		if err := ruleReg.LoadDir(cfg.Rules.Dir); err != nil {
			return fmt.Errorf("loading rules from %s: %w", cfg.Rules.Dir, err)
		}
	}

	extensions := docket.DefaultExtensionTable()
	rollCites := docket.DefaultRollCitations()
	if cfg.Engine.ExtensionsFile != "" {
		extensions, rollCites, err = docket.LoadExtensionFile(cfg.Engine.ExtensionsFile)
		if err != nil {
			return fmt.Errorf("loading extension table from %s: %w", cfg.Engine.ExtensionsFile, err)
		}
	}

	// Must start after all fallible initialisation; an error returned
	// below this point would leak the watcher.
	var stopRuleWatch func() error
	if cfg.Rules.Watch && cfg.Rules.Dir != "" {
		dir := cfg.Rules.Dir
		stopRuleWatch, err = ruleReg.Watch(dir, func(reloadErr error) {
			if reloadErr != nil {
				logger.Warn("rule reload failed; keeping previous rules",
					logging.String("dir", dir), logging.Err(reloadErr))
				return
			}
			logger.Info("rule directory reloaded", logging.String("dir", dir))
		})
		if err != nil {
			return fmt.Errorf("watching rules dir %s: %w", dir, err)
		}
	}

	svcLog := serviceLogger{l: logger.Named("engine")}
	calculator := docket.NewCalculator(calendars, extensions, rollCites, svcLog)

	cliCtx := &CLIContext{
		Config:        cfg,
		Logger:        logger,
		Calendars:     calendars,
		Rules:         ruleReg,
		Calculator:    calculator,
		Evaluator:     docket.NewEvaluator(ruleReg, calculator, svcLog),
		Cascade:       docket.NewCascade(calendars, svcLog),
		OutputFormat:  opts.OutputFormat,
		Verbose:       opts.Verbose,
		StopRuleWatch: stopRuleWatch,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flag > search paths > env.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./docketcalc.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".docketcalc", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/docketcalc/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	// No config file found; env vars and defaults still apply.
	return config.LoadFromEnv()
}

// GetCLIContext extracts the CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// PrintResult outputs data in the format selected by the global -o flag.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		// Fallback to JSON if context unavailable.
		return printJSON(cmd, data)
	}

	switch strings.ToLower(cliCtx.OutputFormat) {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// printTable outputs data as a table if it provides headers and rows,
// otherwise falls back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	type tableProvider interface {
		TableHeaders() []string
		TableRows() [][]string
	}
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.  Engine errors
// carry typed codes; the code's operator-facing description is appended
// except for validation-family errors, whose messages already name the
// offending input.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || errors.IsValidation(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s (%s)\n", err.Error(), errors.Describe(code))
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(padRight(h, colWidths[i]))
	}
	sb.WriteString("\n")
	for i, w := range colWidths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i := 0; i < len(headers); i++ {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ─────────────────────────────────────────────────────────────────────────────
// Service logger adapter
// ─────────────────────────────────────────────────────────────────────────────

// serviceLogger adapts the typed logging.Logger to the loose key/value
// contract the application services expect.
type serviceLogger struct {
	l logging.Logger
}

func kvFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, logging.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (s serviceLogger) Info(msg string, kv ...interface{})  { s.l.Info(msg, kvFields(kv)...) }
func (s serviceLogger) Warn(msg string, kv ...interface{})  { s.l.Warn(msg, kvFields(kv)...) }
func (s serviceLogger) Error(msg string, kv ...interface{}) { s.l.Error(msg, kvFields(kv)...) }
func (s serviceLogger) Debug(msg string, kv ...interface{}) { s.l.Debug(msg, kvFields(kv)...) }
