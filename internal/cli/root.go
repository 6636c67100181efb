package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/fitsweep/internal/config"
	"github.com/roach88/fitsweep/internal/sweep"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile  string
	Verbose     bool
	Format      string // "json" | "text"
	Ledger      string
	MetricsFile string

	// RunIDs and Now override run identity and time (for testing).
	RunIDs sweep.RunIDGenerator
	Now    func() time.Time
	// IsTerminal reports whether the prompt input is interactive. If nil,
	// stdin is checked with isatty.
	IsTerminal func(io.Reader) bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// globalKeys maps persistent flags to configuration paths.
var globalKeys = map[string]string{
	"format":       "format",
	"verbose":      "verbose",
	"ledger":       "ledger",
	"metrics-file": "metrics_file",
}

// NewRootCommand creates the root command for the fitsweep CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fitsweep",
		Short: "fitsweep - tidy activity export folders",
		Long: `Tidy a folder of FIT and JSON activity exports before a bulk import.

clean deletes JSON sidecars, quarantines orphan JSON exports, moves health
recordings aside and removes duplicate activities. convert turns JSON
exports into FIT activity files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file (default $"+config.PathEnvVar+")")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Ledger, "ledger", "", "path to SQLite run ledger")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig layers explicitly set flags over file and environment.
// keys maps the command's own flags to configuration paths.
func loadConfig(cmd *cobra.Command, opts *RootOptions, keys map[string]string) (*config.Config, error) {
	overrides := map[string]any{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			key, ok = globalKeys[f.Name]
		}
		if !ok {
			return
		}
		overrides[key] = flagValue(cmd.Flags(), f)
	})

	cfg, err := config.Load(config.LoadOptions{File: opts.ConfigFile, Overrides: overrides})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func flagValue(fs *pflag.FlagSet, f *pflag.Flag) any {
	switch f.Value.Type() {
	case "bool":
		v, _ := fs.GetBool(f.Name)
		return v
	case "float64":
		v, _ := fs.GetFloat64(f.Name)
		return v
	default:
		return f.Value.String()
	}
}

// newLogger writes text logs to w; debug level with verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFormatter(cmd *cobra.Command, cfg *config.Config) *OutputFormatter {
	return &OutputFormatter{
		Format:    cfg.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   cfg.Verbose,
	}
}

func (o *RootOptions) terminal(r io.Reader) bool {
	if o.IsTerminal != nil {
		return o.IsTerminal(r)
	}
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (o *RootOptions) runIDs() sweep.RunIDGenerator {
	if o.RunIDs != nil {
		return o.RunIDs
	}
	return sweep.UUIDv7Generator{}
}

func (o *RootOptions) now() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}
