package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fitsweep/internal/classify"
	"github.com/roach88/fitsweep/internal/sweep"
)

// CleanOptions holds flags for the clean command.
type CleanOptions struct {
	*RootOptions
	Dir           string
	Tolerance     float64
	QuarantineDir string
	HealthDir     string
	DryRun        bool
	Yes           bool
}

var cleanKeys = map[string]string{
	"dir":            "dir",
	"tolerance":      "tolerance_seconds",
	"quarantine-dir": "quarantine_dir",
	"health-dir":     "health_dir",
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove sidecars, health files and duplicate activities",
		Long: `Tidy an export directory before a bulk import.

JSON files with a FIT file of the same name are deleted. JSON files without
one are moved to the quarantine folder with a README.txt listing them. FIT
files without an activity session are moved to the health folder. Activities
starting within the tolerance of each other are duplicates: the copy from the
preferred source is kept and the rest are deleted.

Nothing is changed without confirmation. Use --dry-run to only report.

Example:
  fitsweep clean --dir ./export --dry-run
  fitsweep clean --dir ./export --tolerance 10 --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "export directory to clean")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", sweep.DefaultTolerance.Seconds(), "duplicate start time tolerance in seconds")
	cmd.Flags().StringVar(&opts.QuarantineDir, "quarantine-dir", sweep.DefaultQuarantineDir, "folder for orphan JSON files")
	cmd.Flags().StringVar(&opts.HealthDir, "health-dir", sweep.DefaultHealthDir, "folder for health files")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without modifying files")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runClean(cmd *cobra.Command, opts *CleanOptions) error {
	cfg, err := loadConfig(cmd, opts.RootOptions, cleanKeys)
	if err != nil {
		return err
	}
	out := newFormatter(cmd, cfg)
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	out.VerboseLog("Scanning %s (tolerance %s)", cfg.Dir, cfg.Tolerance())

	ctx, cancel := signalContext(cmd)
	defer cancel()

	planner := sweep.NewPlanner(sweep.Options{
		Dir:           cfg.Dir,
		Tolerance:     cfg.Tolerance(),
		QuarantineDir: cfg.QuarantineDir,
		HealthDir:     cfg.HealthDir,
		Logger:        logger,
		Classifier:    classify.New(classify.WithLogger(logger)),
		RunIDs:        opts.runIDs(),
		Now:           opts.now(),
	})

	plan, err := planner.Plan(ctx)
	if err != nil {
		return runError("failed to scan directory", err)
	}
	view := newPlanView(plan)

	if opts.DryRun {
		r := planner.Preview(plan)
		if err := recordRun(ctx, cfg, r, cfg.Tolerance(), logger); err != nil {
			return err
		}
		if out.Format == "json" {
			return out.successWithRun(r.RunID, map[string]any{"plan": view, "report": newReportView(r)})
		}
		if err := view.renderText(out.Writer, out.Verbose); err != nil {
			return err
		}
		fmt.Fprintln(out.Writer, "Dry run complete. No files were modified.")
		fmt.Fprintln(out.Writer, "Run without --dry-run to apply these changes.")
		return nil
	}

	if out.Format != "json" {
		if err := view.renderText(out.Writer, out.Verbose); err != nil {
			return err
		}
	}

	if plan.Empty() {
		if out.Format == "json" {
			return out.Success(map[string]any{"plan": view, "message": "nothing to do"})
		}
		fmt.Fprintln(out.Writer, "Nothing to do!")
		return nil
	}

	if !opts.Yes {
		in := cmd.InOrStdin()
		if !opts.terminal(in) {
			return NewExitError(ExitFailure, "aborted: input is not a terminal; rerun with --yes to apply without confirmation")
		}
		ok, err := confirm(in, out.GetErrWriter())
		if err != nil {
			return WrapExitError(ExitFailure, "aborted", err)
		}
		if !ok {
			fmt.Fprintln(out.GetErrWriter(), "Aborted. No files were modified.")
			return NewExitError(ExitFailure, "aborted")
		}
	}

	r, applyErr := planner.Apply(ctx, plan)
	if err := recordRun(ctx, cfg, r, cfg.Tolerance(), logger); err != nil {
		return err
	}
	if applyErr != nil {
		_ = out.successWithRun(r.RunID, newReportView(r))
		return runError("clean interrupted", applyErr)
	}
	return out.successWithRun(r.RunID, newReportView(r))
}

// confirm asks on w and reads one line from r. Only "yes" proceeds.
func confirm(r io.Reader, w io.Writer) (bool, error) {
	fmt.Fprint(w, "Do you want to proceed? (yes/no): ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(line)) == "yes", nil
}
