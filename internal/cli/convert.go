package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fitsweep/internal/convert"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	InputDir  string
	OutputDir string
	DryRun    bool
	Overwrite bool
}

var convertKeys = map[string]string{
	"input-dir":  "convert.input_dir",
	"output-dir": "convert.output_dir",
	"overwrite":  "convert.overwrite",
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert JSON activity exports to FIT files",
		Long: `Convert every JSON activity export in the input directory to a FIT
activity file in the output directory.

README and summarizedActivities files are skipped. Existing outputs are
kept unless --overwrite is given.

Example:
  fitsweep convert --input-dir ./export/unsupported_json_format --output-dir ./export
  fitsweep convert --input-dir ./json --output-dir ./fit --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.InputDir, "input-dir", ".", "directory of JSON exports")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", ".", "directory for FIT files")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would be converted without writing")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace existing FIT files")

	return cmd
}

func runConvert(cmd *cobra.Command, opts *ConvertOptions) error {
	cfg, err := loadConfig(cmd, opts.RootOptions, convertKeys)
	if err != nil {
		return err
	}
	out := newFormatter(cmd, cfg)
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	out.VerboseLog("Converting %s -> %s", cfg.Convert.InputDir, cfg.Convert.OutputDir)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := convert.New(convert.Options{
		InputDir:  cfg.Convert.InputDir,
		OutputDir: cfg.Convert.OutputDir,
		DryRun:    opts.DryRun,
		Overwrite: cfg.Convert.Overwrite,
		Device:    cfg.Convert.Device,
		Logger:    logger,
		RunIDs:    opts.runIDs(),
		Now:       opts.now(),
	})

	r, runErr := c.Run(ctx)
	if r == nil {
		return runError("conversion failed", runErr)
	}
	if err := recordRun(ctx, cfg, r, 0, logger); err != nil {
		return err
	}
	if runErr != nil {
		_ = out.successWithRun(r.RunID, newReportView(r))
		return runError("conversion interrupted", runErr)
	}
	return out.successWithRun(r.RunID, newReportView(r))
}
