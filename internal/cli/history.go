package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/roach88/fitsweep/internal/store"
	"github.com/roach88/fitsweep/internal/sweep"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent runs from the ledger",
		Long: `List recent clean and convert runs recorded in the ledger, newest first.
With a run id, list the file actions of that run.

Requires --ledger (or "ledger" in the config file).

Example:
  fitsweep history --ledger ./fitsweep.db --limit 5
  fitsweep history --ledger ./fitsweep.db 01912f4e-8c1a-7b4e-9a57-3f2d1c0b9e8d`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(cmd, opts, runID)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of runs to list (0 for all)")

	return cmd
}

type runView struct {
	ID               string                  `json:"id"`
	Command          string                  `json:"command"`
	Dir              string                  `json:"dir"`
	DryRun           bool                    `json:"dry_run"`
	ToleranceSeconds float64                 `json:"tolerance_seconds"`
	Started          time.Time               `json:"started"`
	Finished         *time.Time              `json:"finished,omitempty"`
	Actions          map[sweep.Action]int    `json:"actions"`
	Failures         map[sweep.ErrorKind]int `json:"failures"`
}

func newRunView(r store.Run) runView {
	v := runView{
		ID:               r.ID,
		Command:          r.Command,
		Dir:              r.Dir,
		DryRun:           r.DryRun,
		ToleranceSeconds: r.Tolerance.Seconds(),
		Started:          r.StartedAt,
		Actions:          r.Counters.Actions,
		Failures:         r.Counters.Failures,
	}
	if r.Finished() {
		f := r.FinishedAt
		v.Finished = &f
	}
	return v
}

type historyView []runView

func (h historyView) renderText(w io.Writer, verbose bool) error {
	if len(h) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Command", "Started", "Dry run", "Files", "Failed", "Dir"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for _, r := range h {
		files := 0
		for _, n := range r.Actions {
			files += n
		}
		failed := 0
		for _, n := range r.Failures {
			failed += n
		}
		tw.AppendRow(table.Row{r.ID, r.Command, r.Started.Local().Format(time.DateTime), r.DryRun, files, failed, r.Dir})
	}
	_ = tw.Render()
	return nil
}

type actionView struct {
	Seq    int64  `json:"seq"`
	Path   string `json:"path"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

type runDetailView struct {
	Run     runView      `json:"run"`
	Actions []actionView `json:"actions"`
}

func (d runDetailView) renderText(w io.Writer, verbose bool) error {
	if err := (historyView{d.Run}).renderText(w, verbose); err != nil {
		return err
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Action", "File", "Target", "Error"})
	for _, a := range d.Actions {
		target := a.Target
		if target != "" && !verbose {
			target = filepath.Base(target)
		}
		errText := a.Error
		if a.Kind != "" {
			errText = "[" + a.Kind + "] " + errText
		}
		tw.AppendRow(table.Row{a.Seq, a.Action, filepath.Base(a.Path), target, errText})
	}
	_ = tw.Render()
	return nil
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, runID string) error {
	cfg, err := loadConfig(cmd, opts.RootOptions, nil)
	if err != nil {
		return err
	}
	if cfg.Ledger == "" {
		return NewExitError(ExitCommandError, "no ledger configured: pass --ledger or set ledger in the config file")
	}
	out := newFormatter(cmd, cfg)
	ctx := cmd.Context()

	st, err := store.Open(cfg.Ledger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer st.Close()

	if runID == "" {
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to list runs", err)
		}
		h := make(historyView, 0, len(runs))
		for _, r := range runs {
			h = append(h, newRunView(r))
		}
		return out.Success(h)
	}

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "unknown run", err)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read run", err)
	}
	actions, err := st.ReadActions(ctx, runID)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read actions", err)
	}

	d := runDetailView{Run: newRunView(run), Actions: make([]actionView, 0, len(actions))}
	for _, a := range actions {
		d.Actions = append(d.Actions, actionView{
			Seq:    a.Seq,
			Path:   a.Path,
			Action: string(a.Action),
			Target: a.Target,
			Kind:   string(a.ErrorKind),
			Error:  a.Error,
		})
	}
	return out.Success(d)
}
