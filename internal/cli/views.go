package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/roach88/fitsweep/internal/sweep"
)

// listLimit caps each plan section in text output unless verbose.
const listLimit = 10

type outcomeView struct {
	Path   string `json:"path"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	Detail string `json:"detail,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

type reportView struct {
	RunID    string                  `json:"run_id"`
	Command  string                  `json:"command"`
	Dir      string                  `json:"dir"`
	DryRun   bool                    `json:"dry_run"`
	Started  time.Time               `json:"started"`
	Finished time.Time               `json:"finished"`
	Actions  map[sweep.Action]int    `json:"actions"`
	Failures map[sweep.ErrorKind]int `json:"failures"`
	Outcomes []outcomeView           `json:"outcomes"`
}

func newReportView(r *sweep.Report) reportView {
	v := reportView{
		RunID:    r.RunID,
		Command:  r.Command,
		Dir:      r.Dir,
		DryRun:   r.DryRun,
		Started:  r.Started,
		Finished: r.Finished,
		Actions:  r.Counters.Actions,
		Failures: r.Counters.Failures,
		Outcomes: make([]outcomeView, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		ov := outcomeView{
			Path:   o.Path,
			Action: string(o.Action),
			Target: o.Target,
			Detail: o.Detail,
			Kind:   string(o.Kind),
		}
		if o.Err != nil {
			ov.Error = o.Err.Error()
		}
		v.Outcomes = append(v.Outcomes, ov)
	}
	return v
}

func (v reportView) renderText(w io.Writer, verbose bool) error {
	if verbose {
		for _, o := range v.Outcomes {
			if o.Error != "" {
				continue
			}
			line := fmt.Sprintf("  %-16s %s", o.Action, filepath.Base(o.Path))
			if o.Target != "" {
				line += " -> " + o.Target
			}
			fmt.Fprintln(w, line)
		}
	}

	var failed []outcomeView
	for _, o := range v.Outcomes {
		if o.Error != "" {
			failed = append(failed, o)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "\n%d file(s) failed:\n", len(failed))
		for _, o := range failed {
			fmt.Fprintf(w, "  [%s] %s\n", o.Kind, o.Error)
		}
	}

	// The run id is printed outside the table so it is never wrapped.
	fmt.Fprintf(w, "%s run %s\n", v.Command, v.RunID)
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Result", "Files"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	for _, a := range sortedKeys(v.Actions) {
		tw.AppendRow(table.Row{a, v.Actions[sweep.Action(a)]})
	}
	for _, k := range sortedKeys(v.Failures) {
		tw.AppendRow(table.Row{"failed: " + k, v.Failures[sweep.ErrorKind(k)]})
	}
	if len(v.Actions) == 0 && len(v.Failures) == 0 {
		tw.AppendRow(table.Row{"(no files)", 0})
	}
	_ = tw.Render()

	if v.DryRun {
		fmt.Fprintln(w, "Dry run complete. No files were modified.")
	}
	return nil
}

func sortedKeys[K ~string](m map[K]int) []string {
	out := make([]string, 0, len(m))
	for k, n := range m {
		if n > 0 {
			out = append(out, string(k))
		}
	}
	slices.Sort(out)
	return out
}

type memberView struct {
	Path  string    `json:"path"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
}

type groupView struct {
	Anchor time.Time    `json:"anchor"`
	Keep   memberView   `json:"keep"`
	Delete []memberView `json:"delete"`
}

type planView struct {
	Dir              string      `json:"dir"`
	QuarantineDir    string      `json:"quarantine_dir"`
	HealthDir        string      `json:"health_dir"`
	ToleranceSeconds float64     `json:"tolerance_seconds"`
	Sidecars         []string    `json:"sidecars"`
	Orphans          []string    `json:"orphans"`
	Health           []string    `json:"health"`
	Groups           []groupView `json:"groups"`
	Unreadable       []string    `json:"unreadable,omitempty"`
	Undecodable      []string    `json:"undecodable,omitempty"`
	ActivitiesKept   int         `json:"activities_kept"`
}

func newPlanView(p *sweep.Plan) planView {
	v := planView{
		Dir:              p.Dir,
		QuarantineDir:    p.QuarantineDir,
		HealthDir:        p.HealthDir,
		ToleranceSeconds: p.Tolerance.Seconds(),
		Sidecars:         nonNil(p.Sidecars),
		Orphans:          nonNil(p.Orphans),
		Health:           []string{},
		Groups:           []groupView{},
		ActivitiesKept:   len(p.Survivors()),
	}
	for _, h := range p.Health {
		v.Health = append(v.Health, h.Path)
	}
	for _, g := range p.Groups {
		keep := g.Keep()
		gv := groupView{
			Anchor: g.Anchor,
			Keep:   memberView{Path: keep.Path, Label: keep.Label, Start: keep.Start},
		}
		for _, d := range g.Drop() {
			gv.Delete = append(gv.Delete, memberView{Path: d.Path, Label: d.Label, Start: d.Start})
		}
		v.Groups = append(v.Groups, gv)
	}
	for _, u := range p.Unreadable {
		v.Unreadable = append(v.Unreadable, u.Path)
	}
	for _, u := range p.Undecodable {
		v.Undecodable = append(v.Undecodable, u.Path)
	}
	return v
}

func (v planView) deletions() int {
	n := 0
	for _, g := range v.Groups {
		n += len(g.Delete)
	}
	return n
}

func (v planView) renderText(w io.Writer, verbose bool) error {
	rule := "======================================================================"
	section := func(title string, paths []string) {
		if len(paths) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
		limit := len(paths)
		if !verbose && limit > listLimit {
			limit = listLimit
		}
		for _, p := range paths[:limit] {
			fmt.Fprintf(w, "  %s\n", filepath.Base(p))
		}
		if limit < len(paths) {
			fmt.Fprintf(w, "  ... and %d more\n", len(paths)-limit)
		}
	}

	section("JSON sidecar files to delete (matching FIT files exist):", v.Sidecars)
	section(fmt.Sprintf("Orphan JSON files to move to %s/ (no matching FIT):", filepath.Base(v.QuarantineDir)), v.Orphans)
	section(fmt.Sprintf("Health/monitoring files to move to %s/:", filepath.Base(v.HealthDir)), v.Health)
	section("Files that could not be read:", v.Unreadable)
	section("FIT files that could not be decoded (moved with health files):", v.Undecodable)

	if len(v.Groups) == 0 {
		fmt.Fprintln(w, "\nNo duplicate activity files found!")
	} else {
		fmt.Fprintf(w, "\n%s\nFound %d group(s) of duplicate activities:\n%s\n", rule, len(v.Groups), rule)
		for i, g := range v.Groups {
			fmt.Fprintf(w, "\nGroup %d - start %s\n", i+1, g.Anchor.UTC().Format(time.RFC3339))
			fmt.Fprintf(w, "  KEEP:   %s (%s)\n", filepath.Base(g.Keep.Path), g.Keep.Label)
			for _, d := range g.Delete {
				fmt.Fprintf(w, "  DELETE: %s (%s)\n", filepath.Base(d.Path), d.Label)
			}
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Summary")
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	tw.AppendRows([]table.Row{
		{"JSON sidecar files to delete", len(v.Sidecars)},
		{"Orphan JSON files to move", len(v.Orphans)},
		{"Health files to move", len(v.Health)},
		{"Duplicate activities to keep", len(v.Groups)},
		{"Duplicate activities to delete", v.deletions()},
		{"Activities left after cleaning", v.ActivitiesKept},
	})
	fmt.Fprintln(w)
	_ = tw.Render()
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
