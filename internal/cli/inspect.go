package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/fitsweep/internal/classify"
	"github.com/roach88/fitsweep/internal/fit"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.fit>",
		Short: "Decode a FIT file and list its messages",
		Long: `Decode a FIT file and list every data message with its fields.

Fields holding the invalid pattern are shown as "-". The file's
classification (activity or not) and source are shown first.

Example:
  fitsweep inspect ./export/ride.fit
  fitsweep inspect ./export/ride.fit --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

type fieldView struct {
	Num   byte   `json:"num"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type messageView struct {
	Index  int         `json:"index"`
	Local  byte        `json:"local"`
	Global uint16      `json:"global"`
	Name   string      `json:"name"`
	Fields []fieldView `json:"fields"`
}

type inspectView struct {
	Path      string        `json:"path"`
	Kind      string        `json:"kind"`
	Source    string        `json:"source"`
	Start     *time.Time    `json:"start,omitempty"`
	Profile   uint16        `json:"profile"`
	DataSize  uint32        `json:"data_size"`
	Messages  []messageView `json:"messages"`
	DecodeErr string        `json:"decode_error,omitempty"`
}

func runInspect(cmd *cobra.Command, opts *RootOptions, path string) error {
	cfg, err := loadConfig(cmd, opts, nil)
	if err != nil {
		return err
	}
	out := newFormatter(cmd, cfg)
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read file", err)
	}

	rf, err := classify.New(classify.WithLogger(logger)).Classify(cmd.Context(), path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to classify file", err)
	}

	v := inspectView{
		Path:     path,
		Kind:     rf.Kind.String(),
		Source:   rf.Provenance.Label,
		Messages: []messageView{},
	}
	if rf.Kind == classify.KindActivity {
		start := rf.Start
		v.Start = &start
	}

	h, msgs, decErr := fit.Decode(data)
	v.Profile = h.Profile
	v.DataSize = h.DataSize
	for i, m := range msgs {
		mv := messageView{Index: i, Local: m.Local, Global: uint16(m.Global), Name: m.Global.String()}
		for _, f := range m.Fields {
			value := "-"
			if f.Value.Valid() {
				value = f.Value.String()
			} else if len(f.Raw) > f.Type.Size() && !isInvalid(f) {
				value = fmt.Sprintf("%x", f.Raw)
			}
			mv.Fields = append(mv.Fields, fieldView{Num: f.Num, Type: f.Type.String(), Value: value})
		}
		v.Messages = append(v.Messages, mv)
	}
	if decErr != nil {
		v.DecodeErr = decErr.Error()
	}

	if err := out.Success(v); err != nil {
		return err
	}
	if decErr != nil {
		return WrapExitError(ExitFailure, "file is not a valid FIT file", decErr)
	}
	return nil
}

// isInvalid reports whether an array field is entirely padding.
func isInvalid(f fit.Field) bool {
	for _, b := range f.Raw {
		if b != 0xFF && b != 0x00 {
			return false
		}
	}
	return true
}

func (v inspectView) renderText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "%s\n", v.Path)
	fmt.Fprintf(w, "  kind:    %s\n", v.Kind)
	fmt.Fprintf(w, "  source:  %s\n", v.Source)
	if v.Start != nil {
		fmt.Fprintf(w, "  start:   %s\n", v.Start.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "  profile: %d, %d data bytes\n\n", v.Profile, v.DataSize)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Local", "Message", "Fields"})
	for _, m := range v.Messages {
		parts := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			parts[i] = fmt.Sprintf("%d=%s", f.Num, f.Value)
			if verbose {
				parts[i] += "(" + f.Type + ")"
			}
		}
		tw.AppendRow(table.Row{m.Index, m.Local, fmt.Sprintf("%s [%d]", m.Name, m.Global), strings.Join(parts, " ")})
	}
	_ = tw.Render()

	if v.DecodeErr != "" {
		fmt.Fprintf(w, "\ndecode stopped: %s\n", v.DecodeErr)
	}
	return nil
}
