package harness

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as stable text: the plan lines and, when the
// plan was applied, the resulting directory tree.
func Snapshot(s *Scenario, r *Result) ([]byte, error) {
	var buf strings.Builder
	buf.WriteString("scenario: " + s.Name + "\n")
	buf.WriteString("plan:\n")
	for _, l := range r.Plan.Lines() {
		buf.WriteString("  " + l + "\n")
	}

	if r.Report != nil {
		tree, err := listTree(r.Dir)
		if err != nil {
			return nil, err
		}
		buf.WriteString("after:\n")
		for _, p := range tree {
			buf.WriteString("  " + p + "\n")
		}
	}
	return []byte(buf.String()), nil
}

// listTree returns every path under root, relative and slash separated,
// in lexical walk order. Directories end in "/".
func listTree(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

// RunWithGolden runs the scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t, scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)
	return result, nil
}
