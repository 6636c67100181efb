package janitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ManifestName is the file written into the quarantine directory.
const ManifestName = "README.txt"

const manifestHeader = `Unsupported JSON Activity Files
===============================

These JSON files are activity exports with no matching FIT file, so they
cannot be imported as they are.

They usually fall into two groups:

1. Indoor or non-GPS activities (strength training, indoor cycling,
   treadmill runs) that the exporting service did not write as FIT.
2. Duplicates of activities that were exported again under a different id.
   Check for an imported activity at the same date and time first.

How to import them
------------------

Option 1: convert them (recommended)
- Run: fitsweep convert --input-dir <this folder> --output-dir <import folder>
- Heart rate, cadence, power, temperature and GPS tracks are kept.
- Use --dry-run first to preview.

Option 2: re-export from the original source
- Export the activities again from the service they came from, choosing FIT
  or the original file format if it is offered.

Files in this folder
--------------------
`

// Manifest renders the quarantine README listing names, sorted.
// Only base names are listed.
func Manifest(names []string) string {
	sorted := make([]string, len(names))
	for i, n := range names {
		sorted[i] = filepath.Base(n)
	}
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(manifestHeader)
	for _, n := range sorted {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return b.String()
}

// WriteManifest writes the manifest for names into dir, creating dir if
// needed. It returns the manifest path.
func WriteManifest(dir string, names []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create quarantine dir: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(Manifest(names)), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
