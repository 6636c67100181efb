// Package janitor separates JSON sidecars, which duplicate a binary file,
// from orphan JSON exports that have no binary counterpart.
package janitor

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Stem returns the folded comparison key for path: the base name without
// its extension, NFC-normalized and case-folded.
func Stem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return cases.Fold().String(norm.NFC.String(base))
}

type stemKey struct {
	dir  string
	stem string
}

func key(path string) stemKey {
	return stemKey{dir: filepath.Clean(filepath.Dir(path)), stem: Stem(path)}
}

// Partition splits jsonFiles into sidecars, which share a directory and a
// case-insensitive stem with one of binaryFiles, and orphans. Input order
// is preserved in both results.
func Partition(jsonFiles, binaryFiles []string) (sidecars, orphans []string) {
	binaries := make(map[stemKey]struct{}, len(binaryFiles))
	for _, b := range binaryFiles {
		binaries[key(b)] = struct{}{}
	}

	for _, j := range jsonFiles {
		if _, ok := binaries[key(j)]; ok {
			sidecars = append(sidecars, j)
		} else {
			orphans = append(orphans, j)
		}
	}
	return sidecars, orphans
}
