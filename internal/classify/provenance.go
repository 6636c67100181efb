package classify

import (
	"path/filepath"
	"strings"
)

// Provenance labels the likely origin of a file. Lower Priority is
// preferred when duplicates are resolved.
type Provenance struct {
	Label    string
	Priority int
}

var (
	GarminExport  = Provenance{Label: "Garmin Export", Priority: 1}
	IntervalsICU  = Provenance{Label: "Intervals.icu", Priority: 2}
	UnknownSource = Provenance{Label: "Unknown", Priority: 3}
)

type provenanceRule struct {
	match func(name string) bool
	prov  Provenance
}

// Rules are checked in order; the first match wins.
var provenanceRules = []provenanceRule{
	// Garmin bulk exports are prefixed with the account e-mail.
	{match: func(name string) bool { return strings.Contains(name, "@") }, prov: GarminExport},
	// Intervals.icu names start with a YYYY-MM-DD date.
	{match: hasDatePrefix, prov: IntervalsICU},
}

func hasDatePrefix(name string) bool {
	r := []rune(name)
	return len(r) > 10 && r[4] == '-' && r[7] == '-'
}

// ClassifyProvenance applies the filename rules to the base name of path.
func ClassifyProvenance(path string) Provenance {
	name := filepath.Base(path)
	for _, rule := range provenanceRules {
		if rule.match(name) {
			return rule.prov
		}
	}
	return UnknownSource
}
