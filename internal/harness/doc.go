// Package harness runs sweep scenarios described in YAML.
//
// A scenario lists the files of an import directory. The harness writes
// them into a temporary directory, plans a sweep and optionally applies
// it, then checks the expected counts and snapshots the result.
//
// # Scenario Format
//
//	name: mixed_export
//	description: "Garmin and Intervals.icu copies of one ride"
//	tolerance_seconds: 5
//	apply: true
//	files:
//	  - name: alice@example.com_100.fit
//	    kind: activity
//	    start: 2024-03-01T07:00:00Z
//	  - name: sleep.fit
//	    kind: health
//	  - name: summary.json
//	    kind: json
//	expect:
//	  orphans: 1
//	  health: 1
//	  deletions: 1
//
// File kinds are activity (requires start), health, corrupt and json.
// Expectation fields that are omitted are not checked.
//
// # Golden Files
//
// RunWithGolden compares the plan lines, and after apply the directory
// tree, against testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
