// Package dedupe groups activity files recorded at the same moment and
// picks one survivor per group.
//
// Grouping is anchor-relative: each group is seeded by the earliest
// unvisited file, and a file joins when its start time is within the
// tolerance of that anchor. Membership is not transitive, so a chain of
// files each close to its neighbour can split across groups.
package dedupe

import (
	"sort"
	"time"
)

// Candidate is an activity file eligible for duplicate resolution.
type Candidate struct {
	Path  string
	Start time.Time
	// Label names the provenance for reports.
	Label string
	// Priority ranks provenance; lower is preferred.
	Priority int
}

// Group is a set of candidates within tolerance of Anchor.
type Group struct {
	Anchor time.Time
	// Members are sorted by priority; Members[0] is kept.
	Members []Candidate
}

// Keep returns the survivor.
func (g Group) Keep() Candidate { return g.Members[0] }

// Drop returns the members marked for deletion.
func (g Group) Drop() []Candidate { return g.Members[1:] }

// Resolve groups candidates whose start times are within tolerance of a
// group anchor, inclusive. Groups of one are discarded. The input slice
// is not modified.
func Resolve(candidates []Candidate, tolerance time.Duration) []Group {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	visited := make([]bool, len(sorted))
	var groups []Group
	for i, anchor := range sorted {
		if visited[i] {
			continue
		}
		visited[i] = true
		members := []Candidate{anchor}

		for j := range sorted {
			if visited[j] {
				continue
			}
			if absDuration(anchor.Start.Sub(sorted[j].Start)) <= tolerance {
				members = append(members, sorted[j])
				visited[j] = true
			}
		}

		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].Priority < members[b].Priority
		})
		groups = append(groups, Group{Anchor: anchor.Start, Members: members})
	}
	return groups
}

// Deletions flattens the drop lists of groups, in group order.
func Deletions(groups []Group) []Candidate {
	var out []Candidate
	for _, g := range groups {
		out = append(out, g.Drop()...)
	}
	return out
}

// Survivors returns candidates minus every deletion, in input order.
func Survivors(candidates []Candidate, groups []Group) []Candidate {
	drop := make(map[string]bool)
	for _, d := range Deletions(groups) {
		drop[d.Path] = true
	}
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !drop[c.Path] {
			out = append(out, c)
		}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
