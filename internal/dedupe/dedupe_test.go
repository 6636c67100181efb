package dedupe

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(0, 0).UTC()

func at(sec int) time.Time { return epoch.Add(time.Duration(sec) * time.Second) }

func paths(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Path)
	}
	return out
}

func TestGarminPreferredOverIntervals(t *testing.T) {
	candidates := []Candidate{
		{Path: "alice@example.com_123.fit", Start: at(1000), Label: "Garmin Export", Priority: 1},
		{Path: "2024-01-01-08_00-77.fit", Start: at(1003), Label: "Intervals.icu", Priority: 2},
	}

	groups := Resolve(candidates, 5*time.Second)
	require.Len(t, groups, 1)
	assert.Equal(t, "alice@example.com_123.fit", groups[0].Keep().Path)
	assert.Equal(t, []string{"2024-01-01-08_00-77.fit"}, paths(Deletions(groups)))
	assert.True(t, at(1000).Equal(groups[0].Anchor))
}

func TestToleranceBoundary(t *testing.T) {
	tests := []struct {
		name      string
		delta     int
		tolerance int
		grouped   bool
	}{
		{"equal timestamps zero tolerance", 0, 0, true},
		{"inside", 3, 5, true},
		{"boundary is inclusive", 5, 5, true},
		{"outside", 6, 5, false},
		{"zero tolerance apart", 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := []Candidate{
				{Path: "a", Start: at(100), Priority: 1},
				{Path: "b", Start: at(100 + tt.delta), Priority: 2},
			}
			groups := Resolve(cs, time.Duration(tt.tolerance)*time.Second)
			if tt.grouped {
				require.Len(t, groups, 1)
				assert.Len(t, groups[0].Members, 2)
			} else {
				assert.Empty(t, groups)
			}
		})
	}
}

func TestAnchorRelativeChain(t *testing.T) {
	// b is within 5s of both a and c, but c is 8s from the anchor a.
	cs := []Candidate{
		{Path: "c", Start: at(8), Priority: 1},
		{Path: "a", Start: at(0), Priority: 1},
		{Path: "b", Start: at(4), Priority: 1},
	}

	groups := Resolve(cs, 5*time.Second)
	require.Len(t, groups, 1, "c forms a singleton group, which is discarded")
	assert.Equal(t, []string{"a", "b"}, paths(groups[0].Members))
}

func TestPriorityTiesKeepTimeOrder(t *testing.T) {
	cs := []Candidate{
		{Path: "late", Start: at(2), Priority: 3},
		{Path: "early", Start: at(0), Priority: 3},
		{Path: "best", Start: at(1), Priority: 1},
	}

	groups := Resolve(cs, 5*time.Second)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"best", "early", "late"}, paths(groups[0].Members))
}

func TestEqualStartsKeepInputOrder(t *testing.T) {
	cs := []Candidate{
		{Path: "first", Start: at(10), Priority: 2},
		{Path: "second", Start: at(10), Priority: 2},
	}

	groups := Resolve(cs, 0)
	require.Len(t, groups, 1)
	assert.Equal(t, "first", groups[0].Keep().Path)
}

func TestNeverDeletesSoleFile(t *testing.T) {
	cs := []Candidate{
		{Path: "a", Start: at(0)},
		{Path: "b", Start: at(100)},
		{Path: "c", Start: at(200)},
	}
	assert.Empty(t, Resolve(cs, 5*time.Second))
	assert.Empty(t, Resolve(nil, 5*time.Second))
}

func TestInputNotModified(t *testing.T) {
	cs := []Candidate{
		{Path: "b", Start: at(3), Priority: 2},
		{Path: "a", Start: at(0), Priority: 1},
	}
	Resolve(cs, 5*time.Second)
	assert.Equal(t, []string{"b", "a"}, paths(cs))
}

func TestDeterministic(t *testing.T) {
	cs := randomCandidates(rand.New(rand.NewSource(7)), 200)

	first := Resolve(cs, 5*time.Second)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Resolve(cs, 5*time.Second))
	}
}

func TestIdempotentOnSeparatedClusters(t *testing.T) {
	// Clusters are spread far wider than the tolerance, so no survivor is
	// within tolerance of another group's survivor.
	r := rand.New(rand.NewSource(42))
	var cs []Candidate
	for cluster := 0; cluster < 30; cluster++ {
		base := cluster * 1000
		for k := 0; k < 1+r.Intn(4); k++ {
			cs = append(cs, Candidate{
				Path:     fmt.Sprintf("c%02d-%d", cluster, k),
				Start:    at(base + r.Intn(6)),
				Priority: 1 + r.Intn(3),
			})
		}
	}

	groups := Resolve(cs, 5*time.Second)
	survivors := Survivors(cs, groups)
	assert.Len(t, survivors, 30)
	assert.Empty(t, Resolve(survivors, 5*time.Second))
}

func randomCandidates(r *rand.Rand, n int) []Candidate {
	cs := make([]Candidate, n)
	for i := range cs {
		cs[i] = Candidate{
			Path:     fmt.Sprintf("f%03d.fit", i),
			Start:    at(r.Intn(2000)),
			Priority: 1 + r.Intn(3),
		}
	}
	return cs
}
