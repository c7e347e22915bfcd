package schedule

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/studyplan/internal/models"
)

func newPlanner(t *testing.T, gap int) *Planner {
	t.Helper()
	p, err := NewPlanner(gap)
	require.NoError(t, err)
	return p
}

func labels(s models.Schedule) []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Label
	}
	return out
}

func TestSolve_TouchingSessionsZeroGap(t *testing.T) {
	p := newPlanner(t, 0)
	require.NoError(t, p.Add(540, 600, 5, "Math"))
	require.NoError(t, p.Add(600, 660, 5, "Phys"))

	s := p.Solve()
	assert.Equal(t, 10.0, s.Total)
	assert.Equal(t, []string{"Math", "Phys"}, labels(s))
	assert.Equal(t, "09:00", s.Entries[0].StartText)
	assert.Equal(t, "10:00", s.Entries[0].EndText)
}

func TestSolve_GapForcesExclusion(t *testing.T) {
	p := newPlanner(t, 10)
	require.NoError(t, p.Add(540, 600, 5, "Math"))
	require.NoError(t, p.Add(600, 660, 5, "Phys"))

	s := p.Solve()
	assert.Equal(t, 5.0, s.Total)
	require.Len(t, s.Entries, 1)
}

func TestSolve_OverlapPicksHeavier(t *testing.T) {
	p := newPlanner(t, 0)
	require.NoError(t, p.Add(480, 540, 3, "A"))
	require.NoError(t, p.Add(510, 570, 10, "B"))
	require.NoError(t, p.Add(570, 630, 4, "C"))

	s := p.Solve()
	assert.Equal(t, 14.0, s.Total)
	assert.Equal(t, []string{"B", "C"}, labels(s))
}

func TestSolve_Empty(t *testing.T) {
	p := newPlanner(t, 0)
	s := p.Solve()
	assert.Equal(t, 0.0, s.Total)
	assert.Empty(t, s.Entries)
}

func TestSolve_GapEqualityIsCompatible(t *testing.T) {
	// end + gap == start exactly: still allowed.
	p := newPlanner(t, 30)
	require.NoError(t, p.Add(540, 600, 5, "Math"))
	require.NoError(t, p.Add(630, 690, 5, "Phys"))

	s := p.Solve()
	assert.Equal(t, 10.0, s.Total)
	assert.Len(t, s.Entries, 2)
}

func TestSolve_TieBreakPrefersExclusion(t *testing.T) {
	// Two incompatible sessions with equal weight: exactly one is chosen, and
	// the prefer-exclude rule keeps reconstruction consistent with the table.
	p := newPlanner(t, 10)
	require.NoError(t, p.Add(540, 600, 5, "Math"))
	require.NoError(t, p.Add(600, 660, 5, "Phys"))

	s := p.Solve()
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "Math", s.Entries[0].Label, "exclude branch drops the later-ending session on a tie")
}

func TestSolve_DuplicateIntervals(t *testing.T) {
	// Identical intervals are mutually incompatible; only one can be chosen.
	p := newPlanner(t, 0)
	require.NoError(t, p.Add(60, 120, 5, "first"))
	require.NoError(t, p.Add(60, 120, 5, "second"))

	s := p.Solve()
	assert.Equal(t, 5.0, s.Total)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "first", s.Entries[0].Label)

	// With unequal weights the heavier duplicate wins.
	p = newPlanner(t, 0)
	require.NoError(t, p.Add(60, 120, 5, "light"))
	require.NoError(t, p.Add(60, 120, 7, "heavy"))

	s = p.Solve()
	assert.Equal(t, 7.0, s.Total)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "heavy", s.Entries[0].Label)
}

func TestSolve_SingleSession(t *testing.T) {
	p := newPlanner(t, 60)
	require.NoError(t, p.Add(0, 1, 0.5, "tiny"))

	s := p.Solve()
	assert.Equal(t, 0.5, s.Total)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "00:00", s.Entries[0].StartText)
	assert.Equal(t, "00:01", s.Entries[0].EndText)
}

func TestSolve_EntriesSortedByStart(t *testing.T) {
	p := newPlanner(t, 0)
	require.NoError(t, p.Add(900, 960, 2, "late"))
	require.NoError(t, p.Add(540, 600, 2, "early"))
	require.NoError(t, p.Add(700, 760, 2, "mid"))

	s := p.Solve()
	assert.Equal(t, []string{"early", "mid", "late"}, labels(s))
}

func TestSolve_DoesNotMutatePlanner(t *testing.T) {
	p := newPlanner(t, 0)
	require.NoError(t, p.Add(900, 960, 2, "late"))
	require.NoError(t, p.Add(540, 600, 2, "early"))

	_ = p.Solve()

	// Insertion order preserved; Solve sorts a copy.
	sessions := p.Sessions()
	assert.Equal(t, "late", sessions[0].Label)
	assert.Equal(t, "early", sessions[1].Label)
}

func TestCompatibility(t *testing.T) {
	sorted := []models.Session{
		{Start: 480, End: 540},
		{Start: 510, End: 570},
		{Start: 570, End: 630},
		{Start: 650, End: 700},
	}

	assert.Equal(t, []int{-1, -1, 1, 2}, compatibility(sorted, 0))
	assert.Equal(t, []int{-1, -1, 0, 1}, compatibility(sorted, 30))
	assert.Equal(t, []int{-1, -1, -1, -1}, compatibility(sorted, 500))
}

func TestDPTable_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		sorted := randomSessions(rng, 1+rng.Intn(20))
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].End < sorted[j].End })

		gap := rng.Intn(60)
		opt := dpTable(sorted, compatibility(sorted, gap))
		for i := 1; i < len(opt); i++ {
			require.GreaterOrEqual(t, opt[i], opt[i-1], "OPT must be non-decreasing")
		}
	}
}

func TestSolve_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	gaps := []int{0, 15, 30}

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(12)
		sessions := randomSessions(rng, n)
		gap := gaps[trial%len(gaps)]

		p := newPlanner(t, gap)
		for _, s := range sessions {
			require.NoError(t, p.Add(s.Start, s.End, s.Weight, s.Label))
		}

		got := p.Solve()
		want := bruteForceBest(sessions, gap)
		require.Equal(t, want, got.Total, "trial %d: n=%d gap=%d sessions=%v", trial, n, gap, sessions)
		requireFeasible(t, got, gap)
	}
}

// requireFeasible checks the rest-gap property over consecutive entries.
func requireFeasible(t *testing.T, s models.Schedule, gap int) {
	t.Helper()
	for i := 1; i < len(s.Entries); i++ {
		prev, cur := s.Entries[i-1], s.Entries[i]
		require.LessOrEqual(t, prev.End+gap, cur.Start,
			"consecutive entries %q and %q violate the rest gap", prev.Label, cur.Label)
	}
}

// randomSessions builds n sessions with whole-number weights so float sums
// stay exact.
func randomSessions(rng *rand.Rand, n int) []models.Session {
	sessions := make([]models.Session, n)
	for i := range sessions {
		start := rng.Intn(1000)
		sessions[i] = models.Session{
			Label:  string(rune('a' + i)),
			Start:  start,
			End:    start + 1 + rng.Intn(200),
			Weight: float64(1 + rng.Intn(10)),
		}
	}
	return sessions
}

// bruteForceBest enumerates every subset and returns the best feasible total.
func bruteForceBest(sessions []models.Session, gap int) float64 {
	best := 0.0
	for mask := 0; mask < 1<<len(sessions); mask++ {
		var subset []models.Session
		for i := range sessions {
			if mask&(1<<i) != 0 {
				subset = append(subset, sessions[i])
			}
		}
		if !feasible(subset, gap) {
			continue
		}
		total := 0.0
		for _, s := range subset {
			total += s.Weight
		}
		if total > best {
			best = total
		}
	}
	return best
}

func feasible(subset []models.Session, gap int) bool {
	sort.Slice(subset, func(i, j int) bool { return subset[i].Start < subset[j].Start })
	for i := 0; i < len(subset); i++ {
		for j := i + 1; j < len(subset); j++ {
			if subset[i].End+gap > subset[j].Start {
				return false
			}
		}
	}
	return true
}
