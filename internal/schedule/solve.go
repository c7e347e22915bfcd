package schedule

import (
	"sort"

	"github.com/joescharf/studyplan/internal/models"
	"github.com/joescharf/studyplan/internal/timeutil"
)

// Solve computes the maximum-weight schedule over the accumulated sessions.
// It never fails: inputs were validated at Add time, and an empty planner
// yields an empty schedule.
func (p *Planner) Solve() models.Schedule {
	n := len(p.sessions)
	if n == 0 {
		return models.Schedule{}
	}

	// Work on an owned, end-sorted copy; ties keep insertion order.
	sorted := make([]models.Session, n)
	copy(sorted, p.sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].End < sorted[j].End
	})

	comp := compatibility(sorted, p.restGap)
	opt := dpTable(sorted, comp)

	entries := reconstruct(sorted, comp, opt)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Start < entries[j].Start
	})

	return models.Schedule{Total: opt[n], Entries: entries}
}

// compatibility computes, for each session in end-sorted order, the index of
// the latest earlier session whose end plus the rest gap fits before this
// session's start, or -1. End values are ascending, so end+gap is
// non-decreasing and binary search applies. Equality is compatible.
func compatibility(sorted []models.Session, gap int) []int {
	comp := make([]int, len(sorted))
	for i := range sorted {
		// Smallest j with sorted[j].End+gap > start; the answer is j-1.
		j := sort.Search(i, func(j int) bool {
			return sorted[j].End+gap > sorted[i].Start
		})
		comp[i] = j - 1
	}
	return comp
}

// dpTable fills the weighted-interval-scheduling recurrence. opt[i] is the
// best total using only the first i sessions in sorted order. Ties prefer
// exclusion: opt[i-1] is only overwritten by a strictly greater include
// value, which reconstruct relies on.
func dpTable(sorted []models.Session, comp []int) []float64 {
	opt := make([]float64, len(sorted)+1)
	for i := 1; i <= len(sorted); i++ {
		include := sorted[i-1].Weight
		if comp[i-1] >= 0 {
			include += opt[comp[i-1]+1]
		}
		opt[i] = opt[i-1]
		if include > opt[i-1] {
			opt[i] = include
		}
	}
	return opt
}

// reconstruct walks the table backward, taking session i-1 whenever it is the
// one that raised the optimum, then jumping to its compatibility index. The
// entries are fresh copies with clock text rendered on the copy only.
func reconstruct(sorted []models.Session, comp []int, opt []float64) []models.ScheduleEntry {
	var entries []models.ScheduleEntry
	for i := len(sorted); i > 0; {
		if opt[i] == opt[i-1] {
			i--
			continue
		}

		s := sorted[i-1]
		startText, _ := timeutil.Text(s.Start)
		endText, _ := timeutil.Text(s.End)
		entries = append(entries, models.ScheduleEntry{
			Label:     s.Label,
			Start:     s.Start,
			End:       s.End,
			StartText: startText,
			EndText:   endText,
			Weight:    s.Weight,
		})

		// comp == -1 lands on i = 0 and ends the chain.
		i = comp[i-1] + 1
	}
	return entries
}
