// Package consensus votes, for every unmapped representative, on the locus
// its anchors agree on.
//
// Anchors are grouped by identical locus and indexed in one interval tree per
// reference. A reference is a candidate when it holds at least the threshold
// fraction of all anchors. Overlapping intervals of a candidate are merged and
// a merged interval survives when it also holds the threshold fraction. Among
// the survivors with the most anchors, each is represented by the locus of its
// lexicographically first anchor, and the ones with the best mapping quality
// win.
package consensus

import (
	"sort"

	"github.com/guigolab/scavenger/readinfo"
	"github.com/guigolab/scavenger/stats"
)

// Locus is a consensus target. End is exclusive.
type Locus struct {
	Ref     int
	Start   int
	End     int
	Spliced bool
}

func (l Locus) less(o Locus) bool {
	if l.Ref != o.Ref {
		return l.Ref < o.Ref
	}
	if l.Start != o.Start {
		return l.Start < o.Start
	}
	if l.End != o.End {
		return l.End < o.End
	}
	return !l.Spliced && o.Spliced
}

// Voter evaluates the anchors of single representatives.
type Voter struct {
	Threshold float64
	// MinAnchors is the least number of anchors a merged interval needs.
	MinAnchors int
	Loci       map[string]readinfo.MappedLocus
}

func NewVoter(threshold float64, minAnchors int, loci map[string]readinfo.MappedLocus) *Voter {
	return &Voter{Threshold: threshold, MinAnchors: minAnchors, Loci: loci}
}

func (v *Voter) passes(n, total int) bool {
	return float64(n)/float64(total) >= v.Threshold
}

type groupKey struct {
	ref, start, end int
}

// Vote returns the locus the anchors agree on. s, if not nil, records the
// outcome.
func (v *Voter) Vote(anchors []string, s *stats.ConsensusStats) (Locus, bool) {
	total := len(anchors)
	if s != nil {
		s.Evaluated++
	}
	if total == 0 {
		if s != nil {
			s.NoReference++
		}
		return Locus{}, false
	}

	groups := make(map[groupKey][]string)
	for _, name := range anchors {
		loc, ok := v.Loci[name]
		if !ok || loc.End <= loc.Start {
			continue
		}
		k := groupKey{loc.Ref, loc.Start, loc.End}
		groups[k] = append(groups[k], name)
	}

	trees := make(map[int]*refTree)
	for k, names := range groups {
		i, err := newInterval(k.start, k.end, names)
		if err != nil {
			continue
		}
		t, ok := trees[k.ref]
		if !ok {
			t = newRefTree()
			trees[k.ref] = t
		}
		t.insert(i)
	}

	var refs []int
	for ref, t := range trees {
		if v.passes(t.count, total) {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		if s != nil {
			s.NoReference++
		}
		return Locus{}, false
	}
	sort.Ints(refs)

	var best [][]string
	most := 0
	for _, ref := range refs {
		for _, m := range mergeIntervals(trees[ref].all()) {
			n := len(m.names)
			if n < v.MinAnchors || !v.passes(n, total) {
				continue
			}
			switch {
			case n > most:
				most = n
				best = [][]string{m.names}
			case n == most:
				best = append(best, m.names)
			}
		}
	}
	if len(best) == 0 {
		if s != nil {
			s.NoInterval++
		}
		return Locus{}, false
	}

	var winners []Locus
	score := -1
	for _, names := range best {
		canonical := names[0]
		for _, n := range names[1:] {
			if n < canonical {
				canonical = n
			}
		}
		loc := v.Loci[canonical]
		l := Locus{Ref: loc.Ref, Start: loc.Start, End: loc.End, Spliced: loc.Spliced}
		switch {
		case loc.MapQ > score:
			score = loc.MapQ
			winners = []Locus{l}
		case loc.MapQ == score:
			winners = append(winners, l)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].less(winners[j]) })
	if s != nil {
		s.Passed++
		s.Support[most]++
		if len(winners) > 1 && winners[0] != winners[len(winners)-1] {
			s.Ties++
		}
	}
	return winners[0], true
}
