package consensus

import (
	"sort"

	"github.com/guigolab/scavenger/queue"
	"github.com/guigolab/scavenger/stats"
	log "github.com/sirupsen/logrus"
)

// Target is a consensus locus with the representatives that voted for it.
type Target struct {
	Locus
	Reads []string
}

type task struct {
	rep     string
	anchors []string
}

type vote struct {
	rep   string
	locus Locus
}

type worker struct {
	voter *Voter
	stats *stats.ConsensusStats
}

func (w *worker) Process(t task, emit func(vote)) {
	if l, ok := w.voter.Vote(t.anchors, w.stats); ok {
		emit(vote{t.rep, l})
	}
}

// Run votes for every representative of anchors on threads workers and
// groups the accepted representatives by locus. Targets are sorted by locus
// and their reads by name.
func Run(anchors map[string][]string, v *Voter, threads, buffer int, logger log.FieldLogger) ([]*Target, *stats.ConsensusStats) {
	if threads < 1 {
		threads = 1
	}
	workers := make([]*stats.ConsensusStats, threads)
	results := queue.Run(threads, buffer, func(id int) queue.Worker[task, vote] {
		logger.WithField("worker", id).Debug("Starting consensus worker")
		workers[id] = stats.NewConsensusStats()
		return &worker{voter: v, stats: workers[id]}
	}, func(put func(task)) {
		for rep, a := range anchors {
			put(task{rep, a})
		}
	})

	byLocus := make(map[Locus]*Target)
	for r := range results {
		t, ok := byLocus[r.locus]
		if !ok {
			t = &Target{Locus: r.locus}
			byLocus[r.locus] = t
		}
		t.Reads = append(t.Reads, r.rep)
	}

	st := stats.NewConsensusStats()
	st.Merge(stats.Collect(workers))
	st.Finalize()

	targets := make([]*Target, 0, len(byLocus))
	for _, t := range byLocus {
		sort.Strings(t.Reads)
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].less(targets[j].Locus) })
	return targets, st
}
