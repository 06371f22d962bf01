package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagMap(t *testing.T) {
	tm := TagMap{1: 3, 2: 1}
	tm.Update(TagMap{2: 2, 5: 1})
	assert.Equal(t, TagMap{1: 3, 2: 3, 5: 1}, tm)
	assert.Equal(t, 7, tm.Total())

	b, err := json.Marshal(tm)
	require.NoError(t, err)
	var back TagMap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tm, back)
}

func TestMerge(t *testing.T) {
	workers := []*ConsensusStats{NewConsensusStats(), NewConsensusStats(), NewConsensusStats()}
	for i, w := range workers {
		w.Evaluated = uint64(i + 2)
		w.Passed = uint64(i + 1)
		w.Support[i+1]++
	}
	s := NewConsensusStats()
	s.Merge(Collect(workers))
	s.Finalize()
	assert.Equal(t, uint64(9), s.Evaluated)
	assert.Equal(t, uint64(6), s.Passed)
	assert.Equal(t, TagMap{1: 1, 2: 1, 3: 1}, s.Support)
	assert.Equal(t, "66.6667", s.Ratio.String())

	r := NewRescueStats()
	r.Merge(Collect([]*RescueStats{{Tasks: 2, FailedReads: 1}, {Tasks: 3, Alignments: 4, QualMismatches: 1}}))
	assert.Equal(t, RescueStats{Tasks: 5, FailedReads: 1, Alignments: 4, QualMismatches: 1}, *r)

	// foreign stats are ignored
	r.Update(NewConsensusStats())
	assert.Equal(t, uint64(5), r.Tasks)
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.Total, s.Mapped, s.Unmapped = 10, 6, 4
	s.Anchored, s.RescuedUnique, s.RescuedAll = 2, 1, 3
	s.Finalize()
	assert.Equal(t, "60", s.SourceMappability.String())
	assert.Equal(t, "90", s.NewMappability.String())
	assert.Equal(t, "50", s.UniqueRescueRate.String())
	assert.Equal(t, "75", s.AllRescueRate.String())
	assert.Equal(t, 1, s.StillUnmapped)

	empty := NewSummary()
	empty.Finalize()
	assert.Equal(t, fraction(0), empty.NewMappability)
}
