package stats

// ConsensusStats counts the outcomes of the consensus phase.
type ConsensusStats struct {
	Evaluated   uint64 `json:"evaluated"`
	Passed      uint64 `json:"passed"`
	NoReference uint64 `json:"noReference"`
	NoInterval  uint64 `json:"noInterval"`
	// Ties counts representatives whose best loci tied and were resolved to
	// the first one.
	Ties uint64 `json:"ties"`
	// Support is the distribution of the anchor count of winning loci.
	Support TagMap   `json:"support"`
	Ratio   fraction `json:"ratio"`
}

func NewConsensusStats() *ConsensusStats {
	return &ConsensusStats{Support: TagMap{}}
}

// Merge updates counts from a channel of Stats instances.
func (s *ConsensusStats) Merge(others chan Stats) {
	for other := range others {
		s.Update(other)
	}
}

// Update updates all counts from a Stats instance.
func (s *ConsensusStats) Update(other Stats) {
	if other, ok := other.(*ConsensusStats); ok {
		s.Evaluated += other.Evaluated
		s.Passed += other.Passed
		s.NoReference += other.NoReference
		s.NoInterval += other.NoInterval
		s.Ties += other.Ties
		s.Support.Update(other.Support)
	}
}

// Finalize updates dependent counts of a Stats instance.
func (s *ConsensusStats) Finalize() {
	s.Ratio = percent(int(s.Passed), int(s.Evaluated))
}
