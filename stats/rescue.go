package stats

// RescueStats counts the outcomes of the rescue phase.
type RescueStats struct {
	Tasks        uint64 `json:"tasks"`
	SplicedTasks uint64 `json:"splicedTasks"`
	FailedTasks  uint64 `json:"failedTasks"`
	Reads        uint64 `json:"reads"`
	Alignments   uint64 `json:"alignments"`
	FailedReads  uint64 `json:"failedReads"`

	// QualMismatches counts alignments whose read qualities could not be
	// restored.
	QualMismatches uint64 `json:"qualMismatches"`
}

func NewRescueStats() *RescueStats {
	return &RescueStats{}
}

// Merge updates counts from a channel of Stats instances.
func (s *RescueStats) Merge(others chan Stats) {
	for other := range others {
		s.Update(other)
	}
}

// Update updates all counts from a Stats instance.
func (s *RescueStats) Update(other Stats) {
	if other, ok := other.(*RescueStats); ok {
		s.Tasks += other.Tasks
		s.SplicedTasks += other.SplicedTasks
		s.FailedTasks += other.FailedTasks
		s.Reads += other.Reads
		s.Alignments += other.Alignments
		s.FailedReads += other.FailedReads
		s.QualMismatches += other.QualMismatches
	}
}

func (s *RescueStats) Finalize() {}
