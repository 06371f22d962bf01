package stats

// Summary is the report of a rescue run.
type Summary struct {
	Total          int `json:"total"`
	Mapped         int `json:"mapped"`
	Unmapped       int `json:"unmapped"`
	UniqueUnmapped int `json:"uniqueUnmapped"`
	Anchored       int `json:"anchored"`
	Passed         int `json:"passedConsensus"`
	Filtered       int `json:"filtered"`
	// RescuedUnique counts rescued representatives, RescuedAll the read
	// names they fan out to.
	RescuedUnique int `json:"rescuedUnique"`
	RescuedAll    int `json:"rescuedAll"`
	Failed        int `json:"failed"`
	StillUnmapped int `json:"stillUnmapped"`
	// NH is the distribution of the number of alignments of rescued
	// representatives.
	NH TagMap `json:"nh"`

	SourceMappability fraction `json:"sourceMappability"`
	NewMappability    fraction `json:"newMappability"`
	UniqueRescueRate  fraction `json:"uniqueRescueRate"`
	AllRescueRate     fraction `json:"allRescueRate"`

	Consensus *ConsensusStats `json:"consensus,omitempty"`
	Rescue    *RescueStats    `json:"rescue,omitempty"`
}

func NewSummary() *Summary {
	return &Summary{NH: TagMap{}}
}

// Finalize computes the percentages.
func (s *Summary) Finalize() {
	s.SourceMappability = percent(s.Mapped, s.Total)
	s.NewMappability = percent(s.Mapped+s.RescuedAll, s.Total)
	s.UniqueRescueRate = percent(s.RescuedUnique, s.Anchored)
	s.AllRescueRate = percent(s.RescuedAll, s.Unmapped)
	s.StillUnmapped = s.Unmapped - s.RescuedAll - s.Failed
	if s.Consensus != nil {
		s.Consensus.Finalize()
	}
	if s.Rescue != nil {
		s.Rescue.Finalize()
	}
}
