// Package readinfo indexes the first pass records of anchored reads: the
// locus of each mapped anchor and the sequence and qualities of each unmapped
// representative.
package readinfo

import (
	"github.com/guigolab/scavenger/sam"
)

// MappedLocus is where a mapped anchor read aligned. End is exclusive.
type MappedLocus struct {
	Ref     int
	Start   int
	End     int
	MapQ    int
	Spliced bool
}

// UnmappedRead holds the sequence and phred+33 qualities of an unmapped read.
type UnmappedRead struct {
	Seq  string
	Qual string
}

// Info is the pair of lookup tables, keyed by read name.
type Info struct {
	Mapped   map[string]MappedLocus
	Unmapped map[string]UnmappedRead
}

// Indexer fills an Info from first pass records.
type Indexer struct {
	mapped   map[string]struct{}
	unmapped map[string][]string
	info     *Info
}

// New returns an Indexer restricted to the given mapped names and unmapped
// representatives.
func New(mapped map[string]struct{}, unmapped map[string][]string) *Indexer {
	return &Indexer{
		mapped:   mapped,
		unmapped: unmapped,
		info: &Info{
			Mapped:   make(map[string]MappedLocus),
			Unmapped: make(map[string]UnmappedRead),
		},
	}
}

// Add indexes one record if it belongs to an anchored read.
func (x *Indexer) Add(r *sam.Record) error {
	if !r.IsPrimary() {
		return nil
	}
	if r.IsUnmapped() {
		if _, ok := x.unmapped[r.Name]; ok {
			x.info.Unmapped[r.Name] = UnmappedRead{Seq: r.Sequence(), Qual: sam.QualString(r.Qual)}
		}
		return nil
	}
	if _, ok := x.mapped[r.Name]; ok && r.Ref != nil {
		x.info.Mapped[r.Name] = MappedLocus{
			Ref:     r.Ref.ID(),
			Start:   r.Pos,
			End:     r.End(),
			MapQ:    int(r.MapQ),
			Spliced: r.IsSplit(),
		}
	}
	return nil
}

func (x *Indexer) Info() *Info {
	return x.info
}

// File indexes the alignment file at path in a single pass.
func File(path string, mapped map[string]struct{}, unmapped map[string][]string) (*Info, error) {
	x := New(mapped, unmapped)
	if _, err := sam.Scan(path, x.Add); err != nil {
		return nil, err
	}
	return x.Info(), nil
}
