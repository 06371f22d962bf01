// Package anchor reads the second pass alignment of mapped reads against a
// pseudo-reference and ties each unmapped representative to the mapped reads
// that landed in its bin.
package anchor

import (
	"github.com/guigolab/scavenger/classify"
	"github.com/guigolab/scavenger/pseudoref"
	"github.com/guigolab/scavenger/sam"
	"github.com/pkg/errors"
)

// Anchors is the outcome of an extraction.
type Anchors struct {
	// ByRepresentative maps an unmapped representative name to its anchors.
	ByRepresentative map[string][]string
	// Mapped holds the names of the reads that anchored at least once.
	Mapped map[string]struct{}
	// Rejected counts the mapped records that were too short or spanned two
	// bins.
	Rejected int
}

// Extractor accumulates second pass records.
type Extractor struct {
	ref    *pseudoref.Reference
	groups map[string]*classify.Group
	res    *Anchors
}

// New returns an Extractor for the given pseudo-reference. groups maps
// every sequence of ref to its unmapped group.
func New(ref *pseudoref.Reference, groups map[string]*classify.Group) *Extractor {
	return &Extractor{
		ref:    ref,
		groups: groups,
		res: &Anchors{
			ByRepresentative: make(map[string][]string),
			Mapped:           make(map[string]struct{}),
		},
	}
}

// Add records the anchor of one second pass record, if any.
func (e *Extractor) Add(r *sam.Record) error {
	if r.IsUnmapped() || r.Ref == nil {
		return nil
	}
	first, last, n := r.AlignedSpan()
	if n < 2 || first/e.ref.BinSize != last/e.ref.BinSize {
		e.res.Rejected++
		return nil
	}
	contig, err := pseudoref.ContigIndex(r.Ref.Name())
	if err != nil {
		return err
	}
	bin := first / e.ref.BinSize
	seq, ok := e.ref.Lookup(contig, bin)
	if !ok {
		return errors.Errorf("read %s aligned to empty bin %d of %s", r.Name, bin, r.Ref.Name())
	}
	g, ok := e.groups[seq]
	if !ok {
		return errors.Errorf("no unmapped group for bin %d of %s", bin, r.Ref.Name())
	}
	rep := g.Representative()
	e.res.ByRepresentative[rep] = append(e.res.ByRepresentative[rep], r.Name)
	e.res.Mapped[r.Name] = struct{}{}
	return nil
}

func (e *Extractor) Anchors() *Anchors {
	return e.res
}

// File extracts the anchors of the second pass alignment at path.
func File(path string, ref *pseudoref.Reference, groups map[string]*classify.Group) (*Anchors, error) {
	e := New(ref, groups)
	if _, err := sam.Scan(path, e.Add); err != nil {
		return nil, err
	}
	return e.Anchors(), nil
}
