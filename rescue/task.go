package rescue

import (
	"github.com/biogo/hts/sam"
	"github.com/guigolab/scavenger/consensus"
	"github.com/guigolab/scavenger/readinfo"
	"github.com/guigolab/scavenger/seqio"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
)

// Read is an unmapped representative to realign.
type Read struct {
	Name string
	readinfo.UnmappedRead
}

// Task is the realignment of the reads of one consensus locus against the
// genome slice around it.
type Task struct {
	consensus.Locus
	// Ref is the first pass reference of the locus.
	Ref *sam.Reference
	// Offset is the genome position of the first base of Slice.
	Offset int
	Slice  string
	Reads  []Read
}

// sliceBounds extends [start, end) by flank on both sides, clipped to
// [0, length).
func sliceBounds(start, end, flank, length int) (int, int) {
	return utils.Max(0, start-flank), utils.Min(length, end+flank)
}

// Tasks streams the genome files and calls put with one task per target,
// in genome order. refs are the references of the first pass alignment, and
// reads holds the sequence and qualities of every target read. A target
// reaching past the end of its genome sequence is an error.
func Tasks(genomeFiles []string, refs []*sam.Reference, targets []*consensus.Target, reads map[string]readinfo.UnmappedRead, flank int, put func(Task)) error {
	byName := make(map[string]*sam.Reference, len(refs))
	for _, r := range refs {
		byName[r.Name()] = r
	}
	byRef := make(map[int][]*consensus.Target)
	for _, t := range targets {
		byRef[t.Ref] = append(byRef[t.Ref], t)
	}
	return seqio.Each(genomeFiles, func(rec *seqio.Record) error {
		ref, ok := byName[rec.ID]
		if !ok {
			return nil
		}
		for _, t := range byRef[ref.ID()] {
			if t.Start >= len(rec.Seq) || t.End > len(rec.Seq) {
				return errors.Errorf("locus %d-%d outside %s (length %d)", t.Start, t.End, rec.ID, len(rec.Seq))
			}
			start, end := sliceBounds(t.Start, t.End, flank, len(rec.Seq))
			task := Task{
				Locus:  t.Locus,
				Ref:    ref,
				Offset: start,
				Slice:  string(rec.Seq[start:utils.Max(start, end)]),
			}
			for _, name := range t.Reads {
				if r, ok := reads[name]; ok {
					task.Reads = append(task.Reads, Read{Name: name, UnmappedRead: r})
				}
			}
			if len(task.Reads) > 0 {
				put(task)
			}
		}
		return nil
	})
}
