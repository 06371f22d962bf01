package pseudoref

import (
	"strings"

	"github.com/guigolab/scavenger/sam"
	"github.com/guigolab/scavenger/seqio"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
)

// WriteSubset writes to output the FASTQ reads of inputs whose name is in
// names. It returns the number of reads written.
func WriteSubset(inputs []string, names map[string]struct{}, output string) (int, error) {
	out, err := utils.NewOutput(output)
	if err != nil {
		return 0, err
	}
	fq := seqio.NewFastqWriter(out)
	n := 0
	err = seqio.Each(inputs, func(r *seqio.Record) error {
		if _, ok := names[r.ID]; !ok {
			return nil
		}
		if len(r.Qual) == 0 {
			return errors.Errorf("read %s has no qualities", r.ID)
		}
		n++
		return fq.Write(r.ID, string(r.Seq), string(r.Qual))
	})
	if err != nil {
		out.Close()
		return 0, err
	}
	return n, out.Close()
}

// WriteAlignedSubset writes to output, as FASTQ in read orientation, the
// primary records of the alignment file whose name is in names. It is used
// when only a first pass alignment is available.
func WriteAlignedSubset(alignment string, names map[string]struct{}, output string) (int, error) {
	out, err := utils.NewOutput(output)
	if err != nil {
		return 0, err
	}
	fq := seqio.NewFastqWriter(out)
	n := 0
	_, err = sam.Scan(alignment, func(r *sam.Record) error {
		if !r.IsPrimary() || r.IsUnmapped() {
			return nil
		}
		if _, ok := names[r.Name]; !ok {
			return nil
		}
		seq, qual := r.Sequence(), sam.QualString(r.Qual)
		if !r.HasQual() {
			qual = strings.Repeat("I", len(seq))
		}
		if r.IsReverse() {
			seq, qual = reverseComplement(seq), reverse(qual)
		}
		n++
		return fq.Write(r.Name, seq, qual)
	})
	if err != nil {
		out.Close()
		return 0, err
	}
	return n, out.Close()
}

var complement = strings.NewReplacer(
	"A", "T", "C", "G", "G", "C", "T", "A",
	"a", "t", "c", "g", "g", "c", "t", "a",
)

func reverseComplement(s string) string {
	return reverse(complement.Replace(s))
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
