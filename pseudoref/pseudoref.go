// Package pseudoref packs unique unmapped sequences into fixed width bins of
// synthetic contigs, so that a second alignment pass of the mapped reads can
// tell which unmapped sequence they land next to.
package pseudoref

import (
	"io"
	"strconv"
	"strings"

	"github.com/guigolab/scavenger/seqio"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
)

// ContigPrefix names the synthetic contigs, followed by the contig index.
const ContigPrefix = "ART_CHR_"

const filler = "N"

// Layout is the bin geometry of a pseudo-reference.
type Layout struct {
	BinSize        int
	ReadsPerContig int
}

// Reference is a pseudo-reference. Sequence i lives in bin
// i%ReadsPerContig of contig i/ReadsPerContig.
type Reference struct {
	Layout
	Seqs []string
}

// New returns the pseudo-reference of seqs, which must be sorted.
func New(seqs []string, l Layout) (*Reference, error) {
	if l.BinSize <= 0 || l.ReadsPerContig <= 0 {
		return nil, errors.Errorf("invalid layout %+v", l)
	}
	for _, s := range seqs {
		if len(s) > l.BinSize {
			return nil, errors.Errorf("sequence of length %d does not fit in a bin of %d", len(s), l.BinSize)
		}
	}
	return &Reference{Layout: l, Seqs: seqs}, nil
}

// Contigs returns the number of contigs. An empty reference still has one.
func (r *Reference) Contigs() int {
	return utils.Max(1, (len(r.Seqs)+r.ReadsPerContig-1)/r.ReadsPerContig)
}

// Length returns the total number of bases in bins.
func (r *Reference) Length() int {
	return len(r.Seqs) * r.BinSize
}

// Locate returns the contig and bin of sequence i.
func (r *Reference) Locate(i int) (contig, bin int) {
	return i / r.ReadsPerContig, i % r.ReadsPerContig
}

// Index returns the sequence index of a bin.
func (r *Reference) Index(contig, bin int) int {
	return contig*r.ReadsPerContig + bin
}

// Lookup returns the sequence of a bin.
func (r *Reference) Lookup(contig, bin int) (string, bool) {
	if contig < 0 || bin < 0 || bin >= r.ReadsPerContig {
		return "", false
	}
	i := r.Index(contig, bin)
	if i >= len(r.Seqs) {
		return "", false
	}
	return r.Seqs[i], true
}

// ContigName returns the name of contig i.
func ContigName(i int) string {
	return ContigPrefix + strconv.Itoa(i)
}

// ContigIndex parses the index out of a contig name.
func ContigIndex(name string) (int, error) {
	i, err := strconv.Atoi(name[strings.LastIndex(name, "_")+1:])
	if err != nil {
		return 0, errors.Wrapf(err, "invalid pseudo-reference contig %q", name)
	}
	return i, nil
}

// Write writes the pseudo-reference in FASTA format, one line per contig.
func (r *Reference) Write(w io.Writer) error {
	fa := seqio.NewFastaWriter(w)
	var b strings.Builder
	for c := 0; c < r.Contigs(); c++ {
		b.Reset()
		start := c * r.ReadsPerContig
		end := utils.Min(len(r.Seqs), start+r.ReadsPerContig)
		for _, s := range r.Seqs[start:utils.Max(start, end)] {
			b.WriteString(s)
			b.WriteString(strings.Repeat(filler, r.BinSize-len(s)))
		}
		if err := fa.Write(ContigName(c), b.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the pseudo-reference to path.
func (r *Reference) WriteFile(path string) error {
	out, err := utils.NewOutput(path)
	if err != nil {
		return err
	}
	if err := r.Write(out); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return out.Close()
}
