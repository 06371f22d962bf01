package sam

import (
	"fmt"

	"github.com/biogo/hts/sam"
)

// Record wraps a sam.Record with the flag and field helpers used by the
// rescue phases.
type Record struct {
	*sam.Record
}

// Re-exported biogo sam functions
var (
	NewTag   = sam.NewTag
	ParseAux = sam.ParseAux
)

var (
	nhTag = sam.NewTag("NH")
	hiTag = sam.NewTag("HI")
)

// qualMissing is the biogo representation of a '*' quality field.
const qualMissing = 0xff

func NewRecord(r *sam.Record) *Record {
	return &Record{r}
}

// NH returns the value of the NH tag and whether it is present.
func (r *Record) NH() (int, bool) {
	return r.intTag(nhTag)
}

// HI returns the value of the HI tag and whether it is present.
func (r *Record) HI() (int, bool) {
	return r.intTag(hiTag)
}

func (r *Record) intTag(tag sam.Tag) (int, bool) {
	aux, ok := r.Tag(tag[:])
	if !ok {
		return 0, false
	}
	return auxInt(aux.Value())
}

func auxInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case uint8:
		return int(n), true
	case int8:
		return int(n), true
	case uint16:
		return int(n), true
	case int16:
		return int(n), true
	case uint32:
		return int(n), true
	case int32:
		return int(n), true
	}
	return 0, false
}

// IsUniq reports whether the record is the only reported mapping of its read.
// Records without an NH tag are taken as unique.
func (r *Record) IsUniq() bool {
	nh, ok := r.NH()
	return !ok || nh == 1
}

func (r *Record) IsSplit() bool {
	for _, op := range r.Cigar {
		if op.Type() == sam.CigarSkipped {
			return true
		}
	}
	return false
}

// IsPrimary reports whether the record is neither secondary nor supplementary.
func (r *Record) IsPrimary() bool {
	return r.Flags&(sam.Secondary|sam.Supplementary) == 0
}

func (r *Record) IsUnmapped() bool {
	return r.Flags&sam.Unmapped == sam.Unmapped
}

func (r *Record) IsReverse() bool {
	return r.Flags&sam.Reverse == sam.Reverse
}

func (r *Record) IsPaired() bool {
	return r.Flags&sam.Paired == sam.Paired
}

// HasQual reports whether per-base qualities are present.
func (r *Record) HasQual() bool {
	return len(r.Qual) > 0 && r.Qual[0] != qualMissing
}

// QualSum returns the sum of the phred base qualities.
func (r *Record) QualSum() int {
	sum := 0
	for _, q := range r.Qual {
		sum += int(q)
	}
	return sum
}

// Sequence returns the read sequence as a string.
func (r *Record) Sequence() string {
	return string(r.Seq.Expand())
}

// AlignedSpan returns the first and last reference positions covered by an
// aligned base and the number of such positions. Deletions and skipped
// regions are not counted.
func (r *Record) AlignedSpan() (first, last, n int) {
	pos := r.Pos
	for _, co := range r.Cigar {
		t := co.Type()
		l := co.Len()
		switch t {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if n == 0 {
				first = pos
			}
			last = pos + l - 1
			n += l
		}
		pos += l * t.Consumes().Reference
	}
	return first, last, n
}

// HardClips returns the number of hard clipped bases at each end of the
// alignment.
func (r *Record) HardClips() (head, tail int) {
	if len(r.Cigar) == 0 {
		return 0, 0
	}
	if co := r.Cigar[0]; co.Type() == sam.CigarHardClipped {
		head = co.Len()
	}
	if len(r.Cigar) > 1 {
		if co := r.Cigar[len(r.Cigar)-1]; co.Type() == sam.CigarHardClipped {
			tail = co.Len()
		}
	}
	return head, tail
}

// SetNH sets or replaces the NH tag.
func (r *Record) SetNH(n int) error {
	return r.setIntTag(nhTag, n)
}

// SetHI sets or replaces the HI tag, the 1-based index of the alignment
// among the NH alignments of its read.
func (r *Record) SetHI(n int) error {
	return r.setIntTag(hiTag, n)
}

func (r *Record) setIntTag(tag sam.Tag, n int) error {
	aux, err := sam.ParseAux([]byte(fmt.Sprintf("%s:i:%d", tag, n)))
	if err != nil {
		return err
	}
	for i, a := range r.AuxFields {
		if a.Tag() == tag {
			r.AuxFields[i] = aux
			return nil
		}
	}
	r.AuxFields = append(r.AuxFields, aux)
	return nil
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r.Record
	c.Cigar = append(sam.Cigar(nil), r.Cigar...)
	c.Seq.Seq = append([]sam.Doublet(nil), r.Seq.Seq...)
	c.Qual = append([]byte(nil), r.Qual...)
	c.AuxFields = make(sam.AuxFields, len(r.AuxFields))
	for i, a := range r.AuxFields {
		c.AuxFields[i] = append(sam.Aux(nil), a...)
	}
	return &Record{&c}
}

// QualString returns the phred+33 encoding of qual.
func QualString(qual []byte) string {
	b := make([]byte, len(qual))
	for i, q := range qual {
		b[i] = q + 33
	}
	return string(b)
}
