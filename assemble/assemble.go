// Package assemble turns rescue results into the final alignments: multiple
// alignments of a representative are tagged and ranked, and every outcome is
// fanned out to the reads sharing the representative's sequence.
package assemble

import (
	"fmt"
	"sort"

	hts "github.com/biogo/hts/sam"
	"github.com/guigolab/scavenger/classify"
	"github.com/guigolab/scavenger/rescue"
	"github.com/guigolab/scavenger/sam"
	"github.com/guigolab/scavenger/stats"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
)

// RecordWriter is implemented by sam.Writer.
type RecordWriter interface {
	Write(*sam.Record) error
}

// Assembly holds the rescue outcome of every read name.
type Assembly struct {
	// Rescued maps a read name to its alignments, primary first.
	Rescued map[string][]*sam.Record
	// Failed maps a read name to its sequence.
	Failed map[string]string
	// Unique is the number of rescued representatives and NH the
	// distribution of their number of alignments.
	Unique int
	NH     stats.TagMap
}

type alignmentKey struct {
	ref     int
	pos     int
	reverse bool
	cigar   string
}

func keyOf(r *sam.Record) alignmentKey {
	return alignmentKey{r.Ref.ID(), r.Pos, r.IsReverse(), r.Cigar.String()}
}

func (k alignmentKey) less(o alignmentKey) bool {
	switch {
	case k.ref != o.ref:
		return k.ref < o.ref
	case k.pos != o.pos:
		return k.pos < o.pos
	case k.reverse != o.reverse:
		return !k.reverse
	}
	return k.cigar < o.cigar
}

// rank drops repeated alignments, orders the rest and flags all but the first
// as secondary. Every record gets the number of alignments as NH and its
// 1-based rank as HI.
func rank(recs []*sam.Record) ([]*sam.Record, error) {
	seen := make(map[alignmentKey]bool)
	var uniq []*sam.Record
	for _, r := range recs {
		k := keyOf(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, r.Clone())
	}
	sort.Slice(uniq, func(i, j int) bool { return keyOf(uniq[i]).less(keyOf(uniq[j])) })
	for i, r := range uniq {
		if err := r.SetNH(len(uniq)); err != nil {
			return nil, err
		}
		if err := r.SetHI(i + 1); err != nil {
			return nil, err
		}
		r.Flags &^= hts.Secondary | hts.Supplementary
		if i > 0 {
			r.Flags |= hts.Secondary
		}
	}
	return uniq, nil
}

// Assemble resolves results against the unmapped groups, indexed by
// representative. A representative with at least one alignment is never
// reported as failed.
func Assemble(results []rescue.Result, groups map[string]*classify.Group) (*Assembly, error) {
	byRep := make(map[string][]*sam.Record)
	failed := make(map[string]string)
	for _, res := range results {
		switch r := res.(type) {
		case rescue.Rescued:
			byRep[r.Read()] = append(byRep[r.Read()], r.Record)
		case rescue.Failed:
			failed[r.Name] = r.Seq
		default:
			return nil, errors.Errorf("unexpected rescue result %T", res)
		}
	}

	names := func(rep string) []string {
		if g, ok := groups[rep]; ok {
			return g.Names
		}
		return []string{rep}
	}

	a := &Assembly{
		Rescued: make(map[string][]*sam.Record),
		Failed:  make(map[string]string),
		NH:      stats.TagMap{},
	}
	for rep, recs := range byRep {
		ranked, err := rank(recs)
		if err != nil {
			return nil, errors.Wrapf(err, "ranking alignments of %s", rep)
		}
		a.Unique++
		a.NH[len(ranked)]++
		for _, name := range names(rep) {
			out := make([]*sam.Record, len(ranked))
			for i, r := range ranked {
				out[i] = r.Clone()
				out[i].Name = name
			}
			a.Rescued[name] = out
		}
	}
	for rep, seq := range failed {
		if _, ok := byRep[rep]; ok {
			continue
		}
		for _, name := range names(rep) {
			a.Failed[name] = seq
		}
	}
	return a, nil
}

// Names returns the rescued read names in lexicographic order.
func (a *Assembly) Names() []string {
	return sortedKeys(a.Rescued)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteFailed writes one "name<TAB>sequence" line per failed read.
func (a *Assembly) WriteFailed(path string) error {
	out, err := utils.NewOutput(path)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(a.Failed) {
		fmt.Fprintf(out, "%s\t%s\n", name, a.Failed[name])
	}
	return out.Close()
}

// Merge copies the records of the alignment file at source to out, except
// those of rescued reads, then writes the rescued records to out and only.
// only may be nil.
func (a *Assembly) Merge(source string, out, only RecordWriter) error {
	_, err := sam.Scan(source, func(r *sam.Record) error {
		if _, ok := a.Rescued[r.Name]; ok {
			return nil
		}
		return out.Write(r)
	})
	if err != nil {
		return err
	}
	for _, name := range a.Names() {
		for _, r := range a.Rescued[name] {
			if err := out.Write(r); err != nil {
				return err
			}
			if only != nil {
				if err := only.Write(r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Header returns a copy of h with a program line for this tool.
func Header(h *hts.Header, version, commandLine string) (*hts.Header, error) {
	c := h.Clone()
	uid := "scavenger"
	for i := 1; hasProgram(c, uid); i++ {
		uid = fmt.Sprintf("scavenger.%d", i)
	}
	p := hts.NewProgram(uid, "scavenger", commandLine, lastProgram(c), version)
	if err := c.AddProgram(p); err != nil {
		return nil, errors.Wrap(err, "cannot add program line")
	}
	return c, nil
}

func lastProgram(h *hts.Header) string {
	progs := h.Progs()
	if len(progs) == 0 {
		return ""
	}
	return progs[len(progs)-1].UID()
}

func hasProgram(h *hts.Header, uid string) bool {
	for _, p := range h.Progs() {
		if p.UID() == uid {
			return true
		}
	}
	return false
}
