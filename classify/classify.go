// Package classify splits a first pass alignment into uniquely mapped read
// names and unmapped reads grouped by sequence.
package classify

import (
	"sort"

	"github.com/guigolab/scavenger/config"
	"github.com/guigolab/scavenger/sam"
	"github.com/pkg/errors"
)

// ErrMissingQuality is returned for an unmapped record without base
// qualities.
var ErrMissingQuality = errors.New("unmapped read without base qualities")

// Group holds the names of the unmapped reads sharing one sequence. The last
// name is the representative of the group.
type Group struct {
	Seq   string
	Names []string
}

// Representative returns the name standing in for the whole group.
func (g *Group) Representative() string {
	return g.Names[len(g.Names)-1]
}

// Counts of primary records.
type Counts struct {
	Total    int `json:"total"`
	Mapped   int `json:"mapped"`
	Unmapped int `json:"unmapped"`
}

// Result is the outcome of a classification.
type Result struct {
	// Mapped holds the names of uniquely mapped reads.
	Mapped map[string]struct{}
	// Groups maps each unique unmapped sequence to its group.
	Groups map[string]*Group
	Counts Counts
}

// Sequences returns the unique unmapped sequences in lexicographic order.
func (r *Result) Sequences() []string {
	seqs := make([]string, 0, len(r.Groups))
	for s := range r.Groups {
		seqs = append(seqs, s)
	}
	sort.Strings(seqs)
	return seqs
}

// ByRepresentative indexes the groups by representative name.
func (r *Result) ByRepresentative() map[string]*Group {
	m := make(map[string]*Group, len(r.Groups))
	for _, g := range r.Groups {
		m[g.Representative()] = g
	}
	return m
}

type best struct {
	name string
	qual int
}

// Classifier accumulates the records of a first pass alignment.
type Classifier struct {
	res  *Result
	best map[string]best
}

func New() *Classifier {
	return &Classifier{
		res: &Result{
			Mapped: make(map[string]struct{}),
			Groups: make(map[string]*Group),
		},
		best: make(map[string]best),
	}
}

// Add classifies one record. Secondary and supplementary records are
// ignored.
func (c *Classifier) Add(r *sam.Record) error {
	if !r.IsPrimary() {
		return nil
	}
	if r.IsPaired() {
		return errors.Wrapf(config.ErrPairedEnd, "read %s", r.Name)
	}
	if !r.IsUnmapped() {
		c.res.Counts.Mapped++
		if r.IsUniq() {
			c.res.Mapped[r.Name] = struct{}{}
		}
		return nil
	}
	if !r.HasQual() {
		return errors.Wrapf(ErrMissingQuality, "read %s", r.Name)
	}
	c.res.Counts.Unmapped++

	seq := r.Sequence()
	g, ok := c.res.Groups[seq]
	if !ok {
		g = &Group{Seq: seq}
		c.res.Groups[seq] = g
	}
	q := r.QualSum()
	b, ok := c.best[seq]
	switch {
	case !ok:
		c.best[seq] = best{r.Name, q}
	case q > b.qual:
		g.Names = append(g.Names, b.name)
		c.best[seq] = best{r.Name, q}
	default:
		g.Names = append(g.Names, r.Name)
	}
	return nil
}

// Result closes every group with its representative and returns the
// classification. The Classifier must not be used afterwards.
func (c *Classifier) Result() *Result {
	for seq, b := range c.best {
		g := c.res.Groups[seq]
		g.Names = append(g.Names, b.name)
	}
	c.best = nil
	c.res.Counts.Total = c.res.Counts.Mapped + c.res.Counts.Unmapped
	return c.res
}

// File classifies the alignment file at path.
func File(path string) (*Result, error) {
	c := New()
	if _, err := sam.Scan(path, c.Add); err != nil {
		return nil, err
	}
	return c.Result(), nil
}
