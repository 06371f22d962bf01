package rescue

import (
	"github.com/guigolab/scavenger/sam"
)

// Result is the outcome of a rescue for one read: either Rescued or Failed.
type Result interface {
	Read() string
}

// Rescued is a new alignment of a representative, in first pass
// coordinates.
type Rescued struct {
	Record *sam.Record
}

func (r Rescued) Read() string { return r.Record.Name }

// Failed marks a representative whose realignment could not complete.
type Failed struct {
	Name string
	Seq  string
}

func (f Failed) Read() string { return f.Name }
