// Package seqio reads FASTA/FASTQ files and writes the small FASTA and FASTQ
// files handed to the external aligners.
package seqio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

func init() {
	// genomes and reads may carry IUPAC codes or lower case masking
	seq.ValidateSeq = false
}

// Record is a sequence read from a FASTA or FASTQ file. Qual is empty for
// FASTA records and holds the phred+33 characters otherwise.
type Record struct {
	ID   string
	Seq  []byte
	Qual []byte
}

// Reader reads FASTA or FASTQ records, plain or compressed.
type Reader struct {
	file string
	r    *fastx.Reader
}

func NewReader(file string) (*Reader, error) {
	r, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seq file %s", file)
	}
	return &Reader{file: file, r: r}, nil
}

// Read returns the next record or io.EOF.
func (r *Reader) Read() (*Record, error) {
	record, err := r.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, errors.Wrapf(err, "read seq in %s", r.file)
	}
	return &Record{
		ID:   string(record.ID),
		Seq:  append([]byte(nil), record.Seq.Seq...),
		Qual: append([]byte(nil), record.Seq.Qual...),
	}, nil
}

func (r *Reader) Close() {
	r.r.Close()
}

// Each calls fn for every record of files, in order.
func Each(files []string, fn func(*Record) error) error {
	for _, file := range files {
		r, err := NewReader(file)
		if err != nil {
			return err
		}
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err == nil {
				err = fn(record)
			}
			if err != nil {
				r.Close()
				return err
			}
		}
		r.Close()
	}
	return nil
}
