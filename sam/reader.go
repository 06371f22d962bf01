package sam

import (
	"bufio"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// Reader reads SAM or BAM alignment files. The format is detected from the
// file content.
type Reader struct {
	recordReader
	FileName string
	f        *os.File
	bam      *bam.Reader
}

// NewReader opens an alignment file. rd is the number of concurrent BAM
// decompressors.
func NewReader(path string, rd int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(2)
	r := &Reader{FileName: path, f: f}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		r.bam, err = bam.NewReader(br, rd)
		r.recordReader = r.bam
	} else {
		r.recordReader, err = sam.NewReader(br)
	}
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "cannot read alignments from %s", path)
	}
	return r, nil
}

// Read returns the next record.
func (r *Reader) Read() (*Record, error) {
	rec, err := r.recordReader.Read()
	if err != nil {
		return nil, err
	}
	return NewRecord(rec), nil
}

// Refs returns the header references.
func (r *Reader) Refs() []*sam.Reference {
	return r.Header().Refs()
}

func (r *Reader) Close() error {
	if r.bam != nil {
		r.bam.Close()
	}
	return r.f.Close()
}

// Scan calls fn for every record of the alignment file at path, stopping at
// the first error.
func Scan(path string, fn func(*Record) error) (*sam.Header, error) {
	r, err := NewReader(path, 1)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	it := NewIterator(r)
	for it.Next() {
		if err := fn(it.Record()); err != nil {
			return nil, err
		}
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return r.Header(), nil
}

// ReadHeader returns the header of the alignment file at path.
func ReadHeader(path string) (*sam.Header, error) {
	r, err := NewReader(path, 1)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Header(), nil
}

// isEOF reports whether err marks the end of the stream.
func isEOF(err error) bool {
	return err == io.EOF || errors.Cause(err) == io.EOF
}
