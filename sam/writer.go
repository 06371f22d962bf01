package sam

import (
	"bufio"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

// Writer writes alignment records as SAM text or BAM.
type Writer struct {
	w   interface{ Write(*sam.Record) error }
	f   *os.File
	buf *bufio.Writer
	bam *bam.Writer
}

// NewWriter creates the file at path and writes the header h. wc is the
// number of concurrent BAM compressors.
func NewWriter(path string, h *sam.Header, asBAM bool, wc int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create %s", path)
	}
	w := &Writer{f: f}
	if asBAM {
		w.bam, err = bam.NewWriter(f, h, wc)
		w.w = w.bam
	} else {
		w.buf = bufio.NewWriter(f)
		w.w, err = sam.NewWriter(w.buf, h, sam.FlagDecimal)
	}
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "cannot write header to %s", path)
	}
	return w, nil
}

func (w *Writer) Write(r *Record) error {
	return w.w.Write(r.Record)
}

func (w *Writer) Close() error {
	var err error
	if w.bam != nil {
		err = w.bam.Close()
	} else {
		err = w.buf.Flush()
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}
