package seqio

import "io"

var newline = []byte{'\n'}

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}

// FastqWriter is a FASTQ file writer.
type FastqWriter struct {
	writer
}

// NewFastqWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewFastqWriter(w io.Writer) *FastqWriter {
	return &FastqWriter{writer{w: w}}
}

// Write writes one read. qual holds phred+33 characters.
// An error is returned if the write failed.
func (w *FastqWriter) Write(name, seq, qual string) error {
	w.writeln("@" + name)
	w.writeln(seq)
	w.writeln("+")
	w.writeln(qual)
	return w.err
}

// FastaWriter is a FASTA file writer.
type FastaWriter struct {
	writer
}

func NewFastaWriter(w io.Writer) *FastaWriter {
	return &FastaWriter{writer{w: w}}
}

// Write writes one unwrapped sequence.
func (w *FastaWriter) Write(name, seq string) error {
	w.writeln(">" + name)
	w.writeln(seq)
	return w.err
}
