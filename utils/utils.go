package utils

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Check exits the program if err is not nil.
func Check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// Max returns the larger of a and b.
func Max(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// Min returns the smaller of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Output is a buffered file writer.
type Output struct {
	*bufio.Writer
	f *os.File
}

// Close flushes the buffer and closes the underlying file. Standard output is
// flushed but never closed.
func (o *Output) Close() error {
	if err := o.Flush(); err != nil {
		return err
	}
	if o.f == os.Stdout {
		return nil
	}
	return o.f.Close()
}

// NewOutput returns a new Output given an output file name. If the file name
// is '-' os.Stdout is used.
func NewOutput(output string) (*Output, error) {
	if output == "-" {
		return &Output{bufio.NewWriter(os.Stdout), os.Stdout}, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create %s", output)
	}
	return &Output{bufio.NewWriter(f), f}, nil
}

// OutputJSON writes the json representation of v to an io.Writer
func OutputJSON(writer io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	if _, err = writer.Write(b); err != nil {
		return err
	}
	if w, ok := writer.(*bufio.Writer); ok {
		return w.Flush()
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NonEmpty reports whether path exists and has content.
func NonEmpty(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Size() > 0
}
