package sam

// Iterator steps through the records of a Reader.
type Iterator struct {
	r   *Reader
	rec *Record
	err error
	// MaxReads bounds the number of records returned. Negative means no limit.
	MaxReads, Reads int
}

func NewIterator(r *Reader) *Iterator {
	return &Iterator{r: r, MaxReads: -1}
}

func (i *Iterator) Next() bool {
	if i.err != nil || (i.MaxReads >= 0 && i.Reads >= i.MaxReads) {
		return false
	}
	i.rec, i.err = i.r.Read()
	if i.err != nil {
		return false
	}
	i.Reads++
	return true
}

func (i *Iterator) Record() *Record {
	return i.rec
}

// Error returns the error that stopped the iteration, if it was not the end
// of the stream.
func (i *Iterator) Error() error {
	if i.err == nil || isEOF(i.err) {
		return nil
	}
	return i.err
}
