package stats

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// TagMap counts reads by an integer value, such as their NH tag or the
// number of anchors supporting their locus.
type TagMap map[int]int

// Update adds the counts of other.
func (tm TagMap) Update(other TagMap) {
	for k, v := range other {
		tm[k] += v
	}
}

// Total returns the number of counted reads.
func (tm TagMap) Total() (sum int) {
	for _, v := range tm {
		sum += v
	}
	return
}

// Keys returns the values counted, in increasing order.
func (tm TagMap) Keys() []int {
	keys := make([]int, 0, len(tm))
	for k := range tm {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// MarshalJSON writes a JSON object with numerically sorted keys.
func (tm TagMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range tm.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(k)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(tm[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON.
func (tm *TagMap) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := make(TagMap, len(m))
	for key, v := range m {
		k, err := strconv.Atoi(key)
		if err != nil {
			return errors.Wrapf(err, "invalid count key %q", key)
		}
		out[k] = v
	}
	*tm = out
	return nil
}
