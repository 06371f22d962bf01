// Package stats accumulates the counters of a rescue run. Parallel phases
// keep one Stats value per worker and merge them once the phase is over.
package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type fraction float64

func (m fraction) String() string {
	return fmt.Sprintf("%.6g", float64(m))
}

func (m fraction) MarshalJSON() ([]byte, error) {
	v, err := strconv.ParseFloat(m.String(), 64)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func percent(n, total int) fraction {
	if total == 0 {
		return 0
	}
	return fraction(float64(n) / float64(total) * 100)
}

// Stats represents per-worker counters.
type Stats interface {
	Update(other Stats)
	Merge(others chan Stats)
	Finalize()
}

// Collect sends every element of s on a channel, for use with Merge.
func Collect[S Stats](s []S) chan Stats {
	c := make(chan Stats, len(s))
	for _, v := range s {
		c <- v
	}
	close(c)
	return c
}
