package queue

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

type counter struct {
	processed int
}

func (c *counter) Process(task int, emit func(int)) {
	c.processed++
	// two results per even task, none for multiples of 5
	if task%5 == 0 {
		return
	}
	emit(task * 10)
	if task%2 == 0 {
		emit(task*10 + 1)
	}
}

func TestRun(t *testing.T) {
	for _, c := range []struct {
		workers, buffer, tasks int
	}{
		{1, 0, 10},
		{4, 1, 100},
		{8, 1000, 1000},
		{3, 2, 0},
	} {
		workers := make([]*counter, c.workers)
		results := Run(c.workers, c.buffer, func(id int) Worker[int, int] {
			workers[id] = &counter{}
			return workers[id]
		}, func(put func(int)) {
			for i := 1; i <= c.tasks; i++ {
				put(i)
			}
		})

		var got []int
		for r := range results {
			got = append(got, r)
		}

		var expected []int
		for i := 1; i <= c.tasks; i++ {
			if i%5 == 0 {
				continue
			}
			expected = append(expected, i*10)
			if i%2 == 0 {
				expected = append(expected, i*10+1)
			}
		}
		sort.Ints(got)
		sort.Ints(expected)
		assert.Equal(t, expected, got, "workers=%d buffer=%d", c.workers, c.buffer)

		processed := 0
		for _, w := range workers {
			processed += w.processed
		}
		assert.Equal(t, c.tasks, processed)
	}
}

func TestQueue(t *testing.T) {
	q := New(2, 4, func(int) Worker[string, string] {
		return WorkerFunc[string, string](func(s string, emit func(string)) {
			emit(s + s)
		})
	})
	done := make(chan []string)
	go func() {
		var out []string
		for r := range q.Results() {
			out = append(out, r)
		}
		done <- out
	}()
	for _, s := range []string{"a", "b", "c"} {
		q.Put(s)
	}
	q.Close()
	q.Join()

	out := <-done
	sort.Strings(out)
	assert.Equal(t, []string{"aa", "bb", "cc"}, out)
}
