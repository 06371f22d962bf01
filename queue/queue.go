// Package queue runs a phase of independent tasks on a fixed pool of workers.
//
// Tasks are fed through a bounded channel. After the last task one sentinel
// per worker is queued, and the results channel is closed only once every
// task has been marked done and every worker has returned, so results emitted
// right before a worker exits are never lost.
package queue

import "sync"

// Worker processes the tasks of one phase. Each Worker is owned by a single
// goroutine, so it may keep local state such as counters without locking.
type Worker[T, R any] interface {
	Process(task T, emit func(R))
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc[T, R any] func(task T, emit func(R))

func (f WorkerFunc[T, R]) Process(task T, emit func(R)) {
	f(task, emit)
}

type envelope[T any] struct {
	task T
	stop bool
}

// Queue is a task queue with a result queue and a join barrier.
type Queue[T, R any] struct {
	tasks   chan envelope[T]
	results chan R
	pending sync.WaitGroup
	alive   sync.WaitGroup
	n       int
}

// New starts n workers created by newWorker. buffer bounds both the task and
// the result channel.
func New[T, R any](n, buffer int, newWorker func(id int) Worker[T, R]) *Queue[T, R] {
	if n < 1 {
		n = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	q := &Queue[T, R]{
		tasks:   make(chan envelope[T], buffer),
		results: make(chan R, buffer),
		n:       n,
	}
	q.alive.Add(n)
	for i := 0; i < n; i++ {
		go q.work(newWorker(i))
	}
	return q
}

func (q *Queue[T, R]) work(w Worker[T, R]) {
	defer q.alive.Done()
	emit := func(r R) {
		q.results <- r
	}
	for e := range q.tasks {
		if e.stop {
			q.pending.Done()
			return
		}
		w.Process(e.task, emit)
		q.pending.Done()
	}
}

// Put enqueues a task. It blocks while the task buffer is full.
func (q *Queue[T, R]) Put(task T) {
	q.pending.Add(1)
	q.tasks <- envelope[T]{task: task}
}

// Close enqueues one sentinel per worker. No task may be put afterwards.
func (q *Queue[T, R]) Close() {
	for i := 0; i < q.n; i++ {
		q.pending.Add(1)
		q.tasks <- envelope[T]{stop: true}
	}
}

// Join blocks until every queued task and sentinel has been processed and all
// workers have exited, then closes the results channel.
func (q *Queue[T, R]) Join() {
	q.pending.Wait()
	q.alive.Wait()
	close(q.results)
}

// Results returns the channel the workers emit on. It is closed by Join.
func (q *Queue[T, R]) Results() <-chan R {
	return q.results
}

// Run starts n workers, feeds them from feed in a separate goroutine, and
// returns the results channel. The channel is closed after the phase is
// complete, so callers drain it with range.
func Run[T, R any](n, buffer int, newWorker func(id int) Worker[T, R], feed func(put func(T))) <-chan R {
	q := New(n, buffer, newWorker)
	go func() {
		feed(q.Put)
		q.Close()
		q.Join()
	}()
	return q.Results()
}
