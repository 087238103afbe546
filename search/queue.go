package search

import (
	"sync"

	"github.com/timewinder-dev/treesearch/tree"
)

// task schedules one node for a visit. It is consumed once.
type task[T comparable] struct {
	node  *tree.Node[T]
	depth int
}

// taskQueue is the run-local FIFO shared by the search workers. Once closed
// it refuses pushes and pop stops handing out tasks, leaving the remainder
// for drain.
type taskQueue[T comparable] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []task[T]
	head   int
	closed bool
}

func newTaskQueue[T comparable]() *taskQueue[T] {
	q := &taskQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *taskQueue[T]) push(t task[T]) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, t)
	q.cond.Signal()
	return true
}

// pop blocks until a task is available or the queue is closed.
func (q *taskQueue[T]) pop() (task[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return task[T]{}, false
	}
	t := q.items[q.head]
	q.items[q.head] = task[T]{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return t, true
}

func (q *taskQueue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// drain discards everything still queued and returns how many tasks were
// dropped.
func (q *taskQueue[T]) drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items) - q.head
	q.items = nil
	q.head = 0
	return n
}
