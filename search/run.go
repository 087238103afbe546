package search

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/treesearch/tree"
)

// run is the state of one Search call. Nothing in it outlives the call.
type run[T comparable] struct {
	id       uuid.UUID
	target   T
	cutoff   int
	maxSpawn int
	queue    *taskQueue[T]

	// found is the cancellation flag. Only the goroutine that flips it
	// writes result, and it does so before closing done.
	found  atomic.Bool
	result *tree.Node[T]

	// aborted is set once a task panics. err is written once, before
	// aborted, and read only after every worker has returned.
	aborted  atomic.Bool
	err      error
	failOnce sync.Once

	inFlight atomic.Int64
	visited  atomic.Int64
	spawned  atomic.Int64
	skipped  atomic.Int64

	done     chan struct{}
	doneOnce sync.Once
}

func newRun[T comparable](cfg Config, target T) *run[T] {
	return &run[T]{
		id:       uuid.New(),
		target:   target,
		cutoff:   cfg.CutoffDepth,
		maxSpawn: cfg.MaxSpawnPerNode,
		queue:    newTaskQueue[T](),
		done:     make(chan struct{}),
	}
}

// seed queues the root task.
func (r *run[T]) seed(root *tree.Node[T]) {
	r.inFlight.Add(1)
	r.queue.push(task[T]{node: root})
}

// finish wakes the caller waiting in Search. Closing done publishes every
// write made before it, result included.
func (r *run[T]) finish() {
	r.doneOnce.Do(func() { close(r.done) })
}

// release retires one task. The last release of an exhausted run finishes it.
func (r *run[T]) release() {
	if r.inFlight.Add(-1) == 0 {
		r.finish()
	}
}

func (r *run[T]) cancelled() bool {
	return r.found.Load() || r.aborted.Load()
}

// fail records the first panic of the run, cancels it and wakes the caller.
func (r *run[T]) fail(p any) {
	r.failOnce.Do(func() {
		r.err = fmt.Errorf("%w: %v", ErrWorkerPanic, p)
		r.aborted.Store(true)
	})
	log.Error().Str("run", r.id.String()).Interface("panic", p).Msg("Search task panicked")
	r.finish()
}

// work is the loop each worker runs until the queue is closed.
func (r *run[T]) work() {
	for {
		t, ok := r.queue.pop()
		if !ok {
			return
		}
		r.handle(t)
	}
}

// handle runs one task. The task is always retired, even when it panics.
// Tasks popped after cancellation are retired without being looked at.
func (r *run[T]) handle(t task[T]) {
	defer r.release()
	defer func() {
		if p := recover(); p != nil {
			r.fail(p)
		}
	}()
	if r.cancelled() {
		r.skipped.Add(1)
		return
	}
	r.process(t)
}

// visit counts n and reports whether the caller should stop, either because
// n matched or because another worker already did.
func (r *run[T]) visit(n *tree.Node[T]) bool {
	r.visited.Add(1)
	if n.Value != r.target {
		return false
	}
	if r.found.CompareAndSwap(false, true) {
		r.result = n
		r.finish()
	}
	return true
}

func (r *run[T]) process(t task[T]) {
	if r.visit(t.node) {
		return
	}
	children := t.node.Children
	if t.depth < r.cutoff {
		spawn := min(len(children), r.maxSpawn)
		for _, c := range children[:spawn] {
			if c == nil {
				continue
			}
			if r.cancelled() {
				return
			}
			// Count the child before it becomes visible so inFlight never
			// reads zero while work is still being created.
			r.inFlight.Add(1)
			if !r.queue.push(task[T]{node: c, depth: t.depth + 1}) {
				r.release()
				return
			}
			r.spawned.Add(1)
		}
		children = children[spawn:]
	}
	r.sequential(children)
}

// sequential searches the subtrees rooted at nodes depth first, in order,
// on the calling worker. It checks for cancellation before every visit.
func (r *run[T]) sequential(nodes []*tree.Node[T]) {
	stack := make([]*tree.Node[T], 0, len(nodes))
	stack = pushReversed(stack, nodes)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.cancelled() || r.visit(n) {
			return
		}
		stack = pushReversed(stack, n.Children)
	}
}

func pushReversed[T comparable](stack, nodes []*tree.Node[T]) []*tree.Node[T] {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i] != nil {
			stack = append(stack, nodes[i])
		}
	}
	return stack
}
