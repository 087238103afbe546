// Package pool runs zero-argument jobs on a fixed set of worker goroutines
// fed from one unbounded FIFO queue.
package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrPoolClosed  = errors.New("pool closed")
	ErrInvalidSize = errors.New("pool size must be at least 1")
)

// Job is a unit of work executed by exactly one worker.
type Job func()

// Pool is a fixed-size worker pool. Workers are started by New and only
// exit through Shutdown.
type Pool struct {
	name string
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []Job
	head    int
	idle    int
	closing bool

	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// New starts size workers. name only appears in log lines.
func New(name string, size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	p := &Pool{
		name: name,
		size: size,
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p, nil
}

// Enqueue appends job to the queue. It never blocks; it fails only once
// Shutdown has begun.
func (p *Pool) Enqueue(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return ErrPoolClosed
	}
	p.jobs = append(p.jobs, job)
	p.cond.Signal()
	return nil
}

// Shutdown lets the workers finish every queued job, then waits for all of
// them to exit. It is safe to call more than once and from several
// goroutines; every call returns after the workers are gone.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closing = true
		p.cond.Broadcast()
		p.mu.Unlock()
		p.wg.Wait()
		log.Debug().Str("pool", p.name).Int("workers", p.size).Msg("Pool stopped")
	})
}

// Closed reports whether Shutdown has begun.
func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closing
}

func (p *Pool) Size() int {
	return p.size
}

// QueueDepth is the number of jobs waiting for a worker. It is a snapshot
// and only good for coarse decisions.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs) - p.head
}

// IdleWorkers is the number of workers blocked waiting for a job.
func (p *Pool) IdleWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle
}

func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.head == len(p.jobs) && !p.closing {
		p.idle++
		p.cond.Wait()
		p.idle--
	}
	if p.head == len(p.jobs) {
		return nil, false
	}
	job := p.jobs[p.head]
	p.jobs[p.head] = nil
	p.head++
	if p.head == len(p.jobs) {
		p.jobs = p.jobs[:0]
		p.head = 0
	}
	return job, true
}

func (p *Pool) worker(workerID int) {
	defer p.wg.Done()
	for {
		job, ok := p.next()
		if !ok {
			return
		}
		p.run(workerID, job)
	}
}

func (p *Pool) run(workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("pool", p.name).Int("worker", workerID).Interface("panic", r).Msg("Job panicked")
		}
	}()
	job()
}
