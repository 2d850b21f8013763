// Package worker runs dither jobs on a fixed set of goroutines.
//
// Jobs are queued without bound and start in submission order as units become
// idle. Each submission yields a Future that resolves on its own, so callers
// can fan a frame out as strips and join them in any order.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/deepteams/pixelart/internal/dither"
)

// MaxWorkers bounds the number of units in a pool.
const MaxWorkers = 4

var (
	// ErrPoolClosed resolves futures of jobs that never started because the
	// pool was closed.
	ErrPoolClosed = errors.New("worker: pool closed")

	// ErrWorkerFault resolves the future of a job whose unit panicked.
	ErrWorkerFault = errors.New("worker: unit fault")
)

// DefaultSize is the pool size for this process: GOMAXPROCS clamped to
// [1, MaxWorkers].
func DefaultSize() int {
	return clampSize(runtime.GOMAXPROCS(0))
}

func clampSize(n int) int {
	return min(max(n, 1), MaxWorkers)
}

// runJob is the unit body. Tests replace it to inject faults.
var runJob = dither.Run

// Future is the pending result of one submitted job.
type Future struct {
	done chan struct{}
	res  *dither.Result
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(res *dither.Result, err error) {
	f.res, f.err = res, err
	close(f.done)
}

// Done is closed once the future has resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes or ctx is done. An expired context only
// abandons the wait; the job itself keeps running.
func (f *Future) Wait(ctx context.Context) (*dither.Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type task struct {
	job *dither.Job
	fut *Future
}

// Pool is a fixed set of worker units fed from a FIFO queue.
type Pool struct {
	log  *slog.Logger
	size int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []task
	closed bool

	wg sync.WaitGroup
}

// New starts a pool of n units, clamped to [1, MaxWorkers]. A nil logger
// discards.
func New(n int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Pool{
		log:  logger,
		size: clampSize(n),
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(p.size)
	for id := 0; id < p.size; id++ {
		go p.unit(id)
	}
	p.log.Debug("worker pool started", "units", p.size)
	return p
}

// Size returns the number of units.
func (p *Pool) Size() int {
	return p.size
}

// Submit queues job and returns its future. It never blocks. The job's
// buffers belong to the pool until the future resolves.
func (p *Pool) Submit(job *dither.Job) *Future {
	fut := newFuture()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		fut.resolve(nil, ErrPoolClosed)
		return fut
	}
	p.queue = append(p.queue, task{job: job, fut: fut})
	p.mu.Unlock()
	p.cond.Signal()
	return fut
}

// Pending returns the number of queued jobs that have not started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Close stops the pool. Jobs already running finish and resolve normally;
// queued jobs resolve with ErrPoolClosed. Close waits for every unit to exit
// and may be called more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	pending := p.queue
	p.queue = nil
	p.mu.Unlock()
	p.cond.Broadcast()

	for _, t := range pending {
		t.fut.resolve(nil, ErrPoolClosed)
	}
	p.wg.Wait()
	p.log.Debug("worker pool stopped", "rejected", len(pending))
}

func (p *Pool) next() (task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return task{}, false
	}
	t := p.queue[0]
	p.queue[0] = task{}
	p.queue = p.queue[1:]
	return t, true
}

func (p *Pool) unit(id int) {
	defer p.wg.Done()
	for {
		t, ok := p.next()
		if !ok {
			return
		}
		res, err := p.run(id, t.job)
		t.fut.resolve(res, err)
	}
}

func (p *Pool) run(id int, job *dither.Job) (res *dither.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("worker unit panicked", "unit", id, "panic", r)
			res, err = nil, fmt.Errorf("%w: %v", ErrWorkerFault, r)
		}
	}()
	return runJob(job)
}
