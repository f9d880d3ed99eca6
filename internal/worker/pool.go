package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type task struct {
	seq int
	job Job
}

type outcome struct {
	seq    int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are drained while jobs run and Wait returns them in submission
// order. Every pool must be released with Wait or Shutdown.
type Pool struct {
	workers     int
	jobQueue    chan task
	results     chan outcome
	collected   []outcome
	collectDone chan struct{}
	next        int
	submitMu    sync.Mutex
	wg          sync.WaitGroup
	ctx         context.Context
	cancelFunc  context.CancelFunc
	closeOnce   sync.Once
	queueOnce   sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs stop when ctx is canceled
func NewPoolWithContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:     workers,
		jobQueue:    make(chan task, workers*2),
		results:     make(chan outcome, workers*2),
		collectDone: make(chan struct{}),
		ctx:         ctx,
		cancelFunc:  cancel,
	}
	go p.collect()
	return p
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- outcome{seq: t.seq, result: t.job.Execute(p.ctx)}
		}
	}
}

func (p *Pool) collect() {
	defer close(p.collectDone)
	for o := range p.results {
		p.collected = append(p.collected, o)
	}
}

// Submit queues a job. It returns without queuing once the pool is shut down.
func (p *Pool) Submit(job Job) {
	p.submitMu.Lock()
	seq := p.next
	p.next++
	p.submitMu.Unlock()

	if p.ctx.Err() != nil {
		return
	}
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- task{seq: seq, job: job}:
	}
}

// Wait waits for all submitted jobs and returns their results in submission order
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
	p.cancelFunc()

	sort.Slice(p.collected, func(i, j int) bool { return p.collected[i].seq < p.collected[j].seq })
	results := make([]Result, len(p.collected))
	for i, o := range p.collected {
		results[i] = o.result
	}
	return results
}

// Shutdown cancels running jobs and stops the workers. Jobs still queued are dropped.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
}

func (p *Pool) closeQueue() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
