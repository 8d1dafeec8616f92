package assembly

import (
	"context"
	"sync"

	"blockview/internal/profiling"
)

// assembleJob asks a worker to assemble every placement of one block.
type assembleJob struct {
	task *task
	out  *[]Assembly
	done *sync.WaitGroup
}

// Pool assembles blocks on a fixed set of goroutines. Blocks share no
// mutable state, so workers never coordinate beyond the job queue.
type Pool struct {
	jobQueue chan assembleJob
	workers  int
	profiler *profiling.Recorder
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// mu orders submits against Shutdown: once closed is set no job is
	// queued, and every job queued earlier is picked up by a worker.
	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines behind a queue of queueSize jobs.
func NewPool(workers, queueSize int, profiler *profiling.Recorder) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobQueue: make(chan assembleJob, queueSize),
		workers:  workers,
		profiler: profiler,
		ctx:      ctx,
		cancel:   cancel,
	}
	for n := 0; n < workers; n++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// submit queues a job, blocking while the queue is full. It returns false
// once the pool is shut down. Workers keep running until Shutdown holds mu,
// so a blocked send always completes.
func (p *Pool) submit(job assembleJob) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.jobQueue <- job
	return true
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			*job.out = assembleTask(job.task, p.profiler)
			job.done.Done()
		case <-p.ctx.Done():
			p.drain()
			return
		}
	}
}

// drain finishes jobs that were queued before shutdown so run never waits
// on a job no worker will pick up.
func (p *Pool) drain() {
	for {
		select {
		case job := <-p.jobQueue:
			*job.out = assembleTask(job.task, p.profiler)
			job.done.Done()
		default:
			return
		}
	}
}

// run assembles every task and waits for all of them. Jobs refused by a
// shut-down pool are assembled on the calling goroutine.
func (p *Pool) run(tasks []task, results [][]Assembly) {
	var done sync.WaitGroup
	for i := range tasks {
		if tasks[i].err != nil {
			continue
		}
		done.Add(1)
		if !p.submit(assembleJob{task: &tasks[i], out: &results[i], done: &done}) {
			results[i] = assembleTask(&tasks[i], p.profiler)
			done.Done()
		}
	}
	done.Wait()
}

// QueueLength returns the number of queued jobs.
func (p *Pool) QueueLength() int {
	return len(p.jobQueue)
}

// Shutdown stops the workers and waits for them to exit. A Walk running
// concurrently finishes its remaining blocks on its own goroutine.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
