// File: internal/sched/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package sched

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/eapache/queue"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("sched: pool closed")

// Task is a unit of work dispatched to a Pool worker.
type Task func()

// Pool is a fixed-size worker group draining a single shared ready queue,
// one pool per ThreadPool group (spec.md §5).
type Pool struct {
	mu    sync.Mutex
	cond  *sync.Cond
	ready *queue.Queue

	stop    chan struct{}
	stopped bool
	wg      sync.WaitGroup

	yieldMode YieldMode
}

// NewPool starts args.NumThreads workers honoring args.AffinityMode/List
// and args.YieldMode. A NumThreads of 0 defaults to 1.
func NewPool(args Args) *Pool {
	n := args.NumThreads
	if n <= 0 {
		n = 1
	}
	p := &Pool{
		ready:     queue.New(),
		stop:      make(chan struct{}),
		yieldMode: args.YieldMode,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < n; i++ {
		cpuID := -1
		numaNode := -1
		if len(args.AffinityList) > 0 {
			slot := args.AffinityList[i%len(args.AffinityList)]
			switch args.AffinityMode {
			case AffinityCPU:
				cpuID = slot
			case AffinityNUMA:
				numaNode = slot
			}
		}
		p.wg.Add(1)
		go p.runWorker(cpuID, numaNode)
	}
	return p
}

// Submit enqueues a task for the next available worker. Returns
// ErrPoolClosed once Close has been called.
func (p *Pool) Submit(t Task) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.ready.Add(t)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// Close stops accepting new work and waits for in-flight tasks to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	close(p.stop)
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) runWorker(cpuID, numaNode int) {
	defer p.wg.Done()
	if cpuID >= 0 || numaNode >= 0 {
		pinCurrentThread(cpuID, numaNode)
	}

	for {
		task, ok := p.dequeue()
		if !ok {
			return
		}
		if task != nil {
			task()
		}
	}
}

// dequeue pulls the next task, blocking per the configured YieldMode when
// the queue is empty. Returns ok=false once the pool has stopped and
// drained.
func (p *Pool) dequeue() (Task, bool) {
	p.mu.Lock()
	for {
		if p.ready.Length() > 0 {
			item := p.ready.Remove()
			p.mu.Unlock()
			t, _ := item.(Task)
			return t, true
		}
		select {
		case <-p.stop:
			p.mu.Unlock()
			return nil, false
		default:
		}
		switch p.yieldMode {
		case YieldSpin:
			p.mu.Unlock()
			runtime.Gosched()
			p.mu.Lock()
		case YieldHybrid:
			p.mu.Unlock()
			for i := 0; i < 64; i++ {
				runtime.Gosched()
			}
			time.Sleep(time.Microsecond)
			p.mu.Lock()
		default: // YieldCond
			p.cond.Wait()
		}
	}
}
