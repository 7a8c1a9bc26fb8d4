// File: internal/sched/args.go
// Package sched implements the scheduler's thread pool: a fixed group of
// OS-thread-backed workers pulling from a shared ready queue, one pool
// per affinity/priority group, shared across every WorkerActor in that
// group (spec.md §5 "one worker thread pool is shared across all actors
// in a ThreadPool group").
//
// Grounded on the teacher's internal/concurrency/executor.go (eapache/queue
// dispatch loop) and internal/concurrency/threadpool.go (pool wraps
// executor); CPU pinning adapted from internal/concurrency/pin_linux.go's
// cgo pthread_setaffinity_np pattern, reimplemented without cgo via
// golang.org/x/sys/unix.SchedSetaffinity to keep the pool buildable
// without a C toolchain.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package sched

// Priority is a coarse scheduling hint in [-1, +1] (spec.md §3
// ThreadPoolArgs.priority): negative lowers, positive raises OS thread
// niceness where the platform supports it.
type Priority int

const (
	PriorityLow    Priority = -1
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

// AffinityMode selects how AffinityList is interpreted.
type AffinityMode int

const (
	// AffinityAll means workers float freely across all CPUs.
	AffinityAll AffinityMode = iota
	// AffinityNUMA pins each worker to a NUMA node listed in AffinityList.
	AffinityNUMA
	// AffinityCPU pins each worker to a specific CPU index in AffinityList.
	AffinityCPU
)

// YieldMode controls how an idle worker waits for ready-queue work.
type YieldMode int

const (
	// YieldCond blocks on a condition variable until woken (lowest CPU use).
	YieldCond YieldMode = iota
	// YieldHybrid briefly spins, then falls back to YieldCond.
	YieldHybrid
	// YieldSpin never blocks, busy-polling the ready queue.
	YieldSpin
)

// Args configures a Pool (spec.md §3 ThreadPoolArgs).
type Args struct {
	NumThreads   int
	Priority     Priority
	AffinityMode AffinityMode
	AffinityList []int
	YieldMode    YieldMode
}
