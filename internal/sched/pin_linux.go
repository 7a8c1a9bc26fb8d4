//go:build linux

// File: internal/sched/pin_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// pinCurrentThread binds the calling OS thread to a CPU core via
// golang.org/x/sys/unix.SchedSetaffinity, adapted from the teacher's cgo
// pthread_setaffinity_np pattern (internal/concurrency/pin_linux.go) into
// a pure-Go equivalent.
package sched

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func pinCurrentThread(cpuID, numaNode int) {
	runtime.LockOSThread()
	if cpuID < 0 {
		return
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	_ = unix.SchedSetaffinity(0, &set)
}
