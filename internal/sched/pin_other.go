//go:build !linux

// File: internal/sched/pin_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package sched

import "runtime"

func pinCurrentThread(cpuID, numaNode int) {
	runtime.LockOSThread()
}
