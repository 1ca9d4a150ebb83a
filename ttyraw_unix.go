//go:build unix

// ttyraw_unix.go - Best-effort real-time scheduling priority for the round loop

/*
ttyraw_unix.go - Unix process priority.

Nices the process toward the front of the scheduler queue so the
executor's round barrier sees more consistent wakeup latency under
load; failure is non-fatal; -19 (max priority) usually requires
privileges this process doesn't have, so a failed call just leaves the
default niceness in place.
*/

package main

import "golang.org/x/sys/unix"

// RaiseSchedulingPriority attempts to lower this process's niceness,
// returning whatever error unix.Setpriority reports so the caller can
// log it, but never treats it as fatal.
func RaiseSchedulingPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, -10)
}
