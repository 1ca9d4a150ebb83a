//go:build !unix

package main

// RaiseSchedulingPriority is a no-op outside unix-like platforms;
// Windows' process priority class API isn't wired up here.
func RaiseSchedulingPriority() error {
	return nil
}
