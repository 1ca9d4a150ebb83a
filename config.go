// config.go - Run configuration for a machine instance

package main

import "time"

// Config collects the run-time choices that don't belong on State:
// which backends to construct, how many worker threads the executor
// should use, and the scheduling quantum. Mirrors the way GUIConfig
// collects the frontend's run-time choices, just for the machine side.
type Config struct {
	BiosPath string
	DiscPath string

	// VideoBackendKind/AudioBackendKind select a concrete backend
	// constructor; Headless works with no display/audio device present
	// (used by every test, and the default for -video/-audio on the CLI).
	VideoBackendKind VideoBackendKind
	AudioBackendKind AudioBackendKind
	CdromBackendKind CdromBackendKind

	// Workers is the worker count for the threaded executor. 0 selects
	// the unthreaded executor (one goroutine, round-robin over
	// controllers, useful for debugging and for profiling runs where
	// scheduling jitter would otherwise pollute the profile).
	Workers int

	// TimeSlice is how much guest time one round advances before the
	// barrier synchronizes all controllers again.
	TimeSlice time.Duration
}

type VideoBackendKind int

const (
	VideoBackendHeadless VideoBackendKind = iota
	VideoBackendEbiten
	VideoBackendVulkan
)

type AudioBackendKind int

const (
	AudioBackendHeadless AudioBackendKind = iota
	AudioBackendOto
)

type CdromBackendKind int

const (
	CdromBackendHeadless CdromBackendKind = iota
	CdromBackendImage
)

// DefaultConfig matches the real console's timing: 33.8688MHz CPU
// clock, a round every ~1ms of guest time by default.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		TimeSlice: time.Millisecond,
	}
}
