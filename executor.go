// executor.go - Round-barrier controller executor, unthreaded and threaded variants

/*
executor.go - Controller executor.

Ports executor.rs's partitioned worker-pool design: a fixed-size thread
pool where each worker owns a rotated starting partition over the 9
controllers, a shared task_status array under one mutex+condvar, and a
two-phase round protocol - publish the round's events and mark every
controller Pending, broadcast, then wait until every controller reaches
Finished before returning. sync.Mutex/sync.Cond replace
parking_lot::Mutex/Condvar; the controller context is passed as an
ordinary Go pointer instead of the original's raw NonNull, since Go's
GC and escape analysis make that indirection unnecessary.

The unthreaded variant is a plain sequential loop over the same handler
table, useful for -workers=0 runs and for tests that want fully
deterministic ordering.
*/

package main

import (
	"fmt"
	"sync"
)

const controllerCount = 9

const (
	ctrlR3000 = iota
	ctrlINTC
	ctrlDMAC
	ctrlGPU
	ctrlSPU
	ctrlTimers
	ctrlCDROM
	ctrlPADMC
	ctrlCRTC
)

var controllerNames = [controllerCount]string{
	"r3000", "intc", "dmac", "gpu", "spu", "timers", "cdrom", "padmc", "crtc",
}

// ControllerHandler runs one controller for one round's worth of Event
// and returns an error describing a round-level fault (never panics on
// guest misbehavior - bus errors and the like are absorbed by the
// controller itself).
type ControllerHandler func(ctx *ControllerContext, event Event) error

var controllerHandlers = [controllerCount]ControllerHandler{
	ctrlR3000: func(ctx *ControllerContext, event Event) error {
		for i := uint64(0); i < uint64(event.Time); i++ {
			if err := StepCPU(ctx.State); err != nil {
				return err
			}
		}
		return nil
	},
	ctrlINTC: func(ctx *ControllerContext, event Event) error {
		TickIntc(ctx.State)
		return nil
	},
	ctrlDMAC: func(ctx *ControllerContext, event Event) error {
		TickDmac(ctx.State, event.Time)
		return nil
	},
	ctrlGPU: func(ctx *ControllerContext, event Event) error {
		return nil // GP0 words arrive only through PushGP0 from DMA channel 2, nothing to pump per round
	},
	ctrlSPU: func(ctx *ControllerContext, event Event) error {
		HandleCurrentVolume(ctx.State)
		HandleTransfer(ctx.State)
		TickVoices(ctx.State)
		if ctx.AudioBackend != nil {
			sampleCount := int(uint64(event.Time) * psxAudioSampleRate / psxCPUClockHz)
			if sampleCount > 0 {
				if err := ctx.AudioBackend.SubmitSamples(MixVoices(ctx.State, sampleCount)); err != nil {
					return err
				}
			}
		}
		return nil
	},
	ctrlTimers: func(ctx *ControllerContext, event Event) error {
		for id := 0; id < 3; id++ {
			for i := Ticks(0); i < event.Time; i++ {
				TickTimer(ctx.State, id)
			}
		}
		return nil
	},
	ctrlCDROM: func(ctx *ControllerContext, event Event) error {
		for i := Ticks(0); i < event.Time; i++ {
			TickCdrom(ctx.State, ctx.CdromBackend)
		}
		return nil
	},
	ctrlPADMC: func(ctx *ControllerContext, event Event) error {
		for i := Ticks(0); i < event.Time; i++ {
			TickPadmc(ctx.State)
		}
		return nil
	},
	ctrlCRTC: func(ctx *ControllerContext, event Event) error {
		AdvanceCRTC(ctx.State, event.Time)
		if ctx.VideoBackend != nil {
			if fb, ok := TakeFrame(ctx.State); ok {
				if ctx.DebugOverlay {
					DrawOverlay(fb, OverlayRoundInfo(ctx.RoundCount, ctx.State.CPU.PC))
				}
				return ctx.VideoBackend.SubmitFrame(fb)
			}
		}
		return nil
	},
}

type taskStatus int

const (
	taskFinished taskStatus = iota
	taskPending
	taskRunning
)

type threadStatus struct {
	exited     bool
	taskStatus [controllerCount]taskStatus
	errors     []string
}

type threadState struct {
	mu   sync.Mutex
	cond *sync.Cond

	context *ControllerContext
	events  [controllerCount]Event

	status threadStatus
}

func newThreadState() *threadState {
	ts := &threadState{}
	ts.cond = sync.NewCond(&ts.mu)
	for i := range ts.status.taskStatus {
		ts.status.taskStatus[i] = taskFinished
	}
	return ts
}

func (ts *threadState) workerLoop(partitionIndex int) {
	for {
		for offset := 0; offset < controllerCount; offset++ {
			idx := (partitionIndex + offset) % controllerCount

			ts.mu.Lock()
			for {
				if ts.status.exited {
					ts.mu.Unlock()
					return
				}
				if ts.status.taskStatus[idx] == taskPending {
					ts.status.taskStatus[idx] = taskRunning
					break
				}
				ts.cond.Wait()
			}
			ctx := ts.context
			event := ts.events[idx]
			ts.mu.Unlock()

			err := controllerHandlers[idx](ctx, event)

			ts.mu.Lock()
			ts.status.taskStatus[idx] = taskFinished
			if err != nil {
				ts.status.errors = append(ts.status.errors, fmt.Sprintf("%s: %v", controllerNames[idx], err))
			}
			ts.cond.Broadcast()
			ts.mu.Unlock()
		}
	}
}

// ThreadedExecutor runs every round across a fixed worker pool with a
// per-round barrier.
type ThreadedExecutor struct {
	state *threadState
	done  chan struct{}
	wg    *sync.WaitGroup
}

// NewThreadedExecutor spawns workerCount goroutines, each starting its
// per-round scan at a different controller so no single controller is
// always picked up last.
func NewThreadedExecutor(workerCount int) *ThreadedExecutor {
	if workerCount <= 0 {
		panic("executor: workerCount must be positive")
	}
	ts := newThreadState()
	wg := &sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		partition := i * controllerCount / workerCount
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			ts.workerLoop(p)
		}(partition)
	}
	return &ThreadedExecutor{state: ts, wg: wg}
}

// Close signals every worker to exit and waits for the goroutine pool
// to drain, the Go equivalent of ThreadedExecutor's Drop.
func (e *ThreadedExecutor) Close() {
	e.state.mu.Lock()
	e.state.status.exited = true
	e.state.cond.Broadcast()
	e.state.mu.Unlock()
	e.wg.Wait()
}

// RunRound publishes one round's events to every controller, releases
// the worker pool, and blocks until every controller reports Finished.
func (e *ThreadedExecutor) RunRound(ctx *ControllerContext, events [controllerCount]Event) []string {
	ts := e.state

	ts.mu.Lock()
	ts.context = ctx
	ts.events = events
	for i := range ts.status.taskStatus {
		ts.status.taskStatus[i] = taskPending
	}
	ts.cond.Broadcast()
	ts.mu.Unlock()

	ts.mu.Lock()
	for {
		allFinished := true
		for i := 0; i < controllerCount; i++ {
			if ts.status.taskStatus[i] != taskFinished {
				allFinished = false
				break
			}
		}
		if allFinished {
			break
		}
		ts.cond.Wait()
	}
	errors := ts.status.errors
	ts.status.errors = nil
	ts.mu.Unlock()

	return errors
}

// RunRoundUnthreaded runs every controller sequentially in index order
// on the calling goroutine - no worker pool, no barrier, fully
// deterministic ordering.
func RunRoundUnthreaded(ctx *ControllerContext, events [controllerCount]Event) []string {
	var errors []string
	for i := 0; i < controllerCount; i++ {
		if err := controllerHandlers[i](ctx, events[i]); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", controllerNames[i], err))
		}
	}
	return errors
}

// EvenEvents builds the 9-entry event array every round needs, one
// Time event per controller, every one carrying the same ticks; no
// per-controller bias is applied.
func EvenEvents(ticks Ticks) [controllerCount]Event {
	var events [controllerCount]Event
	for i := range events {
		events[i] = Event{Kind: EventTime, Time: ticks}
	}
	return events
}
