// driver.go - Machine lifecycle: construct backends, boot, run rounds

/*
driver.go - Machine.

Owns the State, the ControllerContext, and the executor, and runs the
round loop: TimeSlice worth of guest cycles per round, handed to every
controller simultaneously, then the barrier, then the next round: a
conventional emulator run loop, fanned out across nine controllers
instead of one.
*/

package main

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// Machine ties together a State, its backends, and an executor.
type Machine struct {
	Config Config
	State  *State
	ctx    *ControllerContext

	threaded *ThreadedExecutor

	cyclesPerRound uint64
}

const psxCPUClockHz = 33868800

// NewMachine constructs a fresh machine from cfg: allocates State,
// constructs the three backend kinds cfg selects, and (if cfg.Workers
// > 0) spins up the threaded executor's worker pool.
func NewMachine(cfg Config) (*Machine, error) {
	video, err := newVideoBackend(cfg.VideoBackendKind)
	if err != nil {
		return nil, fmt.Errorf("machine: video backend: %w", err)
	}
	audio, err := newAudioBackend(cfg.AudioBackendKind)
	if err != nil {
		return nil, fmt.Errorf("machine: audio backend: %w", err)
	}
	cdrom, err := newCdromBackend(cfg.CdromBackendKind, cfg.DiscPath)
	if err != nil {
		return nil, fmt.Errorf("machine: cdrom backend: %w", err)
	}

	s := NewState(cfg)
	s.Initialize()

	m := &Machine{
		Config: cfg,
		State:  s,
		ctx: &ControllerContext{
			State:        s,
			VideoBackend: video,
			AudioBackend: audio,
			CdromBackend: cdrom,
		},
		cyclesPerRound: uint64(cfg.TimeSlice.Seconds() * psxCPUClockHz),
	}
	if m.cyclesPerRound == 0 {
		m.cyclesPerRound = 1
	}
	if cfg.Workers > 0 {
		m.threaded = NewThreadedExecutor(cfg.Workers)
	}
	return m, nil
}

func newVideoBackend(kind VideoBackendKind) (VideoBackend, error) {
	switch kind {
	case VideoBackendEbiten:
		return NewEbitenVideoBackend(), nil
	case VideoBackendVulkan:
		return NewVulkanVideoBackend()
	default:
		return NewHeadlessVideoBackend(), nil
	}
}

func newAudioBackend(kind AudioBackendKind) (AudioBackend, error) {
	switch kind {
	case AudioBackendOto:
		return NewOtoAudioBackend()
	default:
		return NewHeadlessAudioBackend(), nil
	}
}

func newCdromBackend(kind CdromBackendKind, discPath string) (CdromBackend, error) {
	switch kind {
	case CdromBackendImage:
		if discPath == "" {
			return NewHeadlessCdromBackend(), nil
		}
		return NewImageCdromBackend(discPath)
	default:
		return NewHeadlessCdromBackend(), nil
	}
}

// SetDebugOverlay toggles whether every submitted frame gets a
// round/PC diagnostic line burned into its corner.
func (m *Machine) SetDebugOverlay(enabled bool) {
	m.ctx.DebugOverlay = enabled
}

// LoadBIOS reads a BIOS image from disk and installs it into the
// machine's memory.
func (m *Machine) LoadBIOS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("machine: read bios: %w", err)
	}
	return m.State.LoadBIOS(data)
}

// Start brings up every backend concurrently so they're ready to
// receive frames, samples, and sector reads before the first round
// runs; errgroup collects the first failure across the three.
func (m *Machine) Start() error {
	var g errgroup.Group
	g.Go(m.ctx.VideoBackend.Start)
	g.Go(m.ctx.AudioBackend.Start)
	g.Go(m.ctx.CdromBackend.Open)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("machine: start: %w", err)
	}
	return nil
}

// Stop tears down every backend and, if the executor is threaded,
// joins its worker pool. Every backend gets a chance to close even if
// an earlier one fails.
func (m *Machine) Stop() error {
	if m.threaded != nil {
		m.threaded.Close()
	}
	var g errgroup.Group
	g.Go(m.ctx.VideoBackend.Stop)
	g.Go(m.ctx.AudioBackend.Stop)
	g.Go(m.ctx.CdromBackend.Close)
	return g.Wait()
}

// RunRound advances the machine by one TimeSlice: every controller
// runs against the same Event array, synchronized by the barrier (or,
// unthreaded, a plain sequential pass). Returns any controller errors
// collected that round - a non-empty result doesn't stop the machine,
// it's surfaced for the caller (CLI, debug monitor) to report.
func (m *Machine) RunRound() []string {
	events := EvenEvents(Ticks(m.cyclesPerRound))
	m.ctx.RoundCount++
	if m.threaded != nil {
		return m.threaded.RunRound(m.ctx, events)
	}
	return RunRoundUnthreaded(m.ctx, events)
}

// Run drives rounds forever until stop is closed, printing any
// round-level controller errors to stderr as they occur.
func (m *Machine) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		for _, e := range m.RunRound() {
			fmt.Fprintf(os.Stderr, "go-psx: %s\n", e)
		}
	}
}
