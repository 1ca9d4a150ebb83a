// state.go - Shared machine state, the single struct every controller touches each round

package main

import "sync/atomic"

// Event is the unit of work a round hands to every controller. Only a
// time slice exists today; the type stays an explicit sum so a future
// event kind (e.g. a debug breakpoint) doesn't need every call site
// touched.
type Event struct {
	Kind EventKind
	Time Ticks
}

type EventKind int

const (
	EventTime EventKind = iota
)

// Ticks counts CPU clock cycles, the common currency every controller
// converts its own clock domain to/from.
type Ticks uint64

// ControllerContext is what a controller needs to run one round: the
// shared State plus the backends it may render to or read input from.
// Controllers that don't touch a given backend simply ignore it - e.g.
// the DMAC never looks at VideoBackend.
type ControllerContext struct {
	State        *State
	VideoBackend VideoBackend
	AudioBackend AudioBackend
	CdromBackend CdromBackend

	// DebugOverlay burns round/PC diagnostics into each submitted
	// frame, for headless -script captures with no other way to see
	// register state alongside the video output.
	DebugOverlay bool
	RoundCount   uint64
}

// State aggregates every controller's register/memory state behind one
// struct, mirroring the monolithic State the executor hands each
// controller by reference every round. Controllers reach into their own
// field and, for cross-controller effects (DMAC driving the GPU FIFO,
// INTC lines raised by everyone), into a sibling's field directly - the
// same shape as the original, just without its lifetime parameters.
type State struct {
	CPU    CPUState
	COP0   COP0State
	INTC   IntcState
	DMAC   DmacState
	Timers TimersState
	GPU    GPUState
	CRTC   CRTCState
	CDROM  CdromState
	SPU    SPUState
	PADMC  PadmcState
	Memory MemoryState

	// BusLocked mirrors the original's rationale exactly: the CPU is
	// treated as stalled while a DMA transfer owns the bus, since guest
	// code relies on that stall instead of always waiting on an
	// interrupt before touching a transfer's destination buffer.
	BusLocked atomic.Bool
}

// NewState builds a State with every controller's zero-value/reset
// register state and a fresh, zeroed memory image.
func NewState(cfg Config) *State {
	s := &State{}
	s.Memory = NewMemoryState(cfg)
	s.CPU = NewCPUState()
	s.COP0 = NewCOP0State()
	s.INTC = NewIntcState()
	s.DMAC = NewDmacState()
	s.Timers = NewTimersState()
	s.GPU = NewGPUState()
	s.CRTC = NewCRTCState()
	s.CDROM = NewCdromState()
	s.SPU = NewSPUState()
	s.PADMC = NewPadmcState()
	return s
}

// Initialize seeds CPU/COP0 registers to the values the real console's
// reset vector dispatch expects before the BIOS's first instruction
// fetch (stack pointer undefined, PC at the BIOS reset vector, COP0
// SR/PRId set for a cold boot).
func (s *State) Initialize() {
	InitializeCPU(s)
}

// LoadBIOS copies a raw BIOS image into the BIOS ROM window. The image
// must be exactly BiosSize bytes, matching the real console's fixed
// 512KiB BIOS ROM.
func (s *State) LoadBIOS(data []byte) error {
	return s.Memory.LoadBIOS(data)
}
