// timers.go - Three counters with overflow/target IRQ pulse/toggle and one-shot/repeat semantics

/*
timers.go - Timers 0-2.

Each timer is a free-running counter plus a MODE register whose bits
select what triggers an IRQ (overflow, reaching TARGET, or both) and
how the IRQ behaves once triggered: pulse mode re-raises every time,
toggle mode flips a status bit and only actually asserts the line on
the 1->0 transition, and an IrqRepeat mode bit gates one-shot
operation - once an IRQ has fired, no further IRQ is delivered; nothing
clears that latch once it is set. Ported from the IRQ-handling shape in the
original controller (irq.rs); the counting/sync-mode side is specific
to this translation.
*/

package main

var (
	modeIrqPulse    = NewBitfield(7, 1) // 0 = pulse, 1 = toggle
	modeIrqStatus   = NewBitfield(10, 1)
	modeIrqTarget   = NewBitfield(4, 1)
	modeIrqOverflow = NewBitfield(5, 1)
	modeIrqRepeat   = NewBitfield(6, 1) // set: suppress every IRQ after the first (the latch is never cleared)
	modeReset       = NewBitfield(3, 1) // reset counter to 0 on reaching target
)

type irqType int

const (
	irqNone irqType = iota
	irqOverflow
	irqTarget
)

// timerUnit is one of the three counters: COUNT, MODE, TARGET plus the
// one-shot latch the IRQ logic tests before raising again.
type timerUnit struct {
	count     LevelRegister32
	mode      LevelRegister32
	target    LevelRegister32
	irqRaised bool
}

type TimersState struct {
	timers [3]timerUnit
}

func NewTimersState() TimersState {
	return TimersState{}
}

func timerLine(id int) Line {
	switch id {
	case 0:
		return LineTmr0
	case 1:
		return LineTmr1
	default:
		return LineTmr2
	}
}

// TickTimer advances one timer by one guest cycle (the caller converts
// whatever clock source - system clock, dot clock, hblank - into these
// calls at the right rate) and runs the overflow/target IRQ logic.
func TickTimer(s *State, id int) {
	t := &s.Timers.timers[id]
	count := t.count.ReadU32() + 1
	target := t.target.ReadU32()

	var kind irqType
	if count >= target && target != 0 {
		kind = irqTarget
		if modeReset.ExtractFrom(t.mode.ReadU32()) != 0 {
			count = 0
		}
	}
	if count > 0xFFFF {
		count = 0
		if kind == irqNone {
			kind = irqOverflow
		}
	}
	t.count.WriteU32(count)

	if kind != irqNone {
		handleIrqTrigger(s, id, kind)
	}
}

func handleIrqTrigger(s *State, id int, kind irqType) {
	t := &s.Timers.timers[id]
	mode := t.mode.ReadU32()

	if modeIrqRepeat.ExtractFrom(mode) > 0 && t.irqRaised {
		return
	}

	switch kind {
	case irqOverflow:
		if modeIrqOverflow.ExtractFrom(mode) > 0 {
			raiseTimerIRQ(s, id)
			t.irqRaised = true
		}
	case irqTarget:
		if modeIrqTarget.ExtractFrom(mode) > 0 {
			raiseTimerIRQ(s, id)
			t.irqRaised = true
		}
	}
}

func raiseTimerIRQ(s *State, id int) {
	t := &s.Timers.timers[id]
	mode := t.mode.ReadU32()

	raise := false
	if modeIrqPulse.ExtractFrom(mode) == 0 {
		// Pulse mode: every trigger asserts the line.
		raise = true
	} else {
		// Toggle mode: flips STATUS, asserts only on the 1->0 edge.
		newStatus := modeIrqStatus.ExtractFrom(mode) ^ 1
		t.mode.WriteU32(modeIrqStatus.InsertInto(mode, newStatus))
		raise = newStatus == 0
	}

	if raise {
		s.INTC.AssertLine(timerLine(id))
	}
}
