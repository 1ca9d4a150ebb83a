// padmc.go - Pad/memcard serial interface

/*
padmc.go - PAD/memcard controller.

A byte-wide TX/RX FIFO pair plus a 16-bit CTRL register, the lightest
of the nine controllers. A write to the data port pushes to TX; a read
pops from RX, returning 0xFF on an empty FIFO rather than blocking, the
same "return a sentinel instead of stalling the CPU" choice the
original Padmc1040 read path makes. TickPadmc is the device-side pump:
it loops TX back to RX with the fixed pad ACK/ID byte sequence a
disconnected-but-present digital pad reports, since no physical input
backend is modeled.
*/

package main

const padmcFifoCapacity = 8

type PadmcState struct {
	ctrl LevelRegister16

	tx *Fifo[byte]
	rx *Fifo[byte]

	selected bool
	txCount  int
}

func NewPadmcState() PadmcState {
	return PadmcState{
		tx: NewFifo[byte](padmcFifoCapacity),
		rx: NewFifo[byte](padmcFifoCapacity),
	}
}

// digital pad ID response: 0x41 (ID lo), 0x5A (ID hi), then button state
// (all released = 0xFFFF) - enough for a BIOS pad-detect poll to see
// "pad present, nothing pressed".
var padIDResponse = []byte{0x41, 0x5A, 0xFF, 0xFF}

// WriteData pushes one byte to the TX FIFO (the guest's outgoing
// command/clock byte).
func (p *PadmcState) WriteData(b byte) {
	p.tx.Push(b)
}

// ReadData pops one byte from the RX FIFO, returning 0xFF (all ones,
// the idle serial line level) if nothing has arrived yet.
func (p *PadmcState) ReadData() byte {
	v, err := p.rx.Pop()
	if err != nil {
		return 0xFF
	}
	return v
}

// TickPadmc drains any transmitted byte and queues the corresponding
// reply byte, walking through the fixed ID-response sequence on
// successive bytes and resetting once TX goes idle.
func TickPadmc(s *State) {
	p := &s.PADMC
	if p.tx.IsEmpty() {
		p.txCount = 0
		return
	}
	if _, err := p.tx.Pop(); err != nil {
		return
	}
	if p.txCount < len(padIDResponse) {
		p.rx.Push(padIDResponse[p.txCount])
	} else {
		p.rx.Push(0xFF)
	}
	p.txCount++
}
