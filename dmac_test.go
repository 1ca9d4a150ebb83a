package main

import "testing"

func setDPCREnabled(s *State, ch int) {
	s.DMAC.dpcr.WriteU32(1 << uint(4*ch+3))
}

// setCHCR mimics a guest CHCR write: TryWrite latches the access
// pending, the same path finishTransfer's Acknowledge later clears.
func setCHCR(s *State, ch int, raw uint32) {
	if err := s.DMAC.channels[ch].chcr.TryWrite(raw); err != nil {
		panic(err)
	}
}

// TestDmacOTCClear drives channel 6 (OTC) through a backwards
// continuous-mode run and checks the descending linked list it writes
// terminates with the 0x00FFFFFF sentinel, the seed scenario DMA6's
// ordering-table clear is built around.
func TestDmacOTCClear(t *testing.T) {
	s := newTestState()
	const base = 0x00001000
	const entries = 4

	s.DMAC.channels[ChanOTC].madr.WriteU32(base + (entries-1)*4)
	s.DMAC.channels[ChanOTC].bcr.WriteU32(entries)
	// mode=continuous (bits 9-10 = 0), step backwards (bit1), start (bit24).
	setCHCR(s, ChanOTC, (1<<1)|(1<<24))
	setDPCREnabled(s, ChanOTC)

	for i := 0; i < entries; i++ {
		// ticks=2 caps the per-call budget at one word, so each call
		// here exercises exactly one linked-list entry.
		if !TickDmac(s, 2) {
			t.Fatalf("word %d: TickDmac reported no progress", i)
		}
	}

	if TickDmac(s, 2) {
		t.Fatalf("channel kept running after %d entries", entries)
	}

	for i := 0; i < entries-1; i++ {
		addr := uint32(base + (entries-1-i)*4)
		want := addr - 4
		got, err := s.Memory.Read32(addr)
		if err != nil {
			t.Fatalf("read entry %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("entry %d at 0x%X = 0x%X, want link 0x%X", i, addr, got, want)
		}
	}
	last, err := s.Memory.Read32(base)
	if err != nil {
		t.Fatalf("read terminator entry: %v", err)
	}
	if last != otcTerminator {
		t.Fatalf("final entry = 0x%X, want terminator 0x%X", last, otcTerminator)
	}
	if s.BusLocked.Load() {
		t.Fatal("bus-lock still held after channel finished")
	}
}

// TestDmacLinkedListTerminates drives channel 2 (GPU) through a
// linked-list run and checks the universal invariant that the chain
// stops at the terminator instead of running forever.
func TestDmacLinkedListTerminates(t *testing.T) {
	s := newTestState()
	const header1 = 0x00002000
	const header2 = 0x00002010

	// header1: 1 word, next = header2.
	s.Memory.Write32(header1, (1<<24)|header2)
	s.Memory.Write32(header1+4, 0xAAAAAAAA)
	// header2: 0 words, next = terminator.
	s.Memory.Write32(header2, otcTerminator)

	s.DMAC.channels[ChanGPU].madr.WriteU32(header1)
	setCHCR(s, ChanGPU, (1<<10)|(1<<24)) // mode bits 9-10 = 2: linked-list, start bit set
	setDPCREnabled(s, ChanGPU)

	const maxSteps = 1000
	steps := 0
	for s.DMAC.channels[ChanGPU].running || s.DMAC.channels[ChanGPU].chcr.ReadBitfield(Bitfield{Start: 0, Width: 32})&(1<<24) != 0 {
		if steps >= maxSteps {
			t.Fatalf("linked-list transfer never reached the terminator after %d steps", maxSteps)
		}
		TickDmac(s, 2)
		steps++
	}
}
