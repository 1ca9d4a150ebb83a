// dmac.go - DMA controller: 7 channels, 3 sync modes, bus-lock arbitration

/*
dmac.go - DMA controller.

Seven fixed channels (MDECin, MDECout, GPU, CDROM, SPU, PIO, OTC), each
with MADR/BCR/CHCR. CHCR's start bit is an edge register: a guest write
that finds a transfer already running must be acknowledged (by the
transfer completing) before another start sticks, the same contention
the other edge-register peripherals enforce. Channel 6 (OTC) seeds the
GPU's ordering table and runs its Continuous mode backwards, writing
a decreasing linked list terminated by the 0x00FFFFFF sentinel - the
one seed scenario worth a dedicated test.

Arbitration picks one active, DPCR-enabled channel per tick, priority
channel 6 down to channel 0 (OTC first) matching the real controller's
fixed priority order, and asserts State.BusLocked for the duration of a
transfer so the CPU's own bus accesses stall, mirroring the original's
rationale for halting the CPU during a DMA run.
*/

package main

const (
	ChanMDECin = iota
	ChanMDECout
	ChanGPU
	ChanCDROM
	ChanSPU
	ChanPIO
	ChanOTC
	dmaChannelCount
)

type syncMode int

const (
	syncContinuous syncMode = iota
	syncBlocks
	syncLinkedList
)

const otcTerminator = 0x00FFFFFF

// dmaChannel holds one channel's registers and in-flight transfer
// cursor. MADR/BCR are plain level registers (DMA setup always
// overwrites them wholesale); CHCR is an edge register since a start
// must be acknowledged by completion before it can restart.
type dmaChannel struct {
	madr LevelRegister32
	bcr  LevelRegister32
	chcr EdgeRegister32

	running     bool
	cursor      uint32 // current transfer address
	remaining   uint32 // words left in the current block/run
	blocksLeft  uint32 // Blocks mode: blocks remaining, counting the one in progress
}

// DmacState is the DMA controller: DPCR/DICR plus the 7 channels.
type DmacState struct {
	dpcr LevelRegister32
	dicr EdgeRegister32

	channels [dmaChannelCount]dmaChannel
}

func NewDmacState() DmacState {
	return DmacState{}
}

func chcrSyncMode(chcr uint32) syncMode {
	switch (chcr >> 9) & 0x3 {
	case 0:
		return syncContinuous
	case 1:
		return syncBlocks
	default:
		return syncLinkedList
	}
}

func chcrStepBackwards(chcr uint32) bool { return (chcr>>1)&1 != 0 }
func chcrToChannel(chcr uint32) bool     { return chcr&1 != 0 } // direction bit: 1 = RAM->device? device-specific
func chcrStartBusy(chcr uint32) bool     { return (chcr>>24)&1 != 0 }

// channelEnabled reports DPCR's 1-bit enable for the given channel.
func (d *DmacState) channelEnabled(ch int) bool {
	return (d.dpcr.ReadU32()>>uint(4*ch+3))&1 != 0
}

// startTransfer is invoked when a guest write to CHCR sets the start
// bit on an idle channel; it captures MADR/BCR into the running cursor.
func (d *DmacState) startTransfer(ch int) {
	c := &d.channels[ch]
	c.running = true
	c.cursor = c.madr.ReadU32()

	switch chcrSyncMode(c.chcr.ReadBitfield(Bitfield{Start: 0, Width: 32})) {
	case syncContinuous:
		bc := c.bcr.ReadU32()
		if bc == 0 {
			bc = 0x10000
		}
		c.remaining = bc
	case syncBlocks:
		bs := c.bcr.ReadU32() & 0xFFFF
		ba := c.bcr.ReadU32() >> 16
		if bs == 0 {
			bs = 0x10000
		}
		c.remaining = bs
		c.blocksLeft = ba
	case syncLinkedList:
		c.remaining = 0 // header word read on first step
	}
}

// dmacWordBudget converts a round's tick budget into a word count: 2
// ticks/word, capped at 16 words so one channel can't starve the CPU
// of the whole round even when ticks is large.
func dmacWordBudget(ticks Ticks) int {
	words := (int(ticks) + 1) / 2
	if words > 16 {
		words = 16
	}
	return words
}

// TickDmac spends this round's word budget stepping the
// highest-priority active channel, channel 6 (OTC) first down to
// channel 0, matching the controller's fixed scan order. Re-scans
// after every word so a channel that finishes mid-round hands off to
// the next priority channel instead of sitting idle for the rest of
// the budget. Returns true if any channel transferred a word this round.
func TickDmac(s *State, ticks Ticks) bool {
	d := &s.DMAC
	budget := dmacWordBudget(ticks)
	transferred := false
	for ; budget > 0; budget-- {
		ch, ok := d.highestPriorityActive()
		if !ok {
			break
		}
		c := &d.channels[ch]
		if !c.running {
			d.startTransfer(ch)
		}
		s.BusLocked.Store(true)
		stepChannel(s, ch)
		transferred = true
	}
	if _, ok := d.highestPriorityActive(); !ok {
		s.BusLocked.Store(false)
	}
	return transferred
}

// highestPriorityActive scans channel 6 (OTC) down to channel 0 for
// the first DPCR-enabled channel with its CHCR start bit set.
func (d *DmacState) highestPriorityActive() (int, bool) {
	for i := dmaChannelCount - 1; i >= 0; i-- {
		c := &d.channels[i]
		raw := c.chcr.ReadBitfield(Bitfield{Start: 0, Width: 32})
		if !chcrStartBusy(raw) {
			continue
		}
		if !d.channelEnabled(i) {
			continue
		}
		return i, true
	}
	return 0, false
}

func stepChannel(s *State, ch int) {
	d := &s.DMAC
	c := &d.channels[ch]
	raw := c.chcr.ReadBitfield(Bitfield{Start: 0, Width: 32})
	mode := chcrSyncMode(raw)
	backwards := chcrStepBackwards(raw)
	step := uint32(4)
	if backwards {
		step = ^uint32(4) + 1 // -4
	}

	switch mode {
	case syncContinuous:
		if ch == ChanOTC {
			// OTC clear writes a descending linked list: every entry but
			// the last holds the address of the entry below it, and the
			// last entry (remaining == 1 here) holds the terminator.
			if c.remaining == 1 {
				s.Memory.Write32(c.cursor, otcTerminator)
			} else {
				s.Memory.Write32(c.cursor, c.cursor+step)
			}
		} else {
			transferWord(s, ch, c.cursor, !chcrToChannel(raw))
		}
		c.cursor += step
		c.remaining--
		if c.remaining == 0 {
			finishTransfer(s, ch)
		}
	case syncBlocks:
		transferWord(s, ch, c.cursor, !chcrToChannel(raw))
		c.cursor += step
		c.remaining--
		if c.remaining == 0 {
			if c.blocksLeft > 0 {
				c.blocksLeft--
			}
			if c.blocksLeft == 0 {
				finishTransfer(s, ch)
			} else {
				bs := c.bcr.ReadU32() & 0xFFFF
				if bs == 0 {
					bs = 0x10000
				}
				c.remaining = bs
			}
		}
	case syncLinkedList:
		stepLinkedList(s, ch)
	}
}

// transferWord moves one word between RAM (at addr) and the target
// peripheral's FIFO. toRAM selects direction: true reads from the
// device into RAM, false writes RAM out to the device. OTC never
// reaches here - its linked-list writes are generated directly in
// stepChannel, since the value it writes depends on its position in
// the list rather than on a peer FIFO.
func transferWord(s *State, ch int, addr uint32, toRAM bool) {
	switch ch {
	case ChanGPU:
		if toRAM {
			v, _ := s.Memory.Read32(addr)
			_ = v // GPU->RAM transfers (VRAM reads) not modeled; no-op read path
		} else {
			v, _ := s.Memory.Read32(addr)
			PushGP0(s, v)
		}
	case ChanCDROM:
		v := PopCdromDataWord(s)
		s.Memory.Write32(addr, v)
	case ChanSPU:
		if toRAM {
			v := PopSPUTransferWord(s)
			s.Memory.Write32(addr, v)
		} else {
			v, _ := s.Memory.Read32(addr)
			PushSPUTransferWord(s, v)
		}
	}
}

func stepLinkedList(s *State, ch int) {
	d := &s.DMAC
	c := &d.channels[ch]
	if c.remaining == 0 {
		if c.cursor == otcTerminator || c.cursor&otcTerminator == otcTerminator {
			finishTransfer(s, ch)
			return
		}
		header, err := s.Memory.Read32(c.cursor)
		if err != nil {
			finishTransfer(s, ch)
			return
		}
		next := header & 0x00FFFFFF
		count := header >> 24
		c.madr.WriteU32(next)
		c.remaining = count
		if count == 0 {
			c.cursor = next
			if next == otcTerminator {
				finishTransfer(s, ch)
			}
			return
		}
		c.cursor += 4
		return
	}
	v, _ := s.Memory.Read32(c.cursor)
	PushGP0(s, v)
	c.cursor += 4
	c.remaining--
	if c.remaining == 0 {
		c.cursor = c.madr.ReadU32()
		if c.cursor == otcTerminator {
			finishTransfer(s, ch)
		}
	}
}

func finishTransfer(s *State, ch int) {
	d := &s.DMAC
	c := &d.channels[ch]
	c.running = false
	c.chcr.Acknowledge(func(value uint32, kind LatchKind) uint32 {
		return value &^ (1 << 24) // clear start/busy bit
	})
	raiseDmaChannelIRQ(s, ch)
}

func raiseDmaChannelIRQ(s *State, ch int) {
	d := &s.DMAC
	enableBit := uint32(1) << uint(16+ch)
	if d.dicr.ReadBitfield(Bitfield{Start: 0, Width: 32})&enableBit == 0 {
		return
	}
	d.dicr.Update(func(value uint32) uint32 {
		return value | (1 << uint(24+ch))
	})
	if dicrMasterInterruptPending(d.dicr.ReadBitfield(Bitfield{Start: 0, Width: 32})) {
		s.INTC.AssertLine(LineDMA)
	}
}

func dicrMasterInterruptPending(dicr uint32) bool {
	forceIRQ := (dicr>>15)&1 != 0
	masterEnable := (dicr>>23)&1 != 0
	channelFlags := (dicr >> 24) & 0x7F
	channelEnables := (dicr >> 16) & 0x7F
	return forceIRQ || (masterEnable && (channelFlags&channelEnables) != 0)
}
