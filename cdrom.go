// cdrom.go - CD-ROM command/response FSM and sector-read pump

/*
cdrom.go - CD-ROM controller.

A command byte latched by the CPU dispatches through a (length, handler)
table exactly like command.rs/command_impl.rs: length_fn(iteration)
reports how many parameter bytes must be queued before that iteration
of the handler can run, handler_fn runs one iteration and reports
whether the command is finished. Multi-iteration commands (ReadN,
SeekL, GetID) drive their later iterations off command_iteration
rather than fresh parameter bytes.

TickCdrom is gated by INT_FLAG: a response whose interrupt hasn't been
acknowledged yet blocks any further command dispatch or sector-read
pump activity, matching handle_command's "don't run anything until all
previous interrupts have been acknowledged" rule - the one thing that
makes CD-ROM command timing deterministic against BIOS polling loops.
*/

package main

const cdromResponseCapacity = 16
const cdromParameterCapacity = 16
const cdromDataCapacity = 2352 * 2

// CdromState is the controller's registers and in-flight command/read
// state.
type CdromState struct {
	status    LevelRegister8
	intFlag   EdgeRegister8 // INT_FLAG: which interrupt(s) are pending ack
	intEnable LevelRegister8

	commandLatch EdgeRegister8 // set by a CPU write of the command byte
	parameter    *Fifo[byte]
	response     *Fifo[byte]
	data         *Fifo[byte]

	commandIndex     int // -1 = idle
	commandIteration int

	lba         uint32
	reading     bool
	readBuffer  []byte
}

func NewCdromState() CdromState {
	return CdromState{
		parameter:    NewFifo[byte](cdromParameterCapacity),
		response:     NewFifo[byte](cdromResponseCapacity),
		data:         NewFifo[byte](cdromDataCapacity),
		commandIndex: -1,
	}
}

const (
	statusBusy    = 1 << 0
	statusReading = 1 << 5
)

type cdromCommand struct {
	length  func(iteration int) int
	handler func(s *State, backend CdromBackend, iteration int) bool
}

func fixedParamCount(n int) func(int) int {
	return func(iteration int) int { return n }
}

var cdromCommandTable = map[byte]cdromCommand{
	0x01: {fixedParamCount(0), cdromGetStat},
	0x02: {fixedParamCount(3), cdromSetloc},
	0x06: {func(iteration int) int { return 0 }, cdromReadN},
	0x0E: {fixedParamCount(1), cdromSetmode},
	0x15: {func(iteration int) int { return 0 }, cdromSeekL},
	0x19: {fixedParamCount(1), cdromTest},
	0x1A: {func(iteration int) int { return 0 }, cdromGetID},
}

// raiseCdromIrq sets the INT_FLAG bits for the given interrupt cause
// (1 = data ready, 2 = complete, 3 = acknowledge, 5 = error) and
// asserts the shared INTC CDROM line on every raise.
func raiseCdromIrq(s *State, cause byte) {
	c := &s.CDROM
	c.intFlag.Update(func(v uint8) uint8 { return (v &^ 0x7) | cause })
	s.INTC.AssertLine(LineCDROM)
}

// TickCdrom runs one step: command dispatch when a command is latched
// or in progress, otherwise the sector-read pump, matching
// handle_command's call order.
func TickCdrom(s *State, backend CdromBackend) {
	c := &s.CDROM
	if c.intFlag.ReadBitfield(Bitfield{Start: 0, Width: 3}) != 0 {
		return
	}

	if c.commandIndex < 0 {
		c.status.WriteU8(c.status.ReadU8() &^ statusBusy)
		if !c.commandLatch.Pending() {
			handleReading(s, backend)
			return
		}
		var cmd byte
		c.commandLatch.Acknowledge(func(value uint8, kind LatchKind) uint8 {
			cmd = value
			return value
		})
		c.status.WriteU8(c.status.ReadU8() | statusBusy)
		c.commandIndex = int(cmd)
		c.commandIteration = 0
	}

	entry, ok := cdromCommandTable[byte(c.commandIndex)]
	if !ok {
		c.commandIndex = -1
		return
	}
	if c.parameter.ReadAvailable() < entry.length(c.commandIteration) {
		return
	}

	finished := entry.handler(s, backend, c.commandIteration)
	if finished {
		c.commandIndex = -1
	} else {
		c.commandIteration++
	}
}

func handleReading(s *State, backend CdromBackend) bool {
	c := &s.CDROM
	if !c.reading {
		return false
	}
	// Give the DMA/CPU side a chance to drain the previous sector before
	// the data FIFO fills again.
	if c.data.WriteAvailable() < cdromDataCapacity/2 {
		return false
	}
	c.status.WriteU8(c.status.ReadU8() | statusReading)

	if len(c.readBuffer) == 0 {
		if backend == nil || !backend.HasDisc() {
			c.reading = false
			return false
		}
		sector, err := backend.ReadSector(c.lba)
		if err != nil {
			c.reading = false
			return false
		}
		c.lba++
		c.readBuffer = sector
	}

	for !c.data.IsFull() && len(c.readBuffer) > 0 {
		c.data.Push(c.readBuffer[0])
		c.readBuffer = c.readBuffer[1:]
	}

	raiseCdromIrq(s, 1)
	return true
}

func takeParam(c *CdromState) byte {
	v, _ := c.parameter.Pop()
	return v
}

func cdromGetStat(s *State, backend CdromBackend, iteration int) bool {
	s.CDROM.response.Push(0b00000010) // motor on
	raiseCdromIrq(s, 3)
	return true
}

func cdromSetloc(s *State, backend CdromBackend, iteration int) bool {
	c := &s.CDROM
	minute := takeParam(c)
	second := takeParam(c)
	frame := takeParam(c)
	c.lba = MsfToLBA(minute, second, frame)
	c.response.Push(0b00000010)
	raiseCdromIrq(s, 3)
	return true
}

func cdromReadN(s *State, backend CdromBackend, iteration int) bool {
	c := &s.CDROM
	if iteration == 0 {
		c.response.Push(0b00100010)
		raiseCdromIrq(s, 3)
		return false
	}
	c.reading = true
	return true
}

func cdromSetmode(s *State, backend CdromBackend, iteration int) bool {
	takeParam(&s.CDROM) // mode byte, not modeled
	s.CDROM.response.Push(0b00000010)
	raiseCdromIrq(s, 3)
	return true
}

func cdromSeekL(s *State, backend CdromBackend, iteration int) bool {
	c := &s.CDROM
	switch iteration {
	case 0:
		c.response.Push(0b01000010) // motor on | seek
		raiseCdromIrq(s, 3)
		return false
	default:
		c.response.Push(0b00000010)
		raiseCdromIrq(s, 2)
		return true
	}
}

func cdromTest(s *State, backend CdromBackend, iteration int) bool {
	sub := takeParam(&s.CDROM)
	if sub == 0x20 {
		for _, b := range []byte{0x97, 0x01, 0x10, 0xC2} { // firmware version bytes
			s.CDROM.response.Push(b)
		}
	}
	raiseCdromIrq(s, 3)
	return true
}

func cdromGetID(s *State, backend CdromBackend, iteration int) bool {
	c := &s.CDROM
	switch iteration {
	case 0:
		c.response.Push(0b00000010)
		raiseCdromIrq(s, 3)
		return false
	default:
		if backend != nil && backend.HasDisc() {
			for _, b := range []byte{0x02, 0x00, 0x20, 0x00, 0x53, 0x43, 0x45, 0x41} { // "SCEA", licensed mode 2
				c.response.Push(b)
			}
		} else {
			for _, b := range []byte{0x08, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00} { // no disc
				c.response.Push(b)
			}
		}
		raiseCdromIrq(s, 2)
		return true
	}
}

// MsfToLBA converts a minute/second/frame (BCD-free, already binary)
// disc address into a logical block address, using the standard 2-second
// lead-in offset (150 sectors).
func MsfToLBA(minute, second, frame byte) uint32 {
	total := (uint32(minute)*60+uint32(second))*75 + uint32(frame)
	if total < 150 {
		return 0
	}
	return total - 150
}

// PopCdromDataWord drains 4 bytes from the data FIFO for DMA channel 3,
// little-endian packed the same way every other bus word is.
func PopCdromDataWord(s *State) uint32 {
	var word uint32
	for i := 0; i < 4; i++ {
		v, err := s.CDROM.data.Pop()
		if err != nil {
			break
		}
		word |= uint32(v) << (8 * i)
	}
	return word
}
