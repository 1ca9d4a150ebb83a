// gpu.go - GP0 command framing FSM, GP1 control dispatch, VRAM

/*
gpu.go - GPU command processing.

GP0 commands arrive one word at a time through PushGP0 (called by DMA
channel 2; no GP0/GP1 port is mapped on the memory bus) and are staged until a command's full word count has
arrived, then dispatched through a (length_fn, handler_fn) table keyed
by the command byte - the same shape the original gpu/command_gp0_impl.rs
table uses, generalized from per-command free functions to a Go map of
struct{length, handler}. Several handlers need more than the command
byte to know their length (0xA0's CPU-to-VRAM copy depends on the
width/height word that follows), so length functions see the
in-progress buffer and can return "not yet known".

Rendering itself is a flat-fill approximation rather than a textured
rasterizer: polygon/rectangle commands fill their bounding box with the
command's first color word. This keeps VRAM state (and therefore
anything depending on GPUSTAT/VRAM readback) correct without a
rasterizer, which is out of scope here.
*/

package main

const (
	vramWidth  = 1024
	vramHeight = 512
)

// GPUState holds VRAM, GPUSTAT/the draw-mode fields GP0(E1h)/(E3h-E5h)
// set, and the in-progress GP0 command buffer.
type GPUState struct {
	vram []uint16 // 16-bit native VRAM pixels, row-major

	stat LevelRegister32

	drawingAreaX1, drawingAreaY1 int
	drawingAreaX2, drawingAreaY2 int
	drawingOffsetX, drawingOffsetY int

	gp0Buffer  []uint32
	gp0Pending int // expected word count for the in-progress command, 0 = idle

	readBuffer []uint32 // staged words for GP0(C0h) readback, drained by CPU/DMA reads

	vramTransfer vramTransferState
}

type vramTransferState struct {
	active        bool
	x, y          int
	width, height int
	written       int
}

func NewGPUState() GPUState {
	return GPUState{
		vram: make([]uint16, vramWidth*vramHeight),
	}
}

func NewCRTCState() CRTCState { return CRTCState{} }

// CRTCState tracks the display-timing side: scanline counter, the
// vblank flag GP1(powered by the executor's round loop) derives, and
// the sub-scanline cycle remainder carried between rounds so a short
// TimeSlice doesn't lose fractional scanlines.
type CRTCState struct {
	scanline  int
	inVblank  bool
	frameDone bool
	cycleAcc  Ticks
}

const (
	scanlinesPerFrame = 263 // NTSC
	vblankStartLine   = 240

	// cyclesPerScanline approximates NTSC's ~15734 Hz horizontal rate
	// out of the CPU's 33.8688 MHz clock (33868800 / 15734 ≈ 2152);
	// the constant uses the commonly cited 2147 figure instead.
	cyclesPerScanline = 2147
)

// TickCRTC advances one scanline and asserts the VBLANK interrupt line
// on entry to the vertical blanking interval.
func TickCRTC(s *State) {
	c := &s.CRTC
	c.scanline++
	if c.scanline == vblankStartLine {
		c.inVblank = true
		s.INTC.AssertLine(LineVblank)
	}
	if c.scanline >= scanlinesPerFrame {
		c.scanline = 0
		c.inVblank = false
		c.frameDone = true
	}
}

// AdvanceCRTC converts a round's CPU-cycle budget into scanlines at
// cyclesPerScanline, carrying any leftover fraction into the next
// round's accumulator so scanline pacing stays correct even when
// TimeSlice is shorter than one scanline's worth of cycles.
func AdvanceCRTC(s *State, ticks Ticks) {
	c := &s.CRTC
	c.cycleAcc += ticks
	for c.cycleAcc >= cyclesPerScanline {
		c.cycleAcc -= cyclesPerScanline
		TickCRTC(s)
	}
}

// TakeFrame reports whether a frame completed since the last call and,
// if so, returns a snapshot of VRAM converted from native 15bpp to
// RGBA8888. No display-area windowing is applied - the whole 1024x512
// VRAM surface is returned, since GP1's display-area-start command
// isn't tracked as a separate offset here.
func TakeFrame(s *State) (FrameBuffer, bool) {
	c := &s.CRTC
	if !c.frameDone {
		return FrameBuffer{}, false
	}
	c.frameDone = false

	g := &s.GPU
	pixels := make([]byte, vramWidth*vramHeight*4)
	for i, px := range g.vram {
		r := (px & 0x1F) << 3
		gr := ((px >> 5) & 0x1F) << 3
		b := ((px >> 10) & 0x1F) << 3
		pixels[4*i] = byte(r)
		pixels[4*i+1] = byte(gr)
		pixels[4*i+2] = byte(b)
		pixels[4*i+3] = 0xFF
	}
	return FrameBuffer{Width: vramWidth, Height: vramHeight, Pixels: pixels}, true
}

type gp0Command struct {
	length  func(buf []uint32) (int, bool) // (wordCount, known)
	handler func(s *State, buf []uint32)
}

func fixedLength(n int) func([]uint32) (int, bool) {
	return func(buf []uint32) (int, bool) { return n, true }
}

var gp0Table = map[uint32]gp0Command{
	0x00: {fixedLength(1), func(s *State, buf []uint32) {}}, // NOP
	0x01: {fixedLength(1), func(s *State, buf []uint32) {}}, // flush cache, NOP
	0x02: {fixedLength(3), gp0FillRectangle},
	0x28: {fixedLength(5), gp0PolygonFlat(4)},
	0x30: {fixedLength(6), gp0PolygonFlat(3)},
	0x38: {fixedLength(8), gp0PolygonFlat(4)},
	0xA0: {gp0CopyCPUToVRAMLength, gp0CopyCPUToVRAM},
	0xC0: {fixedLength(3), gp0CopyVRAMToCPU},
	0xE1: {fixedLength(1), gp0DrawModeSetting},
	0xE3: {fixedLength(1), gp0DrawingAreaTopLeft},
	0xE4: {fixedLength(1), gp0DrawingAreaBottomRight},
	0xE5: {fixedLength(1), gp0DrawingOffset},
	0xE6: {fixedLength(1), func(s *State, buf []uint32) {}}, // mask bit, not modeled
}

// PushGP0 is the sole entry point for GP0 command words: it accumulates
// the in-progress command and dispatches once the full word count has
// arrived.
func PushGP0(s *State, word uint32) {
	g := &s.GPU
	if len(g.gp0Buffer) == 0 {
		cmd, ok := gp0Table[word>>24]
		if !ok {
			return // unrecognized opcode: drop, matches a NOP in practice
		}
		g.gp0Buffer = g.gp0Buffer[:0]
		g.gp0Buffer = append(g.gp0Buffer, word)
		if n, known := cmd.length(g.gp0Buffer); known {
			g.gp0Pending = n
		}
		if g.gp0Pending == 1 {
			cmd.handler(s, g.gp0Buffer)
			g.gp0Buffer = g.gp0Buffer[:0]
			g.gp0Pending = 0
		}
		return
	}

	g.gp0Buffer = append(g.gp0Buffer, word)
	cmd := gp0Table[g.gp0Buffer[0]>>24]
	if g.gp0Pending == 0 {
		if n, known := cmd.length(g.gp0Buffer); known {
			g.gp0Pending = n
		}
	}
	if g.gp0Pending != 0 && len(g.gp0Buffer) >= g.gp0Pending {
		cmd.handler(s, g.gp0Buffer)
		g.gp0Buffer = g.gp0Buffer[:0]
		g.gp0Pending = 0
	}
}

func rgb555(word uint32) uint16 {
	r := (word >> 0) & 0xFF
	gC := (word >> 8) & 0xFF
	b := (word >> 16) & 0xFF
	return uint16(((b>>3)<<10 | (gC>>3)<<5 | (r >> 3)))
}

func gp0FillRectangle(s *State, buf []uint32) {
	color := rgb555(buf[0])
	x0 := int(buf[1] & 0xFFFF)
	y0 := int((buf[1] >> 16) & 0xFFFF)
	w := int(buf[2] & 0xFFFF)
	h := int((buf[2] >> 16) & 0xFFFF)
	fillVRAM(&s.GPU, x0, y0, w, h, color)
}

func gp0PolygonFlat(vertexCount int) func(*State, []uint32) {
	return func(s *State, buf []uint32) {
		color := rgb555(buf[0])
		minX, minY, maxX, maxY := vramWidth, vramHeight, 0, 0
		stride := len(buf) / vertexCount
		for i := 0; i < vertexCount; i++ {
			v := buf[1+i*stride]
			x := int(int16(v & 0xFFFF))
			y := int(int16((v >> 16) & 0xFFFF))
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
		fillVRAM(&s.GPU, minX, minY, maxX-minX, maxY-minY, color)
	}
}

func fillVRAM(g *GPUState, x0, y0, w, h int, color uint16) {
	for y := y0; y < y0+h; y++ {
		if y < 0 || y >= vramHeight {
			continue
		}
		for x := x0; x < x0+w; x++ {
			if x < 0 || x >= vramWidth {
				continue
			}
			g.vram[y*vramWidth+x] = color
		}
	}
}

func gp0CopyCPUToVRAMLength(buf []uint32) (int, bool) {
	if len(buf) < 3 {
		return 0, false
	}
	width := int(buf[2] & 0xFFFF)
	height := int((buf[2] >> 16) & 0xFFFF)
	count := width * height
	return 3 + (count+1)/2, true
}

func gp0CopyCPUToVRAM(s *State, buf []uint32) {
	g := &s.GPU
	x0 := int(buf[1] & 0xFFFF)
	y0 := int((buf[1] >> 16) & 0xFFFF)
	width := int(buf[2] & 0xFFFF)
	height := int((buf[2] >> 16) & 0xFFFF)

	pixels := make([]uint16, 0, width*height)
	for i := 3; i < len(buf); i++ {
		pixels = append(pixels, uint16(buf[i]&0xFFFF), uint16((buf[i]>>16)&0xFFFF))
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			idx := row*width + col
			if idx >= len(pixels) {
				continue
			}
			y := y0 + row
			x := x0 + col
			if y < 0 || y >= vramHeight || x < 0 || x >= vramWidth {
				continue
			}
			g.vram[y*vramWidth+x] = pixels[idx]
		}
	}
}

func gp0CopyVRAMToCPU(s *State, buf []uint32) {
	g := &s.GPU
	x0 := int(buf[1] & 0xFFFF)
	y0 := int((buf[1] >> 16) & 0xFFFF)
	width := int(buf[2] & 0xFFFF)
	height := int((buf[2] >> 16) & 0xFFFF)

	pixels := make([]uint16, 0, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			y := y0 + row
			x := x0 + col
			if y < 0 || y >= vramHeight || x < 0 || x >= vramWidth {
				pixels = append(pixels, 0)
				continue
			}
			pixels = append(pixels, g.vram[y*vramWidth+x])
		}
	}
	if len(pixels)%2 != 0 {
		pixels = append(pixels, 0)
	}
	g.readBuffer = g.readBuffer[:0]
	for i := 0; i < len(pixels); i += 2 {
		// Packed data[2i] low halfword, data[2i+1] high halfword per word.
		word := uint32(pixels[i]) | uint32(pixels[i+1])<<16
		g.readBuffer = append(g.readBuffer, word)
	}
}

func gp0DrawModeSetting(s *State, buf []uint32) {
	v := buf[0]
	g := &s.GPU
	g.stat.WriteBitfield(NewBitfield(0, 4), NewBitfield(0, 4).ExtractFrom(v))
	g.stat.WriteBitfield(NewBitfield(4, 1), NewBitfield(4, 1).ExtractFrom(v))
	g.stat.WriteBitfield(NewBitfield(5, 2), NewBitfield(5, 2).ExtractFrom(v))
	g.stat.WriteBitfield(NewBitfield(7, 2), NewBitfield(7, 2).ExtractFrom(v))
	g.stat.WriteBitfield(NewBitfield(9, 1), NewBitfield(9, 1).ExtractFrom(v))
}

func gp0DrawingAreaTopLeft(s *State, buf []uint32) {
	s.GPU.drawingAreaX1 = int(NewBitfield(0, 10).ExtractFrom(buf[0]))
	s.GPU.drawingAreaY1 = int(NewBitfield(10, 9).ExtractFrom(buf[0]))
}

func gp0DrawingAreaBottomRight(s *State, buf []uint32) {
	s.GPU.drawingAreaX2 = int(NewBitfield(0, 10).ExtractFrom(buf[0]))
	s.GPU.drawingAreaY2 = int(NewBitfield(10, 9).ExtractFrom(buf[0]))
}

func gp0DrawingOffset(s *State, buf []uint32) {
	x := int16(NewBitfield(0, 11).ExtractFrom(buf[0])) << 5 >> 5
	y := int16(NewBitfield(11, 11).ExtractFrom(buf[0])) << 5 >> 5
	s.GPU.drawingOffsetX = int(x)
	s.GPU.drawingOffsetY = int(y)
}

// DispatchGP1 handles the single-word GP1 control commands: reset,
// command-buffer reset, display enable, DMA direction, display mode.
// Display-area commands are not handled.
func DispatchGP1(s *State, word uint32) {
	g := &s.GPU
	switch word >> 24 {
	case 0x00: // Reset GPU
		*g = NewGPUState()
	case 0x01: // Reset command buffer
		g.gp0Buffer = g.gp0Buffer[:0]
		g.gp0Pending = 0
	case 0x03: // Display enable
		g.stat.WriteBitfield(NewBitfield(23, 1), word&1)
	case 0x04: // DMA direction
		g.stat.WriteBitfield(NewBitfield(29, 2), word&0x3)
	case 0x08: // Display mode
		g.stat.WriteBitfield(NewBitfield(17, 2), NewBitfield(0, 2).ExtractFrom(word))
		g.stat.WriteBitfield(NewBitfield(16, 1), NewBitfield(6, 1).ExtractFrom(word))
		g.stat.WriteBitfield(NewBitfield(19, 1), NewBitfield(2, 1).ExtractFrom(word))
	}
}

// ReadGPUSTAT returns the combined status register, with the three
// "ready" bits (26-28: command, VRAM-to-CPU, DMA) hardwired on since
// this GPU never actually stalls a transfer.
func ReadGPUSTAT(s *State) uint32 {
	return s.GPU.stat.ReadU32() | (1 << 26) | (1 << 27) | (1 << 28)
}

// PopGP0ReadWord drains one word from the GP0(C0h) read buffer for
// CPU/DMA reads of GPUREAD.
func PopGP0ReadWord(s *State) uint32 {
	g := &s.GPU
	if len(g.readBuffer) == 0 {
		return 0
	}
	v := g.readBuffer[0]
	g.readBuffer = g.readBuffer[1:]
	return v
}
