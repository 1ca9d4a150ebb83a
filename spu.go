// spu.go - Sound processing unit: 24 voices, ADPCM decode, manual-write transfer

/*
spu.go - SPU.

24 voices share one register layout (VoiceRegs), not hand-unrolled,
since every voice behaves identically and the guest addresses them by
a fixed stride. Key-on/key-off are edge-triggered write-only bitmasks:
a bit written 1 starts/releases that voice's ADPCM envelope once, the
same latch-and-acknowledge shape the DMAC's CHCR uses, just 24 bits
wide instead of a single start bit.

The manual-write transfer state machine is a near-literal port of
transfer.rs's handle_manual_write_transfer: drain one sample at a time
from the data FIFO into SPU RAM at the current transfer address,
wrapping at the 512KiB boundary, and flip back to Stop (clearing
STAT's busy bit) the moment the FIFO runs dry.
*/

package main

const (
	spuRAMSize  = 512 * 1024
	spuVoices   = 24
)

type transferMode int

const (
	transferStop transferMode = iota
	transferManualWrite
)

// VoiceRegs is one voice's register block: volume, pitch, ADPCM start
// address, ADSR envelope rate/level words, and its current ADPCM
// decode state.
type VoiceRegs struct {
	volumeLeft, volumeRight uint16
	pitch                   uint16
	startAddress            uint32
	adsr                    uint32
	repeatAddress           uint32

	decodeAddress uint32
	adpcmPrevSample1, adpcmPrevSample2 int32
	keyedOn                            bool

	block       [28]int16 // current decoded ADPCM block, refilled on exhaustion
	blockCursor int        // index of the next unconsumed sample in block, 28 = empty
}

type SPUState struct {
	ram  []byte
	voices [spuVoices]VoiceRegs

	mainVolumeLeft, mainVolumeRight       LevelRegister16
	currentVolumeLeft, currentVolumeRight LevelRegister16

	dataTransferControl LevelRegister16
	dataFifo            *Fifo[uint16]

	transferMode    transferMode
	transferAddress uint32

	stat LevelRegister16

	keyOn  EdgeRegister32 // write-only latch: bit i = start voice i
	keyOff EdgeRegister32 // write-only latch: bit i = release voice i
}

func NewSPUState() SPUState {
	return SPUState{
		ram:      make([]byte, spuRAMSize),
		dataFifo: NewFifo[uint16](32),
	}
}

const statDataBusy = 1 << 10

// HandleCurrentVolume copies MAIN_VOL_L/R into CURRENT_VOL_L/R every
// round, the DAC-side tick the original dac.rs runs each cycle.
func HandleCurrentVolume(s *State) {
	sp := &s.SPU
	sp.currentVolumeLeft.WriteU16(sp.mainVolumeLeft.ReadU16())
	sp.currentVolumeRight.WriteU16(sp.mainVolumeRight.ReadU16())
}

// HandleTransfer dispatches the active transfer mode. Only ManualWrite
// is implemented; DMA read/write transfer modes are driven by the DMAC
// calling PushSPUTransferWord/PopSPUTransferWord directly instead.
func HandleTransfer(s *State) {
	if s.SPU.transferMode == transferManualWrite {
		handleManualWriteTransfer(s)
	}
}

func handleManualWriteTransfer(s *State) {
	sp := &s.SPU
	v, err := sp.dataFifo.Pop()
	if err != nil {
		sp.transferMode = transferStop
		sp.stat.WriteU16(sp.stat.ReadU16() &^ statDataBusy)
		return
	}
	addr := sp.transferAddress
	sp.ram[addr] = byte(v)
	sp.ram[addr+1] = byte(v >> 8)
	sp.transferAddress = (addr + 2) & 0x7FFFF
}

// StartManualWriteTransfer is invoked when the guest writes the
// transfer-mode bits in SPUCNT selecting manual write, capturing the
// current transfer start address.
func StartManualWriteTransfer(s *State, startAddress uint32) {
	s.SPU.transferMode = transferManualWrite
	s.SPU.transferAddress = startAddress & 0x7FFFF
	s.SPU.stat.WriteU16(s.SPU.stat.ReadU16() | statDataBusy)
}

// PushSPUTransferWord is the DMA channel 4 write path: one 32-bit bus
// word becomes two 16-bit samples pushed into the data FIFO.
func PushSPUTransferWord(s *State, word uint32) {
	sp := &s.SPU
	sp.dataFifo.Push(uint16(word))
	sp.dataFifo.Push(uint16(word >> 16))
}

// PopSPUTransferWord is the DMA channel 4 read path (SPU -> RAM),
// draining two samples packed into one bus word.
func PopSPUTransferWord(s *State) uint32 {
	sp := &s.SPU
	lo, _ := sp.dataFifo.Pop()
	hi, _ := sp.dataFifo.Pop()
	return uint32(lo) | uint32(hi)<<16
}

// KeyOn latches voices to start; acknowledged (and actually applied)
// by TickVoices each round.
func (s *SPUState) KeyOn(mask uint32) error {
	return s.keyOn.TryWrite(mask)
}

func (s *SPUState) KeyOff(mask uint32) error {
	return s.keyOff.TryWrite(mask)
}

// TickVoices applies any pending key-on/key-off latch, resetting the
// addressed voices' ADPCM decode cursor to their start address (key-on)
// or marking them released (key-off), then acknowledges the latch so
// the next CPU write can land.
func TickVoices(s *State) {
	sp := &s.SPU
	sp.keyOn.Acknowledge(func(mask uint32, kind LatchKind) uint32 {
		for i := 0; i < spuVoices; i++ {
			if mask&(1<<uint(i)) != 0 {
				v := &sp.voices[i]
				v.decodeAddress = v.startAddress
				v.adpcmPrevSample1, v.adpcmPrevSample2 = 0, 0
				v.keyedOn = true
				v.blockCursor = len(v.block)
			}
		}
		return mask
	})
	sp.keyOff.Acknowledge(func(mask uint32, kind LatchKind) uint32 {
		for i := 0; i < spuVoices; i++ {
			if mask&(1<<uint(i)) != 0 {
				sp.voices[i].keyedOn = false
			}
		}
		return mask
	})
}

var adpcmFilterPos = [5]int32{0, 60, 115, 98, 122}
var adpcmFilterNeg = [5]int32{0, 0, -52, -55, -60}

// decodeADPCMBlock decodes one 16-byte ADPCM block (1 header byte + 2
// filter/shift nibble, 14 bytes of 4-bit samples) into 28 PCM samples,
// the standard PSX ADPCM block shape every voice's SPU RAM stream uses.
func decodeADPCMBlock(v *VoiceRegs, block []byte) [28]int16 {
	var out [28]int16
	if len(block) < 16 {
		return out
	}
	shift := uint(block[0] & 0x0F)
	filter := (block[0] >> 4) & 0x07

	s1, s2 := v.adpcmPrevSample1, v.adpcmPrevSample2
	for i := 0; i < 28; i++ {
		byteIdx := 2 + i/2
		var nibble byte
		if i%2 == 0 {
			nibble = block[byteIdx] & 0x0F
		} else {
			nibble = (block[byteIdx] >> 4) & 0x0F
		}
		sample := int32(int8(nibble<<4)) >> 4
		sample <<= shift

		predicted := (s1*adpcmFilterPos[filter] + s2*adpcmFilterNeg[filter]) >> 6
		sample += predicted

		if sample > 32767 {
			sample = 32767
		}
		if sample < -32768 {
			sample = -32768
		}
		out[i] = int16(sample)
		s2 = s1
		s1 = sample
	}
	v.adpcmPrevSample1, v.adpcmPrevSample2 = s1, s2
	return out
}

const adpcmBlockBytes = 16

// nextVoiceSample returns the next decoded PCM sample for a keyed-on
// voice, pulling a fresh ADPCM block from SPU RAM at decodeAddress
// whenever the current block is exhausted, and advancing past the
// block's own repeat-address handling is left unmodeled since no loop
// flag bit is tracked yet - playback simply continues reading forward.
func nextVoiceSample(sp *SPUState, v *VoiceRegs) int16 {
	if !v.keyedOn {
		return 0
	}
	if v.blockCursor >= len(v.block) {
		addr := v.decodeAddress & 0x7FFFF
		if int(addr)+adpcmBlockBytes > len(sp.ram) {
			v.keyedOn = false
			return 0
		}
		v.block = decodeADPCMBlock(v, sp.ram[addr:addr+adpcmBlockBytes])
		v.decodeAddress = addr + adpcmBlockBytes
		v.blockCursor = 0
	}
	sample := v.block[v.blockCursor]
	v.blockCursor++
	return sample
}

func scaleVolume(sample int16, volume uint16) int32 {
	return (int32(sample) * int32(int16(volume))) >> 15
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// MixVoices renders sampleCount stereo frames by pumping every
// keyed-on voice's ADPCM stream once per frame and summing, scaled by
// each voice's volume and the main volume the DAC tick copies into
// CURRENT_VOL_L/R. Returns interleaved left/right int16 samples, ready
// for AudioBackend.SubmitSamples.
func MixVoices(s *State, sampleCount int) []int16 {
	sp := &s.SPU
	out := make([]int16, sampleCount*2)
	mainL := int32(int16(sp.currentVolumeLeft.ReadU16()))
	mainR := int32(int16(sp.currentVolumeRight.ReadU16()))

	for i := 0; i < sampleCount; i++ {
		var left, right int32
		for v := range sp.voices {
			voice := &sp.voices[v]
			if !voice.keyedOn {
				continue
			}
			sample := nextVoiceSample(sp, voice)
			left += scaleVolume(sample, voice.volumeLeft)
			right += scaleVolume(sample, voice.volumeRight)
		}
		left = (left * mainL) >> 15
		right = (right * mainR) >> 15
		out[2*i] = clampSample(left)
		out[2*i+1] = clampSample(right)
	}
	return out
}
