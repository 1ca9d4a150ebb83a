package main

import "testing"

func TestSPUManualWriteTransfer(t *testing.T) {
	s := newTestState()
	StartManualWriteTransfer(s, 0x1000)
	PushSPUTransferWord(s, 0xBEEFCAFE)

	HandleTransfer(s)
	HandleTransfer(s)

	if s.SPU.ram[0x1000] != 0xFE || s.SPU.ram[0x1001] != 0xCA {
		t.Fatalf("first sample not written correctly: %02X %02X", s.SPU.ram[0x1000], s.SPU.ram[0x1001])
	}
	if s.SPU.ram[0x1002] != 0xEF || s.SPU.ram[0x1003] != 0xBE {
		t.Fatalf("second sample not written correctly: %02X %02X", s.SPU.ram[0x1002], s.SPU.ram[0x1003])
	}
	if s.SPU.transferAddress != 0x1004 {
		t.Fatalf("transfer address = 0x%X, want 0x1004", s.SPU.transferAddress)
	}
}

func TestSPUManualWriteStopsOnEmptyFifo(t *testing.T) {
	s := newTestState()
	StartManualWriteTransfer(s, 0)
	HandleTransfer(s)
	if s.SPU.transferMode != transferStop {
		t.Fatal("expected transfer mode Stop once the FIFO is empty")
	}
	if s.SPU.stat.ReadU16()&statDataBusy != 0 {
		t.Fatal("expected STAT data-busy bit cleared")
	}
}

func TestSPUKeyOnResetsDecodeCursor(t *testing.T) {
	s := newTestState()
	s.SPU.voices[0].startAddress = 0x2000
	s.SPU.voices[0].decodeAddress = 0x9999
	if err := s.SPU.KeyOn(1); err != nil {
		t.Fatalf("key on: %v", err)
	}
	TickVoices(s)
	if s.SPU.voices[0].decodeAddress != 0x2000 {
		t.Fatalf("decode address = 0x%X, want 0x2000", s.SPU.voices[0].decodeAddress)
	}
	if !s.SPU.voices[0].keyedOn {
		t.Fatal("expected voice 0 keyed on")
	}
}
