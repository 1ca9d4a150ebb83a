package main

import "testing"

func TestIntcAcknowledgeMaskSemantics(t *testing.T) {
	s := NewIntcState()
	s.AssertLine(LineVblank)
	s.AssertLine(LineCDROM)

	if v := s.ReadStat(); v&(1<<LineVblank) == 0 || v&(1<<LineCDROM) == 0 {
		t.Fatalf("expected vblank and cdrom asserted, got 0x%X", v)
	}

	// Writing a 1 bit for vblank preserves it; a 0 bit for cdrom clears it.
	s.WriteStat(uint32(1 << LineVblank))

	v := s.ReadStat()
	if v&(1<<LineVblank) == 0 {
		t.Fatal("bit written as 1 must be preserved, not cleared")
	}
	if v&(1<<LineCDROM) != 0 {
		t.Fatal("bit written as 0 must be cleared")
	}
}

func TestIntcPendingRespectsMask(t *testing.T) {
	s := NewIntcState()
	s.AssertLine(LineDMA)
	if s.Pending() {
		t.Fatal("line asserted but unmasked must not be pending")
	}
	s.WriteMask(uint32(1 << LineDMA))
	if !s.Pending() {
		t.Fatal("line asserted and masked in must be pending")
	}
}
