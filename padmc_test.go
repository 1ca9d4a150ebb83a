package main

import "testing"

func TestPadmcReadEmptyReturnsSentinel(t *testing.T) {
	s := newTestState()
	if got := s.PADMC.ReadData(); got != 0xFF {
		t.Fatalf("empty RX read = 0x%X, want 0xFF", got)
	}
}

func TestPadmcLoopbackIDResponse(t *testing.T) {
	s := newTestState()
	s.PADMC.WriteData(0x01) // address byte, value unused by the loopback
	s.PADMC.WriteData(0x42)
	s.PADMC.WriteData(0x00)
	s.PADMC.WriteData(0x00)

	for i := 0; i < 4; i++ {
		TickPadmc(s)
	}

	want := []byte{0x41, 0x5A, 0xFF, 0xFF}
	for i, w := range want {
		got := s.PADMC.ReadData()
		if got != w {
			t.Fatalf("byte %d = 0x%X, want 0x%X", i, got, w)
		}
	}
}

func TestPadmcResetsSequenceOnIdle(t *testing.T) {
	s := newTestState()
	s.PADMC.WriteData(0x01)
	TickPadmc(s)
	s.PADMC.ReadData()

	TickPadmc(s) // TX empty, should reset txCount without pushing anything

	s.PADMC.WriteData(0x01)
	TickPadmc(s)
	if got := s.PADMC.ReadData(); got != 0x41 {
		t.Fatalf("sequence did not restart: got 0x%X, want 0x41", got)
	}
}
