package main

import "testing"

func TestMemoryStateRAMRoundTrip(t *testing.T) {
	m := NewMemoryState(DefaultConfig())
	if err := m.Write32(0x1000, 0xDEADBEEF); err != nil {
		t.Fatalf("write32: %v", err)
	}
	v, err := m.Read32(0x1000)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	if v != 0xDEADBEEF {
		t.Fatalf("got 0x%08X, want 0xDEADBEEF", v)
	}
}

func TestMemoryStateKSEGTranslation(t *testing.T) {
	m := NewMemoryState(DefaultConfig())
	if err := m.Write32(0x80001000, 0x11223344); err != nil {
		t.Fatalf("write via kseg0: %v", err)
	}
	v, err := m.Read32(0xA0001000)
	if err != nil {
		t.Fatalf("read via kseg1: %v", err)
	}
	if v != 0x11223344 {
		t.Fatalf("got 0x%08X, want 0x11223344 (kseg0/kseg1 must alias kuseg)", v)
	}
}

func TestMemoryStateUnmapped(t *testing.T) {
	m := NewMemoryState(DefaultConfig())
	if _, err := m.Read32(0x1F000000); err != ErrUnmapped {
		t.Fatalf("got %v, want ErrUnmapped", err)
	}
}

func TestMemoryStateIORegionDispatch(t *testing.T) {
	m := NewMemoryState(DefaultConfig())
	var got uint32
	m.MapIO(0x1F801070, 0x1F801073, &IORegion{
		read32:  func(addr uint32) uint32 { return 0xCAFEBABE },
		write32: func(addr uint32, value uint32) { got = value },
	})
	if err := m.Write32(0x1F801070, 0x42); err != nil {
		t.Fatalf("write32: %v", err)
	}
	if got != 0x42 {
		t.Fatalf("region write32 callback got %d, want 0x42", got)
	}
	v, err := m.Read32(0x1F801070)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	if v != 0xCAFEBABE {
		t.Fatalf("region read32 callback: got 0x%08X, want 0xCAFEBABE", v)
	}
}

func TestMemoryStateLoadBIOSWrongSize(t *testing.T) {
	m := NewMemoryState(DefaultConfig())
	if err := m.LoadBIOS(make([]byte, 10)); err == nil {
		t.Fatal("expected error for wrong-size BIOS image")
	}
}
