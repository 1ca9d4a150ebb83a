package main

import "testing"

type fakeCdromBackend struct {
	hasDisc bool
	sectors map[uint32][]byte
}

func (f *fakeCdromBackend) Open() error  { return nil }
func (f *fakeCdromBackend) Close() error { return nil }
func (f *fakeCdromBackend) HasDisc() bool { return f.hasDisc }
func (f *fakeCdromBackend) TrackCount() int { return 1 }
func (f *fakeCdromBackend) TrackStartLBA(track int) (uint32, bool) { return 0, track == 1 }
func (f *fakeCdromBackend) ReadSector(lba uint32) ([]byte, error) {
	data := make([]byte, 2048)
	return data, nil
}

func issueCommand(s *State, cmd byte, params ...byte) {
	for _, p := range params {
		s.CDROM.parameter.Push(p)
	}
	s.CDROM.commandLatch.TryWrite(cmd)
}

func TestCdromGetStat(t *testing.T) {
	s := newTestState()
	issueCommand(s, 0x01)
	TickCdrom(s, nil)
	if s.CDROM.response.IsEmpty() {
		t.Fatal("expected a response byte after GetStat")
	}
	v, _ := s.CDROM.response.Pop()
	if v != 0b00000010 {
		t.Fatalf("GetStat response = 0x%X, want 0x02", v)
	}
	if s.INTC.ReadStat()&(1<<LineCDROM) == 0 {
		t.Fatal("expected CDROM IRQ line asserted")
	}
}

func TestCdromGetIDNoDisc(t *testing.T) {
	s := newTestState()
	backend := &fakeCdromBackend{hasDisc: false}
	issueCommand(s, 0x1A)

	TickCdrom(s, backend) // iteration 0
	s.CDROM.response.Clear()
	s.INTC.WriteStat(0xFFFFFFFF)
	s.CDROM.intFlag.Update(func(v uint8) uint8 { return 0 })

	TickCdrom(s, backend) // iteration 1
	if s.CDROM.response.ReadAvailable() != 8 {
		t.Fatalf("GetID response length = %d, want 8", s.CDROM.response.ReadAvailable())
	}
	first, _ := s.CDROM.response.Pop()
	if first != 0x08 {
		t.Fatalf("no-disc GetID first byte = 0x%X, want 0x08", first)
	}
}

func TestMsfToLBA(t *testing.T) {
	if got := MsfToLBA(0, 2, 0); got != 0 {
		t.Fatalf("MsfToLBA(0,2,0) = %d, want 0", got)
	}
	if got := MsfToLBA(0, 3, 0); got != 75 {
		t.Fatalf("MsfToLBA(0,3,0) = %d, want 75", got)
	}
}
