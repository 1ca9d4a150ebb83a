package main

import "testing"

func newTestState() *State {
	s := NewState(DefaultConfig())
	s.Initialize()
	return s
}

func loadWord(s *State, addr, word uint32) {
	s.Memory.Write32(addr, word)
}

func encodeI(op, rs, rt, imm uint32) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | (imm & 0xFFFF)
}

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func TestCPUAddiu(t *testing.T) {
	s := newTestState()
	s.CPU.PC = 0x00010000
	// ADDIU r1, r0, 5
	loadWord(s, 0x00010000, encodeI(0x09, 0, 1, 5))
	if err := StepCPU(s); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.CPU.Regs[1] != 5 {
		t.Fatalf("r1 = %d, want 5", s.CPU.Regs[1])
	}
	if s.CPU.PC != 0x00010004 {
		t.Fatalf("PC = 0x%X, want 0x00010004", s.CPU.PC)
	}
}

func TestCPUBranchDelaySlot(t *testing.T) {
	s := newTestState()
	s.CPU.PC = 0x00010000
	// BEQ r0, r0, +2 (skip one instruction after the delay slot)
	loadWord(s, 0x00010000, encodeI(0x04, 0, 0, 2))
	// delay slot: ADDIU r1, r0, 1 (must still execute)
	loadWord(s, 0x00010004, encodeI(0x09, 0, 1, 1))
	// branch target: (delay slot addr 0x10004) + 2*4 = 0x1000C.
	// ADDIU r2, r0, 2
	loadWord(s, 0x0001000C, encodeI(0x09, 0, 2, 2))

	if err := StepCPU(s); err != nil { // executes branch, schedules redirect
		t.Fatalf("step1: %v", err)
	}
	if err := StepCPU(s); err != nil { // executes delay slot, applies redirect
		t.Fatalf("step2: %v", err)
	}
	if s.CPU.Regs[1] != 1 {
		t.Fatalf("delay slot must execute: r1 = %d, want 1", s.CPU.Regs[1])
	}
	if s.CPU.PC != 0x0001000C {
		t.Fatalf("PC after delay slot = 0x%X, want 0x0001000C", s.CPU.PC)
	}
}

func TestCPUMtc0Mfc0RoundTrip(t *testing.T) {
	s := newTestState()
	s.CPU.PC = 0x00010000
	// ADDIU r1, r0, 0x3 (arbitrary SR bits)
	loadWord(s, 0x00010000, encodeI(0x09, 0, 1, 0x3))
	// MTC0 r1, $12 (SR)
	loadWord(s, 0x00010004, (0x10<<26)|encodeR(0x04, 1, 12, 0, 0))
	// MFC0 r2, $12
	loadWord(s, 0x00010008, (0x10<<26)|(0x00<<21)|(2<<16)|(12<<11))

	for i := 0; i < 3; i++ {
		if err := StepCPU(s); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if s.COP0.SR != 0x3 {
		t.Fatalf("SR = 0x%X, want 0x3", s.COP0.SR)
	}
	if s.CPU.Regs[2] != 0x3 {
		t.Fatalf("r2 = 0x%X, want 0x3", s.CPU.Regs[2])
	}
}

func TestCPUBusLockedHazardRollback(t *testing.T) {
	s := newTestState()
	s.CPU.PC = 0x00010000
	// LW r1, 0(r0)
	loadWord(s, 0x00010000, encodeI(0x23, 0, 1, 0))
	loadWord(s, 0x00000000, 0xDEADBEEF)

	s.BusLocked.Store(true)
	if err := StepCPU(s); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.CPU.PC != 0x00010000 {
		t.Fatalf("PC = 0x%X, want unchanged 0x00010000 after hazard", s.CPU.PC)
	}
	if s.CPU.Regs[1] != 0 {
		t.Fatalf("r1 = 0x%X, want untouched 0 after hazard", s.CPU.Regs[1])
	}

	s.BusLocked.Store(false)
	if err := StepCPU(s); err != nil {
		t.Fatalf("retry step: %v", err)
	}
	if s.CPU.Regs[1] != 0xDEADBEEF {
		t.Fatalf("r1 = 0x%X, want 0xDEADBEEF after retry", s.CPU.Regs[1])
	}
	if s.CPU.PC != 0x00010004 {
		t.Fatalf("PC = 0x%X, want 0x00010004 after retry", s.CPU.PC)
	}
}

// TestCPUBusLockedHazardInDelaySlot checks a hazarded load that is
// itself the branch-delay-slot instruction rolls back without losing
// the pending branch redirect.
func TestCPUBusLockedHazardInDelaySlot(t *testing.T) {
	s := newTestState()
	s.CPU.PC = 0x00010000
	// BEQ r0, r0, +2: target = (PC+4) + 2*4 = 0x1000C.
	loadWord(s, 0x00010000, encodeI(0x04, 0, 0, 2))
	// delay slot: LW r1, 0(r0)
	loadWord(s, 0x00010004, encodeI(0x23, 0, 1, 0))
	loadWord(s, 0x00000000, 0xCAFEF00D)
	// branch target
	loadWord(s, 0x0001000C, encodeI(0x09, 0, 2, 7))

	if err := StepCPU(s); err != nil { // executes branch, schedules redirect
		t.Fatalf("step1: %v", err)
	}

	s.BusLocked.Store(true)
	if err := StepCPU(s); err != nil { // delay slot hazarded, must roll back
		t.Fatalf("step2: %v", err)
	}
	if s.CPU.PC != 0x00010004 {
		t.Fatalf("PC = 0x%X, want delay slot 0x00010004 retained after hazard", s.CPU.PC)
	}
	if !s.CPU.branchPending || s.CPU.branchTarget != 0x0001000C {
		t.Fatalf("pending branch lost after hazard: pending=%v target=0x%X", s.CPU.branchPending, s.CPU.branchTarget)
	}

	s.BusLocked.Store(false)
	if err := StepCPU(s); err != nil { // retry delay slot, applies redirect
		t.Fatalf("step3: %v", err)
	}
	if s.CPU.Regs[1] != 0xCAFEF00D {
		t.Fatalf("r1 = 0x%X, want 0xCAFEF00D after retry", s.CPU.Regs[1])
	}
	if s.CPU.PC != 0x0001000C {
		t.Fatalf("PC after retried delay slot = 0x%X, want branch target 0x0001000C", s.CPU.PC)
	}
}

func TestCPUSyscallException(t *testing.T) {
	s := newTestState()
	s.CPU.PC = 0x00010000
	s.COP0.SR = 0 // BEV=0 -> RAM vector
	// SYSCALL
	loadWord(s, 0x00010000, encodeR(0, 0, 0, 0, 0x0C))
	if err := StepCPU(s); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.CPU.PC != 0x80000080 {
		t.Fatalf("PC = 0x%X, want exception vector 0x80000080", s.CPU.PC)
	}
	if s.COP0.EPC != 0x00010000 {
		t.Fatalf("EPC = 0x%X, want 0x00010000", s.COP0.EPC)
	}
}
