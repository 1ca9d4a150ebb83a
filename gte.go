// gte.go - COP2 (geometry transformation engine) dispatch stub

/*
gte.go - COP2 dispatch only.

3D transform/perspective math is out of scope; what guest code needs is
for COP2 instructions to decode and retire without raising a reserved
instruction exception, and for MFC2/MTC2 to round-trip a value so
probe-only code paths (BIOS self-test, games that read back a GTE
register before using it) don't stall. DispatchGTE satisfies exactly
that and nothing else.
*/

package main

// COP2State holds the 64 GTE data/control registers as flat storage;
// no instruction computes a real transform result, each CTC2/MTC2
// simply stores and MFC2/CFC2 simply loads.
type COP2State struct {
	data    [32]uint32
	control [32]uint32
}

// DispatchGTE decodes just enough of a COP2 instruction to route
// register transfers; RTPS/NCLIP/average-Z and the rest of the
// arithmetic opcodes are accepted and retired as no-ops.
func DispatchGTE(s *State, raw uint32) {
	rs := (raw >> 21) & 0x1F
	rt := (raw >> 16) & 0x1F
	rd := (raw >> 11) & 0x1F

	switch rs {
	case 0x00: // MFC2
		setReg(s, rt, s.CPU.COP2.data[rd])
	case 0x02: // CFC2
		setReg(s, rt, s.CPU.COP2.control[rd])
	case 0x04: // MTC2
		s.CPU.COP2.data[rd] = getReg(s, rt)
	case 0x06: // CTC2
		s.CPU.COP2.control[rd] = getReg(s, rt)
	default:
		// GTE arithmetic opcode (rs bit 4 set): accepted, no computed effect.
	}
}
