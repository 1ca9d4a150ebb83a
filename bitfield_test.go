package main

import "testing"

func TestBitfieldRoundTrip(t *testing.T) {
	cases := []struct {
		start, width uint32
	}{
		{0, 1}, {0, 8}, {4, 4}, {16, 16}, {24, 8}, {0, 32},
	}

	for _, c := range cases {
		bf := NewBitfield(c.start, c.width)
		maxVal := uint32(1)<<c.width - 1
		if c.width == 32 {
			maxVal = 0xFFFFFFFF
		}
		for _, v := range []uint32{0, 1, maxVal, maxVal / 2} {
			word := uint32(0xA5A5A5A5)
			inserted := bf.InsertInto(word, v)
			if got := bf.ExtractFrom(inserted); got != v {
				t.Fatalf("start=%d width=%d value=%d: extract(insert(x,v))=%d", c.start, c.width, v, got)
			}
			// Bits outside the field must be preserved.
			outsideMask := ^(bf.mask() << bf.Start)
			if inserted&outsideMask != word&outsideMask {
				t.Fatalf("start=%d width=%d: bits outside field were modified", c.start, c.width)
			}
		}
	}
}

func TestBitfieldCopy(t *testing.T) {
	bf := NewBitfield(8, 8)
	dst := uint32(0x000000FF)
	src := uint32(0x0000AB00)
	got := bf.Copy(dst, src)
	if got != 0x0000ABFF {
		t.Fatalf("Copy: got 0x%08X, want 0x0000ABFF", got)
	}
}
