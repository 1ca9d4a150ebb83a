package main

import (
	"errors"
	"testing"
)

func TestFifoOrderAndCapacity(t *testing.T) {
	const n = 8
	f := NewFifo[int](n)

	for i := 0; i < n; i++ {
		if err := f.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if !f.IsFull() {
		t.Fatal("expected full")
	}
	if err := f.Push(99); !errors.Is(err, ErrFifoFull) {
		t.Fatalf("push on full: got %v, want ErrFifoFull", err)
	}

	for i := 0; i < n; i++ {
		v, err := f.Pop()
		if err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
		if v != i {
			t.Fatalf("fifo order: got %d, want %d", v, i)
		}
	}
	if !f.IsEmpty() {
		t.Fatal("expected empty")
	}
	if _, err := f.Pop(); !errors.Is(err, ErrFifoEmpty) {
		t.Fatalf("pop on empty: got %v, want ErrFifoEmpty", err)
	}
}

func TestFifoAvailabilityInvariant(t *testing.T) {
	const n = 16
	f := NewFifo[byte](n)
	for i := 0; i < n; i++ {
		if ra, wa := f.ReadAvailable(), f.WriteAvailable(); ra+wa != n {
			t.Fatalf("read_available+write_available = %d, want %d", ra+wa, n)
		}
		f.Push(byte(i))
	}
	for i := 0; i < n; i++ {
		if ra, wa := f.ReadAvailable(), f.WriteAvailable(); ra+wa != n {
			t.Fatalf("read_available+write_available = %d, want %d", ra+wa, n)
		}
		f.Pop()
	}
}

func TestFifoClear(t *testing.T) {
	f := NewFifo[int](4)
	f.Push(1)
	f.Push(2)
	f.Clear()
	if !f.IsEmpty() {
		t.Fatal("expected empty after clear")
	}
	if f.WriteAvailable() != 4 {
		t.Fatalf("write_available after clear = %d, want 4", f.WriteAvailable())
	}
}
