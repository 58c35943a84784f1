package ppu

import "testing"

func TestFIFO_PushPopOrder(t *testing.T) {
	var q fifo
	for i := 0; i < 16; i++ {
		if !q.Push(byte(i & 3)) {
			t.Fatalf("push %d refused below capacity", i)
		}
	}
	if q.Push(0) {
		t.Fatalf("push beyond capacity must refuse")
	}
	if q.Len() != 16 {
		t.Fatalf("len got %d want 16", q.Len())
	}
	for i := 0; i < 16; i++ {
		v, ok := q.Pop()
		if !ok || v != byte(i&3) {
			t.Fatalf("pop %d got %d ok=%v", i, v, ok)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("pop from empty must fail")
	}
}

func TestFIFO_WrapAround(t *testing.T) {
	var q fifo
	for round := 0; round < 5; round++ {
		for i := 0; i < 10; i++ {
			q.Push(byte((round + i) & 3))
		}
		for i := 0; i < 10; i++ {
			v, _ := q.Pop()
			if v != byte((round+i)&3) {
				t.Fatalf("round %d pop %d got %d", round, i, v)
			}
		}
	}
}
