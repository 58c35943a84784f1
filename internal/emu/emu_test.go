package emu

import (
	"testing"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbemu/internal/ppu"
)

// testROM builds a minimal image that spins in a NOP/JP loop at 0x0100.
func testROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x00
	rom[0x0101] = 0xC3
	rom[0x0102] = 0x00
	rom[0x0103] = 0x01
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
	return rom
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m := New(Config{})
	if err := m.LoadCartridge(testROM(), ""); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	return m
}

func TestStepFrame_TakesOneFrameOfTicks(t *testing.T) {
	m := newTestMachine(t)
	// The frame latch fires on entering VBlank; steady-state frames are
	// exactly 154*456 T-cycles apart (one instruction of jitter).
	m.StepFrame()
	t1 := m.CPU().Ticks
	m.StepFrame()
	t2 := m.CPU().Ticks
	const frameTicks = 154 * 456
	delta := int(t2 - t1)
	if delta < frameTicks-24 || delta > frameTicks+24 {
		t.Fatalf("frame delta took %d ticks, want ~%d", delta, frameTicks)
	}
	if len(m.Framebuffer()) != ppu.ScreenWidth*ppu.ScreenHeight*4 {
		t.Fatalf("framebuffer size %d", len(m.Framebuffer()))
	}
}

func TestTimerOverflowEndToEnd(t *testing.T) {
	m := newTestMachine(t)
	b := m.Bus()
	b.Write(0xFF06, 0xFE) // TMA
	b.Write(0xFF05, 0xFF) // TIMA
	b.Write(0xFF04, 0x00) // reset DIV for a predictable edge
	b.Write(0xFF07, 0x05) // enable, bit-3 select

	for i := 0; i < 100 && b.Read(0xFF0F)&0x04 == 0; i++ {
		m.CPU().Step()
	}
	if b.Read(0xFF0F)&0x04 == 0 {
		t.Fatalf("timer interrupt flag not raised")
	}
	if got := b.Read(0xFF05); got != 0xFE {
		t.Fatalf("TIMA after overflow got %02X want FE (TMA)", got)
	}
}

func TestDMAEndToEnd(t *testing.T) {
	m := newTestMachine(t)
	b := m.Bus()
	b.Write(0xFF40, 0x00) // LCD off: OAM gating comes from DMA alone
	for i := 0; i < 0xA0; i++ {
		b.Write(0xC000+uint16(i), byte(i+1))
	}
	b.Write(0xFF46, 0xC0)

	if got := b.Read(0xFE00); got != 0xFF {
		t.Fatalf("OAM read during DMA got %02X want FF", got)
	}
	// 162 machine cycles (2 startup + 160 bytes) finish the burst.
	start := m.CPU().Ticks
	for m.CPU().Ticks-start < 162*4 {
		m.CPU().Step()
	}
	if b.DMAActive() {
		t.Fatalf("DMA still active")
	}
	for i := 0; i < 0xA0; i++ {
		if got := b.Read(0xFE00 + uint16(i)); got != byte(i+1) {
			t.Fatalf("OAM[%d] got %02X want %02X", i, got, byte(i+1))
		}
	}
}

func TestButtonsReachJoypad(t *testing.T) {
	m := newTestMachine(t)
	b := m.Bus()
	b.Write(0xFF00, 0x20) // select d-pad
	m.SetButtons(Buttons{Right: true, Up: true})
	if got := b.Read(0xFF00) & 0x0F; got != 0x0A {
		t.Fatalf("JOYP got %02X want 0A", got)
	}
}

func TestRunLoopDeliversFramesAndStops(t *testing.T) {
	m := newTestMachine(t)
	m.Start()

	select {
	case frame := <-m.Frames():
		if len(frame) != ppu.ScreenWidth*ppu.ScreenHeight*4 {
			t.Fatalf("frame size %d", len(frame))
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no frame delivered")
	}

	m.PushInput(Buttons{Start: true})
	m.RequestSave() // ROM-only cart: flush is a no-op, must not block
	m.Stop()
}
