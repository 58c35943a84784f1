package bus

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbemu/internal/cart"
)

func newTestBus() *Bus {
	rom := make([]byte, 0x8000)
	return New(cart.NewROMOnly(rom))
}

func newTestBusWithROM(rom []byte) *Bus {
	return New(cart.NewROMOnly(rom))
}

func TestBus_ROMAndWRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x42
	b := newTestBusWithROM(rom)

	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("ROM read got %02X want 42", got)
	}

	b.Write(0xC000, 0x99)
	if got := b.Read(0xC000); got != 0x99 {
		t.Fatalf("WRAM read got %02X want 99", got)
	}
	b.Write(0xDFFF, 0x17)
	if got := b.Read(0xDFFF); got != 0x17 {
		t.Fatalf("WRAM top read got %02X want 17", got)
	}

	// ROM-only cart: external RAM reads 0xFF, ROM writes are dropped.
	if got := b.Read(0xA123); got != 0xFF {
		t.Fatalf("ext RAM (ROM only) got %02X want FF", got)
	}
	b.Write(0x0100, 0x55)
	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("ROM write must not stick, got %02X", got)
	}
}

func TestBus_EchoAndUnusableRegions(t *testing.T) {
	b := newTestBus()
	b.Write(0xC000, 0x55)
	if got := b.Read(0xE000); got != 0 {
		t.Fatalf("echo read got %02X want 00", got)
	}
	b.Write(0xE000, 0x77)
	if got := b.Read(0xC000); got != 0x55 {
		t.Fatalf("echo write must be ignored, WRAM got %02X", got)
	}
	if got := b.Read(0xFEA0); got != 0 {
		t.Fatalf("unusable region read got %02X want 00", got)
	}
	b.Write(0xFEA0, 0x12) // must not panic or land anywhere
}

func TestBus_InterruptRegs(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF0F, 0x3F)
	if got := b.Read(0xFF0F); got != 0xE0|0x1F {
		t.Fatalf("IF read got %02X want FF", got)
	}
	b.Write(0xFFFF, 0x1B)
	if got := b.Read(0xFFFF); got != 0x1B {
		t.Fatalf("IE read got %02X want 1B", got)
	}
	b.RequestInterrupt(2)
	if b.Pending() == 0 {
		t.Fatalf("timer interrupt should be pending with IE bit 2 set")
	}
	b.AcknowledgeInterrupt(2)
	if b.Read(0xFF0F)&0x04 != 0 {
		t.Fatalf("acknowledge must clear the IF bit")
	}
}

func TestBus_HRAM(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF80, 0xAB)
	if got := b.Read(0xFF80); got != 0xAB {
		t.Fatalf("HRAM read got %02X want AB", got)
	}
	b.Write(0xFFFE, 0xCD)
	if got := b.Read(0xFFFE); got != 0xCD {
		t.Fatalf("HRAM top read got %02X want CD", got)
	}
}

func TestBus_SerialCells(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF01, 0x41)
	b.Write(0xFF02, 0x81)
	if got := b.Read(0xFF01); got != 0x41 {
		t.Fatalf("SB got %02X want 41", got)
	}
	if got := b.Read(0xFF02); got != 0x81 {
		t.Fatalf("SC got %02X want 81", got)
	}
	// No transfer simulation: no serial interrupt appears.
	if b.Read(0xFF0F)&(1<<3) != 0 {
		t.Fatalf("serial IF bit must stay clear")
	}
}

func TestBus_JOYP(t *testing.T) {
	b := newTestBus()
	if got := b.Read(0xFF00) & 0x0F; got != 0x0F {
		t.Fatalf("JOYP idle low nibble got %02X want 0F", got)
	}

	// Select the direction pad, press Right+Up.
	b.Write(0xFF00, 0x20)
	b.SetJoypadState(JoypRight | JoypUp)
	if got := b.Read(0xFF00) & 0x0F; got != 0x0A {
		t.Fatalf("JOYP d-pad got %02X want 0A", got)
	}
	if b.Read(0xFF0F)&(1<<4) == 0 {
		t.Fatalf("joypad interrupt not raised on new press")
	}

	// Select the action buttons, press A+Start.
	b.Write(0xFF00, 0x10)
	b.SetJoypadState(JoypA | JoypStart)
	if got := b.Read(0xFF00) & 0x0F; got != 0x06 {
		t.Fatalf("JOYP buttons got %02X want 06", got)
	}
}

func TestBus_TimerRegisters(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF04, 0x12)
	if got := b.Read(0xFF04); got != 0x00 {
		t.Fatalf("DIV after write got %02X want 00", got)
	}
	b.Write(0xFF05, 0x77)
	if got := b.Read(0xFF05); got != 0x77 {
		t.Fatalf("TIMA got %02X want 77", got)
	}
	b.Write(0xFF06, 0x88)
	if got := b.Read(0xFF06); got != 0x88 {
		t.Fatalf("TMA got %02X want 88", got)
	}
	b.Write(0xFF07, 0xFD)
	if got := b.Read(0xFF07); got != 0xF8|0x05 {
		t.Fatalf("TAC got %02X want FD", got)
	}
}

func TestBus_Write16BothBytes(t *testing.T) {
	b := newTestBus()
	// High byte zero must still be written.
	b.Write(0xC100, 0xEE)
	b.Write(0xC101, 0xEE)
	b.Write16(0xC100, 0x0042)
	if got := b.Read(0xC100); got != 0x42 {
		t.Fatalf("low byte got %02X want 42", got)
	}
	if got := b.Read(0xC101); got != 0x00 {
		t.Fatalf("high byte got %02X want 00 (must be written)", got)
	}
	if got := b.Read16(0xC100); got != 0x0042 {
		t.Fatalf("read16 got %04X want 0042", got)
	}
}

func TestBus_StackPrimitives(t *testing.T) {
	b := newTestBus()
	sp := uint16(0xDFFE)
	b.Push16(&sp, 0x1234)
	if sp != 0xDFFC {
		t.Fatalf("SP after push got %04X want DFFC", sp)
	}
	// High byte pushed first: low byte sits at SP.
	if got := b.Read(0xDFFC); got != 0x34 {
		t.Fatalf("byte at SP got %02X want 34", got)
	}
	if got := b.Read(0xDFFD); got != 0x12 {
		t.Fatalf("byte at SP+1 got %02X want 12", got)
	}
	if got := b.Pop16(&sp); got != 0x1234 {
		t.Fatalf("pop16 got %04X want 1234", got)
	}
	if sp != 0xDFFE {
		t.Fatalf("SP after pop got %04X want DFFE", sp)
	}
}

func TestBus_DMALocksOAM(t *testing.T) {
	b := newTestBus()
	// Turn the LCD off so OAM access gating comes from DMA alone.
	b.Write(0xFF40, 0x00)
	for i := 0; i < 0xA0; i++ {
		b.Write(0xC000+uint16(i), byte(i+1))
	}
	b.Write(0xFE00, 0x99) // direct write before DMA

	b.Write(0xFF46, 0xC0)
	if !b.DMAActive() {
		t.Fatalf("DMA must be active after FF46 write")
	}
	if got := b.Read(0xFE00); got != 0xFF {
		t.Fatalf("OAM read during DMA got %02X want FF", got)
	}
	b.Write(0xFE10, 0x55) // dropped while locked

	// 2 delay cycles + 160 transfer cycles finish the burst.
	for i := 0; i < 162; i++ {
		b.TickCycle()
	}
	if b.DMAActive() {
		t.Fatalf("DMA still active after burst")
	}
	for i := 0; i < 0xA0; i++ {
		if got := b.Read(0xFE00 + uint16(i)); got != byte(i+1) {
			t.Fatalf("OAM[%d] got %02X want %02X", i, got, byte(i+1))
		}
	}
	if got := b.Read(0xFF46); got != 0xC0 {
		t.Fatalf("FF46 readback got %02X want C0", got)
	}
}
