package cart

import "testing"

func newTestMBC3(t *testing.T, romCode, ramCode byte) *MBC3 {
	t.Helper()
	rom := buildROM(t, 0x10, romCode, ramCode) // MBC3+TIMER+RAM+BATTERY
	stampBanks(rom)
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	return NewMBC3(rom, h, battery{})
}

func TestMBC3_ROMBanking(t *testing.T) {
	m := newTestMBC3(t, 0x04, 0x00) // 32 banks

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default bank got %02X want 01", got)
	}
	// Full 7-bit register, no upper-bit pairing.
	m.Write(0x2000, 0x1F)
	if got := m.Read(0x4000); got != 0x1F {
		t.Fatalf("bank 1F got %02X", got)
	}
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank 0 write should map to 1, got %02X", got)
	}
}

func TestMBC3_RTCSelect(t *testing.T) {
	m := newTestMBC3(t, 0x02, 0x03)
	m.Write(0x0000, 0x0A)

	// Map the minutes register and write through the RAM window.
	m.Write(0x4000, 0x09)
	m.Write(0xA000, 0x2A)
	if got := m.Read(0xA000); got != 0x2A {
		t.Fatalf("RTC register readback got %02X want 2A", got)
	}
	// Latch sequence is accepted and leaves the register file untouched.
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01)
	if got := m.Read(0xA000); got != 0x2A {
		t.Fatalf("latched RTC got %02X want 2A", got)
	}

	// Switching back to a RAM bank unmaps the clock.
	m.Write(0x4000, 0x00)
	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("RAM bank 0 got %02X want 55", got)
	}
	m.Write(0x4000, 0x09)
	if got := m.Read(0xA000); got != 0x2A {
		t.Fatalf("RTC value lost across bank switch, got %02X", got)
	}
}

func TestMBC3_DisabledRAM(t *testing.T) {
	m := newTestMBC3(t, 0x02, 0x03)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
	m.Write(0x4000, 0x09)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RTC read got %02X want FF", got)
	}
}
