package cart

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Cartridge is the flat read/write window the Bus sees. Addresses are CPU
// addresses: ROM at 0x0000-0x7FFF, external RAM at 0xA000-0xBFFF. Writes
// into the ROM range are MBC register writes and never modify ROM.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	// Save flushes battery-backed RAM to the sidecar save file. It is a
	// no-op for carts without a battery.
	Save() error
}

// New selects an MBC implementation from the ROM header. romPath may be
// empty (no battery persistence, e.g. in tests); when set, battery carts
// load and store <stem>.sav in a saves/ directory next to the ROM.
func New(rom []byte, romPath string) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if !HeaderChecksumOK(rom) {
		// Some homebrew ROMs ship with a wrong checksum; keep going.
		log.Printf("cart: header checksum mismatch (got %02X)", h.HeaderChecksum)
	}

	bat := newBattery(h, romPath)
	switch h.CartType {
	case 0x00, 0x08, 0x09:
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h, bat), nil
	case 0x05, 0x06:
		return nil, fmt.Errorf("unsupported cartridge: MBC2 (type %02X)", h.CartType)
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h, bat), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h, bat), nil
	default:
		// Fall back to ROM-only for unknown types so homebrew/tests can run.
		log.Printf("cart: unknown type %02X, falling back to ROM only", h.CartType)
		return NewROMOnly(rom), nil
	}
}

// saveSkips batches battery flushes: RAM is written out on every Nth
// cart-RAM write and on shutdown, not on every write.
const saveSkips = 20

// battery handles save-file persistence for MBCs with battery-backed RAM.
type battery struct {
	enabled  bool
	savePath string
	skips    int
}

func newBattery(h *Header, romPath string) battery {
	if !h.HasBattery || h.RAMSizeBytes == 0 || romPath == "" {
		return battery{}
	}
	stem := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	return battery{
		enabled:  true,
		savePath: filepath.Join(filepath.Dir(romPath), "saves", stem+".sav"),
	}
}

// markWrite counts a cart-RAM write and flushes every saveSkips writes.
func (b *battery) markWrite(ram []byte) {
	if !b.enabled {
		return
	}
	b.skips++
	if b.skips >= saveSkips {
		b.skips = 0
		if err := b.flush(ram); err != nil {
			log.Printf("cart: save failed: %v", err)
		}
	}
}

// flush writes all RAM banks in order to the sidecar save file.
func (b *battery) flush(ram []byte) error {
	if !b.enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.savePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(b.savePath, ram, 0o644)
}

// load restores RAM banks from the save file, if one exists.
func (b *battery) load(ram []byte) {
	if !b.enabled {
		return
	}
	data, err := os.ReadFile(b.savePath)
	if err != nil {
		return
	}
	copy(ram, data)
}

// pow2Mask returns the smallest power-of-two >= n, minus one. Bank
// registers are masked through this and then clamped to n-1 before
// indexing, so out-of-range writes never escape the bank arrays.
func pow2Mask(n int) int {
	if n <= 1 {
		return 0
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p - 1
}

// clampBank applies the power-of-two mask for count and clamps the result
// to the last real bank.
func clampBank(idx, count int) int {
	if count <= 1 {
		return 0
	}
	idx &= pow2Mask(count)
	if idx > count-1 {
		idx = count - 1
	}
	return idx
}
