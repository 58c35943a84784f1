package bus

import (
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/dma"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/timer"
)

// Bus decodes the 16-bit address space onto the cartridge, WRAM, HRAM,
// PPU, timer, DMA, and the IO register block, and owns the shared
// interrupt registers IF and IE.
type Bus struct {
	cart cart.Cartridge

	// Work RAM 0xC000-0xDFFF. The echo region 0xE000-0xFDFF reads 0 and
	// drops writes.
	wram [0x2000]byte

	// High RAM 0xFF80-0xFFFE
	hram [0x7F]byte

	ppu   *ppu.PPU
	timer *timer.Timer
	dma   *dma.DMA

	ie    byte // FFFF
	ifReg byte // FF0F, lower 5 bits

	// JOYP select bits (5-4 as last written) and pressed-button mask
	joypSelect byte
	joypad     byte
	joypLower4 byte // last computed low nibble for edge detection

	// Serial: plain cells, no transfer simulation
	sb byte // FF01
	sc byte // FF02
}

// New wires a Bus around a loaded cartridge. The cartridge window is not
// usable without one.
func New(c cart.Cartridge) *Bus {
	if c == nil {
		panic("bus: no cartridge loaded")
	}
	b := &Bus{cart: c}
	req := func(bit int) { b.ifReg |= 1 << bit }
	b.ppu = ppu.New(req)
	b.timer = timer.New(req)
	b.dma = dma.New()
	b.joypLower4 = 0x0F
	return b
}

// PPU exposes the PPU for the frame buffer and tests.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart exposes the cartridge for battery flushes.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr <= 0xFDFF:
		// Echo RAM is left unmapped.
		return 0
	case addr <= 0xFE9F:
		if b.dma.Active() {
			return 0xFF
		}
		return b.ppu.CPURead(addr)
	case addr <= 0xFEFF:
		// unusable region
		return 0
	case addr == 0xFF00:
		return b.readJOYP()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return b.sc
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.timer.Read(addr)
	case addr == 0xFF0F:
		return 0xE0 | (b.ifReg & 0x1F)
	case addr == 0xFF46:
		return b.dma.Register()
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr <= 0xFDFF:
		// echo region: ignored
	case addr <= 0xFE9F:
		if b.dma.Active() {
			return
		}
		b.ppu.CPUWrite(addr, value)
	case addr <= 0xFEFF:
		// unusable region: ignored
	case addr == 0xFF00:
		b.joypSelect = value & 0x30
		b.updateJoypadIRQ()
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.timer.Write(addr, value)
	case addr == 0xFF0F:
		b.ifReg = value & 0x1F
	case addr == 0xFF46:
		b.dma.Start(value)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.ie = value
	}
}

// Read16 composes little-endian from two byte reads.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return lo | hi<<8
}

// Write16 writes both bytes unconditionally, low byte first.
func (b *Bus) Write16(addr uint16, value uint16) {
	b.Write(addr, byte(value))
	b.Write(addr+1, byte(value>>8))
}

// Stack primitives. The stack grows down; 16-bit pushes store the high
// byte first so the low byte ends up at SP.
func (b *Bus) Push8(sp *uint16, value byte) {
	*sp--
	b.Write(*sp, value)
}

func (b *Bus) Pop8(sp *uint16) byte {
	v := b.Read(*sp)
	*sp++
	return v
}

func (b *Bus) Push16(sp *uint16, value uint16) {
	b.Push8(sp, byte(value>>8))
	b.Push8(sp, byte(value))
}

func (b *Bus) Pop16(sp *uint16) uint16 {
	lo := uint16(b.Pop8(sp))
	hi := uint16(b.Pop8(sp))
	return lo | hi<<8
}

// TickCycle advances all devices by one machine cycle: the timer and PPU
// see four T-cycles, the DMA engine moves at most one byte.
func (b *Bus) TickCycle() {
	for i := 0; i < 4; i++ {
		b.timer.Tick()
		b.ppu.Tick()
	}
	if src, dst, ok := b.dma.Tick(); ok {
		b.ppu.OAMWriteDMA(dst, b.Read(src))
	}
}

// RequestInterrupt deposits an IF bit on behalf of a device.
func (b *Bus) RequestInterrupt(bit int) { b.ifReg |= 1 << bit }

// Pending returns the maskable, requested interrupt bits the CPU polls
// between instructions.
func (b *Bus) Pending() byte { return b.ie & b.ifReg & 0x1F }

// AcknowledgeInterrupt clears one IF bit during dispatch.
func (b *Bus) AcknowledgeInterrupt(bit int) { b.ifReg &^= 1 << bit }

// DMAActive reports an in-flight OAM transfer (tests).
func (b *Bus) DMAActive() bool { return b.dma.Active() }
