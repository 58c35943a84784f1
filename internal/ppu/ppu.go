package ppu

// InterruptRequester is a callback to request IF bits (0:VBlank, 1:STAT).
type InterruptRequester func(bit int)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	ticksPerLine  = 456
	linesPerFrame = 154
)

// PPU modes as exposed in STAT bits 1-0.
const (
	ModeHBlank byte = 0
	ModeVBlank byte = 1
	ModeOAM    byte = 2
	ModeXfer   byte = 3
)

// PPU owns VRAM, OAM, the LCD register block, the scanline/mode state
// machine, and the fetch/FIFO pipeline that fills the frame buffer with
// palette-mapped shades (0..3).
type PPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	oam  [40]OAMEntry // 0xFE00-0xFE9F, 4 bytes per entry

	lcdc byte // FF40
	stat byte // FF41 (mode bits 1-0, LYC flag bit 2, enables bits 3-6)
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	// palette registers decoded into shade tables
	bgShades   [4]byte
	obj0Shades [4]byte
	obj1Shades [4]byte

	lineTicks  int
	windowLine byte

	lineSprites []OAMEntry // up to 10, X-sorted, for the current line
	fetched     []OAMEntry // up to 3, overlapping the current fetch slot

	pf pipeline

	fb         [ScreenWidth * ScreenHeight]byte
	frameReady bool

	req InterruptRequester
}

func New(req InterruptRequester) *PPU {
	p := &PPU{
		req:         req,
		lineSprites: make([]OAMEntry, 0, 10),
		fetched:     make([]OAMEntry, 0, 3),
	}
	// Post-boot register state.
	p.writeLCDC(0x91)
	p.writeBGP(0xFC)
	p.writeOBP0(0xFF)
	p.writeOBP1(0xFF)
	return p
}

// LCDC helpers
func (p *PPU) bgEnabled() bool     { return p.lcdc&0x01 != 0 }
func (p *PPU) objEnabled() bool    { return p.lcdc&0x02 != 0 }
func (p *PPU) windowEnabled() bool { return p.lcdc&0x20 != 0 }
func (p *PPU) lcdEnabled() bool    { return p.lcdc&0x80 != 0 }

func (p *PPU) objHeight() int {
	if p.lcdc&0x04 != 0 {
		return 16
	}
	return 8
}

func (p *PPU) bgMapBase() uint16 {
	if p.lcdc&0x08 != 0 {
		return 0x9C00
	}
	return 0x9800
}

func (p *PPU) bgDataArea() uint16 {
	if p.lcdc&0x10 != 0 {
		return 0x8000
	}
	return 0x8800
}

func (p *PPU) windowMapBase() uint16 {
	if p.lcdc&0x40 != 0 {
		return 0x9C00
	}
	return 0x9800
}

func (p *PPU) mode() byte { return p.stat & 0x03 }

// vramRead is the PPU's direct path to tile data; never gated.
func (p *PPU) vramRead(addr uint16) byte {
	return p.vram[addr-0x8000]
}

// CPURead serves bus reads of VRAM, OAM, and the LCD register block.
// VRAM is unreadable during pixel transfer, OAM during OAM scan and
// transfer; blocked reads return 0xFF.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.lcdEnabled() && p.mode() == ModeXfer {
			return 0xFF
		}
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.lcdEnabled() && (p.mode() == ModeOAM || p.mode() == ModeXfer) {
			return 0xFF
		}
		return p.oamRead(addr)
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | p.stat
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

// CPUWrite serves bus writes; gating mirrors CPURead. LY is read-only.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.lcdEnabled() && p.mode() == ModeXfer {
			return
		}
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.lcdEnabled() && (p.mode() == ModeOAM || p.mode() == ModeXfer) {
			return
		}
		p.oamWrite(addr, value)
	case addr == 0xFF40:
		p.writeLCDC(value)
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		// LY is owned by the PPU; hardware ignores writes.
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
	case addr == 0xFF47:
		p.writeBGP(value)
	case addr == 0xFF48:
		p.writeOBP0(value)
	case addr == 0xFF49:
		p.writeOBP1(value)
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	}
}

func (p *PPU) writeLCDC(value byte) {
	prev := p.lcdc
	p.lcdc = value
	if prev&0x80 != 0 && value&0x80 == 0 {
		// LCD off: LY and the line clock reset, mode reads as HBlank.
		p.ly = 0
		p.lineTicks = 0
		p.windowLine = 0
		p.stat = p.stat &^ 0x03
		p.updateLYC()
	} else if prev&0x80 == 0 && value&0x80 != 0 {
		p.ly = 0
		p.lineTicks = 0
		p.windowLine = 0
		p.setMode(ModeOAM)
		p.updateLYC()
	}
}

func (p *PPU) writeBGP(value byte) {
	p.bgp = value
	for i := 0; i < 4; i++ {
		p.bgShades[i] = (value >> (2 * i)) & 0x03
	}
}

func (p *PPU) writeOBP0(value byte) {
	p.obp0 = value
	for i := 0; i < 4; i++ {
		p.obj0Shades[i] = (value >> (2 * i)) & 0x03
	}
}

func (p *PPU) writeOBP1(value byte) {
	p.obp1 = value
	for i := 0; i < 4; i++ {
		p.obj1Shades[i] = (value >> (2 * i)) & 0x03
	}
}

// Framebuffer exposes the current shade buffer (row-major, LY*160+x).
func (p *PPU) Framebuffer() *[ScreenWidth * ScreenHeight]byte { return &p.fb }

// TakeFrame reports and clears the frame-ready latch set when the PPU
// enters VBlank.
func (p *PPU) TakeFrame() bool {
	if p.frameReady {
		p.frameReady = false
		return true
	}
	return false
}

// LY exposes the current scanline for tests and debug overlays.
func (p *PPU) LY() byte { return p.ly }
