package ppu

// STAT interrupt source enable bits.
const (
	statHBlankInt = 1 << 3
	statVBlankInt = 1 << 4
	statOAMInt    = 1 << 5
	statLYCInt    = 1 << 6
)

// Tick advances the PPU by one T-cycle. The PPU is stopped entirely while
// the LCD is disabled.
func (p *PPU) Tick() {
	if !p.lcdEnabled() {
		return
	}
	p.lineTicks++
	switch p.mode() {
	case ModeOAM:
		p.modeOAM()
	case ModeXfer:
		p.modeXfer()
	case ModeHBlank:
		p.modeHBlank()
	case ModeVBlank:
		p.modeVBlank()
	}
}

func (p *PPU) modeOAM() {
	if p.lineTicks == 1 {
		p.loadLineSprites()
	}
	if p.lineTicks >= 80 {
		p.setMode(ModeXfer)
		p.pf.resetLine()
	}
}

func (p *PPU) modeXfer() {
	p.pipelineProcess()
	if int(p.pf.pushedX) >= ScreenWidth {
		p.pf.fifo.Clear()
		p.setMode(ModeHBlank)
	}
}

func (p *PPU) modeHBlank() {
	if p.lineTicks < ticksPerLine {
		return
	}
	p.incrementLY()
	if int(p.ly) >= ScreenHeight {
		p.setMode(ModeVBlank)
		if p.req != nil {
			p.req(0)
		}
		p.frameReady = true
	} else {
		p.setMode(ModeOAM)
	}
	p.lineTicks = 0
}

func (p *PPU) modeVBlank() {
	if p.lineTicks < ticksPerLine {
		return
	}
	p.incrementLY()
	if int(p.ly) >= linesPerFrame {
		p.ly = 0
		p.windowLine = 0
		p.setMode(ModeOAM)
		p.updateLYC()
	}
	p.lineTicks = 0
}

// incrementLY advances the scanline, keeps the internal window line
// counter in step, and re-evaluates the LY=LYC compare.
func (p *PPU) incrementLY() {
	if p.windowVisible() && p.ly >= p.wy {
		p.windowLine++
	}
	p.ly++
	p.updateLYC()
}

func (p *PPU) setMode(mode byte) {
	prev := p.mode()
	if prev == mode {
		return
	}
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
	var enable byte
	switch mode {
	case ModeHBlank:
		enable = statHBlankInt
	case ModeVBlank:
		enable = statVBlankInt
	case ModeOAM:
		enable = statOAMInt
	default:
		return
	}
	if p.stat&enable != 0 && p.req != nil {
		p.req(1)
	}
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if p.stat&statLYCInt != 0 && p.req != nil {
			p.req(1)
		}
	} else {
		p.stat &^= 1 << 2
	}
}
