package ppu

// fetch pipeline states; the fetcher steps on even line ticks.
type fetchState int

const (
	fetchTile fetchState = iota
	fetchData0
	fetchData1
	fetchSleep
	fetchPush
)

// pipeline is the fetch/FIFO register block: where the fetcher is, what it
// has read, and how far pixel emission has progressed on the line.
type pipeline struct {
	state fetchState
	fifo  fifo

	lineX   byte // pixels popped this line (incl. scroll discards)
	pushedX byte // pixels written to the frame buffer this line
	fetchX  byte // leftmost screen x of the slot being fetched
	fifoX   byte // next x the FIFO will cover, used for sprite overlap

	mapX  byte // (fetchX + SCX) mod 256
	mapY  byte // (LY + SCY) mod 256
	tileY byte // byte offset of the row inside the tile (2 per row)

	bgwData    [3]byte // tile index, data low, data high
	spriteData [6]byte // two bytes per fetched sprite

	windowActive bool // the current slot fetches from the window map
}

func (pf *pipeline) resetLine() {
	pf.state = fetchTile
	pf.lineX = 0
	pf.pushedX = 0
	pf.fetchX = 0
	pf.fifoX = 0
	pf.windowActive = false
	pf.fifo.Clear()
}

// pipelineProcess is called every tick of pixel transfer: the fetcher runs
// on even ticks, emission runs every tick.
func (p *PPU) pipelineProcess() {
	p.pf.mapY = p.ly + p.scy
	p.pf.mapX = p.pf.fetchX + p.scx
	if p.pf.windowActive {
		p.pf.tileY = (p.windowLine % 8) * 2
	} else {
		p.pf.tileY = (p.pf.mapY % 8) * 2
	}
	if p.lineTicks&1 == 0 {
		p.pipelineFetch()
	}
	p.pushPixel()
}

func (p *PPU) pipelineFetch() {
	switch p.pf.state {
	case fetchTile:
		p.fetched = p.fetched[:0]
		p.pf.windowActive = false

		if p.bgEnabled() {
			addr := p.bgMapBase() + uint16(p.pf.mapX)/8 + uint16(p.pf.mapY)/8*32
			idx := p.vramRead(addr)
			if p.bgDataArea() == 0x8800 {
				idx += 128
			}
			p.pf.bgwData[0] = idx
			p.loadWindowTile()
		}

		if p.objEnabled() && len(p.lineSprites) > 0 {
			p.loadSpriteTile()
		}

		p.pf.state = fetchData0
		p.pf.fetchX += 8

	case fetchData0:
		addr := p.bgDataArea() + uint16(p.pf.bgwData[0])*16 + uint16(p.pf.tileY)
		p.pf.bgwData[1] = p.vramRead(addr)
		p.loadSpriteData(0)
		p.pf.state = fetchData1

	case fetchData1:
		addr := p.bgDataArea() + uint16(p.pf.bgwData[0])*16 + uint16(p.pf.tileY) + 1
		p.pf.bgwData[2] = p.vramRead(addr)
		p.loadSpriteData(1)
		p.pf.state = fetchSleep

	case fetchSleep:
		p.pf.state = fetchPush

	case fetchPush:
		if p.fifoAdd() {
			p.pf.state = fetchTile
		}
	}
}

// fifoAdd tries to enqueue eight composed pixels; it refuses until the
// FIFO has drained to eight or fewer.
func (p *PPU) fifoAdd() bool {
	if p.pf.fifo.Len() > 8 {
		return false
	}

	for i := 0; i < 8; i++ {
		bit := 7 - i
		lo := (p.pf.bgwData[1] >> bit) & 1
		hi := ((p.pf.bgwData[2] >> bit) & 1) << 1
		bgIdx := hi | lo
		if !p.bgEnabled() {
			bgIdx = 0
		}
		shade := p.bgShades[bgIdx]
		if p.objEnabled() {
			shade = p.spritePixel(shade, bgIdx)
		}
		p.pf.fifo.Push(shade)
		p.pf.fifoX++
	}
	return true
}

// spritePixel composes the fetched sprites over one background pixel.
// Sprites are walked in line order (X then OAM index); the first with a
// non-zero color wins unless it hides behind a non-zero background.
func (p *PPU) spritePixel(bgShade, bgIdx byte) byte {
	cur := int(p.pf.fifoX)
	for i, e := range p.fetched {
		spX := int(e.X) - 8 + int(p.scx%8)
		if spX+8 < cur {
			continue
		}
		offset := cur - spX
		if offset < 0 || offset > 7 {
			continue
		}
		bit := 7 - offset
		if e.XFlip() {
			bit = offset
		}
		lo := (p.pf.spriteData[i*2] >> bit) & 1
		hi := ((p.pf.spriteData[i*2+1] >> bit) & 1) << 1
		idx := hi | lo
		if idx == 0 {
			// transparent pixel
			continue
		}
		if !e.BehindBG() || bgIdx == 0 {
			if e.Palette() == 0 {
				return p.obj0Shades[idx]
			}
			return p.obj1Shades[idx]
		}
	}
	return bgShade
}

// pushPixel pops one pixel per tick once the FIFO holds more than eight;
// the first SCX%8 pops of a line are scroll discards.
func (p *PPU) pushPixel() {
	if p.pf.fifo.Len() <= 8 {
		return
	}
	shade, _ := p.pf.fifo.Pop()
	if p.pf.lineX >= p.scx%8 {
		p.fb[int(p.ly)*ScreenWidth+int(p.pf.pushedX)] = shade
		p.pf.pushedX++
	}
	p.pf.lineX++
}

// loadSpriteTile records up to three line sprites overlapping the current
// 8-pixel fetch slot.
func (p *PPU) loadSpriteTile() {
	cur := int(p.pf.fetchX)
	for _, e := range p.lineSprites {
		spX := int(e.X) - 8 + int(p.scx%8)
		if (spX >= cur && spX < cur+8) || (spX+8 >= cur && spX+8 < cur+8) {
			p.fetched = append(p.fetched, e)
			if len(p.fetched) == 3 {
				break
			}
		}
	}
}

// loadSpriteData reads byte 0 or 1 of each fetched sprite's row,
// honouring Y flip and the even-index rule for 8x16 sprites.
func (p *PPU) loadSpriteData(offset int) {
	ly := int(p.ly)
	h := p.objHeight()
	for i, e := range p.fetched {
		ty := (ly + 16 - int(e.Y)) * 2
		if e.YFlip() {
			ty = h*2 - 2 - ty
		}
		tile := e.Tile
		if h == 16 {
			tile &^= 1
		}
		p.pf.spriteData[i*2+offset] = p.vramRead(0x8000 + uint16(tile)*16 + uint16(ty+offset))
	}
}

// loadWindowTile overlays the window tile index once the fetcher crosses
// WX on a line at or below WY.
func (p *PPU) loadWindowTile() {
	if !p.windowVisible() || p.ly < p.wy {
		return
	}
	fx := int(p.pf.fetchX) + 7
	if fx < int(p.wx) {
		return
	}
	wtY := uint16(p.windowLine) / 8
	addr := p.windowMapBase() + uint16(fx-int(p.wx))/8 + wtY*32
	idx := p.vramRead(addr)
	if p.bgDataArea() == 0x8800 {
		idx += 128
	}
	p.pf.bgwData[0] = idx
	p.pf.windowActive = true
}

// windowVisible reports whether the window can appear anywhere this frame.
func (p *PPU) windowVisible() bool {
	return p.windowEnabled() && p.wx <= 166 && p.wy < ScreenHeight
}
