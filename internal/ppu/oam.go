package ppu

import "sort"

// OAMEntry is one sprite attribute table slot: (y, x, tile, attributes).
type OAMEntry struct {
	Y    byte
	X    byte
	Tile byte
	Attr byte
}

func (e OAMEntry) BehindBG() bool { return e.Attr&0x80 != 0 }
func (e OAMEntry) YFlip() bool    { return e.Attr&0x40 != 0 }
func (e OAMEntry) XFlip() bool    { return e.Attr&0x20 != 0 }
func (e OAMEntry) Palette() byte  { return (e.Attr >> 4) & 0x01 }

// oamRead/oamWrite map byte addresses onto the typed entries; the entry
// index is (addr-0xFE00)/4.
func (p *PPU) oamRead(addr uint16) byte {
	off := int(addr - 0xFE00)
	e := &p.oam[off/4]
	switch off % 4 {
	case 0:
		return e.Y
	case 1:
		return e.X
	case 2:
		return e.Tile
	default:
		return e.Attr
	}
}

func (p *PPU) oamWrite(addr uint16, value byte) {
	off := int(addr - 0xFE00)
	e := &p.oam[off/4]
	switch off % 4 {
	case 0:
		e.Y = value
	case 1:
		e.X = value
	case 2:
		e.Tile = value
	case 3:
		e.Attr = value
	}
}

// OAMWriteDMA is the DMA engine's path into OAM; it bypasses the
// CPU-side mode gating (the transfer itself owns the table).
func (p *PPU) OAMWriteDMA(addr uint16, value byte) {
	p.oamWrite(addr, value)
}

// loadLineSprites walks OAM in index order at the start of a visible line
// and keeps up to 10 entries overlapping LY, sorted by X ascending with
// OAM order breaking ties.
func (p *PPU) loadLineSprites() {
	p.lineSprites = p.lineSprites[:0]
	h := p.objHeight()
	ly := int(p.ly)
	for i := range p.oam {
		e := p.oam[i]
		if e.X == 0 {
			continue
		}
		if int(e.Y) <= ly+16 && int(e.Y)+h > ly+16 {
			p.lineSprites = append(p.lineSprites, e)
			if len(p.lineSprites) == 10 {
				break
			}
		}
	}
	sort.SliceStable(p.lineSprites, func(i, j int) bool {
		return p.lineSprites[i].X < p.lineSprites[j].X
	})
}
