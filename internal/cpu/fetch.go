package cpu

// fetchData gathers the operands named by the addressing mode. Immediate
// and memory reads each cost their machine cycle; pure register operands
// are free.
func (c *CPU) fetchData() {
	switch c.inst.Mode {
	case amImplied:

	case amR:
		c.fetched = c.readReg(c.inst.Reg1)

	case amRR:
		c.fetched = c.readReg(c.inst.Reg2)

	case amRD8, amD8:
		c.fetched = uint16(c.busRead(c.PC))
		c.PC++

	case amRD16, amD16:
		lo := uint16(c.busRead(c.PC))
		hi := uint16(c.busRead(c.PC + 1))
		c.PC += 2
		c.fetched = lo | hi<<8

	case amMRR:
		c.memDest = c.readReg(c.inst.Reg1)
		if c.inst.Reg1 == rgC {
			c.memDest |= 0xFF00
		}
		c.destIsMem = true
		c.fetched = c.readReg(c.inst.Reg2)

	case amRMR:
		addr := c.readReg(c.inst.Reg2)
		if c.inst.Reg2 == rgC {
			addr |= 0xFF00
		}
		c.fetched = uint16(c.busRead(addr))

	case amRHLI:
		hl := c.getHL()
		c.fetched = uint16(c.busRead(hl))
		c.setHL(hl + 1)

	case amRHLD:
		hl := c.getHL()
		c.fetched = uint16(c.busRead(hl))
		c.setHL(hl - 1)

	case amHLIR:
		hl := c.getHL()
		c.memDest = hl
		c.destIsMem = true
		c.fetched = c.readReg(c.inst.Reg2)
		c.setHL(hl + 1)

	case amHLDR:
		hl := c.getHL()
		c.memDest = hl
		c.destIsMem = true
		c.fetched = c.readReg(c.inst.Reg2)
		c.setHL(hl - 1)

	case amRA8:
		// the zero-page offset; the target read happens in execution
		c.fetched = uint16(c.busRead(c.PC))
		c.PC++

	case amA8R:
		c.memDest = 0xFF00 | uint16(c.busRead(c.PC))
		c.PC++
		c.destIsMem = true
		c.fetched = c.readReg(c.inst.Reg2)

	case amHLSPR:
		c.fetched = uint16(c.busRead(c.PC))
		c.PC++

	case amA16R:
		lo := uint16(c.busRead(c.PC))
		hi := uint16(c.busRead(c.PC + 1))
		c.PC += 2
		c.memDest = lo | hi<<8
		c.destIsMem = true
		c.fetched = c.readReg(c.inst.Reg2)

	case amRA16:
		lo := uint16(c.busRead(c.PC))
		hi := uint16(c.busRead(c.PC + 1))
		c.PC += 2
		c.fetched = uint16(c.busRead(lo | hi<<8))

	case amMRD8:
		c.fetched = uint16(c.busRead(c.PC))
		c.PC++
		c.memDest = c.readReg(c.inst.Reg1)
		c.destIsMem = true

	case amMR:
		c.memDest = c.readReg(c.inst.Reg1)
		c.destIsMem = true
		c.fetched = uint16(c.busRead(c.memDest))
	}
}
