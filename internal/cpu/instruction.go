package cpu

// opKind names the semantic operation of an instruction.
type opKind int

const (
	opNone opKind = iota
	opNOP
	opLD
	opLDH
	opINC
	opDEC
	opRLCA
	opRRCA
	opRLA
	opRRA
	opADD
	opADC
	opSUB
	opSBC
	opAND
	opXOR
	opOR
	opCP
	opDAA
	opCPL
	opSCF
	opCCF
	opJP
	opJR
	opCALL
	opRET
	opRETI
	opRST
	opPUSH
	opPOP
	opCB
	opSTOP
	opHALT
	opDI
	opEI
)

// addrMode describes how operands are obtained before execution.
type addrMode int

const (
	amImplied addrMode = iota
	amR                // operand is Reg1
	amRR               // operand is Reg2, destination Reg1
	amRD8              // Reg1 <- immediate 8
	amRD16             // Reg1 <- immediate 16
	amMRR              // (Reg1) <- Reg2; Reg1==C uses the 0xFF00 page
	amRMR              // Reg1 <- (Reg2); Reg2==C uses the 0xFF00 page
	amRHLI             // Reg1 <- (HL+)
	amRHLD             // Reg1 <- (HL-)
	amHLIR             // (HL+) <- Reg2
	amHLDR             // (HL-) <- Reg2
	amRA8              // Reg1 <- (0xFF00+a8)
	amA8R              // (0xFF00+a8) <- Reg2
	amHLSPR            // HL <- SP + e8
	amD8               // immediate 8, no register destination
	amD16              // immediate 16, no register destination
	amA16R             // (a16) <- Reg2
	amRA16             // Reg1 <- (a16)
	amMRD8             // (Reg1) <- immediate 8
	amMR               // read-modify-write through (Reg1)
)

// regType names a register operand; rgNone marks absent operands.
type regType int

const (
	rgNone regType = iota
	rgA
	rgB
	rgC
	rgD
	rgE
	rgH
	rgL
	rgAF
	rgBC
	rgDE
	rgHL
	rgSP
)

func is16bit(r regType) bool { return r >= rgAF }

// condType is the branch condition of conditional jumps/calls/returns.
type condType int

const (
	condNone condType = iota
	condNZ
	condZ
	condNC
	condC
)

// Instruction is one decoded opcode row: what to do, how to address it,
// which registers participate, under which condition, and the RST vector.
type Instruction struct {
	Kind   opKind
	Mode   addrMode
	Reg1   regType
	Reg2   regType
	Cond   condType
	RSTVec byte
}

// regDecode maps the 3-bit register fields of the regular opcode grids;
// index 6 is memory-at-HL.
var regDecode = [8]regType{rgB, rgC, rgD, rgE, rgH, rgL, rgHL, rgA}

// aluKinds maps bits 5-3 of the 0x80-0xBF grid.
var aluKinds = [8]opKind{opADD, opADC, opSUB, opSBC, opAND, opXOR, opOR, opCP}

// opcodes is the primary decode table. The irregular rows are spelled out
// here; the regular grids 0x40-0xBF are derived in init from the opcode
// bit fields.
var opcodes = [256]Instruction{
	0x00: {Kind: opNOP, Mode: amImplied},
	0x01: {Kind: opLD, Mode: amRD16, Reg1: rgBC},
	0x02: {Kind: opLD, Mode: amMRR, Reg1: rgBC, Reg2: rgA},
	0x03: {Kind: opINC, Mode: amR, Reg1: rgBC},
	0x04: {Kind: opINC, Mode: amR, Reg1: rgB},
	0x05: {Kind: opDEC, Mode: amR, Reg1: rgB},
	0x06: {Kind: opLD, Mode: amRD8, Reg1: rgB},
	0x07: {Kind: opRLCA, Mode: amImplied},
	0x08: {Kind: opLD, Mode: amA16R, Reg2: rgSP},
	0x09: {Kind: opADD, Mode: amRR, Reg1: rgHL, Reg2: rgBC},
	0x0A: {Kind: opLD, Mode: amRMR, Reg1: rgA, Reg2: rgBC},
	0x0B: {Kind: opDEC, Mode: amR, Reg1: rgBC},
	0x0C: {Kind: opINC, Mode: amR, Reg1: rgC},
	0x0D: {Kind: opDEC, Mode: amR, Reg1: rgC},
	0x0E: {Kind: opLD, Mode: amRD8, Reg1: rgC},
	0x0F: {Kind: opRRCA, Mode: amImplied},

	0x10: {Kind: opSTOP, Mode: amD8},
	0x11: {Kind: opLD, Mode: amRD16, Reg1: rgDE},
	0x12: {Kind: opLD, Mode: amMRR, Reg1: rgDE, Reg2: rgA},
	0x13: {Kind: opINC, Mode: amR, Reg1: rgDE},
	0x14: {Kind: opINC, Mode: amR, Reg1: rgD},
	0x15: {Kind: opDEC, Mode: amR, Reg1: rgD},
	0x16: {Kind: opLD, Mode: amRD8, Reg1: rgD},
	0x17: {Kind: opRLA, Mode: amImplied},
	0x18: {Kind: opJR, Mode: amD8},
	0x19: {Kind: opADD, Mode: amRR, Reg1: rgHL, Reg2: rgDE},
	0x1A: {Kind: opLD, Mode: amRMR, Reg1: rgA, Reg2: rgDE},
	0x1B: {Kind: opDEC, Mode: amR, Reg1: rgDE},
	0x1C: {Kind: opINC, Mode: amR, Reg1: rgE},
	0x1D: {Kind: opDEC, Mode: amR, Reg1: rgE},
	0x1E: {Kind: opLD, Mode: amRD8, Reg1: rgE},
	0x1F: {Kind: opRRA, Mode: amImplied},

	0x20: {Kind: opJR, Mode: amD8, Cond: condNZ},
	0x21: {Kind: opLD, Mode: amRD16, Reg1: rgHL},
	0x22: {Kind: opLD, Mode: amHLIR, Reg1: rgHL, Reg2: rgA},
	0x23: {Kind: opINC, Mode: amR, Reg1: rgHL},
	0x24: {Kind: opINC, Mode: amR, Reg1: rgH},
	0x25: {Kind: opDEC, Mode: amR, Reg1: rgH},
	0x26: {Kind: opLD, Mode: amRD8, Reg1: rgH},
	0x27: {Kind: opDAA, Mode: amImplied},
	0x28: {Kind: opJR, Mode: amD8, Cond: condZ},
	0x29: {Kind: opADD, Mode: amRR, Reg1: rgHL, Reg2: rgHL},
	0x2A: {Kind: opLD, Mode: amRHLI, Reg1: rgA, Reg2: rgHL},
	0x2B: {Kind: opDEC, Mode: amR, Reg1: rgHL},
	0x2C: {Kind: opINC, Mode: amR, Reg1: rgL},
	0x2D: {Kind: opDEC, Mode: amR, Reg1: rgL},
	0x2E: {Kind: opLD, Mode: amRD8, Reg1: rgL},
	0x2F: {Kind: opCPL, Mode: amImplied},

	0x30: {Kind: opJR, Mode: amD8, Cond: condNC},
	0x31: {Kind: opLD, Mode: amRD16, Reg1: rgSP},
	0x32: {Kind: opLD, Mode: amHLDR, Reg1: rgHL, Reg2: rgA},
	0x33: {Kind: opINC, Mode: amR, Reg1: rgSP},
	0x34: {Kind: opINC, Mode: amMR, Reg1: rgHL},
	0x35: {Kind: opDEC, Mode: amMR, Reg1: rgHL},
	0x36: {Kind: opLD, Mode: amMRD8, Reg1: rgHL},
	0x37: {Kind: opSCF, Mode: amImplied},
	0x38: {Kind: opJR, Mode: amD8, Cond: condC},
	0x39: {Kind: opADD, Mode: amRR, Reg1: rgHL, Reg2: rgSP},
	0x3A: {Kind: opLD, Mode: amRHLD, Reg1: rgA, Reg2: rgHL},
	0x3B: {Kind: opDEC, Mode: amR, Reg1: rgSP},
	0x3C: {Kind: opINC, Mode: amR, Reg1: rgA},
	0x3D: {Kind: opDEC, Mode: amR, Reg1: rgA},
	0x3E: {Kind: opLD, Mode: amRD8, Reg1: rgA},
	0x3F: {Kind: opCCF, Mode: amImplied},

	0xC0: {Kind: opRET, Mode: amImplied, Cond: condNZ},
	0xC1: {Kind: opPOP, Mode: amR, Reg1: rgBC},
	0xC2: {Kind: opJP, Mode: amD16, Cond: condNZ},
	0xC3: {Kind: opJP, Mode: amD16},
	0xC4: {Kind: opCALL, Mode: amD16, Cond: condNZ},
	0xC5: {Kind: opPUSH, Mode: amR, Reg1: rgBC},
	0xC6: {Kind: opADD, Mode: amRD8, Reg1: rgA},
	0xC7: {Kind: opRST, Mode: amImplied, RSTVec: 0x00},
	0xC8: {Kind: opRET, Mode: amImplied, Cond: condZ},
	0xC9: {Kind: opRET, Mode: amImplied},
	0xCA: {Kind: opJP, Mode: amD16, Cond: condZ},
	0xCB: {Kind: opCB, Mode: amD8},
	0xCC: {Kind: opCALL, Mode: amD16, Cond: condZ},
	0xCD: {Kind: opCALL, Mode: amD16},
	0xCE: {Kind: opADC, Mode: amRD8, Reg1: rgA},
	0xCF: {Kind: opRST, Mode: amImplied, RSTVec: 0x08},

	0xD0: {Kind: opRET, Mode: amImplied, Cond: condNC},
	0xD1: {Kind: opPOP, Mode: amR, Reg1: rgDE},
	0xD2: {Kind: opJP, Mode: amD16, Cond: condNC},
	0xD4: {Kind: opCALL, Mode: amD16, Cond: condNC},
	0xD5: {Kind: opPUSH, Mode: amR, Reg1: rgDE},
	0xD6: {Kind: opSUB, Mode: amRD8, Reg1: rgA},
	0xD7: {Kind: opRST, Mode: amImplied, RSTVec: 0x10},
	0xD8: {Kind: opRET, Mode: amImplied, Cond: condC},
	0xD9: {Kind: opRETI, Mode: amImplied},
	0xDA: {Kind: opJP, Mode: amD16, Cond: condC},
	0xDC: {Kind: opCALL, Mode: amD16, Cond: condC},
	0xDE: {Kind: opSBC, Mode: amRD8, Reg1: rgA},
	0xDF: {Kind: opRST, Mode: amImplied, RSTVec: 0x18},

	0xE0: {Kind: opLDH, Mode: amA8R, Reg2: rgA},
	0xE1: {Kind: opPOP, Mode: amR, Reg1: rgHL},
	0xE2: {Kind: opLD, Mode: amMRR, Reg1: rgC, Reg2: rgA},
	0xE5: {Kind: opPUSH, Mode: amR, Reg1: rgHL},
	0xE6: {Kind: opAND, Mode: amRD8, Reg1: rgA},
	0xE7: {Kind: opRST, Mode: amImplied, RSTVec: 0x20},
	0xE8: {Kind: opADD, Mode: amRD8, Reg1: rgSP},
	0xE9: {Kind: opJP, Mode: amR, Reg1: rgHL},
	0xEA: {Kind: opLD, Mode: amA16R, Reg2: rgA},
	0xEE: {Kind: opXOR, Mode: amRD8, Reg1: rgA},
	0xEF: {Kind: opRST, Mode: amImplied, RSTVec: 0x28},

	0xF0: {Kind: opLDH, Mode: amRA8, Reg1: rgA},
	0xF1: {Kind: opPOP, Mode: amR, Reg1: rgAF},
	0xF2: {Kind: opLD, Mode: amRMR, Reg1: rgA, Reg2: rgC},
	0xF3: {Kind: opDI, Mode: amImplied},
	0xF5: {Kind: opPUSH, Mode: amR, Reg1: rgAF},
	0xF6: {Kind: opOR, Mode: amRD8, Reg1: rgA},
	0xF7: {Kind: opRST, Mode: amImplied, RSTVec: 0x30},
	0xF8: {Kind: opLD, Mode: amHLSPR, Reg1: rgHL, Reg2: rgSP},
	0xF9: {Kind: opLD, Mode: amRR, Reg1: rgSP, Reg2: rgHL},
	0xFA: {Kind: opLD, Mode: amRA16, Reg1: rgA},
	0xFB: {Kind: opEI, Mode: amImplied},
	0xFE: {Kind: opCP, Mode: amRD8, Reg1: rgA},
	0xFF: {Kind: opRST, Mode: amImplied, RSTVec: 0x38},
}

func init() {
	// 0x40-0x7F: LD r,r' with column/row register fields; 0x76 is HALT.
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			opcodes[op] = Instruction{Kind: opHALT, Mode: amImplied}
			continue
		}
		dst := regDecode[(op>>3)&7]
		src := regDecode[op&7]
		inst := Instruction{Kind: opLD, Mode: amRR, Reg1: dst, Reg2: src}
		switch {
		case dst == rgHL:
			inst.Mode = amMRR
		case src == rgHL:
			inst.Mode = amRMR
		}
		opcodes[op] = inst
	}
	// 0x80-0xBF: the eight ALU operations against A; column 6 is (HL).
	for op := 0x80; op <= 0xBF; op++ {
		src := regDecode[op&7]
		inst := Instruction{Kind: aluKinds[(op>>3)&7], Mode: amRR, Reg1: rgA, Reg2: src}
		if src == rgHL {
			inst.Mode = amRMR
		}
		opcodes[op] = inst
	}
}

// Decode returns the instruction row for a primary opcode.
func Decode(opcode byte) *Instruction {
	return &opcodes[opcode]
}
