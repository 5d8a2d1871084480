package cpu

// op enumerates the closed set of instruction forms. Anything that does
// not decode to one of these is opUnknown, handled by the configured
// policy rather than a silent default branch.
type op uint8

const (
	opUnknown op = iota
	opCls        // 00E0
	opRet        // 00EE
	opJump       // 1NNN
	opCall       // 2NNN
	opSkipEqImm  // 3XNN
	opSkipNeImm  // 4XNN
	opSkipEqReg  // 5XY0
	opLoadImm    // 6XNN
	opAddImm     // 7XNN
	opMove       // 8XY0
	opOr         // 8XY1
	opAnd        // 8XY2
	opXor        // 8XY3
	opAdd        // 8XY4
	opSub        // 8XY5
	opShr        // 8XY6
	opSubn       // 8XY7
	opShl        // 8XYE
	opSkipNeReg  // 9XY0
	opLoadI      // ANNN
	opJumpV0     // BNNN
	opRand       // CXNN
	opDraw       // DXYN
	opSkipKey    // EX9E
	opSkipNoKey  // EXA1
	opGetDelay   // FX07
	opWaitKey    // FX0A
	opSetDelay   // FX15
	opSetSound   // FX18
	opAddI       // FX1E
	opLoadFont   // FX29
	opStoreBCD   // FX33
	opStoreRegs  // FX55
	opLoadRegs   // FX65
)

// instruction is a decoded opcode word with its operand fields split out.
type instruction struct {
	op  op
	x   uint8  // second nibble, register index
	y   uint8  // third nibble, register index
	n   uint8  // low nibble
	nn  uint8  // low byte
	nnn uint16 // low 12 bits
}

func decode(word uint16) instruction {
	in := instruction{
		x:   uint8(word >> 8 & 0x0F),
		y:   uint8(word >> 4 & 0x0F),
		n:   uint8(word & 0x000F),
		nn:  uint8(word & 0x00FF),
		nnn: word & 0x0FFF,
	}

	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			in.op = opCls
		case 0x00EE:
			in.op = opRet
		}
	case 0x1000:
		in.op = opJump
	case 0x2000:
		in.op = opCall
	case 0x3000:
		in.op = opSkipEqImm
	case 0x4000:
		in.op = opSkipNeImm
	case 0x5000:
		if in.n == 0 {
			in.op = opSkipEqReg
		}
	case 0x6000:
		in.op = opLoadImm
	case 0x7000:
		in.op = opAddImm
	case 0x8000:
		switch in.n {
		case 0x0:
			in.op = opMove
		case 0x1:
			in.op = opOr
		case 0x2:
			in.op = opAnd
		case 0x3:
			in.op = opXor
		case 0x4:
			in.op = opAdd
		case 0x5:
			in.op = opSub
		case 0x6:
			in.op = opShr
		case 0x7:
			in.op = opSubn
		case 0xE:
			in.op = opShl
		}
	case 0x9000:
		if in.n == 0 {
			in.op = opSkipNeReg
		}
	case 0xA000:
		in.op = opLoadI
	case 0xB000:
		in.op = opJumpV0
	case 0xC000:
		in.op = opRand
	case 0xD000:
		in.op = opDraw
	case 0xE000:
		switch in.nn {
		case 0x9E:
			in.op = opSkipKey
		case 0xA1:
			in.op = opSkipNoKey
		}
	case 0xF000:
		switch in.nn {
		case 0x07:
			in.op = opGetDelay
		case 0x0A:
			in.op = opWaitKey
		case 0x15:
			in.op = opSetDelay
		case 0x18:
			in.op = opSetSound
		case 0x1E:
			in.op = opAddI
		case 0x29:
			in.op = opLoadFont
		case 0x33:
			in.op = opStoreBCD
		case 0x55:
			in.op = opStoreRegs
		case 0x65:
			in.op = opLoadRegs
		}
	}
	return in
}
