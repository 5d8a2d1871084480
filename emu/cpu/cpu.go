package cpu

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"chip8/emu/vm"
)

// ErrUnknownOpcode marks a word that decodes to no known instruction
// form. Whether it halts the session depends on the configured Policy.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Policy selects how the engine treats unknown opcodes.
type Policy int

const (
	// PolicyHalt stops the session with a Fault. This is the default.
	PolicyHalt Policy = iota
	// PolicySkip treats the unknown word as a two-byte no-op.
	PolicySkip
)

// Quirks selects between historically divergent opcode conventions.
// The zero value is the modern, most-compatible set.
type Quirks struct {
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX instead of
	// shifting VX in place (original COSMAC behavior).
	ShiftUsesVY bool
	// JumpUsesVX makes BNNN read the offset from VX instead of V0.
	JumpUsesVX bool
	// LoadStoreBumpsI makes FX55/FX65 leave I at I+X+1 instead of
	// unchanged.
	LoadStoreBumpsI bool
}

// Fault is an unrecoverable VM fault, reported with the failing program
// counter and opcode word so failures can be diagnosed against test ROMs.
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("vm fault at PC 0x%03X (opcode 0x%04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// CPU drives the fetch-decode-execute cycle against a VM. It is the
// only mutator of machine state; the host just steps it, ticks timers
// and writes key state between steps.
type CPU struct {
	vm     *vm.VM
	quirks Quirks
	policy Policy
	rng    *rand.Rand
}

type Option func(*CPU)

func WithQuirks(q Quirks) Option {
	return func(c *CPU) { c.quirks = q }
}

func WithPolicy(p Policy) Option {
	return func(c *CPU) { c.policy = p }
}

// WithRandSource fixes the CXNN random source, for deterministic runs.
func WithRandSource(src rand.Source) Option {
	return func(c *CPU) { c.rng = rand.New(src) }
}

func New(m *vm.VM, opts ...Option) *CPU {
	c := &CPU{
		vm:  m,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step runs one cycle: fetch the word at PC, decode, execute. While the
// machine is in key-wait mode it performs no opcode progression, only
// polling for a key-down edge; on the edge it stores the key and
// resumes. Every effect is atomic within the call.
func (c *CPU) Step() error {
	m := c.vm

	if m.Waiting() {
		if key, ok := m.PollKeyWait(); ok {
			m.SetV(m.WaitRegister(), key)
			m.SetPC(m.PC() + 2)
		}
		return nil
	}

	pc := m.PC()
	hi, err := m.ReadByte(pc)
	if err != nil {
		return &Fault{PC: pc, Err: err}
	}
	lo, err := m.ReadByte(pc + 1)
	if err != nil {
		return &Fault{PC: pc, Err: err}
	}
	word := uint16(hi)<<8 | uint16(lo)
	m.SetPC(pc + 2)

	if err := c.execute(decode(word)); err != nil {
		return &Fault{PC: pc, Opcode: word, Err: err}
	}
	return nil
}

func (c *CPU) execute(in instruction) error {
	m := c.vm

	switch in.op {
	case opCls:
		m.ClearDisplay()

	case opRet:
		addr, err := m.Pop()
		if err != nil {
			return err
		}
		m.SetPC(addr)

	case opJump:
		m.SetPC(in.nnn)

	case opCall:
		// PC already points at the next instruction.
		if err := m.Push(m.PC()); err != nil {
			return err
		}
		m.SetPC(in.nnn)

	case opSkipEqImm:
		if m.V(in.x) == in.nn {
			m.SetPC(m.PC() + 2)
		}

	case opSkipNeImm:
		if m.V(in.x) != in.nn {
			m.SetPC(m.PC() + 2)
		}

	case opSkipEqReg:
		if m.V(in.x) == m.V(in.y) {
			m.SetPC(m.PC() + 2)
		}

	case opSkipNeReg:
		if m.V(in.x) != m.V(in.y) {
			m.SetPC(m.PC() + 2)
		}

	case opLoadImm:
		m.SetV(in.x, in.nn)

	case opAddImm:
		// wrapping add, no flag
		m.SetV(in.x, m.V(in.x)+in.nn)

	case opMove:
		m.SetV(in.x, m.V(in.y))

	case opOr:
		m.SetV(in.x, m.V(in.x)|m.V(in.y))

	case opAnd:
		m.SetV(in.x, m.V(in.x)&m.V(in.y))

	case opXor:
		m.SetV(in.x, m.V(in.x)^m.V(in.y))

	// The flag-writing ALU ops store the flag after the result so that
	// VF holds the flag when X is itself 0xF.
	case opAdd:
		sum := uint16(m.V(in.x)) + uint16(m.V(in.y))
		var flag uint8
		if sum > 0xFF {
			flag = 1
		}
		m.SetV(in.x, uint8(sum))
		m.SetV(0xF, flag)

	case opSub:
		vx, vy := m.V(in.x), m.V(in.y)
		var flag uint8
		if vx >= vy { // no borrow
			flag = 1
		}
		m.SetV(in.x, vx-vy)
		m.SetV(0xF, flag)

	case opSubn:
		vx, vy := m.V(in.x), m.V(in.y)
		var flag uint8
		if vy >= vx {
			flag = 1
		}
		m.SetV(in.x, vy-vx)
		m.SetV(0xF, flag)

	case opShr:
		val := m.V(in.x)
		if c.quirks.ShiftUsesVY {
			val = m.V(in.y)
		}
		m.SetV(in.x, val>>1)
		m.SetV(0xF, val&0x01)

	case opShl:
		val := m.V(in.x)
		if c.quirks.ShiftUsesVY {
			val = m.V(in.y)
		}
		m.SetV(in.x, val<<1)
		m.SetV(0xF, val>>7)

	case opLoadI:
		m.SetI(in.nnn)

	case opJumpV0:
		offset := m.V(0)
		if c.quirks.JumpUsesVX {
			offset = m.V(in.x)
		}
		m.SetPC(in.nnn + uint16(offset))

	case opRand:
		m.SetV(in.x, uint8(c.rng.Intn(256))&in.nn)

	case opDraw:
		rows := make([]uint8, in.n)
		for r := range rows {
			b, err := m.ReadByte(m.I() + uint16(r))
			if err != nil {
				return err
			}
			rows[r] = b
		}
		var flag uint8
		if m.DrawSprite(m.V(in.x), m.V(in.y), rows) {
			flag = 1
		}
		m.SetV(0xF, flag)

	case opSkipKey:
		if m.KeyDown(m.V(in.x)) {
			m.SetPC(m.PC() + 2)
		}

	case opSkipNoKey:
		if !m.KeyDown(m.V(in.x)) {
			m.SetPC(m.PC() + 2)
		}

	case opGetDelay:
		m.SetV(in.x, m.Delay())

	case opSetDelay:
		m.SetDelay(m.V(in.x))

	case opSetSound:
		m.SetSound(m.V(in.x))

	case opAddI:
		// wrapping 16-bit add, VF untouched
		m.SetI(m.I() + uint16(m.V(in.x)))

	case opLoadFont:
		m.SetI(vm.FontAddr(m.V(in.x)))

	case opStoreBCD:
		val := m.V(in.x)
		for j, d := range [3]uint8{val / 100, val / 10 % 10, val % 10} {
			if err := m.WriteByte(m.I()+uint16(j), d); err != nil {
				return err
			}
		}

	case opStoreRegs:
		for r := uint8(0); r <= in.x; r++ {
			if err := m.WriteByte(m.I()+uint16(r), m.V(r)); err != nil {
				return err
			}
		}
		if c.quirks.LoadStoreBumpsI {
			m.SetI(m.I() + uint16(in.x) + 1)
		}

	case opLoadRegs:
		for r := uint8(0); r <= in.x; r++ {
			b, err := m.ReadByte(m.I() + uint16(r))
			if err != nil {
				return err
			}
			m.SetV(r, b)
		}
		if c.quirks.LoadStoreBumpsI {
			m.SetI(m.I() + uint16(in.x) + 1)
		}

	case opWaitKey:
		// rewind so PC stays on this instruction until a key lands
		m.SetPC(m.PC() - 2)
		m.BeginKeyWait(in.x)

	case opUnknown:
		if c.policy == PolicySkip {
			return nil
		}
		return ErrUnknownOpcode
	}
	return nil
}
