package vm

import (
	"errors"
	"fmt"
)

const (
	// MemorySize is the full addressable range, 0x000-0xFFF.
	MemorySize = 4096
	// RomStart is where program code begins; below it lives font data.
	RomStart = 0x200
	// MaxRomSize is the largest ROM that fits above RomStart.
	MaxRomSize = MemorySize - RomStart

	NumRegisters = 16
	StackDepth   = 16
	NumKeys      = 16

	DisplayWidth  = 64
	DisplayHeight = 32
)

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// VM holds all mutable machine state: memory, registers, stack, timers,
// framebuffer and the key matrix. It is constructed once per session and
// mutated only by the execution engine and the host's input/timer calls.
type VM struct {
	memory     [MemorySize]uint8
	v          [NumRegisters]uint8
	i          uint16
	pc         uint16
	stack      [StackDepth]uint16
	sp         uint8
	delayTimer uint8
	soundTimer uint8
	display    [DisplayWidth * DisplayHeight]uint8
	keys       [NumKeys]bool

	// key-wait mode (FX0A): while waiting the engine performs no opcode
	// progression, it just polls for an up->down key edge.
	waiting  bool
	waitReg  uint8
	waitKeys [NumKeys]bool
}

// New returns a zeroed machine with PC at RomStart and the font glyphs
// loaded into low memory.
func New() *VM {
	m := &VM{pc: RomStart}
	copy(m.memory[fontStart:], fontSet[:])
	return m
}

// LoadROM copies rom into memory starting at RomStart. It fails before
// any execution begins if the ROM cannot fit.
func (m *VM) LoadROM(rom []byte) error {
	if len(rom) > MaxRomSize {
		return fmt.Errorf("rom is %d bytes, program space is %d", len(rom), MaxRomSize)
	}
	copy(m.memory[RomStart:], rom)
	return nil
}

func (m *VM) ReadByte(addr uint16) (uint8, error) {
	if addr >= MemorySize {
		return 0, fmt.Errorf("read past end of memory: 0x%03X", addr)
	}
	return m.memory[addr], nil
}

// WriteByte stores value at addr. The region below RomStart is read-only
// font storage once initialized, so writes there fault.
func (m *VM) WriteByte(addr uint16, value uint8) error {
	if addr >= MemorySize {
		return fmt.Errorf("write past end of memory: 0x%03X", addr)
	}
	if addr < RomStart {
		return fmt.Errorf("write to reserved memory: 0x%03X", addr)
	}
	m.memory[addr] = value
	return nil
}

func (m *VM) V(x uint8) uint8 { return m.v[x] }

func (m *VM) SetV(x uint8, val uint8) { m.v[x] = val }

func (m *VM) I() uint16 { return m.i }

func (m *VM) SetI(addr uint16) { m.i = addr }

func (m *VM) PC() uint16 { return m.pc }

func (m *VM) SetPC(addr uint16) { m.pc = addr }

// Push records a return address. Overflowing the 16-deep stack is an
// unrecoverable fault, not a silent clamp.
func (m *VM) Push(addr uint16) error {
	if m.sp == StackDepth {
		return ErrStackOverflow
	}
	m.stack[m.sp] = addr
	m.sp++
	return nil
}

// Pop returns the most recent return address. Popping an empty stack is
// an unrecoverable fault.
func (m *VM) Pop() (uint16, error) {
	if m.sp == 0 {
		return 0, ErrStackUnderflow
	}
	m.sp--
	return m.stack[m.sp], nil
}

func (m *VM) Delay() uint8 { return m.delayTimer }

func (m *VM) SetDelay(val uint8) { m.delayTimer = val }

func (m *VM) Sound() uint8 { return m.soundTimer }

func (m *VM) SetSound(val uint8) { m.soundTimer = val }

// SoundActive tells the audio adapter whether to play the tone.
func (m *VM) SoundActive() bool { return m.soundTimer > 0 }

// TickTimers decrements both timers by one, floored at zero. The host
// calls this at 60Hz, independent of the instruction rate.
func (m *VM) TickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// SetKey is the input adapter's write into the key matrix; key indices
// wrap into 0x0-0xF.
func (m *VM) SetKey(key uint8, down bool) { m.keys[key&0x0F] = down }

func (m *VM) KeyDown(key uint8) bool { return m.keys[key&0x0F] }

// ClearDisplay turns every pixel off.
func (m *VM) ClearDisplay() {
	m.display = [DisplayWidth * DisplayHeight]uint8{}
}

// Pixels exposes the framebuffer for the display adapter. The slice
// aliases machine state and is only valid between engine steps.
func (m *VM) Pixels() []uint8 { return m.display[:] }

// DrawSprite XORs rows of sprite data onto the framebuffer starting at
// (x mod 64, y mod 32). Each row wraps horizontally; rows past the
// bottom edge clip. Returns true if any lit pixel was turned off.
func (m *VM) DrawSprite(x, y uint8, rows []uint8) bool {
	collided := false
	startX := int(x) % DisplayWidth
	startY := int(y) % DisplayHeight
	for r, row := range rows {
		py := startY + r
		if py >= DisplayHeight {
			break
		}
		for bit := 0; bit < 8; bit++ {
			if row&(0x80>>bit) == 0 {
				continue
			}
			px := (startX + bit) % DisplayWidth
			idx := py*DisplayWidth + px
			if m.display[idx] == 1 {
				collided = true
			}
			m.display[idx] ^= 1
		}
	}
	return collided
}

// BeginKeyWait enters key-wait mode for register x, snapshotting the
// current key state so only a fresh down transition resumes execution.
func (m *VM) BeginKeyWait(x uint8) {
	m.waiting = true
	m.waitReg = x
	m.waitKeys = m.keys
}

// Waiting reports whether the machine is suspended on FX0A.
func (m *VM) Waiting() bool { return m.waiting }

// WaitRegister is the destination register of the pending key-wait.
func (m *VM) WaitRegister() uint8 { return m.waitReg }

// PollKeyWait checks for a key that has gone down since the last poll.
// On a transition it leaves key-wait mode and returns the key index.
func (m *VM) PollKeyWait() (uint8, bool) {
	for k := 0; k < NumKeys; k++ {
		if m.keys[k] && !m.waitKeys[k] {
			m.waiting = false
			return uint8(k), true
		}
	}
	m.waitKeys = m.keys
	return 0, false
}
