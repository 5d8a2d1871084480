package emu

import (
	"time"

	"github.com/faiface/pixel/pixelgl"

	"chip8/emu/cpu"
	"chip8/emu/screen"
	"chip8/emu/sound"
	"chip8/emu/vm"
)

// Config is everything the host loop needs to run a session.
type Config struct {
	RefreshRate int     // frames (and timer ticks) per second
	ClockSpeed  int     // instructions per second
	Scale       float64 // window pixels per framebuffer pixel
	Quirks      cpu.Quirks
	Policy      cpu.Policy
}

// Emulator wires the machine, engine and I/O adapters into a session.
type Emulator struct {
	vm     *vm.VM
	cpu    *cpu.CPU
	window *screen.Window
	beeper *sound.Beeper
	cfg    Config
}

// New builds a session around the given ROM bytes. Must be called from
// the pixelgl main thread (via pixelgl.Run).
func New(rom []byte, cfg Config) (*Emulator, error) {
	m := vm.New()
	if err := m.LoadROM(rom); err != nil {
		return nil, err
	}

	win, err := screen.New("chip8", cfg.Scale)
	if err != nil {
		return nil, err
	}

	beeper, err := sound.New()
	if err != nil {
		return nil, err
	}

	return &Emulator{
		vm:     m,
		cpu:    cpu.New(m, cpu.WithQuirks(cfg.Quirks), cpu.WithPolicy(cfg.Policy)),
		window: win,
		beeper: beeper,
		cfg:    cfg,
	}, nil
}

// Run drives the session: each frame it polls input, executes a batch of
// instructions, decrements the timers once, gates the tone and redraws.
// Timer cadence is fixed to the refresh rate, decoupled from ClockSpeed.
// Returns when the window closes, ESC is pressed, or the engine faults.
func (e *Emulator) Run() error {
	perFrame := e.cfg.ClockSpeed / e.cfg.RefreshRate
	if perFrame < 1 {
		perFrame = 1
	}

	frame := time.NewTicker(time.Second / time.Duration(e.cfg.RefreshRate))
	defer frame.Stop()

	for !e.window.Closed() {
		if e.window.JustPressed(pixelgl.KeyEscape) {
			return nil
		}

		e.window.PollKeys(e.vm)

		for i := 0; i < perFrame; i++ {
			if err := e.cpu.Step(); err != nil {
				return err
			}
		}

		e.vm.TickTimers()
		e.beeper.SetActive(e.vm.SoundActive())

		e.window.DrawFrame(e.vm.Pixels())
		e.window.Update()

		<-frame.C
	}
	return nil
}
