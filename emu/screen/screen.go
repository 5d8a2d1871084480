package screen

import (
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"

	"chip8/emu/vm"
)

// Window wraps a pixelgl window with the hex keypad mapping. The classic
// layout puts the 4x4 pad on 1234/QWER/ASDF/ZXCV.
type Window struct {
	*pixelgl.Window
	KeyMap map[uint8]pixelgl.Button
	scale  float64
}

var defaultKeyMap = map[uint8]pixelgl.Button{
	0x1: pixelgl.Key1, 0x2: pixelgl.Key2, 0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
	0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW, 0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
	0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS, 0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
	0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX, 0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
}

// New opens the emulator window at the given pixel scale.
func New(title string, scale float64) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:     title,
		Bounds:    pixel.R(0, 0, vm.DisplayWidth*scale, vm.DisplayHeight*scale),
		Resizable: false,
		VSync:     false,
	}

	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, err
	}

	return &Window{
		Window: win,
		KeyMap: defaultKeyMap,
		scale:  scale,
	}, nil
}

// PollKeys copies the host keyboard state into the machine's key matrix.
func (w *Window) PollKeys(m *vm.VM) {
	for key, button := range w.KeyMap {
		m.SetKey(key, w.Pressed(button))
	}
}
