package screen

import (
	"image"
	"image/color"

	"github.com/faiface/pixel"
	"golang.org/x/image/colornames"

	"chip8/emu/vm"
)

// DrawFrame blits the 64x32 framebuffer to the window, scaled to fill
// it. Called once per frame; pixels is the machine's framebuffer laid
// out row-major, top-left origin.
func (w *Window) DrawFrame(pixels []uint8) {
	img := image.NewRGBA(image.Rect(0, 0, vm.DisplayWidth, vm.DisplayHeight))
	for y := 0; y < vm.DisplayHeight; y++ {
		for x := 0; x < vm.DisplayWidth; x++ {
			c := color.RGBA{A: 0xFF}
			if pixels[y*vm.DisplayWidth+x] == 1 {
				c = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}

	pic := pixel.PictureDataFromImage(img)
	sprite := pixel.NewSprite(pic, pic.Bounds())

	w.Clear(colornames.Black)
	center := w.Bounds().Center()
	sprite.Draw(w, pixel.IM.Moved(center).Scaled(center, w.scale))
}
