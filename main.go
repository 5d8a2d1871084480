package main

import (
	"chip8/cmd"

	"github.com/faiface/pixel/pixelgl"
)

func main() {
	pixelgl.Run(runChip8)
}

func runChip8() {
	cmd.Execute()
}
