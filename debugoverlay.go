// debugoverlay.go - Text overlay for headless frame captures

/*
debugoverlay.go - Debug overlay.

Burns a line of diagnostic text (round count, PC) into the top-left
corner of a FrameBuffer using x/image's basicfont face, for -script
runs that capture frames without a windowing backend to read register
state from out-of-band.
*/

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawOverlay renders text onto fb's pixel buffer in place, assuming
// RGBA8888 as FrameBuffer always produces.
func DrawOverlay(fb FrameBuffer, text string) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	img := &image.RGBA{
		Pix:    fb.Pixels,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 14),
	}
	draw.Draw(img, image.Rect(0, 0, len(text)*7+8, 18), image.NewUniform(color.Black), image.Point{}, draw.Src)
	d.DrawString(text)
}

// OverlayRoundInfo formats the standard diagnostic line DrawOverlay
// expects: the current round count and CPU program counter.
func OverlayRoundInfo(round uint64, pc uint32) string {
	return fmt.Sprintf("round %d pc=%08X", round, pc)
}
