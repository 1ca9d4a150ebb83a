// videobackend_ebiten.go - Ebiten-backed windowed video output

/*
videobackend_ebiten.go - Ebiten video backend.

Each SubmitFrame swaps in the GPU controller's latest FrameBuffer behind
a mutex; ebiten's own Update/Draw loop (run on its own OS thread by
ebiten.RunGame) blits whatever frame is current at redraw time. The
emulation side and the window side never share anything but that one
buffer, the same separation the audio backend keeps between the SPU and
oto's callback goroutine.
*/

package main

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

type EbitenVideoBackend struct {
	mu      sync.Mutex
	img     *ebiten.Image
	width   int
	height  int
	started bool
}

func NewEbitenVideoBackend() *EbitenVideoBackend {
	return &EbitenVideoBackend{width: 640, height: 480}
}

func (e *EbitenVideoBackend) Start() error {
	ebiten.SetWindowSize(e.width, e.height)
	ebiten.SetWindowTitle("go-psx")
	ebiten.SetWindowResizable(true)
	e.started = true
	go func() {
		_ = ebiten.RunGame(e)
	}()
	return nil
}

func (e *EbitenVideoBackend) Stop() error {
	e.started = false
	return nil
}

func (e *EbitenVideoBackend) SubmitFrame(fb FrameBuffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fb.Width == 0 || fb.Height == 0 {
		return nil
	}
	img := ebiten.NewImageFromImage(&image.RGBA{
		Pix:    fb.Pixels,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	})
	e.img = img
	e.width, e.height = fb.Width, fb.Height
	return nil
}

// Update satisfies ebiten.Game; the backend has nothing to tick on its
// own, every state change arrives via SubmitFrame.
func (e *EbitenVideoBackend) Update() error {
	return nil
}

func (e *EbitenVideoBackend) Draw(screen *ebiten.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.img != nil {
		screen.DrawImage(e.img, nil)
	}
}

func (e *EbitenVideoBackend) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.width == 0 || e.height == 0 {
		return 640, 480
	}
	return e.width, e.height
}
