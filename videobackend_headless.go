// videobackend_headless.go - No-op video backend for tests and -video=headless runs

package main

import "sync/atomic"

// HeadlessVideoBackend discards every frame but still counts them, so a
// test can assert the GPU controller actually produced output without
// needing a display.
type HeadlessVideoBackend struct {
	started    atomic.Bool
	frameCount atomic.Uint64
	lastFrame  FrameBuffer
}

func NewHeadlessVideoBackend() *HeadlessVideoBackend {
	return &HeadlessVideoBackend{}
}

func (h *HeadlessVideoBackend) Start() error {
	h.started.Store(true)
	return nil
}

func (h *HeadlessVideoBackend) Stop() error {
	h.started.Store(false)
	return nil
}

func (h *HeadlessVideoBackend) SubmitFrame(fb FrameBuffer) error {
	h.frameCount.Add(1)
	h.lastFrame = fb
	return nil
}

func (h *HeadlessVideoBackend) FrameCount() uint64 {
	return h.frameCount.Load()
}
