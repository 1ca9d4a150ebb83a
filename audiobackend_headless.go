// audiobackend_headless.go - No-op audio backend for tests and -audio=headless runs

package main

import "sync/atomic"

type HeadlessAudioBackend struct {
	started     atomic.Bool
	sampleCount atomic.Uint64
}

func NewHeadlessAudioBackend() *HeadlessAudioBackend {
	return &HeadlessAudioBackend{}
}

func (h *HeadlessAudioBackend) Start() error {
	h.started.Store(true)
	return nil
}

func (h *HeadlessAudioBackend) Stop() error {
	h.started.Store(false)
	return nil
}

func (h *HeadlessAudioBackend) SubmitSamples(samples []int16) error {
	h.sampleCount.Add(uint64(len(samples)))
	return nil
}
