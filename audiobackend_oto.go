// audiobackend_oto.go - Oto v3 audio output backend

/*
audiobackend_oto.go - Oto-backed AudioBackend.

SubmitSamples pushes the SPU's interleaved stereo PCM16 frames into a
ring buffer; oto's Player pulls from that ring on its own callback
goroutine via Read. The two sides only share the ring, never the SPU
state directly, so the executor's round barrier never blocks on audio
I/O.
*/

package main

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

const psxAudioSampleRate = 44100

// OtoAudioBackend implements AudioBackend by feeding an oto.Player from
// a mutex-guarded ring of PCM16LE bytes.
type OtoAudioBackend struct {
	ctx    *oto.Context
	player *oto.Player

	mu  sync.Mutex
	buf []byte
}

func NewOtoAudioBackend() (*OtoAudioBackend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   psxAudioSampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	b := &OtoAudioBackend{ctx: ctx}
	b.player = ctx.NewPlayer(b)
	return b, nil
}

// Read implements io.Reader for oto's player, draining whatever bytes
// have accumulated and padding the rest of the requested slice with
// silence rather than blocking.
func (b *OtoAudioBackend) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (b *OtoAudioBackend) Start() error {
	b.player.Play()
	return nil
}

func (b *OtoAudioBackend) Stop() error {
	return b.player.Pause()
}

func (b *OtoAudioBackend) SubmitSamples(samples []int16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range samples {
		b.buf = append(b.buf, byte(s), byte(s>>8))
	}
	return nil
}
