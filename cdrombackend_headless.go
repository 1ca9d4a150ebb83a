// cdrombackend_headless.go - Empty-drive CD-ROM backend

package main

import "errors"

// HeadlessCdromBackend models a drive with the tray open: no disc, every
// sector read fails, used when Config.DiscPath is empty.
type HeadlessCdromBackend struct{}

func NewHeadlessCdromBackend() *HeadlessCdromBackend {
	return &HeadlessCdromBackend{}
}

func (h *HeadlessCdromBackend) Open() error  { return nil }
func (h *HeadlessCdromBackend) Close() error { return nil }

func (h *HeadlessCdromBackend) HasDisc() bool { return false }

func (h *HeadlessCdromBackend) ReadSector(lba uint32) ([]byte, error) {
	return nil, errors.New("cdrom: no disc present")
}

func (h *HeadlessCdromBackend) TrackCount() int { return 0 }

func (h *HeadlessCdromBackend) TrackStartLBA(track int) (uint32, bool) {
	return 0, false
}
