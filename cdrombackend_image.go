// cdrombackend_image.go - Disc-image CD-ROM backend (.bin/.cue, raw .bin)

/*
cdrombackend_image.go - Image-backed CdromBackend.

Supports a .cue sidecar listing one or more FILE/TRACK entries (a
track typed AUDIO is marked as audio; every other type, MODE2/2352
included, is taken as a data track) or a bare .bin treated as a single data
track starting at LBA 0. Sector size is fixed at 2352 (raw) since the
controller's data FIFO drains the image byte-for-byte regardless of
the sector's internal header layout - no 2048-byte de-framing is done
here, matching how the command layer already treats the CD as a raw
byte source.
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const rawSectorSize = 2352

type cdromTrack struct {
	path      string
	startLBA  uint32
	isAudio   bool
}

type ImageCdromBackend struct {
	file   *os.File
	tracks []cdromTrack
}

func NewImageCdromBackend(path string) (*ImageCdromBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".cue" {
		return newImageBackendFromCue(path)
	}
	return newImageBackendFromBin(path)
}

func newImageBackendFromBin(path string) (*ImageCdromBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cdrom: open disc image: %w", err)
	}
	return &ImageCdromBackend{
		file:   f,
		tracks: []cdromTrack{{path: path, startLBA: 0, isAudio: false}},
	}, nil
}

// newImageBackendFromCue parses just enough of the CDRWIN cue sheet
// grammar to recover each track's start LBA: FILE lines name the
// backing .bin, TRACK lines give the mode, INDEX 01 gives the MSF
// offset within that file.
func newImageBackendFromCue(cuePath string) (*ImageCdromBackend, error) {
	cueFile, err := os.Open(cuePath)
	if err != nil {
		return nil, fmt.Errorf("cdrom: open cue sheet: %w", err)
	}
	defer cueFile.Close()

	dir := filepath.Dir(cuePath)
	var binPath string
	var tracks []cdromTrack
	var currentIsAudio bool

	scanner := bufio.NewScanner(cueFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "FILE":
			name := strings.Trim(line[len("FILE "):], "\" ")
			name = strings.TrimSuffix(name, " BINARY")
			name = strings.Trim(name, "\"")
			binPath = filepath.Join(dir, name)
		case "TRACK":
			currentIsAudio = len(fields) >= 3 && fields[2] == "AUDIO"
		case "INDEX":
			if len(fields) < 3 || fields[1] != "01" {
				continue
			}
			lba, err := msfStringToLBA(fields[2])
			if err != nil {
				continue
			}
			tracks = append(tracks, cdromTrack{path: binPath, startLBA: lba, isAudio: currentIsAudio})
		}
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("cdrom: cue sheet %s has no tracks", cuePath)
	}

	f, err := os.Open(tracks[0].path)
	if err != nil {
		return nil, fmt.Errorf("cdrom: open track file: %w", err)
	}
	return &ImageCdromBackend{file: f, tracks: tracks}, nil
}

func msfStringToLBA(msf string) (uint32, error) {
	parts := strings.Split(msf, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("cdrom: malformed MSF %q", msf)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	f, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}
	return MsfToLBA(byte(m), byte(s), byte(f)), nil
}

func (b *ImageCdromBackend) Open() error { return nil }

func (b *ImageCdromBackend) Close() error {
	if b.file == nil {
		return nil
	}
	return b.file.Close()
}

func (b *ImageCdromBackend) HasDisc() bool {
	return b.file != nil
}

func (b *ImageCdromBackend) ReadSector(lba uint32) ([]byte, error) {
	if b.file == nil {
		return nil, fmt.Errorf("cdrom: no disc present")
	}
	buf := make([]byte, rawSectorSize)
	offset := int64(lba) * rawSectorSize
	if _, err := b.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("cdrom: read sector %d: %w", lba, err)
	}
	return buf, nil
}

func (b *ImageCdromBackend) TrackCount() int {
	return len(b.tracks)
}

func (b *ImageCdromBackend) TrackStartLBA(track int) (uint32, bool) {
	if track < 1 || track > len(b.tracks) {
		return 0, false
	}
	return b.tracks[track-1].startLBA, true
}
