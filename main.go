// main.go - Command-line entry point for go-psx

/*
 ▄███▄      ▄▄▄▄▄      ▄█▄     ▄   ▄   ▄
██▀   ▀    █     ▀▄   █▀ ▀▄     █▄█
██▄▄       ▄▀▀▀▀▀██▄█▄ ▄ ▀▄      █▀█
██▀  ▀▄▄▀  █▄    ▄▀█  ▀▄▄▀      █   █
 ▀▄▄▄▄▀     ▀▀▀▀▀    ▀    ▀▀  ▀     ▀

(c) 2026
https://github.com/intuitionamiga/go-psx
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func boilerPlate() {
	fmt.Println("go-psx - a PlayStation emulator")
	fmt.Println("(c) 2026")
	fmt.Println("https://github.com/intuitionamiga/go-psx")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	boilerPlate()

	biosPath := flag.String("bios", "", "path to a 512KiB BIOS ROM image (required)")
	discPath := flag.String("disc", "", "path to a .bin or .cue disc image (optional)")
	videoKind := flag.String("video", "headless", "video backend: headless, ebiten, vulkan")
	audioKind := flag.String("audio", "headless", "audio backend: headless, oto")
	workers := flag.Int("workers", 4, "executor worker count (0 selects the unthreaded executor)")
	timeSliceMs := flag.Int("timeslice", 1, "guest milliseconds advanced per round")
	monitor := flag.Bool("monitor", false, "start the interactive debug monitor on stdin/stdout")
	overlay := flag.Bool("overlay", false, "burn round/PC diagnostics into every submitted frame")
	script := flag.String("script", "", "run a Lua automation script against the machine before the monitor/round loop starts")
	flag.Parse()

	if *biosPath == "" {
		fmt.Fprintln(os.Stderr, "go-psx: -bios is required")
		os.Exit(1)
	}

	cfg := DefaultConfig()
	cfg.BiosPath = *biosPath
	cfg.DiscPath = *discPath
	cfg.Workers = *workers
	cfg.TimeSlice = time.Duration(*timeSliceMs) * time.Millisecond

	var err error
	cfg.VideoBackendKind, err = parseVideoBackendKind(*videoKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "go-psx: %v\n", err)
		os.Exit(1)
	}
	cfg.AudioBackendKind, err = parseAudioBackendKind(*audioKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "go-psx: %v\n", err)
		os.Exit(1)
	}
	if *discPath != "" {
		cfg.CdromBackendKind = CdromBackendImage
	}

	machine, err := NewMachine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "go-psx: %v\n", err)
		os.Exit(1)
	}
	machine.SetDebugOverlay(*overlay)

	if err := machine.LoadBIOS(*biosPath); err != nil {
		fmt.Fprintf(os.Stderr, "go-psx: %v\n", err)
		os.Exit(1)
	}

	if err := machine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "go-psx: %v\n", err)
		os.Exit(1)
	}
	defer machine.Stop()

	if err := RaiseSchedulingPriority(); err != nil {
		fmt.Fprintf(os.Stderr, "go-psx: scheduling priority: %v (continuing at default priority)\n", err)
	}

	if *script != "" {
		if err := RunScript(machine, *script); err != nil {
			fmt.Fprintf(os.Stderr, "go-psx: script: %v\n", err)
			os.Exit(1)
		}
	}

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	if *monitor {
		mon := NewDebugMonitor(machine)
		mon.Run(stop)
		return
	}

	machine.Run(stop)
}

func parseVideoBackendKind(name string) (VideoBackendKind, error) {
	switch name {
	case "headless":
		return VideoBackendHeadless, nil
	case "ebiten":
		return VideoBackendEbiten, nil
	case "vulkan":
		return VideoBackendVulkan, nil
	default:
		return 0, fmt.Errorf("unknown video backend %q", name)
	}
}

func parseAudioBackendKind(name string) (AudioBackendKind, error) {
	switch name {
	case "headless":
		return AudioBackendHeadless, nil
	case "oto":
		return AudioBackendOto, nil
	default:
		return 0, fmt.Errorf("unknown audio backend %q", name)
	}
}
