// debugmonitor.go - Interactive line-mode debug console

/*
debugmonitor.go - Debug monitor.

A tiny REPL over stdin/stdout, grounded on terminal_host.go's raw-mode
handling: MakeRaw disables the OS's own line editing and echo so the
monitor can read one line at a time itself and restores the terminal
on exit. Commands step the machine a given number of rounds, dump CPU
registers and save/load state; only instantiated when -monitor is passed, never in tests.
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.design/x/clipboard"
	"golang.org/x/term"
)

type DebugMonitor struct {
	machine *Machine

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewDebugMonitor(m *Machine) *DebugMonitor {
	return &DebugMonitor{machine: m}
}

// Run puts stdin in raw mode, reads commands line by line until stop
// closes or the user types "quit", and restores the terminal state on
// the way out.
func (d *DebugMonitor) Run(stop <-chan struct{}) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Not a real terminal (piped input, CI) - fall back to
		// buffered line reads without raw mode.
		d.runLineLoop(stop)
		return
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(os.Stdin, "(go-psx) ")
	for {
		select {
		case <-stop:
			return
		default:
		}
		line, err := t.ReadLine()
		if err != nil {
			return
		}
		if d.dispatch(strings.TrimSpace(line)) {
			return
		}
	}
}

func (d *DebugMonitor) runLineLoop(stop <-chan struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-stop:
			return
		default:
		}
		if d.dispatch(strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

// dispatch runs one command and reports whether the monitor should
// exit.
func (d *DebugMonitor) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "q":
		return true
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		for i := 0; i < n; i++ {
			for _, e := range d.machine.RunRound() {
				fmt.Fprintf(os.Stdout, "\r\n%s", e)
			}
		}
		fmt.Fprintf(os.Stdout, "\r\nran %d round(s)\r\n", n)
	case "regs", "r":
		d.dumpRegisters()
	case "pc":
		fmt.Fprintf(os.Stdout, "\r\nPC=0x%08X\r\n", d.machine.State.CPU.PC)
	case "save":
		if len(fields) < 2 {
			fmt.Fprint(os.Stdout, "\r\nusage: save <path>\r\n")
			break
		}
		if err := SaveState(d.machine.State, fields[1]); err != nil {
			fmt.Fprintf(os.Stdout, "\r\nsave failed: %v\r\n", err)
		}
	case "load":
		if len(fields) < 2 {
			fmt.Fprint(os.Stdout, "\r\nusage: load <path>\r\n")
			break
		}
		if err := LoadState(d.machine.State, fields[1]); err != nil {
			fmt.Fprintf(os.Stdout, "\r\nload failed: %v\r\n", err)
		}
	case "regs-copy":
		d.copyRegistersToClipboard()
	case "help", "h":
		fmt.Fprint(os.Stdout, "\r\ncommands: step [n], regs, regs-copy, pc, save <path>, load <path>, quit\r\n")
	default:
		fmt.Fprintf(os.Stdout, "\r\nunknown command %q (try help)\r\n", fields[0])
	}
	return false
}

func (d *DebugMonitor) dumpRegisters() {
	c := &d.machine.State.CPU
	for i := 0; i < 32; i += 4 {
		fmt.Fprintf(os.Stdout, "\r\nr%-2d=%08X r%-2d=%08X r%-2d=%08X r%-2d=%08X",
			i, c.Regs[i], i+1, c.Regs[i+1], i+2, c.Regs[i+2], i+3, c.Regs[i+3])
	}
	fmt.Fprintf(os.Stdout, "\r\nhi=%08X lo=%08X pc=%08X\r\n", c.HI, c.LO, c.PC)
}

// copyRegistersToClipboard places a text dump of the CPU registers on
// the system clipboard, so a register snapshot can be pasted straight
// into a bug report without retyping it from the terminal.
func (d *DebugMonitor) copyRegistersToClipboard() {
	d.clipboardOnce.Do(func() {
		d.clipboardOK = clipboard.Init() == nil
	})
	if !d.clipboardOK {
		fmt.Fprint(os.Stdout, "\r\nclipboard unavailable\r\n")
		return
	}
	c := &d.machine.State.CPU
	var sb strings.Builder
	for i := 0; i < 32; i++ {
		fmt.Fprintf(&sb, "r%d=%08X\n", i, c.Regs[i])
	}
	fmt.Fprintf(&sb, "hi=%08X lo=%08X pc=%08X\n", c.HI, c.LO, c.PC)
	clipboard.Write(clipboard.FmtText, []byte(sb.String()))
	fmt.Fprint(os.Stdout, "\r\nregisters copied to clipboard\r\n")
}
