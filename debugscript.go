// debugscript.go - Lua automation scripting for headless test/capture runs

/*
debugscript.go - Script runner.

Exposes a minimal table of machine primitives to gopher-lua: step N
rounds, peek/poke 32-bit words, read a CPU register, save/load state.
Intended for repeatable test-rig scripts (run to a known PC, dump
registers, compare against a golden trace) rather than general guest
automation.
*/

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// RunScript executes the Lua file at path against machine, returning
// any error raised by the script itself or the Lua runtime.
func RunScript(machine *Machine, path string) error {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("step", L.NewFunction(func(L *lua.LState) int {
		n := L.OptInt(1, 1)
		for i := 0; i < n; i++ {
			for _, e := range machine.RunRound() {
				fmt.Printf("go-psx: %s\n", e)
			}
		}
		return 0
	}))

	L.SetGlobal("peek32", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt(1))
		v, err := machine.State.Memory.Read32(addr)
		if err != nil {
			L.RaiseError("peek32: %v", err)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	L.SetGlobal("poke32", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt(1))
		value := uint32(L.CheckInt(2))
		if err := machine.State.Memory.Write32(addr, value); err != nil {
			L.RaiseError("poke32: %v", err)
		}
		return 0
	}))

	L.SetGlobal("reg", L.NewFunction(func(L *lua.LState) int {
		idx := L.CheckInt(1)
		if idx < 0 || idx > 31 {
			L.RaiseError("reg: index %d out of range", idx)
			return 0
		}
		L.Push(lua.LNumber(machine.State.CPU.Regs[idx]))
		return 1
	}))

	L.SetGlobal("pc", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(machine.State.CPU.PC))
		return 1
	}))

	L.SetGlobal("save_state", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		if err := SaveState(machine.State, path); err != nil {
			L.RaiseError("save_state: %v", err)
		}
		return 0
	}))

	L.SetGlobal("load_state", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		if err := LoadState(machine.State, path); err != nil {
			L.RaiseError("load_state: %v", err)
		}
		return 0
	}))

	return L.DoFile(path)
}
