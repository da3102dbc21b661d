// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"testing"

	"github.com/probechain/neodbg/interop"
	"github.com/probechain/neodbg/opcode"
)

// program concatenates opcode/byte fragments into a single script.
func program(parts ...byte) []byte { return parts }

// stubContext is a no-op interop.Context for tests that don't exercise
// syscalls.
type stubContext struct{}

func (stubContext) CurrentScriptHash() [20]byte        { return [20]byte{} }
func (stubContext) StorageGet([]byte) ([]byte, bool)    { return nil, false }
func (stubContext) StoragePut([]byte, []byte)           {}
func (stubContext) StorageDelete([]byte)                {}
func (stubContext) CheckWitness([]byte) bool            { return true }
func (stubContext) Notify(string, ...any)               {}
func (stubContext) LastStorageBytes() int               { return 0 }

func newTestEngine() *Engine {
	r := interop.NewRegistry()
	interop.RegisterBuiltins(r)
	return New(r, stubContext{})
}

func runToHalt(t *testing.T, e *Engine, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if e.State().Has(StateHalt) || e.State().Has(StateFault) {
			return
		}
		if err := e.StepInto(); err != nil {
			t.Fatalf("StepInto: %v", err)
		}
	}
	t.Fatalf("did not halt within %d steps", maxSteps)
}

func TestSimpleReturn(t *testing.T) {
	e := newTestEngine()
	e.LoadScript(program(byte(opcode.PUSH3), byte(opcode.RET)))
	runToHalt(t, e, 10)

	if !e.State().Has(StateHalt) {
		t.Fatalf("state = %s, want HALT", e.State())
	}
	top := e.EvaluationStack()
	if len(top) != 1 || top[0].BigInt().Int64() != 3 {
		t.Fatalf("top of stack = %+v, want Integer(3)", top)
	}
}

func TestAddTwoArgs(t *testing.T) {
	e := newTestEngine()
	e.LoadScript(program(byte(opcode.PUSH2), byte(opcode.PUSH5), byte(opcode.ADD), byte(opcode.RET)))
	runToHalt(t, e, 10)

	top := e.EvaluationStack()
	if len(top) != 1 || top[0].BigInt().Int64() != 7 {
		t.Fatalf("top of stack = %+v, want Integer(7)", top)
	}
}

func TestBreakpointHalt(t *testing.T) {
	e := newTestEngine()
	script := program(
		byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.ADD),
		byte(opcode.PUSH3), byte(opcode.MUL), byte(opcode.RET),
	)
	e.LoadScript(script)
	// PUSH1(0) PUSH2(1) ADD(2) PUSH3(3) MUL(4): break right after ADD.
	push3Offset := 3
	e.AddBreakpoint(push3Offset)

	for i := 0; i < 10; i++ {
		if e.State().Has(StateBreak) || e.State().Has(StateHalt) || e.State().Has(StateFault) {
			break
		}
		if err := e.StepInto(); err != nil {
			t.Fatalf("StepInto: %v", err)
		}
	}
	if !e.State().Has(StateBreak) {
		t.Fatalf("state = %s, want BREAK", e.State())
	}
	if e.CurrentContext().IP != push3Offset {
		t.Fatalf("IP = %d, want %d", e.CurrentContext().IP, push3Offset)
	}
	top := e.EvaluationStack()
	if len(top) != 1 || top[0].BigInt().Int64() != 3 {
		t.Fatalf("top of stack at break = %+v, want Integer(3)", top)
	}

	e.ClearBreakState()
	runToHalt(t, e, 10)
	top = e.EvaluationStack()
	if len(top) != 1 || top[0].BigInt().Int64() != 9 {
		t.Fatalf("top of stack at halt = %+v, want Integer(9)", top)
	}
}

func TestDivideByZeroFaults(t *testing.T) {
	e := newTestEngine()
	const divOffset = 2 // PUSH1(0) PUSH0(1) DIV(2) RET(3)
	e.LoadScript(program(byte(opcode.PUSH1), byte(opcode.PUSH0), byte(opcode.DIV), byte(opcode.RET)))
	runToHalt(t, e, 10)

	if !e.State().Has(StateFault) {
		t.Fatalf("state = %s, want FAULT", e.State())
	}
	if e.LastFault() == nil {
		t.Fatalf("LastFault() = nil, want non-nil")
	}
	if ctx := e.CurrentContext(); ctx == nil || ctx.IP != divOffset {
		got := -1
		if ctx != nil {
			got = ctx.IP
		}
		t.Fatalf("IP after fault = %d, want %d (the faulting DIV itself, not advanced past it)", got, divOffset)
	}
}

// witnessContext is an interop.Context whose CheckWitness result and storage
// contents are test-controlled, used to exercise SYSCALL through the full
// engine rather than calling a registry handler directly.
type witnessContext struct {
	stubContext
	witness bool
	storage map[string][]byte
}

func (w *witnessContext) StorageGet(key []byte) ([]byte, bool) {
	v, ok := w.storage[string(key)]
	return v, ok
}
func (w *witnessContext) CheckWitness([]byte) bool { return w.witness }

func syscallScript(name string, pushArg []byte) []byte {
	var script []byte
	if pushArg != nil {
		script = append(script, byte(opcode.PUSHDATA1), byte(len(pushArg)))
		script = append(script, pushArg...)
	}
	script = append(script, byte(opcode.SYSCALL), byte(len(name)))
	script = append(script, []byte(name)...)
	script = append(script, byte(opcode.RET))
	return script
}

func TestCheckWitnessAlwaysFalsePushesResultInsteadOfFaulting(t *testing.T) {
	r := interop.NewRegistry()
	interop.RegisterBuiltins(r)
	ctx := &witnessContext{witness: false}
	e := New(r, ctx)
	e.LoadScript(syscallScript("Neo.Runtime.CheckWitness", make([]byte, 20)))
	runToHalt(t, e, 10)

	if !e.State().Has(StateHalt) {
		t.Fatalf("state = %s, want HALT (a false witness check must not fault the engine)", e.State())
	}
	top := e.EvaluationStack()
	if len(top) != 1 || top[0].Bool() {
		t.Fatalf("stack after CheckWitness = %+v, want [Boolean(false)]", top)
	}
}

func TestStorageGetPushesStoredValue(t *testing.T) {
	r := interop.NewRegistry()
	interop.RegisterBuiltins(r)
	ctx := &witnessContext{witness: true, storage: map[string][]byte{"k": []byte("v")}}
	e := New(r, ctx)
	e.LoadScript(syscallScript("Neo.Storage.Get", []byte("k")))
	runToHalt(t, e, 10)

	if !e.State().Has(StateHalt) {
		t.Fatalf("state = %s, want HALT", e.State())
	}
	top := e.EvaluationStack()
	if len(top) != 1 || string(top[0].Bytes()) != "v" {
		t.Fatalf("stack after Storage.Get = %+v, want [ByteArray(\"v\")]", top)
	}
}

func TestStackManipulation(t *testing.T) {
	e := newTestEngine()
	e.LoadScript(program(byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.SWAP)))
	for i := 0; i < 3; i++ {
		if err := e.StepInto(); err != nil {
			t.Fatalf("StepInto: %v", err)
		}
	}
	top := e.EvaluationStack()
	if len(top) != 2 || top[1].BigInt().Int64() != 1 || top[0].BigInt().Int64() != 2 {
		t.Fatalf("stack after SWAP = %+v, want [2 1]", top)
	}
}
