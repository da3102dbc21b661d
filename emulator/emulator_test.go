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

package emulator

import (
	"math"
	"testing"

	"github.com/probechain/neodbg/chain"
	"github.com/probechain/neodbg/interop"
	"github.com/probechain/neodbg/opcode"
)

func newTestEmulator(t *testing.T, byteCode []byte) (*Emulator, *chain.Blockchain) {
	t.Helper()
	bc := chain.New()
	addr, err := bc.DeployContract("contract", byteCode)
	if err != nil {
		t.Fatalf("DeployContract: %v", err)
	}
	registry := interop.NewRegistry()
	interop.RegisterBuiltins(registry)
	em := New(bc, registry)
	em.SetContract(addr)
	return em, bc
}

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// TestSimpleReturn exercises scenario 1.
func TestSimpleReturn(t *testing.T) {
	em, bc := newTestEmulator(t, []byte{byte(opcode.PUSH3), byte(opcode.RET)})
	defer bc.Close()

	if err := em.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	em.Step()
	s := em.Step()
	if s.Kind != Finished {
		t.Fatalf("state = %s, want Finished", s.Kind)
	}
	stack := em.Engine().EvaluationStack()
	if len(stack) != 1 || stack[0].BigInt().Int64() != 3 {
		t.Fatalf("top of stack = %+v, want Integer(3)", stack)
	}
	if !approxEqual(em.UsedGas(), 0.001) {
		t.Fatalf("usedGas = %v, want 0.001", em.UsedGas())
	}
}

// TestAddTwoArgs exercises scenario 2.
func TestAddTwoArgs(t *testing.T) {
	em, bc := newTestEmulator(t, []byte{byte(opcode.ADD), byte(opcode.RET)})
	defer bc.Close()

	if err := em.Reset([]Arg{IntArg(2), IntArg(5)}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s := em.Run()
	if s.Kind != Finished {
		t.Fatalf("state = %s, want Finished", s.Kind)
	}
	stack := em.Engine().EvaluationStack()
	if len(stack) != 1 || stack[0].BigInt().Int64() != 7 {
		t.Fatalf("top of stack = %+v, want Integer(7)", stack)
	}
}

// TestBreakpointHalt exercises scenario 3.
func TestBreakpointHalt(t *testing.T) {
	script := []byte{
		byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.ADD),
		byte(opcode.PUSH3), byte(opcode.MUL), byte(opcode.RET),
	}
	em, bc := newTestEmulator(t, script)
	defer bc.Close()

	mulOffset := 4 // PUSH1(0) PUSH2(1) ADD(2) PUSH3(3) MUL(4) RET(5)
	em.AddBreakpoint(mulOffset)
	if err := em.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	s := em.Run()
	if s.Kind != Break {
		t.Fatalf("state = %s, want Break", s.Kind)
	}
	if s.Offset != mulOffset {
		t.Fatalf("offset = %d, want %d", s.Offset, mulOffset)
	}
	if !approxEqual(em.UsedGas(), 0.001) {
		t.Fatalf("usedGas at break = %v, want 0.001", em.UsedGas())
	}

	s = em.Step()
	if s.Kind != Running {
		t.Fatalf("state after resuming = %s, want Running", s.Kind)
	}
	s = em.Step()
	if s.Kind != Finished {
		t.Fatalf("state = %s, want Finished", s.Kind)
	}
	stack := em.Engine().EvaluationStack()
	if len(stack) != 1 || stack[0].BigInt().Int64() != 9 {
		t.Fatalf("top of stack = %+v, want Integer(9)", stack)
	}
}

// TestDivideByZeroFault exercises scenario 4.
func TestDivideByZeroFault(t *testing.T) {
	const divOffset = 2 // PUSH1(0) PUSH0(1) DIV(2) RET(3)
	script := []byte{byte(opcode.PUSH1), byte(opcode.PUSH0), byte(opcode.DIV), byte(opcode.RET)}
	em, bc := newTestEmulator(t, script)
	defer bc.Close()

	if err := em.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s := em.Run()
	if s.Kind != Exception {
		t.Fatalf("state = %s, want Exception", s.Kind)
	}
	if s.Offset != divOffset {
		t.Fatalf("offset = %d, want %d (DIV itself, not the instruction past it)", s.Offset, divOffset)
	}
	if !approxEqual(em.UsedGas(), 0.001) {
		t.Fatalf("usedGas = %v, want 0.001", em.UsedGas())
	}
}

// TestResetAfterRunClearsCounters checks that a Reset following a Run zeroes
// the gas and opcode counters and returns the state to {Reset 0}.
func TestResetAfterRunClearsCounters(t *testing.T) {
	em, bc := newTestEmulator(t, []byte{byte(opcode.PUSH3), byte(opcode.RET)})
	defer bc.Close()

	if err := em.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	em.Run()
	if em.UsedGas() == 0 {
		t.Fatalf("expected non-zero gas after Run")
	}

	if err := em.Reset(nil); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	if em.UsedGas() != 0 || em.UsedOpcodeCount() != 0 {
		t.Fatalf("Reset did not clear counters: gas=%v opcodes=%d", em.UsedGas(), em.UsedOpcodeCount())
	}
	if em.State().Kind != Reset || em.State().Offset != 0 {
		t.Fatalf("state after Reset = %+v, want {Reset 0}", em.State())
	}
}
