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

// Package vm implements the core bytecode interpreter: opcode dispatch,
// the evaluation/alt/invocation stacks, breakpoint checks, and VM state
// flags. It does not know about gas, argument marshalling,
// or the blockchain; the emulator package wraps it to add those concerns.
package vm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/probechain/neodbg/common"
	"github.com/probechain/neodbg/crypto"
	"github.com/probechain/neodbg/interop"
	"github.com/probechain/neodbg/opcode"
	"github.com/probechain/neodbg/stackitem"
)

// State is a bitflag over the engine's execution status.
type State int

const (
	StateNone  State = 0
	StateHalt  State = 1 << 0
	StateFault State = 1 << 1
	StateBreak State = 1 << 2
)

func (s State) String() string {
	switch {
	case s&StateFault != 0:
		return "FAULT"
	case s&StateBreak != 0:
		return "BREAK"
	case s&StateHalt != 0:
		return "HALT"
	default:
		return "NONE"
	}
}

// Has reports whether flag is set in s.
func (s State) Has(flag State) bool { return s&flag != 0 }

// Sentinel fault causes. These are never returned as Go errors from
// stepInto: they are recorded via Engine.LastFault and surfaced as the
// FAULT state bit, ("VmFaults are never thrown").
var (
	ErrStackUnderflow    = errors.New("vm: stack underflow")
	ErrInvalidOpcode     = errors.New("vm: invalid opcode")
	ErrScriptBounds      = errors.New("vm: script bounds violation")
	ErrDivisionByZero    = errors.New("vm: division by zero")
	ErrCallDepthExceeded = errors.New("vm: call depth limit exceeded")
	ErrIntegerSize       = errors.New("vm: integer exceeds permitted size")
	ErrInvalidItem       = errors.New("vm: operand has wrong stack-item type")
	ErrSyscallFailed     = errors.New("vm: syscall handler reported failure")
)

// MaxCallDepth bounds the invocation-context stack (APPCALL/CALL nesting).
const MaxCallDepth = 1024

// MaxIntegerBytes bounds the byte length of a two's-complement integer
// operand; NEO VM rejects arithmetic on absurdly large numbers.
const MaxIntegerBytes = 32

// InvocationContext is one entry of the engine's call stack: a loaded
// script, its instruction pointer, and its derived script hash.
type InvocationContext struct {
	Script     []byte
	IP         int
	ScriptHash common.ScriptHash
}

func scriptHashOf(script []byte) common.ScriptHash {
	return common.BytesToScriptHash(crypto.Hash160(script))
}

// Engine is the ExecutionEngine
type Engine struct {
	invocation []*InvocationContext
	evalStack  []*stackitem.Item
	altStack   []*stackitem.Item

	state       State
	lastOpcode  opcode.Opcode
	lastSysCall string
	lastFault   error

	breakpoints map[int]bool

	registry  *interop.Registry
	container interop.Context
	resolver  ScriptResolver
}

// New creates an Engine bound to registry (for SYSCALL resolution) and
// container (the syscall Context; see interop.Context's doc comment on why
// this is an explicit construction-time field rather than a back-pointer).
func New(registry *interop.Registry, container interop.Context) *Engine {
	return &Engine{
		registry:    registry,
		container:   container,
		breakpoints: make(map[int]bool),
	}
}

// LoadScript pushes a new invocation context for script with IP=0.
func (e *Engine) LoadScript(script []byte) *InvocationContext {
	ctx := &InvocationContext{Script: script, IP: 0, ScriptHash: scriptHashOf(script)}
	e.invocation = append(e.invocation, ctx)
	return ctx
}

// CurrentContext returns the top invocation context, or nil if none is loaded.
func (e *Engine) CurrentContext() *InvocationContext {
	if len(e.invocation) == 0 {
		return nil
	}
	return e.invocation[len(e.invocation)-1]
}

// AddBreakpoint/RemoveBreakpoint register/unregister a byte offset checked
// against the top context's IP after every instruction.
func (e *Engine) AddBreakpoint(offset int)    { e.breakpoints[offset] = true }
func (e *Engine) RemoveBreakpoint(offset int) { delete(e.breakpoints, offset) }

// State returns the current state bitflag.
func (e *Engine) State() State { return e.state }

// ClearBreakState clears the BREAK bit so a subsequent stepInto can resume.
func (e *Engine) ClearBreakState() { e.state &^= StateBreak }

// LastOpcode returns the opcode most recently dispatched.
func (e *Engine) LastOpcode() opcode.Opcode { return e.lastOpcode }

// LastSysCall returns the syscall name dispatched by the most recent
// instruction, or "" if it was not a SYSCALL.
func (e *Engine) LastSysCall() string { return e.lastSysCall }

// LastFault returns the error that produced the current FAULT state, if any.
func (e *Engine) LastFault() error { return e.lastFault }

// EvaluationStack returns the live evaluation stack, top last.
func (e *Engine) EvaluationStack() []*stackitem.Item { return e.evalStack }

// AltStack returns the live alt stack, top last.
func (e *Engine) AltStack() []*stackitem.Item { return e.altStack }

// fault marks the engine FAULT, recording err and leaving IP at the
// instruction that triggered it (callers must not have advanced IP yet).
func (e *Engine) fault(err error) {
	e.state |= StateFault
	e.lastFault = err
}

func (e *Engine) push(item *stackitem.Item) {
	e.evalStack = append(e.evalStack, item)
}

func (e *Engine) pop() (*stackitem.Item, error) {
	if len(e.evalStack) == 0 {
		return nil, ErrStackUnderflow
	}
	item := e.evalStack[len(e.evalStack)-1]
	e.evalStack = e.evalStack[:len(e.evalStack)-1]
	return item, nil
}

func (e *Engine) peek(depthFromTop int) (*stackitem.Item, error) {
	i := len(e.evalStack) - 1 - depthFromTop
	if i < 0 || i >= len(e.evalStack) {
		return nil, ErrStackUnderflow
	}
	return e.evalStack[i], nil
}

// StepInto fetches the opcode at the top context's IP, executes it (which
// may push/pop invocation contexts), advances IP past the instruction and
// its inline operand, then checks the new IP against the breakpoint set.
func (e *Engine) StepInto() error {
	if e.state.Has(StateHalt) || e.state.Has(StateFault) {
		return fmt.Errorf("vm: StepInto called in terminal state %s", e.state)
	}
	// Pop any exhausted contexts (e.g. an empty argument-loader script)
	// transparently, so a single StepInto call always executes exactly one
	// real instruction, halting only when the outermost context is spent.
	ctx := e.CurrentContext()
	for ctx != nil && ctx.IP >= len(ctx.Script) {
		if len(e.invocation) == 1 {
			e.state |= StateHalt
			return nil
		}
		e.invocation = e.invocation[:len(e.invocation)-1]
		ctx = e.CurrentContext()
	}
	if ctx == nil {
		e.fault(fmt.Errorf("%w: no loaded script", ErrScriptBounds))
		return nil
	}

	op := opcode.Opcode(ctx.Script[ctx.IP])
	if !op.Known() {
		e.fault(fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidOpcode, ctx.Script[ctx.IP], ctx.IP))
		return nil
	}
	e.lastOpcode = op
	e.lastSysCall = ""

	operand, nextIP, err := readOperand(ctx.Script, ctx.IP, op)
	if err != nil {
		e.fault(err)
		return nil
	}

	faultIP := ctx.IP
	ctx.IP = nextIP
	if err := e.execute(op, operand); err != nil {
		// execute needs ctx.IP already advanced (JMP/CALL compute their
		// target relative to nextIP), but fault() requires IP left at the
		// instruction that triggered it, so roll it back on error.
		ctx.IP = faultIP
		e.fault(err)
		return nil
	}

	if top := e.CurrentContext(); top != nil && e.breakpoints[top.IP] {
		e.state |= StateBreak
	}
	return nil
}

// readOperand decodes the inline operand (if any) of op starting at ip in
// script, returning the operand bytes and the offset one past them.
func readOperand(script []byte, ip int, op opcode.Opcode) ([]byte, int, error) {
	kind, fixed := op.Operand()
	cursor := ip + 1
	switch kind {
	case opcode.OperandNone:
		return nil, cursor, nil
	case opcode.OperandFixed:
		if cursor+fixed > len(script) {
			return nil, 0, fmt.Errorf("%w: opcode %s wants %d operand bytes at %d", ErrScriptBounds, op, fixed, ip)
		}
		return script[cursor : cursor+fixed], cursor + fixed, nil
	case opcode.OperandPrefixed1:
		if cursor+1 > len(script) {
			return nil, 0, fmt.Errorf("%w: missing length prefix at %d", ErrScriptBounds, ip)
		}
		n := int(script[cursor])
		cursor++
		if cursor+n > len(script) {
			return nil, 0, fmt.Errorf("%w: wants %d operand bytes at %d", ErrScriptBounds, n, ip)
		}
		return script[cursor : cursor+n], cursor + n, nil
	case opcode.OperandPrefixed2:
		if cursor+2 > len(script) {
			return nil, 0, fmt.Errorf("%w: missing length prefix at %d", ErrScriptBounds, ip)
		}
		n := int(binary.LittleEndian.Uint16(script[cursor : cursor+2]))
		cursor += 2
		if cursor+n > len(script) {
			return nil, 0, fmt.Errorf("%w: wants %d operand bytes at %d", ErrScriptBounds, n, ip)
		}
		return script[cursor : cursor+n], cursor + n, nil
	case opcode.OperandPrefixed4:
		if cursor+4 > len(script) {
			return nil, 0, fmt.Errorf("%w: missing length prefix at %d", ErrScriptBounds, ip)
		}
		n := int(binary.LittleEndian.Uint32(script[cursor : cursor+4]))
		cursor += 4
		if cursor+n > len(script) {
			return nil, 0, fmt.Errorf("%w: wants %d operand bytes at %d", ErrScriptBounds, n, ip)
		}
		return script[cursor : cursor+n], cursor + n, nil
	default:
		return nil, 0, fmt.Errorf("%w: unhandled operand kind", ErrInvalidOpcode)
	}
}
