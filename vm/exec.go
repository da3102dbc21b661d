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
	"encoding/binary"
	"fmt"

	"github.com/probechain/neodbg/common"
	"github.com/probechain/neodbg/opcode"
	"github.com/probechain/neodbg/stackitem"
)

// ScriptResolver maps a 20-byte deployed contract script hash to its
// bytecode, for APPCALL/TAILCALL. Set via Engine.SetScriptResolver; nil
// means APPCALL/TAILCALL always fault.
type ScriptResolver func(hash common.ScriptHash) ([]byte, bool)

// SetScriptResolver installs the resolver APPCALL/TAILCALL use to look up
// another contract's bytecode by script hash.
func (e *Engine) SetScriptResolver(r ScriptResolver) { e.resolver = r }

// execute dispatches one decoded instruction. Ordinary VM faults (stack
// underflow, bad opcode, div by zero, ...) are returned as errors; StepInto
// then rolls IP back and records them via Engine.fault, so they surface as
// the FAULT state bit rather than as a Go error from StepInto.
//
//nolint:gocyclo
func (e *Engine) execute(op opcode.Opcode, operand []byte) error {
	switch {
	case op.IsLiteralPush():
		return e.execPush(op, operand)
	}

	switch op {
	case opcode.NOP:
		return nil

	// ---- Flow control -----------------------------------------------------
	case opcode.JMP, opcode.JMPIF, opcode.JMPIFNOT:
		return e.execJump(op, operand)
	case opcode.CALL:
		return e.execCall(operand)
	case opcode.RET:
		return e.execRet()
	case opcode.APPCALL, opcode.TAILCALL:
		return e.execAppCall(op, operand)
	case opcode.SYSCALL:
		return e.execSysCall(operand)
	case opcode.THROW:
		return fmt.Errorf("vm: THROW")
	case opcode.THROWIFNOT:
		v, err := e.pop()
		if err != nil {
			return err
		}
		if !v.Bool() {
			return fmt.Errorf("vm: THROWIFNOT")
		}
		return nil

	// ---- Stack manipulation ------------------------------------------------
	case opcode.TOALTSTACK:
		v, err := e.pop()
		if err != nil {
			return err
		}
		e.altStack = append(e.altStack, v)
		return nil
	case opcode.FROMALTSTACK:
		if len(e.altStack) == 0 {
			return ErrStackUnderflow
		}
		v := e.altStack[len(e.altStack)-1]
		e.altStack = e.altStack[:len(e.altStack)-1]
		e.push(v)
		return nil
	case opcode.DUPFROMALTSTACK:
		if len(e.altStack) == 0 {
			return ErrStackUnderflow
		}
		e.push(e.altStack[len(e.altStack)-1])
		return nil
	case opcode.DEPTH:
		e.push(stackitem.NewIntegerInt64(int64(len(e.evalStack))))
		return nil
	case opcode.DROP:
		_, err := e.pop()
		return err
	case opcode.DUP:
		v, err := e.peek(0)
		if err != nil {
			return err
		}
		e.push(v)
		return nil
	case opcode.NIP:
		v, err := e.pop()
		if err != nil {
			return err
		}
		if _, err := e.pop(); err != nil {
			return err
		}
		e.push(v)
		return nil
	case opcode.OVER:
		v, err := e.peek(1)
		if err != nil {
			return err
		}
		e.push(v)
		return nil
	case opcode.PICK:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		v, err := e.peek(int(n))
		if err != nil {
			return err
		}
		e.push(v)
		return nil
	case opcode.ROLL:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		i := len(e.evalStack) - 1 - int(n)
		if i < 0 || i >= len(e.evalStack) {
			return ErrStackUnderflow
		}
		v := e.evalStack[i]
		e.evalStack = append(e.evalStack[:i], e.evalStack[i+1:]...)
		e.push(v)
		return nil
	case opcode.ROT:
		return e.rollN(2)
	case opcode.SWAP:
		return e.rollN(1)
	case opcode.TUCK:
		top, err := e.peek(0)
		if err != nil {
			return err
		}
		i := len(e.evalStack) - 2
		if i < 0 {
			return ErrStackUnderflow
		}
		e.evalStack = append(e.evalStack[:i], append([]*stackitem.Item{top}, e.evalStack[i:]...)...)
		return nil
	case opcode.XDROP:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		i := len(e.evalStack) - 1 - int(n)
		if i < 0 || i >= len(e.evalStack) {
			return ErrStackUnderflow
		}
		e.evalStack = append(e.evalStack[:i], e.evalStack[i+1:]...)
		return nil
	case opcode.XSWAP:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		i := len(e.evalStack) - 1 - int(n)
		if i < 0 || i >= len(e.evalStack) {
			return ErrStackUnderflow
		}
		top := len(e.evalStack) - 1
		e.evalStack[i], e.evalStack[top] = e.evalStack[top], e.evalStack[i]
		return nil
	case opcode.XTUCK:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		top, err := e.peek(0)
		if err != nil {
			return err
		}
		i := len(e.evalStack) - 1 - int(n)
		if i < 0 || i >= len(e.evalStack) {
			return ErrStackUnderflow
		}
		e.evalStack = append(e.evalStack[:i], append([]*stackitem.Item{top}, e.evalStack[i:]...)...)
		return nil

	// ---- Byte-array ops -----------------------------------------------------
	case opcode.CAT, opcode.SUBSTR, opcode.LEFT, opcode.RIGHT, opcode.SIZE:
		return e.execByteOp(op)

	// ---- Bitwise/comparison/arithmetic --------------------------------------
	case opcode.INVERT, opcode.AND, opcode.OR, opcode.XOR, opcode.EQUAL:
		return e.execBitwise(op)
	case opcode.INC, opcode.DEC, opcode.SIGN, opcode.NEGATE, opcode.ABS, opcode.NOT, opcode.NZ:
		return e.execUnaryArith(op)
	case opcode.ADD, opcode.SUB, opcode.MUL, opcode.DIV, opcode.MOD, opcode.SHL, opcode.SHR,
		opcode.BOOLAND, opcode.BOOLOR, opcode.NUMEQUAL, opcode.NUMNOTEQUAL,
		opcode.LT, opcode.GT, opcode.LTE, opcode.GTE, opcode.MIN, opcode.MAX:
		return e.execBinaryArith(op)
	case opcode.WITHIN:
		return e.execWithin()

	// ---- Crypto ---------------------------------------------------------
	case opcode.SHA1, opcode.SHA256, opcode.HASH160, opcode.HASH256:
		return e.execHash(op)
	case opcode.CHECKSIG:
		return e.execCheckSig()
	case opcode.CHECKMULTISIG:
		return e.execCheckMultiSig()

	// ---- Composite types ---------------------------------------------------
	case opcode.NEWARRAY, opcode.NEWSTRUCT:
		return e.execNewCollection(op)
	case opcode.NEWMAP:
		e.push(stackitem.NewMap())
		return nil
	case opcode.APPEND:
		return e.execAppend()
	case opcode.REVERSE:
		return e.execReverse()
	case opcode.REMOVE:
		return e.execRemove()
	case opcode.HASKEY:
		return e.execHasKey()
	case opcode.KEYS:
		return e.execMapQuery(func(it *stackitem.Item) []*stackitem.Item { return it.MapKeys() })
	case opcode.VALUES:
		return e.execMapQuery(func(it *stackitem.Item) []*stackitem.Item { return it.MapValues() })
	case opcode.PICKITEM:
		return e.execPickItem()
	case opcode.SETITEM:
		return e.execSetItem()
	case opcode.ARRAYSIZE:
		return e.execArraySize()
	case opcode.PACK:
		return e.execPack()
	case opcode.UNPACK:
		return e.execUnpack()
	}

	return fmt.Errorf("%w: %s is not implemented", ErrInvalidOpcode, op)
}

// execPush implements every literal-push instruction.
func (e *Engine) execPush(op opcode.Opcode, operand []byte) error {
	switch {
	case op == opcode.PUSH0:
		e.push(stackitem.NewByteArray(nil))
	case op == opcode.PUSHM1:
		e.push(stackitem.NewIntegerInt64(-1))
	case op == opcode.PUSHT:
		e.push(stackitem.NewBoolean(true))
	case op >= opcode.PUSHBYTES1 && op <= opcode.PUSHBYTES75,
		op == opcode.PUSHDATA1, op == opcode.PUSHDATA2, op == opcode.PUSHDATA4:
		e.push(stackitem.NewByteArray(operand))
	case op >= opcode.PUSH1 && op <= opcode.PUSH16:
		e.push(stackitem.NewIntegerInt64(int64(op - opcode.PUSH1 + 1)))
	default:
		return fmt.Errorf("%w: unhandled literal push %s", ErrInvalidOpcode, op)
	}
	return nil
}

// execJump implements JMP/JMPIF/JMPIFNOT. The 2-byte operand is a signed
// little-endian offset relative to the start of the jump instruction.
func (e *Engine) execJump(op opcode.Opcode, operand []byte) error {
	if len(operand) != 2 {
		return fmt.Errorf("%w: JMP family operand must be 2 bytes", ErrScriptBounds)
	}
	ctx := e.CurrentContext()
	instrStart := ctx.IP - 3 // IP already advanced past opcode+2-byte operand
	rel := int16(binary.LittleEndian.Uint16(operand))
	take := true
	if op != opcode.JMP {
		v, err := e.pop()
		if err != nil {
			return err
		}
		cond := v.Bool()
		take = cond
		if op == opcode.JMPIFNOT {
			take = !cond
		}
	}
	if take {
		target := instrStart + int(rel)
		if target < 0 || target > len(ctx.Script) {
			return fmt.Errorf("%w: jump target %d out of range", ErrScriptBounds, target)
		}
		ctx.IP = target
	}
	return nil
}

// execCall implements CALL: duplicates the current context onto the
// invocation stack with IP repointed to the call target; the original
// context (IP already past the CALL instruction) remains beneath it, so
// RET popping the new context naturally resumes the caller.
func (e *Engine) execCall(operand []byte) error {
	if len(operand) != 2 {
		return fmt.Errorf("%w: CALL operand must be 2 bytes", ErrScriptBounds)
	}
	if len(e.invocation) >= MaxCallDepth {
		return ErrCallDepthExceeded
	}
	ctx := e.CurrentContext()
	instrStart := ctx.IP - 3
	rel := int16(binary.LittleEndian.Uint16(operand))
	target := instrStart + int(rel)
	if target < 0 || target > len(ctx.Script) {
		return fmt.Errorf("%w: call target %d out of range", ErrScriptBounds, target)
	}
	callee := &InvocationContext{Script: ctx.Script, IP: target, ScriptHash: ctx.ScriptHash}
	e.invocation = append(e.invocation, callee)
	return nil
}

// execRet pops the current invocation context and sets the HALT state bit
// when it was the last one.
func (e *Engine) execRet() error {
	if len(e.invocation) == 0 {
		return ErrScriptBounds
	}
	e.invocation = e.invocation[:len(e.invocation)-1]
	if len(e.invocation) == 0 {
		e.state |= StateHalt
	}
	return nil
}

// execAppCall implements APPCALL/TAILCALL: resolves a 20-byte script hash
// operand to bytecode via the installed resolver and pushes (APPCALL) or
// replaces (TAILCALL) the current context with it.
func (e *Engine) execAppCall(op opcode.Opcode, operand []byte) error {
	if len(operand) != 20 {
		return fmt.Errorf("%w: %s operand must be 20 bytes", ErrScriptBounds, op)
	}
	if e.resolver == nil {
		return fmt.Errorf("vm: %s: no script resolver installed", op)
	}
	var hash common.ScriptHash
	copy(hash[:], operand)
	script, ok := e.resolver(hash)
	if !ok {
		return fmt.Errorf("vm: %s: unresolved script hash %s", op, hash)
	}
	if op == opcode.TAILCALL {
		if len(e.invocation) == 0 {
			return ErrScriptBounds
		}
		e.invocation[len(e.invocation)-1] = &InvocationContext{Script: script, IP: 0, ScriptHash: hash}
		return nil
	}
	if len(e.invocation) >= MaxCallDepth {
		return ErrCallDepthExceeded
	}
	e.invocation = append(e.invocation, &InvocationContext{Script: script, IP: 0, ScriptHash: hash})
	return nil
}

// rollN moves the item n positions below the top to the top (SWAP is
// rollN(1), ROT is rollN(2)).
func (e *Engine) rollN(n int) error {
	i := len(e.evalStack) - 1 - n
	if i < 0 {
		return ErrStackUnderflow
	}
	v := e.evalStack[i]
	e.evalStack = append(e.evalStack[:i], e.evalStack[i+1:]...)
	e.push(v)
	return nil
}

func (e *Engine) popInt() (int64, error) {
	v, err := e.pop()
	if err != nil {
		return 0, err
	}
	return v.BigInt().Int64(), nil
}
