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

// Package disasm parses raw NEO VM bytecode into an ordered sequence of
// (offset, opcode, operand) records, and exposes the offset<->assembly-line
// lookups the façade needs for its Assembly view mode.
package disasm

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/probechain/neodbg/opcode"
)

// ErrTruncatedOperand is returned when an opcode's inline operand runs past
// the end of the script.
var ErrTruncatedOperand = errors.New("disasm: truncated operand")

// ErrUnknownOpcode is returned when a byte does not correspond to any
// registered opcode.
var ErrUnknownOpcode = errors.New("disasm: unknown opcode")

// Instruction is one decoded bytecode record.
type Instruction struct {
	Offset  int
	Opcode  opcode.Opcode
	Operand []byte // inline operand bytes, excluding any length prefix
}

// end returns the offset one past the instruction's last byte (opcode byte
// plus any prefix and operand bytes).
func (in Instruction) end(prefixLen int) int {
	return in.Offset + 1 + prefixLen + len(in.Operand)
}

// Listing is the result of disassembling a script: the ordered instructions
// plus the offset<->assembly-line index built while scanning.
type Listing struct {
	Instructions []Instruction
	Text         string // human-readable assembly listing

	offsetToLine map[int]int
	lineToOffset map[int]int
}

// OffsetToLine returns the 1-based assembly-listing line containing ofs, or
// -1 if ofs is not the start of an instruction.
func (l *Listing) OffsetToLine(ofs int) int {
	if line, ok := l.offsetToLine[ofs]; ok {
		return line
	}
	return -1
}

// LineToOffset returns the byte offset of the instruction printed on the
// given 1-based assembly line, or -1.
func (l *Listing) LineToOffset(line int) int {
	if ofs, ok := l.lineToOffset[line]; ok {
		return ofs
	}
	return -1
}

// Disassembler memoizes Disassemble results by script content hash, since
// DebugManager may re-disassemble the same deployed contract bytecode
// repeatedly across a session (assembly-view toggles, profiler re-renders).
type Disassembler struct {
	cache *lru.Cache
}

// NewDisassembler creates a Disassembler with the given memoization cache
// size (number of distinct scripts retained).
func NewDisassembler(cacheSize int) *Disassembler {
	if cacheSize <= 0 {
		cacheSize = 32
	}
	c, _ := lru.New(cacheSize)
	return &Disassembler{cache: c}
}

// Disassemble parses code into a Listing, consulting and populating the
// memoization cache by the script's SHA256 digest.
func (d *Disassembler) Disassemble(code []byte) (*Listing, error) {
	key := sha256.Sum256(code)
	if v, ok := d.cache.Get(key); ok {
		return v.(*Listing), nil
	}
	l, err := Disassemble(code)
	if err != nil {
		return nil, err
	}
	d.cache.Add(key, l)
	return l, nil
}

// Disassemble parses code into a Listing. It is deterministic, and its
// instructions' byte ranges tile [0, len(code)) exactly.
func Disassemble(code []byte) (*Listing, error) {
	l := &Listing{offsetToLine: make(map[int]int), lineToOffset: make(map[int]int)}
	var sb strings.Builder
	line := 0
	ofs := 0
	for ofs < len(code) {
		op := opcode.Opcode(code[ofs])
		if !op.Known() {
			return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnknownOpcode, code[ofs], ofs)
		}
		kind, fixedSize := op.Operand()
		start := ofs
		cursor := ofs + 1
		var operand []byte
		prefixLen := 0
		switch kind {
		case opcode.OperandNone:
		case opcode.OperandFixed:
			if cursor+fixedSize > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d wants %d bytes", ErrTruncatedOperand, op, start, fixedSize)
			}
			operand = code[cursor : cursor+fixedSize]
			cursor += fixedSize
		case opcode.OperandPrefixed1:
			if cursor+1 > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d missing length prefix", ErrTruncatedOperand, op, start)
			}
			n := int(code[cursor])
			prefixLen = 1
			cursor++
			if cursor+n > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d wants %d bytes", ErrTruncatedOperand, op, start, n)
			}
			operand = code[cursor : cursor+n]
			cursor += n
		case opcode.OperandPrefixed2:
			if cursor+2 > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d missing length prefix", ErrTruncatedOperand, op, start)
			}
			n := int(binary.LittleEndian.Uint16(code[cursor : cursor+2]))
			prefixLen = 2
			cursor += 2
			if cursor+n > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d wants %d bytes", ErrTruncatedOperand, op, start, n)
			}
			operand = code[cursor : cursor+n]
			cursor += n
		case opcode.OperandPrefixed4:
			if cursor+4 > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d missing length prefix", ErrTruncatedOperand, op, start)
			}
			n := int(binary.LittleEndian.Uint32(code[cursor : cursor+4]))
			prefixLen = 4
			cursor += 4
			if cursor+n > len(code) {
				return nil, fmt.Errorf("%w: opcode %s at offset %d wants %d bytes", ErrTruncatedOperand, op, start, n)
			}
			operand = code[cursor : cursor+n]
			cursor += n
		}

		l.Instructions = append(l.Instructions, Instruction{Offset: start, Opcode: op, Operand: operand})
		line++
		l.offsetToLine[start] = line
		l.lineToOffset[line] = start
		sb.WriteString(fmt.Sprintf("%04d: %s", start, op))
		if len(operand) > 0 {
			sb.WriteString(fmt.Sprintf(" %x", operand))
		}
		sb.WriteString("\n")
		ofs = cursor
	}
	l.Text = sb.String()
	return l, nil
}
