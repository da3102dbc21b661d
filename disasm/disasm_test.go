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

package disasm

import (
	"testing"

	"github.com/probechain/neodbg/opcode"
)

func TestDisassembleTilesTheScriptExactly(t *testing.T) {
	code := []byte{
		byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.ADD),
		byte(opcode.PUSHDATA1), 3, 'a', 'b', 'c',
		byte(opcode.RET),
	}
	listing, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}

	covered := 0
	for _, in := range listing.Instructions {
		if in.Offset != covered {
			t.Fatalf("instruction at %d does not immediately follow previous coverage (%d)", in.Offset, covered)
		}
		prefixLen := 0
		switch k, _ := in.Opcode.Operand(); k {
		case opcode.OperandPrefixed1:
			prefixLen = 1
		case opcode.OperandPrefixed2:
			prefixLen = 2
		case opcode.OperandPrefixed4:
			prefixLen = 4
		}
		covered = in.end(prefixLen)
	}
	if covered != len(code) {
		t.Fatalf("instructions cover %d bytes, want %d", covered, len(code))
	}
}

func TestDisassembleIsDeterministic(t *testing.T) {
	code := []byte{byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.ADD), byte(opcode.RET)}
	a, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	b, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if a.Text != b.Text {
		t.Fatalf("Disassemble is not deterministic:\n%q\nvs\n%q", a.Text, b.Text)
	}
}

func TestOffsetLineRoundTrip(t *testing.T) {
	code := []byte{byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.ADD), byte(opcode.RET)}
	listing, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	for _, in := range listing.Instructions {
		line := listing.OffsetToLine(in.Offset)
		if line < 1 {
			t.Fatalf("offset %d has no assembly line", in.Offset)
		}
		if got := listing.LineToOffset(line); got != in.Offset {
			t.Fatalf("LineToOffset(%d) = %d, want %d", line, got, in.Offset)
		}
	}
}

func TestDisassembleRejectsUnknownOpcode(t *testing.T) {
	if _, err := Disassemble([]byte{0xFF}); err == nil {
		t.Fatalf("expected ErrUnknownOpcode for 0xFF")
	}
}

func TestDisassembleRejectsTruncatedOperand(t *testing.T) {
	code := []byte{byte(opcode.PUSHDATA1), 10, 1, 2} // claims 10 bytes, has 2
	if _, err := Disassemble(code); err == nil {
		t.Fatalf("expected ErrTruncatedOperand")
	}
}

func TestDisassemblerMemoizesByContent(t *testing.T) {
	d := NewDisassembler(4)
	code := []byte{byte(opcode.PUSH1), byte(opcode.RET)}

	first, err := d.Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	second, err := d.Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached *Listing pointer to be returned on a repeat call")
	}
}
