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
	"errors"
	"fmt"
	"math/big"

	"github.com/probechain/neodbg/opcode"
	"github.com/probechain/neodbg/stackitem"
)

// ArgKind tags the variant held by an Arg, modeling the untyped argument
// tree invocation parameters arrive as.
type ArgKind int

const (
	ArgNull ArgKind = iota
	ArgBool
	ArgInt
	ArgBytes
	ArgString
	ArgList
)

// Arg is one invocation argument, in the sum-type shape names:
// {Null, Bool, Int, Bytes, String, List(Vec<Self>)}.
type Arg struct {
	Kind  ArgKind
	Bool  bool
	Int   *big.Int
	Bytes []byte
	Str   string
	List  []Arg
}

func NullArg() Arg           { return Arg{Kind: ArgNull} }
func BoolArg(v bool) Arg     { return Arg{Kind: ArgBool, Bool: v} }
func IntArg(v int64) Arg     { return Arg{Kind: ArgInt, Int: big.NewInt(v)} }
func BigIntArg(v *big.Int) Arg { return Arg{Kind: ArgInt, Int: v} }
func BytesArg(v []byte) Arg  { return Arg{Kind: ArgBytes, Bytes: v} }
func StringArg(v string) Arg { return Arg{Kind: ArgString, Str: v} }
func ListArg(v []Arg) Arg    { return Arg{Kind: ArgList, List: v} }

// ErrArgMarshal is returned when marshalArg cannot encode an argument tree.
var ErrArgMarshal = errors.New("emulator: cannot marshal argument")

// buildLoaderScript encodes args as a bytecode fragment that, when run as
// its own invocation context, pushes them onto the evaluation stack so the
// contract script underneath finds them in natural order: args are emitted
// in reverse.
func buildLoaderScript(args []Arg) ([]byte, error) {
	var buf []byte
	for i := len(args) - 1; i >= 0; i-- {
		frag, err := marshalArg(args[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, frag...)
	}
	return buf, nil
}

func marshalArg(a Arg) ([]byte, error) {
	switch a.Kind {
	case ArgNull:
		return []byte{byte(opcode.PUSH0)}, nil
	case ArgBool:
		if a.Bool {
			return []byte{byte(opcode.PUSHT)}, nil
		}
		return []byte{byte(opcode.PUSH0)}, nil
	case ArgInt:
		return marshalInt(a.Int), nil
	case ArgString:
		return marshalPushData([]byte(a.Str)), nil
	case ArgBytes:
		// PUSH each byte as a single-byte integer (last byte first, since
		// PACK puts the top of the stack at index 0), then PUSH the
		// length, then PACK into a NEO array.
		var buf []byte
		for i := len(a.Bytes) - 1; i >= 0; i-- {
			buf = append(buf, marshalInt(big.NewInt(int64(a.Bytes[i])))...)
		}
		buf = append(buf, marshalInt(big.NewInt(int64(len(a.Bytes))))...)
		buf = append(buf, byte(opcode.PACK))
		return buf, nil
	case ArgList:
		var buf []byte
		for i := len(a.List) - 1; i >= 0; i-- {
			frag, err := marshalArg(a.List[i])
			if err != nil {
				return nil, err
			}
			buf = append(buf, frag...)
		}
		buf = append(buf, marshalInt(big.NewInt(int64(len(a.List))))...)
		buf = append(buf, byte(opcode.PACK))
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: unknown arg kind %d", ErrArgMarshal, a.Kind)
	}
}

// marshalInt encodes v using the PUSHM1/PUSH1..16 shortcut when it fits,
// falling back to a PUSHDATA-encoded two's-complement byte string.
func marshalInt(v *big.Int) []byte {
	if v.Cmp(big.NewInt(-1)) == 0 {
		return []byte{byte(opcode.PUSHM1)}
	}
	if v.Sign() >= 0 && v.Cmp(big.NewInt(16)) <= 0 {
		n := v.Int64()
		if n == 0 {
			return []byte{byte(opcode.PUSH0)}
		}
		return []byte{byte(opcode.PUSH1) + byte(n-1)}
	}
	return marshalPushData(stackitem.IntegerBytes(v))
}

// marshalPushData emits the shortest PUSHBYTES/PUSHDATA encoding for b.
func marshalPushData(b []byte) []byte {
	n := len(b)
	switch {
	case n == 0:
		return []byte{byte(opcode.PUSH0)}
	case n <= 75:
		return append([]byte{byte(n)}, b...)
	case n <= 0xFF:
		return append([]byte{byte(opcode.PUSHDATA1), byte(n)}, b...)
	case n <= 0xFFFF:
		out := []byte{byte(opcode.PUSHDATA2), byte(n), byte(n >> 8)}
		return append(out, b...)
	default:
		out := []byte{byte(opcode.PUSHDATA4), byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
		return append(out, b...)
	}
}
