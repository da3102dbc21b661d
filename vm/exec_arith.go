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
	"bytes"
	"math/big"

	"github.com/probechain/neodbg/opcode"
	"github.com/probechain/neodbg/stackitem"
)

func checkIntegerSize(v *big.Int) error {
	if len(v.Bytes()) > MaxIntegerBytes {
		return ErrIntegerSize
	}
	return nil
}

func (e *Engine) execUnaryArith(op opcode.Opcode) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	n := v.BigInt()
	switch op {
	case opcode.INC:
		e.push(stackitem.NewInteger(new(big.Int).Add(n, big.NewInt(1))))
	case opcode.DEC:
		e.push(stackitem.NewInteger(new(big.Int).Sub(n, big.NewInt(1))))
	case opcode.SIGN:
		e.push(stackitem.NewIntegerInt64(int64(n.Sign())))
	case opcode.NEGATE:
		e.push(stackitem.NewInteger(new(big.Int).Neg(n)))
	case opcode.ABS:
		e.push(stackitem.NewInteger(new(big.Int).Abs(n)))
	case opcode.NOT:
		e.push(stackitem.NewBoolean(!v.Bool()))
	case opcode.NZ:
		e.push(stackitem.NewBoolean(n.Sign() != 0))
	}
	return nil
}

func (e *Engine) execBinaryArith(op opcode.Opcode) error {
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	x, y := a.BigInt(), b.BigInt()

	switch op {
	case opcode.ADD:
		r := new(big.Int).Add(x, y)
		if err := checkIntegerSize(r); err != nil {
			return err
		}
		e.push(stackitem.NewInteger(r))
	case opcode.SUB:
		r := new(big.Int).Sub(x, y)
		if err := checkIntegerSize(r); err != nil {
			return err
		}
		e.push(stackitem.NewInteger(r))
	case opcode.MUL:
		r := new(big.Int).Mul(x, y)
		if err := checkIntegerSize(r); err != nil {
			return err
		}
		e.push(stackitem.NewInteger(r))
	case opcode.DIV:
		if y.Sign() == 0 {
			return ErrDivisionByZero
		}
		e.push(stackitem.NewInteger(new(big.Int).Quo(x, y)))
	case opcode.MOD:
		if y.Sign() == 0 {
			return ErrDivisionByZero
		}
		e.push(stackitem.NewInteger(new(big.Int).Rem(x, y)))
	case opcode.SHL:
		if y.Sign() < 0 || !y.IsUint64() {
			return ErrIntegerSize
		}
		r := new(big.Int).Lsh(x, uint(y.Uint64()))
		if err := checkIntegerSize(r); err != nil {
			return err
		}
		e.push(stackitem.NewInteger(r))
	case opcode.SHR:
		if y.Sign() < 0 || !y.IsUint64() {
			return ErrIntegerSize
		}
		e.push(stackitem.NewInteger(new(big.Int).Rsh(x, uint(y.Uint64()))))
	case opcode.BOOLAND:
		e.push(stackitem.NewBoolean(a.Bool() && b.Bool()))
	case opcode.BOOLOR:
		e.push(stackitem.NewBoolean(a.Bool() || b.Bool()))
	case opcode.NUMEQUAL:
		e.push(stackitem.NewBoolean(x.Cmp(y) == 0))
	case opcode.NUMNOTEQUAL:
		e.push(stackitem.NewBoolean(x.Cmp(y) != 0))
	case opcode.LT:
		e.push(stackitem.NewBoolean(x.Cmp(y) < 0))
	case opcode.GT:
		e.push(stackitem.NewBoolean(x.Cmp(y) > 0))
	case opcode.LTE:
		e.push(stackitem.NewBoolean(x.Cmp(y) <= 0))
	case opcode.GTE:
		e.push(stackitem.NewBoolean(x.Cmp(y) >= 0))
	case opcode.MIN:
		if x.Cmp(y) < 0 {
			e.push(stackitem.NewInteger(x))
		} else {
			e.push(stackitem.NewInteger(y))
		}
	case opcode.MAX:
		if x.Cmp(y) > 0 {
			e.push(stackitem.NewInteger(x))
		} else {
			e.push(stackitem.NewInteger(y))
		}
	}
	return nil
}

func (e *Engine) execWithin() error {
	max, err := e.pop()
	if err != nil {
		return err
	}
	min, err := e.pop()
	if err != nil {
		return err
	}
	x, err := e.pop()
	if err != nil {
		return err
	}
	v, lo, hi := x.BigInt(), min.BigInt(), max.BigInt()
	e.push(stackitem.NewBoolean(v.Cmp(lo) >= 0 && v.Cmp(hi) < 0))
	return nil
}

func (e *Engine) execBitwise(op opcode.Opcode) error {
	if op == opcode.INVERT {
		v, err := e.pop()
		if err != nil {
			return err
		}
		b := v.Bytes()
		out := make([]byte, len(b))
		for i, c := range b {
			out[i] = ^c
		}
		e.push(stackitem.NewByteArray(out))
		return nil
	}
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	switch op {
	case opcode.AND, opcode.OR, opcode.XOR:
		x, y := a.Bytes(), b.Bytes()
		n := len(x)
		if len(y) > n {
			n = len(y)
		}
		xb, yb := padLeft(x, n), padLeft(y, n)
		out := make([]byte, n)
		for i := 0; i < n; i++ {
			switch op {
			case opcode.AND:
				out[i] = xb[i] & yb[i]
			case opcode.OR:
				out[i] = xb[i] | yb[i]
			case opcode.XOR:
				out[i] = xb[i] ^ yb[i]
			}
		}
		e.push(stackitem.NewByteArray(out))
	case opcode.EQUAL:
		e.push(stackitem.NewBoolean(bytes.Equal(a.Bytes(), b.Bytes())))
	}
	return nil
}

// padLeft copies b to the start of a zero-filled slice of length n (the
// bytes are little-endian, so the padding goes at the high end).
func padLeft(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
