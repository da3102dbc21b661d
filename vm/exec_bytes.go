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
	"github.com/probechain/neodbg/opcode"
	"github.com/probechain/neodbg/stackitem"
)

func (e *Engine) execByteOp(op opcode.Opcode) error {
	switch op {
	case opcode.SIZE:
		v, err := e.pop()
		if err != nil {
			return err
		}
		e.push(stackitem.NewIntegerInt64(int64(v.Len())))
		return nil
	case opcode.CAT:
		b, err := e.pop()
		if err != nil {
			return err
		}
		a, err := e.pop()
		if err != nil {
			return err
		}
		e.push(stackitem.NewByteArray(append(append([]byte(nil), a.Bytes()...), b.Bytes()...)))
		return nil
	case opcode.LEFT:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		v, err := e.pop()
		if err != nil {
			return err
		}
		b := v.Bytes()
		if int(n) > len(b) || n < 0 {
			return ErrScriptBounds
		}
		e.push(stackitem.NewByteArray(b[:n]))
		return nil
	case opcode.RIGHT:
		n, err := e.popInt()
		if err != nil {
			return err
		}
		v, err := e.pop()
		if err != nil {
			return err
		}
		b := v.Bytes()
		if int(n) > len(b) || n < 0 {
			return ErrScriptBounds
		}
		e.push(stackitem.NewByteArray(b[len(b)-int(n):]))
		return nil
	case opcode.SUBSTR:
		length, err := e.popInt()
		if err != nil {
			return err
		}
		start, err := e.popInt()
		if err != nil {
			return err
		}
		v, err := e.pop()
		if err != nil {
			return err
		}
		b := v.Bytes()
		if start < 0 || length < 0 || int(start+length) > len(b) {
			return ErrScriptBounds
		}
		e.push(stackitem.NewByteArray(b[start : start+length]))
		return nil
	}
	return nil
}
