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
	"fmt"

	"github.com/probechain/neodbg/stackitem"
)

// syscallArity gives the number of evaluation-stack arguments each built-in
// syscall consumes before its handler runs (interop.RegisterBuiltins).
// Names absent from this table take zero arguments.
var syscallArity = map[string]int{
	"Neo.Storage.Get":          1,
	"Neo.Storage.Put":          2,
	"Neo.Storage.Delete":       1,
	"Neo.Runtime.CheckWitness": 1,
	"Neo.Runtime.Notify":       1,
	"Neo.Runtime.Log":          1,
}

// execSysCall reads the length-prefixed ASCII syscall name from operand,
// resolves it in the registry, pops its arguments off the evaluation stack,
// and invokes the handler.
func (e *Engine) execSysCall(operand []byte) error {
	name := string(operand)
	handler, _, err := e.registry.Resolve(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyscallFailed, err)
	}
	argc := syscallArity[name]
	if argc > len(e.evalStack) {
		return ErrStackUnderflow
	}
	args := make([]any, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := e.pop()
		if err != nil {
			return err
		}
		args[i] = v.Bytes()
	}
	result, err := handler(e.container, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSyscallFailed, name, err)
	}
	switch v := result.(type) {
	case nil:
		// no return value
	case bool:
		e.push(stackitem.NewBoolean(v))
	case []byte:
		e.push(stackitem.NewByteArray(v))
	default:
		return fmt.Errorf("%w: %s: handler returned unsupported result type %T", ErrSyscallFailed, name, result)
	}
	e.lastSysCall = name
	return nil
}
