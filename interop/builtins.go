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

package interop

// RegisterBuiltins registers the syscalls the emulator's gas table and test scenarios name explicitly: Storage.Get/Put/Delete,
// Runtime.CheckWitness, Runtime.Notify, Runtime.Log, Blockchain.GetHeader. Callers may
// register additional/overriding handlers afterward.
func RegisterBuiltins(r *Registry) {
	r.Register("Neo.Storage.Get", 0.1, func(ctx Context, args []any) (any, error) {
		key, _ := args[0].([]byte)
		v, ok := ctx.StorageGet(key)
		if !ok {
			v = []byte{}
		}
		return v, nil
	})

	r.Register("Neo.Storage.Put", 1.0, func(ctx Context, args []any) (any, error) {
		key, _ := args[0].([]byte)
		value, _ := args[1].([]byte)
		ctx.StoragePut(key, value)
		return nil, nil
	})

	r.Register("Neo.Storage.Delete", 1.0, func(ctx Context, args []any) (any, error) {
		key, _ := args[0].([]byte)
		ctx.StorageDelete(key)
		return nil, nil
	})

	r.Register("Neo.Runtime.CheckWitness", 0.2, func(ctx Context, args []any) (any, error) {
		scriptHash, _ := args[0].([]byte)
		return ctx.CheckWitness(scriptHash), nil
	})

	r.Register("Neo.Runtime.Notify", 0.01, func(ctx Context, args []any) (any, error) {
		ctx.Notify("notify", args...)
		return nil, nil
	})

	r.Register("Neo.Runtime.Log", 0.01, func(ctx Context, args []any) (any, error) {
		ctx.Notify("log", args...)
		return nil, nil
	})

	r.Register("Neo.Blockchain.GetHeader", 0.2, func(ctx Context, args []any) (any, error) {
		// Only records a "Blockchain.GetHeader" notification and pushes
		// no result; the registry stays chain agnostic so tests can
		// register a stub Context.
		ctx.Notify("Blockchain.GetHeader")
		return nil, nil
	})
}
