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

// Package common holds the small shared types and sentinel errors used
// across the debugger core's packages.
package common

import "errors"

var (
	// ErrIndexOutOfBounds is returned if an index falls outside a bounded
	// collection (evaluation stack, register file, script bytes).
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrNotFound is returned by lookups (address by name, debug map entry)
	// that find nothing.
	ErrNotFound = errors.New("not found")
)

// ScriptHashLength is the length in bytes of a contract/account script hash.
const ScriptHashLength = 20

// ScriptHash is the 20-byte RIPEMD160(SHA256(script)) identifier of a
// deployed contract or simulated account.
type ScriptHash [ScriptHashLength]byte

// BytesToScriptHash left-pads or truncates b into a ScriptHash.
func BytesToScriptHash(b []byte) ScriptHash {
	var h ScriptHash
	if len(b) > ScriptHashLength {
		b = b[len(b)-ScriptHashLength:]
	}
	copy(h[ScriptHashLength-len(b):], b)
	return h
}

// Bytes returns the byte slice representation of the script hash.
func (h ScriptHash) Bytes() []byte { return h[:] }

// String renders the script hash as a 0x-prefixed hex string.
func (h ScriptHash) String() string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 2+2*ScriptHashLength)
	out[0], out[1] = '0', 'x'
	for i, b := range h {
		out[2+i*2] = hextable[b>>4]
		out[2+i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
