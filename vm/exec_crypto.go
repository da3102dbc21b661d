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
	"github.com/probechain/neodbg/crypto"
	"github.com/probechain/neodbg/opcode"
	"github.com/probechain/neodbg/stackitem"
)

func (e *Engine) execHash(op opcode.Opcode) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	b := v.Bytes()
	var out []byte
	switch op {
	case opcode.SHA1:
		out = crypto.SHA1(b)
	case opcode.SHA256:
		out = crypto.SHA256(b)
	case opcode.HASH160:
		out = crypto.Hash160(b)
	case opcode.HASH256:
		out = crypto.Hash256(b)
	}
	e.push(stackitem.NewByteArray(out))
	return nil
}

// execCheckSig pops (pubkey, signature) and pushes whether signature
// verifies against the current script container's signed message (here:
// the outermost loaded script, standing in for the transaction digest,
// since the debugger never has a real network message to hash against).
func (e *Engine) execCheckSig() error {
	pubkey, err := e.pop()
	if err != nil {
		return err
	}
	sig, err := e.pop()
	if err != nil {
		return err
	}
	msg := e.signedMessage()
	ok, err := crypto.VerifySignature(pubkey.Bytes(), sig.Bytes(), msg)
	if err != nil {
		e.push(stackitem.NewBoolean(false))
		return nil
	}
	e.push(stackitem.NewBoolean(ok))
	return nil
}

// execCheckMultiSig pops a pubkey array then a signature array (NEO's
// m-of-n convention, simplified to "every signature must match some
// pubkey, no pubkey reused") and pushes whether the set verifies.
func (e *Engine) execCheckMultiSig() error {
	pubkeys, err := e.pop()
	if err != nil {
		return err
	}
	sigs, err := e.pop()
	if err != nil {
		return err
	}
	msg := e.signedMessage()
	used := make(map[int]bool)
	for _, sig := range sigs.Array() {
		matched := false
		for i, pk := range pubkeys.Array() {
			if used[i] {
				continue
			}
			if ok, err := crypto.VerifySignature(pk.Bytes(), sig.Bytes(), msg); err == nil && ok {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			e.push(stackitem.NewBoolean(false))
			return nil
		}
	}
	e.push(stackitem.NewBoolean(true))
	return nil
}

// signedMessage returns the bytes CHECKSIG/CHECKMULTISIG verify against:
// the bottom-most (outermost) loaded script, standing in for a real
// transaction digest in this debugger-only emulation.
func (e *Engine) signedMessage() []byte {
	if len(e.invocation) == 0 {
		return nil
	}
	return e.invocation[0].Script
}
