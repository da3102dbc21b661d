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
	"math"
	"strings"

	"github.com/probechain/neodbg/opcode"
)

// storagePutSuffix is the syscall-name suffix that triggers the gas
// multiplier of one per started 1024 bytes stored (minimum 1).
const storagePutSuffix = "Storage.Put"

// gasCost computes the gas delta for one already-executed instruction,
// following the emulator's approximation table exactly (the core makes no
// claim to bit-exact parity with the production network).
func (em *Emulator) gasCost(op opcode.Opcode, sysCallName string, baseSysCallCost float64, storedBytes int) (cost float64, profileOpcode opcode.Opcode) {
	switch {
	case op.IsLiteralPush():
		return 0, op
	case op == opcode.CHECKSIG, op == opcode.CHECKMULTISIG:
		return 0.1, op
	case op == opcode.APPCALL, op == opcode.TAILCALL, op == opcode.SHA256, op == opcode.SHA1:
		return 0.01, op
	case op == opcode.HASH256, op == opcode.HASH160:
		return 0.02, op
	case op == opcode.NOP:
		return 0, op
	case op == opcode.SYSCALL:
		if strings.HasSuffix(sysCallName, storagePutSuffix) {
			mult := math.Ceil(float64(storedBytes) / 1024)
			if mult < 1 {
				mult = 1
			}
			return baseSysCallCost * mult, opcode.Storage
		}
		return baseSysCallCost, op
	default:
		return 0.001, op
	}
}
