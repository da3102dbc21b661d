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

// Package chain implements the simulated blockchain the debugger deploys
// contracts against and resolves syscalls through: blocks,
// transactions, named addresses with per-address storage, and persistence
// to a .chain artifact.
package chain

import "github.com/probechain/neodbg/common"

// Output is one transaction output: amount of assetID sent to a script hash.
type Output struct {
	AssetID      string            `json:"assetId"`
	Amount       int64             `json:"amount"`
	ToScriptHash common.ScriptHash `json:"toScriptHash"`
}

// Transaction is the script container the VM considers "the signed message"
// for witness and hash queries.
type Transaction struct {
	Inputs  []string `json:"inputs"`
	Outputs []Output `json:"outputs"`
}

// Block is one simulated block. Blocks are indexed by Index, and indices
// must form a contiguous sequence starting at 0.
type Block struct {
	Index        uint32        `json:"index"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
}

// kv is one storage key/value pair, as persisted in the .chain document.
type kv struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}
