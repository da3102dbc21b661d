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

package chain

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/probechain/neodbg/common"
)

// ErrDuplicateAddress is returned by DeployContract/CreateAccount when the
// name is already in use.
var ErrDuplicateAddress = errors.New("chain: address name already in use")

// ErrAddressNotFound is returned by FindAddressByName and
// FindAddressByScriptHash when no address matches.
var ErrAddressNotFound = errors.New("chain: address not found")

// Blockchain is the simulated chain the debugger session deploys contracts
// against. It holds blocks (for Blockchain.GetHeader-style syscalls) and a
// registry of named addresses.
type Blockchain struct {
	blocks    []Block
	addresses []*Address
	byName    map[string]*Address
}

// New creates an empty Blockchain with a single genesis block.
func New() *Blockchain {
	return &Blockchain{
		blocks: []Block{{Index: 0, Timestamp: 0}},
		byName: make(map[string]*Address),
	}
}

// CreateAccount creates a plain (non-contract) address from a deterministic
// BIP-39 mnemonic, for use as test fixture senders/recipients. seed selects
// the entropy; callers pass a fixed value for reproducible genesis fixtures.
func (bc *Blockchain) CreateAccount(name string, seed []byte) (*Address, error) {
	if _, exists := bc.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, name)
	}
	entropy := make([]byte, 16)
	copy(entropy, seed)
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("chain: generate mnemonic for %s: %w", name, err)
	}
	seedKey := bip39.NewSeed(mnemonic, "")
	pub := seedKey[:33]
	scriptHash := common.BytesToScriptHash(pub[:20])
	addr, err := newAddress(name, scriptHash, &KeyPair{Private: seedKey, Public: pub}, nil)
	if err != nil {
		return nil, err
	}
	bc.addresses = append(bc.addresses, addr)
	bc.byName[name] = addr
	return addr, nil
}

// DeployContract registers byteCode under name, deriving its script hash the
// way the engine derives a loaded script's CurrentScriptHash.
func (bc *Blockchain) DeployContract(name string, byteCode []byte) (*Address, error) {
	if _, exists := bc.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, name)
	}
	addr, err := newAddress(name, deriveScriptHash(byteCode), nil, byteCode)
	if err != nil {
		return nil, err
	}
	bc.addresses = append(bc.addresses, addr)
	bc.byName[name] = addr
	return addr, nil
}

// FindAddressByName returns the address registered under name.
func (bc *Blockchain) FindAddressByName(name string) (*Address, error) {
	addr, ok := bc.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAddressNotFound, name)
	}
	return addr, nil
}

// FindAddressByScriptHash performs a linear scan for the address whose
// derived script hash matches h.
func (bc *Blockchain) FindAddressByScriptHash(h common.ScriptHash) (*Address, error) {
	for _, addr := range bc.addresses {
		if addr.ScriptHash == h {
			return addr, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAddressNotFound, h)
}

// Addresses returns every registered address, in registration order.
func (bc *Blockchain) Addresses() []*Address {
	return append([]*Address(nil), bc.addresses...)
}

// Height returns the index of the most recently appended block.
func (bc *Blockchain) Height() uint32 {
	return bc.blocks[len(bc.blocks)-1].Index
}

// CurrentBlock returns the most recently appended block.
func (bc *Blockchain) CurrentBlock() Block {
	return bc.blocks[len(bc.blocks)-1]
}

// AppendBlock adds a new block containing txs on top of the chain.
func (bc *Blockchain) AppendBlock(timestamp int64, txs []Transaction) Block {
	b := Block{Index: bc.Height() + 1, Timestamp: timestamp, Transactions: txs}
	bc.blocks = append(bc.blocks, b)
	return b
}

// Close releases every address's storage handle.
func (bc *Blockchain) Close() error {
	var first error
	for _, addr := range bc.addresses {
		if err := addr.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
