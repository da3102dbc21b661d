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
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/probechain/neodbg/common"
	"github.com/probechain/neodbg/crypto"
)

// KeyPair is a minimal holder for a deployer's public/private key material,
// used only to derive witness-checkable script hashes in test fixtures.
type KeyPair struct {
	Private []byte `json:"private,omitempty"`
	Public  []byte `json:"public,omitempty"`
}

// Address is one named account or deployed contract on the simulated chain
//. Contract addresses carry bytecode and persistent storage;
// plain accounts carry neither.
type Address struct {
	Name       string            `json:"name"`
	ScriptHash common.ScriptHash `json:"scriptHash"`
	KeyPair    *KeyPair          `json:"keyPair,omitempty"`
	ByteCode   []byte            `json:"byteCode,omitempty"`

	// store backs per-address persistent storage. It is an in-memory
	// goleveldb instance: the .chain file remains the only durable copy of
	// storage contents, loaded into store on Blockchain.Load and flattened
	// back out on Blockchain.Save (see persist.go).
	store *leveldb.DB
}

// newAddress opens a fresh in-memory LevelDB instance for addr's storage.
func newAddress(name string, scriptHash common.ScriptHash, keyPair *KeyPair, byteCode []byte) (*Address, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("chain: open storage for %s: %w", name, err)
	}
	return &Address{Name: name, ScriptHash: scriptHash, KeyPair: keyPair, ByteCode: byteCode, store: db}, nil
}

// IsContract reports whether addr has deployed bytecode.
func (a *Address) IsContract() bool { return len(a.ByteCode) > 0 }

// StorageGet returns the value stored under key, if any.
func (a *Address) StorageGet(key []byte) ([]byte, bool) {
	v, err := a.store.Get(key, nil)
	if err != nil {
		return nil, false
	}
	return v, true
}

// StoragePut writes key/value into the address's persistent storage,
// overwriting any existing value.
func (a *Address) StoragePut(key, value []byte) error {
	return a.store.Put(key, value, nil)
}

// StorageDelete removes key from the address's persistent storage. Deleting
// an absent key is not an error.
func (a *Address) StorageDelete(key []byte) error {
	return a.store.Delete(key, nil)
}

// storageSnapshot returns every key/value pair in the address's storage, in
// key order, for serialization into the .chain document.
func (a *Address) storageSnapshot() []kv {
	var out []kv
	iter := a.store.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		out = append(out, kv{Key: append([]byte(nil), iter.Key()...), Value: append([]byte(nil), iter.Value()...)})
	}
	return out
}

// restoreStorage replays pairs into the address's storage. Used while
// loading a .chain document.
func (a *Address) restoreStorage(pairs []kv) error {
	for _, p := range pairs {
		if err := a.store.Put(p.Key, p.Value, nil); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the address's storage handle. Blockchain.Close calls this
// for every address it owns.
func (a *Address) Close() error { return a.store.Close() }

// deriveScriptHash computes the deployment script hash for contract bytecode
// the same way the execution engine derives the CurrentScriptHash of a
// loaded script: RIPEMD160(SHA256(bytecode)).
func deriveScriptHash(byteCode []byte) common.ScriptHash {
	return common.BytesToScriptHash(crypto.Hash160(byteCode))
}
