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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/probechain/neodbg/common"
)

// chainFormatVersion is bumped whenever the .chain document schema changes
// in an incompatible way. Load rejects documents with a newer version than
// this binary understands.
const chainFormatVersion = 1

// ErrUnsupportedVersion is returned by Load when a .chain document declares
// a format version newer than chainFormatVersion.
var ErrUnsupportedVersion = errors.New("chain: unsupported .chain format version")

// addressDoc is the on-disk representation of one Address: the struct
// itself plus its flattened storage contents (storage isn't part of
// Address's JSON tags since the live in-memory DB handle isn't marshalable).
type addressDoc struct {
	Name       string            `json:"name"`
	ScriptHash common.ScriptHash `json:"scriptHash"`
	KeyPair    *KeyPair          `json:"keyPair,omitempty"`
	ByteCode   []byte            `json:"byteCode,omitempty"`
	Storage    []kv              `json:"storage,omitempty"`
}

// document is the full, self-describing .chain artifact:
// versioned so future additions don't silently corrupt older readers.
type document struct {
	Version   int          `json:"version"`
	Blocks    []Block      `json:"blocks"`
	Addresses []addressDoc `json:"addresses"`
}

// Save writes bc as a snappy-compressed JSON document to w.
func (bc *Blockchain) Save(w io.Writer) error {
	doc := document{Version: chainFormatVersion, Blocks: bc.blocks}
	for _, addr := range bc.addresses {
		doc.Addresses = append(doc.Addresses, addressDoc{
			Name:       addr.Name,
			ScriptHash: addr.ScriptHash,
			KeyPair:    addr.KeyPair,
			ByteCode:   addr.ByteCode,
			Storage:    addr.storageSnapshot(),
		})
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("chain: marshal .chain document: %w", err)
	}
	compressed := snappy.Encode(nil, raw)
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("chain: write .chain document: %w", err)
	}
	return nil
}

// Load reads a snappy-compressed .chain document from r and reconstructs a
// Blockchain, re-opening a fresh in-memory storage instance per address and
// replaying its persisted key/value pairs into it.
func Load(r io.Reader) (*Blockchain, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chain: read .chain document: %w", err)
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("chain: decompress .chain document: %w", err)
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("chain: unmarshal .chain document: %w", err)
	}
	if doc.Version > chainFormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	bc := &Blockchain{blocks: doc.Blocks, byName: make(map[string]*Address)}
	if len(bc.blocks) == 0 {
		bc.blocks = []Block{{Index: 0}}
	}
	for _, ad := range doc.Addresses {
		addr, err := newAddress(ad.Name, ad.ScriptHash, ad.KeyPair, ad.ByteCode)
		if err != nil {
			return nil, err
		}
		if err := addr.restoreStorage(ad.Storage); err != nil {
			return nil, fmt.Errorf("chain: restore storage for %s: %w", ad.Name, err)
		}
		bc.addresses = append(bc.addresses, addr)
		bc.byName[ad.Name] = addr
	}
	return bc, nil
}
