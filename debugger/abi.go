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

package debugger

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParamType enumerates the ABI parameter/return types a compiled contract
// may declare.
type ParamType string

const (
	TypeVoid             ParamType = "Void"
	TypeBoolean          ParamType = "Boolean"
	TypeInteger          ParamType = "Integer"
	TypeByteArray        ParamType = "ByteArray"
	TypeString           ParamType = "String"
	TypeArray            ParamType = "Array"
	TypePublicKey        ParamType = "PublicKey"
	TypeSignature        ParamType = "Signature"
	TypeHash160          ParamType = "Hash160"
	TypeHash256           ParamType = "Hash256"
	TypeInteropInterface ParamType = "InteropInterface"
)

// Parameter is one declared function parameter.
type Parameter struct {
	Name string    `json:"name"`
	Type ParamType `json:"type"`
}

// Function is one declared ABI entrypoint.
type Function struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	ReturnType ParamType   `json:"returntype"`
}

// ABI is the parsed contents of a .abi.json artifact.
type ABI struct {
	EntryPoint string     `json:"entrypoint"`
	Functions  []Function `json:"functions"`
}

// LoadABI parses a .abi.json document from r.
func LoadABI(r io.Reader) (*ABI, error) {
	var a ABI
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("debugger: decode abi: %w", err)
	}
	return &a, nil
}

// FunctionByName returns the declared function named name, or nil.
func (a *ABI) FunctionByName(name string) *Function {
	for i := range a.Functions {
		if a.Functions[i].Name == name {
			return &a.Functions[i]
		}
	}
	return nil
}
