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

// Package stackitem implements the tagged-variant value type that lives on
// the NEO VM's evaluation stack: ByteArray, Integer (unbounded), Boolean,
// Array, Struct, Map and InteropInterface, plus the coercion rules between
// them.
package stackitem

import (
	"math/big"
)

// Type identifies which variant an Item holds.
type Type int

const (
	TypeByteArray Type = iota
	TypeInteger
	TypeBoolean
	TypeArray
	TypeStruct
	TypeMap
	TypeInteropInterface
)

func (t Type) String() string {
	switch t {
	case TypeByteArray:
		return "ByteArray"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	case TypeArray:
		return "Array"
	case TypeStruct:
		return "Struct"
	case TypeMap:
		return "Map"
	case TypeInteropInterface:
		return "InteropInterface"
	default:
		return "Unknown"
	}
}

// Item is a single value on the evaluation or alt stack.
type Item struct {
	typ     Type
	bytes   []byte         // ByteArray
	integer *big.Int       // Integer
	boolean bool           // Boolean
	array   []*Item        // Array / Struct (Struct copies on assignment)
	pairs   []mapPair      // Map, insertion-ordered
	iface   any            // InteropInterface
}

type mapPair struct {
	key *Item
	val *Item
}

// NewByteArray wraps a byte slice. The slice is not copied; callers must not
// mutate it afterward.
func NewByteArray(b []byte) *Item { return &Item{typ: TypeByteArray, bytes: b} }

// NewInteger wraps an arbitrary-precision integer.
func NewInteger(v *big.Int) *Item { return &Item{typ: TypeInteger, integer: new(big.Int).Set(v)} }

// NewIntegerInt64 is a convenience constructor for small integer literals.
func NewIntegerInt64(v int64) *Item { return NewInteger(big.NewInt(v)) }

// NewBoolean wraps a boolean.
func NewBoolean(v bool) *Item { return &Item{typ: TypeBoolean, boolean: v} }

// NewArray wraps an ordered sequence of items (reference semantics: SETITEM
// on the returned Item mutates the backing slice in place).
func NewArray(items []*Item) *Item { return &Item{typ: TypeArray, array: items} }

// NewStruct wraps an ordered sequence of items with value-copy semantics on
// assignment; use Clone to obtain the copy.
func NewStruct(items []*Item) *Item { return &Item{typ: TypeStruct, array: items} }

// NewMap creates an empty insertion-ordered map.
func NewMap() *Item { return &Item{typ: TypeMap} }

// NewInteropInterface wraps an opaque host value (e.g. *chain.Address).
func NewInteropInterface(v any) *Item { return &Item{typ: TypeInteropInterface, iface: v} }

// Type reports the concrete variant.
func (it *Item) Type() Type { return it.typ }

// Clone performs a value copy, recursing into Struct (and only Struct)
// elements, matching NEO's DUP/assignment semantics for structs.
func (it *Item) Clone() *Item {
	switch it.typ {
	case TypeStruct:
		cp := make([]*Item, len(it.array))
		for i, e := range it.array {
			cp[i] = e.Clone()
		}
		return &Item{typ: TypeStruct, array: cp}
	default:
		c := *it
		return &c
	}
}

// Bytes coerces the item to a byte array: ByteArray returns its bytes
// as-is; Integer returns the minimal signed little-endian two's-complement
// encoding; Boolean returns {1} or {} (empty, i.e. "falsy").
func (it *Item) Bytes() []byte {
	switch it.typ {
	case TypeByteArray:
		return it.bytes
	case TypeInteger:
		return bigIntToBytes(it.integer)
	case TypeBoolean:
		if it.boolean {
			return []byte{1}
		}
		return []byte{}
	default:
		panic("stackitem: " + it.typ.String() + " cannot be coerced to ByteArray")
	}
}

// BigInt coerces the item to an arbitrary-precision integer: ByteArray is
// parsed as little-endian two's-complement; Boolean is 0 or 1.
func (it *Item) BigInt() *big.Int {
	switch it.typ {
	case TypeInteger:
		return new(big.Int).Set(it.integer)
	case TypeByteArray:
		return bytesToBigInt(it.bytes)
	case TypeBoolean:
		if it.boolean {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	default:
		panic("stackitem: " + it.typ.String() + " cannot be coerced to Integer")
	}
}

// Bool coerces the item to a boolean: ByteArray is true iff any byte is
// nonzero; Integer is true iff nonzero; Array/Struct/Map are always true.
func (it *Item) Bool() bool {
	switch it.typ {
	case TypeBoolean:
		return it.boolean
	case TypeInteger:
		return it.integer.Sign() != 0
	case TypeByteArray:
		for _, b := range it.bytes {
			if b != 0 {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Array returns the backing element slice of an Array or Struct item.
func (it *Item) Array() []*Item {
	if it.typ != TypeArray && it.typ != TypeStruct {
		panic("stackitem: " + it.typ.String() + " is not Array/Struct")
	}
	return it.array
}

// Append adds v to the end of an Array/Struct item.
func (it *Item) Append(v *Item) { it.array = append(it.array, v) }

// Remove deletes the element at index i from an Array/Struct item.
func (it *Item) Remove(i int) {
	it.array = append(it.array[:i], it.array[i+1:]...)
}

// Iface returns the wrapped value of an InteropInterface item.
func (it *Item) Iface() any { return it.iface }

// MapSet inserts or updates the value for key (compared by coerced byte
// representation), preserving insertion order for new keys.
func (it *Item) MapSet(key, val *Item) {
	kb := string(key.Bytes())
	for i, p := range it.pairs {
		if string(p.key.Bytes()) == kb {
			it.pairs[i].val = val
			return
		}
	}
	it.pairs = append(it.pairs, mapPair{key: key, val: val})
}

// MapGet looks up key in a Map item.
func (it *Item) MapGet(key *Item) (*Item, bool) {
	kb := string(key.Bytes())
	for _, p := range it.pairs {
		if string(p.key.Bytes()) == kb {
			return p.val, true
		}
	}
	return nil, false
}

// MapKeys returns the map's keys in insertion order.
func (it *Item) MapKeys() []*Item {
	out := make([]*Item, len(it.pairs))
	for i, p := range it.pairs {
		out[i] = p.key
	}
	return out
}

// MapValues returns the map's values in insertion order.
func (it *Item) MapValues() []*Item {
	out := make([]*Item, len(it.pairs))
	for i, p := range it.pairs {
		out[i] = p.val
	}
	return out
}

// MapHasKey reports whether key is present in a Map item.
func (it *Item) MapHasKey(key *Item) bool {
	_, ok := it.MapGet(key)
	return ok
}

// Len reports the element count of Array/Struct/Map/ByteArray items.
func (it *Item) Len() int {
	switch it.typ {
	case TypeArray, TypeStruct:
		return len(it.array)
	case TypeMap:
		return len(it.pairs)
	case TypeByteArray:
		return len(it.bytes)
	default:
		panic("stackitem: " + it.typ.String() + " has no length")
	}
}

// IntegerBytes returns the minimal signed little-endian two's-complement
// encoding of v, the same rule NEO uses for PUSHDATA-encoded integer
// arguments.
func IntegerBytes(v *big.Int) []byte { return bigIntToBytes(v) }

// bigIntToBytes returns the minimal signed little-endian two's-complement
// encoding of v (empty slice for zero).
func bigIntToBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{}
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	b := abs.Bytes() // big-endian
	// reverse to little-endian
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	if neg {
		b = twosComplementNegate(b)
	}
	// Ensure the sign bit of the last byte matches the value's sign, adding
	// a padding byte if the magnitude's MSB would otherwise be ambiguous.
	last := b[len(b)-1]
	if !neg && last&0x80 != 0 {
		b = append(b, 0x00)
	}
	if neg && last&0x80 == 0 {
		b = append(b, 0xFF)
	}
	return b
}

// twosComplementNegate computes the two's-complement negation of the
// little-endian magnitude b.
func twosComplementNegate(b []byte) []byte {
	out := make([]byte, len(b))
	carry := 1
	for i, v := range b {
		inv := ^v
		sum := int(inv) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

// bytesToBigInt parses a little-endian two's-complement byte slice.
func bytesToBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	neg := be[0]&0x80 != 0
	if !neg {
		return new(big.Int).SetBytes(be)
	}
	// two's complement: negate then interpret as magnitude.
	ltNeg := make([]byte, len(b))
	copy(ltNeg, b)
	mag := twosComplementNegate(ltNeg)
	beMag := make([]byte, len(mag))
	for i, v := range mag {
		beMag[len(mag)-1-i] = v
	}
	return new(big.Int).Neg(new(big.Int).SetBytes(beMag))
}
