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

package stackitem

import (
	"math/big"
	"testing"
)

func TestIntegerBytesRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, -128, 128, -129, 255, 256, 1 << 20, -(1 << 20)}
	for _, n := range cases {
		v := big.NewInt(n)
		b := IntegerBytes(v)
		got := bytesToBigInt(b)
		if got.Cmp(v) != 0 {
			t.Fatalf("IntegerBytes(%d) round trip = %d", n, got)
		}
	}
}

func TestIntegerBytesZeroIsEmpty(t *testing.T) {
	if b := IntegerBytes(big.NewInt(0)); len(b) != 0 {
		t.Fatalf("IntegerBytes(0) = %x, want empty", b)
	}
}

func TestBoolCoercion(t *testing.T) {
	if !NewIntegerInt64(1).Bool() {
		t.Fatalf("Integer(1).Bool() = false, want true")
	}
	if NewIntegerInt64(0).Bool() {
		t.Fatalf("Integer(0).Bool() = true, want false")
	}
	if NewByteArray([]byte{0, 0}).Bool() {
		t.Fatalf("ByteArray{0,0}.Bool() = true, want false")
	}
	if !NewByteArray([]byte{0, 1}).Bool() {
		t.Fatalf("ByteArray{0,1}.Bool() = false, want true")
	}
}

func TestStructCloneIsDeep(t *testing.T) {
	inner := NewStruct([]*Item{NewIntegerInt64(1)})
	outer := NewStruct([]*Item{inner})
	clone := outer.Clone()

	clone.Array()[0].Array()[0] = NewIntegerInt64(99)
	if outer.Array()[0].Array()[0].BigInt().Int64() != 1 {
		t.Fatalf("mutating clone affected the original struct")
	}
}

func TestMapInsertionOrderAndLookup(t *testing.T) {
	m := NewMap()
	m.MapSet(NewByteArray([]byte("b")), NewIntegerInt64(2))
	m.MapSet(NewByteArray([]byte("a")), NewIntegerInt64(1))
	m.MapSet(NewByteArray([]byte("b")), NewIntegerInt64(22)) // overwrite, keeps position

	keys := m.MapKeys()
	if len(keys) != 2 || string(keys[0].Bytes()) != "b" || string(keys[1].Bytes()) != "a" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	v, ok := m.MapGet(NewByteArray([]byte("b")))
	if !ok || v.BigInt().Int64() != 22 {
		t.Fatalf("MapGet after overwrite = %v, %v", v, ok)
	}
}
