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

package interop

import (
	"strings"
	"testing"
)

type stubContext struct {
	storage map[string][]byte
	notices []string
}

func newStubContext() *stubContext { return &stubContext{storage: make(map[string][]byte)} }

func (s *stubContext) CurrentScriptHash() [20]byte { return [20]byte{} }
func (s *stubContext) StorageGet(key []byte) ([]byte, bool) {
	v, ok := s.storage[string(key)]
	return v, ok
}
func (s *stubContext) StoragePut(key, value []byte) { s.storage[string(key)] = value }
func (s *stubContext) StorageDelete(key []byte)     { delete(s.storage, string(key)) }
func (s *stubContext) CheckWitness(_ []byte) bool   { return false }
func (s *stubContext) Notify(event string, _ ...any) { s.notices = append(s.notices, event) }
func (s *stubContext) LastStorageBytes() int         { return 0 }

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	called := false
	if err := r.Register("Test.Echo", 0.05, func(ctx Context, args []any) (any, error) {
		called = true
		return nil, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	handler, cost, err := r.Resolve("Test.Echo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cost != 0.05 {
		t.Fatalf("cost = %v, want 0.05", cost)
	}
	if _, err := handler(newStubContext(), nil); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatalf("handler was not invoked")
	}
}

func TestResolveUnknownNameFails(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.Resolve("Does.Not.Exist"); err == nil {
		t.Fatalf("expected ErrUnknownSyscall")
	}
}

func TestRegisterNameTooLong(t *testing.T) {
	r := NewRegistry()
	name := strings.Repeat("a", MaxNameLength+1)
	if err := r.Register(name, 0, nil); err == nil {
		t.Fatalf("expected ErrNameTooLong")
	}
}

func TestNamesPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("B", 0, nil)
	r.Register("A", 0, nil)
	r.Register("B", 0, nil) // re-register, must not move position

	names := r.Names()
	if len(names) != 2 || names[0] != "B" || names[1] != "A" {
		t.Fatalf("Names() = %v, want [B A]", names)
	}
}

func TestRegisterBuiltinsStoragePutRoundTrip(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	handler, cost, err := r.Resolve("Neo.Storage.Put")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cost != 1.0 {
		t.Fatalf("base cost = %v, want 1.0", cost)
	}

	ctx := newStubContext()
	if _, err := handler(ctx, []any{[]byte("key"), []byte("value")}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	v, ok := ctx.StorageGet([]byte("key"))
	if !ok || string(v) != "value" {
		t.Fatalf("StorageGet after Storage.Put = %q, %v", v, ok)
	}
}

func TestRegisterBuiltinsCheckWitnessFalseIsAResultNotAnError(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	handler, _, err := r.Resolve("Neo.Runtime.CheckWitness")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ctx := newStubContext() // CheckWitness always returns false
	result, err := handler(ctx, []any{[]byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("handler: %v, want nil (a false/true witness check is a result, not a failure)", err)
	}
	if b, ok := result.(bool); !ok || b {
		t.Fatalf("result = %#v, want bool(false)", result)
	}
}

func TestRegisterBuiltinsStorageGetReturnsStoredValue(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	putHandler, _, _ := r.Resolve("Neo.Storage.Put")
	getHandler, _, _ := r.Resolve("Neo.Storage.Get")
	ctx := newStubContext()
	if _, err := putHandler(ctx, []any{[]byte("key"), []byte("value")}); err != nil {
		t.Fatalf("Storage.Put handler: %v", err)
	}
	result, err := getHandler(ctx, []any{[]byte("key")})
	if err != nil {
		t.Fatalf("Storage.Get handler: %v", err)
	}
	v, ok := result.([]byte)
	if !ok || string(v) != "value" {
		t.Fatalf("Storage.Get result = %#v, want []byte(\"value\")", result)
	}
}
