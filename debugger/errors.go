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

// Package debugger implements the DebugManager façade: it loads compiled
// artifacts, translates UI-level requests (add a breakpoint at source line
// N) into engine operations, and exposes the observable debugger state.
package debugger

import (
	"errors"
	"fmt"
)

// ErrLegacyNeomap is returned by LoadAvmFile when a sibling .neomap file is
// present: the artifact was compiled by a toolchain old enough that it must
// be recompiled before this debugger can load it.
var ErrLegacyNeomap = errors.New("debugger: legacy .neomap artifact requires recompilation")

// LoadError wraps a failure reading or parsing one of the session's load
// artifacts (.avm, .abi.json, .debug.json, .chain).
type LoadError struct {
	Artifact string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("debugger: load %s: %v", e.Artifact, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DisassembleError wraps a disasm failure (malformed bytecode) encountered
// while loading an artifact.
type DisassembleError struct {
	Err error
}

func (e *DisassembleError) Error() string { return fmt.Sprintf("debugger: disassemble: %v", e.Err) }

func (e *DisassembleError) Unwrap() error { return e.Err }
