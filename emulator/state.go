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

// Package emulator wraps vm.Engine with gas accounting, argument
// marshalling, breakpoints, and the Reset/Step/Run state machine the
// debugger façade drives.
package emulator

// StateKind is the coarse execution state the emulator reports after each
// Step/Run.
type StateKind int

const (
	Invalid StateKind = iota
	Reset
	Running
	Finished
	Exception
	Break
)

func (k StateKind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case Reset:
		return "Reset"
	case Running:
		return "Running"
	case Finished:
		return "Finished"
	case Exception:
		return "Exception"
	case Break:
		return "Break"
	default:
		return "Unknown"
	}
}

// DebuggerState is the observable result of a Step/Run call.
type DebuggerState struct {
	Kind   StateKind
	Offset int
}

// WitnessMode overrides the result of Runtime.CheckWitness syscalls, since
// the debugger has no real network signatures to check against (GLOSSARY
// "Witness mode").
type WitnessMode int

const (
	WitnessDefault WitnessMode = iota
	WitnessAlwaysTrue
	WitnessAlwaysFalse
)

// NotifyEvent is one entry of the observable runtime-notification log.
type NotifyEvent struct {
	Event string
	Args  []any
}
