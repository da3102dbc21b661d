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

package emulator

import (
	"bytes"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/probechain/neodbg/chain"
	"github.com/probechain/neodbg/common"
	"github.com/probechain/neodbg/interop"
	"github.com/probechain/neodbg/profiler"
	"github.com/probechain/neodbg/vm"
)

// ErrNoContract is returned by Reset when no current Address has been set.
var ErrNoContract = errors.New("emulator: no contract address set")

// Emulator owns the ExecutionEngine, the executing Address, the script
// container (Transaction), the breakpoint set, and gas counters.
type Emulator struct {
	bc       *chain.Blockchain
	registry *interop.Registry
	address  *chain.Address
	tx       *chain.Transaction

	engine      *vm.Engine
	breakpoints mapset.Set // offsets (int)

	usedGas         float64
	usedOpcodeCount int
	witnessMode     WitnessMode

	lastState          DebuggerState
	lastStoragePutSize int
	notifications      []NotifyEvent

	profiler *profiler.Profiler
}

// New creates an Emulator bound to a blockchain and interop registry. Call
// SetContract to select the executing Address before the first Reset.
func New(bc *chain.Blockchain, registry *interop.Registry) *Emulator {
	return &Emulator{
		bc:          bc,
		registry:    registry,
		breakpoints: mapset.NewSet(),
		lastState:   DebuggerState{Kind: Invalid, Offset: 0},
	}
}

// SetContract selects addr as the contract Reset will load and execute.
func (em *Emulator) SetContract(addr *chain.Address) { em.address = addr }

// SetTransaction installs tx as the script container for the next Reset.
// Per Open Question (a), Reset clears this back to nil at the
// end of every Reset call, so a transaction must be (re-)supplied before
// each run that needs one.
func (em *Emulator) SetTransaction(tx *chain.Transaction) { em.tx = tx }

// SetWitnessMode overrides the result of Runtime.CheckWitness.
func (em *Emulator) SetWitnessMode(m WitnessMode) { em.witnessMode = m }

// SetProfiler attaches p; every Step forwards its opcode/line cost into it.
func (em *Emulator) SetProfiler(p *profiler.Profiler) { em.profiler = p }

// AddBreakpoint/RemoveBreakpoint edit the breakpoint set. They take effect
// immediately on the live engine (if one exists) and are re-armed on Reset.
func (em *Emulator) AddBreakpoint(offset int) {
	em.breakpoints.Add(offset)
	if em.engine != nil {
		em.engine.AddBreakpoint(offset)
	}
}

func (em *Emulator) RemoveBreakpoint(offset int) {
	em.breakpoints.Remove(offset)
	if em.engine != nil {
		em.engine.RemoveBreakpoint(offset)
	}
}

// UsedGas and UsedOpcodeCount are the running totals since the last Reset.
func (em *Emulator) UsedGas() float64     { return em.usedGas }
func (em *Emulator) UsedOpcodeCount() int { return em.usedOpcodeCount }

// Notifications returns every Runtime.Notify/Log event recorded since the
// last Reset.
func (em *Emulator) Notifications() []NotifyEvent {
	return append([]NotifyEvent(nil), em.notifications...)
}

// State returns the most recent Step/Run result.
func (em *Emulator) State() DebuggerState { return em.lastState }

// Engine exposes the live ExecutionEngine for façade-level stack inspection.
// Returns nil before the first Reset.
func (em *Emulator) Engine() *vm.Engine { return em.engine }

// Reset (re)builds the ExecutionEngine from scratch: zeroes counters,
// synthesizes a script container if needed, loads the contract bytecode and
// an argument-pushing loader script, and re-arms breakpoints.
// It is a no-op if already in the Reset state and neither arguments nor a
// transaction are supplied.
func (em *Emulator) Reset(args []Arg) error {
	if em.lastState.Kind == Reset && len(args) == 0 && em.tx == nil {
		return nil
	}
	if em.address == nil {
		return ErrNoContract
	}

	em.usedGas = 0
	em.usedOpcodeCount = 0
	em.notifications = nil
	em.lastStoragePutSize = 0

	if em.tx == nil {
		em.tx = &chain.Transaction{}
	}

	em.engine = vm.New(em.registry, em)
	em.engine.SetScriptResolver(func(hash common.ScriptHash) ([]byte, bool) {
		addr, err := em.bc.FindAddressByScriptHash(hash)
		if err != nil {
			return nil, false
		}
		return addr.ByteCode, true
	})
	em.engine.LoadScript(em.address.ByteCode)

	loader, err := buildLoaderScript(args)
	if err != nil {
		return fmt.Errorf("emulator: reset: %w", err)
	}
	em.engine.LoadScript(loader)

	em.breakpoints.Each(func(v any) bool {
		em.engine.AddBreakpoint(v.(int))
		return false
	})

	em.lastState = DebuggerState{Kind: Reset, Offset: 0}
	em.tx = nil // Open Question (a): clears any previously attached outputs
	return nil
}

// Step advances the engine by exactly one instruction and returns the
// resulting DebuggerState. Step is a no-op returning the
// current state if it is already Finished or Invalid.
func (em *Emulator) Step() DebuggerState {
	if em.lastState.Kind == Finished || em.lastState.Kind == Invalid {
		return em.lastState
	}
	if em.lastState.Kind == Break {
		em.engine.ClearBreakState()
	}

	if err := em.engine.StepInto(); err != nil {
		// Not a VM fault (those are reported via the engine's FAULT state):
		// this indicates a programming error in the engine itself.
		em.lastState = DebuggerState{Kind: Exception, Offset: em.lastState.Offset}
		return em.lastState
	}

	offset := em.lastState.Offset
	if ctx := em.engine.CurrentContext(); ctx != nil {
		offset = ctx.IP
	}

	op := em.engine.LastOpcode()
	sysCallName := em.engine.LastSysCall()
	_, baseCost, _ := em.registry.Resolve(sysCallName)
	cost, profileOp := em.gasCost(op, sysCallName, baseCost, em.lastStoragePutSize)
	em.usedGas += cost
	em.usedOpcodeCount++
	if em.profiler != nil {
		em.profiler.Record(profileOp.String(), cost, -1)
	}

	state := em.engine.State()
	kind := Running
	switch {
	case state.Has(vm.StateFault):
		kind = Exception
	case state.Has(vm.StateBreak):
		kind = Break
	case state.Has(vm.StateHalt):
		kind = Finished
	}
	em.lastState = DebuggerState{Kind: kind, Offset: offset}
	return em.lastState
}

// Run repeatedly Steps until the state is no longer Running.
func (em *Emulator) Run() DebuggerState {
	for {
		s := em.Step()
		if s.Kind != Running {
			return s
		}
	}
}

// ---- interop.Context implementation ---------------------------------------

func (em *Emulator) CurrentScriptHash() [20]byte {
	if em.engine == nil {
		return [20]byte{}
	}
	ctx := em.engine.CurrentContext()
	if ctx == nil {
		return [20]byte{}
	}
	return [20]byte(ctx.ScriptHash)
}

func (em *Emulator) StorageGet(key []byte) ([]byte, bool) {
	if em.address == nil {
		return nil, false
	}
	return em.address.StorageGet(key)
}

func (em *Emulator) StoragePut(key, value []byte) {
	if em.address == nil {
		return
	}
	em.lastStoragePutSize = len(value)
	_ = em.address.StoragePut(key, value)
}

func (em *Emulator) StorageDelete(key []byte) {
	if em.address == nil {
		return
	}
	_ = em.address.StorageDelete(key)
}

func (em *Emulator) CheckWitness(scriptHash []byte) bool {
	switch em.witnessMode {
	case WitnessAlwaysTrue:
		return true
	case WitnessAlwaysFalse:
		return false
	default:
		return em.address != nil && bytes.Equal(em.address.ScriptHash.Bytes(), scriptHash)
	}
}

func (em *Emulator) Notify(event string, args ...any) {
	em.notifications = append(em.notifications, NotifyEvent{Event: event, Args: args})
}

func (em *Emulator) LastStorageBytes() int { return em.lastStoragePutSize }
