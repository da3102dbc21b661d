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
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/google/uuid"

	"github.com/probechain/neodbg/chain"
	"github.com/probechain/neodbg/common"
	"github.com/probechain/neodbg/debugmap"
	"github.com/probechain/neodbg/disasm"
	"github.com/probechain/neodbg/emulator"
	"github.com/probechain/neodbg/internal/log"
	"github.com/probechain/neodbg/interop"
	"github.com/probechain/neodbg/profiler"
)

// ViewMode selects which offset<->line resolver AddBreakpoint/RemoveBreakpoint
// and CurrentLine consult: the compiler's DebugMap (Source) or the
// Disassembler's own listing (Assembly). It belongs to the façade, not the
// engine.
type ViewMode int

const (
	SourceView ViewMode = iota
	AssemblyView
)

func (m ViewMode) String() string {
	if m == AssemblyView {
		return "Assembly"
	}
	return "Source"
}

// Session is the DebugManager façade: it owns one
// Blockchain, one Emulator/ExecutionEngine, and the artifacts loaded for the
// currently debugged contract, and serializes every public operation behind
// a single mutex.
type Session struct {
	mu sync.Mutex
	id uuid.UUID

	log log.Logger

	bc       *chain.Blockchain
	registry *interop.Registry
	address  *chain.Address
	profiler *profiler.Profiler
	disasm   *disasm.Disassembler
	em       *emulator.Emulator

	listing    *disasm.Listing
	abi        *ABI
	debugMap   *debugmap.DebugMap
	sourceText string
	language   string

	viewMode  ViewMode
	params    *DebugParameters
	lastArgs  []emulator.Arg
	resetFlag bool

	chainPath string
}

// NewSession creates a Session bound to bc and registry. Callers that want a
// fresh simulated chain per session can pass chain.New() and
// interop.NewRegistry() (with interop.RegisterBuiltins applied).
func NewSession(bc *chain.Blockchain, registry *interop.Registry) *Session {
	id := uuid.New()
	s := &Session{
		id:       id,
		log:      log.Root.With("session", id.String()),
		bc:       bc,
		registry: registry,
		profiler: profiler.New(),
		disasm:   disasm.NewDisassembler(32),
		em:       emulator.New(bc, registry),
		viewMode: SourceView,
	}
	s.em.SetProfiler(s.profiler)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// languageForExt maps a source file extension to the debugger's display
// name for syntax-highlighting purposes. Anything unrecognized falls back
// to "text" rather than erroring: language inference is a presentation
// nicety, not a load precondition.
func languageForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".cs":
		return "csharp"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".js", ".ts":
		return "javascript"
	default:
		return "text"
	}
}

// LoadAvmFile implements LoadAvmFile: reads the raw bytecode
// (via a read-only mmap, since .avm artifacts are read once in full and
// never written back), disassembles it, deploys it onto the session's
// simulated chain, and opportunistically loads the sibling .abi.json /
// .debug.json artifacts. A sibling .neomap file is a hard load error.
func (s *Session) LoadAvmFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := strings.TrimSuffix(path, filepath.Ext(path))

	if _, err := os.Stat(base + ".neomap"); err == nil {
		return &LoadError{Artifact: base + ".neomap", Err: ErrLegacyNeomap}
	}

	code, err := readAvm(path)
	if err != nil {
		return &LoadError{Artifact: path, Err: err}
	}

	listing, err := s.disasm.Disassemble(code)
	if err != nil {
		return &DisassembleError{Err: err}
	}
	s.listing = listing

	name := filepath.Base(base)
	addr, err := s.bc.DeployContract(name, code)
	if err != nil {
		if existing, findErr := s.bc.FindAddressByName(name); findErr == nil {
			existing.ByteCode = code
			addr = existing
		} else {
			return &LoadError{Artifact: path, Err: err}
		}
	}
	s.address = addr
	s.em.SetContract(addr)
	s.log.Info("loaded avm artifact", "path", path, "scriptHash", addr.ScriptHash.String())

	s.abi = nil
	if f, err := os.Open(base + ".abi.json"); err == nil {
		abi, parseErr := LoadABI(f)
		f.Close()
		if parseErr != nil {
			return &LoadError{Artifact: base + ".abi.json", Err: parseErr}
		}
		s.abi = abi
	}

	s.debugMap = nil
	s.sourceText = ""
	s.language = ""
	if f, err := os.Open(base + ".debug.json"); err == nil {
		dm, parseErr := debugmap.Load(f)
		f.Close()
		if parseErr != nil {
			return &LoadError{Artifact: base + ".debug.json", Err: parseErr}
		}
		s.debugMap = dm
		if url := dm.SourceURL(); url != "" {
			srcPath := url
			if !filepath.IsAbs(srcPath) {
				srcPath = filepath.Join(filepath.Dir(path), url)
			}
			if text, readErr := os.ReadFile(srcPath); readErr == nil {
				s.sourceText = string(text)
				s.profiler.SetSourceText(s.sourceText)
			}
			s.language = languageForExt(filepath.Ext(url))
		}
	}

	s.chainPath = base + ".chain"
	s.resetFlag = false
	return s.reset(nil)
}

// readAvm reads the full contents of an .avm file via a read-only mmap.
func readAvm(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() == 0 {
		return []byte{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	defer m.Unmap()

	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}

// resolveOffset translates line under the current view mode into a byte
// offset, or -1 if no resolver is loaded / the line has no coverage.
func (s *Session) resolveOffset(line int) int {
	switch s.viewMode {
	case SourceView:
		if s.debugMap == nil {
			return -1
		}
		return s.debugMap.ResolveOffset(line)
	default:
		if s.listing == nil {
			return -1
		}
		return s.listing.LineToOffset(line)
	}
}

// resolveLine translates a byte offset into a line under the current view
// mode, or -1 if unmapped.
func (s *Session) resolveLine(offset int) int {
	switch s.viewMode {
	case SourceView:
		if s.debugMap == nil {
			return -1
		}
		return s.debugMap.ResolveLine(offset)
	default:
		if s.listing == nil {
			return -1
		}
		return s.listing.OffsetToLine(offset)
	}
}

// AddBreakpoint translates line via the current view mode and arms it on
// the emulator. It returns false if line does not correspond to any opcode,
// without treating that as an error.
func (s *Session) AddBreakpoint(line int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := s.resolveOffset(line)
	if offset < 0 {
		return false
	}
	s.em.AddBreakpoint(offset)
	return true
}

// RemoveBreakpoint is the inverse of AddBreakpoint.
func (s *Session) RemoveBreakpoint(line int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := s.resolveOffset(line)
	if offset < 0 {
		return false
	}
	s.em.RemoveBreakpoint(offset)
	return true
}

// ToggleDebugMode swaps the view mode without affecting execution state.
func (s *Session) ToggleDebugMode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewMode == SourceView {
		s.viewMode = AssemblyView
	} else {
		s.viewMode = SourceView
	}
	return s.viewMode
}

// SetDebugParameters installs params (witness mode, trigger, timestamp
// override, outputs, args) and performs a Reset.
func (s *Session) SetDebugParameters(params *DebugParameters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = params
	if params.WitnessModeName != "" {
		params.resolveWitnessMode()
	}
	s.em.SetWitnessMode(params.WitnessMode)

	if len(params.Outputs) > 0 || params.Timestamp != nil {
		tx := &chain.Transaction{}
		for _, o := range params.Outputs {
			hashBytes, err := hex.DecodeString(strings.TrimPrefix(o.ToScriptHash, "0x"))
			if err != nil {
				return fmt.Errorf("debugger: decode output script hash %q: %w", o.ToScriptHash, err)
			}
			tx.Outputs = append(tx.Outputs, chain.Output{
				AssetID:      o.AssetID,
				Amount:       o.Amount,
				ToScriptHash: common.BytesToScriptHash(hashBytes),
			})
		}
		s.em.SetTransaction(tx)
	}

	s.lastArgs = params.args()
	s.resetFlag = false
	return s.reset(s.lastArgs)
}

// reset rebuilds the emulator with args, assuming the caller holds s.mu.
func (s *Session) reset(args []emulator.Arg) error {
	if err := s.em.Reset(args); err != nil {
		return fmt.Errorf("debugger: reset: %w", err)
	}
	s.resetFlag = false
	return nil
}

// Step advances execution by exactly one instruction, performing a Reset
// first if a prior Step/Run left resetFlag set.
func (s *Session) Step() (emulator.DebuggerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

func (s *Session) stepLocked() (emulator.DebuggerState, error) {
	if s.resetFlag {
		if err := s.reset(s.lastArgs); err != nil {
			return emulator.DebuggerState{}, err
		}
	}

	if line := s.resolveLine(s.em.State().Offset); line >= 0 {
		s.profiler.SetCurrentLine(line)
	}

	state := s.em.Step()
	s.updateState(state)
	return state, nil
}

// Run repeatedly Steps until the state is no longer Running.
func (s *Session) Run() (emulator.DebuggerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		state, err := s.stepLocked()
		if err != nil {
			return state, err
		}
		if state.Kind != emulator.Running {
			return state, nil
		}
	}
}

// updateState implements UpdateState: persist the simulated
// chain on Finished, and arm resetFlag on any terminal state so the next
// Step/Run transparently resets first.
func (s *Session) updateState(state emulator.DebuggerState) {
	switch state.Kind {
	case emulator.Finished:
		if s.chainPath != "" {
			if err := s.saveChain(); err != nil {
				s.log.Warn("failed to persist chain snapshot", "path", s.chainPath, "err", err)
			}
		}
		s.resetFlag = true
	case emulator.Exception:
		s.resetFlag = true
	}
}

func (s *Session) saveChain() error {
	f, err := os.Create(s.chainPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.bc.Save(f)
}

// CurrentLine resolves the most recent Step/Run offset under the current
// view mode, or -1 if unmapped.
func (s *Session) CurrentLine() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLine(s.em.State().Offset)
}

// State returns the most recent Step/Run result.
func (s *Session) State() emulator.DebuggerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.em.State()
}

// Emulator exposes the underlying Emulator for stack/gas/profiler inspection.
func (s *Session) Emulator() *emulator.Emulator { return s.em }

// Listing returns the current assembly listing, or nil if none is loaded.
func (s *Session) Listing() *disasm.Listing { return s.listing }

// ABI returns the loaded contract ABI, or nil.
func (s *Session) ABI() *ABI { return s.abi }

// SourceText and Language expose the loaded source file, if a .debug.json
// artifact named one.
func (s *Session) SourceText() string { return s.sourceText }
func (s *Session) Language() string    { return s.language }

// Profiler exposes the session's Profiler for Dump calls.
func (s *Session) Profiler() *profiler.Profiler { return s.profiler }

// Close releases the session's blockchain storage handles.
func (s *Session) Close() error { return s.bc.Close() }
