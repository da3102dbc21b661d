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
	"fmt"
	"io"
	"reflect"

	"github.com/naoina/toml"

	"github.com/probechain/neodbg/emulator"
)

// tomlSettings matches the node's own config-loading convention (TOML keys
// use the same names as the Go struct field tags, no case-folding surprises).
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// Trigger is the execution context hint the GLOSSARY names: Application for
// a regular invocation, Verification for a witness check.
type Trigger string

const (
	TriggerApplication  Trigger = "Application"
	TriggerVerification Trigger = "Verification"
)

// RawArg is the TOML-friendly shape of one emulator.Arg: exactly one of the
// fields is populated, selected by Kind. It exists because emulator.Arg's
// big.Int/self-referential List fields don't round-trip through naoina/toml
// directly.
type RawArg struct {
	Kind  string   `toml:"kind"`
	Bool  bool     `toml:"bool,omitempty"`
	Int   int64    `toml:"int,omitempty"`
	Bytes []byte   `toml:"bytes,omitempty"`
	Str   string   `toml:"string,omitempty"`
	List  []RawArg `toml:"list,omitempty"`
}

// toArg converts a RawArg into the emulator.Arg tree buildLoaderScript needs.
func (r RawArg) toArg() emulator.Arg {
	switch r.Kind {
	case "bool":
		return emulator.BoolArg(r.Bool)
	case "int":
		return emulator.IntArg(r.Int)
	case "bytes":
		return emulator.BytesArg(r.Bytes)
	case "string":
		return emulator.StringArg(r.Str)
	case "list":
		els := make([]emulator.Arg, len(r.List))
		for i, el := range r.List {
			els[i] = el.toArg()
		}
		return emulator.ListArg(els)
	default:
		return emulator.NullArg()
	}
}

// DebugParameters bundles the per-run knobs SetDebugParameters accepts
//: witness mode, trigger, an optional timestamp override,
// optional transaction outputs, and the invocation argument list.
type DebugParameters struct {
	WitnessMode emulator.WitnessMode `toml:"-"`
	Trigger     Trigger              `toml:"trigger"`
	Timestamp   *int64               `toml:"timestamp,omitempty"`
	Outputs     []OutputSpec         `toml:"outputs,omitempty"`
	Args        []RawArg             `toml:"args,omitempty"`

	// WitnessModeName is the TOML-serializable form of WitnessMode: one of
	// "default", "true", "false".
	WitnessModeName string `toml:"witness_mode"`
}

// OutputSpec is the TOML-friendly shape of one chain.Output.
type OutputSpec struct {
	AssetID      string `toml:"asset_id"`
	Amount       int64  `toml:"amount"`
	ToScriptHash string `toml:"to_script_hash"`
}

// resolveWitnessMode maps the TOML-level name onto emulator.WitnessMode.
func (p *DebugParameters) resolveWitnessMode() {
	switch p.WitnessModeName {
	case "true":
		p.WitnessMode = emulator.WitnessAlwaysTrue
	case "false":
		p.WitnessMode = emulator.WitnessAlwaysFalse
	default:
		p.WitnessMode = emulator.WitnessDefault
	}
}

// LoadDebugParameters parses a TOML session file, mirroring the config-file
// convention the node's own config loader uses.
func LoadDebugParameters(r io.Reader) (*DebugParameters, error) {
	var p DebugParameters
	if err := tomlSettings.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("debugger: parse debug parameters: %w", err)
	}
	p.resolveWitnessMode()
	if p.Trigger == "" {
		p.Trigger = TriggerApplication
	}
	return &p, nil
}

// args converts the parsed RawArg list into the emulator.Arg tree Reset needs.
func (p *DebugParameters) args() []emulator.Arg {
	out := make([]emulator.Arg, len(p.Args))
	for i, a := range p.Args {
		out[i] = a.toArg()
	}
	return out
}
