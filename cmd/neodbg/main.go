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

// Command neodbg is a thin, non-interactive driver over the debugger core:
// it loads a compiled contract, optionally applies a TOML parameter file,
// runs it to completion or the first breakpoint, and prints the resulting
// state and offset (plus the gas profile table with --profile); a disasm
// command prints the assembly listing.
// A GUI or REPL shell is an external collaborator;
// this binary exists to exercise the core from a terminal and scripts.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/neodbg/chain"
	"github.com/probechain/neodbg/debugger"
	"github.com/probechain/neodbg/emulator"
	"github.com/probechain/neodbg/interop"
)

var (
	avmFlag = cli.StringFlag{
		Name:  "avm",
		Usage: "path to the compiled .avm artifact (siblings .abi.json/.debug.json/.neomap are discovered automatically)",
	}
	paramsFlag = cli.StringFlag{
		Name:  "params",
		Usage: "optional TOML debug-parameters file (witness mode, trigger, outputs, args)",
	}
	breakLineFlag = cli.IntSliceFlag{
		Name:  "break",
		Usage: "source (or assembly, with --asm) line to arm a breakpoint on, repeatable",
	}
	asmFlag = cli.BoolFlag{
		Name:  "asm",
		Usage: "interpret --break line numbers against the assembly listing instead of source",
	}
	profileFlag = cli.BoolFlag{
		Name:  "profile",
		Usage: "print the per-opcode gas profile table after running",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "neodbg"
	app.Usage = "NEO VM source-level debugger/emulator core, driven from the command line"
	app.Commands = []cli.Command{runCommand, disasmCommand}

	if err := app.Run(os.Args); err != nil {
		color.Red("neodbg: %v", err)
		os.Exit(1)
	}
}

var runCommand = cli.Command{
	Name:  "run",
	Usage: "load a contract and run it to completion (or the first breakpoint)",
	Flags: []cli.Flag{avmFlag, paramsFlag, breakLineFlag, asmFlag, profileFlag},
	Action: func(c *cli.Context) error {
		path := c.String(avmFlag.Name)
		if path == "" {
			return cli.NewExitError("missing required --avm", 1)
		}

		registry := interop.NewRegistry()
		interop.RegisterBuiltins(registry)
		sess := debugger.NewSession(chain.New(), registry)
		defer sess.Close()

		if err := sess.LoadAvmFile(path); err != nil {
			return cli.NewExitError(fmt.Sprintf("load: %v", err), 1)
		}

		if c.Bool(asmFlag.Name) {
			sess.ToggleDebugMode()
		}
		for _, line := range c.IntSlice(breakLineFlag.Name) {
			if !sess.AddBreakpoint(line) {
				color.Yellow("warning: line %d has no opcode coverage, breakpoint not armed", line)
			}
		}

		if paramsPath := c.String(paramsFlag.Name); paramsPath != "" {
			f, err := os.Open(paramsPath)
			if err != nil {
				return cli.NewExitError(fmt.Sprintf("open params: %v", err), 1)
			}
			params, err := debugger.LoadDebugParameters(f)
			f.Close()
			if err != nil {
				return cli.NewExitError(fmt.Sprintf("parse params: %v", err), 1)
			}
			if err := sess.SetDebugParameters(params); err != nil {
				return cli.NewExitError(fmt.Sprintf("apply params: %v", err), 1)
			}
		}

		state, err := sess.Run()
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("run: %v", err), 1)
		}
		printState(state)

		if c.Bool(profileFlag.Name) {
			sess.Profiler().DumpTable(os.Stdout)
		}
		return nil
	},
}

var disasmCommand = cli.Command{
	Name:  "disasm",
	Usage: "print the assembly listing of a compiled contract",
	Flags: []cli.Flag{avmFlag},
	Action: func(c *cli.Context) error {
		path := c.String(avmFlag.Name)
		if path == "" {
			return cli.NewExitError("missing required --avm", 1)
		}

		registry := interop.NewRegistry()
		interop.RegisterBuiltins(registry)
		sess := debugger.NewSession(chain.New(), registry)
		defer sess.Close()

		if err := sess.LoadAvmFile(path); err != nil {
			return cli.NewExitError(fmt.Sprintf("load: %v", err), 1)
		}
		fmt.Print(sess.Listing().Text)
		return nil
	},
}

func printState(state emulator.DebuggerState) {
	switch state.Kind {
	case emulator.Finished:
		color.Green("state=%s offset=%d", state.Kind, state.Offset)
	case emulator.Exception:
		color.Red("state=%s offset=%d", state.Kind, state.Offset)
	case emulator.Break:
		color.Yellow("state=%s offset=%d", state.Kind, state.Offset)
	default:
		fmt.Printf("state=%s offset=%d\n", state.Kind, state.Offset)
	}
}
