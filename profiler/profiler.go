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

// Package profiler tallies per-opcode execution counts/costs and attributes
// gas cost to source lines, for the emulator's step loop to forward into
//. storage writes dominate
// real-world gas, so the synthetic "_STORAGE" bucket isolates their cost.
package profiler

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// Stat accumulates a hit count and total cost for one opcode or line.
type Stat struct {
	Count     int
	TotalCost float64
}

// Profiler accumulates per-opcode and per-source-line statistics across a
// debugging session. It belongs to a single Emulator instance.
type Profiler struct {
	opcodeStats map[string]*Stat
	lineStats   map[int]*Stat
	lastLine    int
	sourceText  string
}

// New creates an empty Profiler.
func New() *Profiler {
	return &Profiler{
		opcodeStats: make(map[string]*Stat),
		lineStats:   make(map[int]*Stat),
		lastLine:    -1,
	}
}

// SetSourceText stores the source file contents for DumpCSV/DumpTable to
// annotate alongside line numbers.
func (p *Profiler) SetSourceText(text string) { p.sourceText = text }

// SetCurrentLine updates the "most-recently-set lineno" Record attributes
// cost to, without recording a stat itself. Callers that resolve a source
// line from a debug map (the façade, not the emulator) use this to steer
// attribution before the instruction starting on that line executes.
func (p *Profiler) SetCurrentLine(line int) {
	if line >= 0 {
		p.lastLine = line
	}
}

// Record attributes cost to opcodeName's tally and to the most-recently-set
// source line: line >= 0 updates the "current" line, while -1 leaves it as
// is (the emulator always passes -1, so cost attributes to whichever line
// was last set, e.g. through SetCurrentLine).
func (p *Profiler) Record(opcodeName string, cost float64, line int) {
	if line >= 0 {
		p.lastLine = line
	}
	s := p.opcodeStats[opcodeName]
	if s == nil {
		s = &Stat{}
		p.opcodeStats[opcodeName] = s
	}
	s.Count++
	s.TotalCost += cost

	if p.lastLine < 0 {
		return
	}
	ls := p.lineStats[p.lastLine]
	if ls == nil {
		ls = &Stat{}
		p.lineStats[p.lastLine] = ls
	}
	ls.Count++
	ls.TotalCost += cost
}

// OpcodeStats returns a defensive copy of the per-opcode tallies.
func (p *Profiler) OpcodeStats() map[string]Stat {
	out := make(map[string]Stat, len(p.opcodeStats))
	for k, v := range p.opcodeStats {
		out[k] = *v
	}
	return out
}

// LineStats returns a defensive copy of the per-line tallies.
func (p *Profiler) LineStats() map[int]Stat {
	out := make(map[int]Stat, len(p.lineStats))
	for k, v := range p.lineStats {
		out[k] = *v
	}
	return out
}

// sortedLines returns the profiled line numbers in ascending order.
func (p *Profiler) sortedLines() []int {
	lines := make([]int, 0, len(p.lineStats))
	for l := range p.lineStats {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}

// DumpCSV writes one row per profiled source line: line, hit count,
// cumulative cost. The CSV writer is stdlib encoding/csv;
// no pack repo example ships a CSV library and none is warranted for a
// three-column dump (see DESIGN.md).
func (p *Profiler) DumpCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"line", "hits", "cost"}); err != nil {
		return fmt.Errorf("profiler: write CSV header: %w", err)
	}
	for _, line := range p.sortedLines() {
		s := p.lineStats[line]
		row := []string{fmt.Sprintf("%d", line), fmt.Sprintf("%d", s.Count), fmt.Sprintf("%.6f", s.TotalCost)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("profiler: write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
