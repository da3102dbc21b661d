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

// Package debugmap loads a compiled .debug.json artifact and exposes the
// bidirectional offset<->(source-file, line) mapping that drives
// source-level breakpoints and stepping.
package debugmap

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/VictoriaMetrics/fastcache"
)

// Entry is one compiled debug-map record: bytecode offsets [Start, End)
// correspond to a single line in a source file.
type Entry struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	URL   string `json:"url"`
	Line  int    `json:"line"`
}

// DebugMap is an ordered, non-overlapping sequence of Entry records.
type DebugMap struct {
	entries []Entry // sorted by Start

	// lineCache memoizes ResolveLine results. fastcache is overkill for the
	// entry counts a single contract produces, but Step() calls
	// ResolveLine on every instruction in a tight interpreter loop, so the
	// allocation-free get/set path pays for itself across a long Run().
	lineCache *fastcache.Cache
}

// Load parses a .debug.json document from r. It tolerates entries that
// reference multiple source files (inline compilation units).
func Load(r io.Reader) (*DebugMap, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("debugmap: decode: %w", err)
	}
	return New(entries), nil
}

// New builds a DebugMap from entries, sorting them by start offset.
func New(entries []Entry) *DebugMap {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &DebugMap{entries: sorted, lineCache: fastcache.New(64 * 1024)}
}

// Entries returns the sorted entries backing the map.
func (m *DebugMap) Entries() []Entry { return m.entries }

// SourceURL returns the source file URL of the first entry, or "" if the
// map is empty.
func (m *DebugMap) SourceURL() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[0].URL
}

// ResolveLine returns the source line of the unique entry containing ofs,
// or -1 if ofs is not covered by any entry.
func (m *DebugMap) ResolveLine(ofs int) int {
	key := encodeOfsKey(ofs)
	if buf, ok := m.lineCache.HasGet(nil, key); ok && len(buf) == 4 {
		return int(int32(buf[0]) | int32(buf[1])<<8 | int32(buf[2])<<16 | int32(buf[3])<<24)
	}
	line := m.resolveLineSlow(ofs)
	m.lineCache.Set(key, encodeLineVal(line))
	return line
}

// resolveLineSlow performs the O(log n) binary search over entries sorted
// by Start, checking containment in [Start, End).
func (m *DebugMap) resolveLineSlow(ofs int) int {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].Start > ofs }) - 1
	if i < 0 || i >= len(m.entries) {
		return -1
	}
	e := m.entries[i]
	if ofs >= e.Start && ofs < e.End {
		return e.Line
	}
	return -1
}

// ResolveOffset returns the smallest Start offset of any entry mapped to
// line, or -1 if no entry has that line.
func (m *DebugMap) ResolveOffset(line int) int {
	best := -1
	for _, e := range m.entries {
		if e.Line == line {
			if best == -1 || e.Start < best {
				best = e.Start
			}
		}
	}
	return best
}

func encodeOfsKey(ofs int) []byte {
	return []byte{byte(ofs), byte(ofs >> 8), byte(ofs >> 16), byte(ofs >> 24)}
}

func encodeLineVal(line int) []byte {
	return []byte{byte(line), byte(line >> 8), byte(line >> 16), byte(line >> 24)}
}
