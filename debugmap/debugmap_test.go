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

package debugmap

import (
	"strings"
	"testing"
)

func TestLoadParsesEntries(t *testing.T) {
	doc := `[{"start":0,"end":5,"url":"c.go","line":10},{"start":5,"end":9,"url":"c.go","line":11}]`
	m, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Entries()) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(m.Entries()))
	}
	if m.SourceURL() != "c.go" {
		t.Fatalf("SourceURL() = %q, want c.go", m.SourceURL())
	}
}

func TestResolveLineEveryMappedOffset(t *testing.T) {
	entries := []Entry{
		{Start: 0, End: 5, URL: "c.go", Line: 10},
		{Start: 5, End: 9, URL: "c.go", Line: 11},
	}
	m := New(entries)
	for _, e := range entries {
		for ofs := e.Start; ofs < e.End; ofs++ {
			if got := m.ResolveLine(ofs); got != e.Line {
				t.Fatalf("ResolveLine(%d) = %d, want %d", ofs, got, e.Line)
			}
		}
	}
	if got := m.ResolveLine(9); got != -1 {
		t.Fatalf("ResolveLine(9) = %d, want -1 (unmapped)", got)
	}
}

func TestResolveOffsetResolveLineInvariant(t *testing.T) {
	entries := []Entry{
		{Start: 0, End: 5, URL: "c.go", Line: 10},
		{Start: 5, End: 9, URL: "c.go", Line: 11},
	}
	m := New(entries)
	for ofs := 0; ofs < 9; ofs++ {
		line := m.ResolveLine(ofs)
		if line == -1 {
			continue
		}
		resolved := m.ResolveOffset(line)
		if resolved > ofs {
			t.Fatalf("ResolveOffset(ResolveLine(%d)) = %d, want <= %d", ofs, resolved, ofs)
		}
		if m.ResolveLine(resolved) != line {
			t.Fatalf("offset %d and its resolved start %d disagree on line", ofs, resolved)
		}
	}
}

func TestResolveLineCacheConsistentWithSlowPath(t *testing.T) {
	m := New([]Entry{{Start: 0, End: 3, URL: "c.go", Line: 1}})
	first := m.ResolveLine(1)  // populates the cache
	second := m.ResolveLine(1) // served from the cache
	if first != second {
		t.Fatalf("cached ResolveLine(1) = %d, uncached = %d", second, first)
	}
}
