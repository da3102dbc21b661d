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

package profiler

import (
	"bytes"
	"strings"
	"testing"
)

func TestRecordAttributesToMostRecentLine(t *testing.T) {
	p := New()
	p.Record("PUSH3", 0, 10)
	p.Record("RET", 0.001, 10)
	p.Record("ADD", 0.001, 11)

	lines := p.LineStats()
	if lines[10].Count != 2 {
		t.Fatalf("line 10 count = %d, want 2", lines[10].Count)
	}
	if lines[11].Count != 1 || lines[11].TotalCost != 0.001 {
		t.Fatalf("line 11 stats = %+v, want count=1 cost=0.001", lines[11])
	}
}

func TestRecordWithoutLineIsSkipped(t *testing.T) {
	p := New()
	p.Record("NOP", 0, -1)
	if len(p.LineStats()) != 0 {
		t.Fatalf("expected no line stats before any line is set")
	}
	if p.OpcodeStats()["NOP"].Count != 1 {
		t.Fatalf("expected NOP opcode stat regardless of line")
	}
}

func TestStorageBucketIsolatesCost(t *testing.T) {
	p := New()
	p.Record("_STORAGE", 2.0, 5)
	p.Record("ADD", 0.001, 5)

	opStats := p.OpcodeStats()
	if opStats["_STORAGE"].TotalCost != 2.0 {
		t.Fatalf("_STORAGE cost = %v, want 2.0", opStats["_STORAGE"].TotalCost)
	}
	if opStats["ADD"].TotalCost != 0.001 {
		t.Fatalf("ADD cost = %v, want 0.001", opStats["ADD"].TotalCost)
	}
}

func TestDumpCSV(t *testing.T) {
	p := New()
	p.Record("PUSH3", 0, 10)
	p.Record("RET", 0.001, 10)

	var buf bytes.Buffer
	if err := p.DumpCSV(&buf); err != nil {
		t.Fatalf("DumpCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "line,hits,cost\n") {
		t.Fatalf("DumpCSV header = %q", out)
	}
	if !strings.Contains(out, "10,2,0.001000") {
		t.Fatalf("DumpCSV body = %q, want row for line 10", out)
	}
}
