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
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// DumpTable renders the per-opcode tallies as an aligned console table,
// sorted by total cost descending, for the CLI's --profile flag.
func (p *Profiler) DumpTable(w io.Writer) {
	names := make([]string, 0, len(p.opcodeStats))
	for name := range p.opcodeStats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.opcodeStats[names[i]].TotalCost > p.opcodeStats[names[j]].TotalCost
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Opcode", "Count", "Total Cost"})
	for _, name := range names {
		s := p.opcodeStats[name]
		table.Append([]string{name, fmt.Sprintf("%d", s.Count), fmt.Sprintf("%.6f", s.TotalCost)})
	}
	table.Render()
}
