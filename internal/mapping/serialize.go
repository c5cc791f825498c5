package mapping

import (
	"strconv"
	"strings"
)

// Serialize renders the mapping as a Modelica matrix literal:
//
//	[s1,p1,x1,y1;s2,p2,x2,y2;...]
//
// Rows are ordered by ascending series index. An empty mapping renders as "[]".
// The output has no whitespace and no trailing separator.
func (m *CellMapping) Serialize() string {
	return SerializeEntries(m.Entries())
}

// SerializeEntries renders already-ordered entries in the Serialize format.
func SerializeEntries(entries []CellEntry) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(e.Series))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(e.ParallelGroup))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(e.X))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(e.Y))
	}
	sb.WriteByte(']')
	return sb.String()
}
