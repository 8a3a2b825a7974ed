package trace

import (
	"bufio"
	"fmt"
	"io"
)

// Write serializes t in the text format Parse reads, header included.
func (t *Trace) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	h := t.Header
	fmt.Fprintf(bw, "%d\n%d\n%d\n%d\n", h.HeapHint, h.IDs, h.Ops, h.Weight)
	for _, op := range t.Ops {
		switch op.Kind {
		case OpFree:
			fmt.Fprintf(bw, "f %d\n", op.ID)
		case OpCalloc:
			fmt.Fprintf(bw, "c %d %d %d\n", op.ID, op.Count, op.Size)
		default:
			fmt.Fprintf(bw, "%c %d %d\n", byte(op.Kind), op.ID, op.Size)
		}
	}
	return bw.Flush()
}
