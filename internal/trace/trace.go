// Package trace reads, writes and synthesizes allocation traces.
//
// A trace is a text file with one operation per line:
//
//	a <id> <size>          allocate size bytes and bind them to id
//	r <id> <size>          resize the block bound to id
//	f <id>                 free the block bound to id
//	c <id> <count> <size>  allocate count*size zeroed bytes
//
// Blank lines and lines starting with # are ignored. A trace may open with up
// to four lines holding a single integer each: suggested heap size, number of
// ids, number of operations and weight. Files with a UTF-8 or UTF-16 byte
// order mark are decoded transparently.
package trace

import "fmt"

// OpKind identifies a trace operation.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
	OpCalloc  OpKind = 'c'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	case OpCalloc:
		return "calloc"
	}
	return fmt.Sprintf("OpKind(%q)", byte(k))
}

// Op is one trace operation. Count is only used by OpCalloc.
type Op struct {
	Kind  OpKind
	ID    int
	Size  int
	Count int
	Line  int // source line, 0 for generated ops
}

// Bytes returns the payload size the op requests.
func (o Op) Bytes() int {
	if o.Kind == OpCalloc {
		return o.Count * o.Size
	}
	return o.Size
}

// Header carries the optional numeric prologue of a trace.
type Header struct {
	HeapHint int // suggested heap size in bytes
	IDs      int // number of distinct ids
	Ops      int // number of operations
	Weight   int // scoring weight
}

// Trace is a parsed trace.
type Trace struct {
	Name   string
	Header Header
	Ops    []Op
}

// NumIDs returns one more than the largest id used.
func (t *Trace) NumIDs() int {
	n := 0
	for _, op := range t.Ops {
		n = max(n, op.ID+1)
	}
	return n
}

// Error reports a problem at a specific trace line.
type Error struct {
	Name    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Check verifies that ids are used consistently: alloc and calloc bind an id
// that is not live, realloc and free require a live id.
func (t *Trace) Check() error {
	live := make(map[int]bool)
	for i, op := range t.Ops {
		line := op.Line
		if line == 0 {
			line = i + 1
		}
		switch op.Kind {
		case OpAlloc, OpCalloc:
			if live[op.ID] {
				return &Error{Name: t.Name, Line: line, Message: fmt.Sprintf("%s of live id %d", op.Kind, op.ID)}
			}
			live[op.ID] = true
		case OpRealloc:
			if !live[op.ID] {
				return &Error{Name: t.Name, Line: line, Message: fmt.Sprintf("realloc of unknown id %d", op.ID)}
			}
		case OpFree:
			if !live[op.ID] {
				return &Error{Name: t.Name, Line: line, Message: fmt.Sprintf("free of unknown id %d", op.ID)}
			}
			delete(live, op.ID)
		}
	}
	return nil
}
