package driver

import (
	"errors"
	"fmt"

	"github.com/joshuapare/segalloc/internal/trace"
)

var (
	// ErrMisaligned indicates a returned pointer that is not 16-byte aligned.
	ErrMisaligned = errors.New("payload not 16-byte aligned")

	// ErrOutOfRange indicates a payload that does not lie inside the arena.
	ErrOutOfRange = errors.New("payload outside the arena")

	// ErrOverlap indicates two live payloads that share bytes.
	ErrOverlap = errors.New("payloads overlap")

	// ErrCorrupted indicates payload bytes that changed while the block was live.
	ErrCorrupted = errors.New("payload corrupted")

	// ErrNotZeroed indicates a calloc payload that was not zero-filled.
	ErrNotZeroed = errors.New("calloc payload not zeroed")

	// ErrUnknownArena indicates an unsupported Config.Arena value.
	ErrUnknownArena = errors.New("unknown arena kind")
)

// OpError ties a failure to the trace operation that caused it.
type OpError struct {
	Trace string
	Index int // position in the trace
	Op    trace.Op
	Err   error
}

func (e *OpError) Error() string {
	where := fmt.Sprintf("%s op %d", e.Trace, e.Index)
	if e.Op.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.Trace, e.Op.Line)
	}
	return fmt.Sprintf("%s (%s id %d): %v", where, e.Op.Kind, e.Op.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
