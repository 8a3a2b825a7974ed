package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/joshuapare/segalloc/alloc"
	"github.com/joshuapare/segalloc/arena"
	"github.com/joshuapare/segalloc/internal/format"
	"github.com/joshuapare/segalloc/internal/trace"
)

// ctxCheckInterval is how many operations run between context checks.
const ctxCheckInterval = 256

// Result summarizes one replayed trace.
type Result struct {
	Trace       string        `json:"trace" yaml:"trace"`
	Ops         int           `json:"ops" yaml:"ops"`
	PeakPayload int           `json:"peak_payload" yaml:"peak_payload"`
	HeapSize    int           `json:"heap_size" yaml:"heap_size"`
	Utilization float64       `json:"utilization" yaml:"utilization"`
	Elapsed     time.Duration `json:"elapsed_ns" yaml:"elapsed"`
	OpsPerSec   float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	Stats       alloc.Stats   `json:"stats" yaml:"stats"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// block is the driver's record of one trace id.
type block struct {
	ptr  alloc.Ptr
	size int
}

// replayer carries the state of a checked pass.
type replayer struct {
	al     *alloc.Allocator
	blocks []block
	spans  spanSet
	live   int
	peak   int
}

// newArena builds the arena selected by cfg and a func that releases it.
func newArena(cfg Config) (arena.Arena, func() error, error) {
	switch cfg.Arena {
	case ArenaMem:
		return arena.NewMem(cfg.MaxHeap), func() error { return nil }, nil
	case ArenaMmap:
		m, err := arena.NewMmap(&arena.MmapOptions{MaxSize: cfg.MaxHeap})
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownArena, cfg.Arena)
}

func newAllocator(cfg Config, name string) (*alloc.Allocator, func() error, error) {
	a, release, err := newArena(cfg)
	if err != nil {
		return nil, nil, err
	}
	al, err := alloc.New(a, &alloc.Options{
		Logger:       cfg.Logger.With("trace", name),
		DisableSlabs: cfg.DisableSlabs,
	})
	if err != nil {
		_ = release()
		return nil, nil, err
	}
	return al, release, nil
}

// Replay runs t once with full checking and once more for timing. The
// returned Result is never nil; on failure it holds what was measured so far.
func Replay(ctx context.Context, t *trace.Trace, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	res := &Result{Trace: t.Name, Ops: len(t.Ops)}

	if err := t.Check(); err != nil {
		return res, err
	}
	if err := replayChecked(ctx, t, cfg, res); err != nil {
		return res, err
	}
	if err := replayTimed(ctx, t, cfg, res); err != nil {
		return res, err
	}

	cfg.Logger.Debug("trace replayed",
		"trace", t.Name, "ops", res.Ops, "util", res.Utilization, "elapsed", res.Elapsed)
	return res, nil
}

func replayChecked(ctx context.Context, t *trace.Trace, cfg Config, res *Result) error {
	al, release, err := newAllocator(cfg, t.Name)
	if err != nil {
		return err
	}
	defer release()

	r := &replayer{al: al, blocks: make([]block, t.NumIDs())}
	for i, op := range t.Ops {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := r.step(op); err != nil {
			return &OpError{Trace: t.Name, Index: i, Op: op, Err: err}
		}
		if cfg.Check {
			if err := al.ValidateHeap(); err != nil {
				return &OpError{Trace: t.Name, Index: i, Op: op, Err: err}
			}
		}
	}
	if err := al.ValidateHeap(); err != nil {
		return fmt.Errorf("%s: final heap check: %w", t.Name, err)
	}

	res.Stats = al.Stats()
	res.HeapSize = res.Stats.HeapSize
	res.PeakPayload = r.peak
	if res.HeapSize > 0 {
		res.Utilization = float64(r.peak) / float64(res.HeapSize)
	}
	return nil
}

func (r *replayer) step(op trace.Op) error {
	switch op.Kind {
	case trace.OpAlloc:
		p, err := r.al.Alloc(op.Size)
		if err != nil {
			return err
		}
		return r.place(op.ID, p, op.Size)

	case trace.OpCalloc:
		p, err := r.al.Calloc(op.Count, op.Size)
		if err != nil {
			return err
		}
		n := op.Bytes()
		for _, c := range r.al.Bytes(p, n) {
			if c != 0 {
				return ErrNotZeroed
			}
		}
		return r.place(op.ID, p, n)

	case trace.OpRealloc:
		old := r.blocks[op.ID]
		if err := r.verify(op.ID, old.ptr, old.size); err != nil {
			return err
		}
		p, err := r.al.Realloc(old.ptr, op.Size)
		if err != nil {
			return err
		}
		r.drop(op.ID)
		if err := r.verify(op.ID, p, min(old.size, op.Size)); err != nil {
			return err
		}
		return r.place(op.ID, p, op.Size)

	case trace.OpFree:
		b := r.blocks[op.ID]
		if err := r.verify(op.ID, b.ptr, b.size); err != nil {
			return err
		}
		if err := r.al.Free(b.ptr); err != nil {
			return err
		}
		r.drop(op.ID)
		return nil
	}
	return fmt.Errorf("unknown operation %v", op.Kind)
}

// place checks a freshly returned payload, records it and fills it.
func (r *replayer) place(id int, p alloc.Ptr, size int) error {
	if int(p)%format.Alignment != 0 {
		return fmt.Errorf("%w: %d", ErrMisaligned, p)
	}
	heap := r.al.Stats().HeapSize
	if p <= alloc.Nil || int(p)+size > heap {
		return fmt.Errorf("%w: [%d, %d) in heap of %d", ErrOutOfRange, p, int(p)+size, heap)
	}
	if err := r.spans.insert(int(p), int(p)+max(size, 1)); err != nil {
		return fmt.Errorf("%w: [%d, %d)", err, p, int(p)+size)
	}

	buf := r.al.Bytes(p, size)
	for i := range buf {
		buf[i] = patternByte(id, i)
	}
	r.blocks[id] = block{ptr: p, size: size}
	r.live += size
	r.peak = max(r.peak, r.live)
	return nil
}

// drop forgets the block bound to id.
func (r *replayer) drop(id int) {
	b := r.blocks[id]
	r.spans.remove(int(b.ptr))
	r.live -= b.size
	r.blocks[id] = block{}
}

// verify checks the first n payload bytes at p against id's pattern.
func (r *replayer) verify(id int, p alloc.Ptr, n int) error {
	buf := r.al.Bytes(p, n)
	for i, c := range buf {
		if c != patternByte(id, i) {
			return fmt.Errorf("%w: byte %d of %d at %d", ErrCorrupted, i, n, p)
		}
	}
	return nil
}

func patternByte(id, i int) byte {
	return byte(id*131 + i*7 + 1)
}

// replayTimed runs t without checks on a fresh allocator and records throughput.
func replayTimed(ctx context.Context, t *trace.Trace, cfg Config, res *Result) error {
	al, release, err := newAllocator(cfg, t.Name)
	if err != nil {
		return err
	}
	defer release()

	ptrs := make([]alloc.Ptr, t.NumIDs())
	start := time.Now()
	for i, op := range t.Ops {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		switch op.Kind {
		case trace.OpAlloc:
			ptrs[op.ID], err = al.Alloc(op.Size)
		case trace.OpCalloc:
			ptrs[op.ID], err = al.Calloc(op.Count, op.Size)
		case trace.OpRealloc:
			ptrs[op.ID], err = al.Realloc(ptrs[op.ID], op.Size)
		case trace.OpFree:
			err = al.Free(ptrs[op.ID])
		}
		if err != nil {
			return &OpError{Trace: t.Name, Index: i, Op: op, Err: err}
		}
	}
	res.Elapsed = time.Since(start)
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(len(t.Ops)) / secs
	}
	return nil
}
