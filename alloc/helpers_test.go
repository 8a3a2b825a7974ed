package alloc

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/arena"
)

// newTestAllocator returns an allocator over a fresh heap arena capped at
// maxSize bytes (0 for the default cap).
func newTestAllocator(t testing.TB, maxSize int, opts *Options) (*Allocator, *arena.Mem) {
	t.Helper()
	a := arena.NewMem(maxSize)
	al, err := New(a, opts)
	require.NoError(t, err)
	return al, a
}

func mustAlloc(t testing.TB, al *Allocator, size int) Ptr {
	t.Helper()
	p, err := al.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

func mustFree(t testing.TB, al *Allocator, p Ptr) {
	t.Helper()
	require.NoError(t, al.Free(p))
}

func requireValid(t testing.TB, al *Allocator) {
	t.Helper()
	require.NoError(t, al.ValidateHeap())
}

// fill writes a position-dependent pattern seeded by seed.
func fill(al *Allocator, p Ptr, n int, seed byte) {
	buf := al.Bytes(p, n)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
}

func requirePattern(t testing.TB, al *Allocator, p Ptr, n int, seed byte) {
	t.Helper()
	buf := al.Bytes(p, n)
	for i := range buf {
		if buf[i] != seed+byte(i) {
			require.Failf(t, "payload corrupted", "ptr %d byte %d: got 0x%02X want 0x%02X", p, i, buf[i], seed+byte(i))
		}
	}
}

// listBlocks returns the blocks on a class list in list order.
func listBlocks(al *Allocator, class int) []int {
	var out []int
	for b := al.listHead(class); b != 0; b = al.succ(b) {
		out = append(out, b)
	}
	return out
}

// recordingHandler collects log messages.
type recordingHandler struct {
	messages []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.messages = append(h.messages, r.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func newRecordingLogger(h *recordingHandler) *slog.Logger {
	return slog.New(h)
}
