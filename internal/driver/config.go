package driver

import (
	"log/slog"
	"runtime"
)

// ArenaKind selects the arena implementation a replay runs on.
type ArenaKind string

const (
	ArenaMem  ArenaKind = "mem"
	ArenaMmap ArenaKind = "mmap"
)

// DefaultMaxHeap caps each replay's arena when Config.MaxHeap is zero.
const DefaultMaxHeap = 1 << 30

// Config controls a replay. The zero value replays on a heap arena without
// per-op heap validation, one worker per CPU.
type Config struct {
	Arena        ArenaKind
	MaxHeap      int  // per-trace arena cap in bytes
	Check        bool // validate the heap after every operation
	DisableSlabs bool
	Workers      int  // concurrent traces in Run
	FailFast     bool // stop Run at the first failing trace
	Logger       *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Arena == "" {
		c.Arena = ArenaMem
	}
	if c.MaxHeap <= 0 {
		c.MaxHeap = DefaultMaxHeap
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}
