package arena

// MmapOptions configures an Mmap arena.
type MmapOptions struct {
	// MaxSize is the reservation size in bytes. Zero selects DefaultMaxSize.
	MaxSize int

	// Prefault asks the kernel to populate newly committed pages eagerly.
	Prefault bool
}

func (o *MmapOptions) withDefaults() MmapOptions {
	var out MmapOptions
	if o != nil {
		out = *o
	}
	if out.MaxSize <= 0 {
		out.MaxSize = DefaultMaxSize
	}
	return out
}

func alignUp(n, to int) int {
	return (n + to - 1) / to * to
}
