package protocol

import "fmt"

// Calling convention shared between the host and hello-friend guest modules.
// Guests import everything from a single namespace.
const (
	Namespace         = "env"
	ImportMemory      = "buffer"
	ImportStartString = "start_string"
	ImportPrintString = "print_string"

	// DefaultEntryPoint is the zero-argument export called once after instantiation.
	DefaultEntryPoint = "hellofriend"
)

const (
	// PageSize is the size of one Wasm linear memory page.
	PageSize = 65536

	// MaxPages is the largest page count addressable with 32-bit offsets.
	MaxPages = 65536

	LayoutVersion = 1

	DefaultStartString uint32 = 100
	DefaultMemoryPages uint32 = 1
)

// Layout describes where host and guest agree to place the printed string.
type Layout struct {
	Version     int    `json:"version" yaml:"version"`
	StartString uint32 `json:"start_string" yaml:"start_string"`
	MemoryPages uint32 `json:"memory_pages" yaml:"memory_pages"`
}

// DefaultLayout returns the layout used when nothing else is negotiated:
// one page of memory, strings at byte 100.
func DefaultLayout() Layout {
	return Layout{
		Version:     LayoutVersion,
		StartString: DefaultStartString,
		MemoryPages: DefaultMemoryPages,
	}
}

// MemorySize returns the size of the linear memory in bytes.
func (l Layout) MemorySize() uint64 {
	return uint64(l.MemoryPages) * PageSize
}

// Capacity returns the longest string that fits between StartString and the
// end of memory.
func (l Layout) Capacity() uint64 {
	size := l.MemorySize()
	if uint64(l.StartString) >= size {
		return 0
	}
	return size - uint64(l.StartString)
}

// Validate checks the layout can be realized by a single memory.
func (l Layout) Validate() error {
	if l.Version != LayoutVersion {
		return &LayoutError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported layout version %d (want %d)", l.Version, LayoutVersion),
		}
	}

	if l.MemoryPages == 0 || l.MemoryPages > MaxPages {
		return &LayoutError{
			Field:   "memory_pages",
			Message: fmt.Sprintf("memory_pages must be in [1, %d], got %d", MaxPages, l.MemoryPages),
		}
	}

	if uint64(l.StartString) >= l.MemorySize() {
		return &LayoutError{
			Field:   "start_string",
			Message: fmt.Sprintf("start_string %d is outside memory of %d bytes", l.StartString, l.MemorySize()),
		}
	}

	return nil
}

// LayoutError reports an unusable layout descriptor.
type LayoutError struct {
	Field   string
	Message string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid layout (field: %s): %s", e.Field, e.Message)
}
