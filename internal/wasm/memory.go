package wasm

import (
	"errors"

	"github.com/tetratelabs/wazero/api"
	"golang.org/x/text/encoding/unicode"
)

var errOutOfRange = errors.New("out of range")

// Memory provides bounds-checked access to a Wasm linear memory.
//
// Host and guest share the same memory object; all addressing is by 32-bit
// offset. Bounds are the only thing checked: nothing records whether the
// bytes at an offset were ever written.
type Memory struct {
	mem api.Memory
}

// NewMemory wraps a memory, typically env.buffer.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

// ReadBytes returns a copy of length bytes starting at ptr.
func (m *Memory) ReadBytes(ptr uint32, length uint32) ([]byte, error) {
	buf, ok := m.mem.Read(ptr, length)
	if !ok {
		return nil, &MemoryAccessError{
			Operation: "read",
			Address:   ptr,
			Length:    length,
			Err:       errOutOfRange,
		}
	}
	// Read returns a view that aliases memory.
	return append([]byte(nil), buf...), nil
}

// ReadString decodes length bytes at ptr as UTF-8 text. A leading byte order
// mark is dropped and invalid sequences become U+FFFD, matching a default
// TextDecoder.
func (m *Memory) ReadString(ptr uint32, length uint32) (string, error) {
	buf, ok := m.mem.Read(ptr, length)
	if !ok {
		return "", &MemoryAccessError{
			Operation: "read",
			Address:   ptr,
			Length:    length,
			Err:       errOutOfRange,
		}
	}

	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(buf)
	if err != nil {
		return "", &MemoryAccessError{
			Operation: "decode",
			Address:   ptr,
			Length:    length,
			Err:       err,
		}
	}
	return string(decoded), nil
}

// WriteBytes copies data into memory starting at ptr.
func (m *Memory) WriteBytes(ptr uint32, data []byte) error {
	if !m.mem.Write(ptr, data) {
		return &MemoryAccessError{
			Operation: "write",
			Address:   ptr,
			Length:    uint32(len(data)),
			Err:       errOutOfRange,
		}
	}
	return nil
}

// WriteString writes s at ptr and returns the number of bytes written, which
// is the length to pass to print_string.
func (m *Memory) WriteString(ptr uint32, s string) (uint32, error) {
	if !m.mem.WriteString(ptr, s) {
		return 0, &MemoryAccessError{
			Operation: "write",
			Address:   ptr,
			Length:    uint32(len(s)),
			Err:       errOutOfRange,
		}
	}
	return uint32(len(s)), nil
}
