//go:build !wasm

package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// HostFunctions defines the host side of the hello-friend calling convention.
// Implementations back the env.print_string import.
type HostFunctions interface {
	// PrintString decodes length bytes of UTF-8 starting at offset in mem and
	// emits the text. The caller must have written the string first; nothing
	// here can tell whether it did.
	PrintString(ctx context.Context, mem api.Memory, offset, length uint32) error
}
