package wasm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tetratelabs/wazero/api"
	apiwasm "github.com/woxQAQ/hellofriend/api/wasm"
	"github.com/woxQAQ/hellofriend/pkg/protocol"
	"go.uber.org/zap"
)

var _ apiwasm.HostFunctions = (*HostFunctionsImpl)(nil)

// HostFunctionsImpl implements host functions for Wasm modules.
type HostFunctionsImpl struct {
	logger *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewHostFunctions creates host functions that print to out.
func NewHostFunctions(out io.Writer, logger *zap.Logger) *HostFunctionsImpl {
	return &HostFunctionsImpl{
		out:    out,
		logger: logger.With(zap.String("component", "wasm-host")),
	}
}

// PrintString writes the decoded string and a newline to the output.
func (h *HostFunctionsImpl) PrintString(ctx context.Context, mem api.Memory, offset, length uint32) error {
	s, err := NewMemory(mem).ReadString(offset, length)
	if err != nil {
		return err
	}

	h.logger.Debug("print_string",
		zap.Uint32("offset", offset),
		zap.Uint32("length", length),
	)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := fmt.Fprintln(h.out, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ImportObject is the host side of the env namespace for one instance: the
// layout it was built with, the memory it created and the print callback.
type ImportObject struct {
	Layout protocol.Layout

	host   apiwasm.HostFunctions
	logger *zap.Logger
	memory api.Memory
}

// NewImportObject creates an import object. The memory is bound once the env
// module exists.
func NewImportObject(layout protocol.Layout, host apiwasm.HostFunctions, logger *zap.Logger) *ImportObject {
	return &ImportObject{
		Layout: layout,
		host:   host,
		logger: logger,
	}
}

// Memory returns the shared memory, or nil before it is bound.
func (o *ImportObject) Memory() api.Memory {
	return o.memory
}

func (o *ImportObject) bind(mem api.Memory) {
	o.memory = mem
}

// printString is env.print_string. Signature: print_string(str_len)
// A failure panics, which wazero turns into a trap in the calling guest.
func (o *ImportObject) printString(ctx context.Context, mod api.Module, strLen uint32) {
	mem := o.memory
	if mem == nil {
		// Only reachable if called before env was linked.
		mem = mod.Memory()
	}

	if err := o.host.PrintString(ctx, mem, o.Layout.StartString, strLen); err != nil {
		o.logger.Error("print_string failed",
			zap.Uint32("start_string", o.Layout.StartString),
			zap.Uint32("str_len", strLen),
			zap.Error(err),
		)
		panic(&HostFunctionError{FunctionName: protocol.ImportPrintString, Err: err})
	}
}
