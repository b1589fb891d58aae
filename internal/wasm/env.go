package wasm

import (
	"github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/leb128"
	wabin "github.com/tetratelabs/wabin/wasm"
	"github.com/woxQAQ/hellofriend/pkg/protocol"
)

// hostModuleName is the module the Go host functions are instantiated under.
// Guests never import from it directly; the env module re-exports them.
const hostModuleName = "host"

// buildEnvModule returns the binary for the env namespace.
//
// wazero host modules cannot define memories or globals, so env is a small
// generated module that owns the memory and the start_string global and
// re-exports host.print_string. To a guest it looks like a single import
// object, as in:
//
//	(module
//	  (import "host" "print_string" (func (param i32)))
//	  (memory (export "buffer") <pages>)
//	  (global (export "start_string") i32 (i32.const <offset>))
//	  (export "print_string" (func 0)))
func buildEnvModule(layout protocol.Layout) []byte {
	m := &wabin.Module{
		TypeSection: []*wabin.FunctionType{
			{Params: []wabin.ValueType{wabin.ValueTypeI32}},
		},
		ImportSection: []*wabin.Import{
			{
				Type:     wabin.ExternTypeFunc,
				Module:   hostModuleName,
				Name:     protocol.ImportPrintString,
				DescFunc: 0,
			},
		},
		MemorySection: &wabin.Memory{Min: layout.MemoryPages},
		GlobalSection: []*wabin.Global{
			{
				Type: &wabin.GlobalType{ValType: wabin.ValueTypeI32},
				Init: &wabin.ConstantExpression{
					Opcode: wabin.OpcodeI32Const,
					Data:   leb128.EncodeInt32(int32(layout.StartString)),
				},
			},
		},
		ExportSection: []*wabin.Export{
			{Type: wabin.ExternTypeMemory, Name: protocol.ImportMemory, Index: 0},
			{Type: wabin.ExternTypeGlobal, Name: protocol.ImportStartString, Index: 0},
			{Type: wabin.ExternTypeFunc, Name: protocol.ImportPrintString, Index: 0},
		},
	}
	return binary.EncodeModule(m)
}
