//go:build wasm

package wasm

// This file documents the contract a hello-friend guest module implements.
//
// NOTE: uint32 is used for offsets and lengths because WebAssembly uses a
// 32-bit linear memory model.
//
// Imports, all from the "env" namespace:
//
//	(import "env" "buffer" (memory 1))            ;; host-created, shared
//	(import "env" "start_string" (global i32))    ;; where strings are placed
//	(import "env" "print_string" (func (param i32)))
//
// Export:
//
//	(func (export "hellofriend"))                 ;; called once, no arguments
//
// The guest writes its string at start_string and then calls
// print_string(len). The host reads len bytes from the same offset.
//
// A Go guest cannot import its linear memory, so guests are written in WAT or
// a language that can; see assets/webassembly/hello_friend/hello_friend.wat.
