package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/leb128"
	wabin "github.com/tetratelabs/wabin/wasm"
	"github.com/woxQAQ/hellofriend/internal/config"
	"github.com/woxQAQ/hellofriend/internal/wasm"
	"go.uber.org/zap/zaptest"
)

// helloModule imports env and prints msg from start_string when its entry
// point is called.
func helloModule(entry, msg string) []byte {
	body := []byte{wabin.OpcodeI32Const}
	body = append(body, leb128.EncodeInt32(int32(len(msg)))...)
	body = append(body, wabin.OpcodeCall, 0x00, wabin.OpcodeEnd)

	return binary.EncodeModule(&wabin.Module{
		TypeSection: []*wabin.FunctionType{
			{Params: []wabin.ValueType{wabin.ValueTypeI32}},
			{},
		},
		ImportSection: []*wabin.Import{
			{Type: wabin.ExternTypeMemory, Module: "env", Name: "buffer", DescMem: &wabin.Memory{Min: 1}},
			{Type: wabin.ExternTypeGlobal, Module: "env", Name: "start_string", DescGlobal: &wabin.GlobalType{ValType: wabin.ValueTypeI32}},
			{Type: wabin.ExternTypeFunc, Module: "env", Name: "print_string", DescFunc: 0},
		},
		FunctionSection: []wabin.Index{1},
		ExportSection:   []*wabin.Export{{Type: wabin.ExternTypeFunc, Name: entry, Index: 1}},
		CodeSection:     []*wabin.Code{{Body: body}},
		DataSection: []*wabin.DataSegment{
			{
				OffsetExpression: &wabin.ConstantExpression{Opcode: wabin.OpcodeGlobalGet, Data: leb128.EncodeUint32(0)},
				Init:             []byte(msg),
			},
		},
	})
}

func testConfig(modulePath string) *config.Config {
	return &config.Config{
		LogLevel: "debug",
		Wasm: config.WasmConfig{
			MemoryPages: 16,
		},
		Loader: config.LoaderConfig{
			ModulePath:  modulePath,
			EntryPoint:  "hellofriend",
			StartString: 100,
			MemoryPages: 1,
		},
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newTestLauncher(t *testing.T, cfg *config.Config) (*Launcher, *bytes.Buffer) {
	t.Helper()

	ctx := context.Background()
	out := &bytes.Buffer{}

	l, err := New(ctx, cfg, out, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		_ = l.Close(ctx)
	})

	return l, out
}

func TestRunBundledModule(t *testing.T) {
	path := filepath.Join("..", "..", "assets", "webassembly", "hello_friend", "hello_friend.wasm")
	l, out := newTestLauncher(t, testConfig(path))

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if got := out.String(); got != "Hello, friend.\n" {
		t.Errorf("expected 'Hello, friend.\\n', got %q", got)
	}
}

func TestRunCallsEntryOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.wasm")
	writeFile(t, path, helloModule("hellofriend", "once"))

	l, out := newTestLauncher(t, testConfig(path))

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if got := out.String(); got != "once\n" {
		t.Errorf("expected a single line, got %q", got)
	}
}

func TestRunManifestOverridesEntryAndLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greeter.wasm")
	writeFile(t, path, helloModule("greet", "from manifest"))
	writeFile(t, filepath.Join(dir, "greeter.yaml"), []byte(`name: greeter
entry: greet
layout:
  version: 1
  start_string: 4096
  memory_pages: 2
`))

	l, out := newTestLauncher(t, testConfig(path))

	plan, err := l.Plan()
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}
	if plan.Entry != "greet" {
		t.Errorf("expected entry 'greet', got '%s'", plan.Entry)
	}
	if plan.Layout.StartString != 4096 || plan.Layout.MemoryPages != 2 {
		t.Errorf("unexpected layout: %+v", plan.Layout)
	}

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if got := out.String(); got != "from manifest\n" {
		t.Errorf("expected 'from manifest\\n', got %q", got)
	}
}

func TestRunMissingModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.wasm")
	l, out := newTestLauncher(t, testConfig(path))

	err := l.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail for a missing module")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Step != "load" {
		t.Errorf("expected LoadError at step 'load', got %v", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestRunMalformedModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wasm")
	writeFile(t, path, []byte("definitely not wasm"))

	l, out := newTestLauncher(t, testConfig(path))

	err := l.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail for a malformed module")
	}

	var compErr *wasm.CompilationError
	if !errors.As(err, &compErr) {
		t.Errorf("expected CompilationError in chain, got %T: %v", err, err)
	}

	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestRunMissingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.wasm")
	writeFile(t, path, helloModule("other", "never"))

	l, out := newTestLauncher(t, testConfig(path))

	err := l.Run(context.Background())

	var notFound *wasm.FunctionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected FunctionNotFoundError, got %v", err)
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Step != "run" {
		t.Errorf("expected LoadError at step 'run', got %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestRunInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.wasm")
	writeFile(t, path, helloModule("hellofriend", "unused"))
	writeFile(t, filepath.Join(dir, "hello.yaml"), []byte("entry: hellofriend\n"))

	l, _ := newTestLauncher(t, testConfig(path))

	err := l.Run(context.Background())

	var validationErr *ManifestValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ManifestValidationError, got %v", err)
	}
}

func TestRunLeavesNoInstanceOpen(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "hello.wasm")
	writeFile(t, ok, helloModule("hellofriend", "bye"))
	missing := filepath.Join(dir, "other.wasm")
	writeFile(t, missing, helloModule("other", "never"))

	for _, path := range []string{ok, missing} {
		l, _ := newTestLauncher(t, testConfig(path))

		_ = l.Run(context.Background())

		if open := l.wasmRuntime.OpenInstances(); len(open) != 0 {
			t.Errorf("%s: instances left open after Run: %v", filepath.Base(path), open)
		}
	}
}
