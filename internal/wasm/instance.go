package wasm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	apiwasm "github.com/woxQAQ/hellofriend/api/wasm"
	"github.com/woxQAQ/hellofriend/pkg/protocol"
	"go.uber.org/zap"
)

// InstanceManager links guest modules against the env namespace.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs apiwasm.HostFunctions
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs apiwasm.HostFunctions, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Module name to instantiate.
	ModuleName string

	// Instance ID (if empty, one is generated).
	InstanceID string

	// Memory layout offered through env. Zero value means protocol.DefaultLayout.
	Layout protocol.Layout
}

// Instance is a guest module linked to its own env and host modules.
type Instance struct {
	module api.Module
	env    api.Module
	host   api.Module

	ID        string
	Name      string
	CreatedAt int64

	imports *ImportObject
	runtime *Runtime

	closeOnce sync.Once
	closeErr  error
}

// Instantiate links and instantiates a compiled module.
//
// Only one instance can be linked per runtime at a time, because guests import
// from the fixed module name "env".
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	compiled, ok := m.runtime.GetCompiledModule(config.ModuleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.ModuleName}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = generateInstanceID()
	}

	layout := config.Layout
	if layout == (protocol.Layout{}) {
		layout = protocol.DefaultLayout()
	}
	if err := layout.Validate(); err != nil {
		return nil, &InstantiationError{ModuleName: config.ModuleName, InstanceID: instanceID, Err: err}
	}

	m.logger.Info("Instantiating Wasm module",
		zap.String("module", config.ModuleName),
		zap.String("instance_id", instanceID),
		zap.Uint32("start_string", layout.StartString),
		zap.Uint32("memory_pages", layout.MemoryPages),
	)

	imports := NewImportObject(layout, m.hostFuncs, m.logger)

	host, env, err := m.linkEnv(ctx, imports)
	if err != nil {
		return nil, &InstantiationError{ModuleName: config.ModuleName, InstanceID: instanceID, Err: err}
	}

	// No start functions: the entry point is called explicitly, once.
	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions()

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		_ = env.Close(ctx)
		_ = host.Close(ctx)
		return nil, &InstantiationError{
			ModuleName: config.ModuleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	instance := &Instance{
		module:    module,
		env:       env,
		host:      host,
		ID:        instanceID,
		Name:      config.ModuleName,
		CreatedAt: time.Now().Unix(),
		imports:   imports,
		runtime:   m.runtime,
	}

	m.runtime.trackInstance(instance)

	m.logger.Info("Module instantiated successfully",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(module.ExportedFunctionDefinitions())),
	)

	return instance, nil
}

// linkEnv instantiates the host functions and the env module in front of them,
// then binds the import object to env's memory.
func (m *InstanceManager) linkEnv(ctx context.Context, imports *ImportObject) (api.Module, api.Module, error) {
	host, err := m.runtime.runtime.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithFunc(imports.printString).
		WithParameterNames("str_len").
		Export(protocol.ImportPrintString).
		Instantiate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to instantiate host module: %w", err)
	}

	env, err := m.runtime.runtime.InstantiateWithConfig(ctx,
		buildEnvModule(imports.Layout),
		wazero.NewModuleConfig().WithName(protocol.Namespace))
	if err != nil {
		_ = host.Close(ctx)
		return nil, nil, fmt.Errorf("failed to instantiate %s module: %w", protocol.Namespace, err)
	}

	imports.bind(env.ExportedMemory(protocol.ImportMemory))
	return host, env, nil
}

// Call invokes a zero-argument export. There is no re-entry guard; calling the
// same export twice is up to the guest.
func (i *Instance) Call(ctx context.Context, name string) error {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
	}

	if params := fn.Definition().ParamTypes(); len(params) != 0 {
		return &SignatureError{FunctionName: name, Params: len(params)}
	}

	start := time.Now()
	if _, err := fn.Call(ctx); err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == sys.ExitCodeDeadlineExceeded {
			return &TimeoutError{Duration: time.Since(start)}
		}
		return &ExecutionError{FunctionName: name, Err: err}
	}
	return nil
}

// Memory returns the shared env.buffer memory.
func (i *Instance) Memory() *Memory {
	return NewMemory(i.imports.Memory())
}

// Layout returns the layout the instance was linked with.
func (i *Instance) Layout() protocol.Layout {
	return i.imports.Layout
}

// Exports lists the names of exported functions.
func (i *Instance) Exports() []string {
	defs := i.module.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	return names
}

// Close closes the guest, then env, then the host functions.
func (i *Instance) Close(ctx context.Context) error {
	i.closeOnce.Do(func() {
		i.closeErr = errors.Join(
			i.module.Close(ctx),
			i.env.Close(ctx),
			i.host.Close(ctx),
		)
		i.runtime.untrackInstance(i.ID)
	})
	return i.closeErr
}

// generateInstanceID generates a unique instance ID.
func generateInstanceID() string {
	return fmt.Sprintf("inst-%d", time.Now().UnixNano())
}
