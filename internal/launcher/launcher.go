// Package launcher runs a hello-friend module once: read, link, call the
// entry point, tear down.
package launcher

import (
	"context"
	"fmt"
	"io"

	"github.com/woxQAQ/hellofriend/internal/config"
	"github.com/woxQAQ/hellofriend/internal/wasm"
	"github.com/woxQAQ/hellofriend/pkg/protocol"
	"go.uber.org/zap"
)

// Launcher loads a module and calls its entry point once.
type Launcher struct {
	cfg         *config.Config
	logger      *zap.Logger
	wasmRuntime *wasm.Runtime
	loader      *wasm.ModuleLoader
	instanceMgr *wasm.InstanceManager
}

// New creates a launcher whose print_string output goes to out.
func New(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) (*Launcher, error) {
	wasmConfig := &wasm.RuntimeConfig{
		MemoryPages:  cfg.Wasm.MemoryPages,
		DebugEnabled: cfg.Wasm.Debug,
		CacheDir:     cfg.Wasm.CacheDir,
	}

	wasmRuntime, err := wasm.NewRuntime(ctx, logger, wasmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	hostFuncs := wasm.NewHostFunctions(out, logger)

	return &Launcher{
		cfg:         cfg,
		logger:      logger.With(zap.String("component", "launcher")),
		wasmRuntime: wasmRuntime,
		loader:      wasm.NewModuleLoader(wasmRuntime, logger),
		instanceMgr: wasm.NewInstanceManager(wasmRuntime, hostFuncs, logger),
	}, nil
}

// Plan is what Run will do, after the manifest has been applied.
type Plan struct {
	ModulePath string
	Entry      string
	Layout     protocol.Layout
}

// Plan resolves the module path, entry point and layout. The manifest, when
// present, wins over configuration.
func (l *Launcher) Plan() (*Plan, error) {
	p := &Plan{
		ModulePath: l.cfg.Loader.ModulePath,
		Entry:      l.cfg.Loader.EntryPoint,
		Layout: protocol.Layout{
			Version:     protocol.LayoutVersion,
			StartString: l.cfg.Loader.StartString,
			MemoryPages: l.cfg.Loader.MemoryPages,
		},
	}

	manifest, err := LoadManifest(p.ModulePath)
	if err != nil {
		return nil, &LoadError{ModulePath: p.ModulePath, Step: "read manifest for", Err: err}
	}

	if manifest != nil {
		l.logger.Info("Using module manifest",
			zap.String("manifest", manifest.Path()),
			zap.String("name", manifest.Name),
		)
		if manifest.Entry != "" {
			p.Entry = manifest.Entry
		}
		p.Layout = manifest.Layout
	}

	return p, nil
}

// Run loads the module and calls its entry point exactly once. Any failure
// is returned as is; there is no retry.
func (l *Launcher) Run(ctx context.Context) error {
	plan, err := l.Plan()
	if err != nil {
		return err
	}

	if timeout := l.cfg.Loader.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	compiled, err := l.loader.LoadModuleFromFile(ctx, plan.ModulePath)
	if err != nil {
		return &LoadError{ModulePath: plan.ModulePath, Step: "load", Err: err}
	}

	instance, err := l.instanceMgr.Instantiate(ctx, &wasm.InstanceConfig{
		ModuleName: compiled.Name,
		Layout:     plan.Layout,
	})
	if err != nil {
		return &LoadError{ModulePath: plan.ModulePath, Step: "instantiate", Err: err}
	}
	defer func() {
		if err := instance.Close(context.Background()); err != nil {
			l.logger.Warn("Failed to close instance", zap.Error(err))
		}
	}()

	l.logger.Debug("Calling entry point", zap.String("entry", plan.Entry))

	if err := instance.Call(ctx, plan.Entry); err != nil {
		return &LoadError{ModulePath: plan.ModulePath, Step: "run", Err: err}
	}

	return nil
}

// Close shuts down the Wasm runtime, closing any instance Run left open.
func (l *Launcher) Close(ctx context.Context) error {
	if open := l.wasmRuntime.OpenInstances(); len(open) > 0 {
		l.logger.Warn("Closing runtime with open instances", zap.Strings("instances", open))
	}
	if err := l.wasmRuntime.Close(ctx); err != nil {
		l.logger.Error("Failed to shutdown Wasm runtime", zap.Error(err))
		return err
	}
	return nil
}
