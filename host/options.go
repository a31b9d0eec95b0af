package host

import (
	"io"
	"log/slog"
	"os"

	"github.com/tetratelabs/wazero"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/hostfuncs"
	wazeroadapter "github.com/superfaceai/one-sdk-sub004/infrastructure/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

type executorConfig struct {
	caps           *ports.Capabilities
	logger         *slog.Logger
	runtimeConfig  wazero.RuntimeConfig
	config         entities.HostConfig
	dispatcherOpts []hostfuncs.DispatcherOption
	adapterOpts    []wazeroadapter.AdapterOption
}

// WithCapabilities sets the capabilities handed to every instance. Defaults
// to the real network, filesystem, and clock.
func WithCapabilities(caps ports.Capabilities) Option {
	return func(c *executorConfig) {
		c.caps = &caps
	}
}

// WithConfig sets the host configuration.
func WithConfig(cfg entities.HostConfig) Option {
	return func(c *executorConfig) {
		c.config = cfg
	}
}

// WithLogger sets the logger. Without it, a text logger on stderr at the
// configured log level is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *executorConfig) {
		c.logger = l
	}
}

// WithRuntimeConfig sets the wazero runtime configuration.
func WithRuntimeConfig(rc wazero.RuntimeConfig) Option {
	return func(c *executorConfig) {
		c.runtimeConfig = rc
	}
}

// WithDispatcherOptions applies extra options to every instance's
// dispatcher, e.g. an extension registry or a policy.
func WithDispatcherOptions(opts ...hostfuncs.DispatcherOption) Option {
	return func(c *executorConfig) {
		c.dispatcherOpts = append(c.dispatcherOpts, opts...)
	}
}

// WithAdapterOptions configures the exported host module.
func WithAdapterOptions(opts ...wazeroadapter.AdapterOption) Option {
	return func(c *executorConfig) {
		c.adapterOpts = append(c.adapterOpts, opts...)
	}
}

// InstanceOption configures one instance.
type InstanceOption func(*instanceConfig)

type instanceConfig struct {
	input          any
	stdout         io.Writer
	stderr         io.Writer
	id             string
	dispatcherOpts []hostfuncs.DispatcherOption
}

// WithInput sets the value the guest receives from take-context.
func WithInput(v any) InstanceOption {
	return func(c *instanceConfig) {
		c.input = v
	}
}

// WithInstanceID names the instance. Defaults to a random UUID.
func WithInstanceID(id string) InstanceOption {
	return func(c *instanceConfig) {
		c.id = id
	}
}

// WithStdio connects the guest's WASI stdout and stderr.
func WithStdio(stdout, stderr io.Writer) InstanceOption {
	return func(c *instanceConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithInstanceDispatcherOptions applies options to this instance's
// dispatcher only.
func WithInstanceDispatcherOptions(opts ...hostfuncs.DispatcherOption) InstanceOption {
	return func(c *instanceConfig) {
		c.dispatcherOpts = append(c.dispatcherOpts, opts...)
	}
}

func defaultLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
