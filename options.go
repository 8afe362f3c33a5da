package compose

import (
	"context"

	"github.com/GoCodeAlone/compose/sources"
)

// BuildOption is a functional option configuring the resolution and build
// pipeline used by CreateModuleBuilder and NewComposer.
type BuildOption func(*buildOptions) error

// buildOptions carries everything a builder needs beyond the descriptor
// itself. A child builder created for a nested descriptor inherits the
// pipeline but not the caller's configuration overrides.
type buildOptions struct {
	registry  *TypeRegistry
	dynamic   DynamicResolver
	fetcher   sources.Fetcher
	logger    Logger
	overrides []ConfigOverride
	observers []Observer

	resolver *TypeResolver
}

func newBuildOptions(opts ...BuildOption) (*buildOptions, error) {
	o := &buildOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	// Secure resolution is the default: without an explicit registry or an
	// opted-in dynamic resolver, selectors resolve against the package
	// registry and nothing else.
	if o.registry == nil && o.dynamic == nil {
		o.registry = DefaultRegistry()
	}
	if o.fetcher == nil {
		o.fetcher = sources.Default()
	}
	if o.logger == nil {
		o.logger = noopLogger{}
	}

	resolver, err := NewTypeResolver(o.registry, o.dynamic, o.logger)
	if err != nil {
		return nil, err
	}
	o.resolver = resolver
	return o, nil
}

// child derives options for a nested descriptor. Configuration overrides
// apply only to the module the caller asked for, so they are dropped.
func (o *buildOptions) child() *buildOptions {
	clone := *o
	clone.overrides = nil
	return &clone
}

// emit notifies all registered observers. Observer errors are logged and
// do not interrupt the build.
func (o *buildOptions) emit(ctx context.Context, eventType string, data any, metadata map[string]any) {
	if len(o.observers) == 0 {
		return
	}
	event := NewCloudEvent(eventType, EventSource, data, metadata)
	for _, observer := range o.observers {
		if err := observer.OnEvent(ctx, event); err != nil {
			o.logger.Warn("observer returned error", "observer", observer.ObserverID(), "event", eventType, "error", err)
		}
	}
}

// WithRegistry sets the secure type registry consulted first during
// resolution.
func WithRegistry(registry *TypeRegistry) BuildOption {
	return func(o *buildOptions) error {
		o.registry = registry
		return nil
	}
}

// WithDynamicResolver opts in to open resolution. The resolver handles only
// selectors the registry does not know.
func WithDynamicResolver(resolver DynamicResolver) BuildOption {
	return func(o *buildOptions) error {
		o.dynamic = resolver
		return nil
	}
}

// WithFetcher sets the fetcher used to retrieve configurationSource and
// moduleSources documents.
func WithFetcher(fetcher sources.Fetcher) BuildOption {
	return func(o *buildOptions) error {
		o.fetcher = fetcher
		return nil
	}
}

// WithLogger sets the logger for the build pipeline.
func WithLogger(logger Logger) BuildOption {
	return func(o *buildOptions) error {
		o.logger = logger
		return nil
	}
}

// WithConfigOverrides applies overrides to the top-level module's bound
// configuration after descriptor and source values are merged. Nested
// modules are not affected.
func WithConfigOverrides(overrides ...ConfigOverride) BuildOption {
	return func(o *buildOptions) error {
		o.overrides = append(o.overrides, overrides...)
		return nil
	}
}

// WithObservers registers observers for composition lifecycle events.
func WithObservers(observers ...Observer) BuildOption {
	return func(o *buildOptions) error {
		o.observers = append(o.observers, observers...)
		return nil
	}
}
