package compose

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/compose/conftree"
)

// ModuleBuilder turns one module descriptor into a live Module. Builders
// are transient and single-use: creation resolves the type selector and
// merges the effective configuration eagerly so malformed descriptors fail
// before anything is constructed, and Build disposes the builder
// unconditionally. A second Build fails with ErrBuilderDisposed.
//
// Builders are not safe for concurrent use; the expectation is that a host
// composes its object graph during single-threaded startup.
type ModuleBuilder struct {
	selector   string
	factory    ModuleFactory
	config     *conftree.Section
	descriptor *conftree.Section
	opts       *buildOptions
	disposed   bool
}

// CreateModuleBuilder prepares a builder for the given descriptor. The
// descriptor's type selector is resolved and its configurationSource
// locations are fetched and merged immediately; both failure modes surface
// here rather than at Build time.
func CreateModuleBuilder(ctx context.Context, descriptor *conftree.Section, opts ...BuildOption) (*ModuleBuilder, error) {
	options, err := newBuildOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newModuleBuilder(ctx, descriptor, options)
}

func newModuleBuilder(ctx context.Context, descriptor *conftree.Section, options *buildOptions) (*ModuleBuilder, error) {
	if descriptor == nil {
		return nil, ErrDescriptorNil
	}

	selector, err := descriptor.String(KeyType)
	if err != nil || selector == "" {
		return nil, fmt.Errorf("%w: descriptor has no usable %q key", ErrSelectorMissing, KeyType)
	}

	factory, err := options.resolver.Resolve(selector)
	if err != nil {
		return nil, err
	}
	options.emit(ctx, EventTypeModuleResolved, map[string]any{"selector": selector}, nil)

	config, err := mergeConfiguration(ctx, descriptor, options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", selector, err)
	}

	return &ModuleBuilder{
		selector:   selector,
		factory:    factory,
		config:     config,
		descriptor: descriptor,
		opts:       options,
	}, nil
}

// Selector returns the resolved type selector for the module this builder
// produces.
func (b *ModuleBuilder) Selector() string {
	return b.selector
}

// Build constructs the module: nested modules are discovered and built
// first, then the factory runs with the merged configuration. The builder
// is disposed whether or not Build succeeds.
func (b *ModuleBuilder) Build(ctx context.Context) (*Module, error) {
	if b.disposed {
		return nil, ErrBuilderDisposed
	}
	defer b.Dispose()

	nested, err := discoverNestedModules(ctx, b.descriptor, b.opts)
	if err != nil {
		b.opts.emit(ctx, EventTypeBuildFailed, map[string]any{"selector": b.selector, "error": err.Error()}, nil)
		return nil, fmt.Errorf("%s: %w", b.selector, err)
	}

	impl, config, err := b.construct()
	if err != nil {
		b.opts.emit(ctx, EventTypeBuildFailed, map[string]any{"selector": b.selector, "error": err.Error()}, nil)
		return nil, err
	}

	module := newModule(b.selector, impl, config, nested)
	b.opts.emit(ctx, EventTypeModuleBuilt, map[string]any{"selector": b.selector}, nil)
	return module, nil
}

// construct invokes the factory, converting panics into construction
// errors so a misbehaving constructor cannot take down the composition
// pass.
func (b *ModuleBuilder) construct() (impl ServiceModule, config any, err error) {
	defer func() {
		if r := recover(); r != nil {
			impl, config = nil, nil
			err = fmt.Errorf("%w: %s: constructor panicked: %v", ErrConstructionFailed, b.selector, r)
		}
	}()

	impl, config, err = b.factory(b.config, b.opts.overrides...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrConstructionFailed, b.selector, err)
	}
	if impl == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrImplementationNil, b.selector)
	}
	return impl, config, nil
}

// Dispose releases the builder's references. It is idempotent; disposing a
// builder that was never built is allowed.
func (b *ModuleBuilder) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.factory = nil
	b.config = nil
	b.descriptor = nil
}
