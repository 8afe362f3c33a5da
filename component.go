package compose

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/compose/conftree"
)

// Component is a disposable, ordered collection of modules that a composer
// can fold into a composition. Modules returns the collection, assembling
// it at most once; after Close the component is unusable and Modules fails
// with ErrComponentDisposed. Close is idempotent.
type Component interface {
	Modules() ([]*Module, error)
	Close() error
}

// ComponentBuilder assembles a Component from descriptors, prebuilt
// modules, and other components. Every fluent call does its work
// immediately: WithModule constructs its module on the spot and
// WithModulesFrom enumerates its sources on the spot. Chaining is sticky:
// after the first failure the remaining calls are no-ops and Build reports
// that failure. Like a ModuleBuilder, a ComponentBuilder is single-use.
type ComponentBuilder struct {
	options  *buildOptions
	modules  []*Module
	err      error
	consumed bool
}

// NewComponentBuilder creates a builder using the given pipeline options
// for every module it constructs.
func NewComponentBuilder(opts ...BuildOption) *ComponentBuilder {
	options, err := newBuildOptions(opts...)
	return &ComponentBuilder{options: options, err: err}
}

// WithModule appends a module built from a selector and inline
// configuration values. The module is constructed during this call, not at
// Build. Overrides run against the bound configuration after binding and
// before construction, and apply only to this module.
func (b *ComponentBuilder) WithModule(selector string, cfg map[string]any, overrides ...ConfigOverride) *ComponentBuilder {
	if b.err != nil || b.consumed {
		return b
	}
	if selector == "" {
		b.err = fmt.Errorf("%w: component module needs a selector", ErrSelectorMissing)
		return b
	}

	descriptor := conftree.New(map[string]any{KeyType: selector})
	if len(cfg) > 0 {
		descriptor.Set(KeyConfiguration, cfg)
	}

	stepOpts := b.options.child()
	stepOpts.overrides = overrides

	// The fluent chain carries no caller context.
	ctx := context.Background()
	builder, err := newModuleBuilder(ctx, descriptor, stepOpts)
	if err != nil {
		b.err = err
		return b
	}
	module, err := builder.Build(ctx)
	if err != nil {
		b.err = err
		return b
	}

	b.modules = append(b.modules, module)
	return b
}

// WithModules appends prebuilt modules in the given order.
func (b *ComponentBuilder) WithModules(modules ...*Module) *ComponentBuilder {
	if b.err != nil || b.consumed {
		return b
	}
	for _, module := range modules {
		if module == nil {
			b.err = ErrModuleNil
			return b
		}
	}

	b.modules = append(b.modules, modules...)
	return b
}

// WithModulesFrom appends the modules of other components, enumerated in
// component order. Sources are enumerated during this call, so closing one
// afterwards does not affect the component being built.
func (b *ComponentBuilder) WithModulesFrom(components ...Component) *ComponentBuilder {
	if b.err != nil || b.consumed {
		return b
	}
	for _, component := range components {
		if component == nil {
			b.err = ErrComponentNil
			return b
		}
		ms, err := component.Modules()
		if err != nil {
			b.err = err
			return b
		}
		b.modules = append(b.modules, ms...)
	}
	return b
}

// Build wraps the modules accumulated so far in a Component. The builder
// is consumed: a second Build fails with ErrBuilderDisposed.
func (b *ComponentBuilder) Build(ctx context.Context) (Component, error) {
	if b.consumed {
		return nil, ErrBuilderDisposed
	}
	b.consumed = true
	if b.err != nil {
		return nil, b.err
	}

	modules := b.modules
	b.modules = nil

	b.options.emit(ctx, EventTypeComponentBuilt, map[string]any{"modules": len(modules)}, nil)
	return &builtComponent{modules: modules}, nil
}

// builtComponent holds an eagerly assembled module list.
type builtComponent struct {
	modules []*Module
	closed  bool
}

func (c *builtComponent) Modules() ([]*Module, error) {
	if c.closed {
		return nil, ErrComponentDisposed
	}
	out := make([]*Module, len(c.modules))
	copy(out, c.modules)
	return out, nil
}

func (c *builtComponent) Close() error {
	c.modules = nil
	c.closed = true
	return nil
}

// LazyComponent defers assembly to the first Modules call. The build
// function runs at most once; its outcome, success or failure, is cached.
// Close clears the cache and drops the build function.
type LazyComponent struct {
	build  func() ([]*Module, error)
	cached []*Module
	err    error
	built  bool
	closed bool
}

// NewLazyComponent wraps a deferred assembly step as a Component. A nil
// build function is rejected up front: every Modules call reports
// ErrComponentBuildNil instead of running it.
func NewLazyComponent(build func() ([]*Module, error)) *LazyComponent {
	c := &LazyComponent{build: build}
	if build == nil {
		c.built = true
		c.err = ErrComponentBuildNil
	}
	return c
}

// Modules implements Component.
func (c *LazyComponent) Modules() ([]*Module, error) {
	if c.closed {
		return nil, ErrComponentDisposed
	}
	if !c.built {
		c.cached, c.err = c.build()
		c.built = true
	}
	if c.err != nil {
		return nil, c.err
	}
	out := make([]*Module, len(c.cached))
	copy(out, c.cached)
	return out, nil
}

// Close implements Component.
func (c *LazyComponent) Close() error {
	c.closed = true
	c.cached = nil
	c.build = nil
	return nil
}
