package compose

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/compose/conftree"
)

// Composer is the composition root: it collects modules from components
// and from a configuration tree, flattens them into one ordered sequence,
// and registers the sequence into a container. Initialize must run before
// Load or Registration.
type Composer struct {
	optList     []BuildOption
	opts        *buildOptions
	topLevel    []*Module
	flat        []*Module
	initialized bool
}

// NewComposer creates a composer using the given pipeline options for
// configuration-discovered modules.
func NewComposer(opts ...BuildOption) *Composer {
	return &Composer{optList: opts}
}

// Initialize assembles the composition. Component modules come first, in
// component order, then modules discovered from the tree's top-level
// "modules" and "moduleSources" entries. Every top-level module is
// flattened pre-order into the final sequence. A nil tree is allowed for
// component-only compositions. The first failure aborts and leaves the
// composer uninitialized.
func (c *Composer) Initialize(ctx context.Context, tree *conftree.Section, components ...Component) error {
	options, err := newBuildOptions(c.optList...)
	if err != nil {
		return err
	}

	var top []*Module
	for i, component := range components {
		if component == nil {
			return fmt.Errorf("component %d: %w", i, ErrComponentNil)
		}
		modules, err := component.Modules()
		if err != nil {
			options.emit(ctx, EventTypeCompositionFailed, map[string]any{"error": err.Error()}, nil)
			return fmt.Errorf("component %d: %w", i, err)
		}
		top = append(top, modules...)
	}

	if tree != nil {
		discovered, err := discoverNestedModules(ctx, tree, options)
		if err != nil {
			options.emit(ctx, EventTypeCompositionFailed, map[string]any{"error": err.Error()}, nil)
			return err
		}
		top = append(top, discovered...)
	}

	c.opts = options
	c.topLevel = top
	c.flat = FlattenAll(top)
	c.initialized = true
	options.emit(ctx, EventTypeCompositionInitialized, map[string]any{"modules": len(c.flat)}, nil)
	return nil
}

// Load registers every module of the flattened sequence into the
// container, in order. The first registration failure aborts the load.
func (c *Composer) Load(ctx context.Context, container Container) error {
	if !c.initialized {
		return ErrComposerNotInitialized
	}
	if container == nil {
		return ErrNilContainer
	}

	for _, module := range c.flat {
		if err := module.Register(container); err != nil {
			c.opts.emit(ctx, EventTypeCompositionFailed, map[string]any{"error": err.Error()}, nil)
			return err
		}
		c.opts.emit(ctx, EventTypeModuleRegistered, map[string]any{"selector": module.Selector()}, nil)
	}
	c.opts.emit(ctx, EventTypeCompositionLoaded, map[string]any{"modules": len(c.flat)}, nil)
	return nil
}

// Registration exposes the composed load step as a plain registration
// function, the shape host bootstrap code expects to swap in.
func (c *Composer) Registration() func(Container) error {
	return func(container Container) error {
		return c.Load(context.Background(), container)
	}
}

// Modules returns the flattened module sequence.
func (c *Composer) Modules() []*Module {
	out := make([]*Module, len(c.flat))
	copy(out, c.flat)
	return out
}

// TopLevelModules returns the composition's top-level modules before
// flattening.
func (c *Composer) TopLevelModules() []*Module {
	out := make([]*Module, len(c.topLevel))
	copy(out, c.topLevel)
	return out
}
