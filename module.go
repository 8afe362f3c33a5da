// Package compose provides a configuration-driven composition engine for Go.
// It turns a declarative tree of module descriptors into a live graph of
// service-registration units, then flattens that graph and drives it into a
// dependency-injection container.
//
// A module descriptor names its implementation through a type selector,
// carries inline configuration, and may nest further modules directly (a
// modules array) or indirectly (moduleSources referencing external content).
// Selectors resolve against a secure compile-time TypeRegistry first, with
// an optional opt-in DynamicResolver as the open-mode fallback.
//
// Basic usage:
//
//	registry := compose.NewTypeRegistry()
//	_ = registry.Register(compose.RegistryEntry{Key: "httpapi", Factory: httpapi.Factory})
//
//	tree, _ := conftree.ParseYAML(configDocument)
//	composer := compose.NewComposer(compose.WithRegistry(registry))
//	if err := composer.Initialize(ctx, tree); err != nil {
//		log.Fatal(err)
//	}
//	if err := composer.Load(ctx, compose.NewServiceRegistry()); err != nil {
//		log.Fatal(err)
//	}
package compose

import (
	"fmt"
)

// ServiceModule is the capability interface concrete module implementations
// satisfy. RegisterServices contributes this module's services to the
// container and must not descend into nested modules; flattening already
// expanded those into siblings of the registration sequence.
type ServiceModule interface {
	// RegisterServices contributes service registrations for this module
	// alone.
	RegisterServices(c Container) error
}

// KnownModuleProvider is an optional capability for implementations that
// always want companion modules present. The returned modules are appended
// after any explicitly supplied nested modules, in declared order.
//
// Example:
//
//	func (m *APIModule) KnownModules() []*compose.Module {
//	    return []*compose.Module{m.scheduler}
//	}
type KnownModuleProvider interface {
	KnownModules() []*Module
}

// TypeNamed is an optional capability supplying the canonical type selector
// for implementations constructed programmatically via NewModule. Modules
// built from descriptors carry the descriptor's selector instead; the
// serializer needs one or the other.
type TypeNamed interface {
	ModuleType() string
}

// Module is one unit of configuration-driven service registration: a bound
// configuration value, an ordered list of nested modules, and a registration
// hook. Modules are immutable after construction; the nested list is set
// once as (explicitly supplied modules) ++ (implementation-declared known
// modules), in that order.
type Module struct {
	selector string
	impl     ServiceModule
	config   any
	nested   []*Module
}

// NewModule constructs a module directly from an implementation, its bound
// configuration value and explicit nested modules. Implementations
// satisfying KnownModuleProvider get their known modules appended after the
// explicit ones; implementations satisfying TypeNamed give the module its
// canonical selector.
func NewModule(impl ServiceModule, config any, nested ...*Module) (*Module, error) {
	if impl == nil {
		return nil, ErrImplementationNil
	}

	selector := ""
	if named, ok := impl.(TypeNamed); ok {
		selector = named.ModuleType()
	}
	return newModule(selector, impl, config, nested), nil
}

func newModule(selector string, impl ServiceModule, config any, nested []*Module) *Module {
	all := make([]*Module, 0, len(nested))
	for _, m := range nested {
		if m != nil {
			all = append(all, m)
		}
	}
	if known, ok := impl.(KnownModuleProvider); ok {
		for _, m := range known.KnownModules() {
			if m != nil {
				all = append(all, m)
			}
		}
	}

	return &Module{
		selector: selector,
		impl:     impl,
		config:   config,
		nested:   all,
	}
}

// Selector returns the module's canonical type selector: the registry key or
// dynamic type name it was resolved from, or the TypeNamed value for
// programmatic modules. Empty when neither applies.
func (m *Module) Selector() string {
	return m.selector
}

// Config returns the module's bound configuration value. The value is owned
// exclusively by the module and must not be mutated.
func (m *Module) Config() any {
	return m.config
}

// Implementation returns the module's underlying implementation.
func (m *Module) Implementation() ServiceModule {
	return m.impl
}

// NestedModules returns the module's nested modules in order. The returned
// slice is a copy; the module's own list never changes after construction.
func (m *Module) NestedModules() []*Module {
	return append([]*Module(nil), m.nested...)
}

// Register contributes this module's service registrations to the
// container. It never descends into nested modules.
func (m *Module) Register(c Container) error {
	if c == nil {
		return ErrNilContainer
	}
	if err := m.impl.RegisterServices(c); err != nil {
		if m.selector != "" {
			return fmt.Errorf("register module %q: %w", m.selector, err)
		}
		return fmt.Errorf("register module: %w", err)
	}
	return nil
}

// Flatten produces the pre-order traversal of this module's tree: the module
// itself first, then each nested module's flattening, in nested-list order.
// Flattening is structural: an instance reachable through two parents
// appears twice, and no deduplication or sorting is performed.
func (m *Module) Flatten() []*Module {
	flat := []*Module{m}
	for _, nested := range m.nested {
		flat = append(flat, nested.Flatten()...)
	}
	return flat
}

// FlattenAll flattens each module in order and concatenates the results into
// one registration sequence.
func FlattenAll(modules []*Module) []*Module {
	var flat []*Module
	for _, m := range modules {
		if m == nil {
			continue
		}
		flat = append(flat, m.Flatten()...)
	}
	return flat
}
