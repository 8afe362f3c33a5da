package compose

import (
	"errors"
	"fmt"
)

// TypeResolver maps a module type selector from a descriptor to the factory
// that constructs the module. It composes the two resolution modes: the
// secure registry is consulted first whenever it holds any registrations,
// and the dynamic resolver, when one was opted in, handles only selectors
// the registry does not know. Without a dynamic resolver a registry miss is
// final and reports ErrUnknownModuleKey.
type TypeResolver struct {
	registry *TypeRegistry
	dynamic  DynamicResolver
	logger   Logger
}

// NewTypeResolver builds a resolver over the given registry and optional
// dynamic fallback. Either may be nil, but not both.
func NewTypeResolver(registry *TypeRegistry, dynamic DynamicResolver, logger Logger) (*TypeResolver, error) {
	if registry == nil && dynamic == nil {
		return nil, ErrNoResolverConfigured
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &TypeResolver{registry: registry, dynamic: dynamic, logger: logger}, nil
}

// Resolve returns the factory for the selector.
func (r *TypeResolver) Resolve(selector string) (ModuleFactory, error) {
	if selector == "" {
		return nil, ErrSelectorMissing
	}

	// Len does not materialize the registry, so a dynamic-only setup that
	// never registered secure keys leaves the registration window open.
	if r.registry != nil && r.registry.Len() > 0 {
		factory, err := r.registry.Resolve(selector)
		if err == nil {
			return factory, nil
		}
		if !errors.Is(err, ErrUnknownModuleKey) || r.dynamic == nil {
			return nil, err
		}
		r.logger.Debug("selector not in registry, trying dynamic resolution", "selector", selector)
	}

	if r.dynamic != nil {
		return r.dynamic.ResolveType(selector)
	}

	if r.registry != nil {
		return r.registry.Resolve(selector)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModuleKey, selector)
}
