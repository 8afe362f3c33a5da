package compose

import (
	"fmt"
	"reflect"

	"github.com/GoCodeAlone/compose/conftree"
)

// DynamicResolver resolves type selectors outside the secure registry: the
// open, opt-in compatibility path. It is never consulted by default; hosts
// enable it explicitly through WithDynamicResolver, and only selectors the
// registry does not know reach it. Implementations decide what a name means:
// TypeCatalog validates registered constructors reflectively, and
// plugins.Resolver interprets Go plugin sources.
type DynamicResolver interface {
	// ResolveType yields a factory for the given type name. Unknown names
	// and shape-invalid constructors fail with ErrTypeResolutionFailed.
	ResolveType(name string) (ModuleFactory, error)
}

// TypeCatalog resolves qualified type names against registered constructor
// functions, validating their shape reflectively at resolution time. A
// constructor must take exactly one argument, either a pointer to its
// configuration struct or a *conftree.Section, and return a ServiceModule
// implementation, optionally with an error.
//
// Names are matched case-sensitively, as type names are.
type TypeCatalog struct {
	ctors map[string]any
}

// NewTypeCatalog creates an empty catalog.
func NewTypeCatalog() *TypeCatalog {
	return &TypeCatalog{ctors: make(map[string]any)}
}

// Add registers a constructor under a qualified type name and returns the
// catalog for chaining. Shape validation happens at resolution time.
func (c *TypeCatalog) Add(name string, ctor any) *TypeCatalog {
	c.ctors[name] = ctor
	return c
}

// ResolveType implements DynamicResolver.
func (c *TypeCatalog) ResolveType(name string) (ModuleFactory, error) {
	ctor, ok := c.ctors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTypeResolutionFailed, name)
	}
	return reflectiveFactory(name, ctor)
}

var (
	serviceModuleType = reflect.TypeOf((*ServiceModule)(nil)).Elem()
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
	sectionType       = reflect.TypeOf((*conftree.Section)(nil))
)

// reflectiveFactory validates the constructor's shape and wraps it in a
// ModuleFactory.
func reflectiveFactory(name string, ctor any) (ModuleFactory, error) {
	v := reflect.ValueOf(ctor)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %q is not a constructor function", ErrTypeResolutionFailed, name)
	}

	t := v.Type()
	if t.NumIn() != 1 {
		return nil, fmt.Errorf("%w: %q must take exactly one configuration argument", ErrTypeResolutionFailed, name)
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		return nil, fmt.Errorf("%w: %q must return a module, optionally with an error", ErrTypeResolutionFailed, name)
	}
	if !t.Out(0).Implements(serviceModuleType) {
		return nil, fmt.Errorf("%w: %q does not construct a service module", ErrTypeResolutionFailed, name)
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return nil, fmt.Errorf("%w: %q second return value must be error", ErrTypeResolutionFailed, name)
	}

	arg := t.In(0)
	switch {
	case arg == sectionType:
		return sectionArgFactory(v), nil
	case arg.Kind() == reflect.Ptr && arg.Elem().Kind() == reflect.Struct:
		return structArgFactory(v, arg.Elem()), nil
	default:
		return nil, fmt.Errorf("%w: %q argument must be a configuration struct pointer or *conftree.Section", ErrTypeResolutionFailed, name)
	}
}

func structArgFactory(ctor reflect.Value, configType reflect.Type) ModuleFactory {
	return func(cfg *conftree.Section, overrides ...ConfigOverride) (ServiceModule, any, error) {
		target := reflect.New(configType)
		if cfg != nil {
			if err := cfg.Bind(target.Interface()); err != nil {
				return nil, nil, fmt.Errorf("bind configuration: %w", err)
			}
		}
		for _, override := range overrides {
			if err := override(target.Interface()); err != nil {
				return nil, nil, fmt.Errorf("apply configuration override: %w", err)
			}
		}
		return callConstructor(ctor, target, target.Interface())
	}
}

func sectionArgFactory(ctor reflect.Value) ModuleFactory {
	return func(cfg *conftree.Section, overrides ...ConfigOverride) (ServiceModule, any, error) {
		if cfg == nil {
			cfg = conftree.New(nil)
		}
		for _, override := range overrides {
			if err := override(cfg); err != nil {
				return nil, nil, fmt.Errorf("apply configuration override: %w", err)
			}
		}
		return callConstructor(ctor, reflect.ValueOf(cfg), cfg.Map())
	}
}

func callConstructor(ctor, arg reflect.Value, config any) (ServiceModule, any, error) {
	results := ctor.Call([]reflect.Value{arg})
	if len(results) == 2 && !results[1].IsNil() {
		return nil, nil, results[1].Interface().(error)
	}

	implValue := results[0]
	switch implValue.Kind() {
	case reflect.Interface, reflect.Ptr:
		if implValue.IsNil() {
			return nil, nil, ErrImplementationNil
		}
	}

	impl, ok := implValue.Interface().(ServiceModule)
	if !ok {
		return nil, nil, ErrImplementationNil
	}
	return impl, config, nil
}
