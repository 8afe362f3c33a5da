package compose

import (
	"fmt"

	"github.com/GoCodeAlone/compose/conftree"
)

// ModuleFactory constructs a module implementation from its merged
// configuration section. Factories are registered per concrete module type
// and must be pure: same section in, same implementation out. The returned
// config value is the strongly typed configuration the implementation was
// constructed with; the serializer projects it back into documents.
type ModuleFactory func(cfg *conftree.Section, overrides ...ConfigOverride) (ServiceModule, any, error)

// ConfigOverride mutates a bound configuration value after binding and
// before construction. Component builders apply overrides for in-code
// adjustments that configuration documents cannot express. For factories
// built with FactoryOf the argument is the bound *T; for SectionFactory it
// is the merged *conftree.Section.
type ConfigOverride func(config any) error

// FactoryOf adapts a typed constructor into a ModuleFactory. The merged
// configuration section is bound into a fresh *T, overrides run against it,
// and the constructor receives the result.
//
// Example:
//
//	var Factory = compose.FactoryOf(func(cfg *Config) (compose.ServiceModule, error) {
//		return New(cfg)
//	})
func FactoryOf[T any](ctor func(*T) (ServiceModule, error)) ModuleFactory {
	return func(cfg *conftree.Section, overrides ...ConfigOverride) (ServiceModule, any, error) {
		target := new(T)
		if cfg != nil {
			if err := cfg.Bind(target); err != nil {
				return nil, nil, fmt.Errorf("bind configuration: %w", err)
			}
		}

		for _, override := range overrides {
			if err := override(target); err != nil {
				return nil, nil, fmt.Errorf("apply configuration override: %w", err)
			}
		}

		impl, err := ctor(target)
		if err != nil {
			return nil, nil, err
		}
		if impl == nil {
			return nil, nil, ErrImplementationNil
		}
		return impl, target, nil
	}
}

// SectionFactory adapts a constructor that consumes the merged configuration
// section directly, for implementations without a declared configuration
// shape. The module's configuration value becomes the section's map
// snapshot.
func SectionFactory(ctor func(cfg *conftree.Section) (ServiceModule, error)) ModuleFactory {
	return func(cfg *conftree.Section, overrides ...ConfigOverride) (ServiceModule, any, error) {
		if cfg == nil {
			cfg = conftree.New(nil)
		}

		for _, override := range overrides {
			if err := override(cfg); err != nil {
				return nil, nil, fmt.Errorf("apply configuration override: %w", err)
			}
		}

		impl, err := ctor(cfg)
		if err != nil {
			return nil, nil, err
		}
		if impl == nil {
			return nil, nil, ErrImplementationNil
		}
		return impl, cfg.Map(), nil
	}
}
