package compose

import (
	"fmt"
)

// Container is the engine's boundary with the dependency-injection
// container. The composition root calls exactly one operation per module,
// registering its services, and modules use the same surface to publish
// them.
//
// The engine ships two implementations: the map-backed ServiceRegistry in
// this package and the dig-backed adapter in the digcontainer package.
// Hosts with their own container satisfy this interface instead.
type Container interface {
	// Register adds a named service instance to the container.
	Register(name string, service any) error

	// Resolve returns the service registered under name.
	Resolve(name string) (any, error)

	// Has reports whether a service is registered under name.
	Has(name string) bool
}

// ServiceRegistry is the shipped map-backed Container. It preserves
// registration order for inspection and is not safe for concurrent use;
// composition passes are single-threaded by contract.
type ServiceRegistry struct {
	services map[string]any
	order    []string
}

// NewServiceRegistry creates an empty service registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]any)}
}

// Register adds a service to the registry. Registering a name twice fails
// with ErrServiceAlreadyRegistered.
func (r *ServiceRegistry) Register(name string, service any) error {
	if name == "" {
		return ErrServiceNameEmpty
	}
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrServiceAlreadyRegistered, name)
	}
	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// Resolve retrieves a service by name.
func (r *ServiceRegistry) Resolve(name string) (any, error) {
	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return service, nil
}

// Has reports whether a service is registered under name.
func (r *ServiceRegistry) Has(name string) bool {
	_, exists := r.services[name]
	return exists
}

// Names returns the registered service names in registration order.
func (r *ServiceRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered services.
func (r *ServiceRegistry) Len() int {
	return len(r.services)
}

// GetService resolves a named service from any Container and asserts its
// type.
func GetService[T any](c Container, name string) (T, error) {
	var zero T
	if c == nil {
		return zero, ErrNilContainer
	}

	service, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrServiceWrongType, name, service)
	}
	return typed, nil
}
