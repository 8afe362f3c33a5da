// Package digcontainer adapts a go.uber.org/dig container to the
// compose.Container contract, so composed modules can register services
// straight into a dig object graph. Services land as named instances;
// constructors already provided on the dig side can depend on them with
// ordinary `name:"..."` tags.
package digcontainer

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/dig"

	"github.com/GoCodeAlone/compose"
)

// ErrNilService reports an instance that cannot be provided to dig because
// it carries no type information.
var ErrNilService = errors.New("cannot register nil service")

// Container bridges compose registrations into dig named providers. It
// tracks registered names itself; dig has no lookup API.
type Container struct {
	dig   *dig.Container
	types map[string]reflect.Type
}

// New wraps a dig container. A nil base gets a fresh container.
func New(base *dig.Container) *Container {
	if base == nil {
		base = dig.New()
	}
	return &Container{dig: base, types: make(map[string]reflect.Type)}
}

// Register provides the instance to dig under the given name. The provider
// is a synthesized zero-argument constructor returning the instance's
// concrete type, which keeps dig's graph typed without code generation.
func (c *Container) Register(name string, service any) error {
	if name == "" {
		return compose.ErrServiceNameEmpty
	}
	if service == nil {
		return fmt.Errorf("%w: %q", ErrNilService, name)
	}
	if _, exists := c.types[name]; exists {
		return fmt.Errorf("%w: %q", compose.ErrServiceAlreadyRegistered, name)
	}

	t := reflect.TypeOf(service)
	ctorType := reflect.FuncOf(nil, []reflect.Type{t}, false)
	ctor := reflect.MakeFunc(ctorType, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.ValueOf(service)}
	})

	if err := c.dig.Provide(ctor.Interface(), dig.Name(name)); err != nil {
		return fmt.Errorf("provide %q: %w", name, err)
	}
	c.types[name] = t
	return nil
}

// Resolve extracts the named instance from dig by invoking a synthesized
// function whose parameter struct embeds dig.In with a matching name tag.
func (c *Container) Resolve(name string) (any, error) {
	t, ok := c.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", compose.ErrServiceNotFound, name)
	}

	inType := reflect.StructOf([]reflect.StructField{
		{
			Name:      "In",
			Type:      reflect.TypeOf(dig.In{}),
			Anonymous: true,
		},
		{
			Name: "Service",
			Type: t,
			Tag:  reflect.StructTag(fmt.Sprintf(`name:%q`, name)),
		},
	})

	var service any
	fnType := reflect.FuncOf([]reflect.Type{inType}, nil, false)
	fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		service = args[0].Field(1).Interface()
		return nil
	})

	if err := c.dig.Invoke(fn.Interface()); err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	return service, nil
}

// Has reports whether a service was registered under the name.
func (c *Container) Has(name string) bool {
	_, ok := c.types[name]
	return ok
}

// Unwrap exposes the underlying dig container for providers and invokes
// that go beyond named instances.
func (c *Container) Unwrap() *dig.Container {
	return c.dig
}
