// Package plugins implements open-mode type resolution over interpreted Go
// sources. A Resolver evaluates every .go file in a plugin directory with
// yaegi and resolves type selectors to constructor functions declared in
// them. Plugin files must declare package main and expose constructors with
// the shape
//
//	func(config map[string]any) (services map[string]any, err error)
//
// The returned services are registered verbatim into the container when the
// resulting module loads. Only plain values cross the interpreter boundary,
// which keeps plugin code free of engine imports.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/GoCodeAlone/compose"
	"github.com/GoCodeAlone/compose/conftree"
)

// ErrLoadFailed reports that the plugin directory could not be read or one
// of its sources could not be interpreted.
var ErrLoadFailed = errors.New("plugin load failed")

const constructorShape = "func(map[string]any) (map[string]any, error)"

var (
	configMapType = reflect.TypeOf(map[string]any(nil))
	errType       = reflect.TypeOf((*error)(nil)).Elem()
)

// Resolver is a compose.DynamicResolver backed by interpreted plugin
// sources. Sources load lazily on first resolution; each file gets its own
// interpreter so plugins cannot collide on symbol names. Load failures are
// remembered and reported on every subsequent resolution.
type Resolver struct {
	dir     string
	logger  compose.Logger
	symbols []interp.Exports
	units   []unit
	loaded  bool
	loadErr error
}

type unit struct {
	path   string
	interp *interp.Interpreter
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(logger compose.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSymbols exposes additional symbol tables to interpreted sources,
// alongside the standard library.
func WithSymbols(symbols interp.Exports) Option {
	return func(r *Resolver) {
		r.symbols = append(r.symbols, symbols)
	}
}

// NewResolver creates a resolver over the given plugin directory.
func NewResolver(dir string, opts ...Option) *Resolver {
	r := &Resolver{dir: dir, logger: compose.NoopLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveType implements compose.DynamicResolver. The name is looked up as
// a bare symbol in every loaded source, in path order; the first source
// defining it wins.
func (r *Resolver) ResolveType(name string) (compose.ModuleFactory, error) {
	if err := r.load(); err != nil {
		return nil, err
	}

	for _, u := range r.units {
		value, err := u.interp.Eval(name)
		if err != nil || !value.IsValid() {
			continue
		}
		factory, err := constructorFactory(name, value)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("resolved plugin constructor", "name", name, "path", u.path)
		return factory, nil
	}
	return nil, fmt.Errorf("%w: no plugin source defines %q", compose.ErrTypeResolutionFailed, name)
}

func (r *Resolver) load() error {
	if r.loaded {
		return r.loadErr
	}
	r.loaded = true
	r.loadErr = r.scan()
	return r.loadErr
}

func (r *Resolver) scan() error {
	dir := strings.TrimSpace(r.dir)
	if dir == "" {
		return fmt.Errorf("%w: no plugin directory configured", ErrLoadFailed)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrLoadFailed, dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		u, err := r.interpret(path)
		if err != nil {
			return err
		}
		r.units = append(r.units, u)
		r.logger.Debug("interpreted plugin source", "path", path)
	}
	return nil
}

func (r *Resolver) interpret(path string) (unit, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return unit{}, fmt.Errorf("%w: stdlib symbols: %v", ErrLoadFailed, err)
	}
	for _, symbols := range r.symbols {
		if err := i.Use(symbols); err != nil {
			return unit{}, fmt.Errorf("%w: host symbols: %v", ErrLoadFailed, err)
		}
	}
	if _, err := i.EvalPath(path); err != nil {
		return unit{}, fmt.Errorf("%w: interpret %s: %v", ErrLoadFailed, path, err)
	}
	return unit{path: path, interp: i}, nil
}

// constructorFactory validates the constructor's shape and wraps it as a
// module factory producing an InterpretedModule.
func constructorFactory(name string, value reflect.Value) (compose.ModuleFactory, error) {
	t := value.Type()
	shapeOK := value.Kind() == reflect.Func &&
		t.NumIn() == 1 && t.In(0) == configMapType &&
		t.NumOut() == 2 && t.Out(0) == configMapType && t.Out(1) == errType
	if !shapeOK {
		return nil, fmt.Errorf("%w: %q must be %s", compose.ErrTypeResolutionFailed, name, constructorShape)
	}

	return func(cfg *conftree.Section, overrides ...compose.ConfigOverride) (compose.ServiceModule, any, error) {
		values := map[string]any{}
		if cfg != nil {
			values = cfg.Map()
		}
		for _, override := range overrides {
			if err := override(values); err != nil {
				return nil, nil, fmt.Errorf("apply configuration override: %w", err)
			}
		}

		results := value.Call([]reflect.Value{reflect.ValueOf(values)})
		if !results[1].IsNil() {
			return nil, nil, results[1].Interface().(error)
		}
		services, _ := results[0].Interface().(map[string]any)
		return &InterpretedModule{typeName: name, services: services}, values, nil
	}, nil
}

// InterpretedModule exposes the services a plugin constructor produced. It
// registers them under their returned names, in sorted order so loads are
// deterministic.
type InterpretedModule struct {
	typeName string
	services map[string]any
}

// ModuleType returns the constructor name the module was resolved from.
func (m *InterpretedModule) ModuleType() string {
	return m.typeName
}

// RegisterServices implements compose.ServiceModule.
func (m *InterpretedModule) RegisterServices(c compose.Container) error {
	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.Register(name, m.services[name]); err != nil {
			return err
		}
	}
	return nil
}

// Services returns a copy of the plugin's service map.
func (m *InterpretedModule) Services() map[string]any {
	out := make(map[string]any, len(m.services))
	for name, service := range m.services {
		out[name] = service
	}
	return out
}
