package compose

import (
	"testing"

	"github.com/GoCodeAlone/compose/conftree"
)

// testConfig is the configuration shape bound by most test factories.
type testConfig struct {
	TestValue    string
	NumericValue int
}

// recorderModule is a minimal ServiceModule. It registers one service when
// a name is set and declares known modules when given any.
type recorderModule struct {
	cfg     *testConfig
	name    string
	value   any
	failure error
	known   []*Module
}

func (m *recorderModule) RegisterServices(c Container) error {
	if m.failure != nil {
		return m.failure
	}
	if m.name == "" {
		return nil
	}
	return c.Register(m.name, m.value)
}

func (m *recorderModule) KnownModules() []*Module {
	return m.known
}

// namedModule carries a canonical selector for modules constructed outside
// the builder.
type namedModule struct {
	recorderModule
	typeName string
}

func (m *namedModule) ModuleType() string {
	return m.typeName
}

// testFactory builds a recorderModule registering the bound TestValue under
// serviceName.
func testFactory(serviceName string) ModuleFactory {
	return FactoryOf(func(cfg *testConfig) (ServiceModule, error) {
		return &recorderModule{cfg: cfg, name: serviceName, value: cfg.TestValue}, nil
	})
}

// newTestRegistry creates a fresh registry so tests never race the
// process-wide default registry's registration window.
func newTestRegistry(t *testing.T, entries ...RegistryEntry) *TypeRegistry {
	t.Helper()
	registry := NewTypeRegistry()
	if len(entries) > 0 {
		if err := registry.Register(entries...); err != nil {
			t.Fatalf("register test entries: %v", err)
		}
	}
	return registry
}

// descriptor builds a module descriptor section in-code.
func descriptor(selector string, cfg map[string]any) *conftree.Section {
	values := map[string]any{}
	if selector != "" {
		values[KeyType] = selector
	}
	if cfg != nil {
		values[KeyConfiguration] = cfg
	}
	return conftree.New(values)
}

// runFactory invokes a factory and registers the resulting module's
// services into a fresh registry, failing the test on any error.
func runFactory(t *testing.T, factory ModuleFactory, cfg *conftree.Section) *ServiceRegistry {
	t.Helper()
	impl, _, err := factory(cfg)
	if err != nil {
		t.Fatalf("run factory: %v", err)
	}
	services := NewServiceRegistry()
	if err := impl.RegisterServices(services); err != nil {
		t.Fatalf("register services: %v", err)
	}
	return services
}

// testLogger routes engine logs into the test output.
type testLogger struct {
	t *testing.T
}

func (l *testLogger) Info(msg string, args ...any)  { l.t.Log("INFO", msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.t.Log("ERROR", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.t.Log("WARN", msg, args) }
func (l *testLogger) Debug(msg string, args ...any) { l.t.Log("DEBUG", msg, args) }
