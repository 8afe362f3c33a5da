package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/compose/conftree"
)

func TestTypeCatalogStructConstructor(t *testing.T) {
	catalog := NewTypeCatalog().Add("widget", func(cfg *testConfig) (ServiceModule, error) {
		return &recorderModule{cfg: cfg, name: "widget", value: cfg.TestValue}, nil
	})

	factory, err := catalog.ResolveType("widget")
	require.NoError(t, err)

	impl, config, err := factory(conftree.New(map[string]any{
		"TestValue":    "bound",
		"NumericValue": 7,
	}))
	require.NoError(t, err)

	module, ok := impl.(*recorderModule)
	require.True(t, ok)
	assert.Equal(t, "bound", module.cfg.TestValue)
	assert.Equal(t, 7, module.cfg.NumericValue)

	typed, ok := config.(*testConfig)
	require.True(t, ok)
	assert.Equal(t, "bound", typed.TestValue)
}

func TestTypeCatalogSectionConstructor(t *testing.T) {
	catalog := NewTypeCatalog().Add("raw", func(cfg *conftree.Section) (ServiceModule, error) {
		value, err := cfg.String("greeting")
		if err != nil {
			return nil, err
		}
		return &recorderModule{name: "raw", value: value}, nil
	})

	factory, err := catalog.ResolveType("raw")
	require.NoError(t, err)

	impl, config, err := factory(conftree.New(map[string]any{"greeting": "hello"}))
	require.NoError(t, err)

	services := NewServiceRegistry()
	require.NoError(t, impl.RegisterServices(services))
	got, err := services.Resolve("raw")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	values, ok := config.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", values["greeting"])
}

func TestTypeCatalogUnknownName(t *testing.T) {
	_, err := NewTypeCatalog().ResolveType("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeResolutionFailed)
	assert.Contains(t, err.Error(), "nope")
}

func TestTypeCatalogRejectsInvalidConstructorShapes(t *testing.T) {
	tests := []struct {
		name string
		ctor any
	}{
		{"not a function", 42},
		{"nil constructor", nil},
		{"two arguments", func(a, b *testConfig) (ServiceModule, error) { return nil, nil }},
		{"no arguments", func() (ServiceModule, error) { return nil, nil }},
		{"no returns", func(*testConfig) {}},
		{"three returns", func(*testConfig) (ServiceModule, any, error) { return nil, nil, nil }},
		{"first return not a module", func(*testConfig) (int, error) { return 0, nil }},
		{"second return not error", func(*testConfig) (ServiceModule, int) { return nil, 0 }},
		{"value argument", func(testConfig) (ServiceModule, error) { return nil, nil }},
		{"pointer to non-struct", func(*int) (ServiceModule, error) { return nil, nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			catalog := NewTypeCatalog().Add("bad", tc.ctor)
			_, err := catalog.ResolveType("bad")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTypeResolutionFailed)
		})
	}
}

func TestTypeCatalogConstructorErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	catalog := NewTypeCatalog().Add("widget", func(*testConfig) (ServiceModule, error) {
		return nil, boom
	})

	factory, err := catalog.ResolveType("widget")
	require.NoError(t, err)

	_, _, err = factory(conftree.New(nil))
	assert.ErrorIs(t, err, boom)
}

func TestTypeCatalogNilImplementation(t *testing.T) {
	catalog := NewTypeCatalog().Add("widget", func(*testConfig) (ServiceModule, error) {
		return nil, nil
	})

	factory, err := catalog.ResolveType("widget")
	require.NoError(t, err)

	_, _, err = factory(conftree.New(nil))
	assert.ErrorIs(t, err, ErrImplementationNil)
}

func TestTypeCatalogOverridesRunAfterBinding(t *testing.T) {
	catalog := NewTypeCatalog().Add("widget", func(cfg *testConfig) (ServiceModule, error) {
		return &recorderModule{cfg: cfg}, nil
	})

	factory, err := catalog.ResolveType("widget")
	require.NoError(t, err)

	bump := func(config any) error {
		config.(*testConfig).NumericValue++
		return nil
	}

	impl, _, err := factory(conftree.New(map[string]any{"NumericValue": 10}), bump)
	require.NoError(t, err)
	assert.Equal(t, 11, impl.(*recorderModule).cfg.NumericValue)
}
