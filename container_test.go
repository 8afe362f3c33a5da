package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRegistryRegisterAndResolve(t *testing.T) {
	registry := NewServiceRegistry()
	require.NoError(t, registry.Register("greeter", "hello"))

	service, err := registry.Resolve("greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", service)
	assert.True(t, registry.Has("greeter"))
	assert.Equal(t, 1, registry.Len())
}

func TestServiceRegistryRejectsEmptyName(t *testing.T) {
	registry := NewServiceRegistry()
	assert.ErrorIs(t, registry.Register("", "value"), ErrServiceNameEmpty)
}

func TestServiceRegistryRejectsDuplicates(t *testing.T) {
	registry := NewServiceRegistry()
	require.NoError(t, registry.Register("svc", 1))

	err := registry.Register("svc", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceAlreadyRegistered)
	assert.Contains(t, err.Error(), "svc")

	service, err := registry.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, 1, service, "first registration wins")
}

func TestServiceRegistryResolveMissing(t *testing.T) {
	registry := NewServiceRegistry()
	_, err := registry.Resolve("absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.False(t, registry.Has("absent"))
}

func TestServiceRegistryNamesKeepRegistrationOrder(t *testing.T) {
	registry := NewServiceRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(name, name))
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, registry.Names())
}

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

func TestGetService(t *testing.T) {
	registry := NewServiceRegistry()
	require.NoError(t, registry.Register("count", 42))
	require.NoError(t, registry.Register("greeter", englishGreeter{}))

	count, err := GetService[int](registry, "count")
	require.NoError(t, err)
	assert.Equal(t, 42, count)

	g, err := GetService[greeter](registry, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
}

func TestGetServiceWrongType(t *testing.T) {
	registry := NewServiceRegistry()
	require.NoError(t, registry.Register("count", 42))

	_, err := GetService[string](registry, "count")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceWrongType)
	assert.Contains(t, err.Error(), "count is int")
}

func TestGetServiceMissing(t *testing.T) {
	_, err := GetService[int](NewServiceRegistry(), "absent")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestGetServiceNilContainer(t *testing.T) {
	_, err := GetService[int](nil, "svc")
	assert.ErrorIs(t, err, ErrNilContainer)
}
