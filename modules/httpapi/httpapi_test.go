package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/compose"
	"github.com/GoCodeAlone/compose/conftree"
	"github.com/GoCodeAlone/compose/modules/jobs"
)

func TestNewDefaults(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, ModuleType, m.ModuleType())
}

func TestNewRejectsNegativeTimeout(t *testing.T) {
	_, err := New(&Config{Timeout: -1})
	assert.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestHealthzProbe(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBasePathMountsRouter(t *testing.T) {
	m, err := New(&Config{BasePath: "/api/v1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "unprefixed paths are not served")
}

func TestRouterAcceptsRoutes(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.Router().Get("/widgets", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("widget list"))
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "widget list", rec.Body.String())
}

func TestRegisterServices(t *testing.T) {
	m, err := New(&Config{Address: ":9999"})
	require.NoError(t, err)

	services := compose.NewServiceRegistry()
	require.NoError(t, m.RegisterServices(services))

	router, err := compose.GetService[chi.Router](services, RouterServiceName)
	require.NoError(t, err)
	assert.NotNil(t, router)

	server, err := compose.GetService[*http.Server](services, ServerServiceName)
	require.NoError(t, err)
	assert.Equal(t, ":9999", server.Addr)
}

func TestKnownModulesDeclareJobs(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	known := m.KnownModules()
	require.Len(t, known, 1)
	assert.Equal(t, jobs.ModuleType, known[0].Selector())
}

func TestFactoryBindsConfiguration(t *testing.T) {
	cfg := conftree.New(map[string]any{
		"address":  ":7777",
		"basepath": "/api",
		"timeout":  250,
	})

	impl, bound, err := Factory(cfg)
	require.NoError(t, err)

	m, ok := impl.(*Module)
	require.True(t, ok)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	config, ok := bound.(*Config)
	require.True(t, ok)
	assert.Equal(t, ":7777", config.Address)
	assert.Equal(t, 250, config.Timeout)
}

func TestBuiltFromDescriptorBringsScheduling(t *testing.T) {
	registry := compose.NewTypeRegistry()
	require.NoError(t, registry.Register(
		compose.RegistryEntry{Key: ModuleType, Factory: Factory},
	))

	desc := conftree.New(map[string]any{
		"type":          ModuleType,
		"configuration": map[string]any{"address": ":8088"},
	})

	builder, err := compose.CreateModuleBuilder(context.Background(), desc, compose.WithRegistry(registry))
	require.NoError(t, err)

	module, err := builder.Build(context.Background())
	require.NoError(t, err)

	services := compose.NewServiceRegistry()
	for _, m := range module.Flatten() {
		require.NoError(t, m.Register(services))
	}

	assert.True(t, services.Has(RouterServiceName))
	assert.True(t, services.Has(ServerServiceName))
	assert.True(t, services.Has(jobs.ServiceName), "known jobs module registers its scheduler")
}
