// Package httpapi provides an HTTP API module built on the chi router. It
// registers a router and a ready-to-run server as services and declares the
// jobs module as a known dependency, so composing an API brings scheduling
// along.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoCodeAlone/compose"
	"github.com/GoCodeAlone/compose/modules/jobs"
)

// ModuleType is the secure registry key for this module.
const ModuleType = "httpapi"

// Service names registered by the module.
const (
	RouterServiceName = "httpapi.router"
	ServerServiceName = "httpapi.server"
)

// ErrInvalidTimeout reports a negative request timeout.
var ErrInvalidTimeout = errors.New("request timeout cannot be negative")

// Config configures the HTTP API module.
type Config struct {
	// Address is the listen address for the server. Default ":8080".
	Address string `mapstructure:"address" json:"address,omitempty"`

	// BasePath mounts the API under a path prefix, e.g. "/api/v1".
	BasePath string `mapstructure:"basepath" json:"basepath,omitempty"`

	// Timeout is the per-request timeout in milliseconds. Zero disables it.
	Timeout int `mapstructure:"timeout" json:"timeout,omitempty"`
}

// Module wires a chi router and an http.Server into the container.
type Module struct {
	cfg     *Config
	router  chi.Router
	handler http.Handler
	server  *http.Server
}

// New constructs the module. The router carries chi's RequestID, RealIP and
// Recoverer middleware, plus a timeout when configured, and serves a
// liveness probe on GET /healthz.
func New(cfg *Config) (*Module, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTimeout, cfg.Timeout)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	if cfg.Timeout > 0 {
		router.Use(middleware.Timeout(time.Duration(cfg.Timeout) * time.Millisecond))
	}
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var handler http.Handler = router
	if cfg.BasePath != "" {
		outer := chi.NewRouter()
		outer.Mount(cfg.BasePath, router)
		handler = outer
	}

	return &Module{
		cfg:     cfg,
		router:  router,
		handler: handler,
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Factory builds the module from a bound Config. Hosts register it under
// ModuleType in their registry.
var Factory = compose.FactoryOf(func(cfg *Config) (compose.ServiceModule, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
})

// ModuleType returns the module's canonical selector.
func (m *Module) ModuleType() string {
	return ModuleType
}

// KnownModules declares the jobs module as a hard-coded dependency.
func (m *Module) KnownModules() []*compose.Module {
	return []*compose.Module{jobs.Default()}
}

// RegisterServices implements compose.ServiceModule.
func (m *Module) RegisterServices(c compose.Container) error {
	if err := c.Register(RouterServiceName, m.router); err != nil {
		return err
	}
	return c.Register(ServerServiceName, m.server)
}

// Router returns the inner router for route registration.
func (m *Module) Router() chi.Router {
	return m.router
}

// Handler returns the served handler, including any base path mount.
func (m *Module) Handler() http.Handler {
	return m.handler
}
