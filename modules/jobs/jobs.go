// Package jobs provides a cron-backed scheduling module. Jobs declared in
// configuration are validated at construction time; the host attaches
// handlers to declared jobs through the registered scheduler service and
// drives its lifecycle.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/compose"
)

// ModuleType is the secure registry key for this module.
const ModuleType = "jobs"

// ServiceName is the container name the scheduler registers under.
const ServiceName = "jobs.scheduler"

var (
	ErrInvalidSchedule = errors.New("invalid cron schedule")
	ErrJobNameEmpty    = errors.New("job name cannot be empty")
	ErrJobNotDeclared  = errors.New("job not declared in configuration")
	ErrJobAttached     = errors.New("job already has a handler")
)

// JobConfig declares one scheduled job. Handlers are attached by name at
// runtime; configuration carries only the schedule.
type JobConfig struct {
	Name     string `mapstructure:"name" json:"name"`
	Schedule string `mapstructure:"schedule" json:"schedule"`
}

// Config configures the jobs module.
type Config struct {
	Jobs []JobConfig `mapstructure:"jobs" json:"jobs,omitempty"`
}

// Module validates declared jobs and registers a Scheduler service.
type Module struct {
	cfg       *Config
	scheduler *Scheduler
}

// New constructs the module, validating every declared job's cron schedule
// with the standard five-field parser.
func New(cfg *Config) (*Module, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	declared := make(map[string]string, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		if job.Name == "" {
			return nil, ErrJobNameEmpty
		}
		if _, err := cron.ParseStandard(job.Schedule); err != nil {
			return nil, fmt.Errorf("%w: job %q: %v", ErrInvalidSchedule, job.Name, err)
		}
		declared[job.Name] = job.Schedule
	}

	return &Module{
		cfg:       cfg,
		scheduler: newScheduler(declared),
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

// Default returns a jobs module with an empty configuration, the form other
// modules declare as a known dependency.
func Default() *compose.Module {
	impl, err := New(nil)
	if err != nil {
		return nil
	}
	module, err := compose.NewModule(impl, impl.cfg)
	if err != nil {
		return nil
	}
	return module
}

// ModuleType returns the module's canonical selector.
func (m *Module) ModuleType() string {
	return ModuleType
}

// RegisterServices implements compose.ServiceModule.
func (m *Module) RegisterServices(c compose.Container) error {
	return c.Register(ServiceName, m.scheduler)
}

// Scheduler returns the module's scheduler, mainly for tests.
func (m *Module) Scheduler() *Scheduler {
	return m.scheduler
}

// Scheduler wraps a cron runner. Declared jobs wait for a handler; ad hoc
// jobs can be added with an explicit schedule. Not safe for concurrent
// mutation; attach jobs during startup, then Start.
type Scheduler struct {
	cron     *cron.Cron
	declared map[string]string
	entries  map[string]cron.EntryID
}

func newScheduler(declared map[string]string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		declared: declared,
		entries:  make(map[string]cron.EntryID),
	}
}

// Attach binds a handler to a job declared in configuration.
func (s *Scheduler) Attach(name string, task func()) error {
	schedule, ok := s.declared[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrJobNotDeclared, name)
	}
	return s.add(name, schedule, task)
}

// Add schedules an ad hoc job under a new name.
func (s *Scheduler) Add(name, schedule string, task func()) error {
	if name == "" {
		return ErrJobNameEmpty
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("%w: job %q: %v", ErrInvalidSchedule, name, err)
	}
	return s.add(name, schedule, task)
}

func (s *Scheduler) add(name, schedule string, task func()) error {
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrJobAttached, name)
	}
	id, err := s.cron.AddFunc(schedule, task)
	if err != nil {
		return fmt.Errorf("%w: job %q: %v", ErrInvalidSchedule, name, err)
	}
	s.entries[name] = id
	return nil
}

// Remove drops a job. Removing an unknown name is a no-op.
func (s *Scheduler) Remove(name string) {
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

// Declared lists configuration-declared job names, sorted.
func (s *Scheduler) Declared() []string {
	names := make([]string, 0, len(s.declared))
	for name := range s.declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attached lists jobs with handlers, sorted.
func (s *Scheduler) Attached() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins running attached jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that completes when running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
