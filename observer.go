package compose

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer receives lifecycle events emitted while descriptors are resolved,
// modules are built, and compositions are registered. Events use the
// CloudEvents specification so they can be forwarded to external systems
// without translation. Observers should return quickly; a slow observer
// delays the build pipeline.
type Observer interface {
	// OnEvent is called for every event the observer subscribed to.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier used for registration
	// tracking and debugging.
	ObserverID() string
}

// FunctionalObserver adapts a plain function to the Observer interface.
type FunctionalObserver struct {
	id string
	fn func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver wraps fn as an Observer with the given id.
func NewFunctionalObserver(id string, fn func(ctx context.Context, event cloudevents.Event) error) *FunctionalObserver {
	return &FunctionalObserver{id: id, fn: fn}
}

// OnEvent implements Observer.
func (o *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return o.fn(ctx, event)
}

// ObserverID implements Observer.
func (o *FunctionalObserver) ObserverID() string {
	return o.id
}

// EventType constants for composition lifecycle events. Following the
// CloudEvents specification these use reverse domain notation.
const (
	// Resolution and build events
	EventTypeModuleResolved = "com.compose.module.resolved"
	EventTypeModuleBuilt    = "com.compose.module.built"
	EventTypeBuildFailed    = "com.compose.build.failed"

	// Registration events
	EventTypeModuleRegistered = "com.compose.module.registered"

	// Component lifecycle events
	EventTypeComponentBuilt    = "com.compose.component.built"
	EventTypeComponentDisposed = "com.compose.component.disposed"

	// Composition lifecycle events
	EventTypeCompositionInitialized = "com.compose.composition.initialized"
	EventTypeCompositionLoaded      = "com.compose.composition.loaded"
	EventTypeCompositionFailed      = "com.compose.composition.failed"

	// Source events
	EventTypeSourceFetched = "com.compose.source.fetched"
)

// EventSource is the default source attribute for events emitted by the
// composition engine itself.
const EventSource = "compose"
