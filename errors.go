package compose

import (
	"errors"
)

// Engine errors
var (
	// Type resolution errors
	ErrUnknownModuleKey         = errors.New("unknown module key")
	ErrTypeResolutionFailed     = errors.New("type resolution failed")
	ErrRegistrationWindowClosed = errors.New("registry registration window closed")
	ErrEmptyModuleKey           = errors.New("module key cannot be empty")
	ErrNilModuleFactory         = errors.New("module factory cannot be nil")
	ErrDuplicateModuleKey       = errors.New("module key already registered")
	ErrNoResolverConfigured     = errors.New("no type resolver configured")

	// Module descriptor errors
	ErrDescriptorNil      = errors.New("module descriptor is nil")
	ErrSelectorMissing    = errors.New("module descriptor has no type selector")
	ErrSectionNotDefined  = errors.New("section not defined")
	ErrSourceEntryInvalid = errors.New("source entry must be a uri string or a uris list")

	// Builder errors
	ErrBuilderDisposed    = errors.New("builder already consumed or disposed")
	ErrConstructionFailed = errors.New("module construction failed")
	ErrImplementationNil  = errors.New("module implementation is nil")

	// Component errors
	ErrComponentDisposed = errors.New("component is disposed")
	ErrComponentNil      = errors.New("component is nil")
	ErrComponentBuildNil = errors.New("component build function is nil")

	// Composition errors
	ErrComposerNotInitialized = errors.New("composer not initialized")
	ErrNilContainer           = errors.New("container is nil")

	// Service registry errors
	ErrServiceNameEmpty         = errors.New("service name cannot be empty")
	ErrServiceAlreadyRegistered = errors.New("service already registered")
	ErrServiceNotFound          = errors.New("service not found")
	ErrServiceWrongType         = errors.New("service doesn't satisfy required type")

	// Serializer errors
	ErrModuleNil       = errors.New("module is nil")
	ErrSelectorUnknown = errors.New("module has no canonical type selector")
)
