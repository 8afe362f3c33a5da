package compose

import (
	"fmt"
	"strings"
)

// RegistryEntry pairs a module key with the factory that builds it.
type RegistryEntry struct {
	Key     string
	Factory ModuleFactory
}

// TypeRegistry is the secure-mode type resolver: a case-insensitive table
// mapping module keys to factories that were linked into the binary. Unlike
// open-mode resolution it can never be steered into arbitrary code by
// untrusted configuration; only registered factories ever run.
//
// The internal table materializes lazily on the first resolution. Until
// then the registry accepts external batches through Register; afterwards
// registration fails with ErrRegistrationWindowClosed. The window closure is
// a one-way latch, not a lock: hosts must register during single-threaded
// startup, before any resolution is attempted.
type TypeRegistry struct {
	pending []RegistryEntry
	table   map[string]ModuleFactory
}

// NewTypeRegistry creates an empty registry with an open registration
// window.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{}
}

// Register adds a batch of entries to the registry. The whole batch is
// validated before any entry is applied: keys must be non-empty and unique
// case-insensitively, factories non-nil. Registration after the first
// resolution fails with ErrRegistrationWindowClosed.
func (r *TypeRegistry) Register(entries ...RegistryEntry) error {
	if r.table != nil {
		return ErrRegistrationWindowClosed
	}

	seen := make(map[string]struct{}, len(r.pending)+len(entries))
	for _, existing := range r.pending {
		seen[strings.ToLower(existing.Key)] = struct{}{}
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) == "" {
			return ErrEmptyModuleKey
		}
		if entry.Factory == nil {
			return fmt.Errorf("%w: %s", ErrNilModuleFactory, entry.Key)
		}
		key := strings.ToLower(entry.Key)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateModuleKey, entry.Key)
		}
		seen[key] = struct{}{}
	}

	r.pending = append(r.pending, entries...)
	return nil
}

// Resolve looks up a selector case-insensitively. The first call
// materializes the factory table and closes the registration window
// permanently. An unknown selector fails with ErrUnknownModuleKey.
func (r *TypeRegistry) Resolve(selector string) (ModuleFactory, error) {
	if r.table == nil {
		r.materialize()
	}

	factory, ok := r.table[strings.ToLower(selector)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModuleKey, selector)
	}
	return factory, nil
}

func (r *TypeRegistry) materialize() {
	table := make(map[string]ModuleFactory, len(r.pending))
	for _, entry := range r.pending {
		table[strings.ToLower(entry.Key)] = entry.Factory
	}
	r.table = table
	r.pending = nil
}

// Len returns the number of registered keys without materializing the
// table.
func (r *TypeRegistry) Len() int {
	if r.table != nil {
		return len(r.table)
	}
	return len(r.pending)
}

// Materialized reports whether a resolution has occurred and the
// registration window is closed.
func (r *TypeRegistry) Materialized() bool {
	return r.table != nil
}

var defaultRegistry = NewTypeRegistry()

// DefaultRegistry returns the process-wide registry. Compile-time-enumerated
// module types register here at startup; builders fall back to it when no
// registry is configured explicitly.
func DefaultRegistry() *TypeRegistry {
	return defaultRegistry
}

// RegisterModuleType adds one (key, factory) pair to the default registry.
// Call during single-threaded startup, before any resolution.
func RegisterModuleType(key string, factory ModuleFactory) error {
	return defaultRegistry.Register(RegistryEntry{Key: key, Factory: factory})
}
