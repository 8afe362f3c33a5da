package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoCodeAlone/compose/conftree"
)

// Descriptor keys understood by the module builder. All keys live at the
// same level of a descriptor; nested descriptors repeat the same shape.
const (
	KeyType                = "type"
	KeyConfiguration       = "configuration"
	KeyConfigurationSource = "configurationSource"
	KeyModules             = "modules"
	KeyModuleSources       = "moduleSources"
	KeyURIs                = "uris"
)

// mergeConfiguration resolves a descriptor's effective configuration:
// configurationSource groups are fetched and merged in list order, then
// inline configuration values are merged on top. Inline wins.
func mergeConfiguration(ctx context.Context, descriptor *conftree.Section, opts *buildOptions) (*conftree.Section, error) {
	inline, err := descriptor.Section(KeyConfiguration)
	switch {
	case err == nil:
	case errors.Is(err, conftree.ErrKeyNotFound):
		inline = conftree.New(nil)
	default:
		return nil, fmt.Errorf("%q: %w", KeyConfiguration, err)
	}

	groups, err := sourceGroups(descriptor, KeyConfigurationSource)
	if err != nil {
		if !errors.Is(err, ErrSectionNotDefined) {
			return nil, err
		}
		opts.logger.Debug("descriptor has no configuration sources", "key", KeyConfigurationSource)
		return inline, nil
	}

	sourced := conftree.New(nil)
	for _, group := range groups {
		subtree, err := fetchGroup(ctx, group, opts)
		if err != nil {
			return nil, err
		}
		if sourced, err = conftree.Merge(sourced, subtree); err != nil {
			return nil, err
		}
	}

	return conftree.Merge(sourced, inline)
}

// discoverNestedModules builds the explicitly supplied nested modules of a
// descriptor: direct "modules" entries first, then one module per
// "moduleSources" group. Known modules declared by the implementation are
// appended later by NewModule, not here. The result is ordered and never
// deduplicated.
func discoverNestedModules(ctx context.Context, descriptor *conftree.Section, opts *buildOptions) ([]*Module, error) {
	child := opts.child()

	direct, err := directModules(ctx, descriptor, child)
	if err != nil {
		return nil, err
	}
	sourced, err := sourcedModules(ctx, descriptor, child)
	if err != nil {
		return nil, err
	}
	return append(direct, sourced...), nil
}

func directModules(ctx context.Context, descriptor *conftree.Section, opts *buildOptions) ([]*Module, error) {
	nested, err := descriptor.Sections(KeyModules)
	if err != nil {
		if errors.Is(err, conftree.ErrKeyNotFound) {
			opts.logger.Debug("descriptor has no direct nested modules", "key", KeyModules)
			return nil, nil
		}
		return nil, fmt.Errorf("%q: %w", KeyModules, err)
	}

	modules := make([]*Module, 0, len(nested))
	for i, d := range nested {
		module, err := buildDescriptor(ctx, d, opts)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", KeyModules, i, err)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func sourcedModules(ctx context.Context, descriptor *conftree.Section, opts *buildOptions) ([]*Module, error) {
	groups, err := sourceGroups(descriptor, KeyModuleSources)
	if err != nil {
		if errors.Is(err, ErrSectionNotDefined) {
			opts.logger.Debug("descriptor has no sourced nested modules", "key", KeyModuleSources)
			return nil, nil
		}
		return nil, err
	}

	modules := make([]*Module, 0, len(groups))
	for i, group := range groups {
		nested, err := fetchGroup(ctx, group, opts)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", KeyModuleSources, i, err)
		}
		module, err := buildDescriptor(ctx, nested, opts)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", KeyModuleSources, i, err)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// buildDescriptor runs a nested descriptor through its own single-use
// builder.
func buildDescriptor(ctx context.Context, descriptor *conftree.Section, opts *buildOptions) (*Module, error) {
	builder, err := newModuleBuilder(ctx, descriptor, opts)
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx)
}

// sourceGroups reads a source list from the descriptor. Each entry is
// either a scalar URI string or a mapping with a "uris" list; each entry
// yields one group of locations. A missing key reports ErrSectionNotDefined
// so callers can treat it as empty.
func sourceGroups(descriptor *conftree.Section, key string) ([][]string, error) {
	raw, err := descriptor.List(key)
	if err != nil {
		if errors.Is(err, conftree.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrSectionNotDefined, key)
		}
		return nil, fmt.Errorf("%q: %w", key, err)
	}

	groups := make([][]string, 0, len(raw))
	for i, entry := range raw {
		group, err := sourceGroup(entry)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func sourceGroup(entry any) ([]string, error) {
	switch v := entry.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%w: empty uri", ErrSourceEntryInvalid)
		}
		return []string{v}, nil
	case map[string]any:
		rawURIs, ok := v[KeyURIs]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q list", ErrSourceEntryInvalid, KeyURIs)
		}
		list, ok := rawURIs.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be a list", ErrSourceEntryInvalid, KeyURIs)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %q is empty", ErrSourceEntryInvalid, KeyURIs)
		}
		uris := make([]string, 0, len(list))
		for _, item := range list {
			uri, ok := item.(string)
			if !ok || uri == "" {
				return nil, fmt.Errorf("%w: %q entries must be uri strings", ErrSourceEntryInvalid, KeyURIs)
			}
			uris = append(uris, uri)
		}
		return uris, nil
	default:
		return nil, fmt.Errorf("%w: entry must be a uri string or a %q mapping", ErrSourceEntryInvalid, KeyURIs)
	}
}

// fetchGroup retrieves every location in a group, parses each document by
// its path extension, and merges them in order. Later locations override
// earlier ones for the same key.
func fetchGroup(ctx context.Context, uris []string, opts *buildOptions) (*conftree.Section, error) {
	merged := conftree.New(nil)
	for _, uri := range uris {
		data, err := opts.fetcher.Fetch(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("fetch %q: %w", uri, err)
		}
		subtree, err := conftree.Parse(data, conftree.FormatForPath(uri))
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", uri, err)
		}
		opts.emit(ctx, EventTypeSourceFetched, map[string]any{"uri": uri}, nil)
		if merged, err = conftree.Merge(merged, subtree); err != nil {
			return nil, fmt.Errorf("merge %q: %w", uri, err)
		}
	}
	return merged, nil
}
