package compose

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GoCodeAlone/compose/conftree"
)

// SerializeOptions controls serializer output. Indent toggles whitespace
// only; the document shape never changes.
type SerializeOptions struct {
	Indent bool
}

// moduleDocument mirrors the descriptor shape a builder consumes, so that
// serialized output can be parsed and rebuilt. Field order matches the
// descriptor key table.
type moduleDocument struct {
	Type          string           `json:"type"`
	Configuration any              `json:"configuration,omitempty"`
	Modules       []moduleDocument `json:"modules,omitempty"`
}

// Serialize renders a module tree as a JSON descriptor. The output uses
// the same keys a builder reads, so Deserialize(Serialize(m)) reproduces
// the tree. Rebuilding re-appends implementation-declared known modules;
// round-trips are byte-identical for trees whose implementations declare
// none and that reference no external sources.
func Serialize(m *Module, opts SerializeOptions) (string, error) {
	doc, err := buildDocument(m)
	if err != nil {
		return "", err
	}
	return marshalDocument(doc, opts)
}

// SerializeAll renders several module trees as one document with a
// top-level "modules" array, the shape a composition root consumes.
func SerializeAll(modules []*Module, opts SerializeOptions) (string, error) {
	docs := make([]moduleDocument, 0, len(modules))
	for _, m := range modules {
		doc, err := buildDocument(m)
		if err != nil {
			return "", err
		}
		docs = append(docs, doc)
	}
	wrapper := struct {
		Modules []moduleDocument `json:"modules"`
	}{Modules: docs}
	return marshalDocument(wrapper, opts)
}

// Deserialize parses a JSON descriptor and rebuilds the module tree
// through the regular builder pipeline.
func Deserialize(ctx context.Context, data string, opts ...BuildOption) (*Module, error) {
	descriptor, err := conftree.ParseJSON([]byte(data))
	if err != nil {
		return nil, err
	}
	builder, err := CreateModuleBuilder(ctx, descriptor, opts...)
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx)
}

// DeserializeAll parses a document produced by SerializeAll and rebuilds
// every top-level module tree.
func DeserializeAll(ctx context.Context, data string, opts ...BuildOption) ([]*Module, error) {
	tree, err := conftree.ParseJSON([]byte(data))
	if err != nil {
		return nil, err
	}
	options, err := newBuildOptions(opts...)
	if err != nil {
		return nil, err
	}
	return directModules(ctx, tree, options)
}

func buildDocument(m *Module) (moduleDocument, error) {
	if m == nil {
		return moduleDocument{}, ErrModuleNil
	}
	selector := m.Selector()
	if selector == "" {
		return moduleDocument{}, fmt.Errorf("%w: %T", ErrSelectorUnknown, m.Implementation())
	}

	doc := moduleDocument{Type: selector, Configuration: m.Config()}
	for _, nested := range m.NestedModules() {
		child, err := buildDocument(nested)
		if err != nil {
			return moduleDocument{}, err
		}
		doc.Modules = append(doc.Modules, child)
	}
	return doc, nil
}

func marshalDocument(doc any, opts SerializeOptions) (string, error) {
	var (
		data []byte
		err  error
	)
	if opts.Indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("serialize module tree: %w", err)
	}
	return string(data), nil
}
