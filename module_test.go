package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(t *testing.T, typeName string, nested ...*Module) *Module {
	t.Helper()
	module, err := NewModule(&namedModule{typeName: typeName}, nil, nested...)
	require.NoError(t, err)
	return module
}

func selectors(modules []*Module) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Selector())
	}
	return out
}

func TestNewModuleRequiresImplementation(t *testing.T) {
	_, err := NewModule(nil, nil)
	assert.ErrorIs(t, err, ErrImplementationNil)
}

func TestNewModuleTakesSelectorFromTypeNamed(t *testing.T) {
	module, err := NewModule(&namedModule{typeName: "widget"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "widget", module.Selector())

	anonymous, err := NewModule(&recorderModule{}, nil)
	require.NoError(t, err)
	assert.Empty(t, anonymous.Selector())
}

func TestNewModuleAppendsKnownModulesAfterExplicit(t *testing.T) {
	known := named(t, "known")
	impl := &namedModule{typeName: "parent"}
	impl.known = []*Module{known}

	module, err := NewModule(impl, nil, named(t, "explicit-1"), named(t, "explicit-2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"explicit-1", "explicit-2", "known"}, selectors(module.NestedModules()))
}

func TestModuleFlattenLeaf(t *testing.T) {
	leaf := named(t, "leaf")
	flat := leaf.Flatten()

	require.Len(t, flat, 1)
	assert.Same(t, leaf, flat[0])
}

func TestModuleFlattenIsPreOrder(t *testing.T) {
	c := named(t, "c")
	b := named(t, "b", c)
	a := named(t, "a", b)

	assert.Equal(t, []string{"a", "b", "c"}, selectors(a.Flatten()))

	// Wider tree: children in nested-list order, each subtree complete
	// before the next sibling starts.
	e := named(t, "e")
	d := named(t, "d", e)
	root := named(t, "root", d, named(t, "f"))
	assert.Equal(t, []string{"root", "d", "e", "f"}, selectors(root.Flatten()))
}

func TestModuleFlattenKeepsDuplicates(t *testing.T) {
	shared := named(t, "shared")
	root := named(t, "root", named(t, "left", shared), named(t, "right", shared))

	flat := selectors(root.Flatten())
	assert.Equal(t, []string{"root", "left", "shared", "right", "shared"}, flat)
}

func TestFlattenAllConcatenates(t *testing.T) {
	first := named(t, "first", named(t, "first-child"))
	second := named(t, "second")

	flat := selectors(FlattenAll([]*Module{first, second}))
	assert.Equal(t, []string{"first", "first-child", "second"}, flat)
}

func TestModuleNestedModulesReturnsCopy(t *testing.T) {
	module := named(t, "parent", named(t, "child"))

	nested := module.NestedModules()
	nested[0] = nil

	again := module.NestedModules()
	require.Len(t, again, 1)
	assert.Equal(t, "child", again[0].Selector())
}

func TestModuleRegisterWrapsImplementationError(t *testing.T) {
	failure := errors.New("registration exploded")
	impl := &namedModule{typeName: "widget"}
	impl.failure = failure

	module, err := NewModule(impl, nil)
	require.NoError(t, err)

	err = module.Register(NewServiceRegistry())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "widget")
}

func TestModuleRegisterNilContainer(t *testing.T) {
	module := named(t, "widget")
	assert.ErrorIs(t, module.Register(nil), ErrNilContainer)
}

func TestModuleRegisterDoesNotDescend(t *testing.T) {
	childImpl := &namedModule{typeName: "child"}
	childImpl.name = "child-service"
	child, err := NewModule(childImpl, nil)
	require.NoError(t, err)

	parentImpl := &namedModule{typeName: "parent"}
	parentImpl.name = "parent-service"
	parent, err := NewModule(parentImpl, nil, child)
	require.NoError(t, err)

	services := NewServiceRegistry()
	require.NoError(t, parent.Register(services))

	assert.True(t, services.Has("parent-service"))
	assert.False(t, services.Has("child-service"))
}
