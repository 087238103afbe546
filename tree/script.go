package tree

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// RootVariable is the global a tree script must bind to its root node.
const RootVariable = "root"

// scriptNode is the Starlark value returned by the node() builtin.
type scriptNode struct {
	node     *Node[int64]
	attached bool
}

var _ starlark.Value = (*scriptNode)(nil)

func (s *scriptNode) String() string        { return fmt.Sprintf("node(%d)", s.node.Value) }
func (s *scriptNode) Type() string          { return "node" }
func (s *scriptNode) Freeze()               {}
func (s *scriptNode) Truth() starlark.Bool  { return starlark.True }
func (s *scriptNode) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: node") }

// node(value, *children) builds one vertex. A node may be passed as a child
// at most once, which keeps scripts from describing anything but a tree.
func nodeBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("%s: missing value", b.Name())
	}
	i, ok := args[0].(starlark.Int)
	if !ok {
		return nil, fmt.Errorf("%s: value must be int, got %s", b.Name(), args[0].Type())
	}
	v, ok := i.Int64()
	if !ok {
		return nil, fmt.Errorf("%s: value %s overflows int64", b.Name(), i)
	}
	n := &scriptNode{node: &Node[int64]{Value: v}}
	for _, arg := range args[1:] {
		child, err := asChild(b.Name(), arg)
		if err != nil {
			return nil, err
		}
		n.node.AddChild(child)
	}
	return n, nil
}

func asChild(name string, v starlark.Value) (*Node[int64], error) {
	child, ok := v.(*scriptNode)
	if !ok {
		return nil, fmt.Errorf("%s: child must be node, got %s", name, v.Type())
	}
	if child.attached {
		return nil, fmt.Errorf("%s: %s already has a parent", name, child)
	}
	child.attached = true
	return child.node, nil
}

// LoadScript executes a Starlark tree description and returns the tree bound
// to the global "root". src follows starlark.ExecFile: nil reads filename.
//
//	leaves = [node(i) for i in range(3, 6)]
//	root = node(1, node(2, *leaves))
func LoadScript(filename string, src any) (*Node[int64], error) {
	thread := &starlark.Thread{Name: "tree:" + filename}
	predeclared := starlark.StringDict{
		"node": starlark.NewBuiltin("node", nodeBuiltin),
	}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("executing tree script %s: %w", filename, err)
	}
	v, ok := globals[RootVariable]
	if !ok {
		return nil, fmt.Errorf("tree script %s: no %q defined", filename, RootVariable)
	}
	if v == starlark.None {
		return nil, nil
	}
	root, ok := v.(*scriptNode)
	if !ok {
		return nil, fmt.Errorf("tree script %s: %q must be node, got %s", filename, RootVariable, v.Type())
	}
	return root.node, nil
}
