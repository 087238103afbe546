// Package tree holds the n-ary tree searched by the engine, together with
// generators, sequential reference searches and an on-disk encoding.
package tree

// Node is a tree vertex. Its shape is fixed before a search begins and is
// never mutated by a search, so one tree can be shared by any number of
// concurrent or repeated runs.
type Node[T comparable] struct {
	Value    T
	Children []*Node[T]
}

func New[T comparable](value T, children ...*Node[T]) *Node[T] {
	return &Node[T]{
		Value:    value,
		Children: children,
	}
}

// AddChild appends child and returns n so construction can be chained.
func (n *Node[T]) AddChild(child *Node[T]) *Node[T] {
	n.Children = append(n.Children, child)
	return n
}

// Count returns the number of nodes reachable from n, including n.
func Count[T comparable](n *Node[T]) int {
	count := 0
	Walk(n, func(*Node[T], int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the number of edges on the longest root-to-leaf path.
// An empty tree has depth -1.
func Depth[T comparable](n *Node[T]) int {
	deepest := -1
	Walk(n, func(_ *Node[T], d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// Walk visits the tree in preorder, passing each node's depth. Returning
// false from fn stops the walk.
func Walk[T comparable](root *Node[T], fn func(n *Node[T], depth int) bool) {
	if root == nil {
		return
	}
	type frame struct {
		node  *Node[T]
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			return
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			if c := f.node.Children[i]; c != nil {
				stack = append(stack, frame{c, f.depth + 1})
			}
		}
	}
}
