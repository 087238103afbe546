package tree

// SearchResult is the outcome of a single-threaded reference search.
type SearchResult[T comparable] struct {
	Node    *Node[T]
	Visited int
}

func (r SearchResult[T]) Found() bool {
	return r.Node != nil
}

// DFS searches depth first, children in order, and stops at the first match.
func DFS[T comparable](root *Node[T], target T) SearchResult[T] {
	var out SearchResult[T]
	Walk(root, func(n *Node[T], _ int) bool {
		out.Visited++
		if n.Value == target {
			out.Node = n
			return false
		}
		return true
	})
	return out
}

// BFS searches level by level and stops at the first match.
func BFS[T comparable](root *Node[T], target T) SearchResult[T] {
	var out SearchResult[T]
	if root == nil {
		return out
	}
	queue := []*Node[T]{root}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		out.Visited++
		if n.Value == target {
			out.Node = n
			return out
		}
		for _, c := range n.Children {
			if c != nil {
				queue = append(queue, c)
			}
		}
	}
	return out
}
