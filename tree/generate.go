package tree

import (
	"math/rand"
)

// Generator builds integer trees whose values are assigned in creation
// order, counting up from zero across every tree it builds.
type Generator struct {
	rng  *rand.Rand
	next int64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Created reports how many nodes this generator has produced so far.
func (g *Generator) Created() int64 {
	return g.next
}

func (g *Generator) newNode() *Node[int64] {
	n := &Node[int64]{Value: g.next}
	g.next++
	return n
}

// Balanced returns a complete tree of the given depth in which every
// internal node has branching children. depth 0 is a single node.
func (g *Generator) Balanced(depth, branching int) *Node[int64] {
	n := g.newNode()
	if depth <= 0 {
		return n
	}
	for i := 0; i < branching; i++ {
		n.AddChild(g.Balanced(depth-1, branching))
	}
	return n
}

// Random returns a tree of at most maxNodes nodes grown level by level:
// each node draws its child count uniformly from [minChildren, maxChildren]
// until maxNodes have been created or no node is left to expand. Values are
// assigned in level order.
func (g *Generator) Random(maxNodes, minChildren, maxChildren int) *Node[int64] {
	if maxNodes <= 0 {
		return nil
	}
	if minChildren < 0 {
		minChildren = 0
	}
	if maxChildren < minChildren {
		maxChildren = minChildren
	}
	root := g.newNode()
	created := 1
	queue := []*Node[int64]{root}
	for head := 0; head < len(queue) && created < maxNodes; head++ {
		n := queue[head]
		count := minChildren + g.rng.Intn(maxChildren-minChildren+1)
		for i := 0; i < count && created < maxNodes; i++ {
			c := g.newNode()
			created++
			n.AddChild(c)
			queue = append(queue, c)
		}
	}
	return root
}

// Skewed returns a tree with one deep spine of the given depth where every
// spine node also carries two or three leaves.
func (g *Generator) Skewed(depth int) *Node[int64] {
	n := g.newNode()
	if depth <= 0 {
		return n
	}
	n.AddChild(g.Skewed(depth - 1))
	leaves := 2 + g.rng.Intn(2)
	for i := 0; i < leaves; i++ {
		n.AddChild(g.newNode())
	}
	return n
}

// Sample returns the small fixed demo tree:
//
//	1
//	├── 2
//	│   ├── 5
//	│   │   └── 10
//	│   └── 6
//	├── 3
//	│   ├── 7
//	│   │   └── 11
//	│   └── 8
//	└── 4
//	    └── 9
func Sample() *Node[int64] {
	return New[int64](1,
		New[int64](2,
			New[int64](5, New[int64](10)),
			New[int64](6),
		),
		New[int64](3,
			New[int64](7, New[int64](11)),
			New[int64](8),
		),
		New[int64](4, New[int64](9)),
	)
}
