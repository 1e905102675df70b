package bvh

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/kerf/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
)

// Tree is a built bounding volume tree together with the parameters it was
// built with. It is immutable and safe for concurrent queries.
type Tree struct {
	Root     Node          `json:"root"`
	LeafSize int           `json:"leafSize"`
	MaxDepth int           `json:"maxDepth"`
	Axis     mesh.SortAxis `json:"axis"`

	mesh *mesh.Mesh
}

// Stats summarizes the realized shape of a tree.
type Stats struct {
	Nodes     int `json:"nodes"`
	Leaves    int `json:"leaves"`
	Depth     int `json:"depth"`
	Triangles int `json:"triangles"`
}

// Mesh returns the mesh the tree indexes.
func (t *Tree) Mesh() *mesh.Mesh {
	return t.mesh
}

// Bounds returns the root box, or the empty box for an empty tree.
func (t *Tree) Bounds() sdf.Box3 {
	if t == nil || t.Root == nil {
		return mesh.EmptyBox()
	}
	return t.Root.Bounds()
}

// Walk visits every node in pre-order, left before right, with its depth
// (the root is depth 0). Returning false from fn skips that node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	walk(t.Root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if in, ok := n.(*Internal); ok {
		walk(in.Left, depth+1, fn)
		walk(in.Right, depth+1, fn)
	}
}

// Leaves returns the leaves from left to right.
func (t *Tree) Leaves() []*Leaf {
	var leaves []*Leaf
	t.Walk(func(n Node, _ int) bool {
		if l, ok := n.(*Leaf); ok {
			leaves = append(leaves, l)
		}
		return true
	})
	return leaves
}

// Stats counts nodes, leaves and indexed triangles and reports the deepest
// node's depth.
func (t *Tree) Stats() Stats {
	var s Stats
	t.Walk(func(n Node, depth int) bool {
		s.Nodes++
		if depth > s.Depth {
			s.Depth = depth
		}
		if l, ok := n.(*Leaf); ok {
			s.Leaves++
			s.Triangles += len(l.Triangles)
		}
		return true
	})
	return s
}

// Overlapping returns the triangles whose own box intersects q. Subtrees
// whose box misses q are not visited. Results come in leaf order.
func (t *Tree) Overlapping(q sdf.Box3) []int {
	var out []int
	if mesh.IsEmptyBox(q) {
		return out
	}
	t.Walk(func(n Node, _ int) bool {
		if !mesh.Overlaps(n.Bounds(), q) {
			return false
		}
		if l, ok := n.(*Leaf); ok {
			for _, tri := range l.Triangles {
				if mesh.Overlaps(t.mesh.Triangle(tri).Bounds(), q) {
					out = append(out, tri)
				}
			}
		}
		return true
	})
	return out
}

// Dump writes an indented description of the tree to w.
func (t *Tree) Dump(w io.Writer) error {
	if t == nil || t.Root == nil {
		_, err := fmt.Fprintln(w, "BVH Tree: empty")
		return err
	}
	if _, err := fmt.Fprintf(w, "BVH Tree (max depth: %d, max triangles per leaf: %d):\n", t.MaxDepth, t.LeafSize); err != nil {
		return err
	}
	var err error
	t.Walk(func(n Node, depth int) bool {
		if err != nil {
			return false
		}
		indent := strings.Repeat("  ", depth)
		switch n := n.(type) {
		case *Leaf:
			_, err = fmt.Fprintf(w, "%sLeaf: %d triangles, bounds: %s\n", indent, len(n.Triangles), mesh.FormatBox(n.Box))
		case *Internal:
			_, err = fmt.Fprintf(w, "%sInternal: bounds: %s\n", indent, mesh.FormatBox(n.Box))
		}
		return true
	})
	return err
}
