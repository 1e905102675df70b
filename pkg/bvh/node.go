package bvh

import "github.com/deadsy/sdfx/sdf"

// Node is either a *Leaf or an *Internal. Each parent exclusively owns its
// children and a tree is never modified after Build returns.
type Node interface {
	// Bounds returns the tight box around everything below the node.
	Bounds() sdf.Box3

	node() // marker method restricting implementations to this package
}

// Leaf holds a non-empty group of triangle indices in sorted build order.
type Leaf struct {
	Box       sdf.Box3 `json:"box"`
	Triangles []int    `json:"triangles"`
}

// Internal has exactly two children. Its box is the union of theirs.
type Internal struct {
	Box   sdf.Box3 `json:"box"`
	Left  Node     `json:"left"`
	Right Node     `json:"right"`
}

func (l *Leaf) Bounds() sdf.Box3     { return l.Box }
func (n *Internal) Bounds() sdf.Box3 { return n.Box }

func (*Leaf) node()     {}
func (*Internal) node() {}
