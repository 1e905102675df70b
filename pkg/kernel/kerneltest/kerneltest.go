// Package kerneltest provides a fast kernel for tests. Solids are their
// bounding boxes and tessellate to 12 triangles.
package kerneltest

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/mesh/meshtest"
)

var _ kernel.Kernel = BoxKernel{}

// Solid is an axis-aligned box.
type Solid struct {
	Box sdf.Box3
}

// Bounds implements kernel.Solid.
func (s Solid) Bounds() sdf.Box3 { return s.Box }

// BoxKernel approximates every operation on bounding boxes: unions extend,
// differences keep the left operand, intersections clip.
type BoxKernel struct{}

func (BoxKernel) Name() string { return "box" }

func (BoxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := kernel.CheckDimensions("box", x, y, z); err != nil {
		return nil, err
	}
	return Solid{sdf.Box3{Max: v3.Vec{X: x, Y: y, Z: z}}}, nil
}

func (BoxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := kernel.CheckDimensions("cylinder", height, radius); err != nil {
		return nil, err
	}
	return Solid{sdf.Box3{
		Min: v3.Vec{X: -radius, Y: -radius, Z: -height / 2},
		Max: v3.Vec{X: radius, Y: radius, Z: height / 2},
	}}, nil
}

func (BoxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return Solid{a.Bounds().Extend(b.Bounds())}
}

func (BoxKernel) Difference(a, _ kernel.Solid) kernel.Solid { return a }

func (BoxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	x, y := a.Bounds(), b.Bounds()
	return Solid{sdf.Box3{
		Min: v3.Vec{X: math.Max(x.Min.X, y.Min.X), Y: math.Max(x.Min.Y, y.Min.Y), Z: math.Max(x.Min.Z, y.Min.Z)},
		Max: v3.Vec{X: math.Min(x.Max.X, y.Max.X), Y: math.Min(x.Max.Y, y.Max.Y), Z: math.Min(x.Max.Z, y.Max.Z)},
	}}
}

func (BoxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	d := v3.Vec{X: x, Y: y, Z: z}
	b := s.Bounds()
	return Solid{sdf.Box3{Min: b.Min.Add(d), Max: b.Max.Add(d)}}
}

// Rotate is the identity.
func (BoxKernel) Rotate(s kernel.Solid, _, _, _ float64) kernel.Solid { return s }

func (BoxKernel) ToMesh(s kernel.Solid, name string) (*mesh.Mesh, error) {
	b := s.Bounds()
	if mesh.IsEmptyBox(b) {
		return mesh.New(name, nil), nil
	}
	return mesh.New(name, meshtest.BoxTriangles(b.Min, b.Max)), nil
}
