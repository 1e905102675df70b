// Package sdfx implements kernel.Kernel on top of the github.com/deadsy/sdfx
// signed distance field library, tessellating with uniform marching cubes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 64

type solid struct {
	s sdf.SDF3
}

func (s *solid) Bounds() sdf.Box3 {
	return s.s.BoundingBox()
}

// Kernel is the sdfx backed kernel.
type Kernel struct {
	cells int
}

// New returns a kernel that meshes with the given number of cells along the
// longest axis. cells <= 0 selects DefaultCells.
func New(cells int) *Kernel {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &Kernel{cells: cells}
}

func (k *Kernel) Name() string { return "sdfx" }

// Cells returns the marching cubes resolution.
func (k *Kernel) Cells() int { return k.cells }

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*solid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Box creates a box with its minimum corner at the origin. sdf.Box3D is
// centred, so the result is shifted by half its size.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := kernel.CheckDimensions("box", x, y, z); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}))), nil
}

func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := kernel.CheckDimensions("cylinder", height, radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})))
}

func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	m := sdf.RotateZ(rad(z)).Mul(sdf.RotateY(rad(y))).Mul(sdf.RotateX(rad(x)))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh runs marching cubes over s and keeps each facet's normal.
func (k *Kernel) ToMesh(s kernel.Solid, name string) (*mesh.Mesh, error) {
	facets := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))

	tris := make([]mesh.Triangle, 0, len(facets))
	for _, f := range facets {
		tris = append(tris, mesh.Triangle{
			Normal:   f.Normal(),
			Vertices: [3]v3.Vec{f[0], f[1], f[2]},
		})
	}

	log.WithFields(log.Fields{
		"model":     name,
		"cells":     k.cells,
		"triangles": len(tris),
	}).Debug("tessellated solid")
	return mesh.New(name, tris), nil
}
