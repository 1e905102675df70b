// Package kernel defines the solid modeling interface job scripts are
// evaluated against. A kernel builds solids from primitives, booleans and
// transforms and tessellates them into a mesh.Mesh for decomposition.
package kernel

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/kerf/pkg/mesh"
)

// ErrInvalidDimension is returned for non-positive primitive sizes.
var ErrInvalidDimension = errors.New("kernel: dimensions must be positive")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() sdf.Box3
}

// Kernel builds and tessellates solids. Boxes have their minimum corner at
// the origin; cylinders are centred on the origin along Z.
type Kernel interface {
	Name() string

	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s into a named mesh.
	ToMesh(s Solid, name string) (*mesh.Mesh, error)
}

// CheckDimensions returns ErrInvalidDimension, naming the primitive, when
// any size is not strictly positive.
func CheckDimensions(primitive string, sizes ...float64) error {
	for _, v := range sizes {
		if !(v > 0) {
			return fmt.Errorf("%w: %s got %v", ErrInvalidDimension, primitive, sizes)
		}
	}
	return nil
}
