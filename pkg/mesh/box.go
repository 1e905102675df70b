package mesh

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// EmptyBox returns the sentinel box that contains nothing. Extending it with
// any box or point yields exactly that box or point.
func EmptyBox() sdf.Box3 {
	inf := math.Inf(1)
	return sdf.Box3{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// IsEmptyBox reports whether max < min on any axis.
func IsEmptyBox(b sdf.Box3) bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Overlaps reports whether two boxes intersect. Intervals are closed, so
// boxes that only touch on a face, edge or corner overlap.
func Overlaps(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Volume returns the box volume, 0 for an empty box.
func Volume(b sdf.Box3) float64 {
	if IsEmptyBox(b) {
		return 0
	}
	s := b.Size()
	return s.X * s.Y * s.Z
}

// SurfaceArea returns the total area of the six box faces.
func SurfaceArea(b sdf.Box3) float64 {
	if IsEmptyBox(b) {
		return 0
	}
	s := b.Size()
	return 2 * (s.X*s.Y + s.X*s.Z + s.Y*s.Z)
}

// LongestAxis returns the axis with the largest extent. Ties resolve to X,
// and to Y only when Y strictly beats both others.
func LongestAxis(b sdf.Box3) Axis {
	s := b.Size()
	switch {
	case s.Y > s.X && s.Y > s.Z:
		return AxisY
	case s.Z > s.X && s.Z > s.Y:
		return AxisZ
	}
	return AxisX
}

// Component returns the coordinate of v on axis a.
func Component(v v3.Vec, a Axis) float64 {
	switch a {
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return v.X
}

// FormatBox renders a box as X[min, max] Y[min, max] Z[min, max].
func FormatBox(b sdf.Box3) string {
	return fmt.Sprintf("X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]",
		b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z)
}
