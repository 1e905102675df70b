package sdfx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/kernel"
)

// testCells keeps marching cubes fast in tests.
const testCells = 24

func TestNewDefaultsCells(t *testing.T) {
	assert.Equal(t, DefaultCells, New(0).Cells())
	assert.Equal(t, DefaultCells, New(-5).Cells())
	assert.Equal(t, 10, New(10).Cells())
	assert.Equal(t, "sdfx", New(0).Name())
}

func TestBoxMesh(t *testing.T) {
	k := New(testCells)
	box, err := k.Box(100, 50, 25)
	require.NoError(t, err)

	m, err := k.ToMesh(box, "plate")
	require.NoError(t, err)
	require.False(t, m.IsEmpty())
	assert.Equal(t, "plate", m.Name())
	assert.Equal(t, m.TriangleCount()*3, m.VertexCount())

	// Marching cubes lands within a cell of the true surface.
	const tol = 100.0 / testCells
	b := m.Bounds()
	assert.InDelta(t, 0, b.Min.X, tol)
	assert.InDelta(t, 100, b.Max.X, tol)
	assert.InDelta(t, 50, b.Max.Y, tol)
	assert.InDelta(t, 25, b.Max.Z, tol)
}

func TestBoxBoundsAtOrigin(t *testing.T) {
	k := New(testCells)
	box, err := k.Box(100, 50, 25)
	require.NoError(t, err)

	b := box.Bounds()
	assert.InDelta(t, 0, b.Min.X, 0.01)
	assert.InDelta(t, 0, b.Min.Y, 0.01)
	assert.InDelta(t, 0, b.Min.Z, 0.01)
	assert.InDelta(t, 100, b.Max.X, 0.01)
	assert.InDelta(t, 50, b.Max.Y, 0.01)
	assert.InDelta(t, 25, b.Max.Z, 0.01)
}

func TestCylinder(t *testing.T) {
	k := New(testCells)
	cyl, err := k.Cylinder(50, 10)
	require.NoError(t, err)

	b := cyl.Bounds()
	assert.InDelta(t, -25, b.Min.Z, 0.01)
	assert.InDelta(t, 25, b.Max.Z, 0.01)
	assert.InDelta(t, 20, b.Max.X-b.Min.X, 0.01)

	m, err := k.ToMesh(cyl, "peg")
	require.NoError(t, err)
	assert.NotZero(t, m.TriangleCount())
}

func TestDifferenceAddsFacets(t *testing.T) {
	k := New(testCells)
	box, err := k.Box(100, 100, 100)
	require.NoError(t, err)
	cyl, err := k.Cylinder(120, 20)
	require.NoError(t, err)

	boxMesh, err := k.ToMesh(box, "box")
	require.NoError(t, err)
	diffMesh, err := k.ToMesh(k.Difference(box, k.Translate(cyl, 50, 50, 50)), "drilled")
	require.NoError(t, err)

	assert.Greater(t, diffMesh.TriangleCount(), boxMesh.TriangleCount())
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(testCells)
	a, err := k.Box(50, 50, 50)
	require.NoError(t, err)
	b := k.Translate(a, 30, 0, 0)

	u := k.Union(a, b).Bounds()
	assert.InDelta(t, 80, u.Max.X, 0.01)

	m, err := k.ToMesh(k.Intersection(a, b), "overlap")
	require.NoError(t, err)
	assert.False(t, m.IsEmpty())
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	box, err := k.Box(10, 10, 10)
	require.NoError(t, err)

	b := k.Translate(box, 100, 200, 300).Bounds()
	assert.InDelta(t, 100, b.Min.X, 0.01)
	assert.InDelta(t, 210, b.Max.Y, 0.01)
	assert.InDelta(t, 310, b.Max.Z, 0.01)
}

func TestRotate(t *testing.T) {
	k := New(testCells)
	box, err := k.Box(100, 10, 10)
	require.NoError(t, err)

	b := k.Rotate(box, 0, 0, 90).Bounds()
	assert.InDelta(t, 10, b.Max.X-b.Min.X, 1)
	assert.InDelta(t, 100, b.Max.Y-b.Min.Y, 1)
}

func TestInvalidDimensions(t *testing.T) {
	k := New(testCells)

	_, err := k.Box(0, 1, 1)
	assert.True(t, errors.Is(err, kernel.ErrInvalidDimension))
	_, err = k.Cylinder(10, -1)
	assert.True(t, errors.Is(err, kernel.ErrInvalidDimension))
}
