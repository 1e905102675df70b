package tessellate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/kerneltest"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/tessellate"
)

func boxAt(min, max v3.Vec) kernel.Solid {
	return kerneltest.Solid{Box: sdf.Box3{Min: min, Max: max}}
}

// failingKernel fails to mesh any model named "bad".
type failingKernel struct {
	kerneltest.BoxKernel
}

var errMeshing = errors.New("meshing failed")

func (k failingKernel) ToMesh(s kernel.Solid, name string) (*mesh.Mesh, error) {
	if name == "bad" {
		return nil, errMeshing
	}
	return k.BoxKernel.ToMesh(s, name)
}

func TestNilJob(t *testing.T) {
	meshes, err := tessellate.Tessellate(context.Background(), nil, kerneltest.BoxKernel{}, 0)
	require.NoError(t, err)
	assert.Empty(t, meshes)

	meshes, err = tessellate.Tessellate(context.Background(), &engine.Job{}, kerneltest.BoxKernel{}, 0)
	require.NoError(t, err)
	assert.Empty(t, meshes)
}

func TestOneMeshPerModelInOrder(t *testing.T) {
	job := &engine.Job{}
	names := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	for i, name := range names {
		off := float64(i) * 10
		job.Models = append(job.Models, engine.Model{
			Name:  name,
			Solid: boxAt(v3.Vec{X: off}, v3.Vec{X: off + 1, Y: 1, Z: 1}),
		})
	}

	meshes, err := tessellate.Tessellate(context.Background(), job, kerneltest.BoxKernel{}, 2)
	require.NoError(t, err)
	require.Len(t, meshes, len(names))
	for i, m := range meshes {
		assert.Equal(t, names[i], m.Name())
		assert.Equal(t, 12, m.TriangleCount())
		assert.InDelta(t, float64(i)*10, m.Bounds().Min.X, 1e-9)
	}
}

func TestKernelErrorNamesModel(t *testing.T) {
	job := &engine.Job{Models: []engine.Model{
		{Name: "good", Solid: boxAt(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})},
		{Name: "bad", Solid: boxAt(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})},
	}}

	meshes, err := tessellate.Tessellate(context.Background(), job, failingKernel{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errMeshing)
	assert.Contains(t, err.Error(), `"bad"`)
	assert.Nil(t, meshes)
}

func TestEmptyModelRejected(t *testing.T) {
	k := kerneltest.BoxKernel{}
	a := boxAt(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	b := boxAt(v3.Vec{X: 5}, v3.Vec{X: 6, Y: 1, Z: 1})
	job := &engine.Job{Models: []engine.Model{{Name: "nothing", Solid: k.Intersection(a, b)}}}

	_, err := tessellate.Tessellate(context.Background(), job, k, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, tessellate.ErrEmptyModel)
	assert.Contains(t, err.Error(), "nothing")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := &engine.Job{Models: []engine.Model{
		{Name: "a", Solid: boxAt(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})},
	}}

	_, err := tessellate.Tessellate(ctx, job, kerneltest.BoxKernel{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScriptToMeshesWithSdfx(t *testing.T) {
	k := sdfx.New(24)
	job, evalErrs, err := engine.New(k).Evaluate(`
(model "plate" (box 10 5 1))
(model "peg" (translate (cylinder 4 1) 20 0 0))
`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)

	meshes, err := tessellate.Tessellate(context.Background(), job, k, 0)
	require.NoError(t, err)
	require.Len(t, meshes, 2)

	plate, peg := meshes[0], meshes[1]
	assert.Equal(t, "plate", plate.Name())
	assert.Equal(t, "peg", peg.Name())
	assert.False(t, plate.IsEmpty())
	assert.False(t, peg.IsEmpty())

	// Marching cubes is approximate; the peg must still sit near x=20.
	pb := peg.Bounds()
	assert.InDelta(t, 20, (pb.Min.X+pb.Max.X)/2, 1)
	plb := plate.Bounds()
	assert.InDelta(t, 5, (plb.Min.X+plb.Max.X)/2, 1)
}
