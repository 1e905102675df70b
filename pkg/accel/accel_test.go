package accel

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/mesh/meshtest"
)

func TestSequentialCentroids(t *testing.T) {
	m := meshtest.Walls(9)

	got, err := Sequential{}.Centroids(m)
	require.NoError(t, err)
	require.Len(t, got, m.TriangleCount())
	for i, c := range got {
		assert.Equal(t, m.Triangle(i).Centroid(), c)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	m := meshtest.Scatter(7, 1000, 50)

	want, err := Sequential{}.Centroids(m)
	require.NoError(t, err)

	for _, chunk := range []int{1, 7, 64, 5000} {
		p := &Parallel{Workers: 4, ChunkSize: chunk}
		got, err := p.Centroids(m)
		require.NoError(t, err)
		assert.Equal(t, want, got, "chunk size %d", chunk)
	}
}

func TestParallelEmptyMesh(t *testing.T) {
	got, err := NewParallel(2).Centroids(mesh.New("empty", nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewParallelDefaults(t *testing.T) {
	p := NewParallel(0)
	assert.Equal(t, runtime.GOMAXPROCS(0), p.Workers)
	assert.Equal(t, defaultChunkSize, p.ChunkSize)
}

func TestParallelSingleWorkerUnavailable(t *testing.T) {
	assert.False(t, NewParallel(1).Available())
}

func TestSelect(t *testing.T) {
	assert.Equal(t, "sequential", Select(false, 4).Name())
	assert.Equal(t, Sequential{}, Select(true, 1), "one worker cannot run in parallel")

	c := Select(true, 0)
	if runtime.GOMAXPROCS(0) > 1 {
		assert.IsType(t, &Parallel{}, c)
	} else {
		assert.Equal(t, Sequential{}, c)
	}
	assert.True(t, c.Available())
}
