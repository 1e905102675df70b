package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/decompose"
	"github.com/chazu/kerf/pkg/kernel/kerneltest"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/mesh/meshtest"
	"github.com/chazu/kerf/pkg/pipeline"
)

// twoBoxes is a unit box at the origin and one at x=10.
func twoBoxes() *mesh.Mesh {
	tris := meshtest.BoxTriangles(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	tris = append(tris, meshtest.BoxTriangles(v3.Vec{X: 10}, v3.Vec{X: 11, Y: 1, Z: 1})...)
	return mesh.New("two-boxes", tris)
}

func newRunner(t *testing.T, edit func(*config.Settings)) *pipeline.Runner {
	t.Helper()
	s := config.Default()
	if edit != nil {
		edit(&s)
	}
	r, err := pipeline.New(kerneltest.BoxKernel{}, s)
	require.NoError(t, err)
	return r
}

func TestRun(t *testing.T) {
	r := newRunner(t, nil)
	res, err := r.Run(context.Background(), twoBoxes())
	require.NoError(t, err)

	require.NotNil(t, res.Tree)
	require.NotNil(t, res.Index)
	require.NotNil(t, res.Decomposition)
	require.NotNil(t, res.Topology)

	rep := res.Report
	assert.Equal(t, "two-boxes", rep.Mesh)
	assert.Equal(t, 24, rep.Triangles)
	assert.Equal(t, 24, rep.Tree.Triangles)

	require.Len(t, rep.Partitions, 4)
	counts := make([]int, len(rep.Partitions))
	for i, p := range rep.Partitions {
		assert.Equal(t, i, p.ID)
		counts[i] = p.Triangles
	}
	assert.Equal(t, []int{12, 0, 0, 12}, counts)

	assert.Equal(t, "approx", rep.Decomposition.Strategy)
	assert.Len(t, rep.Decomposition.Parts, 2)
	assert.InDelta(t, 1.0, rep.Decomposition.Quality, 1e-9)
	assert.Zero(t, rep.Decomposition.Unassigned)
	assert.Empty(t, rep.Warnings)

	names := make([]string, len(rep.Steps))
	for i, s := range rep.Steps {
		names[i] = s.Name
		assert.GreaterOrEqual(t, s.Elapsed, 0.0)
	}
	assert.Equal(t, []string{"bvh", "partition", "decompose", "topology"}, names)

	assert.Equal(t, pipeline.TopologyReport{
		Vertices: 16, Edges: 36, Closed: true, SharpEdges: 24, Corners: 16,
		FeatureRichness: 40.0 / 52, MeanQuality: rep.Topology.MeanQuality,
	}, rep.Topology)
	assert.InDelta(t, 0.494, rep.Topology.MeanQuality, 1e-3)
}

func TestRunWarnsOnOpenMesh(t *testing.T) {
	res, err := newRunner(t, nil).Run(context.Background(), meshtest.Walls(10))
	require.NoError(t, err)

	assert.False(t, res.Report.Topology.Closed)
	assert.Equal(t, 8, res.Report.Topology.BoundaryEdges)
	assert.Contains(t, strings.Join(res.Report.Warnings, "\n"), "mesh is not closed: 8 boundary")
}

func TestRunUsesTopologySettings(t *testing.T) {
	r := newRunner(t, func(s *config.Settings) { s.Topology.SharpAngle = 120 })
	res, err := r.Run(context.Background(), twoBoxes())
	require.NoError(t, err)
	assert.Zero(t, res.Report.Topology.SharpEdges)

	a, err := r.Analyze(twoBoxes())
	require.NoError(t, err)
	assert.Empty(t, a.Features.SharpEdges)
	assert.Equal(t, "two-boxes", a.Mesh)
}

func TestRunUsesSettings(t *testing.T) {
	r := newRunner(t, func(s *config.Settings) {
		s.BVH.LeafSize = 1
		s.Partition.Count = 2
		s.Decompose.Strategy = decompose.StrategyHierarchical
		s.Decompose.MaxDepth = 1
	})
	res, err := r.Run(context.Background(), twoBoxes())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Tree.LeafSize)
	assert.Equal(t, 2, res.Index.Count())
	assert.Equal(t, decompose.StrategyHierarchical, res.Decomposition.Strategy)
	assert.Equal(t, 2, res.Decomposition.Len())
	for _, l := range res.Tree.Leaves() {
		assert.LessOrEqual(t, len(l.Triangles), 1)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	m := meshtest.Scatter(7, 5000, 100)

	seq, err := newRunner(t, nil).Run(context.Background(), m)
	require.NoError(t, err)
	par, err := newRunner(t, func(s *config.Settings) {
		s.Accel.Parallel = true
		s.Accel.Workers = 4
	}).Run(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, seq.Tree.Root, par.Tree.Root)
	assert.Equal(t, seq.Index.Assignments(), par.Index.Assignments())
}

func TestRunLowQualityWarns(t *testing.T) {
	r := newRunner(t, func(s *config.Settings) {
		s.Decompose.Strategy = decompose.StrategyVoxel
		s.Decompose.VoxelSize = 100
		s.Decompose.MinTrianglesPerVoxel = 1000
	})
	res, err := r.Run(context.Background(), twoBoxes())
	require.NoError(t, err)

	assert.Zero(t, res.Decomposition.Len())
	assert.Equal(t, 24, res.Report.Decomposition.Unassigned)
	require.Len(t, res.Report.Warnings, 1)
	assert.Contains(t, res.Report.Warnings[0], "below threshold")
}

func TestRunErrors(t *testing.T) {
	r := newRunner(t, nil)

	_, err := r.Run(context.Background(), mesh.New("empty", nil))
	assert.ErrorIs(t, err, mesh.ErrEmptyMesh)

	_, err = r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, mesh.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, twoBoxes())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "before bvh")
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	s := config.Default()
	s.Partition.Count = 0
	_, err := pipeline.New(kerneltest.BoxKernel{}, s)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunSource(t *testing.T) {
	r := newRunner(t, nil)
	results, err := r.RunSource(context.Background(), `
(model "left" (box 1 1 1))
(model "right" (translate (box 1 1 1) 10 0 0))
`)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "left", results[0].Report.Mesh)
	assert.Equal(t, "right", results[1].Report.Mesh)
	assert.InDelta(t, 10, results[1].Mesh.Bounds().Min.X, 1e-9)
}

func TestRunSourceScriptErrors(t *testing.T) {
	r := newRunner(t, nil)
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"bad builtin call", `(model "x" (box -1 1 1))`, "box"},
		{"no models", `(def a (box 1 1 1))`, "no models"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.RunSource(context.Background(), tt.source)
			var se *pipeline.ScriptError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.NotEmpty(t, se.Errors)
			assert.Contains(t, se.Error(), tt.want)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	res, err := newRunner(t, nil).Run(context.Background(), twoBoxes())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pipeline.WriteJSON(&buf, []*pipeline.Result{res}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "two-boxes", decoded[0]["mesh"])
	assert.EqualValues(t, 24, decoded[0]["triangles"])
	assert.Contains(t, decoded[0], "tree")
	assert.Contains(t, decoded[0], "decomposition")
	require.Contains(t, decoded[0], "topology")
	assert.Equal(t, true, decoded[0]["topology"].(map[string]any)["closed"])
	assert.NotContains(t, decoded[0], "warnings")
}

func TestWriteText(t *testing.T) {
	res, err := newRunner(t, nil).Run(context.Background(), twoBoxes())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pipeline.WriteText(&buf, []*pipeline.Result{res}))
	out := buf.String()
	assert.Contains(t, out, "Mesh: two-boxes (24 triangles)")
	assert.Contains(t, out, "Spatial Partition Information:")
	assert.Contains(t, out, "Convex Decomposition Information:")
	assert.Contains(t, out, "Number of parts: 2")
	assert.Contains(t, out, "Topology: 16 vertices, 36 edges, 0 boundary edges, 24 sharp edges, 16 corners\n")
}
