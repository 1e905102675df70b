// Package pipeline runs the full kerf sequence over a mesh: bounding
// volume tree, partition index, decomposition, then topology analysis. It also turns job
// scripts into meshes so a command can go from source text to results in
// one call.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/accel"
	"github.com/chazu/kerf/pkg/bvh"
	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/decompose"
	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/partition"
	"github.com/chazu/kerf/pkg/tessellate"
	"github.com/chazu/kerf/pkg/topology"
)

// ScriptError carries the non-fatal errors a job script produced.
type ScriptError struct {
	Errors []engine.EvalError
}

func (e *ScriptError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ee := range e.Errors {
		msgs[i] = ee.Error()
	}
	return "script: " + strings.Join(msgs, "; ")
}

// Result holds everything one run built.
type Result struct {
	Mesh          *mesh.Mesh
	Tree          *bvh.Tree
	Index         *partition.Index
	Decomposition *decompose.Decomposition
	Topology      *topology.Analysis
	Report        Report
}

// Runner owns the kernel and settings for a series of runs. Run may be
// called concurrently; Meshes may not, since script sandboxes share
// interpreter state.
type Runner struct {
	kernel    kernel.Kernel
	settings  config.Settings
	centroids accel.Centroider
}

// New validates s and returns a Runner.
func New(k kernel.Kernel, s config.Settings) (*Runner, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		kernel:    k,
		settings:  s,
		centroids: accel.Select(s.Accel.Parallel, s.Accel.Workers),
	}, nil
}

// Settings returns the settings the runner was built with.
func (r *Runner) Settings() config.Settings {
	return r.settings
}

// Meshes evaluates a job script and tessellates every model it declares.
// Script problems come back as a *ScriptError.
func (r *Runner) Meshes(ctx context.Context, source string) ([]*mesh.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	eng := engine.New(r.kernel, engine.WithTimeout(r.settings.Engine.Timeout.Duration))
	job, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: evaluating script: %w", err)
	}
	if len(evalErrs) > 0 {
		return nil, &ScriptError{Errors: evalErrs}
	}
	if len(job.Models) == 0 {
		return nil, &ScriptError{Errors: []engine.EvalError{{Message: "script declares no models"}}}
	}

	meshes, err := tessellate.Tessellate(ctx, job, r.kernel, r.settings.Accel.Workers)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	log.WithFields(log.Fields{
		"kernel": r.kernel.Name(),
		"models": len(meshes),
	}).Info("script tessellated")
	return meshes, nil
}

// Run builds the tree, the partition index, the decomposition and the
// topology analysis of m in that order. ctx is checked between steps; a step in progress is not
// interrupted.
func (r *Runner) Run(ctx context.Context, m *mesh.Mesh) (*Result, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("pipeline: %w", mesh.ErrEmptyMesh)
	}
	res := &Result{Mesh: m}
	rep := &res.Report
	rep.Mesh = m.Name()
	rep.Triangles = m.TriangleCount()
	rep.Bounds = mesh.FormatBox(m.Bounds())

	steps := []struct {
		name string
		run  func() error
	}{
		{"bvh", func() (err error) {
			res.Tree, err = r.BuildTree(m)
			return err
		}},
		{"partition", func() (err error) {
			res.Index, err = r.BuildIndex(m)
			return err
		}},
		{"decompose", func() (err error) {
			res.Decomposition, err = r.Decompose(m)
			return err
		}},
		{"topology", func() (err error) {
			res.Topology, err = r.Analyze(m)
			return err
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: before %s: %w", step.name, err)
		}
		start := time.Now()
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", step.name, err)
		}
		elapsed := time.Since(start)
		rep.Steps = append(rep.Steps, StepReport{Name: step.name, Elapsed: elapsed.Seconds() * 1000})
		log.WithFields(log.Fields{
			"mesh":    m.Name(),
			"step":    step.name,
			"elapsed": elapsed,
		}).Info("pipeline step done")
	}

	rep.fill(res)
	if q, threshold := res.Decomposition.Quality, r.settings.Decompose.QualityThreshold; q < threshold {
		w := fmt.Sprintf("decomposition quality %.3f is below threshold %.3f", q, threshold)
		rep.Warnings = append(rep.Warnings, w)
		log.WithFields(log.Fields{
			"mesh":      m.Name(),
			"quality":   q,
			"threshold": threshold,
		}).Warn("low decomposition quality")
	}
	if c := res.Topology.Connectivity; !c.Closed() {
		w := fmt.Sprintf("mesh is not closed: %d boundary and %d non-manifold edges", c.BoundaryEdges, c.NonManifoldEdges)
		rep.Warnings = append(rep.Warnings, w)
		log.WithFields(log.Fields{
			"mesh":        m.Name(),
			"boundary":    c.BoundaryEdges,
			"nonManifold": c.NonManifoldEdges,
		}).Warn("open mesh")
	}
	return res, nil
}

// RunAll runs every mesh in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, meshes []*mesh.Mesh) ([]*Result, error) {
	results := make([]*Result, 0, len(meshes))
	for _, m := range meshes {
		res, err := r.Run(ctx, m)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunSource is Meshes followed by RunAll.
func (r *Runner) RunSource(ctx context.Context, source string) ([]*Result, error) {
	meshes, err := r.Meshes(ctx, source)
	if err != nil {
		return nil, err
	}
	return r.RunAll(ctx, meshes)
}

// BuildTree builds only the bounding volume tree of m.
func (r *Runner) BuildTree(m *mesh.Mesh) (*bvh.Tree, error) {
	return bvh.Build(m, r.settings.BVH.LeafSize,
		bvh.WithMaxDepth(r.settings.BVH.MaxDepth),
		bvh.WithSortAxis(r.settings.Partition.SortAxis),
		bvh.WithCentroids(r.centroids))
}

// BuildIndex builds only the partition index of m.
func (r *Runner) BuildIndex(m *mesh.Mesh) (*partition.Index, error) {
	return partition.Build(m, r.settings.Partition.Count,
		partition.WithSortAxis(r.settings.Partition.SortAxis),
		partition.WithCentroids(r.centroids))
}

// Decompose runs only the configured decomposition of m.
func (r *Runner) Decompose(m *mesh.Mesh) (*decompose.Decomposition, error) {
	return decompose.Decompose(m, r.settings.DecomposeParams())
}

// Analyze runs only the topology analysis of m.
func (r *Runner) Analyze(m *mesh.Mesh) (*topology.Analysis, error) {
	return topology.Analyze(m, r.settings.TopologyParams())
}
