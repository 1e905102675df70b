// Package tessellate turns the models a job script declared into triangle
// meshes using a geometry kernel. One mesh is produced per model, named
// after it.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
)

// ErrEmptyModel is returned when a model tessellates to no triangles.
var ErrEmptyModel = errors.New("tessellate: model produced an empty mesh")

// Tessellate meshes every model in job. Models are meshed concurrently on
// at most workers goroutines (GOMAXPROCS when workers is 0 or less); the
// result keeps declaration order. The first failure cancels the rest. A
// nil job yields no meshes.
func Tessellate(ctx context.Context, job *engine.Job, k kernel.Kernel, workers int) ([]*mesh.Mesh, error) {
	if job == nil || len(job.Models) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	meshes := make([]*mesh.Mesh, len(job.Models))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, model := range job.Models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := tessellateModel(k, model)
			if err != nil {
				return err
			}
			meshes[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

func tessellateModel(k kernel.Kernel, model engine.Model) (*mesh.Mesh, error) {
	m, err := k.ToMesh(model.Solid, model.Name)
	if err != nil {
		return nil, fmt.Errorf("tessellate: model %q: %w", model.Name, err)
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: %q", ErrEmptyModel, model.Name)
	}
	log.WithFields(log.Fields{
		"model":     model.Name,
		"kernel":    k.Name(),
		"triangles": m.TriangleCount(),
	}).Debug("model tessellated")
	return m, nil
}
