// Package accel provides interchangeable ways to compute per-triangle
// centroids for a mesh. Every implementation returns bit-identical results,
// so an index build never depends on which one ran. The sequential
// implementation is always available; the others are optional and callers
// fall back to it when they are not.
package accel

import (
	"fmt"
	"runtime"

	"github.com/chazu/kerf/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Centroider computes the centroid of every triangle in a mesh, indexed by
// triangle position.
type Centroider interface {
	Name() string
	Available() bool
	Centroids(m *mesh.Mesh) ([]v3.Vec, error)
}

// Compile-time interface checks.
var (
	_ Centroider = Sequential{}
	_ Centroider = (*Parallel)(nil)
)

// Sequential computes centroids one triangle at a time.
type Sequential struct{}

func (Sequential) Name() string    { return "sequential" }
func (Sequential) Available() bool { return true }

// Centroids returns the centroid of each triangle in m.
func (Sequential) Centroids(m *mesh.Mesh) ([]v3.Vec, error) {
	out := make([]v3.Vec, m.TriangleCount())
	for i := range out {
		out[i] = m.Triangle(i).Centroid()
	}
	return out, nil
}

// defaultChunkSize is the number of triangles one worker handles per task.
const defaultChunkSize = 4096

// Parallel splits the triangle list into fixed-size chunks and computes them
// on a bounded pool of goroutines. Each output slot is written by exactly one
// worker, so results match Sequential exactly.
type Parallel struct {
	Workers   int
	ChunkSize int
}

// NewParallel returns a Parallel with the given worker limit. A limit of 0
// or less uses GOMAXPROCS.
func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{Workers: workers, ChunkSize: defaultChunkSize}
}

func (p *Parallel) Name() string { return fmt.Sprintf("parallel(%d)", p.Workers) }

// Available reports whether more than one worker can actually run.
func (p *Parallel) Available() bool {
	return p.Workers > 1 && runtime.GOMAXPROCS(0) > 1
}

// Centroids returns the centroid of each triangle in m.
func (p *Parallel) Centroids(m *mesh.Mesh) ([]v3.Vec, error) {
	n := m.TriangleCount()
	out := make([]v3.Vec, n)

	chunk := p.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	var g errgroup.Group
	g.SetLimit(p.Workers)
	for start := 0; start < n; start += chunk {
		lo, hi := start, min(start+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = m.Triangle(i).Centroid()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("accel: parallel centroids: %w", err)
	}
	return out, nil
}

// Select returns the parallel implementation with the given worker limit
// when it is preferred and usable, and the sequential one otherwise. An
// unusable accelerator is not an error.
func Select(preferParallel bool, workers int) Centroider {
	if preferParallel {
		p := NewParallel(workers)
		if p.Available() {
			return p
		}
		log.WithField("accelerator", p.Name()).Debug("accelerator unavailable, using sequential path")
	}
	return Sequential{}
}
