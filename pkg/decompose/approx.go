package decompose

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/mesh"
)

// approxRun carries the state of one approximate-convex decomposition.
// open counts finalized plus pending parts; a split is only allowed while
// it is below maxParts.
type approxRun struct {
	m         *mesh.Mesh
	maxParts  int
	tolerance float64
	open      int
	out       *Decomposition
}

// ApproximateConvex splits the mesh at the midpoint of each part's
// longest hull axis until every part has fewer than MinSplitTriangles
// triangles, has concavity within tolerance, or the part budget is used
// up. The result never has more than maxParts parts and every triangle
// lands in exactly one part.
func ApproximateConvex(m *mesh.Mesh, maxParts int, concavityTolerance float64) (*Decomposition, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("decompose: %w", mesh.ErrEmptyMesh)
	}
	if maxParts < 1 {
		return nil, fmt.Errorf("decompose: %w, got %d", ErrInvalidMaxParts, maxParts)
	}
	if math.IsNaN(concavityTolerance) {
		return nil, fmt.Errorf("decompose: %w", ErrInvalidTolerance)
	}

	r := &approxRun{
		m:         m,
		maxParts:  maxParts,
		tolerance: concavityTolerance,
		open:      1,
		out:       newDecomposition(StrategyApprox),
	}
	r.visit(newPart(m, m.Indices()))
	d := r.out.finish()

	log.WithFields(log.Fields{
		"mesh":      m.Name(),
		"maxParts":  maxParts,
		"tolerance": concavityTolerance,
		"parts":     d.Len(),
		"quality":   d.Quality,
	}).Debug("approximate convex decomposition done")
	return d, nil
}

func (r *approxRun) visit(p *Part) {
	if len(p.Triangles) < MinSplitTriangles || Concavity(p) <= r.tolerance || r.open >= r.maxParts {
		r.out.add(p)
		return
	}
	left, right := split(r.m, p.Triangles, p.Hull)
	if len(left) == 0 || len(right) == 0 {
		r.out.add(p)
		return
	}
	r.open++
	r.visit(newPart(r.m, left))
	r.visit(newPart(r.m, right))
}
