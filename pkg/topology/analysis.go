// Package topology measures the surface structure of a mesh without
// changing it: how its triangles connect, where it bends sharply, how
// dense and how well shaped its triangles are. Corners closer than a weld
// tolerance count as one vertex.
package topology

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/mesh"
)

// PoorQuality is the TriangleQuality below which a triangle counts as
// poorly shaped.
const PoorQuality = 0.3

var (
	ErrInvalidAngle     = fmt.Errorf("%w: angle thresholds must be in (0, 180] degrees", mesh.ErrInvalidInput)
	ErrInvalidTolerance = fmt.Errorf("%w: weld tolerance must be a positive finite number", mesh.ErrInvalidInput)
)

// Params holds the analysis thresholds. Angles are in degrees.
type Params struct {
	Mode Mode

	// SharpAngle is the dihedral angle above which an edge is sharp.
	SharpAngle float64
	// CornerAngle is the angle defect above which a vertex is a corner.
	CornerAngle float64
	// FlatAngle is the dihedral angle every interior edge of a triangle
	// must stay under for the triangle to be flat.
	FlatAngle float64

	Tolerance float64
}

// DefaultParams returns the thresholds used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Mode:        ModeComplete,
		SharpAngle:  30,
		CornerAngle: 45,
		FlatAngle:   5,
		Tolerance:   1e-6,
	}
}

func (p Params) validate() error {
	for _, a := range []float64{p.SharpAngle, p.CornerAngle, p.FlatAngle} {
		if !(a > 0 && a <= 180) {
			return fmt.Errorf("%w, got %v", ErrInvalidAngle, a)
		}
	}
	if !(p.Tolerance > 0) || math.IsInf(p.Tolerance, 1) {
		return fmt.Errorf("%w, got %v", ErrInvalidTolerance, p.Tolerance)
	}
	if p.Mode < ModeComplete || p.Mode > ModeQuality {
		return fmt.Errorf("%w %d", ErrUnknownMode, int(p.Mode))
	}
	return nil
}

// Vertex is a welded mesh vertex.
type Vertex struct {
	// Valence is the number of distinct edges meeting here.
	Valence int
	// Curvature is the absolute angle defect in radians: how far the
	// corner angles around the vertex fall short of 360 degrees, or of 180
	// on the boundary.
	Curvature float64
	Boundary  bool
}

// Edge joins two welded vertices and lists the triangles that use it.
type Edge struct {
	Vertices  [2]int
	Triangles []int
	Length    float64
	// Dihedral is the angle between the normals of the two triangles on a
	// manifold interior edge, in radians. It is 0 on every other edge.
	Dihedral float64
}

// Boundary reports whether only one triangle uses e.
func (e Edge) Boundary() bool { return len(e.Triangles) == 1 }

// NonManifold reports whether more than two triangles use e.
func (e Edge) NonManifold() bool { return len(e.Triangles) > 2 }

// Summary describes a set of values.
type Summary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	n := float64(len(values))
	s.Mean /= n
	for _, v := range values {
		d := v - s.Mean
		s.Variance += d * d
	}
	s.Variance /= n
	return s
}

// Connectivity counts how the surface hangs together.
type Connectivity struct {
	Vertices            int `json:"vertices"`
	Edges               int `json:"edges"`
	Triangles           int `json:"triangles"`
	BoundaryEdges       int `json:"boundaryEdges"`
	NonManifoldEdges    int `json:"nonManifoldEdges"`
	NonManifoldVertices int `json:"nonManifoldVertices"`
	IsolatedVertices    int `json:"isolatedVertices"`
	// Euler is V - E + F; 2 for a closed surface of genus 0.
	Euler int `json:"euler"`
	// Score is the mean valence over 6, the valence of a regular
	// triangulation.
	Score float64 `json:"score"`
}

// Closed reports whether every edge has exactly two triangles.
func (c Connectivity) Closed() bool {
	return c.BoundaryEdges == 0 && c.NonManifoldEdges == 0
}

// Features lists the sharp edges, corner vertices and flat triangles.
type Features struct {
	SharpEdges    []int `json:"sharpEdges"`
	Corners       []int `json:"corners"`
	FlatTriangles []int `json:"flatTriangles"`
	// Richness is (sharp edges + corners) / (edges + vertices).
	Richness float64 `json:"richness"`
}

// Analysis is the result of Analyze. Per-element data is kept for callers
// but left out of JSON.
type Analysis struct {
	Mesh   string `json:"mesh"`
	Mode   Mode   `json:"mode"`
	Params Params `json:"-"`

	Vertices []Vertex `json:"-"`
	Edges    []Edge   `json:"-"`

	Connectivity Connectivity `json:"connectivity"`
	Features     Features     `json:"features"`
	// Curvature summarizes vertex curvature in radians.
	Curvature Summary `json:"curvature"`
	// Valence summarizes vertex valence; TriangleDensity summarizes
	// 1/area over non-degenerate triangles.
	Valence         Summary `json:"valence"`
	TriangleDensity Summary `json:"triangleDensity"`
	Quality         Summary `json:"quality"`
	PoorTriangles   int     `json:"poorTriangles"`
}

// Analyze measures m with the thresholds in p. m is only read.
func Analyze(m *mesh.Mesh, p Params) (*Analysis, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("topology: %w", mesh.ErrEmptyMesh)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}

	positions, corners, edges := weld(m, p.Tolerance)
	a := &Analysis{
		Mesh:     m.Name(),
		Mode:     p.Mode,
		Params:   p,
		Vertices: make([]Vertex, len(positions)),
		Edges:    edges,
	}
	normals := make([]v3.Vec, m.TriangleCount())
	for ti := range normals {
		normals[ti] = faceNormal(m.Triangle(ti).Vertices)
	}

	a.connect(normals)
	a.curvature(m, corners)
	a.features(m.TriangleCount(), rad(p.SharpAngle), rad(p.CornerAngle), rad(p.FlatAngle))
	a.density(m)
	a.quality(m)

	if log.IsLevelEnabled(log.DebugLevel) {
		c := a.Connectivity
		log.WithFields(log.Fields{
			"mesh":          a.Mesh,
			"vertices":      c.Vertices,
			"edges":         c.Edges,
			"boundaryEdges": c.BoundaryEdges,
			"sharpEdges":    len(a.Features.SharpEdges),
			"corners":       len(a.Features.Corners),
		}).Debug("topology analysed")
	}
	return a, nil
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
