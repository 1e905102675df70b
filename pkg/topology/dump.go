package topology

import (
	"fmt"
	"io"
	"math"
)

func deg(r float64) float64 { return r * 180 / math.Pi }

// Dump writes the summary followed by the sections a.Mode selects.
func (a *Analysis) Dump(w io.Writer) error {
	c := a.Connectivity
	if _, err := fmt.Fprintf(w,
		"Topology Analysis:\nMode: %s\nVertices: %d\nEdges: %d\nTriangles: %d\nBoundary edges: %d\nNon-manifold edges: %d\nClosed: %t\n\n",
		a.Mode, c.Vertices, c.Edges, c.Triangles, c.BoundaryEdges, c.NonManifoldEdges, c.Closed()); err != nil {
		return err
	}

	sections := []struct {
		mode  Mode
		write func(io.Writer) error
	}{
		{ModeConnectivity, a.dumpConnectivity},
		{ModeCurvature, a.dumpCurvature},
		{ModeFeatures, a.dumpFeatures},
		{ModeDensity, a.dumpDensity},
		{ModeQuality, a.dumpQuality},
	}
	for _, s := range sections {
		if !a.Mode.includes(s.mode) {
			continue
		}
		if err := s.write(w); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analysis) dumpConnectivity(w io.Writer) error {
	c := a.Connectivity
	_, err := fmt.Fprintf(w,
		"Connectivity:\n  Non-manifold vertices: %d\n  Isolated vertices: %d\n  Euler characteristic: %d\n  Connectivity score: %.3f\n\n",
		c.NonManifoldVertices, c.IsolatedVertices, c.Euler, c.Score)
	return err
}

func (a *Analysis) dumpCurvature(w io.Writer) error {
	s := a.Curvature
	_, err := fmt.Fprintf(w,
		"Curvature (degrees):\n  Mean: %.3f\n  Variance: %.3f\n  Min: %.3f\n  Max: %.3f\n\n",
		deg(s.Mean), deg(deg(s.Variance)), deg(s.Min), deg(s.Max))
	return err
}

func (a *Analysis) dumpFeatures(w io.Writer) error {
	f := a.Features
	_, err := fmt.Fprintf(w,
		"Features:\n  Sharp edges: %d (above %.1f degrees)\n  Corners: %d (above %.1f degrees)\n  Flat triangles: %d (below %.1f degrees)\n  Feature richness: %.3f\n\n",
		len(f.SharpEdges), a.Params.SharpAngle, len(f.Corners), a.Params.CornerAngle,
		len(f.FlatTriangles), a.Params.FlatAngle, f.Richness)
	return err
}

func (a *Analysis) dumpDensity(w io.Writer) error {
	v, t := a.Valence, a.TriangleDensity
	_, err := fmt.Fprintf(w,
		"Density:\n  Valence: mean %.3f, min %.0f, max %.0f\n  Triangles per unit area: mean %.3f, min %.3f, max %.3f\n\n",
		v.Mean, v.Min, v.Max, t.Mean, t.Min, t.Max)
	return err
}

func (a *Analysis) dumpQuality(w io.Writer) error {
	q := a.Quality
	pct := 0.0
	if n := a.Connectivity.Triangles; n > 0 {
		pct = float64(a.PoorTriangles) / float64(n) * 100
	}
	_, err := fmt.Fprintf(w,
		"Quality:\n  Mean: %.3f\n  Min: %.3f\n  Max: %.3f\n  Poor triangles: %d (%.1f%%)\n\n",
		q.Mean, q.Min, q.Max, a.PoorTriangles, pct)
	return err
}
