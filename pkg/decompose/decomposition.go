package decompose

import (
	"fmt"
	"io"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/kerf/pkg/mesh"
)

var _ mesh.RegionSet = (*Decomposition)(nil)

// Decomposition is the ordered result of one strategy run. Parts are
// never modified after they are added.
type Decomposition struct {
	Strategy    Strategy `json:"strategy"`
	Parts       []*Part  `json:"parts"`
	TotalVolume float64  `json:"totalVolume"`
	Quality     float64  `json:"quality"`

	// SplitThreshold is recorded for hierarchical runs only. It does not
	// influence splitting.
	SplitThreshold float64 `json:"splitThreshold,omitempty"`
}

func newDecomposition(s Strategy) *Decomposition {
	return &Decomposition{Strategy: s}
}

func (d *Decomposition) add(p *Part) {
	d.Parts = append(d.Parts, p)
	d.TotalVolume += p.Volume
}

func (d *Decomposition) finish() *Decomposition {
	d.Quality = Quality(d.Parts)
	return d
}

// Len returns the number of parts.
func (d *Decomposition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Parts)
}

// AssignedTriangles returns how many triangles belong to some part. It is
// less than the mesh size only for lossy strategies.
func (d *Decomposition) AssignedTriangles() int {
	n := 0
	for _, p := range d.Parts {
		n += len(p.Triangles)
	}
	return n
}

// Quality scores how evenly volume is spread over parts:
// 1 / (1 + population variance of part volumes). It is 1 when all parts
// are equal and 0 when there are no parts.
func Quality(parts []*Part) float64 {
	if len(parts) == 0 {
		return 0
	}
	n := float64(len(parts))
	var mean float64
	for _, p := range parts {
		mean += p.Volume
	}
	mean /= n
	var variance float64
	for _, p := range parts {
		d := p.Volume - mean
		variance += d * d
	}
	variance /= n
	return 1 / (1 + variance)
}

// RegionCount implements mesh.RegionSet.
func (d *Decomposition) RegionCount() int { return d.Len() }

// RegionBounds implements mesh.RegionSet.
func (d *Decomposition) RegionBounds(id int) sdf.Box3 { return d.Parts[id].Hull }

// RegionTriangles implements mesh.RegionSet.
func (d *Decomposition) RegionTriangles(id int) []int { return d.Parts[id].Triangles }

// Dump writes a summary followed by one block per part.
func (d *Decomposition) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w,
		"Convex Decomposition Information:\nStrategy: %s\nNumber of parts: %d\nTotal volume: %.3f\nDecomposition quality: %.3f\n\n",
		d.Strategy, d.Len(), d.TotalVolume, d.Quality); err != nil {
		return err
	}
	for i, p := range d.Parts {
		_, err := fmt.Fprintf(w, "Part %d:\n  Triangles: %d\n  Volume: %.3f\n  Center: (%.3f, %.3f, %.3f)\n  Bounds: %s\n\n",
			i, len(p.Triangles), p.Volume, p.Centroid.X, p.Centroid.Y, p.Centroid.Z, mesh.FormatBox(p.Hull))
		if err != nil {
			return err
		}
	}
	return nil
}
