package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/kerf/pkg/bvh"
	"github.com/chazu/kerf/pkg/mesh"
)

// Report is the JSON summary of one run.
type Report struct {
	Mesh          string              `json:"mesh"`
	Triangles     int                 `json:"triangles"`
	Bounds        string              `json:"bounds"`
	Tree          bvh.Stats           `json:"tree"`
	Partitions    []PartitionReport   `json:"partitions"`
	Decomposition DecompositionReport `json:"decomposition"`
	Topology      TopologyReport      `json:"topology"`
	Steps         []StepReport        `json:"steps"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// StepReport times one pipeline step.
type StepReport struct {
	Name string `json:"name"`
	// Elapsed is in milliseconds.
	Elapsed float64 `json:"elapsedMs"`
}

// PartitionReport describes one X partition.
type PartitionReport struct {
	ID        int    `json:"id"`
	Bounds    string `json:"bounds"`
	Triangles int    `json:"triangles"`
}

// DecompositionReport summarizes the decomposition.
type DecompositionReport struct {
	Strategy    string       `json:"strategy"`
	Parts       []PartReport `json:"parts"`
	TotalVolume float64      `json:"totalVolume"`
	Quality     float64      `json:"quality"`
	// Unassigned counts triangles no part holds.
	Unassigned int `json:"unassigned"`
}

// PartReport describes one decomposition part.
type PartReport struct {
	Triangles int        `json:"triangles"`
	Volume    float64    `json:"volume"`
	Centroid  [3]float64 `json:"centroid"`
	Bounds    string     `json:"bounds"`
}

// TopologyReport summarizes the topology analysis.
type TopologyReport struct {
	Vertices         int     `json:"vertices"`
	Edges            int     `json:"edges"`
	BoundaryEdges    int     `json:"boundaryEdges"`
	NonManifoldEdges int     `json:"nonManifoldEdges"`
	Closed           bool    `json:"closed"`
	SharpEdges       int     `json:"sharpEdges"`
	Corners          int     `json:"corners"`
	FeatureRichness  float64 `json:"featureRichness"`
	MeanQuality      float64 `json:"meanQuality"`
	PoorTriangles    int     `json:"poorTriangles"`
}

func (rep *Report) fill(res *Result) {
	rep.Tree = res.Tree.Stats()

	rep.Partitions = make([]PartitionReport, res.Index.Count())
	for i := range rep.Partitions {
		rep.Partitions[i] = PartitionReport{
			ID:        i,
			Bounds:    mesh.FormatBox(res.Index.Bounds(i)),
			Triangles: len(res.Index.Triangles(i)),
		}
	}

	d := res.Decomposition
	dr := DecompositionReport{
		Strategy:    d.Strategy.String(),
		Parts:       make([]PartReport, len(d.Parts)),
		TotalVolume: d.TotalVolume,
		Quality:     d.Quality,
		Unassigned:  res.Mesh.TriangleCount() - d.AssignedTriangles(),
	}
	for i, p := range d.Parts {
		dr.Parts[i] = PartReport{
			Triangles: len(p.Triangles),
			Volume:    p.Volume,
			Centroid:  [3]float64{p.Centroid.X, p.Centroid.Y, p.Centroid.Z},
			Bounds:    mesh.FormatBox(p.Hull),
		}
	}
	rep.Decomposition = dr

	a := res.Topology
	rep.Topology = TopologyReport{
		Vertices:         a.Connectivity.Vertices,
		Edges:            a.Connectivity.Edges,
		BoundaryEdges:    a.Connectivity.BoundaryEdges,
		NonManifoldEdges: a.Connectivity.NonManifoldEdges,
		Closed:           a.Connectivity.Closed(),
		SharpEdges:       len(a.Features.SharpEdges),
		Corners:          len(a.Features.Corners),
		FeatureRichness:  a.Features.Richness,
		MeanQuality:      a.Quality.Mean,
		PoorTriangles:    a.PoorTriangles,
	}
}

// WriteJSON writes reports as an indented JSON array.
func WriteJSON(w io.Writer, results []*Result) error {
	reports := make([]Report, len(results))
	for i, r := range results {
		reports[i] = r.Report
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("pipeline: encoding report: %w", err)
	}
	return nil
}

// WriteText prints the tree summary, partition, decomposition and topology
// information of each result.
func WriteText(w io.Writer, results []*Result) error {
	for _, res := range results {
		s := res.Report.Tree
		if _, err := fmt.Fprintf(w, "Mesh: %s (%d triangles)\nBVH: %d nodes, %d leaves, depth %d\n\n",
			res.Report.Mesh, res.Report.Triangles, s.Nodes, s.Leaves, s.Depth); err != nil {
			return err
		}
		if err := res.Index.Dump(w); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := res.Decomposition.Dump(w); err != nil {
			return err
		}
		t := res.Report.Topology
		if _, err := fmt.Fprintf(w, "Topology: %d vertices, %d edges, %d boundary edges, %d sharp edges, %d corners\n",
			t.Vertices, t.Edges, t.BoundaryEdges, t.SharpEdges, t.Corners); err != nil {
			return err
		}
		for _, warn := range res.Report.Warnings {
			if _, err := fmt.Fprintf(w, "warning: %s\n", warn); err != nil {
				return err
			}
		}
	}
	return nil
}
