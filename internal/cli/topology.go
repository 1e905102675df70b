package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/pipeline"
	"github.com/chazu/kerf/pkg/topology"
)

var topologyJSON bool

var topologyCmd = &cobra.Command{
	Use:   "topology <script>",
	Short: "Analyze the surface topology of each model",
	Long: `Reports how each model's triangles connect: boundary and non-manifold
edges, sharp edges and corners, flat triangles, vertex valence, triangle
density and shape quality. --mode limits the report to one section:

  connectivity, curvature, features, density, quality or complete`,
	Args: cobra.ExactArgs(1),
	RunE: runTopology,
}

func init() {
	f := topologyCmd.Flags()
	f.BoolVar(&topologyJSON, "json", false, "output the analysis as JSON")
	f.String("mode", "", "report section: connectivity, curvature, features, density, quality or complete")
	f.Float64("sharp-angle", 0, "dihedral angle in degrees above which an edge is sharp")
	f.Float64("corner-angle", 0, "angle defect in degrees above which a vertex is a corner")
	f.Float64("flat-angle", 0, "dihedral angle in degrees below which a triangle is flat")
	rootCmd.AddCommand(topologyCmd)
}

func runTopology(cmd *cobra.Command, args []string) error {
	if !topologyJSON {
		return eachMesh(cmd, args[0], func(r *pipeline.Runner, m *mesh.Mesh, w io.Writer) error {
			a, err := r.Analyze(m)
			if err != nil {
				return err
			}
			return a.Dump(w)
		})
	}

	r, meshes, err := loadMeshes(cmd, args[0])
	if err != nil {
		return err
	}
	out := make([]*topology.Analysis, 0, len(meshes))
	for _, m := range meshes {
		a, err := r.Analyze(m)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Name(), err)
		}
		out = append(out, a)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal topology: %w", err)
	}
	return nil
}
