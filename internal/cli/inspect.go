package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/decompose"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/pipeline"
)

var decomposeJSON bool

var bvhCmd = &cobra.Command{
	Use:   "bvh <script>",
	Short: "Print the bounding volume tree of each model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eachMesh(cmd, args[0], func(r *pipeline.Runner, m *mesh.Mesh, w io.Writer) error {
			t, err := r.BuildTree(m)
			if err != nil {
				return err
			}
			return t.Dump(w)
		})
	},
}

var partitionCmd = &cobra.Command{
	Use:   "partition <script>",
	Short: "Print the X-axis partitions of each model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eachMesh(cmd, args[0], func(r *pipeline.Runner, m *mesh.Mesh, w io.Writer) error {
			idx, err := r.BuildIndex(m)
			if err != nil {
				return err
			}
			return idx.Dump(w)
		})
	},
}

var decomposeCmd = &cobra.Command{
	Use:   "decompose <script>",
	Short: "Decompose each model into parts",
	Long: `Decomposes each model with the configured strategy:

  approx        split at the longest axis until parts are convex enough
  hierarchical  split to a fixed depth
  voxel         bucket triangles into a grid; sparse cells are dropped`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	decomposeCmd.Flags().BoolVar(&decomposeJSON, "json", false, "output parts as JSON")
	rootCmd.AddCommand(bvhCmd, partitionCmd, decomposeCmd)
}

// eachMesh loads the script and calls fn for every model, each under a
// header line naming it.
func eachMesh(cmd *cobra.Command, path string, fn func(*pipeline.Runner, *mesh.Mesh, io.Writer) error) error {
	r, meshes, err := loadMeshes(cmd, path)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, m := range meshes {
		if _, err := fmt.Fprintf(w, "== %s (%d triangles) ==\n", m.Name(), m.TriangleCount()); err != nil {
			return err
		}
		if err := fn(r, m, w); err != nil {
			return fmt.Errorf("%s: %w", m.Name(), err)
		}
	}
	return nil
}

type namedDecomposition struct {
	Model string `json:"model"`
	*decompose.Decomposition
}

func runDecompose(cmd *cobra.Command, args []string) error {
	if !decomposeJSON {
		return eachMesh(cmd, args[0], func(r *pipeline.Runner, m *mesh.Mesh, w io.Writer) error {
			d, err := r.Decompose(m)
			if err != nil {
				return err
			}
			return d.Dump(w)
		})
	}

	r, meshes, err := loadMeshes(cmd, args[0])
	if err != nil {
		return err
	}
	out := make([]namedDecomposition, 0, len(meshes))
	for _, m := range meshes {
		d, err := r.Decompose(m)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Name(), err)
		}
		out = append(out, namedDecomposition{Model: m.Name(), Decomposition: d})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decomposition: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
