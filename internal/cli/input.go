package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/pipeline"
)

// readScript returns the contents of path, or of stdin when path is "-".
func readScript(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(data), nil
}

func newRunner() (*pipeline.Runner, error) {
	return pipeline.New(newKernel(settings.Mesh.Cells), settings)
}

// loadMeshes evaluates the script named by path and tessellates its models.
func loadMeshes(cmd *cobra.Command, path string) (*pipeline.Runner, []*mesh.Mesh, error) {
	src, err := readScript(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	r, err := newRunner()
	if err != nil {
		return nil, nil, err
	}
	meshes, err := r.Meshes(commandContext(cmd), src)
	if err != nil {
		return nil, nil, err
	}
	return r, meshes, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
