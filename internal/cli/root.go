// Package cli is the kerf command line. Every subcommand reads a job
// script, tessellates its models and runs one or all pipeline steps on
// them.
package cli

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/decompose"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/topology"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// newKernel builds the kernel for a run. Tests swap it for a faster one.
var newKernel = func(cells int) kernel.Kernel {
	return sdfx.New(cells)
}

var (
	configPath string
	verbose    bool

	// settings is loaded once per invocation by the root pre-run hook.
	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "kerf",
	Short: "Spatial decomposition for triangle meshes",
	Long: `kerf builds bounding volume trees, X-axis partitions, convex-ish
decompositions and topology reports of the meshes declared by a job script.

A job script is a small Lisp program:

  (model "bracket"
    (difference (box 40 20 10)
                (translate (cylinder 12 4) 20 10 0)))

Settings come from built-in defaults, then --config, then flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "TOML settings file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every step at debug level")

	pf.Int("leaf-size", 0, "max triangles per tree leaf")
	pf.Int("partitions", 0, "number of X partitions")
	pf.String("sort-axis", "", "tree sort axis: x, y, z, xy, xz, yz or xyz")
	pf.String("strategy", "", "decomposition strategy: approx, hierarchical or voxel")
	pf.Int("max-parts", 0, "approximate-convex part budget")
	pf.Int("max-depth", 0, "hierarchical split depth")
	pf.Float64("tolerance", 0, "approximate-convex concavity tolerance")
	pf.Float64("quality", 0, "decomposition quality below which a run warns")
	pf.Float64("voxel-size", 0, "voxel edge length")
	pf.Int("min-triangles", 0, "minimum triangles per kept voxel")
	pf.Int("cells", 0, "marching cubes resolution")
	pf.Duration("timeout", 0, "script evaluation timeout")
	pf.Bool("parallel", false, "compute centroids in parallel")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	s, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &s); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	settings = s
	log.WithField("config", configPath).Debug("settings loaded")
	return nil
}

// applyFlags overrides s with every flag set on the command line.
func applyFlags(cmd *cobra.Command, s *config.Settings) error {
	f := cmd.Flags()
	var errs []error
	setInt := func(name string, dst *int) {
		if f.Changed(name) {
			v, err := f.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64) {
		if f.Changed(name) {
			v, err := f.GetFloat64(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	setInt("leaf-size", &s.BVH.LeafSize)
	setInt("partitions", &s.Partition.Count)
	setInt("max-parts", &s.Decompose.MaxParts)
	setInt("max-depth", &s.Decompose.MaxDepth)
	setInt("min-triangles", &s.Decompose.MinTrianglesPerVoxel)
	setInt("cells", &s.Mesh.Cells)
	setFloat("tolerance", &s.Decompose.ConcavityTolerance)
	setFloat("voxel-size", &s.Decompose.VoxelSize)
	setFloat("quality", &s.Decompose.QualityThreshold)
	setFloat("sharp-angle", &s.Topology.SharpAngle)
	setFloat("corner-angle", &s.Topology.CornerAngle)
	setFloat("flat-angle", &s.Topology.FlatAngle)

	if f.Changed("sort-axis") {
		name, _ := f.GetString("sort-axis")
		a, err := mesh.ParseSortAxis(name)
		if err != nil {
			return fmt.Errorf("--sort-axis: %w", err)
		}
		s.Partition.SortAxis = a
	}
	if f.Changed("strategy") {
		name, _ := f.GetString("strategy")
		st, err := decompose.ParseStrategy(name)
		if err != nil {
			return fmt.Errorf("--strategy: %w", err)
		}
		s.Decompose.Strategy = st
	}
	if f.Changed("mode") {
		name, _ := f.GetString("mode")
		m, err := topology.ParseMode(name)
		if err != nil {
			return fmt.Errorf("--mode: %w", err)
		}
		s.Topology.Mode = m
	}
	if f.Changed("timeout") {
		d, err := f.GetDuration("timeout")
		errs = append(errs, err)
		s.Engine.Timeout = config.Duration{Duration: d}
	}
	if f.Changed("parallel") {
		p, err := f.GetBool("parallel")
		errs = append(errs, err)
		s.Accel.Parallel = p
	}

	return errors.Join(errs...)
}
