// Package config holds the settings every kerf run reads: tree and
// partition parameters, decomposition strategy inputs, tessellation
// resolution, the script timeout and topology thresholds. Settings are loaded from TOML over
// built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/kerf/pkg/bvh"
	"github.com/chazu/kerf/pkg/decompose"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/topology"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Settings is the full configuration surface.
type Settings struct {
	BVH       BVH       `toml:"bvh"`
	Partition Partition `toml:"partition"`
	Decompose Decompose `toml:"decompose"`
	Mesh      Mesh      `toml:"mesh"`
	Engine    Engine    `toml:"engine"`
	Accel     Accel     `toml:"accel"`
	Topology  Topology  `toml:"topology"`
}

// BVH configures the bounding volume tree.
type BVH struct {
	LeafSize int `toml:"leaf_size"`
	MaxDepth int `toml:"max_depth"`
}

// Partition configures the X-slab partition index.
type Partition struct {
	Count    int           `toml:"count"`
	SortAxis mesh.SortAxis `toml:"sort_axis"`
}

// Decompose selects the decomposition strategy and its inputs.
type Decompose struct {
	Strategy             decompose.Strategy `toml:"strategy"`
	MaxParts             int                `toml:"max_parts"`
	MaxDepth             int                `toml:"max_depth"`
	QualityThreshold     float64            `toml:"quality_threshold"`
	ConcavityTolerance   float64            `toml:"concavity_tolerance"`
	VoxelSize            float64            `toml:"voxel_size"`
	MinTrianglesPerVoxel int                `toml:"min_triangles_per_voxel"`
}

// Mesh configures tessellation.
type Mesh struct {
	// Cells is the marching cubes resolution along a solid's longest axis.
	Cells int `toml:"cells"`
}

// Engine configures job script evaluation.
type Engine struct {
	Timeout Duration `toml:"timeout"`
}

// Accel configures parallel centroid computation and tessellation.
type Accel struct {
	Parallel bool `toml:"parallel"`
	Workers  int  `toml:"workers"`
}

// Topology holds the topology analysis thresholds. Angles are in degrees.
type Topology struct {
	Mode          topology.Mode `toml:"mode"`
	SharpAngle    float64       `toml:"sharp_angle"`
	CornerAngle   float64       `toml:"corner_angle"`
	FlatAngle     float64       `toml:"flat_angle"`
	WeldTolerance float64       `toml:"weld_tolerance"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	p := decompose.DefaultParams()
	tp := topology.DefaultParams()
	return Settings{
		BVH:       BVH{LeafSize: 10, MaxDepth: bvh.MaxDepth},
		Partition: Partition{Count: 4, SortAxis: mesh.SortXYZ},
		Decompose: Decompose{
			Strategy:             p.Strategy,
			MaxParts:             p.MaxParts,
			MaxDepth:             p.MaxDepth,
			QualityThreshold:     p.QualityThreshold,
			ConcavityTolerance:   p.ConcavityTolerance,
			VoxelSize:            p.VoxelSize,
			MinTrianglesPerVoxel: p.MinTrianglesPerVoxel,
		},
		Mesh:   Mesh{Cells: 64},
		Engine: Engine{Timeout: Duration{30 * time.Second}},
		Topology: Topology{
			Mode:          tp.Mode,
			SharpAngle:    tp.SharpAngle,
			CornerAngle:   tp.CornerAngle,
			FlatAngle:     tp.FlatAngle,
			WeldTolerance: tp.Tolerance,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	if err := s.decode(data); err != nil {
		return s, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes TOML text over the defaults.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := s.decode(data); err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func (s *Settings) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return err
	}
	return nil
}

// Write encodes s as TOML.
func (s Settings) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}

// Validate reports every out-of-range value at once.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(s.BVH.LeafSize >= 1, "bvh.leaf_size must be at least 1, got %d", s.BVH.LeafSize)
	check(s.BVH.MaxDepth >= 0 && s.BVH.MaxDepth <= bvh.MaxDepth,
		"bvh.max_depth must be in [0, %d], got %d", bvh.MaxDepth, s.BVH.MaxDepth)
	check(s.Partition.Count >= 1, "partition.count must be at least 1, got %d", s.Partition.Count)
	check(s.Partition.SortAxis >= mesh.SortX && s.Partition.SortAxis <= mesh.SortXYZ,
		"partition.sort_axis %d is unknown", int(s.Partition.SortAxis))

	d := s.Decompose
	check(d.Strategy >= decompose.StrategyApprox && d.Strategy <= decompose.StrategyVoxel,
		"decompose.strategy %d is unknown", int(d.Strategy))
	check(d.MaxParts >= 1, "decompose.max_parts must be at least 1, got %d", d.MaxParts)
	check(d.MaxDepth >= 0 && d.MaxDepth <= decompose.MaxHierarchicalDepth,
		"decompose.max_depth must be in [0, %d], got %d", decompose.MaxHierarchicalDepth, d.MaxDepth)
	check(inUnit(d.QualityThreshold), "decompose.quality_threshold must be in [0, 1], got %v", d.QualityThreshold)
	check(inUnit(d.ConcavityTolerance), "decompose.concavity_tolerance must be in [0, 1], got %v", d.ConcavityTolerance)
	check(d.VoxelSize > 0 && !math.IsInf(d.VoxelSize, 1), "decompose.voxel_size must be positive, got %v", d.VoxelSize)
	check(d.MinTrianglesPerVoxel >= 0, "decompose.min_triangles_per_voxel must not be negative, got %d", d.MinTrianglesPerVoxel)

	check(s.Mesh.Cells >= 8, "mesh.cells must be at least 8, got %d", s.Mesh.Cells)
	check(s.Engine.Timeout.Duration > 0, "engine.timeout must be positive, got %s", s.Engine.Timeout)
	check(s.Accel.Workers >= 0, "accel.workers must not be negative, got %d", s.Accel.Workers)

	tp := s.Topology
	check(tp.Mode >= topology.ModeComplete && tp.Mode <= topology.ModeQuality,
		"topology.mode %d is unknown", int(tp.Mode))
	check(inAngle(tp.SharpAngle), "topology.sharp_angle must be in (0, 180], got %v", tp.SharpAngle)
	check(inAngle(tp.CornerAngle), "topology.corner_angle must be in (0, 180], got %v", tp.CornerAngle)
	check(inAngle(tp.FlatAngle), "topology.flat_angle must be in (0, 180], got %v", tp.FlatAngle)
	check(tp.WeldTolerance > 0 && !math.IsInf(tp.WeldTolerance, 1),
		"topology.weld_tolerance must be positive, got %v", tp.WeldTolerance)

	return errors.Join(errs...)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

func inAngle(deg float64) bool {
	return deg > 0 && deg <= 180
}

// DecomposeParams converts the decompose section into strategy inputs.
func (s Settings) DecomposeParams() decompose.Params {
	d := s.Decompose
	return decompose.Params{
		Strategy:             d.Strategy,
		MaxParts:             d.MaxParts,
		MaxDepth:             d.MaxDepth,
		QualityThreshold:     d.QualityThreshold,
		ConcavityTolerance:   d.ConcavityTolerance,
		VoxelSize:            d.VoxelSize,
		MinTrianglesPerVoxel: d.MinTrianglesPerVoxel,
	}
}

// TopologyParams converts the topology section into analysis inputs.
func (s Settings) TopologyParams() topology.Params {
	t := s.Topology
	return topology.Params{
		Mode:        t.Mode,
		SharpAngle:  t.SharpAngle,
		CornerAngle: t.CornerAngle,
		FlatAngle:   t.FlatAngle,
		Tolerance:   t.WeldTolerance,
	}
}
