// Package decompose splits a mesh into parts using one of three bounding
// box heuristics: approximate-convex, hierarchical and voxel. None of them
// computes a true convex hull.
package decompose

import (
	"fmt"
	"strings"

	"github.com/chazu/kerf/pkg/mesh"
)

var (
	ErrInvalidMaxParts  = fmt.Errorf("%w: max parts must be at least 1", mesh.ErrInvalidInput)
	ErrInvalidDepth     = fmt.Errorf("%w: max depth must be in [0, %d]", mesh.ErrInvalidInput, MaxHierarchicalDepth)
	ErrInvalidVoxelSize = fmt.Errorf("%w: voxel size must be a positive finite number", mesh.ErrInvalidInput)
	ErrInvalidTolerance = fmt.Errorf("%w: concavity tolerance is NaN", mesh.ErrInvalidInput)
	ErrUnknownStrategy  = fmt.Errorf("%w: unknown strategy", mesh.ErrInvalidInput)
)

// Strategy selects a decomposition algorithm.
type Strategy int

const (
	StrategyApprox Strategy = iota
	StrategyHierarchical
	StrategyVoxel
)

var strategyNames = [...]string{"approx", "hierarchical", "voxel"}

func (s Strategy) String() string {
	if s < StrategyApprox || s > StrategyVoxel {
		return "unknown"
	}
	return strategyNames[s]
}

// ParseStrategy accepts "approx", "hierarchical" and "voxel". "exact" is
// recognized but rejected since exact hulls are not implemented.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range strategyNames {
		if s == n {
			return Strategy(i), nil
		}
	}
	if n == "exact" {
		return 0, fmt.Errorf("%w %q: exact convex decomposition is not supported", ErrUnknownStrategy, name)
	}
	return 0, fmt.Errorf("%w %q, expected one of %s", ErrUnknownStrategy, name, strings.Join(strategyNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if s < StrategyApprox || s > StrategyVoxel {
		return nil, fmt.Errorf("%w %d", ErrUnknownStrategy, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Params holds the inputs of every strategy; Decompose reads only the
// fields the selected strategy needs.
type Params struct {
	Strategy Strategy

	// Approximate-convex.
	MaxParts           int
	ConcavityTolerance float64

	// Hierarchical. QualityThreshold is passed through as the split
	// threshold.
	MaxDepth         int
	QualityThreshold float64

	// Voxel.
	VoxelSize            float64
	MinTrianglesPerVoxel int
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Strategy:             StrategyApprox,
		MaxParts:             8,
		ConcavityTolerance:   0.1,
		MaxDepth:             3,
		QualityThreshold:     0.8,
		VoxelSize:            1.0,
		MinTrianglesPerVoxel: 10,
	}
}

// Decompose runs the strategy p selects.
func Decompose(m *mesh.Mesh, p Params) (*Decomposition, error) {
	switch p.Strategy {
	case StrategyApprox:
		return ApproximateConvex(m, p.MaxParts, p.ConcavityTolerance)
	case StrategyHierarchical:
		return Hierarchical(m, p.MaxDepth, p.QualityThreshold)
	case StrategyVoxel:
		return Voxel(m, p.VoxelSize, p.MinTrianglesPerVoxel)
	}
	return nil, fmt.Errorf("decompose: %w %d", ErrUnknownStrategy, int(p.Strategy))
}
