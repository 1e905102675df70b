package mesh

import (
	"fmt"
	"strings"
)

// Axis is one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// SortAxis is the ordering requested for partitioning. Only the single-axis
// values change behavior; the composite values are accepted and resolve to
// their first axis through Primary.
type SortAxis int

const (
	SortX SortAxis = iota
	SortY
	SortZ
	SortXY
	SortXZ
	SortYZ
	SortXYZ
)

var sortAxisNames = [...]string{"x", "y", "z", "xy", "xz", "yz", "xyz"}

func (s SortAxis) String() string {
	if s < SortX || s > SortXYZ {
		return "unknown"
	}
	return sortAxisNames[s]
}

// ParseSortAxis converts "x", "xy", "xyz" etc. (case-insensitive).
func ParseSortAxis(name string) (SortAxis, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range sortAxisNames {
		if s == n {
			return SortAxis(i), nil
		}
	}
	return 0, fmt.Errorf("%w: sort axis %q, expected one of %s",
		ErrInvalidInput, name, strings.Join(sortAxisNames[:], ", "))
}

// IsComposite reports whether s names more than one axis.
func (s SortAxis) IsComposite() bool {
	return s >= SortXY
}

// Primary returns the axis honored for s. Composite values fall back to X.
func (s SortAxis) Primary() Axis {
	switch s {
	case SortY:
		return AxisY
	case SortZ:
		return AxisZ
	}
	return AxisX
}

// MarshalText implements encoding.TextMarshaler.
func (s SortAxis) MarshalText() ([]byte, error) {
	if s < SortX || s > SortXYZ {
		return nil, fmt.Errorf("%w: sort axis %d", ErrInvalidInput, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SortAxis) UnmarshalText(text []byte) error {
	v, err := ParseSortAxis(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
