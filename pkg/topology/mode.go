package topology

import (
	"fmt"
	"strings"

	"github.com/chazu/kerf/pkg/mesh"
)

// ErrUnknownMode is returned by ParseMode for names it does not know.
var ErrUnknownMode = fmt.Errorf("%w: unknown analysis mode", mesh.ErrInvalidInput)

// Mode selects which sections of an analysis are reported. The summary is
// always reported.
type Mode int

const (
	ModeComplete Mode = iota
	ModeConnectivity
	ModeCurvature
	ModeFeatures
	ModeDensity
	ModeQuality
)

var modeNames = [...]string{"complete", "connectivity", "curvature", "features", "density", "quality"}

func (m Mode) String() string {
	if m < ModeComplete || m > ModeQuality {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode accepts the names printed by String, case-insensitively.
func ParseMode(name string) (Mode, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range modeNames {
		if s == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q, expected one of %s", ErrUnknownMode, name, strings.Join(modeNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < ModeComplete || m > ModeQuality {
		return nil, fmt.Errorf("%w %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// includes reports whether section s is reported under m.
func (m Mode) includes(s Mode) bool {
	return m == ModeComplete || m == s
}
