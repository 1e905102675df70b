package mesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortAxis(t *testing.T) {
	tests := []struct {
		in        string
		want      SortAxis
		primary   Axis
		composite bool
	}{
		{"x", SortX, AxisX, false},
		{"Y", SortY, AxisY, false},
		{" z ", SortZ, AxisZ, false},
		{"xy", SortXY, AxisX, true},
		{"xz", SortXZ, AxisX, true},
		{"yz", SortYZ, AxisX, true},
		{"xyz", SortXYZ, AxisX, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortAxis(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.primary, got.Primary())
			assert.Equal(t, tt.composite, got.IsComposite())
		})
	}
}

func TestParseSortAxisRejectsUnknown(t *testing.T) {
	_, err := ParseSortAxis("w")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSortAxisText(t *testing.T) {
	b, err := SortYZ.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "yz", string(b))

	var s SortAxis
	require.NoError(t, s.UnmarshalText([]byte("xyz")))
	assert.Equal(t, SortXYZ, s)

	_, err = SortAxis(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown", SortAxis(42).String())
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "x", AxisX.String())
	assert.Equal(t, "y", AxisY.String())
	assert.Equal(t, "z", AxisZ.String())
	assert.Equal(t, "unknown", Axis(7).String())
}
