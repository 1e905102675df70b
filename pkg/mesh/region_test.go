package mesh

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/stretchr/testify/assert"
)

// fixedRegions is a RegionSet backed by literal triangle lists.
type fixedRegions [][]int

func (f fixedRegions) RegionCount() int             { return len(f) }
func (f fixedRegions) RegionBounds(int) sdf.Box3    { return EmptyBox() }
func (f fixedRegions) RegionTriangles(id int) []int { return f[id] }

var _ RegionSet = fixedRegions(nil)

func TestCollectRegions(t *testing.T) {
	rs := fixedRegions{{0, 2}, {3}}

	ids := CollectRegions(rs, 5)

	assert.Equal(t, []int{0, Unassigned, 0, 1, Unassigned}, ids)
}
