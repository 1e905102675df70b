package topology

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// angle returns the angle between a and b in radians, or 0 if either is
// zero length.
func angle(a, b v3.Vec) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// faceNormal is the unit normal implied by the winding of p. A degenerate
// triangle has a zero normal.
func faceNormal(p [3]v3.Vec) v3.Vec {
	n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
	if l := n.Length(); l > 0 {
		return n.DivScalar(l)
	}
	return v3.Vec{}
}

func area(p [3]v3.Vec) float64 {
	return p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Length() / 2
}

// interiorAngles returns the angle at each corner of p.
func interiorAngles(p [3]v3.Vec) [3]float64 {
	var a [3]float64
	for i := range p {
		j, k := (i+1)%3, (i+2)%3
		a[i] = angle(p[j].Sub(p[i]), p[k].Sub(p[i]))
	}
	return a
}

// aspectRatio is the shortest edge over the longest: 1 for an equilateral
// triangle, 0 for a degenerate one.
func aspectRatio(p [3]v3.Vec) float64 {
	lo, hi := math.Inf(1), 0.0
	for i := range p {
		l := p[(i+1)%3].Sub(p[i]).Length()
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	if hi == 0 {
		return 0
	}
	return lo / hi
}

// TriangleQuality scores a triangle in [0, 1] as the mean of its aspect
// ratio and an angle score. The angle score multiplies, per corner, how
// close the angle is to 60 degrees; a corner of 120 degrees or more
// scores 0.
func TriangleQuality(p [3]v3.Vec) float64 {
	if area(p) == 0 {
		return 0
	}
	const ideal = math.Pi / 3
	score := 1.0
	for _, a := range interiorAngles(p) {
		score *= math.Max(0, 1-math.Abs(a-ideal)/ideal)
	}
	return (aspectRatio(p) + score) / 2
}
