package wing

import (
	"fmt"
	"math"

	"github.com/soypat/wing/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a mesh facet. N is the outward unit normal.
type Triangle struct {
	V [3]r3.Vec
	N r3.Vec
}

// degenerateTol is the sine of the smallest triangle corner angle
// that is not considered degenerate.
const degenerateTol = 1e-12

// newTriangle returns the triangle abc with its normal computed from
// the vertex winding. ok is false if abc has no area.
func newTriangle(a, b, c r3.Vec) (t Triangle, ok bool) {
	t = Triangle{V: [3]r3.Vec{a, b, c}}
	e1 := r3.Sub(b, a)
	e2 := r3.Sub(c, a)
	n := r3.Cross(e1, e2)
	norm := r3.Norm(n)
	if !(norm > degenerateTol*r3.Norm(e1)*r3.Norm(e2)) || math.IsInf(norm, 0) {
		return t, false
	}
	t.N = r3.Scale(1/norm, n)
	return t, true
}

// Centroid returns the mean of the triangle's vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1./3, r3.Add(r3.Add(t.V[0], t.V[1]), t.V[2]))
}

// Area returns the area of the triangle.
func (t Triangle) Area() float64 {
	return r3.Norm(r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))) / 2
}

// flip reverses the winding and the normal.
func (t Triangle) flip() Triangle {
	t.V[1], t.V[2] = t.V[2], t.V[1]
	t.N = r3.Scale(-1, t.N)
	return t
}

// Mesh is a closed triangulated solid. Triangles are stored side wall
// first, then the root cap, then the tip cap.
type Mesh struct {
	Triangles []Triangle
	// Number of triangles of each part.
	Side, RootCap, TipCap int
}

// Bounds returns the bounding box of all mesh vertices.
func (m Mesh) Bounds() d3.Box {
	bb := d3.EmptyBox()
	for _, t := range m.Triangles {
		for _, v := range t.V {
			bb = bb.Include(v)
		}
	}
	return bb
}

// Volume returns the signed volume enclosed by the mesh. It is positive
// when the triangles of a closed mesh face outward.
func (m Mesh) Volume() float64 {
	var vol float64
	for _, t := range m.Triangles {
		vol += r3.Dot(t.V[0], r3.Cross(t.V[1], t.V[2]))
	}
	return vol / 6
}

// Validate checks that every normal is finite, of unit length and agrees
// with its triangle's winding, that the mesh is closed and consistently
// oriented (every directed edge appears once and its reverse appears
// once) and that it encloses a positive volume.
func (m Mesh) Validate() error {
	const normTol = 1e-9
	if len(m.Triangles) == 0 {
		return meshErr(-1, "no triangles", nil)
	}
	type edge [2]r3.Vec
	edges := make(map[edge]int, 3*len(m.Triangles))
	for i, t := range m.Triangles {
		if !d3.IsFinite(t.N) {
			return meshErr(i, "non-finite normal", nil)
		}
		if math.Abs(r3.Norm(t.N)-1) > normTol {
			return meshErr(i, fmt.Sprintf("normal length %g", r3.Norm(t.N)), nil)
		}
		calc, ok := newTriangle(t.V[0], t.V[1], t.V[2])
		if !ok {
			return meshErr(i, "zero area triangle", nil)
		}
		if r3.Dot(calc.N, t.N) < 1-normTol {
			return meshErr(i, "normal disagrees with vertex winding", nil)
		}
		for j := range t.V {
			edges[edge{t.V[j], t.V[(j+1)%3]}]++
		}
	}
	for e, n := range edges {
		if n != 1 {
			return meshErr(-1, fmt.Sprintf("edge %v used %d times in the same direction", e, n), nil)
		}
		if edges[edge{e[1], e[0]}] != 1 {
			return meshErr(-1, fmt.Sprintf("edge %v is not shared by an opposite facet", e), nil)
		}
	}
	if vol := m.Volume(); !(vol > 0) {
		return meshErr(-1, fmt.Sprintf("mesh is inside out, volume %g", vol), nil)
	}
	return nil
}
