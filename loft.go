package wing

import (
	"fmt"
	"math"

	"github.com/soypat/wing/internal/d2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Build lofts prof into a closed wing panel described by params. The
// profile is cleaned of duplicate points before placement.
func Build(prof Profile, params Parameters) (Mesh, error) {
	if err := params.Validate(); err != nil {
		return Mesh{}, err
	}
	prof = prof.Clean()
	if len(prof) < 3 {
		return Mesh{}, &Error{Kind: ErrEmptyProfile, Value: float64(len(prof)), Index: -1}
	}
	root, err := params.Root(prof)
	if err != nil {
		return Mesh{}, err
	}
	tip, err := params.Tip(prof)
	if err != nil {
		return Mesh{}, err
	}
	return Loft(root, tip)
}

// Loft joins the root and tip sections into a closed solid. Each section
// must lie in a plane of constant Z and the two planes must differ. The
// side wall connects point i of both sections to point i+1, wrapping
// around, with two triangles per quad split along root[i]->tip[i+1]. The
// sections are capped with an ear clipping triangulation of their outline.
// All normals point out of the solid whichever side of the root the tip
// lies on.
//
// For N points the mesh has 2N side triangles followed by N-2 root cap
// and N-2 tip cap triangles.
func Loft(root, tip Section) (Mesh, error) {
	n := len(root)
	if n != len(tip) {
		return Mesh{}, meshErr(-1, fmt.Sprintf("root has %d points, tip has %d", n, len(tip)), nil)
	}
	if n < 3 {
		return Mesh{}, meshErr(-1, fmt.Sprintf("sections have %d points, need at least 3", n), nil)
	}
	rootZ, err := root.z()
	if err != nil {
		return Mesh{}, err
	}
	tipZ, err := tip.z()
	if err != nil {
		return Mesh{}, err
	}
	// span is +1 when the tip lies above the root along Z.
	var span int
	switch {
	case tipZ > rootZ:
		span = 1
	case tipZ < rootZ:
		span = -1
	default:
		return Mesh{}, meshErr(-1, fmt.Sprintf("root and tip sections share the plane z=%g", rootZ), nil)
	}
	// The winding of every side quad follows from the direction the
	// profile is traversed in and the side of the root the tip is on.
	// Selig order is counter-clockwise.
	orient := d2.Orientation(root.Profile())
	if orient == 0 {
		return Mesh{}, meshErr(-1, "root section encloses no area", nil)
	}
	m := Mesh{Triangles: make([]Triangle, 0, 2*n+2*(n-2))}
	add := func(a, b, c r3.Vec) error {
		t, ok := newTriangle(a, b, c)
		if !ok {
			return meshErr(len(m.Triangles), "zero area triangle", nil)
		}
		m.Triangles = append(m.Triangles, t)
		return nil
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		r0, r1, t0, t1 := root[i], root[j], tip[i], tip[j]
		if orient*span > 0 {
			if err = add(r0, r1, t1); err == nil {
				err = add(r0, t1, t0)
			}
		} else {
			if err = add(r0, t1, r1); err == nil {
				err = add(r0, t0, t1)
			}
		}
		if err != nil {
			return Mesh{}, err
		}
	}
	m.Side = len(m.Triangles)

	tipOutward := r3.Vec{Z: float64(span)}
	m.Triangles, err = appendCap(m.Triangles, root, r3.Scale(-1, tipOutward))
	if err != nil {
		return Mesh{}, err
	}
	m.RootCap = len(m.Triangles) - m.Side
	m.Triangles, err = appendCap(m.Triangles, tip, tipOutward)
	if err != nil {
		return Mesh{}, err
	}
	m.TipCap = len(m.Triangles) - m.Side - m.RootCap
	return m, nil
}

// appendCap triangulates the planar section s and appends the triangles
// to dst, each wound so its normal points along outward.
func appendCap(dst []Triangle, s Section, outward r3.Vec) ([]Triangle, error) {
	tris, err := d2.Triangulate(s.Profile())
	if err != nil {
		return dst, meshErr(-1, "end cap triangulation", err)
	}
	for _, idx := range tris {
		t, ok := newTriangle(s[idx[0]], s[idx[1]], s[idx[2]])
		if !ok {
			return dst, meshErr(len(dst), "zero area end cap triangle", nil)
		}
		if r3.Dot(t.N, outward) < 0 {
			t = t.flip()
		}
		dst = append(dst, t)
	}
	return dst, nil
}

// z returns the Z coordinate shared by all points of s.
func (s Section) z() (float64, error) {
	z := s[0].Z
	for _, v := range s[1:] {
		if v.Z != z {
			return 0, meshErr(-1, fmt.Sprintf("section is not planar: z=%g and z=%g", z, v.Z), nil)
		}
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, meshErr(-1, fmt.Sprintf("section plane z=%g", z), nil)
	}
	return z, nil
}
