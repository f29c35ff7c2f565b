package d2

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// collinearTol is the sine of the smallest corner angle considered
// to be a proper turn.
const collinearTol = 1e-12

var (
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")
	ErrZeroArea       = errors.New("polygon has zero or undefined area")
	ErrNoEar          = errors.New("no ear found, polygon is not simple")
)

// Area returns the signed area of the closed polygon poly. It is positive
// when the vertices are in counter-clockwise order.
func Area(poly []r2.Vec) float64 {
	var sum float64
	n := len(poly)
	for i := range poly {
		sum += r2.Cross(poly[i], poly[(i+1)%n])
	}
	return sum / 2
}

// Orientation returns 1 if poly is counter-clockwise, -1 if clockwise
// and 0 if the polygon has no area.
func Orientation(poly []r2.Vec) int {
	a := Area(poly)
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}

// Triangulate decomposes the simple polygon poly into len(poly)-2 triangles
// by ear clipping. The result holds indices into poly. Every triangle is
// counter-clockwise regardless of the orientation of poly. Unlike a fan
// from a single vertex, concave polygons are handled correctly.
func Triangulate(poly []r2.Vec) ([][3]int, error) {
	n := len(poly)
	if n < 3 {
		return nil, ErrTooFewVertices
	}
	area := Area(poly)
	if area == 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return nil, ErrZeroArea
	}
	// Work on a counter-clockwise ring of indices.
	ring := make([]int, n)
	for i := range ring {
		if area > 0 {
			ring[i] = i
		} else {
			ring[i] = n - 1 - i
		}
	}
	tris := make([][3]int, 0, n-2)
	for len(ring) > 3 {
		ear := findEar(poly, ring, true)
		if ear < 0 {
			// Numerical noise can hide every proper ear. Accept
			// any convex corner before giving up.
			ear = findEar(poly, ring, false)
			if ear < 0 {
				return nil, ErrNoEar
			}
		}
		m := len(ring)
		tris = append(tris, [3]int{ring[(ear+m-1)%m], ring[ear], ring[(ear+1)%m]})
		ring = append(ring[:ear], ring[ear+1:]...)
	}
	tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
	return tris, nil
}

// findEar returns the position in ring of a clippable corner or -1.
// When strict is set no other ring vertex may lie inside or on the
// corner's triangle.
func findEar(poly []r2.Vec, ring []int, strict bool) int {
	m := len(ring)
	for i := range ring {
		a := poly[ring[(i+m-1)%m]]
		b := poly[ring[i]]
		c := poly[ring[(i+1)%m]]
		if !convex(a, b, c) {
			continue
		}
		if !strict {
			return i
		}
		ear := true
		for j := range ring {
			if j == i || j == (i+m-1)%m || j == (i+1)%m {
				continue
			}
			if inTriangle(poly[ring[j]], a, b, c) {
				ear = false
				break
			}
		}
		if ear {
			return i
		}
	}
	return -1
}

// convex reports whether a->b->c turns left by more than collinearTol.
func convex(a, b, c r2.Vec) bool {
	e1 := r2.Sub(b, a)
	e2 := r2.Sub(c, a)
	return r2.Cross(e1, e2) > collinearTol*r2.Norm(e1)*r2.Norm(e2)
}

// inTriangle reports whether p lies inside or on the boundary of the
// counter-clockwise triangle abc.
func inTriangle(p, a, b, c r2.Vec) bool {
	return r2.Cross(r2.Sub(b, a), r2.Sub(p, a)) >= 0 &&
		r2.Cross(r2.Sub(c, b), r2.Sub(p, b)) >= 0 &&
		r2.Cross(r2.Sub(a, c), r2.Sub(p, c)) >= 0
}
