package d2

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Transform represents a 2D affine transformation stored as
// a row-major 3x3 homogeneous matrix.
type Transform struct {
	data [3 * 3]float64 // stack stronk
}

var identityT = Transform{data: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}

func (t Transform) isIdentity() bool {
	return t == identityT
}

// Scale returns a transform that scales both axes by k.
func Scale(k float64) Transform {
	t := identityT
	t.set(0, 0, k)
	t.set(1, 1, k)
	return t
}

// Translate returns a transform that translates by v.
func Translate(v r2.Vec) Transform {
	t := identityT
	t.set(0, 2, v.X)
	t.set(1, 2, v.Y)
	return t
}

func (t *Transform) at(i, j int) float64 {
	return t.data[i*3+j]
}

func (t *Transform) set(i, j int, v float64) {
	t.data[i*3+j] = v
}

// Mul multiplies 3x3 matrices. The result applies b first, then a.
func (a Transform) Mul(b Transform) Transform {
	m := Transform{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.set(i, j, a.at(i, 0)*b.at(0, j)+a.at(i, 1)*b.at(1, j)+a.at(i, 2)*b.at(2, j))
		}
	}
	return m
}

// ApplyPos applies the transform to a position.
func (t Transform) ApplyPos(b r2.Vec) r2.Vec {
	if t.isIdentity() {
		return b
	}
	return r2.Vec{
		X: t.at(0, 0)*b.X + t.at(0, 1)*b.Y + t.at(0, 2),
		Y: t.at(1, 0)*b.X + t.at(1, 1)*b.Y + t.at(1, 2),
	}
}
