package wing

import (
	"math"

	"github.com/soypat/wing/internal/d2"
	"github.com/soypat/wing/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Section is an airfoil profile placed in 3D space at a span station.
// It has the same point count and order as the profile it came from.
type Section []r3.Vec

// Parameters define the planform of a straight tapered wing panel.
// Lengths share the unit of the output mesh.
type Parameters struct {
	// SemiSpan is the distance from root to tip along +Z.
	SemiSpan float64
	// Sweep shifts the tip section along +X. May be zero or negative.
	Sweep float64
	// RootChord and TipChord scale the chord-normalized profile.
	RootChord float64
	TipChord  float64
}

// Validate checks that all lengths are finite and that span and chords
// are strictly positive.
func (p Parameters) Validate() error {
	for _, c := range []struct {
		name     string
		v        float64
		positive bool
	}{
		{"semi-wingspan", p.SemiSpan, true},
		{"sweep", p.Sweep, false},
		{"root chord", p.RootChord, true},
		{"tip chord", p.TipChord, true},
	} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || (c.positive && c.v <= 0) {
			return &Error{Kind: ErrParameter, Text: c.name, Value: c.v, Index: -1}
		}
	}
	return nil
}

// Root places p at the wing root: z=0 and no sweep offset.
func (p Parameters) Root(prof Profile) (Section, error) {
	return Place(prof, p.RootChord, 0, 0)
}

// Tip places p at the wing tip, shifted by the full sweep distance.
func (p Parameters) Tip(prof Profile) (Section, error) {
	return Place(prof, p.TipChord, p.SemiSpan, p.Sweep)
}

// Place scales prof by chord, shifts it by sweep along X and
// puts it in the plane at z. Each point (x, y) maps to
// (x*chord + sweep, y*chord, z).
func Place(prof Profile, chord, z, sweep float64) (Section, error) {
	if !(chord > 0) || math.IsInf(chord, 0) {
		return nil, &Error{Kind: ErrDegenerateChord, Value: chord, Index: -1}
	}
	t := d2.Translate(r2.Vec{X: sweep}).Mul(d2.Scale(chord))
	sec := make(Section, len(prof))
	for i, v := range prof {
		sec[i] = d3.FromR2(t.ApplyPos(v), z)
	}
	return sec, nil
}

// Profile projects the section back onto the XY plane.
func (s Section) Profile() Profile {
	p := make(Profile, len(s))
	for i, v := range s {
		p[i] = d3.XY(v)
	}
	return p
}
