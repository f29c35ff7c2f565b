// Package matter compensates wing dimensions for the shrinkage of
// 3D printing filaments.
package matter

import (
	"fmt"
	"strings"

	"github.com/soypat/wing"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{name: "pla", shrink: 0.2e-2} // 0.2% shrinkage
	// PETG shrinks slightly more than PLA when cooling.
	PETG = ViscousMaterial{name: "petg", shrink: 0.4e-2}
	// ABS shrinks noticeably and warps without an enclosure.
	ABS = ViscousMaterial{name: "abs", shrink: 0.7e-2}
)

type ViscousMaterial struct {
	name string
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
}

// Lookup returns the material with the given case insensitive name.
func Lookup(name string) (ViscousMaterial, error) {
	for _, m := range []ViscousMaterial{PLA, PETG, ABS} {
		if strings.EqualFold(name, m.name) {
			return m, nil
		}
	}
	return ViscousMaterial{}, fmt.Errorf("unknown material %q (want pla, petg or abs)", name)
}

func (m ViscousMaterial) String() string { return m.name }

// Scale enlarges all wing dimensions so the printed part cools
// down to the requested size.
func (m ViscousMaterial) Scale(p wing.Parameters) wing.Parameters {
	scale := 1 / (1 - m.shrink)
	p.SemiSpan *= scale
	p.Sweep *= scale
	p.RootChord *= scale
	p.TipChord *= scale
	return p
}
