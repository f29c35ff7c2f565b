package wing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/soypat/wing/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Profile is a closed airfoil boundary in chord-normalized coordinates.
// The last point is adjacent to the first. In Selig order the points
// run from the trailing edge over the upper surface to the leading edge
// and back along the lower surface.
type Profile []r2.Vec

// Parse reads a Selig formatted airfoil. The first non-blank line is
// skipped as the airfoil name unless it holds exactly two finite numbers.
// Blank lines and lines starting with # are ignored. Line numbers in
// returned errors count every physical line starting at 1.
func Parse(r io.Reader) (Profile, error) {
	var (
		p        Profile
		line     int
		seenData bool
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if line == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
		}
		fields := strings.Fields(text)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		v, err := parsePoint(fields)
		if !seenData {
			seenData = true
			if err != nil {
				continue // airfoil name.
			}
		}
		if err != nil {
			return nil, parseErr(line, text, err)
		}
		p = append(p, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading airfoil after line %d: %w", line, err)
	}
	if len(p) < 3 {
		return nil, &Error{Kind: ErrEmptyProfile, Value: float64(len(p)), Index: -1}
	}
	return p, nil
}

func parsePoint(fields []string) (r2.Vec, error) {
	if len(fields) != 2 {
		return r2.Vec{}, fmt.Errorf("expected 2 values, got %d", len(fields))
	}
	var xy [2]float64
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return r2.Vec{}, err
		}
		xy[i] = f
	}
	v := r2.Vec{X: xy[0], Y: xy[1]}
	if !d2.IsFinite(v) {
		return r2.Vec{}, fmt.Errorf("non-finite point %v", v)
	}
	return v, nil
}

// ParseFile parses the Selig airfoil file at path.
func ParseFile(path string) (Profile, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Parse(fp)
}

// Clean returns a copy of p without consecutive duplicate points. A last
// point repeating the first, as is common for the trailing edge of Selig
// files, is dropped as well.
func (p Profile) Clean() Profile {
	clean := make(Profile, 0, len(p))
	for i, v := range p {
		if i > 0 && v == p[i-1] {
			continue
		}
		clean = append(clean, v)
	}
	for len(clean) > 1 && clean[len(clean)-1] == clean[0] {
		clean = clean[:len(clean)-1]
	}
	return clean
}

// Orientation returns 1 for counter-clockwise profiles (Selig order),
// -1 for clockwise profiles and 0 if the profile has no area.
func (p Profile) Orientation() int {
	return d2.Orientation(p)
}

// Bounds returns the bounding box of the profile.
func (p Profile) Bounds() d2.Box {
	return d2.Set(p).Bounds()
}
