package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/soypat/wing"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSTLTriangleMarshal(t *testing.T) {
	tri := wing.Triangle{
		V: [3]r3.Vec{{X: 0}, {X: 1}, {Y: 1}},
		N: r3.Vec{Z: 1},
	}
	var d, got stlTriangle
	d.set(tri)
	var b [stlTriangleSize]byte
	d.put(b[:])
	got.get(b[:])
	if got != d {
		t.Fatalf("got %+v, want %+v", got, d)
	}
	if err := got.validate(); err != nil {
		t.Fatal(err)
	}
	if back := got.toTriangle(); back != tri {
		t.Errorf("got %+v, want %+v", back, tri)
	}

	// Flipped normal disagrees with the winding.
	d.Normal[2] = -1
	if err := d.validate(); !errors.Is(err, errCalculatedNormalMismatch) {
		t.Errorf("got %v, want normal mismatch", err)
	}
	d.Vertex2 = d.Vertex1
	if err := d.validate(); err == nil {
		t.Error("degenerate triangle validated")
	}
}

func TestSTLHeaderName(t *testing.T) {
	var h stlHeader
	h.setName("Solid wing")
	if bytes.HasPrefix(bytes.ToLower(h.Header[:]), []byte("solid")) {
		t.Errorf("binary header starts with solid: %q", h.Header[:16])
	}
	h.setName("wing")
	if string(h.Header[:5]) != "wing\x00" {
		t.Errorf("got header %q", h.Header[:5])
	}
	long := string(bytes.Repeat([]byte{'a'}, 100))
	h.setName(long)
	if string(h.Header[:]) != long[:80] {
		t.Error("long name not truncated to header size")
	}
}

func TestReadSTLTruncated(t *testing.T) {
	var b bytes.Buffer
	m, err := wing.Build(wing.Profile{{X: 0}, {X: 1, Y: 0.1}, {X: 1, Y: -0.1}},
		wing.Parameters{SemiSpan: 1, RootChord: 1, TipChord: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSTL(&b, "wing", m); err != nil {
		t.Fatal(err)
	}
	b.Truncate(b.Len() - 10)
	if _, err := readBinarySTL(&b); err == nil {
		t.Error("expected error reading truncated STL")
	}
	if _, err := readBinarySTL(bytes.NewReader(make([]byte, 84))); err == nil {
		t.Error("expected error reading STL without triangles")
	}
}
