package render_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hschendel/stl"
	"github.com/soypat/wing"
	"github.com/soypat/wing/internal/d3"
	"github.com/soypat/wing/render"
)

const airfoil = `NACA 0012-ish
1.0000  0.0013
0.7500  0.0420
0.5000  0.0529
0.2500  0.0594
0.1000  0.0468
0.0000  0.0000
0.1000 -0.0468
0.2500 -0.0594
0.5000 -0.0529
0.7500 -0.0420
1.0000 -0.0013
`

var params = wing.Parameters{SemiSpan: 5, Sweep: 2, RootChord: 1, TipChord: 0.5}

func buildMesh(t *testing.T) wing.Mesh {
	t.Helper()
	p, err := wing.Parse(strings.NewReader(airfoil))
	if err != nil {
		t.Fatal(err)
	}
	m, err := wing.Build(p, params)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-6
	input := buildMesh(t)
	var b bytes.Buffer
	err := render.WriteSTL(&b, "naca", input)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84+50*len(input.Triangles) {
		t.Fatalf("got %d bytes for %d triangles", b.Len(), len(input.Triangles))
	}
	if !bytes.HasPrefix(b.Bytes(), []byte("naca\x00")) {
		t.Errorf("header does not hold solid name: %q", b.Bytes()[:8])
	}
	output, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(input.Triangles) {
		t.Fatal("length of triangles written/read not equal")
	}
	for iface, expect := range input.Triangles {
		got := output[iface]
		for i := range expect.V {
			if !d3.EqualWithin(got.V[i], expect.V[i], tol) {
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got.V[i], expect.V[i])
			}
		}
		if !d3.EqualWithin(got.N, expect.N, tol) {
			t.Errorf("%dth triangle normal got %0.5g, want %0.5g", iface, got.N, expect.N)
		}
	}
}

func TestSTLDeterministic(t *testing.T) {
	var outputs [2]bytes.Buffer
	for i := range outputs {
		if err := render.WriteSTL(&outputs[i], "naca", buildMesh(t)); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(outputs[0].Bytes(), outputs[1].Bytes()) {
		t.Fatal("repeated runs produced different output")
	}
}

func TestASCIISTL(t *testing.T) {
	m := buildMesh(t)
	var b bytes.Buffer
	if err := render.WriteASCIISTL(&b, "naca", m); err != nil {
		t.Fatal(err)
	}
	text := b.String()
	if !strings.HasPrefix(text, "solid naca") || !strings.Contains(text, "endsolid") {
		t.Fatalf("unexpected ASCII STL framing: %.40q", text)
	}
	if got := strings.Count(text, "facet normal"); got != len(m.Triangles) {
		t.Errorf("got %d facets, want %d", got, len(m.Triangles))
	}
	solid, err := stl.ReadAll(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if solid.Name != "naca" || len(solid.Triangles) != len(m.Triangles) {
		t.Errorf("read back solid %q with %d triangles", solid.Name, len(solid.Triangles))
	}
	for i, tri := range solid.Triangles {
		want := m.Triangles[i].V[0]
		got := tri.Vertices[0]
		if math.Abs(float64(got[0])-want.X) > 1e-5 || math.Abs(float64(got[2])-want.Z) > 1e-5 {
			t.Fatalf("triangle %d vertex got %v, want %v", i, got, want)
		}
	}
}

func TestCreateSTL(t *testing.T) {
	m := buildMesh(t)
	dir := t.TempDir()
	for _, format := range []render.Format{render.Binary, render.ASCII} {
		path := filepath.Join(dir, "wing_"+format.String()+".stl")
		if err := os.WriteFile(path, []byte("old"), 0666); err != nil {
			t.Fatal(err)
		}
		if err := render.CreateSTL(path, "wing", m, format); err != nil {
			t.Fatal(err)
		}
		solid, err := stl.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(solid.Triangles) != len(m.Triangles) {
			t.Errorf("%v: read %d triangles, want %d", format, len(solid.Triangles), len(m.Triangles))
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestCreateSTLError(t *testing.T) {
	m := buildMesh(t)
	path := filepath.Join(t.TempDir(), "missing", "wing.stl")
	err := render.CreateSTL(path, "wing", m, render.Binary)
	if !errors.Is(err, wing.ErrWrite) {
		t.Fatalf("got %v, want write error", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output file exists after failure: %v", err)
	}
	empty := filepath.Join(t.TempDir(), "empty.stl")
	if err := render.CreateSTL(empty, "wing", wing.Mesh{}, render.Binary); !errors.Is(err, wing.ErrDegenerateMesh) {
		t.Errorf("got %v, want degenerate mesh writing empty mesh", err)
	}
	if err := render.CreateSTL(empty, "wing", m, render.Format(7)); !errors.Is(err, wing.ErrParameter) {
		t.Errorf("got %v, want parameter error for unknown format", err)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Errorf("output file exists after failure: %v", err)
	}
}

func TestCreateSTLMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	m := buildMesh(t)
	dir := t.TempDir()
	// A new file gets the same mode as one made by os.Create.
	ref, err := os.Create(filepath.Join(dir, "ref"))
	if err != nil {
		t.Fatal(err)
	}
	ref.Close()
	refInfo, err := os.Stat(ref.Name())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "new.stl")
	if err := render.CreateSTL(path, "wing", m, render.Binary); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != refInfo.Mode().Perm() {
		t.Errorf("new file mode %v, want %v", info.Mode().Perm(), refInfo.Mode().Perm())
	}
	// An existing file keeps its mode, even bits the umask would clear.
	existing := filepath.Join(dir, "existing.stl")
	if err := os.WriteFile(existing, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	const mode = 0646
	if err := os.Chmod(existing, mode); err != nil {
		t.Fatal(err)
	}
	if err := render.CreateSTL(existing, "wing", m, render.ASCII); err != nil {
		t.Fatal(err)
	}
	info, err = os.Stat(existing)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != mode {
		t.Errorf("replaced file mode %v, want %v", info.Mode().Perm(), os.FileMode(mode))
	}
}

type limitWriter struct {
	n int
}

func (w *limitWriter) Write(b []byte) (int, error) {
	if len(b) > w.n {
		n := w.n
		w.n = 0
		return n, io.ErrShortBuffer
	}
	w.n -= len(b)
	return len(b), nil
}

func TestWriteSTLFailingWriter(t *testing.T) {
	m := buildMesh(t)
	for _, write := range []func(io.Writer) error{
		func(w io.Writer) error { return render.WriteSTL(w, "wing", m) },
		func(w io.Writer) error { return render.WriteASCIISTL(w, "wing", m) },
	} {
		err := write(&limitWriter{n: 100})
		if !errors.Is(err, wing.ErrWrite) {
			t.Errorf("got %v, want write error", err)
		}
		if !errors.Is(err, io.ErrShortBuffer) {
			t.Errorf("write error %v does not wrap cause", err)
		}
	}
}

func TestPlotProfile(t *testing.T) {
	p, err := wing.Parse(strings.NewReader(airfoil))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "profile.svg")
	if err := render.PlotProfile(path, "NACA 0012", p); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty plot")
	}
	if err := render.PlotProfile(filepath.Join(t.TempDir(), "noext"), "", p); err == nil {
		t.Error("expected error for plot path without extension")
	}
}

func TestCreatePNG(t *testing.T) {
	m := buildMesh(t)
	dir := t.TempDir()
	stlPath := filepath.Join(dir, "wing.stl")
	pngPath := filepath.Join(dir, "wing.png")
	if err := render.CreateSTL(stlPath, "wing", m, render.Binary); err != nil {
		t.Fatal(err)
	}
	view := render.DefaultView
	view.Width, view.Height = 160, 90
	if err := render.CreatePNG(stlPath, pngPath, view); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Error("preview is not a PNG")
	}
}
