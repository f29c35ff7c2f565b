package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"
	"github.com/soypat/wing"
	"gonum.org/v1/gonum/spatial/r3"
)

// Format selects the STL flavour written by CreateSTL.
type Format int

const (
	// Binary is the fixed record size STL format.
	Binary Format = iota
	// ASCII is the text STL format.
	ASCII
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case ASCII:
		return "ascii"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

const stlTriangleSize = 50

var errEmptyMesh error = &wing.Error{Kind: wing.ErrDegenerateMesh, Text: "no triangles", Index: -1}

// CreateSTL writes the mesh to a new file at path. The file is written
// under a temporary name in the same directory and renamed into place
// once complete, so on failure no file at path is created or modified.
// An existing file keeps its permissions; a new file gets the
// permissions os.Create would give it.
func CreateSTL(path, name string, m wing.Mesh, f Format) (err error) {
	if len(m.Triangles) == 0 {
		return errEmptyMesh
	}
	var write func(io.Writer, string, wing.Mesh) error
	switch f {
	case Binary:
		write = WriteSTL
	case ASCII:
		write = WriteASCIISTL
	default:
		return &wing.Error{Kind: wing.ErrParameter, Text: "STL format", Value: float64(f), Index: -1}
	}
	perm := os.FileMode(0666)
	info, statErr := os.Stat(path)
	if statErr == nil {
		perm = info.Mode().Perm()
	}
	file, err := createTemp(path, perm)
	if err != nil {
		return wing.WriteError(err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil && !errors.Is(cerr, os.ErrClosed) {
			err = wing.WriteError(cerr)
		}
		if err != nil {
			os.Remove(file.Name())
		}
	}()
	if statErr == nil {
		// The umask applied on creation may have cleared bits of the
		// existing file's mode.
		if err = file.Chmod(perm); err != nil {
			return wing.WriteError(err)
		}
	}
	if err = write(file, name, m); err != nil {
		return err
	}
	if err = file.Close(); err != nil {
		return wing.WriteError(err)
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return wing.WriteError(err)
	}
	return nil
}

// createTemp creates a new hidden file next to path with permissions perm
// before umask.
func createTemp(path string, perm os.FileMode) (*os.File, error) {
	dir, base := filepath.Split(path)
	for try := 0; ; try++ {
		name := filepath.Join(dir, "."+base+"."+strconv.FormatUint(uint64(rand.Uint32()), 36)+".tmp")
		file, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if os.IsExist(err) && try < 100 {
			continue
		}
		return file, err
	}
}

// WriteSTL writes model triangles to a writer in binary STL file format.
// The 80 byte header holds name.
func WriteSTL(w io.Writer, name string, m wing.Mesh) error {
	if len(m.Triangles) == 0 {
		return errEmptyMesh
	}
	bw := bufio.NewWriterSize(w, stlTriangleSize*trianglesInBuffer)
	header := stlHeader{
		Count: uint32(len(m.Triangles)), // size of stl triangles is 50
	}
	header.setName(name)
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return wing.WriteError(err)
	}
	var (
		d stlTriangle
		b [stlTriangleSize]byte
	)
	for _, triangle := range m.Triangles {
		d.set(triangle)
		d.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return wing.WriteError(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return wing.WriteError(err)
	}
	return nil
}

// WriteASCIISTL writes model triangles to a writer in ASCII STL format.
func WriteASCIISTL(w io.Writer, name string, m wing.Mesh) error {
	if len(m.Triangles) == 0 {
		return errEmptyMesh
	}
	solid := stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, len(m.Triangles)),
		IsAscii:   true,
	}
	var d stlTriangle
	for i, triangle := range m.Triangles {
		d.set(triangle)
		solid.Triangles[i] = stl.Triangle{
			Normal:   stl.Vec3(d.Normal),
			Vertices: [3]stl.Vec3{stl.Vec3(d.Vertex1), stl.Vec3(d.Vertex2), stl.Vec3(d.Vertex3)},
		}
	}
	bw := bufio.NewWriter(w)
	if err := solid.WriteAll(bw); err != nil {
		return wing.WriteError(err)
	}
	if err := bw.Flush(); err != nil {
		return wing.WriteError(err)
	}
	return nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	Header [80]uint8
	Count  uint32 // Number of triangles
}

// setName stores name in the header. Readers take a binary file
// starting with "solid" for ASCII, so such names are prefixed.
func (h *stlHeader) setName(name string) {
	if strings.HasPrefix(strings.ToLower(name), "solid") {
		name = "binary " + name
	}
	h.Header = [80]uint8{}
	copy(h.Header[:], name)
}

const trianglesInBuffer = 1 << 10

// ReadSTL reads a binary STL and validates every triangle. Normals that
// disagree with their vertex winding are reported with
// errCalculatedNormalMismatch alongside the triangles read.
func ReadSTL(r io.Reader) ([]wing.Triangle, error) {
	return readBinarySTL(r)
}

func readBinarySTL(r io.Reader) (output []wing.Triangle, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf [stlTriangleSize]byte
		d   stlTriangle
		i   int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, errCalculatedNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]wing.Triangle, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, errCalculatedNormalMismatch) {
				return nil, err
			}
			readErr = err
		}
		output = append(output, d.toTriangle())
	}
	return output, readErr
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (d *stlTriangle) set(t wing.Triangle) {
	d.Normal = f32From(t.N)
	d.Vertex1 = f32From(t.V[0])
	d.Vertex2 = f32From(t.V[1])
	d.Vertex3 = f32From(t.V[2])
}

func f32From(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

var errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.degenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	// Unlike general STL readers the winding must match: the normal
	// is written from the same vertex order.
	if !equalWithin3F32(t.normalFromVertices(), t.Normal, normTol) {
		return errCalculatedNormalMismatch
	}
	return nil
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	v1 := r3From3F32(t.Vertex1)
	v2 := r3From3F32(t.Vertex2)
	v3 := r3From3F32(t.Vertex3)
	e1 := r3.Sub(v2, v1)
	e2 := r3.Sub(v3, v1)
	n := r3.Unit(r3.Cross(e1, e2))
	return [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
}

// degenerate returns true if the triangle has coincident vertices.
func (t stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (d stlTriangle) toTriangle() wing.Triangle {
	return wing.Triangle{
		V: [3]r3.Vec{
			r3From3F32(d.Vertex1),
			r3From3F32(d.Vertex2),
			r3From3F32(d.Vertex3),
		},
		N: r3From3F32(d.Normal),
	}
}
