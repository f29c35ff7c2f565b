package render

import (
	"fmt"
	"path/filepath"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/wing"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// View configures the camera of a mesh preview. Positions are given
// for the mesh scaled to fit a bi-unit cube centered at the origin.
type View struct {
	// what position (point) to look at
	Lookat r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eyepos r3.Vec
	Far    float64
	Near   float64
	// Output size in pixels.
	Width, Height int
}

// DefaultView looks at the wing from above the leading edge, with the
// span running to the right.
var DefaultView = View{
	Up:     r3.Vec{Y: 1},
	Eyepos: r3.Vec{X: -2.4, Y: 2.4, Z: 1.2},
	Near:   1,
	Far:    10,
	Width:  768,
	Height: 432,
}

// CreatePNG renders a shaded image of the STL file at stlPath
// and saves it to pngPath.
func CreatePNG(stlPath, pngPath string, view View) error {
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return err
	}
	if view.Width <= 0 || view.Height <= 0 {
		return fmt.Errorf("bad preview size %dx%d", view.Width, view.Height)
	}
	const (
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
	)
	var (
		eye    = fauxgl.V(view.Eyepos.X, view.Eyepos.Y, view.Eyepos.Z) // camera position
		center = fauxgl.V(view.Lookat.X, view.Lookat.Y, view.Lookat.Z) // view center position
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
		color  = fauxgl.HexColor("#468966")                            // object color
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(view.Width), uint(view.Height), image, resize.Bilinear)
	return fauxgl.SavePNG(pngPath, image)
}

// PlotProfile saves a line plot of the closed profile p titled title. The image
// format follows the extension of path (png, svg, pdf, ...).
func PlotProfile(path, title string, p wing.Profile) error {
	if len(p) == 0 {
		return fmt.Errorf("empty profile")
	}
	xys := make(plotter.XYs, len(p)+1)
	for i, v := range p {
		xys[i].X = v.X
		xys[i].Y = v.Y
	}
	xys[len(p)] = xys[0] // close the outline.

	plt := plot.New()
	plt.Title.Text = title
	plt.X.Label.Text = "x/c"
	plt.Y.Label.Text = "y/c"
	plt.Add(plotter.NewGrid())
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	plt.Add(line)
	// Roughly keep the true aspect ratio of the section on a 4:1 canvas.
	bb := p.Bounds()
	size := bb.Size()
	if h := size.X / 4; size.Y < h {
		mid := bb.Center().Y
		plt.Y.Min, plt.Y.Max = mid-h/2, mid+h/2
	}
	if filepath.Ext(path) == "" {
		return fmt.Errorf("plot path %q has no format extension", path)
	}
	const width = 8 * vg.Inch
	return plt.Save(width, width/4, path)
}
