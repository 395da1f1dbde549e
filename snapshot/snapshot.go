// Package snapshot draws a still wireframe image of a mesh.
package snapshot

import (
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/intermernet/meshview/geom"
)

var (
	background = color.RGBA{R: 0x2a, G: 0x2a, B: 0x2a, A: 0xff}
	lineColor  = color.RGBA{R: 0x04, G: 0x9e, B: 0xf4, A: 0xff}
)

// wireframe is a plot.Plotter for line segments already projected onto the
// XY plane.
type wireframe struct {
	segments [][2]r3.Vec
	extent   float64
	style    draw.LineStyle
}

func (w *wireframe) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, s := range w.segments {
		c.StrokeLine2(w.style, trX(s[0].X), trY(s[0].Y), trX(s[1].X), trY(s[1].Y))
	}
}

// DataRange is square and centered on the origin so the model keeps its
// proportions.
func (w *wireframe) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -w.extent, w.extent, -w.extent, w.extent
}

// rotate applies rx about X after ry about Y, matching an XYZ Euler rotation
// with no Z component.
func rotate(v r3.Vec, rx, ry float64) r3.Vec {
	sy, cy := math.Sincos(ry)
	v = r3.Vec{X: v.X*cy + v.Z*sy, Y: v.Y, Z: -v.X*sy + v.Z*cy}
	sx, cx := math.Sincos(rx)
	return r3.Vec{X: v.X, Y: v.Y*cx - v.Z*sx, Z: v.Y*sx + v.Z*cx}
}

// Render writes a size by size PNG of g's edges, rotated by rx and ry
// radians and viewed down the Z axis.
func Render(w io.Writer, g *geom.Geometry, rx, ry float64, size vg.Length) error {
	if g == nil || g.VertexCount() == 0 {
		return errors.New("snapshot: empty geometry")
	}
	pts := make([]r3.Vec, g.VertexCount())
	extent := 0.0
	for i := range pts {
		pts[i] = rotate(g.Vertex(i), rx, ry)
		extent = math.Max(extent, math.Max(math.Abs(pts[i].X), math.Abs(pts[i].Y)))
	}
	if extent == 0 {
		extent = 1
	}

	wf := &wireframe{
		extent: extent * 1.05,
		style: draw.LineStyle{
			Color: lineColor,
			Width: vg.Points(0.5),
		},
	}
	for _, e := range g.Edges() {
		wf.segments = append(wf.segments, [2]r3.Vec{pts[e[0]], pts[e[1]]})
	}

	plt := plot.New()
	plt.BackgroundColor = background
	plt.HideAxes()
	plt.Add(wf)

	wt, err := plt.WriterTo(size, size, "png")
	if err != nil {
		return errors.Wrap(err, "snapshot: creating png writer")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "snapshot: writing png")
	}
	return nil
}
