// Package geom turns parsed mesh buffers into displayable geometry.
package geom

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/intermernet/meshview/objtext"
)

var (
	ErrNoVertices    = errors.New("mesh has no vertices")
	ErrBadCoordinate = errors.New("vertex coordinate is not a finite number")
	ErrIndexRange    = errors.New("face references a missing vertex")
)

// Geometry is a validated triangle mesh. Positions and Normals are flat xyz,
// one entry per vertex.
type Geometry struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// Build validates b and copies it into a new Geometry.
func Build(b objtext.Buffers) (*Geometry, error) {
	n := b.VertexCount()
	if n == 0 {
		return nil, ErrNoVertices
	}
	for i, c := range b.Positions[:3*n] {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return nil, errors.Wrapf(ErrBadCoordinate, "vertex %d", i/3+1)
		}
	}
	for i, idx := range b.Indices {
		if int(idx) >= n {
			return nil, errors.Wrapf(ErrIndexRange, "triangle %d references vertex %d of %d", i/3, idx+1, n)
		}
	}
	g := &Geometry{
		Positions: append([]float32(nil), b.Positions[:3*n]...),
		Indices:   append([]uint32(nil), b.Indices...),
	}
	return g, nil
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Vertex returns vertex i.
func (g *Geometry) Vertex(i int) r3.Vec {
	p := g.Positions[3*i:]
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max r3.Vec
}

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Size returns the extent of the box along each axis.
func (b Box) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// MaxDim returns the largest extent of the box.
func (b Box) MaxDim() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Bounds returns the bounding box of the geometry.
func (g *Geometry) Bounds() Box {
	b := Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for i := 0; i < g.VertexCount(); i++ {
		v := g.Vertex(i)
		b.Min = r3.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)}
	}
	return b
}

// Transform is the translation and uniform scale applied by Fit. A point p
// is moved to (p - Center) * Scale.
type Transform struct {
	Center r3.Vec
	Scale  float64
}

// Fit centers the geometry on the origin and scales it so its largest
// bounding box dimension equals target. A geometry with no extent is only
// translated.
func (g *Geometry) Fit(target float64) Transform {
	b := g.Bounds()
	t := Transform{Center: b.Center(), Scale: 1}
	if d := b.MaxDim(); d > 0 {
		t.Scale = target / d
	}
	for i := 0; i < g.VertexCount(); i++ {
		v := r3.Scale(t.Scale, r3.Sub(g.Vertex(i), t.Center))
		p := g.Positions[3*i:]
		p[0], p[1], p[2] = float32(v.X), float32(v.Y), float32(v.Z)
	}
	return t
}

// ComputeNormals sets Normals to the area-weighted average of the face
// normals around each vertex. Vertices with no area around them get a zero
// normal.
func (g *Geometry) ComputeNormals() {
	n := make([]float32, len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		pa, pb, pc := g.Positions[3*a:], g.Positions[3*b:], g.Positions[3*c:]
		e1 := [3]float32{pb[0] - pa[0], pb[1] - pa[1], pb[2] - pa[2]}
		e2 := [3]float32{pc[0] - pa[0], pc[1] - pa[1], pc[2] - pa[2]}
		// Unnormalized cross product, so larger faces weigh more.
		fn := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, v := range [3]uint32{a, b, c} {
			n[3*v] += fn[0]
			n[3*v+1] += fn[1]
			n[3*v+2] += fn[2]
		}
	}
	for i := 0; i < len(n); i += 3 {
		l := math32.Sqrt(n[i]*n[i] + n[i+1]*n[i+1] + n[i+2]*n[i+2])
		if l == 0 {
			continue
		}
		n[i] /= l
		n[i+1] /= l
		n[i+2] /= l
	}
	g.Normals = n
}

// Edges returns each triangle edge once, as pairs of vertex indices with the
// smaller index first.
func (g *Geometry) Edges() [][2]uint32 {
	seen := make(map[[2]uint32]struct{})
	var edges [][2]uint32
	add := func(a, b uint32) {
		if a == b {
			return
		}
		if b < a {
			a, b = b, a
		}
		e := [2]uint32{a, b}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		add(a, b)
		add(b, c)
		add(c, a)
	}
	return edges
}
