// Package objtext reads the vertex and face records of line-oriented mesh
// text (the `v` and `f` subset of Wavefront OBJ) into flat buffers.
package objtext

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Buffers holds parsed mesh data. Positions is flat xyz, Indices is flat
// triangles referencing Positions by vertex number.
type Buffers struct {
	Positions []float32
	Indices   []uint32
}

// VertexCount returns the number of vertex records read.
func (b Buffers) VertexCount() int {
	return len(b.Positions) / 3
}

// TriangleCount returns the number of triangles emitted.
func (b Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// Parse reads mesh text. It never fails: malformed coordinates become NaN,
// and faces that are not triangles or quads, or that hold a reference
// without a leading number, are dropped. Other line types are ignored.
func Parse(text string) Buffers {
	var b Buffers
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 || !isSpace(line[1]) {
			continue
		}
		switch line[0] {
		case 'v':
			b.addVertex(strings.Fields(line[2:]))
		case 'f':
			b.addFace(strings.Fields(line[2:]))
		}
	}
	return b
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func (b *Buffers) addVertex(fields []string) {
	for i := 0; i < 3; i++ {
		c := math32.NaN()
		if i < len(fields) {
			if f, err := strconv.ParseFloat(fields[i], 32); err == nil {
				c = float32(f)
			}
		}
		b.Positions = append(b.Positions, c)
	}
}

func (b *Buffers) addFace(fields []string) {
	if len(fields) != 3 && len(fields) != 4 {
		return
	}
	var ref [4]uint32
	for i, f := range fields {
		r, ok := reference(f)
		if !ok {
			return
		}
		ref[i] = r
	}
	b.Indices = append(b.Indices, ref[0], ref[1], ref[2])
	if len(fields) == 4 {
		// Fixed fan split on the 0-2 diagonal.
		b.Indices = append(b.Indices, ref[0], ref[2], ref[3])
	}
}

// reference converts the leading digits of a face token ("7", "7/2",
// "7//3") from a 1-based vertex number to a 0-based index.
func reference(tok string) (uint32, bool) {
	n := 0
	for n < len(tok) && tok[n] >= '0' && tok[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(tok[:n], 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint32(v - 1), true
}
