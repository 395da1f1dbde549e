package viewer

import (
	"errors"

	"github.com/intermernet/meshview/geom"
)

// Mesh is a loaded model and the surface resources it owns.
type Mesh struct {
	Geometry  *geom.Geometry
	Transform geom.Transform

	geometry  Resource
	shaded    Resource
	wireframe Resource
	material  Resource // shaded or wireframe

	closed bool
}

// Material returns the material resource the mesh is currently drawn with.
func (m *Mesh) Material() Resource {
	return m.material
}

// Close releases every resource the mesh holds. Later calls do nothing.
func (m *Mesh) Close() error {
	if m == nil || m.closed {
		return nil
	}
	m.closed = true
	var errs []error
	for _, r := range []Resource{m.geometry, m.shaded, m.wireframe} {
		if r == nil {
			continue
		}
		if err := r.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	m.geometry, m.shaded, m.wireframe, m.material = nil, nil, nil, nil
	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}

func (m *Mesh) toggleMaterial() {
	if m.material == m.shaded {
		m.material = m.wireframe
	} else {
		m.material = m.shaded
	}
}
