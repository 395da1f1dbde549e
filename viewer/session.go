// Package viewer holds the state of an interactive mesh view: camera,
// pointer driven rotation, the loaded mesh and the render loop. Drawing is
// delegated to a Surface.
package viewer

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/intermernet/meshview/geom"
	"github.com/intermernet/meshview/objtext"
)

const (
	// TargetSize is the largest bounding box dimension of a loaded mesh.
	TargetSize = 2

	// LoadFailedMessage is shown in place of the surface when a load fails.
	LoadFailedMessage = "Failed to load 3D model"

	defaultFrameRate = 60
)

var (
	ErrNoContainer = errors.New("display container not found")
	ErrDisposed    = errors.New("viewer session disposed")
)

// Session is a single viewer bound to one container on one surface. It is
// not safe for concurrent use; Run serializes input and rendering on the
// calling goroutine.
type Session struct {
	surface   Surface
	container string

	camera Camera
	mesh   *Mesh

	dragging bool
	lastX    float64
	lastY    float64
	rotation Rotation
	target   Rotation

	failed   bool
	disposed bool

	frameInterval time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithFrameRate sets how many frames per second Run draws.
func WithFrameRate(fps int) Option {
	return func(s *Session) {
		if fps > 0 {
			s.frameInterval = time.Second / time.Duration(fps)
		}
	}
}

// New mounts a scene on surface inside the named container.
func New(surface Surface, container string, opts ...Option) (*Session, error) {
	region, ok := surface.Region(container)
	if !ok {
		log.Printf("viewer: container %q not found", container)
		return nil, errors.Wrapf(ErrNoContainer, "container %q", container)
	}
	s := &Session{
		surface:       surface,
		container:     container,
		camera:        newCamera(aspectOf(region.Width, region.Height)),
		frameInterval: time.Second / defaultFrameRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := surface.Mount(defaultScene(container, s.camera)); err != nil {
		return nil, errors.Wrap(err, "mounting scene")
	}
	if err := surface.SetSize(region.Width, region.Height); err != nil {
		return nil, errors.Wrap(err, "sizing surface")
	}
	return s, nil
}

// Camera returns the current camera.
func (s *Session) Camera() Camera { return s.camera }

// Rotation returns the mesh rotation as last drawn.
func (s *Session) Rotation() Rotation { return s.rotation }

// Target returns the rotation the mesh is easing toward.
func (s *Session) Target() Rotation { return s.target }

// Mesh returns the loaded mesh, or nil.
func (s *Session) Mesh() *Mesh { return s.mesh }

// Failed reports whether the last load failed and the error panel is shown.
func (s *Session) Failed() bool { return s.failed }

// Wireframe reports whether the mesh is drawn with the wireframe material.
func (s *Session) Wireframe() bool {
	return s.mesh != nil && s.mesh.material == s.mesh.wireframe
}

// Load parses text and replaces the displayed mesh with it. On failure the
// previous mesh is kept but hidden behind the error panel and nothing
// acquired during the attempt is left allocated.
func (s *Session) Load(text string) error {
	if s.disposed {
		return ErrDisposed
	}
	m, err := s.buildMesh(text)
	if err == nil {
		err = s.surface.Show(m.geometry, m.material)
		if err != nil {
			if cerr := m.Close(); cerr != nil {
				log.Printf("viewer: releasing unshown mesh: %v", cerr)
			}
		}
	}
	if err != nil {
		err = errors.Wrap(err, "loading mesh")
		log.Printf("viewer: %v", err)
		s.failed = true
		if perr := s.surface.ShowError(LoadFailedMessage); perr != nil {
			log.Printf("viewer: showing error panel: %v", perr)
		}
		return err
	}
	old := s.mesh
	s.mesh = m
	s.failed = false
	if err := old.Close(); err != nil {
		log.Printf("viewer: releasing previous mesh: %v", err)
	}
	log.Printf("viewer: loaded mesh with %d vertices, %d triangles (scale %.4g)",
		m.Geometry.VertexCount(), len(m.Geometry.Indices)/3, m.Transform.Scale)
	return nil
}

func (s *Session) buildMesh(text string) (m *Mesh, err error) {
	g, err := geom.Build(objtext.Parse(text))
	if err != nil {
		return nil, err
	}
	m = &Mesh{Geometry: g}
	m.Transform = g.Fit(TargetSize)
	g.ComputeNormals()

	defer func() {
		if err != nil {
			m.Close()
			m = nil
		}
	}()
	if m.geometry, err = s.surface.NewGeometry(g); err != nil {
		return m, errors.Wrap(err, "creating geometry")
	}
	if m.shaded, err = s.surface.NewMaterial(shadedMaterial); err != nil {
		return m, errors.Wrap(err, "creating material")
	}
	if m.wireframe, err = s.surface.NewMaterial(wireframeMaterial); err != nil {
		return m, errors.Wrap(err, "creating wireframe material")
	}
	m.material = m.shaded
	return m, nil
}

// ResetView zeroes the mesh rotation and returns the camera to its initial
// position, which also undoes any zoom.
func (s *Session) ResetView() {
	s.rotation = Rotation{}
	s.target = Rotation{}
	s.camera.reset()
}

// ToggleWireframe switches the mesh between its shaded and wireframe
// materials.
func (s *Session) ToggleWireframe() {
	if s.mesh == nil || s.disposed {
		return
	}
	s.mesh.toggleMaterial()
	if s.failed {
		return
	}
	if err := s.surface.Show(s.mesh.geometry, s.mesh.material); err != nil {
		log.Printf("viewer: switching material: %v", err)
	}
}

// Resize matches the camera and surface to a container of the given size.
func (s *Session) Resize(width, height int) {
	if s.disposed || height <= 0 {
		return
	}
	s.camera.Aspect = aspectOf(width, height)
	if err := s.surface.SetSize(width, height); err != nil {
		log.Printf("viewer: resizing surface: %v", err)
	}
}

// RenderFrame eases the mesh rotation toward its target and draws.
func (s *Session) RenderFrame() error {
	if s.disposed {
		return ErrDisposed
	}
	s.rotation = s.rotation.ease(s.target)
	if s.failed {
		return nil
	}
	return s.surface.Draw(Frame{Rotation: s.rotation, Camera: s.camera})
}

// Run handles events and draws frames until ctx is done, events is closed
// or drawing fails. The session is disposed when Run returns.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	defer s.Dispose()
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.Handle(ev)
		case <-ticker.C:
			if err := s.RenderFrame(); err != nil {
				return errors.Wrap(err, "drawing frame")
			}
		}
	}
}

// Dispose removes and releases the mesh and closes the surface. Later calls
// do nothing.
func (s *Session) Dispose() error {
	if s.disposed {
		return nil
	}
	s.disposed = true
	var errs []error
	if s.mesh != nil {
		if err := s.surface.Hide(); err != nil {
			errs = append(errs, err)
		}
		if err := s.mesh.Close(); err != nil {
			errs = append(errs, err)
		}
		s.mesh = nil
	}
	if err := s.surface.Close(); err != nil {
		errs = append(errs, err)
	}
	return joinErrors(errs)
}
