package viewer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/intermernet/meshview/geom"
)

// Region is the size in pixels of a container on the host page.
type Region struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// A Resource is a buffer held by the rendering side on behalf of a session.
type Resource interface {
	ID() int
	Release() error
}

// Surface is the rendering library a session draws with. A session calls it
// from a single goroutine.
type Surface interface {
	// Region reports the size of the named container, if the page has it.
	Region(container string) (Region, bool)
	Mount(Scene) error
	SetSize(width, height int) error
	NewGeometry(*geom.Geometry) (Resource, error)
	NewMaterial(Material) (Resource, error)
	// Show attaches geometry drawn with material to the scene, replacing
	// whatever was shown before.
	Show(geometry, material Resource) error
	Hide() error
	Draw(Frame) error
	// ShowError replaces the drawing surface with a message panel until the
	// next Show.
	ShowError(message string) error
	Close() error
}

// Light is an ambient light when Position is nil, a directional light
// shining from Position toward the origin otherwise.
type Light struct {
	Color     uint32  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  *r3.Vec `json:"position,omitempty"`
}

// Scene is what a surface sets up when a session mounts it.
type Scene struct {
	Container  string  `json:"container"`
	Background uint32  `json:"background"`
	Camera     Camera  `json:"camera"`
	Lights     []Light `json:"lights"`
}

// Material describes how a mesh surface is drawn.
type Material struct {
	Color     uint32 `json:"color"`
	Wireframe bool   `json:"wireframe"`
}

var (
	shadedMaterial    = Material{Color: 0x049ef4}
	wireframeMaterial = Material{Color: 0x00ff00, Wireframe: true}
)

// Rotation is a mesh orientation as XYZ Euler angles in radians.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame is the per-frame state handed to Surface.Draw.
type Frame struct {
	Rotation Rotation `json:"rotation"`
	Camera   Camera   `json:"camera"`
}

func defaultScene(container string, cam Camera) Scene {
	return Scene{
		Container:  container,
		Background: 0x2a2a2a,
		Camera:     cam,
		Lights: []Light{
			{Color: 0xffffff, Intensity: 0.5},
			{Color: 0xffffff, Intensity: 0.8, Position: &r3.Vec{X: 1, Y: 1, Z: 1}},
			{Color: 0xffffff, Intensity: 0.4, Position: &r3.Vec{X: -1, Y: -1, Z: -1}},
		},
	}
}
