package viewer

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	fieldOfView = 75
	nearPlane   = 0.1
	farPlane    = 1000

	// zoomOut and zoomIn scale the camera distance per wheel step.
	zoomOut = 1.1
	zoomIn  = 0.9
)

// InitialCameraPosition is where a new or reset camera sits, looking at the
// origin.
var InitialCameraPosition = r3.Vec{X: 0, Y: 0, Z: 5}

// Camera is a perspective camera looking at the origin. Its position is the
// only record of zoom: wheel input scales it and ResetView restores it.
type Camera struct {
	Position r3.Vec  `json:"position"`
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

func newCamera(aspect float64) Camera {
	return Camera{
		Position: InitialCameraPosition,
		FOV:      fieldOfView,
		Aspect:   aspect,
		Near:     nearPlane,
		Far:      farPlane,
	}
}

// Distance returns the distance from the camera to the origin.
func (c Camera) Distance() float64 {
	return r3.Norm(c.Position)
}

// zoom moves the camera away from the origin for positive deltaY and toward
// it for negative deltaY. Distance is not clamped.
func (c *Camera) zoom(deltaY float64) {
	switch {
	case deltaY > 0:
		c.Position = r3.Scale(zoomOut, c.Position)
	case deltaY < 0:
		c.Position = r3.Scale(zoomIn, c.Position)
	}
}

func (c *Camera) reset() {
	c.Position = InitialCameraPosition
}

func aspectOf(width, height int) float64 {
	if height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}
