package viewer

const (
	// RotationSensitivity is the rotation in radians per pixel of drag.
	RotationSensitivity = 0.01

	// Smoothing is the fraction of the remaining rotation applied per frame.
	Smoothing = 0.1
)

func (r Rotation) ease(target Rotation) Rotation {
	return Rotation{
		X: r.X + (target.X-r.X)*Smoothing,
		Y: r.Y + (target.Y-r.Y)*Smoothing,
		Z: r.Z + (target.Z-r.Z)*Smoothing,
	}
}

// Point is a pointer or touch position in container pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerDown starts a drag at (x, y).
func (s *Session) PointerDown(x, y float64) {
	s.dragging = true
	s.lastX, s.lastY = x, y
}

// PointerMove turns the rotation target by the distance moved since the last
// pointer event, if a drag is in progress.
func (s *Session) PointerMove(x, y float64) {
	if !s.dragging {
		return
	}
	s.target.X += (y - s.lastY) * RotationSensitivity
	s.target.Y += (x - s.lastX) * RotationSensitivity
	s.lastX, s.lastY = x, y
}

// PointerUp ends a drag.
func (s *Session) PointerUp() {
	s.dragging = false
}

// TouchStart starts a drag when exactly one finger is down.
func (s *Session) TouchStart(touches []Point) {
	if len(touches) != 1 {
		return
	}
	s.PointerDown(touches[0].X, touches[0].Y)
}

// TouchMove mirrors PointerMove for a single finger.
func (s *Session) TouchMove(touches []Point) {
	if len(touches) != 1 {
		return
	}
	s.PointerMove(touches[0].X, touches[0].Y)
}

// TouchEnd ends a drag.
func (s *Session) TouchEnd() {
	s.PointerUp()
}

// Wheel zooms the camera out for positive deltaY and in for negative.
func (s *Session) Wheel(deltaY float64) {
	s.camera.zoom(deltaY)
}

// Orient sets the rotation target directly, as an orientation sensor would.
func (s *Session) Orient(r Rotation) {
	s.target = r
}

// An Event is an input delivered to a running session.
type Event interface {
	apply(*Session)
}

type (
	PointerDownEvent     Point
	PointerMoveEvent     Point
	PointerUpEvent       struct{}
	TouchStartEvent      []Point
	TouchMoveEvent       []Point
	TouchEndEvent        struct{}
	WheelEvent           float64
	ResizeEvent          Region
	ResetViewEvent       struct{}
	ToggleWireframeEvent struct{}
	LoadTextEvent        string
	OrientEvent          Rotation
)

func (e PointerDownEvent) apply(s *Session) {
	s.PointerDown(e.X, e.Y)
}

func (e PointerMoveEvent) apply(s *Session) {
	s.PointerMove(e.X, e.Y)
}

func (PointerUpEvent) apply(s *Session) {
	s.PointerUp()
}

func (e TouchStartEvent) apply(s *Session) {
	s.TouchStart(e)
}

func (e TouchMoveEvent) apply(s *Session) {
	s.TouchMove(e)
}

func (TouchEndEvent) apply(s *Session) {
	s.TouchEnd()
}

func (e WheelEvent) apply(s *Session) {
	s.Wheel(float64(e))
}

func (e ResizeEvent) apply(s *Session) {
	s.Resize(e.Width, e.Height)
}

func (ResetViewEvent) apply(s *Session) {
	s.ResetView()
}

func (ToggleWireframeEvent) apply(s *Session) {
	s.ToggleWireframe()
}

func (e OrientEvent) apply(s *Session) {
	s.Orient(Rotation(e))
}

// Load logs and shows its own failures.
func (e LoadTextEvent) apply(s *Session) {
	s.Load(string(e))
}

// Handle applies ev to the session.
func (s *Session) Handle(ev Event) {
	if ev == nil || s.disposed {
		return
	}
	ev.apply(s)
}
