package viewer

import (
	"math"
	"testing"
)

func TestDragAccumulatesTarget(t *testing.T) {
	s, _ := newSession(t)
	s.PointerMove(50, 50)
	if s.Target() != (Rotation{}) {
		t.Errorf("move without a drag changed target to %v", s.Target())
	}
	s.PointerDown(10, 20)
	s.PointerMove(30, 25)
	s.PointerMove(40, 15)
	want := Rotation{X: -5 * RotationSensitivity, Y: 30 * RotationSensitivity}
	got := s.Target()
	if math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 || got.Z != 0 {
		t.Errorf("got target %v, want %v", got, want)
	}
	s.PointerUp()
	s.PointerMove(100, 100)
	if s.Target() != got {
		t.Errorf("move after pointer up changed target")
	}
}

func TestTouch(t *testing.T) {
	s, _ := newSession(t)
	s.TouchStart([]Point{{X: 0, Y: 0}, {X: 5, Y: 5}})
	s.TouchMove([]Point{{X: 10, Y: 0}, {X: 15, Y: 5}})
	if s.Target() != (Rotation{}) {
		t.Errorf("two-finger touch rotated to %v", s.Target())
	}
	s.TouchStart([]Point{{X: 0, Y: 0}})
	s.TouchMove([]Point{{X: 10, Y: 0}})
	if got, want := s.Target().Y, 10*RotationSensitivity; math.Abs(got-want) > 1e-12 {
		t.Errorf("got target Y %v, want %v", got, want)
	}
	s.TouchEnd()
	s.TouchMove([]Point{{X: 50, Y: 0}})
	if got, want := s.Target().Y, 10*RotationSensitivity; math.Abs(got-want) > 1e-12 {
		t.Errorf("move after touch end: got target Y %v, want %v", got, want)
	}
}

func TestSmoothing(t *testing.T) {
	s, f := newSession(t)
	s.Orient(Rotation{X: 1})
	if err := s.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := s.Rotation().X; got != Smoothing {
		t.Errorf("after one frame got X %v, want %v", got, Smoothing)
	}
	for i := 0; i < 200; i++ {
		s.RenderFrame()
	}
	if got := s.Rotation().X; math.Abs(got-1) > 1e-6 {
		t.Errorf("after many frames got X %v, want 1", got)
	}
	if got := f.frames[len(f.frames)-1].Rotation; got != s.Rotation() {
		t.Errorf("drew %v, want %v", got, s.Rotation())
	}
}

func TestWheel(t *testing.T) {
	s, _ := newSession(t)
	d := s.Camera().Distance()
	s.Wheel(120)
	if got, want := s.Camera().Distance(), d*zoomOut; math.Abs(got-want) > 1e-12 {
		t.Errorf("zoom out: got distance %v, want %v", got, want)
	}
	s.Wheel(-1)
	s.Wheel(-1)
	if got, want := s.Camera().Distance(), d*zoomOut*zoomIn*zoomIn; math.Abs(got-want) > 1e-12 {
		t.Errorf("zoom in: got distance %v, want %v", got, want)
	}
	before := s.Camera()
	s.Wheel(0)
	if s.Camera() != before {
		t.Errorf("zero delta moved the camera")
	}
}

func TestResetView(t *testing.T) {
	s, _ := newSession(t)
	if err := s.Load(tetra); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.PointerDown(0, 0)
	s.PointerMove(40, -30)
	for i := 0; i < 5; i++ {
		s.RenderFrame()
		s.Wheel(1)
	}
	s.Wheel(-1)
	s.ResetView()
	if s.Rotation() != (Rotation{}) || s.Target() != (Rotation{}) {
		t.Errorf("got rotation %v target %v, want zero", s.Rotation(), s.Target())
	}
	if got := s.Camera().Position; got != InitialCameraPosition {
		t.Errorf("got camera at %v, want %v", got, InitialCameraPosition)
	}
	s.RenderFrame()
	if s.Rotation() != (Rotation{}) {
		t.Errorf("rotation drifted to %v after reset", s.Rotation())
	}
}

func TestHandleDispatch(t *testing.T) {
	s, f := newSession(t)
	s.Handle(LoadTextEvent(tetra))
	s.Handle(ToggleWireframeEvent{})
	s.Handle(WheelEvent(1))
	s.Handle(ResizeEvent{Width: 400, Height: 200})
	s.Handle(OrientEvent{Z: 0.5})
	if !s.Wireframe() {
		t.Errorf("wireframe event not applied")
	}
	if s.Camera().Position == InitialCameraPosition {
		t.Errorf("wheel event not applied")
	}
	if f.width != 400 {
		t.Errorf("resize event not applied")
	}
	if s.Target().Z != 0.5 {
		t.Errorf("orient event not applied")
	}
	s.Handle(ResetViewEvent{})
	if s.Camera().Position != InitialCameraPosition || s.Target() != (Rotation{}) {
		t.Errorf("reset event not applied")
	}
}
