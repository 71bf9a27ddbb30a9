package viewer

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/mithril/internal/engine/camera"
	"github.com/Faultbox/mithril/internal/engine/input"
	"github.com/Faultbox/mithril/pkg/math"
)

func newTestCamera() *camera.ArcballCamera {
	return camera.New(math.Vec3{Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
}

func TestControlsDrag(t *testing.T) {
	cam := newTestCamera()
	c := NewControls(cam, 0.1, 640, 480)
	idle := cam.ViewMatrix()

	c.Handle(input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft, MouseX: 0, MouseY: 0})
	if !cam.IsControlled() {
		t.Fatal("left button down should start a drag")
	}

	c.Handle(input.Event{Type: input.EventMouseMove, MouseX: 64, MouseY: 0})

	// 64 pixels across a 640 pixel window is a drag of 0.1
	ref := newTestCamera()
	ref.StartControl(0, 0)
	ref.SetControlPoint(0.1, 0)
	if got, want := cam.ViewMatrix(), ref.ViewMatrix(); !matricesClose(got, want) {
		t.Errorf("drag view:\n got %v\nwant %v", got, want)
	}

	c.Handle(input.Event{Type: input.EventMouseUp, Button: input.ButtonLeft})
	if cam.IsControlled() {
		t.Error("left button up should end the drag")
	}
	if !matricesClose(cam.ViewMatrix(), idle) {
		t.Error("view should return to idle after release")
	}
}

func TestControlsIgnoreOtherButtons(t *testing.T) {
	cam := newTestCamera()
	c := NewControls(cam, 0.1, 640, 480)

	c.Handle(input.Event{Type: input.EventMouseDown, Button: input.ButtonRight, MouseX: 10, MouseY: 10})
	if cam.IsControlled() {
		t.Error("right button should not start a drag")
	}

	// Motion without a drag leaves the view alone
	idle := cam.ViewMatrix()
	c.Handle(input.Event{Type: input.EventMouseMove, MouseX: 300, MouseY: 200})
	if !matricesClose(cam.ViewMatrix(), idle) {
		t.Error("motion without a drag changed the view")
	}

	c.Handle(input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft})
	c.Handle(input.Event{Type: input.EventMouseUp, Button: input.ButtonMiddle})
	if !cam.IsControlled() {
		t.Error("middle button up should not end a left drag")
	}
}

func TestControlsWheel(t *testing.T) {
	tests := []struct {
		name   string
		wheelY float64
		wantZ  float32
	}{
		{"scroll up zooms in", 1, 4.5},
		{"scroll down zooms out", -1, 5.5},
		{"two notches", 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newTestCamera()
			c := NewControls(cam, 0.1, 640, 480)

			c.Handle(input.Event{Type: input.EventMouseWheel, WheelY: tt.wheelY})
			if got := cam.Eye().Z; abs(got-tt.wantZ) > 1e-5 {
				t.Errorf("expected eye z %f, got %f", tt.wantZ, got)
			}
		})
	}
}

func TestControlsResize(t *testing.T) {
	cam := newTestCamera()
	c := NewControls(cam, 0.1, 640, 480)

	c.Handle(input.Event{Type: input.EventWindowResize, Width: 800, Height: 400})
	proj := cam.ProjectionMatrix()
	if abs(proj.At(1, 1)-2*proj.At(0, 0)) > 1e-5 {
		t.Errorf("expected aspect 2 after resize, got m11=%f m22=%f", proj.At(0, 0), proj.At(1, 1))
	}

	// Pointer normalization follows the new size
	c.Handle(input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft})
	c.Handle(input.Event{Type: input.EventMouseMove, MouseX: 0, MouseY: 40})

	ref := newTestCamera()
	ref.SetAspectRatio(2)
	ref.StartControl(0, 0)
	ref.SetControlPoint(0, 0.1)
	if !matricesClose(cam.ViewMatrix(), ref.ViewMatrix()) {
		t.Error("drag after resize should be normalized by the new height")
	}

	// Degenerate sizes (minimized window) are ignored
	c.Handle(input.Event{Type: input.EventWindowResize, Width: 0, Height: 0})
	if got := cam.ProjectionMatrix(); got != proj {
		t.Error("zero-size resize changed the projection")
	}
}

func TestControlsQuit(t *testing.T) {
	tests := []struct {
		name  string
		event input.Event
		quit  bool
	}{
		{"quit event", input.Event{Type: input.EventQuit}, true},
		{"escape", input.Event{Type: input.EventKeyDown, Key: sdl.SCANCODE_ESCAPE}, true},
		{"other key", input.Event{Type: input.EventKeyDown, Key: sdl.SCANCODE_SPACE}, false},
		{"escape released", input.Event{Type: input.EventKeyUp, Key: sdl.SCANCODE_ESCAPE}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewControls(newTestCamera(), 0.1, 640, 480)
			c.Handle(tt.event)
			if c.QuitRequested() != tt.quit {
				t.Errorf("expected quit=%v", tt.quit)
			}
		})
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func matricesClose(a, b math.Mat4) bool {
	for i := range a {
		if abs(a[i]-b[i]) > 1e-5 {
			return false
		}
	}
	return true
}
