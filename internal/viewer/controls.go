package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/mithril/internal/engine/camera"
	"github.com/Faultbox/mithril/internal/engine/input"
)

// Controls maps input events onto the arcball camera. Pointer positions are
// divided by the window size before they reach the camera, so a drag across
// the whole window has length 1 regardless of resolution.
type Controls struct {
	camera   *camera.ArcballCamera
	zoomStep float64

	width  int
	height int

	quit bool
}

// NewControls creates controls for a window of the given size.
func NewControls(cam *camera.ArcballCamera, zoomStep float64, width, height int) *Controls {
	c := &Controls{camera: cam, zoomStep: zoomStep, width: 1, height: 1}
	c.resize(width, height)
	return c
}

// Handle applies one event.
func (c *Controls) Handle(e input.Event) {
	switch e.Type {
	case input.EventQuit:
		c.quit = true

	case input.EventKeyDown:
		if e.Key == sdl.SCANCODE_ESCAPE {
			c.quit = true
		}

	case input.EventWindowResize:
		c.resize(e.Width, e.Height)

	case input.EventMouseDown:
		if e.Button == input.ButtonLeft {
			x, y := c.normalize(e.MouseX, e.MouseY)
			c.camera.StartControl(x, y)
		}

	case input.EventMouseMove:
		if c.camera.IsControlled() {
			x, y := c.normalize(e.MouseX, e.MouseY)
			c.camera.SetControlPoint(x, y)
		}

	case input.EventMouseUp:
		if e.Button == input.ButtonLeft {
			c.camera.ReleaseControls()
		}

	case input.EventMouseWheel:
		// Scrolling away from the user zooms in
		c.camera.Scroll(-e.WheelY * c.zoomStep)
	}
}

// QuitRequested reports whether a quit event or the escape key was seen.
func (c *Controls) QuitRequested() bool {
	return c.quit
}

func (c *Controls) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width = width
	c.height = height
	c.camera.SetAspectRatio(float64(width) / float64(height))
}

func (c *Controls) normalize(x, y int) (float64, float64) {
	return float64(x) / float64(c.width), float64(y) / float64(c.height)
}
