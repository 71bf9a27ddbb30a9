// Package camera provides the arcball camera used by the viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/mithril/pkg/math"
)

// Default projection settings.
const (
	DefaultFieldOfView = 90.0 * gomath.Pi / 180.0
	DefaultAspectRatio = 640.0 / 480.0
	DefaultNear        = 1.0
	DefaultFar         = 100.0

	// DefaultDragScale converts drag distance into rotation radians.
	DefaultDragScale = 2.0
)

// dragEpsilon is compared against the squared drag length; shorter drags
// produce no rotation since their axis is not well defined.
const dragEpsilon = 1e-4

// ArcballCamera looks at a focus point and rotates around it while the
// pointer is dragged.
//
// The rotation is always measured from the anchor (where the drag started)
// to the current control point; it is not accumulated across frames, so
// ViewMatrix is a pure function of the camera state.
type ArcballCamera struct {
	eye   math.Vec3
	focus math.Vec3
	up    math.Vec3

	fieldOfView float64 // Radians
	aspectRatio float64
	near        float64
	far         float64

	// DragScale multiplies the drag length to get the rotation angle.
	DragScale float32

	anchor  *[2]float64 // nil when no drag is in progress
	current [2]float64
}

// New creates an arcball camera at eye looking at focus.
// up is normalized; projection settings start at the package defaults.
func New(eye, focus, up math.Vec3) *ArcballCamera {
	return &ArcballCamera{
		eye:         eye,
		focus:       focus,
		up:          up.Normalize(),
		fieldOfView: DefaultFieldOfView,
		aspectRatio: DefaultAspectRatio,
		near:        DefaultNear,
		far:         DefaultFar,
		DragScale:   DefaultDragScale,
	}
}

// Eye returns the camera position.
func (c *ArcballCamera) Eye() math.Vec3 {
	return c.eye
}

// Focus returns the point the camera looks at.
func (c *ArcballCamera) Focus() math.Vec3 {
	return c.focus
}

// Up returns the unit up vector.
func (c *ArcballCamera) Up() math.Vec3 {
	return c.up
}

// SetAspectRatio updates the aspect ratio, usually after a window resize.
func (c *ArcballCamera) SetAspectRatio(aspect float64) {
	if aspect > 0 {
		c.aspectRatio = aspect
	}
}

// SetPerspective sets the field of view (radians) and the clip planes.
func (c *ArcballCamera) SetPerspective(fieldOfView, near, far float64) {
	c.fieldOfView = fieldOfView
	c.near = near
	c.far = far
}

// StartControl begins a drag at (x, y). Calling it during a drag restarts
// the drag from the new point, discarding the rotation so far.
func (c *ArcballCamera) StartControl(x, y float64) {
	c.anchor = &[2]float64{x, y}
	c.current = [2]float64{x, y}
}

// SetControlPoint moves the drag point. Ignored when no drag is in progress.
func (c *ArcballCamera) SetControlPoint(x, y float64) {
	if c.anchor == nil {
		return
	}
	c.current = [2]float64{x, y}
}

// ReleaseControls ends the drag. Safe to call when not dragging.
func (c *ArcballCamera) ReleaseControls() {
	c.anchor = nil
}

// IsControlled reports whether a drag is in progress.
func (c *ArcballCamera) IsControlled() bool {
	return c.anchor != nil
}

// Scroll dollies the eye toward (negative delta) or away from (positive
// delta) the focus point. Deltas that would put the eye on or past the
// focus are ignored.
func (c *ArcballCamera) Scroll(delta float64) {
	factor := float32(1 + delta)
	if factor <= 0 {
		return
	}
	c.eye = c.focus.Add(c.eye.Sub(c.focus).Scale(factor))
}

// Frame points the camera at center and moves it along the current view
// direction until a sphere of the given radius fits the field of view.
// The far plane is pushed back if the sphere would be clipped.
func (c *ArcballCamera) Frame(center math.Vec3, radius float32) {
	dir := c.eye.Sub(c.focus).Normalize()
	if dir == (math.Vec3{}) {
		dir = math.Vec3{Z: 1}
	}

	dist := float64(radius) / gomath.Sin(c.fieldOfView/2)
	if dist < 2*c.near {
		dist = 2 * c.near
	}

	c.focus = center
	c.eye = center.Add(dir.Scale(float32(dist)))

	if need := dist + 2*float64(radius); need > c.far {
		c.far = need
	}
}

// ViewMatrix returns the world-to-camera transform.
// While a drag is in progress the view basis is rotated by the drag.
func (c *ArcballCamera) ViewMatrix() math.Mat4 {
	zAxis := c.eye.Sub(c.focus).Normalize()
	xAxis := c.up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis).Normalize()

	// Translation comes from the unrotated basis: a drag orbits the scene.
	xTrans := -c.eye.Dot(xAxis)
	yTrans := -c.eye.Dot(yAxis)
	zTrans := -c.eye.Dot(zAxis)

	if rot, ok := c.dragRotation(xAxis, yAxis); ok {
		xAxis = rot.Rotate(xAxis)
		yAxis = rot.Rotate(yAxis)
		zAxis = rot.Rotate(zAxis)
	}

	return math.FromRows(
		[4]float32{xAxis.X, xAxis.Y, xAxis.Z, xTrans},
		[4]float32{yAxis.X, yAxis.Y, yAxis.Z, yTrans},
		[4]float32{zAxis.X, zAxis.Y, zAxis.Z, zTrans},
		[4]float32{0, 0, 0, 1},
	)
}

// dragRotation returns the rotation for the current drag. The screen delta
// is turned 90 degrees so the rotation axis is perpendicular to the drag.
func (c *ArcballCamera) dragRotation(xAxis, yAxis math.Vec3) (math.Quat, bool) {
	if c.anchor == nil {
		return math.Quat{}, false
	}

	dx := float32(c.current[1] - c.anchor[1])
	dy := float32(c.anchor[0] - c.current[0])

	lengthSq := dx*dx + dy*dy
	if lengthSq <= dragEpsilon {
		return math.Quat{}, false
	}
	length := float32(gomath.Sqrt(float64(lengthSq)))

	axis := xAxis.Scale(dx).Add(yAxis.Scale(dy)).Scale(1 / length)
	return math.QuatFromAxisAngle(axis, length*c.DragScale).Normalize(), true
}

// ProjectionMatrix returns the perspective projection for the current
// field of view, aspect ratio and clip planes.
func (c *ArcballCamera) ProjectionMatrix() math.Mat4 {
	m11 := float32(1 / gomath.Tan(c.fieldOfView/2))
	m22 := m11 * float32(c.aspectRatio)
	m33 := float32(-(c.far + c.near) / (c.far - c.near))
	m34 := float32(-(2 * c.far * c.near) / (c.far - c.near))

	return math.FromRows(
		[4]float32{m11, 0, 0, 0},
		[4]float32{0, m22, 0, 0},
		[4]float32{0, 0, m33, m34},
		[4]float32{0, 0, -1, 0},
	)
}
