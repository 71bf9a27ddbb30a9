// Package scene keeps the positioned mesh instances drawn by the viewer.
// Objects are addressed by opaque handles; callers never hold a reference
// into the scene's storage.
package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mithril/internal/engine/model"
	"github.com/Faultbox/mithril/pkg/math"
)

// ErrUnknownObject is returned for handles that do not name a live object.
var ErrUnknownObject = errors.New("unknown scene object")

// ObjectID identifies an object within its Scene. IDs are never reused.
type ObjectID uint32

// Object is a mesh placed in the world with a translation and uniform scale.
// The mesh is shared and must not be modified.
type Object struct {
	Mesh        *model.Mesh
	Translation math.Vec3
	Scale       float32
}

// ModelMatrix returns translate * scale.
func (o Object) ModelMatrix() math.Mat4 {
	t := mgl32.Translate3D(o.Translation.X, o.Translation.Y, o.Translation.Z)
	s := mgl32.Scale3D(o.Scale, o.Scale, o.Scale)
	return math.Mat4(t.Mul4(s))
}

// WorldBounds returns the mesh bounds after the object transform.
func (o Object) WorldBounds() model.Bounds {
	b := o.Mesh.Bounds
	m := o.ModelMatrix()
	lo := m.TransformVec3(b.Min)
	hi := m.TransformVec3(b.Max)
	// A negative scale swaps the corners
	return model.Bounds{Min: lo.Min(hi), Max: lo.Max(hi)}
}

// Scene is an ordered collection of objects.
type Scene struct {
	objects map[ObjectID]*Object
	order   []ObjectID
	nextID  ObjectID
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		objects: make(map[ObjectID]*Object),
		nextID:  1,
	}
}

// Add places mesh at the origin with scale 1 and returns its handle.
func (s *Scene) Add(mesh *model.Mesh) ObjectID {
	id := s.nextID
	s.nextID++

	s.objects[id] = &Object{Mesh: mesh, Scale: 1}
	s.order = append(s.order, id)
	return id
}

// Object returns a copy of the object with the given handle.
func (s *Scene) Object(id ObjectID) (Object, bool) {
	obj, ok := s.objects[id]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// SetTranslation moves an object.
func (s *Scene) SetTranslation(id ObjectID, x, y, z float32) error {
	obj, ok := s.objects[id]
	if !ok {
		return ErrUnknownObject
	}
	obj.Translation = math.Vec3{X: x, Y: y, Z: z}
	return nil
}

// SetScale sets the uniform scale of an object.
func (s *Scene) SetScale(id ObjectID, scale float32) error {
	obj, ok := s.objects[id]
	if !ok {
		return ErrUnknownObject
	}
	obj.Scale = scale
	return nil
}

// Remove deletes an object. Its handle becomes invalid.
func (s *Scene) Remove(id ObjectID) error {
	if _, ok := s.objects[id]; !ok {
		return ErrUnknownObject
	}
	delete(s.objects, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.order)
}

// Each calls fn for every object in insertion order.
func (s *Scene) Each(fn func(id ObjectID, obj Object)) {
	for _, id := range s.order {
		fn(id, *s.objects[id])
	}
}

// Bounds returns the union of all object bounds. ok is false for a scene
// with no vertices.
func (s *Scene) Bounds() (b model.Bounds, ok bool) {
	s.Each(func(_ ObjectID, obj Object) {
		if obj.Mesh == nil || obj.Mesh.VertexCount() == 0 {
			return
		}
		wb := obj.WorldBounds()
		if !ok {
			b, ok = wb, true
			return
		}
		b.Min = b.Min.Min(wb.Min)
		b.Max = b.Max.Max(wb.Max)
	})
	return b, ok
}
