// Package model turns parsed OBJ attribute streams into single-index meshes
// ready for GPU upload.
package model

import (
	"github.com/Faultbox/mithril/pkg/math"
)

// Mesh holds unified mesh data ready for GPU upload.
// Vertices and Normals are index-aligned; every value in Indices refers to
// both. A Mesh is immutable once built and may be shared between objects.
type Mesh struct {
	Vertices []math.Vec3
	Normals  []math.Vec3
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns half the diagonal, the radius of a sphere enclosing the box.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Length() / 2
}
