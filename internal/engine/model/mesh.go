package model

import (
	"github.com/Faultbox/mithril/pkg/formats"
	"github.com/Faultbox/mithril/pkg/math"
)

// BuildMesh unifies the attribute streams of a parsed OBJ file.
func BuildMesh(obj *formats.OBJ) (*Mesh, error) {
	return Unify(obj.Corners, obj.Positions, obj.Normals)
}

// VertexCount returns the number of unified vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// PositionData returns the vertex positions flattened to 3 floats per vertex.
func (m *Mesh) PositionData() []float32 {
	return flatten(m.Vertices)
}

// NormalData returns the vertex normals flattened to 3 floats per vertex.
func (m *Mesh) NormalData() []float32 {
	return flatten(m.Normals)
}

func flatten(vs []math.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
