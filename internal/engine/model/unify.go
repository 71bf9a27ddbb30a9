package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mithril/pkg/formats"
	"github.com/Faultbox/mithril/pkg/math"
)

// ErrIndexOutOfRange is returned when a face corner references a position or
// normal that does not exist.
var ErrIndexOutOfRange = errors.New("face index out of range")

// Unify merges the independent position and normal index spaces of corners
// into one shared index space.
//
// Corners are visited in order. The first time a (position, normal) pair is
// seen it gets the next unified index and its values are appended to the
// output; later occurrences reuse that index. Two corners sharing a position
// but not a normal therefore get distinct vertices. The resulting index
// values are dense: exactly 0..len(Vertices)-1.
func Unify(corners []formats.FaceCorner, positions, normals []math.Vec3) (*Mesh, error) {
	mesh := &Mesh{
		Indices: make([]uint32, len(corners)),
	}
	if len(corners) == 0 {
		return mesh, nil
	}

	seen := make(map[formats.FaceCorner]uint32, len(corners))
	for i, c := range corners {
		if idx, ok := seen[c]; ok {
			mesh.Indices[i] = idx
			continue
		}

		if int(c.Position) >= len(positions) {
			return nil, fmt.Errorf("%w: corner %d references position %d of %d",
				ErrIndexOutOfRange, i, c.Position, len(positions))
		}
		if int(c.Normal) >= len(normals) {
			return nil, fmt.Errorf("%w: corner %d references normal %d of %d",
				ErrIndexOutOfRange, i, c.Normal, len(normals))
		}

		idx := uint32(len(mesh.Vertices))
		seen[c] = idx
		mesh.Indices[i] = idx
		mesh.Vertices = append(mesh.Vertices, positions[c.Position])
		mesh.Normals = append(mesh.Normals, normals[c.Normal])
	}

	mesh.Bounds = computeBounds(mesh.Vertices)
	return mesh, nil
}

func computeBounds(vertices []math.Vec3) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}
