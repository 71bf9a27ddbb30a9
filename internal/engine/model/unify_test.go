package model

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/Faultbox/mithril/pkg/formats"
	"github.com/Faultbox/mithril/pkg/math"
)

// referenceUnify is the straightforward quadratic version of Unify: for each
// corner it scans back for the first corner with the same pair.
func referenceUnify(corners []formats.FaceCorner, positions, normals []math.Vec3) ([]math.Vec3, []math.Vec3, []uint32) {
	var vertices, norms []math.Vec3
	var consumed []formats.FaceCorner
	indices := make([]uint32, 0, len(corners))

	for i, c := range corners {
		first := 0
		for first < len(corners) && corners[first] != c {
			first++
		}

		if first == i {
			consumed = append(consumed, c)
			indices = append(indices, uint32(len(vertices)))
			vertices = append(vertices, positions[c.Position])
			norms = append(norms, normals[c.Normal])
			continue
		}

		for j, p := range consumed {
			if p == c {
				indices = append(indices, uint32(j))
				break
			}
		}
	}
	return vertices, norms, indices
}

func makeCorners(positionIdx, normalIdx []uint32) []formats.FaceCorner {
	corners := make([]formats.FaceCorner, len(positionIdx))
	for i := range positionIdx {
		corners[i] = formats.FaceCorner{Position: positionIdx[i], Normal: normalIdx[i]}
	}
	return corners
}

func makeValues(n int, sign float32) []math.Vec3 {
	out := make([]math.Vec3, n)
	for i := range out {
		out[i] = math.Vec3{X: sign * float32(i+1)}
	}
	return out
}

// scenarioCorners is the mesh of five triangles used across these tests:
// triangle 4 is triangle 2 with reversed winding, triangles 1 and 3 share
// positions but not normals.
func scenarioCorners() []formats.FaceCorner {
	return makeCorners(
		[]uint32{
			0, 1, 2,
			3, 4, 5,
			0, 1, 2,
			5, 4, 3,
			3, 4, 5,
		},
		[]uint32{
			3, 4, 1,
			0, 1, 2,
			4, 1, 3,
			2, 1, 0,
			2, 0, 1,
		},
	)
}

func checkDense(t *testing.T, mesh *Mesh) {
	t.Helper()
	seen := make([]bool, len(mesh.Vertices))
	for i, idx := range mesh.Indices {
		if int(idx) >= len(seen) {
			t.Fatalf("index %d at %d exceeds vertex count %d", idx, i, len(seen))
		}
		seen[idx] = true
	}
	for v, ok := range seen {
		if !ok {
			t.Errorf("vertex %d is never referenced", v)
		}
	}
}

func checkPairCorrespondence(t *testing.T, corners []formats.FaceCorner, mesh *Mesh) {
	t.Helper()
	for i := range corners {
		for j := range corners {
			sameCorner := corners[i] == corners[j]
			sameIndex := mesh.Indices[i] == mesh.Indices[j]
			if sameCorner != sameIndex {
				t.Fatalf("corners %d and %d: same pair=%v but same index=%v", i, j, sameCorner, sameIndex)
			}
		}
	}
}

func TestUnifyScenario(t *testing.T) {
	positions := makeValues(6, 1)
	normals := makeValues(5, -1)
	corners := scenarioCorners()

	mesh, err := Unify(corners, positions, normals)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}

	// Length must be preserved
	if len(mesh.Indices) != 15 {
		t.Errorf("expected 15 indices, got %d", len(mesh.Indices))
	}

	// Repeated pairs
	for _, p := range [][2]int{{3, 11}, {4, 10}, {5, 9}} {
		if mesh.Indices[p[0]] != mesh.Indices[p[1]] {
			t.Errorf("indices[%d]=%d and indices[%d]=%d should match",
				p[0], mesh.Indices[p[0]], p[1], mesh.Indices[p[1]])
		}
	}

	// Triangles 1 and 3 share positions only
	for i := 0; i < 3; i++ {
		for j := 6; j < 9; j++ {
			if mesh.Indices[i] == mesh.Indices[j] {
				t.Errorf("indices[%d] and indices[%d] should differ", i, j)
			}
		}
	}

	if len(mesh.Vertices) != 12 {
		t.Errorf("expected 12 vertices, got %d", len(mesh.Vertices))
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Errorf("vertex/normal count mismatch: %d vs %d", len(mesh.Vertices), len(mesh.Normals))
	}

	// Output contains duplicates of every input value but nothing else
	if n := countDistinct(mesh.Vertices); n != 6 {
		t.Errorf("expected 6 distinct positions, got %d", n)
	}
	if n := countDistinct(mesh.Normals); n != 5 {
		t.Errorf("expected 5 distinct normals, got %d", n)
	}

	// Indices form the sequence 0..11
	sorted := append([]uint32(nil), mesh.Indices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var distinct []uint32
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) != 12 {
		t.Fatalf("expected 12 distinct indices, got %d", len(distinct))
	}
	for i, v := range distinct {
		if v != uint32(i) {
			t.Errorf("distinct index %d = %d, want %d", i, v, i)
		}
	}

	checkDense(t, mesh)
	checkPairCorrespondence(t, corners, mesh)
}

func TestUnifyCarriesAttributeValues(t *testing.T) {
	positions := makeValues(6, 1)
	normals := makeValues(5, -1)
	corners := scenarioCorners()

	mesh, err := Unify(corners, positions, normals)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}

	for i, c := range corners {
		idx := mesh.Indices[i]
		if mesh.Vertices[idx] != positions[c.Position] {
			t.Errorf("corner %d: vertex %v, want %v", i, mesh.Vertices[idx], positions[c.Position])
		}
		if mesh.Normals[idx] != normals[c.Normal] {
			t.Errorf("corner %d: normal %v, want %v", i, mesh.Normals[idx], normals[c.Normal])
		}
	}
}

func TestUnifyMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	cases := map[string][]formats.FaceCorner{
		"scenario": scenarioCorners(),
	}
	for n := 0; n < 5; n++ {
		count := 3 * (1 + rng.Intn(60))
		pos := make([]uint32, count)
		norm := make([]uint32, count)
		for i := range pos {
			pos[i] = uint32(rng.Intn(6))
			norm[i] = uint32(rng.Intn(5))
		}
		cases["random-"+string(rune('a'+n))] = makeCorners(pos, norm)
	}

	positions := makeValues(6, 1)
	normals := makeValues(5, -1)

	for name, corners := range cases {
		t.Run(name, func(t *testing.T) {
			mesh, err := Unify(corners, positions, normals)
			if err != nil {
				t.Fatalf("Unify failed: %v", err)
			}
			wantV, wantN, wantI := referenceUnify(corners, positions, normals)

			if len(mesh.Vertices) != len(wantV) {
				t.Fatalf("vertex count %d, reference %d", len(mesh.Vertices), len(wantV))
			}
			for i := range wantV {
				if mesh.Vertices[i] != wantV[i] || mesh.Normals[i] != wantN[i] {
					t.Errorf("vertex %d differs from reference", i)
				}
			}
			for i := range wantI {
				if mesh.Indices[i] != wantI[i] {
					t.Errorf("index %d: got %d, reference %d", i, mesh.Indices[i], wantI[i])
				}
			}

			if len(mesh.Indices) != len(corners) {
				t.Errorf("index count %d, want %d", len(mesh.Indices), len(corners))
			}
			if len(mesh.Vertices) > len(corners) {
				t.Errorf("more vertices (%d) than corners (%d)", len(mesh.Vertices), len(corners))
			}
			checkDense(t, mesh)
			checkPairCorrespondence(t, corners, mesh)
		})
	}
}

func TestUnifyIdempotent(t *testing.T) {
	mesh, err := Unify(scenarioCorners(), makeValues(6, 1), makeValues(5, -1))
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}

	again, err := Unify(makeCorners(mesh.Indices, mesh.Indices), mesh.Vertices, mesh.Normals)
	if err != nil {
		t.Fatalf("re-Unify failed: %v", err)
	}

	for i := range mesh.Indices {
		if again.Indices[i] != mesh.Indices[i] {
			t.Errorf("index %d: got %d, want %d", i, again.Indices[i], mesh.Indices[i])
		}
	}
	if len(again.Vertices) != len(mesh.Vertices) {
		t.Errorf("vertex count changed: %d -> %d", len(mesh.Vertices), len(again.Vertices))
	}
}

func TestUnifyAllUnique(t *testing.T) {
	corners := makeCorners([]uint32{0, 1, 2, 2, 1, 0}, []uint32{0, 0, 0, 1, 1, 1})

	mesh, err := Unify(corners, makeValues(3, 1), makeValues(2, -1))
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}

	if len(mesh.Vertices) != len(corners) {
		t.Errorf("expected %d vertices, got %d", len(corners), len(mesh.Vertices))
	}
	for i, idx := range mesh.Indices {
		if idx != uint32(i) {
			t.Errorf("expected identity index at %d, got %d", i, idx)
		}
	}
}

func TestUnifyEmpty(t *testing.T) {
	mesh, err := Unify(nil, nil, nil)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if len(mesh.Vertices) != 0 || len(mesh.Normals) != 0 || len(mesh.Indices) != 0 {
		t.Errorf("expected empty mesh, got %+v", mesh)
	}
}

func TestUnifyIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		corner formats.FaceCorner
	}{
		{"position", formats.FaceCorner{Position: 6, Normal: 0}},
		{"normal", formats.FaceCorner{Position: 0, Normal: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corners := append(scenarioCorners(), tt.corner, tt.corner, tt.corner)
			_, err := Unify(corners, makeValues(6, 1), makeValues(5, -1))
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}

func countDistinct(vs []math.Vec3) int {
	set := make(map[math.Vec3]struct{}, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return len(set)
}
