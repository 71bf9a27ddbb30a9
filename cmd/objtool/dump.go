package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/mithril/internal/engine/model"
	"github.com/Faultbox/mithril/pkg/math"
)

// meshDump is the YAML layout written by the dump command.
type meshDump struct {
	Source    string     `yaml:"source"`
	Vertices  []flowVec  `yaml:"vertices"`
	Normals   []flowVec  `yaml:"normals"`
	Triangles []flowTri  `yaml:"triangles"`
	Bounds    boundsDump `yaml:"bounds"`
}

type boundsDump struct {
	Min flowVec `yaml:"min"`
	Max flowVec `yaml:"max"`
}

// flowVec and flowTri print as one-line sequences ([x, y, z]).
type flowVec [3]float32

type flowTri [3]uint32

func (v flowVec) MarshalYAML() (interface{}, error) {
	return flowSeq(
		strconv.FormatFloat(float64(v[0]), 'g', -1, 32),
		strconv.FormatFloat(float64(v[1]), 'g', -1, 32),
		strconv.FormatFloat(float64(v[2]), 'g', -1, 32),
	), nil
}

func (t flowTri) MarshalYAML() (interface{}, error) {
	return flowSeq(
		strconv.FormatUint(uint64(t[0]), 10),
		strconv.FormatUint(uint64(t[1]), 10),
		strconv.FormatUint(uint64(t[2]), 10),
	), nil
}

func flowSeq(values ...string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	return n
}

func newMeshDump(source string, mesh *model.Mesh) meshDump {
	d := meshDump{
		Source:    source,
		Vertices:  toFlow(mesh.Vertices),
		Normals:   toFlow(mesh.Normals),
		Triangles: make([]flowTri, 0, mesh.TriangleCount()),
		Bounds: boundsDump{
			Min: flowVec(mesh.Bounds.Min.Array()),
			Max: flowVec(mesh.Bounds.Max.Array()),
		},
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		d.Triangles = append(d.Triangles, flowTri{mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]})
	}
	return d
}

func toFlow(vs []math.Vec3) []flowVec {
	out := make([]flowVec, len(vs))
	for i, v := range vs {
		out[i] = flowVec(v.Array())
	}
	return out
}

// writeDump writes the unified mesh as YAML.
func writeDump(w io.Writer, source string, mesh *model.Mesh) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newMeshDump(source, mesh)); err != nil {
		return err
	}
	return enc.Close()
}

// writeDumpFile writes the dump to path. The file is closed before
// returning, and a failed close is reported like a failed write.
func writeDumpFile(path, source string, mesh *model.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := writeDump(f, source, mesh); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
