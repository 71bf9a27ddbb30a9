// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/mithril/internal/engine/model"
	"github.com/Faultbox/mithril/internal/engine/scene"
	"github.com/Faultbox/mithril/internal/engine/shader"
	"github.com/Faultbox/mithril/internal/logger"
	"github.com/Faultbox/mithril/pkg/math"
)

// ErrEmptyMesh is returned when a mesh without triangles is uploaded.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	ClearColor [3]float32
	MeshColor  [3]float32
}

// DefaultConfig returns the renderer settings used by the viewer.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		ClearColor: [3]float32{0.1, 0.1, 0.15}, // Dark blue-gray background
		MeshColor:  [3]float32{0.8, 0.8, 0.75},
	}
}

// gpuMesh holds the GL objects for one uploaded mesh.
type gpuMesh struct {
	vao        uint32
	positions  uint32
	normals    uint32
	ebo        uint32
	indexCount int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	program *shader.Program

	// Uploaded meshes, keyed by the shared mesh they were built from
	meshes map[*model.Mesh]*gpuMesh
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		meshes: make(map[*model.Mesh]*gpuMesh),
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.NewProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	logger.Debug("shader program created", zap.Uint32("program", r.program.ID))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for mesh := range r.meshes {
		r.Release(mesh)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Upload copies a mesh into GPU buffers: one position buffer, one normal
// buffer and a uint32 element buffer sharing the same indices. Uploading the
// same mesh again is a no-op.
func (r *Renderer) Upload(mesh *model.Mesh) error {
	if _, ok := r.meshes[mesh]; ok {
		return nil
	}
	if len(mesh.Indices) == 0 {
		return ErrEmptyMesh
	}

	g := &gpuMesh{indexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	// Position attribute (location = 0)
	g.positions = uploadAttribute(0, mesh.PositionData())
	// Normal attribute (location = 1)
	g.normals = uploadAttribute(1, mesh.NormalData())

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	// The element buffer binding is VAO state; unbind the VAO first
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	r.meshes[mesh] = g
	logger.Debug("mesh uploaded",
		zap.Uint32("vao", g.vao),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	return nil
}

// uploadAttribute creates a VBO holding tightly packed vec3 data and binds it
// to the given attribute location of the current VAO.
func uploadAttribute(location uint32, data []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(location, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(location)
	return vbo
}

// Release frees the GPU buffers of a mesh. Unknown meshes are ignored.
func (r *Renderer) Release(mesh *model.Mesh) {
	g, ok := r.meshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	buffers := []uint32{g.positions, g.normals, g.ebo}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
	delete(r.meshes, mesh)
}

// MeshCount returns the number of meshes resident on the GPU.
func (r *Renderer) MeshCount() int {
	return len(r.meshes)
}

// DrawScene draws every object in the scene with the given camera matrices.
// Meshes are uploaded on first use; objects with empty meshes are skipped.
func (r *Renderer) DrawScene(s *scene.Scene, view, projection math.Mat4) {
	r.program.Use()
	r.program.SetMat4("uView", &view)
	r.program.SetMat4("uProjection", &projection)
	r.program.SetVec3("uColor", math.Vec3{X: r.config.MeshColor[0], Y: r.config.MeshColor[1], Z: r.config.MeshColor[2]})

	s.Each(func(id scene.ObjectID, obj scene.Object) {
		if len(obj.Mesh.Indices) == 0 {
			return
		}
		if err := r.Upload(obj.Mesh); err != nil {
			logger.Warn("skipping object", zap.Uint32("id", uint32(id)), zap.Error(err))
			return
		}
		g := r.meshes[obj.Mesh]

		modelMatrix := obj.ModelMatrix()
		r.program.SetMat4("uModel", &modelMatrix)

		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	})
}
