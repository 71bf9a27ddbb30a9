// Package viewer implements the interactive mesh viewer: it loads the
// configured scene, then runs the input and render loop.
package viewer

import (
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/mithril/internal/assets"
	"github.com/Faultbox/mithril/internal/config"
	"github.com/Faultbox/mithril/internal/engine/camera"
	"github.com/Faultbox/mithril/internal/engine/input"
	"github.com/Faultbox/mithril/internal/engine/renderer"
	"github.com/Faultbox/mithril/internal/engine/scene"
	"github.com/Faultbox/mithril/internal/engine/window"
	"github.com/Faultbox/mithril/internal/logger"
	"github.com/Faultbox/mithril/pkg/math"
)

// Viewer is the main viewer instance.
type Viewer struct {
	config  *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	assets   *assets.Manager
	scene    *scene.Scene
	camera   *camera.ArcballCamera
	controls *Controls
}

// New creates the window and GL state, then loads the configured scene.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("objects", len(cfg.Scene.Objects)),
	)

	v := &Viewer{
		config: cfg,
		assets: assets.NewManager(cfg.Assets.Dir),
	}

	// Meshes are loaded before any GL state exists so a bad file fails fast
	var err error
	v.scene, err = BuildScene(cfg.Scene, v.assets)
	if err != nil {
		return nil, err
	}

	v.camera = NewCamera(cfg.Camera)
	if cfg.Camera.FrameScene {
		FrameScene(v.camera, v.scene)
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := v.window.GetDrawableSize()
	v.renderer, err = renderer.New(renderer.DefaultConfig(dw, dh))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	// Upload up front so the first frame does not stall
	v.scene.Each(func(id scene.ObjectID, obj scene.Object) {
		if err := v.renderer.Upload(obj.Mesh); err != nil {
			logger.Warn("object will not be drawn", zap.Uint32("id", uint32(id)), zap.Error(err))
		}
	})

	v.input = input.New()
	ww, wh := v.window.GetSize()
	v.controls = NewControls(v.camera, cfg.Camera.ZoomStep, ww, wh)

	logger.Info("viewer initialized successfully",
		zap.Int("meshes", v.assets.Len()),
		zap.Int("gpu_meshes", v.renderer.MeshCount()),
	)
	return v, nil
}

// NewCamera creates the arcball camera described by the config.
func NewCamera(cfg config.CameraConfig) *camera.ArcballCamera {
	cam := camera.New(vec3(cfg.Eye), vec3(cfg.Focus), vec3(cfg.Up))
	cam.SetPerspective(cfg.FOVDegrees*gomath.Pi/180, cfg.Near, cfg.Far)
	if cfg.DragScale > 0 {
		cam.DragScale = cfg.DragScale
	}
	return cam
}

// BuildScene loads every configured object through the asset manager. Objects
// naming the same file share one mesh.
func BuildScene(cfg config.SceneConfig, mgr *assets.Manager) (*scene.Scene, error) {
	s := scene.New()
	for i, obj := range cfg.Objects {
		mesh, err := mgr.Load(obj.Model)
		if err != nil {
			return nil, fmt.Errorf("scene object %d: %w", i, err)
		}

		id := s.Add(mesh)
		t := obj.Translation
		if err := s.SetTranslation(id, t[0], t[1], t[2]); err != nil {
			return nil, err
		}
		scale := obj.Scale
		if scale == 0 {
			scale = 1
		}
		if err := s.SetScale(id, scale); err != nil {
			return nil, err
		}

		logger.Debug("object placed",
			zap.Uint32("id", uint32(id)),
			zap.String("model", obj.Model),
			zap.Float32s("translation", t[:]),
			zap.Float32("scale", scale),
		)
	}
	return s, nil
}

// FrameScene points the camera at the scene's bounding sphere. Empty scenes
// leave the camera untouched.
func FrameScene(cam *camera.ArcballCamera, s *scene.Scene) {
	b, ok := s.Bounds()
	if !ok {
		return
	}
	cam.Frame(b.Center(), b.Radius())
	logger.Debug("camera framed",
		zap.Float32s("eye", floats(cam.Eye())),
		zap.Float32s("focus", floats(cam.Focus())),
		zap.Float32("distance", cam.Eye().Distance(cam.Focus())),
	)
}

// Run starts the main loop and returns when the window is closed or
// escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if v.config.Window.FPSLimit > 0 && !v.config.Window.VSync {
		frameBudget = time.Second / time.Duration(v.config.Window.FPSLimit)
	}

	logger.Info("starting viewer loop")

	for v.running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		// 1. Process input
		v.input.Update()
		for _, event := range v.input.Events() {
			v.controls.Handle(event)
			if event.Type == input.EventWindowResize {
				v.renderer.Resize(v.window.GetDrawableSize())
				proj := v.camera.ProjectionMatrix().RowMajor()
				logger.Debug("projection updated", zap.Float32s("rows", proj[:]))
			}
		}
		if v.controls.QuitRequested() {
			v.running = false
			break
		}

		// 2. Render
		v.render()

		// 3. Present (swap buffers)
		v.window.SwapBuffers()

		if frameBudget > 0 {
			if spent := time.Since(frameStart); spent < frameBudget {
				v.window.Delay(uint32((frameBudget - spent).Milliseconds()))
			}
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	if v.assets != nil {
		hits, misses := v.assets.Stats()
		logger.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
		v.assets.Close()
	}
}

// render draws the current frame.
func (v *Viewer) render() {
	v.renderer.Begin()
	v.renderer.DrawScene(v.scene, v.camera.ViewMatrix(), v.camera.ProjectionMatrix())
	v.renderer.End()
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func floats(v math.Vec3) []float32 {
	a := v.Array()
	return a[:]
}
