// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a loaded configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Scene   SceneConfig   `yaml:"scene"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"` // 0 = unlimited
}

// CameraConfig holds the initial arcball camera setup.
type CameraConfig struct {
	Eye        [3]float32 `yaml:"eye"`
	Focus      [3]float32 `yaml:"focus"`
	Up         [3]float32 `yaml:"up"`
	FOVDegrees float64    `yaml:"fov_degrees"`
	Near       float64    `yaml:"near"`
	Far        float64    `yaml:"far"`
	DragScale  float32    `yaml:"drag_scale"`  // Radians per unit of normalized drag
	ZoomStep   float64    `yaml:"zoom_step"`   // Dolly fraction per wheel notch
	FrameScene bool       `yaml:"frame_scene"` // Fit the loaded scene on startup
}

// SceneConfig lists the objects placed at startup.
type SceneConfig struct {
	Objects []ObjectConfig `yaml:"objects"`
}

// ObjectConfig places one mesh in the scene.
type ObjectConfig struct {
	Model       string     `yaml:"model"`
	Translation [3]float32 `yaml:"translation"`
	Scale       float32    `yaml:"scale"`
}

// AssetsConfig holds asset lookup settings.
type AssetsConfig struct {
	Dir string `yaml:"dir"` // Base directory for relative model paths
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "mithril",
			Width:      640,
			Height:     480,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   60,
		},
		Camera: CameraConfig{
			Eye:        [3]float32{0, 0, 5},
			Focus:      [3]float32{0, 0, 0},
			Up:         [3]float32{0, 1, 0},
			FOVDegrees: 90,
			Near:       1,
			Far:        100,
			DragScale:  2,
			ZoomStep:   0.1,
			FrameScene: true,
		},
		Assets: AssetsConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings the viewer cannot run without and fills in
// object defaults.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		return fmt.Errorf("%w: fov_degrees %v must be in (0, 180)", ErrInvalidConfig, c.Camera.FOVDegrees)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: clip planes near=%v far=%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Eye == c.Camera.Focus {
		return fmt.Errorf("%w: camera eye and focus coincide", ErrInvalidConfig)
	}
	if c.Camera.Up == [3]float32{} {
		return fmt.Errorf("%w: camera up vector is zero", ErrInvalidConfig)
	}

	for i := range c.Scene.Objects {
		obj := &c.Scene.Objects[i]
		if obj.Model == "" {
			return fmt.Errorf("%w: scene object %d has no model", ErrInvalidConfig, i)
		}
		if obj.Scale == 0 {
			obj.Scale = 1
		}
	}
	return nil
}
