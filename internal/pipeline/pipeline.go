// Package pipeline runs render passes over a scene: one configurable
// pipeline covering flat, Gouraud, Phong and shadow-mapped shading, plus a
// wireframe preview.
package pipeline

import (
	"fmt"
	"image/color"

	"tinyrender/internal/camera"
	"tinyrender/internal/mathutil"
	"tinyrender/internal/raster"
	"tinyrender/internal/shader"
)

// Mode names a shading mode.
type Mode string

const (
	ModeWireframe Mode = "wireframe"
	ModeFlat      Mode = "flat"
	ModeGouraud   Mode = "gouraud"
	ModePhong     Mode = "phong"
	ModeShadow    Mode = "shadow"
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeWireframe, ModeFlat, ModeGouraud, ModePhong, ModeShadow}

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("pipeline: unknown mode %q", s)
}

// Object is one mesh placed in the world by Model. A zero Model is the
// identity.
type Object struct {
	Mesh  shader.Mesh
	Model mathutil.Mat4
}

func (o Object) matrix() mathutil.Mat4 {
	if o.Model == (mathutil.Mat4{}) {
		return mathutil.Mat4Identity()
	}
	return o.Model
}

// Scene is everything one render needs. Light is the world-space direction
// towards the light.
type Scene struct {
	Objects       []Object
	Width, Height int

	Eye, Center, Up mathutil.Vec3
	Light           mathutil.Vec3
	Orthographic    bool

	Mode        Mode
	Supersample bool
	Background  color.NRGBA
	Wire        color.NRGBA // wireframe line color, zero means white

	ShadowLookup ShadowLookup
	ShadowBias   float64 // zero means DefaultShadowBias
}

// Result holds a render's outputs. Light and Shadow are set in shadow mode.
type Result struct {
	Image  *raster.FrameBuffer
	Depth  *raster.DepthBuffer
	Light  *raster.FrameBuffer
	Shadow *ShadowBuffer
	Stats  raster.Stats
}

func (s Scene) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("pipeline: invalid size %dx%d", s.Width, s.Height)
	}
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	return nil
}

// EyeFrame is the camera of the final image.
func (s Scene) EyeFrame() (camera.Frame, error) {
	f, err := camera.NewFrame(camera.Params{
		Eye: s.Eye, Center: s.Center, Up: s.Up,
		Width: s.Width, Height: s.Height,
		Orthographic: s.Orthographic,
	})
	if err != nil {
		return camera.Frame{}, fmt.Errorf("pipeline: eye camera: %w", err)
	}
	return f, nil
}

// LightFrame is an orthographic camera placed along Light, at the eye's
// distance from Center, looking at Center.
func (s Scene) LightFrame() (camera.Frame, error) {
	dist := max(s.Eye.Sub(s.Center).Len(), 1)
	eye := s.Center.Add(s.Light.Normalize().Scale(dist))
	f, err := camera.NewFrame(camera.Params{
		Eye: eye, Center: s.Center, Up: lightUp(s.Light, s.Up),
		Width: s.Width, Height: s.Height,
		Orthographic: true,
	})
	if err != nil {
		return camera.Frame{}, fmt.Errorf("pipeline: light camera: %w", err)
	}
	return f, nil
}

// lightUp returns up unless it is parallel to the light, in which case some
// axis that is not is used.
func lightUp(light, up mathutil.Vec3) mathutil.Vec3 {
	l := light.Normalize()
	for _, c := range []mathutil.Vec3{up, {0, 1, 0}, {0, 0, 1}, {1, 0, 0}} {
		if c.Cross(l).Len() > 1e-6 {
			return c
		}
	}
	return up
}

// Render runs the passes s.Mode needs: the light pass first in shadow mode,
// then the eye pass.
func Render(s Scene) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	var sb *ShadowBuffer
	if s.Mode == ModeShadow {
		var err error
		sb, res.Light, err = LightPass(s)
		if err != nil {
			return nil, err
		}
		res.Shadow = sb
	}

	var err error
	res.Image, res.Depth, res.Stats, err = EyePass(s, sb)
	if err != nil {
		return nil, err
	}
	return res, nil
}
