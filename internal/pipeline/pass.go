package pipeline

import (
	"fmt"
	"image/color"
	"time"

	"tinyrender/internal/camera"
	"tinyrender/internal/logging"
	"tinyrender/internal/mathutil"
	"tinyrender/internal/raster"
	"tinyrender/internal/shader"
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// shaderFunc builds the shader for one object; frame already includes the
// object's model matrix.
type shaderFunc func(o Object, frame camera.Frame) shader.Shader

// pass holds the buffers one pass renders into.
type pass struct {
	name  string
	frame camera.Frame
	fb    *raster.FrameBuffer
	zb    *raster.DepthBuffer
	opt   raster.Options
}

func newPass(name string, s Scene, frame camera.Frame, opt raster.Options) *pass {
	fb := raster.NewFrameBuffer(s.Width, s.Height)
	fb.Fill(s.Background)
	return &pass{
		name:  name,
		frame: frame,
		fb:    fb,
		zb:    raster.NewDepthBuffer(s.Width, s.Height),
		opt:   opt,
	}
}

func (p *pass) run(objects []Object, build shaderFunc) raster.Stats {
	start := time.Now()
	var st raster.Stats
	for _, o := range objects {
		f := p.frame.WithModel(o.matrix())
		st.Add(raster.Draw(o.Mesh, build(o, f), f.Viewport, p.fb, p.zb, p.opt))
	}
	logging.Logger().Debug("pass done", "pass", p.name, "objects", len(objects),
		"drawn", st.Drawn, "occluded", st.Occluded, "discarded", st.Discarded,
		"elapsed", time.Since(start))
	return st
}

// objectLight brings a world-space light direction into the object space
// of model.
func objectLight(model mathutil.Mat4, light mathutil.Vec3) mathutil.Vec3 {
	inv, ok := model.Inverse()
	if !ok {
		return light
	}
	return inv.MulVec4(light.Dir()).XYZ()
}

// LightPass renders depth from the light and returns the normalized shadow
// buffer together with the grayscale depth picture.
func LightPass(s Scene) (*ShadowBuffer, *raster.FrameBuffer, error) {
	if err := s.validate(); err != nil {
		return nil, nil, err
	}
	frame, err := s.LightFrame()
	if err != nil {
		return nil, nil, err
	}

	p := newPass("light", s, frame, raster.Options{})
	p.run(s.Objects, func(o Object, f camera.Frame) shader.Shader {
		return shader.NewDepth(o.Mesh, f)
	})

	sb := NewShadowBuffer(p.zb, frame)
	if s.ShadowLookup != "" {
		sb.Lookup = s.ShadowLookup
	}
	if s.ShadowBias != 0 {
		sb.Bias = s.ShadowBias
	}
	return sb, p.fb, nil
}

// EyePass renders the final image in s.Mode. Shadow mode needs the buffer
// from LightPass and fails with ErrShadowNotReady without it; other modes
// ignore sb.
func EyePass(s Scene, sb *ShadowBuffer) (*raster.FrameBuffer, *raster.DepthBuffer, raster.Stats, error) {
	if err := s.validate(); err != nil {
		return nil, nil, raster.Stats{}, err
	}
	if s.Mode == ModeShadow {
		if !sb.Ready() {
			return nil, nil, raster.Stats{}, ErrShadowNotReady
		}
		if sb.Width() != s.Width || sb.Height() != s.Height {
			return nil, nil, raster.Stats{}, fmt.Errorf("%w: buffer is %dx%d, scene is %dx%d",
				ErrShadowNotReady, sb.Width(), sb.Height(), s.Width, s.Height)
		}
	}
	frame, err := s.EyeFrame()
	if err != nil {
		return nil, nil, raster.Stats{}, err
	}

	p := newPass("eye", s, frame, raster.Options{Supersample: s.Supersample})
	if s.Mode == ModeWireframe {
		wire := s.Wire
		if wire == (color.NRGBA{}) {
			wire = white
		}
		for _, o := range s.Objects {
			wireframe(o.Mesh, frame.WithModel(o.matrix()), p.fb, wire)
		}
		return p.fb, p.zb, raster.Stats{}, nil
	}

	var build shaderFunc
	switch s.Mode {
	case ModeFlat:
		build = func(o Object, f camera.Frame) shader.Shader {
			return shader.NewFlat(o.Mesh, f, objectLight(o.matrix(), s.Light))
		}
	case ModeGouraud:
		build = func(o Object, f camera.Frame) shader.Shader {
			return shader.NewGouraud(o.Mesh, f, objectLight(o.matrix(), s.Light))
		}
	case ModePhong:
		build = func(o Object, f camera.Frame) shader.Shader {
			return shader.NewPhong(o.Mesh, f, objectLight(o.matrix(), s.Light))
		}
	case ModeShadow:
		build = func(o Object, f camera.Frame) shader.Shader {
			ph := shader.NewPhong(o.Mesh, f, objectLight(o.matrix(), s.Light))
			ph.Params = shader.ShadowPhong
			ph.Shadow = sb.forModel(o.matrix())
			return ph
		}
	default:
		return nil, nil, raster.Stats{}, fmt.Errorf("pipeline: unknown mode %q", s.Mode)
	}

	st := p.run(s.Objects, build)
	return p.fb, p.zb, st, nil
}

// wireframe draws every triangle edge of mesh.
func wireframe(mesh shader.Mesh, frame camera.Frame, fb raster.Target, c color.NRGBA) {
	m := frame.Transform()
	for f := 0; f < mesh.NFaces(); f++ {
		var pts [3]mathutil.Vec2
		for slot := range pts {
			pts[slot] = m.MulVec4(mesh.Vert(f, slot).Point()).Project().XY()
		}
		for i := range pts {
			raster.Segment(fb, pts[i], pts[(i+1)%3], c)
		}
	}
}
