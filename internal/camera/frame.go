package camera

import "tinyrender/internal/mathutil"

// DefaultFill is the fraction of the target covered by the NDC square.
const DefaultFill = 0.75

// Params describes one render pass's camera.
type Params struct {
	Eye, Center, Up mathutil.Vec3
	Width, Height   int
	Orthographic    bool
	Fill            float64 // 0 means DefaultFill
}

// Frame is the (view, projection, viewport) triple for one pass. It is a value;
// passes build their own and never share one.
type Frame struct {
	View       mathutil.Mat4
	Projection mathutil.Mat4
	Viewport   mathutil.Mat4
}

// NewFrame builds the three matrices for p.
func NewFrame(p Params) (Frame, error) {
	view, err := LookAt(p.Eye, p.Center, p.Up)
	if err != nil {
		return Frame{}, err
	}

	coeff := 0.0
	if !p.Orthographic {
		coeff = -1 / p.Eye.Sub(p.Center).Len()
	}

	fill := p.Fill
	if fill <= 0 || fill > 1 {
		fill = DefaultFill
	}
	w, h := float64(p.Width), float64(p.Height)

	return Frame{
		View:       view,
		Projection: Projection(coeff),
		Viewport:   Viewport(w*(1-fill)/2, h*(1-fill)/2, w*fill, h*fill),
	}, nil
}

// MVP is Projection × View: object space to clip space.
func (f Frame) MVP() mathutil.Mat4 {
	return mathutil.Mat4Mul(f.Projection, f.View)
}

// Transform is Viewport × Projection × View.
func (f Frame) Transform() mathutil.Mat4 {
	return mathutil.Mat4Chain(f.Viewport, f.Projection, f.View)
}

// WithModel returns a copy of f whose view also applies the model matrix m.
func (f Frame) WithModel(m mathutil.Mat4) Frame {
	f.View = mathutil.Mat4Mul(f.View, m)
	return f
}

// ToScreen maps a clip-space position to screen space (x, y pixels, z depth).
func (f Frame) ToScreen(clip mathutil.Vec4) mathutil.Vec3 {
	return f.Viewport.MulVec4(clip).Project()
}
