package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
)

// Filter selects how Sample reads between texel centres.
type Filter string

const (
	FilterNearest  Filter = "nearest"
	FilterBilinear Filter = "bilinear"
)

// ParseFilter maps a config value to a Filter; "" is FilterNearest.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(s)) {
	case "", FilterNearest:
		return FilterNearest, nil
	case FilterBilinear:
		return FilterBilinear, nil
	}
	return "", fmt.Errorf("texture: unknown filter %q", s)
}

// decoders by lowercase extension. The tga package registers itself with an
// empty magic string, so image.Decode cannot be trusted to sniff the format.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".tga":  tga.Decode,
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
}

// Texture is a decoded image addressed by texture coordinates in [0,1]².
// Row 0 of the backing image is v = 0 (the bottom of the picture).
type Texture struct {
	img *image.NRGBA
}

// New wraps img, flipping it so that v grows upward.
func New(img image.Image) *Texture {
	n := toNRGBA(img)
	flipVertically(n)
	return &Texture{img: n}
}

// LoadTexture reads a TGA, PNG or JPEG file, chosen by extension.
func LoadTexture(path string) (*Texture, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("texture: %s: unsupported extension", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return New(img), nil
}

// Size returns the texel dimensions.
func (t *Texture) Size() (int, int) {
	return t.img.Rect.Dx(), t.img.Rect.Dy()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// At returns the nearest texel. Coordinates outside [0,1] are clamped.
func (t *Texture) At(u, v float64) color.NRGBA {
	w, h := t.Size()
	x := int(clamp01(u) * float64(w))
	y := int(clamp01(v) * float64(h))
	if x >= w {
		x = w - 1
	}
	if y >= h {
		y = h - 1
	}
	i := y*t.img.Stride + x*4
	p := t.img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Sample reads t at (u, v) with filter f.
func (t *Texture) Sample(u, v float64, f Filter) color.NRGBA {
	if f == FilterBilinear {
		return t.Bilinear(u, v)
	}
	return t.At(u, v)
}

// Bilinear blends the four texels around (u, v). UVs are clamped.
func (t *Texture) Bilinear(u, v float64) color.NRGBA {
	w, h := t.Size()

	fx := clamp01(u) * float64(w-1)
	fy := clamp01(v) * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := t.img.Stride
	pix := t.img.Pix

	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]uint8
	for k := 0; k < 4; k++ {
		f := float64(pix[i00+k])*w00 + float64(pix[i10+k])*w10 + float64(pix[i01+k])*w01 + float64(pix[i11+k])*w11
		out[k] = uint8(f + 0.5)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

// toNRGBA converts any image to NRGBA format with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func flipVertically(img *image.NRGBA) {
	h := img.Rect.Dy()
	line := img.Rect.Dx() * 4
	tmp := make([]byte, line)
	for y := 0; y < h/2; y++ {
		a := img.Pix[y*img.Stride : y*img.Stride+line]
		b := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+line]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
