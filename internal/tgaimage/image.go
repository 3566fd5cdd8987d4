// Package tgaimage is an in-memory pixel grid with a Truevision TGA codec.
//
// Pixels are stored as BGR(A) or single-byte gray, row 0 at the top. The codec
// reads and writes uncompressed and run-length-encoded files, bottom-left or
// top-left origin, at 8, 24 or 32 bits per pixel.
package tgaimage

import (
	"image"
	"image/color"
)

// Format is the number of bytes per pixel.
type Format int

const (
	Grayscale Format = 1
	RGB       Format = 3
	RGBA      Format = 4
)

func (f Format) valid() bool {
	return f == Grayscale || f == RGB || f == RGBA
}

// Image is a width×height grid of pixels in one Format.
type Image struct {
	width  int
	height int
	format Format
	data   []byte
}

// New allocates a zeroed image.
func New(width, height int, format Format) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		width:  width,
		height: height,
		format: format,
		data:   make([]byte, width*height*int(format)),
	}
}

// FromImage copies src into a new Image of the given format.
func FromImage(src image.Image, format Format) *Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy(), format)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			img.Set(x, y, c)
		}
	}
	return img
}

func (img *Image) Width() int     { return img.width }
func (img *Image) Height() int    { return img.height }
func (img *Image) Format() Format { return img.format }

// Pix exposes the raw BGR(A)/gray bytes, row 0 first.
func (img *Image) Pix() []byte { return img.data }

func (img *Image) offset(x, y int) (int, bool) {
	if len(img.data) == 0 || x < 0 || y < 0 || x >= img.width || y >= img.height {
		return 0, false
	}
	return (x + y*img.width) * int(img.format), true
}

// Get returns the pixel at (x, y). Out-of-range coordinates read as the zero color.
func (img *Image) Get(x, y int) color.NRGBA {
	i, ok := img.offset(x, y)
	if !ok {
		return color.NRGBA{}
	}
	p := img.data[i:]
	switch img.format {
	case Grayscale:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: 255}
	case RGB:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	default:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
	}
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (img *Image) Set(x, y int, c color.NRGBA) {
	i, ok := img.offset(x, y)
	if !ok {
		return
	}
	p := img.data[i:]
	switch img.format {
	case Grayscale:
		p[0] = color.GrayModel.Convert(c).(color.Gray).Y
	case RGB:
		p[0], p[1], p[2] = c.B, c.G, c.R
	default:
		p[0], p[1], p[2], p[3] = c.B, c.G, c.R, c.A
	}
}

// ColorModel, Bounds and At make *Image an image.Image.
func (img *Image) ColorModel() color.Model { return color.NRGBAModel }
func (img *Image) Bounds() image.Rectangle { return image.Rect(0, 0, img.width, img.height) }
func (img *Image) At(x, y int) color.Color { return img.Get(x, y) }

// FlipVertically swaps rows top-to-bottom in place.
func (img *Image) FlipVertically() {
	if len(img.data) == 0 {
		return
	}
	line := img.width * int(img.format)
	tmp := make([]byte, line)
	for j := 0; j < img.height/2; j++ {
		a := img.data[j*line : (j+1)*line]
		b := img.data[(img.height-1-j)*line : (img.height-j)*line]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// FlipHorizontally mirrors each row in place.
func (img *Image) FlipHorizontally() {
	if len(img.data) == 0 {
		return
	}
	bpp := int(img.format)
	for y := 0; y < img.height; y++ {
		row := img.data[y*img.width*bpp : (y+1)*img.width*bpp]
		for i, j := 0, img.width-1; i < j; i, j = i+1, j-1 {
			for k := 0; k < bpp; k++ {
				row[i*bpp+k], row[j*bpp+k] = row[j*bpp+k], row[i*bpp+k]
			}
		}
	}
}
