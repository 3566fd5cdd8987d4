package tgaimage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Header is the fixed 18-byte TGA file header.
type Header struct {
	IDLength        uint8
	ColorMapType    uint8
	DataTypeCode    uint8
	ColorMapOrigin  uint16
	ColorMapLength  uint16
	ColorMapDepth   uint8
	XOrigin         uint16
	YOrigin         uint16
	Width           uint16
	Height          uint16
	BitsPerPixel    uint8
	ImageDescriptor uint8
}

const (
	typeRawColor = 2
	typeRawGray  = 3
	typeRLEColor = 10
	typeRLEGray  = 11

	descTopOrigin   = 0x20
	descRightOrigin = 0x10

	maxChunk = 128

	// MaxPixels bounds Width·Height accepted by Decode.
	MaxPixels = 1 << 26
)

var footer = []byte("TRUEVISION-XFILE.\x00")

// ErrFormat reports a header or data layout this codec does not handle.
var ErrFormat = errors.New("tgaimage: unsupported format")

// Options control how an image is written.
type Options struct {
	RLE bool
	// TopLeft stores rows top-down (descriptor bit 0x20); otherwise rows are
	// written bottom-up with the origin in the lower-left corner.
	TopLeft bool
}

// DefaultOptions writes RLE data with a bottom-left origin.
var DefaultOptions = Options{RLE: true}

// Compressed reports whether h describes run-length-encoded data.
func (h Header) Compressed() bool {
	return h.DataTypeCode == typeRLEColor || h.DataTypeCode == typeRLEGray
}

// Options returns the write options that reproduce h's layout.
func (h Header) Options() Options {
	return Options{RLE: h.Compressed(), TopLeft: h.ImageDescriptor&descTopOrigin != 0}
}

// DecodeHeader reads only the header.
func DecodeHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("tgaimage: read header: %w", err)
	}
	return h, nil
}

// Decode reads a TGA stream. Rows are returned top-down whatever the file's
// origin flags say.
func Decode(r io.Reader) (*Image, Header, error) {
	br := bufio.NewReader(r)
	h, err := DecodeHeader(br)
	if err != nil {
		return nil, h, err
	}

	format := Format(h.BitsPerPixel >> 3)
	if h.Width == 0 || h.Height == 0 || !format.valid() || h.ColorMapType != 0 {
		return nil, h, fmt.Errorf("%w: %dx%d, %d bpp, colour map %d",
			ErrFormat, h.Width, h.Height, h.BitsPerPixel, h.ColorMapType)
	}
	if n := int(h.Width) * int(h.Height); n > MaxPixels {
		return nil, h, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrFormat, h.Width, h.Height, MaxPixels)
	}
	if _, err := br.Discard(int(h.IDLength)); err != nil {
		return nil, h, fmt.Errorf("tgaimage: skip id field: %w", err)
	}

	img := New(int(h.Width), int(h.Height), format)
	switch h.DataTypeCode {
	case typeRawColor, typeRawGray:
		if _, err := io.ReadFull(br, img.data); err != nil {
			return nil, h, fmt.Errorf("tgaimage: read pixel data: %w", err)
		}
	case typeRLEColor, typeRLEGray:
		if err := readRLE(br, img.data, int(format)); err != nil {
			return nil, h, err
		}
	default:
		return nil, h, fmt.Errorf("%w: data type %d", ErrFormat, h.DataTypeCode)
	}

	if h.ImageDescriptor&descTopOrigin == 0 {
		img.FlipVertically()
	}
	if h.ImageDescriptor&descRightOrigin != 0 {
		img.FlipHorizontally()
	}
	return img, h, nil
}

func readRLE(r *bufio.Reader, data []byte, bpp int) error {
	npix := len(data) / bpp
	pix := 0
	var px [4]byte
	for pix < npix {
		chunk, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("tgaimage: read rle packet: %w", err)
		}
		if chunk < maxChunk {
			n := int(chunk) + 1
			if pix+n > npix {
				return fmt.Errorf("tgaimage: rle raw packet overruns image (%d > %d pixels)", pix+n, npix)
			}
			if _, err := io.ReadFull(r, data[pix*bpp:(pix+n)*bpp]); err != nil {
				return fmt.Errorf("tgaimage: read rle raw packet: %w", err)
			}
			pix += n
			continue
		}
		n := int(chunk) - 127
		if pix+n > npix {
			return fmt.Errorf("tgaimage: rle run overruns image (%d > %d pixels)", pix+n, npix)
		}
		if _, err := io.ReadFull(r, px[:bpp]); err != nil {
			return fmt.Errorf("tgaimage: read rle run: %w", err)
		}
		for i := 0; i < n; i++ {
			copy(data[(pix+i)*bpp:], px[:bpp])
		}
		pix += n
	}
	return nil
}

// Encode writes img as TGA.
func Encode(w io.Writer, img *Image, opt Options) error {
	if img.width <= 0 || img.height <= 0 || img.width > 0xffff || img.height > 0xffff {
		return fmt.Errorf("%w: cannot write %dx%d", ErrFormat, img.width, img.height)
	}
	h := Header{
		Width:        uint16(img.width),
		Height:       uint16(img.height),
		BitsPerPixel: uint8(img.format) << 3,
	}
	switch {
	case img.format == Grayscale && opt.RLE:
		h.DataTypeCode = typeRLEGray
	case img.format == Grayscale:
		h.DataTypeCode = typeRawGray
	case opt.RLE:
		h.DataTypeCode = typeRLEColor
	default:
		h.DataTypeCode = typeRawColor
	}

	data := img.data
	if opt.TopLeft {
		h.ImageDescriptor = descTopOrigin
	} else {
		flipped := &Image{width: img.width, height: img.height, format: img.format, data: bytes.Clone(img.data)}
		flipped.FlipVertically()
		data = flipped.data
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("tgaimage: write header: %w", err)
	}
	if opt.RLE {
		writeRLE(bw, data, int(img.format))
	} else {
		bw.Write(data)
	}
	// Developer and extension area offsets, then the signature.
	bw.Write(make([]byte, 8))
	bw.Write(footer)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("tgaimage: write data: %w", err)
	}
	return nil
}

// writeRLE packs data into raw and run packets of at most 128 pixels. Errors
// surface from the caller's Flush.
func writeRLE(w *bufio.Writer, data []byte, bpp int) {
	npix := len(data) / bpp
	cur := 0
	for cur < npix {
		start := cur * bpp
		b := start
		run := 1
		raw := true
		for cur+run < npix && run < maxChunk {
			eq := bytes.Equal(data[b:b+bpp], data[b+bpp:b+2*bpp])
			b += bpp
			if run == 1 {
				raw = !eq
			}
			if raw && eq {
				run--
				break
			}
			if !raw && !eq {
				break
			}
			run++
		}
		cur += run
		if raw {
			w.WriteByte(byte(run - 1))
			w.Write(data[start : start+run*bpp])
		} else {
			w.WriteByte(byte(run + 127))
			w.Write(data[start : start+bpp])
		}
	}
}

// ReadFile decodes the TGA file at path.
func ReadFile(path string) (*Image, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("tgaimage: open %s: %w", path, err)
	}
	defer f.Close()
	img, h, err := Decode(f)
	if err != nil {
		return nil, h, fmt.Errorf("%s: %w", path, err)
	}
	return img, h, nil
}

// WriteFile encodes img to path.
func WriteFile(path string, img *Image, opt Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tgaimage: create %s: %w", path, err)
	}
	if err := Encode(f, img, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
