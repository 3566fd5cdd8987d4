package tgaimage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
)

// pattern fills img with runs and noise so both RLE packet kinds appear.
func pattern(img *Image) {
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			var c color.NRGBA
			switch {
			case x < img.Width()/2:
				c = color.NRGBA{R: 200, G: 30, B: 10, A: 255}
			default:
				v := uint8(x*37 + y*11)
				c = color.NRGBA{R: v, G: v ^ 0x5a, B: uint8(y), A: uint8(128 + x)}
			}
			img.Set(x, y, c)
		}
	}
}

func TestRoundTripBitExact(t *testing.T) {
	formats := []Format{Grayscale, RGB, RGBA}
	opts := []Options{
		{RLE: false, TopLeft: false},
		{RLE: false, TopLeft: true},
		{RLE: true, TopLeft: false},
		{RLE: true, TopLeft: true},
	}
	for _, f := range formats {
		for _, o := range opts {
			src := New(300, 7, f)
			pattern(src)

			var first bytes.Buffer
			if err := Encode(&first, src, o); err != nil {
				t.Fatalf("format %d %+v: Encode: %v", f, o, err)
			}
			got, h, err := Decode(bytes.NewReader(first.Bytes()))
			if err != nil {
				t.Fatalf("format %d %+v: Decode: %v", f, o, err)
			}
			if !bytes.Equal(got.Pix(), src.Pix()) {
				t.Errorf("format %d %+v: decoded pixels differ from source", f, o)
			}
			if h.Options() != o {
				t.Errorf("format %d: header options = %+v, want %+v", f, h.Options(), o)
			}

			var second bytes.Buffer
			if err := Encode(&second, got, h.Options()); err != nil {
				t.Fatalf("format %d %+v: re-Encode: %v", f, o, err)
			}
			if !bytes.Equal(first.Bytes(), second.Bytes()) {
				t.Errorf("format %d %+v: re-encoded file differs (%d vs %d bytes)", f, o, first.Len(), second.Len())
			}
		}
	}
}

func TestRLEPackets(t *testing.T) {
	img := New(6, 1, Grayscale)
	for x, v := range []uint8{9, 9, 9, 1, 2, 3} {
		img.Set(x, 0, color.NRGBA{R: v, G: v, B: v, A: 255})
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, Options{RLE: true, TopLeft: true}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := buf.Bytes()[18 : buf.Len()-26]
	// Run of 3 (0x80|2) then a raw packet of 3 (count-1 = 2).
	want := []byte{130, 9, 2, 1, 2, 3}
	if !bytes.Equal(body, want) {
		t.Errorf("rle body = %v, want %v", body, want)
	}
	if tail := buf.Bytes()[buf.Len()-18:]; !bytes.Equal(tail, footer) {
		t.Errorf("footer = %q, want %q", tail, footer)
	}
}

func TestLongRunSplitsAt128(t *testing.T) {
	img := New(300, 1, RGB)
	var buf bytes.Buffer
	if err := Encode(&buf, img, Options{RLE: true, TopLeft: true}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := buf.Bytes()[18 : buf.Len()-26]
	// 128 + 128 + 44 zero pixels: three run packets of 1+3 bytes each.
	want := []byte{255, 0, 0, 0, 255, 0, 0, 0, 44 + 127, 0, 0, 0}
	if !bytes.Equal(body, want) {
		t.Errorf("rle body = %v, want %v", body, want)
	}
}

func TestBottomLeftOriginStoresRowsReversed(t *testing.T) {
	img := New(1, 2, Grayscale)
	img.Set(0, 0, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	img.Set(0, 1, color.NRGBA{R: 20, G: 20, B: 20, A: 255})

	var buf bytes.Buffer
	if err := Encode(&buf, img, Options{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := buf.Bytes()[18:20]; !bytes.Equal(got, []byte{20, 10}) {
		t.Errorf("stored rows = %v, want bottom row first [20 10]", got)
	}
	if d := buf.Bytes()[17]; d != 0 {
		t.Errorf("descriptor = %#x, want 0", d)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"zero width", Header{DataTypeCode: typeRawColor, Height: 1, BitsPerPixel: 24}},
		{"16 bpp", Header{DataTypeCode: typeRawColor, Width: 1, Height: 1, BitsPerPixel: 16}},
		{"colour mapped", Header{DataTypeCode: 1, ColorMapType: 1, Width: 1, Height: 1, BitsPerPixel: 8}},
		{"unknown type", Header{DataTypeCode: 32, Width: 1, Height: 1, BitsPerPixel: 24}},
		{"oversized", Header{DataTypeCode: typeRLEColor, Width: 65535, Height: 65535, BitsPerPixel: 32}},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, tc.h); err != nil {
			t.Fatal(err)
		}
		buf.Write(make([]byte, 64))
		if _, _, err := Decode(&buf); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: err = %v, want ErrFormat", tc.name, err)
		}
	}
}

func TestDecodeTruncatedRLE(t *testing.T) {
	img := New(4, 4, RGB)
	pattern(img)
	var buf bytes.Buffer
	if err := Encode(&buf, img, Options{RLE: true}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, _, err := Decode(bytes.NewReader(buf.Bytes()[:22])); err == nil {
		t.Error("Decode of truncated rle data succeeded")
	}
}

// The files this package writes must be readable by an independent decoder.
func TestCrossDecode(t *testing.T) {
	for _, o := range []Options{{RLE: true}, {RLE: false}, {RLE: true, TopLeft: true}} {
		src := New(37, 5, RGB)
		pattern(src)
		var buf bytes.Buffer
		if err := Encode(&buf, src, o); err != nil {
			t.Fatalf("%+v: Encode: %v", o, err)
		}
		other, err := tga.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%+v: tga.Decode: %v", o, err)
		}
		for y := 0; y < src.Height(); y++ {
			for x := 0; x < src.Width(); x++ {
				r, g, b, _ := other.At(x, y).RGBA()
				want := src.Get(x, y)
				if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
					t.Fatalf("%+v: pixel (%d,%d) = (%d,%d,%d), want (%d,%d,%d)", o, x, y,
						r>>8, g>>8, b>>8, want.R, want.G, want.B)
				}
			}
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tga")
	src := New(8, 3, RGBA)
	pattern(src)
	if err := WriteFile(path, src, DefaultOptions); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, h, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !h.Compressed() {
		t.Error("DefaultOptions did not write rle data")
	}
	if !bytes.Equal(got.Pix(), src.Pix()) {
		t.Error("file round trip changed pixels")
	}
}
