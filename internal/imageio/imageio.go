// Package imageio writes rendered images in the format named by the output
// path's extension.
package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"

	"tinyrender/internal/tgaimage"
)

// Format returns the output format for path: "tga", "png", "webp" or "bmp".
func Format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "tga", "png", "webp", "bmp":
		return ext, nil
	}
	return "", fmt.Errorf("imageio: unsupported extension %q", filepath.Ext(path))
}

// Encode writes img to w in format. TGA output is RLE-compressed with a
// bottom-left origin, RGB when img is fully opaque and RGBA otherwise.
func Encode(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "tga":
		f := tgaimage.RGBA
		if opaque(img) {
			f = tgaimage.RGB
		}
		err = tgaimage.Encode(w, tgaimage.FromImage(img, f), tgaimage.DefaultOptions)
	case "png":
		err = png.Encode(w, img)
	case "webp":
		err = nativewebp.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("imageio: unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("imageio: encode %s: %w", format, err)
	}
	return nil
}

// Save writes img to path, creating parent directories.
func Save(path string, img image.Image) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, img, format); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("imageio: close %s: %w", path, err)
	}
	return nil
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
