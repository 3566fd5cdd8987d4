// Package depthdump stores depth or shadow grids as little-endian float32
// values behind a small header, compressed with zstd (.zst) or snappy (.sz).
package depthdump

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression names a stream codec.
type Compression string

const (
	Zstd   Compression = "zst"
	Snappy Compression = "sz"
)

var magic = [4]byte{'T', 'R', 'D', 'D'}

const version = 1

// headerSize is magic, version, width and height.
const headerSize = 4 + 4 + 4 + 4

// ErrFormat is returned for streams that are not depth dumps.
var ErrFormat = errors.New("depthdump: bad format")

// Grid is a W×H depth grid, row 0 first.
type Grid struct {
	Width, Height int
	Values        []float64
}

// CompressionFor picks the codec from a file extension.
func CompressionFor(path string) (Compression, error) {
	switch filepath.Ext(path) {
	case ".zst":
		return Zstd, nil
	case ".sz":
		return Snappy, nil
	}
	return "", fmt.Errorf("depthdump: unknown extension %q", filepath.Ext(path))
}

// Write encodes g to w through codec c.
func Write(w io.Writer, g Grid, c Compression) error {
	if len(g.Values) != g.Width*g.Height {
		return fmt.Errorf("depthdump: %d values for %dx%d grid", len(g.Values), g.Width, g.Height)
	}

	var zw io.WriteCloser
	switch c {
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("depthdump: %w", err)
		}
		zw = enc
	case Snappy:
		zw = snappy.NewBufferedWriter(w)
	default:
		return fmt.Errorf("depthdump: unknown compression %q", c)
	}

	bw := bufio.NewWriter(zw)
	hdr := make([]byte, headerSize)
	copy(hdr, magic[:])
	binary.LittleEndian.PutUint32(hdr[4:], version)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(g.Width))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(g.Height))
	bw.Write(hdr)

	var buf [4]byte
	for _, v := range g.Values {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		bw.Write(buf[:])
	}
	if err := bw.Flush(); err != nil {
		zw.Close()
		return fmt.Errorf("depthdump: write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("depthdump: close: %w", err)
	}
	return nil
}

// Read decodes a grid written by Write with the same codec.
func Read(r io.Reader, c Compression) (Grid, error) {
	var src io.Reader
	switch c {
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return Grid{}, fmt.Errorf("depthdump: %w", err)
		}
		defer dec.Close()
		src = dec
	case Snappy:
		src = snappy.NewReader(r)
	default:
		return Grid{}, fmt.Errorf("depthdump: unknown compression %q", c)
	}

	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(src, hdr); err != nil {
		return Grid{}, fmt.Errorf("depthdump: read header: %w", err)
	}
	if [4]byte(hdr[:4]) != magic || binary.LittleEndian.Uint32(hdr[4:]) != version {
		return Grid{}, ErrFormat
	}
	g := Grid{
		Width:  int(binary.LittleEndian.Uint32(hdr[8:])),
		Height: int(binary.LittleEndian.Uint32(hdr[12:])),
	}

	payload, err := io.ReadAll(src)
	if err != nil {
		return Grid{}, fmt.Errorf("depthdump: read: %w", err)
	}
	n := g.Width * g.Height
	if len(payload) != n*4 {
		return Grid{}, fmt.Errorf("%w: %d payload bytes for %dx%d grid", ErrFormat, len(payload), g.Width, g.Height)
	}
	g.Values = make([]float64, n)
	for i := range g.Values {
		g.Values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:])))
	}
	return g, nil
}

// WriteFile writes g to path with the codec named by its extension.
func WriteFile(path string, g Grid) error {
	c, err := CompressionFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("depthdump: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("depthdump: %w", err)
	}
	if err := Write(f, g, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a grid from path with the codec named by its extension.
func ReadFile(path string) (Grid, error) {
	c, err := CompressionFor(path)
	if err != nil {
		return Grid{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Grid{}, fmt.Errorf("depthdump: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f), c)
}
