package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tinyrender/internal/mathutil"
	"tinyrender/internal/pipeline"
	"tinyrender/internal/texture"
)

// Defaults applied by Resolve.
const (
	DefaultSize      = 800
	DefaultMode      = pipeline.ModeShadow
	DefaultOutputDir = "out"
	DefaultFormat    = "tga"
)

var (
	DefaultEye   = mathutil.Vec3{1, 1, 3}
	DefaultUp    = mathutil.Vec3{0, 1, 0}
	DefaultLight = mathutil.Vec3{1, 1, 1}
)

// Formats lists the accepted output formats.
var Formats = []string{"tga", "png", "webp", "bmp"}

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir     string   `json:"base_dir" yaml:"base_dir"`
	TextureDirs []string `json:"texture_dirs" yaml:"texture_dirs"`
	OutputDir   string   `json:"output_dir" yaml:"output_dir"`

	// Render settings
	Size             int     `json:"size" yaml:"size"`
	Mode             string  `json:"mode" yaml:"mode"`
	Format           string  `json:"format" yaml:"format"`
	Supersample      bool    `json:"supersample" yaml:"supersample"`
	SupersampleScale int     `json:"supersample_scale" yaml:"supersample_scale"`
	Orthographic     bool    `json:"orthographic" yaml:"orthographic"`
	ShadowLookup     string  `json:"shadow_lookup" yaml:"shadow_lookup"`
	ShadowBias       float64 `json:"shadow_bias" yaml:"shadow_bias"`
	WriteLight       bool    `json:"write_light" yaml:"write_light"`
	DumpDepth        string  `json:"dump_depth" yaml:"dump_depth"` // "", "zst" or "sz"
	TextureFilter    string  `json:"texture_filter" yaml:"texture_filter"`

	// Camera shared by every scene unless overridden
	Eye    mathutil.Vec3 `json:"eye" yaml:"eye"`
	Center mathutil.Vec3 `json:"center" yaml:"center"`
	Up     mathutil.Vec3 `json:"up" yaml:"up"`
	Light  mathutil.Vec3 `json:"light" yaml:"light"`

	Scenes []Scene `json:"scenes" yaml:"scenes"`
}

// Scene is one output image. Zero camera fields and an empty mode inherit
// the Config values.
type Scene struct {
	Name   string        `json:"name" yaml:"name"`
	Models []Model       `json:"models" yaml:"models"`
	Mode   string        `json:"mode" yaml:"mode"`
	Eye    mathutil.Vec3 `json:"eye" yaml:"eye"`
	Center mathutil.Vec3 `json:"center" yaml:"center"`
	Up     mathutil.Vec3 `json:"up" yaml:"up"`
	Light  mathutil.Vec3 `json:"light" yaml:"light"`
}

// Model places one OBJ file in a scene.
type Model struct {
	Path      string        `json:"path" yaml:"path"`
	Translate mathutil.Vec3 `json:"translate" yaml:"translate"`
	RotateX   float64       `json:"rotate_x" yaml:"rotate_x"` // degrees
	RotateY   float64       `json:"rotate_y" yaml:"rotate_y"`
	RotateZ   float64       `json:"rotate_z" yaml:"rotate_z"`
	Scale     float64       `json:"scale" yaml:"scale"` // 0 means 1
}

// Matrix is translate · rotY · rotX · rotZ · scale.
func (m Model) Matrix() mathutil.Mat4 {
	s := m.Scale
	if s == 0 {
		s = 1
	}
	rot := mathutil.EulerYXZ(mathutil.Vec3{m.RotateX, m.RotateY, m.RotateZ})
	rs := mathutil.Mat3Mul(rot, mathutil.Mat3Diag(s, s, s))
	return mathutil.FromMat3Translation(rs, m.Translate)
}

// Load reads a JSON or YAML (.yaml, .yml) config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	Size        int
	Mode        string
	Format      string
	Scale       int
	Supersample bool
	Lookup      string
	Filter      string
	Models      []string // replace the configured scenes with one scene
}

// Resolve fills in any empty fields with defaults and copies the shared
// camera into every scene. CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Size > 0 {
		c.Size = flags.Size
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
		for i := range c.Scenes {
			c.Scenes[i].Mode = ""
		}
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Scale > 0 {
		c.SupersampleScale = flags.Scale
	}
	if flags.Supersample {
		c.Supersample = true
	}
	if flags.Lookup != "" {
		c.ShadowLookup = flags.Lookup
	}
	if flags.Filter != "" {
		c.TextureFilter = flags.Filter
	}
	if len(flags.Models) > 0 {
		sc := Scene{Name: stem(flags.Models[0])}
		for _, p := range flags.Models {
			sc.Models = append(sc.Models, Model{Path: p})
		}
		c.Scenes = []Scene{sc}
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
		for i, d := range c.TextureDirs {
			if !filepath.IsAbs(d) {
				c.TextureDirs[i] = filepath.Join(c.BaseDir, d)
			}
		}
		for i := range c.Scenes {
			for j, m := range c.Scenes[i].Models {
				if m.Path != "" && !filepath.IsAbs(m.Path) {
					c.Scenes[i].Models[j].Path = filepath.Join(c.BaseDir, m.Path)
				}
			}
		}
	}

	// Defaults for render settings
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Size <= 0 {
		c.Size = DefaultSize
	}
	if c.Mode == "" {
		c.Mode = string(DefaultMode)
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	c.Format = strings.ToLower(strings.TrimPrefix(c.Format, "."))
	if c.SupersampleScale <= 0 {
		c.SupersampleScale = 1
	}
	c.Eye = orVec(c.Eye, DefaultEye)
	c.Up = orVec(c.Up, DefaultUp)
	c.Light = orVec(c.Light, DefaultLight)

	for i := range c.Scenes {
		sc := &c.Scenes[i]
		if sc.Name == "" {
			if len(sc.Models) > 0 {
				sc.Name = stem(sc.Models[0].Path)
			} else {
				sc.Name = fmt.Sprintf("scene%d", i)
			}
		}
		if sc.Mode == "" {
			sc.Mode = c.Mode
		}
		sc.Eye = orVec(sc.Eye, c.Eye)
		sc.Center = orVec(sc.Center, c.Center)
		sc.Up = orVec(sc.Up, c.Up)
		sc.Light = orVec(sc.Light, c.Light)
	}
}

// Validate reports the first setting a render cannot use. Call it after
// Resolve.
func (c *Config) Validate() error {
	if len(c.Scenes) == 0 {
		return fmt.Errorf("config: no scenes")
	}
	if !validFormat(c.Format) {
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	switch c.DumpDepth {
	case "", "zst", "sz":
	default:
		return fmt.Errorf("config: unknown depth dump compression %q", c.DumpDepth)
	}
	if _, err := pipeline.ParseShadowLookup(c.ShadowLookup); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := texture.ParseFilter(c.TextureFilter); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	seen := make(map[string]bool, len(c.Scenes))
	for _, sc := range c.Scenes {
		if seen[sc.Name] {
			return fmt.Errorf("config: duplicate scene name %q", sc.Name)
		}
		seen[sc.Name] = true
		if _, err := pipeline.ParseMode(sc.Mode); err != nil {
			return fmt.Errorf("config: scene %s: %w", sc.Name, err)
		}
		if len(sc.Models) == 0 {
			return fmt.Errorf("config: scene %s: no models", sc.Name)
		}
		for _, m := range sc.Models {
			if m.Path == "" {
				return fmt.Errorf("config: scene %s: model without path", sc.Name)
			}
		}
	}
	return nil
}

func validFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

func orVec(v, def mathutil.Vec3) mathutil.Vec3 {
	if v == (mathutil.Vec3{}) {
		return def
	}
	return v
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
