package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tinyrender/internal/mathutil"
)

const sceneJSON = `{
  "base_dir": "/data",
  "output_dir": "renders",
  "size": 256,
  "mode": "phong",
  "eye": [0, 0, 4],
  "scenes": [
    {"name": "head", "models": [{"path": "obj/head.obj"}, {"path": "obj/eyes.obj", "translate": [0, 0.1, 0]}]},
    {"models": [{"path": "/abs/diablo.obj", "rotate_y": 90}], "mode": "flat", "eye": [2, 0, 0]}
  ]
}`

const sceneYAML = `
base_dir: /data
output_dir: renders
size: 256
mode: phong
eye: [0, 0, 4]
scenes:
  - name: head
    models:
      - path: obj/head.obj
      - path: obj/eyes.obj
        translate: [0, 0.1, 0]
  - mode: flat
    eye: [2, 0, 0]
    models:
      - path: /abs/diablo.obj
        rotate_y: 90
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadJSONAndYAMLAgree(t *testing.T) {
	for _, tc := range []struct{ name, body string }{
		{"scene.json", sceneJSON},
		{"scene.yaml", sceneYAML},
		{"scene.yml", sceneYAML},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tc.name, tc.body))
			if err != nil {
				t.Fatal(err)
			}
			cfg.Resolve(Flags{})
			if err := cfg.Validate(); err != nil {
				t.Fatal(err)
			}

			if cfg.Size != 256 || cfg.Mode != "phong" || cfg.Format != DefaultFormat {
				t.Errorf("settings = %d %q %q", cfg.Size, cfg.Mode, cfg.Format)
			}
			if cfg.OutputDir != filepath.Join("/data", "renders") {
				t.Errorf("OutputDir = %q", cfg.OutputDir)
			}
			if len(cfg.Scenes) != 2 {
				t.Fatalf("got %d scenes", len(cfg.Scenes))
			}

			head := cfg.Scenes[0]
			if head.Mode != "phong" || head.Eye != (mathutil.Vec3{0, 0, 4}) || head.Up != DefaultUp || head.Light != DefaultLight {
				t.Errorf("head scene = %+v", head)
			}
			if got := head.Models[0].Path; got != filepath.Join("/data", "obj", "head.obj") {
				t.Errorf("model path = %q", got)
			}
			if got := head.Models[1].Translate; got != (mathutil.Vec3{0, 0.1, 0}) {
				t.Errorf("translate = %v", got)
			}

			second := cfg.Scenes[1]
			if second.Name != "diablo" || second.Mode != "flat" || second.Eye != (mathutil.Vec3{2, 0, 0}) {
				t.Errorf("second scene = %+v", second)
			}
			if second.Models[0].Path != "/abs/diablo.obj" || second.Models[0].RotateY != 90 {
				t.Errorf("second model = %+v", second.Models[0])
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "config: read") {
		t.Errorf("missing file: err = %v", err)
	}
	if _, err := Load(writeFile(t, "bad.json", "{")); err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("bad json: err = %v", err)
	}
	if _, err := Load(writeFile(t, "bad.yaml", "size: [")); err == nil {
		t.Error("bad yaml accepted")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{Models: []string{"obj/african_head.obj", "obj/eyes.obj"}})

	if cfg.Size != DefaultSize || cfg.Mode != string(DefaultMode) || cfg.OutputDir != DefaultOutputDir {
		t.Errorf("defaults = %d %q %q", cfg.Size, cfg.Mode, cfg.OutputDir)
	}
	if cfg.Eye != DefaultEye || cfg.Center != (mathutil.Vec3{}) || cfg.Up != DefaultUp || cfg.Light != DefaultLight {
		t.Errorf("camera = %v %v %v %v", cfg.Eye, cfg.Center, cfg.Up, cfg.Light)
	}
	if cfg.SupersampleScale != 1 {
		t.Errorf("SupersampleScale = %d", cfg.SupersampleScale)
	}
	if len(cfg.Scenes) != 1 || cfg.Scenes[0].Name != "african_head" || len(cfg.Scenes[0].Models) != 2 {
		t.Fatalf("scenes = %+v", cfg.Scenes)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "scene.json", sceneJSON))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Resolve(Flags{Mode: "gouraud", Size: 64, Format: ".PNG", Scale: 2, Supersample: true, Lookup: "reproject", Filter: "bilinear", OutputDir: "/tmp/x"})

	if cfg.Size != 64 || cfg.Format != "png" || cfg.SupersampleScale != 2 || !cfg.Supersample {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.OutputDir != "/tmp/x" || cfg.ShadowLookup != "reproject" || cfg.TextureFilter != "bilinear" {
		t.Errorf("OutputDir = %q, lookup = %q, filter = %q", cfg.OutputDir, cfg.ShadowLookup, cfg.TextureFilter)
	}
	for _, sc := range cfg.Scenes {
		if sc.Mode != "gouraud" {
			t.Errorf("scene %s mode = %q", sc.Name, sc.Mode)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"no scenes", func(c *Config) { c.Scenes = nil }},
		{"format", func(c *Config) { c.Format = "gif" }},
		{"dump", func(c *Config) { c.DumpDepth = "gz" }},
		{"lookup", func(c *Config) { c.ShadowLookup = "light" }},
		{"filter", func(c *Config) { c.TextureFilter = "trilinear" }},
		{"mode", func(c *Config) { c.Scenes[0].Mode = "toon" }},
		{"duplicate", func(c *Config) { c.Scenes = append(c.Scenes, c.Scenes[0]) }},
		{"empty scene", func(c *Config) { c.Scenes[0].Models = nil }},
		{"empty path", func(c *Config) { c.Scenes[0].Models[0].Path = "" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.Resolve(Flags{Models: []string{"a.obj"}})
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestModelMatrix(t *testing.T) {
	m := Model{Translate: mathutil.Vec3{1, 2, 3}, RotateY: 90, Scale: 2}
	got := m.Matrix().MulPoint(mathutil.Vec3{1, 0, 0})
	// rotate_y 90° takes +x to -z.
	want := []float64{1, 2, 1}
	if !mathutil.ApproxEqual(got[:], want, 1e-9) {
		t.Errorf("got %v, want %v", got, want)
	}

	// rotate_z then rotate_x: +x -> +y -> +z.
	m = Model{RotateX: 90, RotateZ: 90}
	got = m.Matrix().MulPoint(mathutil.Vec3{1, 0, 0})
	if !mathutil.ApproxEqual(got[:], []float64{0, 0, 1}, 1e-9) {
		t.Errorf("rotate_x/rotate_z: got %v, want (0, 0, 1)", got)
	}

	if id := (Model{}).Matrix(); !id.IsIdentity() {
		t.Errorf("zero model = %v", id)
	}
}
