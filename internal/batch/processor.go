// Package batch renders every configured scene in order and records the
// outputs in a manifest.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"tinyrender/internal/config"
	"tinyrender/internal/depthdump"
	"tinyrender/internal/imageio"
	"tinyrender/internal/logging"
	"tinyrender/internal/mesh"
	"tinyrender/internal/pipeline"
	"tinyrender/internal/postprocess"
	"tinyrender/internal/raster"
	"tinyrender/internal/texture"
)

// ManifestName is the file written next to the images.
const ManifestName = "manifest.json"

// Result holds the outcome of rendering one scene. Paths are relative to the
// output directory.
type Result struct {
	Name       string
	Mode       string
	Models     []string
	Image      string
	Light      string
	ShadowDump string
	Stats      raster.Stats
	Elapsed    time.Duration
	Success    bool
	Error      string
}

// Run renders cfg.Scenes one after another and writes the manifest to
// cfg.OutputDir. cfg must be resolved and valid. Progress goes to progress;
// nil hides the bar. A failed scene is recorded in its Result and does not
// stop the run.
func Run(cfg config.Config, textures texture.Resolver, progress io.Writer) ([]Result, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(cfg.Scenes),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	r := &runner{cfg: cfg, textures: textures, models: make(map[string]*mesh.Model)}
	results := make([]Result, len(cfg.Scenes))
	for i, sc := range cfg.Scenes {
		bar.Describe(sc.Name)
		results[i] = r.processScene(sc)
		bar.Add(1)
	}
	bar.Finish()

	if err := WriteManifest(filepath.Join(cfg.OutputDir, ManifestName), results); err != nil {
		return results, err
	}
	return results, nil
}

type runner struct {
	cfg      config.Config
	textures texture.Resolver
	models   map[string]*mesh.Model // by path, shared across scenes
}

func (r *runner) model(path string) (*mesh.Model, error) {
	if m, ok := r.models[path]; ok {
		return m, nil
	}
	m, err := mesh.Load(path, r.textures)
	if err != nil {
		return nil, err
	}
	m.Filter, err = texture.ParseFilter(r.cfg.TextureFilter)
	if err != nil {
		return nil, err
	}
	r.models[path] = m
	return m, nil
}

// scene builds the pipeline scene for sc, loading its models.
func (r *runner) scene(sc config.Scene) (pipeline.Scene, error) {
	cfg := r.cfg
	mode, err := pipeline.ParseMode(sc.Mode)
	if err != nil {
		return pipeline.Scene{}, err
	}
	lookup, err := pipeline.ParseShadowLookup(cfg.ShadowLookup)
	if err != nil {
		return pipeline.Scene{}, err
	}

	size := cfg.Size * max(cfg.SupersampleScale, 1)
	ps := pipeline.Scene{
		Width: size, Height: size,
		Eye: sc.Eye, Center: sc.Center, Up: sc.Up, Light: sc.Light,
		Orthographic: cfg.Orthographic,
		Mode:         mode,
		Supersample:  cfg.Supersample,
		ShadowLookup: lookup,
		ShadowBias:   cfg.ShadowBias,
	}
	for _, ref := range sc.Models {
		m, err := r.model(ref.Path)
		if err != nil {
			return pipeline.Scene{}, err
		}
		ps.Objects = append(ps.Objects, pipeline.Object{Mesh: m, Model: ref.Matrix()})
	}
	return ps, nil
}

func (r *runner) processScene(sc config.Scene) Result {
	start := time.Now()
	res := Result{Name: sc.Name, Mode: sc.Mode}
	for _, m := range sc.Models {
		res.Models = append(res.Models, m.Path)
	}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		logging.Logger().Error("scene failed", "scene", sc.Name, "err", err)
		return res
	}

	ps, err := r.scene(sc)
	if err != nil {
		return fail(err)
	}
	out, err := pipeline.Render(ps)
	if err != nil {
		return fail(err)
	}
	res.Stats = out.Stats

	res.Image = fmt.Sprintf("%s.%s", sc.Name, r.cfg.Format)
	if err := r.save(res.Image, out.Image); err != nil {
		return fail(err)
	}
	if r.cfg.WriteLight && out.Light != nil {
		res.Light = fmt.Sprintf("%s_light.%s", sc.Name, r.cfg.Format)
		if err := r.save(res.Light, out.Light); err != nil {
			return fail(err)
		}
	}
	if r.cfg.DumpDepth != "" && out.Shadow != nil {
		res.ShadowDump = fmt.Sprintf("%s_shadow.%s", sc.Name, r.cfg.DumpDepth)
		g := depthdump.Grid{Width: out.Shadow.Width(), Height: out.Shadow.Height(), Values: out.Shadow.Values()}
		if err := depthdump.WriteFile(filepath.Join(r.cfg.OutputDir, res.ShadowDump), g); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	logging.Logger().Info("scene rendered", "scene", sc.Name, "mode", sc.Mode,
		"pixels", res.Stats.Drawn, "elapsed", res.Elapsed)
	return res
}

// save downsamples fb to the configured size and writes it under OutputDir.
func (r *runner) save(name string, fb *raster.FrameBuffer) error {
	img := fb.ToNRGBA()
	if r.cfg.SupersampleScale > 1 {
		img = postprocess.Downsample(img, r.cfg.Size, r.cfg.Size)
	}
	return imageio.Save(filepath.Join(r.cfg.OutputDir, name), img)
}
