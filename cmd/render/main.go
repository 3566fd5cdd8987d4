package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"tinyrender/internal/batch"
	"tinyrender/internal/config"
	"tinyrender/internal/logging"
	"tinyrender/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a scene config (.json, .yaml)")
	mode := flag.String("mode", "", "Shading mode: wireframe, flat, gouraud, phong, shadow (default: shadow)")
	size := flag.Int("size", 0, "Output width and height in pixels (default: 800)")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	format := flag.String("format", "", "Image format: tga, png, webp, bmp (default: tga)")
	scale := flag.Int("scale", 0, "Render at N× size and downsample (default: 1)")
	coverage := flag.Bool("ss", false, "Scale edge pixels by 4-sample coverage")
	lookup := flag.String("lookup", "", "Shadow buffer lookup: eye or reproject (default: eye)")
	filter := flag.String("filter", "", "Texture filter: nearest or bilinear (default: nearest)")
	texDirs := flag.String("textures", "", "Comma-separated texture directories (default: next to each OBJ)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [model.obj ...]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *texDirs != "" {
		cfg.TextureDirs = strings.Split(*texDirs, ",")
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		Size:        *size,
		Mode:        *mode,
		Format:      *format,
		Scale:       *scale,
		Supersample: *coverage,
		Lookup:      *lookup,
		Filter:      *filter,
		Models:      flag.Args(),
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	var textures texture.Resolver
	if len(cfg.TextureDirs) > 0 {
		idx := texture.BuildIndex(cfg.TextureDirs...)
		textures = texture.NewCache(idx)
		fmt.Printf("Textures: %d indexed\n", idx.Len())
	}

	fmt.Printf("Software renderer → %s\n", strings.ToUpper(cfg.Format))
	fmt.Printf("Scenes: %d, Size: %dx%d (×%d)\n", len(cfg.Scenes), cfg.Size, cfg.Size, cfg.SupersampleScale)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results, err := batch.Run(cfg, textures, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			fmt.Printf("  %-20s %-9s %8d px  %s\n", r.Name, r.Mode, r.Stats.Drawn, r.Image)
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(results))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	if failed > 0 || err != nil {
		os.Exit(1)
	}
}
