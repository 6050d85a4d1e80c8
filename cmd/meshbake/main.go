// meshbake converts Wavefront OBJ/MTL files into GPU-ready indexed meshes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/bake"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/manifest"
	"github.com/Faultbox/meshbake/internal/texture"
	"github.com/Faultbox/meshbake/pkg/textenc"
	"github.com/Faultbox/meshbake/pkg/wavefront"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	inputs := config.Inputs()
	if len(inputs) == 0 && config.WriteConfigPath() == "" {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Config written to %s\n", path)
		if len(inputs) == 0 {
			return
		}
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg, inputs, os.Stdout); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `meshbake - Wavefront OBJ/MTL to indexed mesh converter

Usage:
  meshbake [options] <file.obj> [file.obj...]

Options:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Examples:
  meshbake scene.obj
  meshbake -manifest out/scene.yaml level1.obj level2.obj
  meshbake -encoding euc-kr -bake-dir out/textures prontera.obj
  meshbake -encoding euc-kr -strict-names -write-config meshbake.yaml`)
}

// assemblerOptions maps the config onto bake options.
func assemblerOptions(cfg *config.Config) (bake.Options, error) {
	opts := bake.DefaultOptions()
	opts.Names = wavefront.NamePolicy{
		Limit:  cfg.Convert.NameLimit,
		Strict: cfg.Convert.StrictNames,
	}

	policy, err := bake.ParseDegenerateUVPolicy(cfg.Convert.DegenerateUV)
	if err != nil {
		return opts, err
	}
	opts.DegenerateUV = policy

	dec, err := textenc.Lookup(cfg.Convert.Encoding)
	if err != nil {
		return opts, err
	}
	opts.Decoder = dec
	opts.Logger = logger.Log
	return opts, nil
}

// run converts inputs in order into one scene. Nothing is written unless
// every input converts.
func run(cfg *config.Config, inputs []string, out io.Writer) error {
	opts, err := assemblerOptions(cfg)
	if err != nil {
		return err
	}

	scene := wavefront.NewScene()
	asm := bake.NewAssembler(scene, opts)
	for _, path := range inputs {
		if err := asm.Convert(path); err != nil {
			return err
		}
	}

	if cfg.Textures.Probe || cfg.Textures.BakeDir != "" {
		texture.ProbeScene(scene, logger.Named("texture"))
	}

	baked := 0
	if cfg.Textures.BakeDir != "" {
		baked, err = texture.BakeScene(scene, cfg.Textures.BakeDir, logger.Named("texture"))
		if err != nil {
			return fmt.Errorf("baking textures: %w", err)
		}
	}

	if cfg.Output.Manifest != "" {
		m := manifest.Build(scene)
		m.Encoding = opts.Decoder.Name()
		if err := manifest.Write(cfg.Output.Manifest, m); err != nil {
			return err
		}
		logger.Info("manifest written", zap.String("path", cfg.Output.Manifest))
	}

	printSummary(out, scene, baked)
	return nil
}

func printSummary(out io.Writer, scene *wavefront.Scene, baked int) {
	var vertices, triangles int
	for _, m := range scene.Meshes {
		vertices += len(m.Vertices)
		triangles += len(m.Indices) / 3
	}

	fmt.Fprintf(out, "Files:      %d\n", len(scene.Files))
	fmt.Fprintf(out, "Meshes:     %d\n", len(scene.Meshes))
	fmt.Fprintf(out, "Materials:  %d\n", len(scene.Materials))
	fmt.Fprintf(out, "Models:     %d\n", len(scene.Models))
	fmt.Fprintf(out, "Vertices:   %d\n", vertices)
	fmt.Fprintf(out, "Triangles:  %d\n", triangles)
	if baked > 0 {
		fmt.Fprintf(out, "Textures:   %d baked\n", baked)
	}
}
