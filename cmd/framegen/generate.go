package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/framegen/pkg/engine"
	"github.com/chazu/framegen/pkg/export"
	"github.com/chazu/framegen/pkg/params"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build connectors and rods for a mesh or frame script",
	Long: `
Builds a lattice frame from a triangle mesh (--mesh, STL or OBJ) or a frame
script (--script) and writes printable STL files plus cutlist.yaml.

framegen generate --script examples/tetrahedron.frame --out build/`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringP("mesh", "m", "", "input mesh file (.stl or .obj)")
	f.StringP("script", "s", "", "input frame script")
	f.String("mesh-units", params.UnitCentimetre, "units of the input mesh coordinates")
	f.StringP("out", "o", "frame", "output directory")
	f.StringP("kernel", "k", "sdfx", "solid kernel: sdfx or manifold")
	f.String("layout", string(export.PerCollection), "STL layout: collection or part")
	f.Bool("ascii", false, "write ASCII STL instead of binary")
	f.String("format", "stl", "mesh file format: stl or obj")
	f.Int("cells", 96, "marching cubes cells along the longest axis of each body")
	f.Bool("cut-list-only", false, "skip tessellation and write only the cut list")
	f.Duration("timeout", 0, "abort generation after this long (0 disables)")
	f.Duration("script-timeout", engine.DefaultTimeout, "limit for evaluating a frame script")
	f.String("cpuprofile", "", "write a CPU profile into this directory")

	bind(f.Lookup("mesh-units"), "meshUnits")
	bind(f.Lookup("out"), "out")
	bind(f.Lookup("kernel"), "kernel")
	bind(f.Lookup("layout"), "layout")
	bind(f.Lookup("ascii"), "ascii")
	bind(f.Lookup("format"), "format")
	bind(f.Lookup("cells"), "cells")
	bind(f.Lookup("script-timeout"), "scriptTimeout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	meshPath, _ := cmd.Flags().GetString("mesh")
	scriptPath, _ := cmd.Flags().GetString("script")
	if (meshPath == "") == (scriptPath == "") {
		return errors.New("exactly one of --mesh or --script is required")
	}
	if dir, _ := cmd.Flags().GetString("cpuprofile"); dir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	app := NewApp(viper.GetString("kernel"), viper.GetInt("cells"), log,
		engine.WithTimeout(viper.GetDuration("scriptTimeout")))

	var (
		in  Input
		err error
	)
	if meshPath != "" {
		in, err = app.LoadMesh(meshPath, viper.GetString("meshUnits"), paramSource(viper.GetViper()))
	} else {
		in, err = app.LoadScriptFile(ctx, scriptPath, paramSource(viper.GetViper()))
	}
	if err != nil {
		return err
	}

	cutListOnly, _ := cmd.Flags().GetBool("cut-list-only")
	start := time.Now()
	out, err := app.Generate(ctx, in, !cutListOnly)
	if err != nil {
		return err
	}

	dir := viper.GetString("out")
	written, err := writeOutput(dir, out, outputOptions{
		layout: export.Layout(viper.GetString("layout")),
		format: viper.GetString("format"),
		ascii:  viper.GetBool("ascii"),
	})
	if err != nil {
		return err
	}
	for _, path := range written {
		log.Info().Str("file", path).Msg("wrote")
	}

	res := out.Result
	fmt.Fprintf(cmd.OutOrStdout(), "%d connectors, %d rods, %.1f cm of rod in %s\n",
		len(res.Connectors), len(res.RodCuts), res.TotalRodLength, time.Since(start).Round(time.Millisecond))
	return nil
}

type outputOptions struct {
	layout export.Layout
	format string
	ascii  bool
}

// writeOutput writes the mesh parts (if any) and cutlist.yaml into dir.
func writeOutput(dir string, out *Output, opts outputOptions) ([]string, error) {
	var written []string
	if len(out.Parts) > 0 {
		var (
			paths []string
			err   error
		)
		switch strings.ToLower(opts.format) {
		case "", "stl":
			paths, err = export.WriteSTLFiles(dir, out.Parts, opts.layout, opts.ascii)
		case "obj":
			paths, err = export.WriteOBJFiles(dir, out.Parts, opts.layout)
		default:
			err = fmt.Errorf("unknown mesh format %q (want stl or obj)", opts.format)
		}
		if err != nil {
			return paths, err
		}
		written = append(written, paths...)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return written, err
	}
	path := filepath.Join(dir, "cutlist.yaml")
	f, err := os.Create(path)
	if err != nil {
		return written, err
	}
	if err := export.WriteCutList(f, export.NewCutList(out.Result, out.Params)); err != nil {
		f.Close()
		return written, err
	}
	if err := f.Close(); err != nil {
		return written, err
	}
	return append(written, path), nil
}
