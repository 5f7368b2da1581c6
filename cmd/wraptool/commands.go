package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/wrapview/internal/assets"
	"github.com/Faultbox/wrapview/internal/catalog"
	"github.com/Faultbox/wrapview/internal/config"
	"github.com/Faultbox/wrapview/internal/loader"
	"github.com/Faultbox/wrapview/internal/logger"
	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/internal/texture"
)

func loadParts(ctx context.Context, path string) ([]*mesh.Part, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	l := loader.NewFiles(assets.NewManager(), logger.Named("loader"))
	return l.LoadMesh(ctx, abs)
}

func printReports(w io.Writer, parts []*mesh.Part, epsilon float32) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tVERTICES\tTRIANGLES\tUV\tBOUNDS")
	for _, p := range parts {
		r := mesh.Diagnose(p, epsilon)
		size := r.Bounds.Size()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.3f x %.3f x %.3f\n",
			p.Name, p.VertexCount(), p.TriangleCount(), r, size.X, size.Y, size.Z)
	}
	tw.Flush()
}

func newInspectCmd() *cobra.Command {
	var epsilon float32
	cmd := &cobra.Command{
		Use:   "inspect <mesh>",
		Short: "Show parts and UV diagnostics of a mesh file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := loadParts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			total := mesh.BoundsOf(parts).Size()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d parts, size %.3f x %.3f x %.3f\n\n",
				args[0], len(parts), total.X, total.Y, total.Z)
			printReports(cmd.OutOrStdout(), parts, epsilon)
			return nil
		},
	}
	cmd.Flags().Float32Var(&epsilon, "epsilon", mesh.DefaultUVEpsilon, "Smallest usable U or V range")
	return cmd
}

func newProjectCmd() *cobra.Command {
	pc := config.ProductConfig{Mode: "cylindrical"}
	var centerXZ bool
	cmd := &cobra.Command{
		Use:   "project <mesh>",
		Short: "Project UVs onto a mesh and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := pc.Projector()
			if err != nil {
				return err
			}
			parts, err := loadParts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if centerXZ {
				mesh.CenterXZ(parts)
			}
			for _, p := range parts {
				mesh.Project(p, proj, 1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s projection\n\n", proj.Mode())
			printReports(cmd.OutOrStdout(), parts, mesh.DefaultUVEpsilon)
			return nil
		},
	}
	cmd.Flags().StringVar(&pc.Mode, "mode", pc.Mode, "Projection mode (cylindrical or planar-front)")
	cmd.Flags().Float32Var(&pc.PadTop, "pad-top", 0, "Cylindrical top padding")
	cmd.Flags().Float32Var(&pc.PadBottom, "pad-bottom", 0, "Cylindrical bottom padding")
	cmd.Flags().Float32Var(&pc.Margin, "margin", 0, "Planar margin")
	cmd.Flags().BoolVar(&centerXZ, "center", true, "Center the mesh on the vertical axis first")
	return cmd
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newPatternCmd() *cobra.Command {
	var (
		size int
		out  string
	)
	cmd := &cobra.Command{
		Use:       "pattern <stripes|checker|dots>",
		Short:     "Render a pattern texture to PNG",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"stripes", "checker", "dots"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := texture.ParsePatternKind(args[0])
			if err != nil {
				return err
			}
			img, err := texture.DrawPattern(kind, size)
			if err != nil {
				return err
			}
			if out == "" {
				out = string(kind) + ".png"
			}
			if err := writePNG(out, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", out, size, size)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", texture.DefaultOptions().PatternSize, "Texture size in pixels")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output PNG path")
	return cmd
}

func newGridCmd() *cobra.Command {
	opts := texture.DefaultOptions()
	var out string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Render the labeled alignment grid to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.GridCells < 1 || opts.GridSize < opts.GridCells {
				return fmt.Errorf("invalid grid: %d cells over %d pixels", opts.GridCells, opts.GridSize)
			}
			if err := writePNG(out, texture.DrawAlignmentGrid(opts.GridSize, opts.GridCells)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %d cells)\n", out, opts.GridSize, opts.GridSize, opts.GridCells)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.GridSize, "size", opts.GridSize, "Texture size in pixels")
	cmd.Flags().IntVar(&opts.GridCells, "cells", opts.GridCells, "Cells per side")
	cmd.Flags().StringVarP(&out, "output", "o", "grid.png", "Output PNG path")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	exts := config.Default().Catalog.Extensions
	cmd := &cobra.Command{
		Use:   "catalog <dir>",
		Short: "List the texture images a viewer would offer from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Scan(args[0], exts)
			if err != nil && len(entries) == 0 {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Size, e.ModTime.Format("2006-01-02 15:04"))
			}
			tw.Flush()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&exts, "ext", exts, "Allowed extensions")
	return cmd
}
