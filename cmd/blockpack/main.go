// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// blockpack compresses images to GPU-native block texture formats: BC1
// (DXT1) in a DDS container and ETC2-RGB in a PKM container.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dblezek/tga"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"go.coder.com/cli"
	"golang.org/x/sync/errgroup"

	"github.com/texturelab/blockpack/lib/bc1"
	"github.com/texturelab/blockpack/lib/dds"
	"github.com/texturelab/blockpack/lib/etc2"
	"github.com/texturelab/blockpack/lib/pkm"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func main() {
	cli.RunRoot(&rootCmd{})
}

type rootCmd struct{}

func (*rootCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "blockpack",
		Usage: "[subcommand] [flags]",
		Desc:  "Compress images to GPU-native block texture formats.",
	}
}

func (*rootCmd) Run(fl *pflag.FlagSet) {
	fl.Usage()
}

func (*rootCmd) Subcommands() []cli.Command {
	return []cli.Command{
		&encodeCmd{},
		&infoCmd{},
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "blockpack: %v\n", err)
	os.Exit(1)
}

// ----------------

type encodeCmd struct {
	format    string
	outputDir string
	fast      bool
	pca       bool
	zstdOut   bool
}

func (*encodeCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "encode",
		Usage: "[flags] input.png [input2.jpg ...]",
		Desc: `Compress images to a block texture format.

Inputs may be BMP, GIF, JPEG, PNG, TGA, TIFF or WEBP. Each input becomes one
output file next to it (or under -output-dir): a DDS file for BC1, a PKM
file for ETC2, with a .zst suffix when -zstd is set.`,
	}
}

func (c *encodeCmd) RegisterFlags(fl *pflag.FlagSet) {
	fl.StringVar(&c.format, "format", "bc1", "output format: bc1 or etc2")
	fl.StringVar(&c.outputDir, "output-dir", "", "directory for output files (default: next to each input)")
	fl.BoolVar(&c.fast, "fast", false, "etc2: classify blocks instead of searching every mode")
	fl.BoolVar(&c.pca, "pca", false, "bc1: pick endpoints by principal axis instead of bounding box")
	fl.BoolVar(&c.zstdOut, "zstd", false, "wrap the output in a zstd frame")
}

func (c *encodeCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() == 0 {
		fl.Usage()
		os.Exit(1)
	}
	if (c.format != "bc1") && (c.format != "etc2") {
		fatal(errors.New(`-format must be "bc1" or "etc2"`))
	}

	// Inputs are independent, so they encode concurrently. Block-level
	// parallelism inside each encode shares the same GOMAXPROCS-limited
	// pool, so the limit here only caps open files.
	g := &errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, arg := range fl.Args() {
		g.Go(func() error {
			return c.encodeOne(arg)
		})
	}
	if err := g.Wait(); err != nil {
		fatal(err)
	}
}

func (c *encodeCmd) encodeOne(inPath string) error {
	src, err := decodeImage(inPath)
	if err != nil {
		return fmt.Errorf("decode %q: %w", inPath, err)
	}

	outPath := c.outputPath(inPath)
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var zw *zstd.Encoder
	if c.zstdOut {
		zw, err = zstd.NewWriter(f,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return err
		}
		w = zw
	}

	if c.format == "bc1" {
		options := &dds.EncodeOptions{}
		if c.pca {
			options.Endpoints = bc1.EndpointsPrincipalAxis
		}
		err = dds.Encode(w, src, options)
	} else {
		options := &pkm.EncodeOptions{}
		if c.fast {
			options.Speed = etc2.SpeedFastest
		}
		err = pkm.Encode(w, src, options)
	}
	if err != nil {
		return fmt.Errorf("encode %q: %w", outPath, err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return f.Close()
}

func (c *encodeCmd) outputPath(inPath string) string {
	ext := ".dds"
	if c.format == "etc2" {
		ext = ".pkm"
	}
	if c.zstdOut {
		ext += ".zst"
	}
	base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	dir := filepath.Dir(inPath)
	if c.outputDir != "" {
		dir = c.outputDir
	}
	return filepath.Join(dir, base+ext)
}

// decodeImage decodes an input image file. TGA has no magic byte prefix for
// image.Decode to sniff, so it is routed by file extension.
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".tga") {
		return tga.Decode(f)
	}
	m, _, err := image.Decode(f)
	return m, err
}

// ----------------

type infoCmd struct{}

func (*infoCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "info",
		Usage: "texture.dds [texture2.pkm ...]",
		Desc: `Print the container header of DDS and PKM texture files.

Files with a .zst extension are decompressed transparently.`,
	}
}

func (*infoCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() == 0 {
		fl.Usage()
		os.Exit(1)
	}
	for _, arg := range fl.Args() {
		if err := printInfo(arg); err != nil {
			fatal(fmt.Errorf("%q: %w", arg, err))
		}
	}
}

func printInfo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	}

	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return err
	}

	switch string(magic) {
	case dds.Magic:
		h, err := dds.DecodeHeader(br)
		if err != nil {
			return err
		}
		fmt.Printf("%s: DDS %s, %d×%d, %d payload bytes\n",
			path, h.FourCC, h.Width, h.Height, h.LinearSize)

	case pkm.Magic:
		h, err := pkm.DecodeHeader(br)
		if err != nil {
			return err
		}
		fmt.Printf("%s: PKM %s, %d×%d, %d payload bytes\n",
			path, h.Format, h.Width, h.Height,
			pkm.PayloadSize(h.Width, h.Height))

	default:
		return errors.New("unrecognized container format")
	}
	return nil
}
