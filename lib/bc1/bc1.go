// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package bc1 implements the BC1 (S3TC DXT1) block texture compression
// encoding, including the 1-bit punch-through alpha variant.
//
// Each 4×4 pixel block becomes 8 bytes: two RGB565 endpoint colors followed
// by 16 2-bit palette indices. A block whose first endpoint compares greater
// than its second decodes through a 4-color palette; the reverse ordering
// selects a 3-color palette whose fourth index means fully transparent
// black. The encoder picks the ordering per block from whether any source
// pixel's alpha falls below AlphaThreshold.
//
// BC1 is specified at
// https://learn.microsoft.com/en-us/windows/win32/direct3d10/d3d10-graphics-programming-guide-resources-block-compression
package bc1

import (
	"errors"
	"image"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/texturelab/blockpack/lib/texel"
)

var (
	ErrBadArgument = errors.New("bc1: bad argument")
)

// AlphaThreshold is the alpha value below which a source pixel encodes as
// punch-through transparent.
const AlphaThreshold = 0x80

// EndpointMode selects how a block's two endpoint colors are chosen. The two
// policies produce different (both valid) encodings.
type EndpointMode uint8

const (
	// EndpointsBoundingBox takes the per-channel min and max over the
	// block, each inset by 1/16 of its range toward the center. The inset
	// reduces banding on near-uniform blocks.
	EndpointsBoundingBox = EndpointMode(0)

	// EndpointsPrincipalAxis projects the block's pixels onto an
	// approximation of the covariance matrix's dominant eigenvector and
	// takes the extreme projections, extended by 1/16 of the projected
	// range.
	EndpointsPrincipalAxis = EndpointMode(1)
)

// EncodeOptions are optional arguments to Compress and Encode. The zero
// value is valid and means to use the default configuration.
type EncodeOptions struct {
	Endpoints EndpointMode
}

// CalcSize returns the compressed size in bytes of a width×height image:
// ceil(width/4) × ceil(height/4) × 8. It returns 0 for non-positive
// dimensions.
func CalcSize(width int, height int) int {
	return texel.EncodedLen(width, height)
}

// Compress encodes a width×height RGBA8 pixel buffer (row-major, stride
// width×4) and returns the BC1 payload. It returns nil if the dimensions are
// not positive or rgba is too short.
func Compress(rgba []byte, width int, height int) []byte {
	return CompressOptions(rgba, width, height, nil)
}

// CompressOptions is Compress with explicit options. options may be nil,
// which means to use the default configuration.
func CompressOptions(rgba []byte, width int, height int, options *EncodeOptions) []byte {
	if (width <= 0) || (height <= 0) || (len(rgba) < (4 * width * height)) {
		return nil
	}
	dst := make([]byte, CalcSize(width, height))
	if len(dst) == 0 {
		return nil
	}

	mode := EndpointsBoundingBox
	if options != nil {
		mode = options.Endpoints
	}

	// Blocks are independent and each writes only its own 8 bytes of dst,
	// so block rows can encode concurrently without coordination.
	bW := (width + 3) / 4
	bH := (height + 3) / 4

	g := &errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))
	for blockY := 0; blockY < bH; blockY++ {
		g.Go(func() error {
			buf := [64]byte{}
			row := dst[blockY*bW*texel.BytesPerBlock:]
			for blockX := 0; blockX < bW; blockX++ {
				b := texel.Extract(rgba, width, height, 4*blockX, 4*blockY, &buf)
				compressBlock(row[8*blockX:(8*blockX)+8], b, mode)
			}
			return nil
		})
	}
	_ = g.Wait() // Workers never fail.

	return dst
}

// Encode writes src compressed as BC1 to dst.
//
// options may be nil, which means to use the default configuration.
func Encode(dst io.Writer, src image.Image, options *EncodeOptions) error {
	if (dst == nil) || (src == nil) {
		return ErrBadArgument
	}
	pix, width, height := texel.RGBA8(src)
	compressed := CompressOptions(pix, width, height, options)
	if compressed == nil {
		return ErrBadArgument
	}
	_, err := dst.Write(compressed)
	return err
}
