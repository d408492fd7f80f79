// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package etc2 implements the ETC2 (Ericsson Texture Compression 2) RGB8
// block texture compression encoding.
//
// Each 4×4 pixel block becomes a big-endian 64-bit word holding one of four
// layouts: the ETC1-style individual/differential sub-block modes, the T and
// H two-tone modes, and the planar gradient mode. The last three are
// recognized by a decoder only through an arithmetic overflow in the
// differential color fields, so their packers deliberately arrange the
// opcode bits to trigger it (see deltaOverflows).
//
// ETC2 is specified at
// https://registry.khronos.org/DataFormat/specs/1.3/dataformat.1.3.html#ETC2
package etc2

import (
	"errors"
	"image"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/texturelab/blockpack/lib/texel"
)

var (
	ErrBadArgument = errors.New("etc2: bad argument")
)

// Speed selects the per-block mode search strategy.
type Speed uint8

const (
	// SpeedDefault tries every coding mode and keeps the one with the
	// lowest weighted squared error. It is the reference behavior.
	SpeedDefault = Speed(0)

	// SpeedFastest classifies each block with a deterministic heuristic
	// and encodes only the strategies the classifier picks. The heuristic
	// thresholds are tuning values, not part of the format contract.
	SpeedFastest = Speed(1)
)

// EncodeOptions are optional arguments to Compress and Encode. The zero
// value is valid and means to use the default configuration.
type EncodeOptions struct {
	Speed Speed
}

// CalcSize returns the compressed size in bytes of a width×height image:
// ceil(width/4) × ceil(height/4) × 8. It returns 0 for non-positive
// dimensions.
func CalcSize(width int, height int) int {
	return texel.EncodedLen(width, height)
}

// Compress encodes a width×height RGBA8 pixel buffer (row-major, stride
// width×4) and returns the ETC2-RGB payload. Alpha bytes are read but
// ignored. It returns nil if the dimensions are not positive or rgba is too
// short.
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

	speed := SpeedDefault
	if options != nil {
		speed = options.Speed
	}

	// Every block owns a disjoint 8-byte slice of dst and encoding is a
	// pure function of the block's 16 pixels, so block rows encode
	// concurrently with no shared state beyond a per-worker encoder.
	bW := (width + 3) / 4
	bH := (height + 3) / 4

	g := &errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))
	for blockY := 0; blockY < bH; blockY++ {
		g.Go(func() error {
			e := encoder{}
			row := dst[blockY*bW*texel.BytesPerBlock:]
			for blockX := 0; blockX < bW; blockX++ {
				b := texel.Extract(rgba, width, height, 4*blockX, 4*blockY, &e.scratch)
				b.Load(&e.pixels)
				writeU64BE(row[8*blockX:], e.encode(speed))
			}
			return nil
		})
	}
	_ = g.Wait() // Workers never fail.

	return dst
}

// Encode writes src compressed as ETC2-RGB to dst.
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

func writeU64BE(buf []byte, x uint64) {
	buf = buf[:8]
	buf[0] = uint8(x >> 56)
	buf[1] = uint8(x >> 48)
	buf[2] = uint8(x >> 40)
	buf[3] = uint8(x >> 32)
	buf[4] = uint8(x >> 24)
	buf[5] = uint8(x >> 16)
	buf[6] = uint8(x >> 8)
	buf[7] = uint8(x >> 0)
}
