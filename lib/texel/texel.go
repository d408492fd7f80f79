// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package texel provides the pixel-level plumbing shared by the BC1 and ETC2
// block compressors: 4×4 block extraction, output sizing and color math.
//
// Both compressed formats spend exactly 8 bytes per 4×4 pixel block, so they
// share one size formula and one block iterator. Images whose width or height
// is not a multiple of 4 still encode whole blocks; out-of-bound samples are
// substituted with the nearest in-bound pixel from the right and bottom
// edges.
package texel

// BytesPerBlock is the number of bytes each 4×4 block encodes to, for both
// the BC1 and ETC2-RGB formats.
const BytesPerBlock = 8

// EncodedLen returns the number of bytes a width×height RGBA8 image
// compresses to: ceil(width/4) × ceil(height/4) × 8.
//
// It returns 0 if width or height is not positive, or if the multiplication
// would overflow int.
func EncodedLen(width int, height int) int {
	if (width <= 0) || (height <= 0) {
		return 0
	}
	bW := (width + 3) / 4
	bH := (height + 3) / 4
	n := bW * bH
	if (n / bW) != bH {
		return 0
	}
	if x := n * BytesPerBlock; (x / BytesPerBlock) == n {
		return x
	}
	return 0
}

// Block is a read-only 4×4 window of RGBA8 pixels. The pixel at (x, y)
// starts at Pix[(y*Stride)+(4*x)].
//
// For blocks fully inside the source image, Pix aliases the source and
// Stride is the source's row stride. For blocks that hang over the right or
// bottom edge, Pix is a materialized 64-byte copy with Stride 16.
type Block struct {
	Pix    []byte
	Stride int
}

// At returns the 4 channel bytes of the block's pixel at (x, y), with
// 0 <= x, y < 4.
func (b Block) At(x int, y int) (r uint8, g uint8, bl uint8, a uint8) {
	i := (y * b.Stride) + (4 * x)
	return b.Pix[i+0], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// Extract produces the 4×4 block whose top-left corner is at pixel
// (blockX, blockY) of a width×height RGBA8 image held in rgba (row-major,
// stride width×4, no padding).
//
// When the block lies fully inside the image it returns a zero-copy view
// with the image's stride. Otherwise it copies up to 16 pixels into buf,
// clamping each sampled coordinate to the last valid row and column, and
// returns buf with stride 16.
func Extract(rgba []byte, width int, height int, blockX int, blockY int, buf *[64]byte) Block {
	stride := 4 * width
	if ((blockX + 4) <= width) && ((blockY + 4) <= height) {
		return Block{
			Pix:    rgba[(blockY*stride)+(4*blockX):],
			Stride: stride,
		}
	}

	mX1 := width - 1
	mY1 := height - 1
	for y := range 4 {
		sY := min(mY1, blockY+y)
		for x := range 4 {
			sX := min(mX1, blockX+x)
			src := (sY * stride) + (4 * sX)
			dst := (16 * y) + (4 * x)
			copy(buf[dst:dst+4], rgba[src:src+4])
		}
	}
	return Block{
		Pix:    buf[:],
		Stride: 16,
	}
}

// Load copies the block into a contiguous 64-byte tile (stride 16). It is a
// no-op copy for already-materialized blocks.
func (b Block) Load(dst *[64]byte) {
	if b.Stride == 16 {
		copy(dst[:], b.Pix[:64])
		return
	}
	for y := range 4 {
		copy(dst[16*y:(16*y)+16], b.Pix[y*b.Stride:(y*b.Stride)+16])
	}
}
