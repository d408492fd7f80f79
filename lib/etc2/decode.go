// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import (
	"github.com/texturelab/blockpack/lib/texel"
)

// decodeBlock expands one encoded block into a 64-byte RGBA tile (stride 16,
// alpha forced opaque). The exhaustive mode search uses it to score
// candidate encodings against the source pixels, and the tests use it as the
// in-package reference decoder.
func decodeBlock(dst *[64]byte, code uint64) {
	if (code>>33)&1 == 0 {
		base0 := [3]uint8{
			texel.Expand4(uint8((code >> 60) & 15)),
			texel.Expand4(uint8((code >> 52) & 15)),
			texel.Expand4(uint8((code >> 44) & 15)),
		}
		base1 := [3]uint8{
			texel.Expand4(uint8((code >> 56) & 15)),
			texel.Expand4(uint8((code >> 48) & 15)),
			texel.Expand4(uint8((code >> 40) & 15)),
		}
		decodeSubBlocks(dst, code, base0, base1)
		return
	}

	// Differential layout, unless a color field overflows: the R, G and B
	// fields decoding outside [0, 31] select the T, H and planar layouts.
	r := uint32((code >> 59) & 31)
	g := uint32((code >> 51) & 31)
	b := uint32((code >> 43) & 31)
	dr := uint32((code >> 56) & 7)
	dg := uint32((code >> 48) & 7)
	db := uint32((code >> 40) & 7)

	switch {
	case deltaOverflows(r, dr):
		decodeT(dst, code)
	case deltaOverflows(g, dg):
		decodeH(dst, code)
	case deltaOverflows(b, db):
		decodePlanar(dst, code)
	default:
		base0 := [3]uint8{
			texel.Expand5(uint8(r)),
			texel.Expand5(uint8(g)),
			texel.Expand5(uint8(b)),
		}
		base1 := [3]uint8{
			texel.Expand5(uint8(applyDelta(r, dr))),
			texel.Expand5(uint8(applyDelta(g, dg))),
			texel.Expand5(uint8(applyDelta(b, db))),
		}
		decodeSubBlocks(dst, code, base0, base1)
	}
}

func applyDelta(base5 uint32, delta3 uint32) uint32 {
	d := int32(delta3)
	if d >= 4 {
		d -= 8
	}
	return uint32(int32(base5) + d)
}

func decodeSubBlocks(dst *[64]byte, code uint64, base0, base1 [3]uint8) {
	table0 := (code >> 37) & 7
	table1 := (code >> 34) & 7
	flip := (code >> 32) & 1

	for x := range 4 {
		for y := range 4 {
			base, table := base0, table0
			if half := [2]int{x >> 1, y >> 1}[flip]; half == 1 {
				base, table = base1, table1
			}
			mod := int32(intensityModifiers[table][pixelIndex(code, x, y)])
			putPixel(dst, x, y,
				clamp8(int32(base[0])+mod),
				clamp8(int32(base[1])+mod),
				clamp8(int32(base[2])+mod))
		}
	}
}

func decodeT(dst *[64]byte, code uint64) {
	c0 := [3]uint8{
		texel.Expand4(uint8(((code >> 57) & 0x0C) | ((code >> 56) & 0x03))),
		texel.Expand4(uint8((code >> 52) & 15)),
		texel.Expand4(uint8((code >> 48) & 15)),
	}
	c1 := [3]uint8{
		texel.Expand4(uint8((code >> 44) & 15)),
		texel.Expand4(uint8((code >> 40) & 15)),
		texel.Expand4(uint8((code >> 36) & 15)),
	}
	which := (((code >> 34) & 3) << 1) | ((code >> 32) & 1)
	d := int32(distanceTable[which])

	paints := [4][3]uint8{}
	paints[0] = c0
	paints[2] = c1
	for c := range 3 {
		paints[1][c] = clamp8(int32(c1[c]) + d)
		paints[3][c] = clamp8(int32(c1[c]) - d)
	}
	paintPixels(dst, code, &paints)
}

func decodeH(dst *[64]byte, code uint64) {
	c0 := [3]uint8{
		texel.Expand4(uint8((code >> 59) & 15)),
		texel.Expand4(uint8(((code >> 56) & 0x0E) | ((code >> 52) & 0x01))),
		texel.Expand4(uint8(((code >> 48) & 0x08) | ((code >> 47) & 0x07))),
	}
	c1 := [3]uint8{
		texel.Expand4(uint8((code >> 43) & 15)),
		texel.Expand4(uint8((code >> 39) & 15)),
		texel.Expand4(uint8((code >> 35) & 15)),
	}

	// The distance index's low bit is recovered from the base color order.
	which := (((code >> 34) & 1) << 2) | (((code >> 32) & 1) << 1)
	c0packed := (uint32((code>>59)&15) << 8) |
		(uint32(((code>>56)&0x0E)|((code>>52)&0x01)) << 4) |
		uint32(((code>>48)&0x08)|((code>>47)&0x07))
	c1packed := (uint32((code>>43)&15) << 8) |
		(uint32((code>>39)&15) << 4) |
		uint32((code>>35)&15)
	if c0packed >= c1packed {
		which |= 1
	}
	d := int32(distanceTable[which])

	paints := [4][3]uint8{}
	for c := range 3 {
		paints[0][c] = clamp8(int32(c0[c]) + d)
		paints[1][c] = clamp8(int32(c0[c]) - d)
		paints[2][c] = clamp8(int32(c1[c]) + d)
		paints[3][c] = clamp8(int32(c1[c]) - d)
	}
	paintPixels(dst, code, &paints)
}

func decodePlanar(dst *[64]byte, code uint64) {
	o := [3]int32{
		int32(texel.Expand6(uint8((code >> 57) & 0x3F))),
		int32(texel.Expand7(uint8(((code >> 50) & 0x40) | ((code >> 49) & 0x3F)))),
		int32(texel.Expand6(uint8(((code >> 43) & 0x20) | ((code >> 40) & 0x18) | ((code >> 39) & 0x07)))),
	}
	h := [3]int32{
		int32(texel.Expand6(uint8(((code >> 33) & 0x3E) | ((code >> 32) & 0x01)))),
		int32(texel.Expand7(uint8((code >> 25) & 0x7F))),
		int32(texel.Expand6(uint8((code >> 19) & 0x3F))),
	}
	v := [3]int32{
		int32(texel.Expand6(uint8((code >> 13) & 0x3F))),
		int32(texel.Expand7(uint8((code >> 6) & 0x7F))),
		int32(texel.Expand6(uint8((code >> 0) & 0x3F))),
	}

	for y := range 4 {
		for x := range 4 {
			plane := func(c int) uint8 {
				return clamp8(((int32(x) * (h[c] - o[c])) +
					(int32(y) * (v[c] - o[c])) +
					(4 * o[c]) + 2) >> 2)
			}
			putPixel(dst, x, y, plane(0), plane(1), plane(2))
		}
	}
}

func paintPixels(dst *[64]byte, code uint64, paints *[4][3]uint8) {
	for x := range 4 {
		for y := range 4 {
			p := paints[pixelIndex(code, x, y)]
			putPixel(dst, x, y, p[0], p[1], p[2])
		}
	}
}

// pixelIndex reads a pixel's 2-bit index from the two 16-bit planes, which
// store pixels column-major: bit position x*4 + y.
func pixelIndex(code uint64, x int, y int) uint32 {
	i := (4 * x) + y
	return uint32(((code >> i) & 1) | ((code >> (15 + i)) & 2))
}

func putPixel(dst *[64]byte, x int, y int, r, g, b uint8) {
	j := (16 * y) + (4 * x)
	dst[j+0] = r
	dst[j+1] = g
	dst[j+2] = b
	dst[j+3] = 0xFF
}
