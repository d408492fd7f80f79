// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package texel

import (
	"image"
	"image/color"
	"math"
)

// Expand4 widens a 4-bit channel value to 8 bits by bit replication.
func Expand4(v uint8) uint8 { return (v << 4) | v }

// Expand5 widens a 5-bit channel value to 8 bits by bit replication.
func Expand5(v uint8) uint8 { return (v << 3) | (v >> 2) }

// Expand6 widens a 6-bit channel value to 8 bits by bit replication.
func Expand6(v uint8) uint8 { return (v << 2) | (v >> 4) }

// Expand7 widens a 7-bit channel value to 8 bits by bit replication.
func Expand7(v uint8) uint8 { return (v << 1) | (v >> 6) }

// Quant4 narrows an 8-bit channel value to 4 bits, rounding to the nearest
// representable value under Expand4.
func Quant4(v uint8) uint8 { return uint8(((uint32(v) * 15) + 127) / 255) }

// Quant5 narrows an 8-bit channel value to 5 bits, rounding to the nearest
// representable value under Expand5.
func Quant5(v uint8) uint8 { return uint8(((uint32(v) * 31) + 127) / 255) }

// Quant6 narrows an 8-bit channel value to 6 bits, rounding to the nearest
// representable value under Expand6.
func Quant6(v uint8) uint8 { return uint8(((uint32(v) * 63) + 127) / 255) }

// Quant7 narrows an 8-bit channel value to 7 bits, rounding to the nearest
// representable value under Expand7.
func Quant7(v uint8) uint8 { return uint8(((uint32(v) * 127) + 127) / 255) }

// Pack565 packs an RGB triple, already quantized to 5-6-5 bits, into a
// uint16.
func Pack565(r5 uint8, g6 uint8, b5 uint8) uint16 {
	return (uint16(r5) << 11) | (uint16(g6) << 5) | uint16(b5)
}

// Unpack565 is the inverse of Pack565 followed by bit-replicating expansion
// to 8 bits per channel.
func Unpack565(c uint16) (r uint8, g uint8, b uint8) {
	return Expand5(uint8(c >> 11)), Expand6(uint8((c >> 5) & 0x3F)), Expand5(uint8(c & 0x1F))
}

// Luminance weights, per ITU-R BT.601 scaled by 1000. The same constants
// weight the per-channel terms of WeightedSqDist.
const (
	WeightR = 299
	WeightG = 587
	WeightB = 114
)

// WeightedSqDist returns the perceptually weighted squared distance between
// two RGB colors.
func WeightedSqDist(r0, g0, b0, r1, g1, b1 uint8) int32 {
	dR := int32(r0) - int32(r1)
	dG := int32(g0) - int32(g1)
	dB := int32(b0) - int32(b1)
	return (WeightR * dR * dR) + (WeightG * dG * dG) + (WeightB * dB * dB)
}

// Luminance returns the BT.601-weighted luminance of an RGB color, scaled by
// 1000.
func Luminance(r, g, b uint8) int32 {
	return (WeightR * int32(r)) + (WeightG * int32(g)) + (WeightB * int32(b))
}

// Float16bits returns the IEEE 754 binary16 representation of f, rounding to
// nearest-even. Values beyond the half-precision range become infinities.
//
// Neither block format stores half-precision floats; this lives here for the
// floating-point texture paths that sit next to the block compressors.
func Float16bits(f float32) uint16 {
	u := math.Float32bits(f)
	sign := uint16(u>>16) & 0x8000
	exp := int32((u >> 23) & 0xFF)
	mant := u & 0x7F_FFFF

	switch {
	case exp == 0xFF: // Inf or NaN.
		if mant != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00

	case exp > 142: // Overflows to Inf.
		return sign | 0x7C00

	case exp >= 113: // Normal.
		half := (uint32(exp-112) << 10) | (mant >> 13)
		// Round to nearest, ties to even.
		round := mant & 0x1FFF
		if (round > 0x1000) || ((round == 0x1000) && (half&1 == 1)) {
			half++
		}
		return sign | uint16(half)

	case exp >= 103: // Subnormal.
		mant |= 0x80_0000
		shift := uint32(126 - exp)
		half := mant >> shift
		rem := mant & ((1 << shift) - 1)
		tie := uint32(1) << (shift - 1)
		if (rem > tie) || ((rem == tie) && (half&1 == 1)) {
			half++
		}
		return sign | uint16(half)
	}

	return sign // Underflows to zero.
}

// RGBA8 converts src to a tightly packed RGBA8 pixel buffer (row-major,
// stride width×4) plus its dimensions. *image.RGBA images that are already
// tight are returned without copying.
func RGBA8(src image.Image) (pix []byte, width int, height int) {
	b := src.Bounds()
	width, height = b.Dx(), b.Dy()
	if (width <= 0) || (height <= 0) {
		return nil, width, height
	}

	if m, ok := src.(*image.RGBA); ok && (m.Stride == (4 * width)) {
		i := m.PixOffset(b.Min.X, b.Min.Y)
		return m.Pix[i : i+(4*width*height)], width, height
	}

	pix = make([]byte, 4*width*height)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			pix[i+0] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
			i += 4
		}
	}
	return pix, width, height
}
