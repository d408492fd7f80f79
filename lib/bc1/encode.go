// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package bc1

import (
	"math"

	"github.com/texturelab/blockpack/lib/texel"
)

// Axis projection weights. Red and blue carry less perceptual weight than
// green, and the 2:4:1 ratio keeps the dot products in cheap integer range.
const (
	axisWeightR = 2
	axisWeightG = 4
	axisWeightB = 1
)

// compressBlock encodes one 4×4 block into dst[0:8].
//
// Layout: endpoint 0 as little-endian RGB565, endpoint 1 likewise, then 16
// 2-bit indices in raster order, LSB-first within each byte.
func compressBlock(dst []byte, b texel.Block, mode EndpointMode) {
	pixels := [16][4]uint8{}
	transparent := uint16(0)
	for y := range 4 {
		for x := range 4 {
			i := (4 * y) + x
			r, g, bl, a := b.At(x, y)
			pixels[i] = [4]uint8{r, g, bl, a}
			if a < AlphaThreshold {
				transparent |= 1 << i
			}
		}
	}

	if transparent == 0xFFFF {
		// Reserved all-transparent block: zero color fields, every index 3.
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		dst[4], dst[5], dst[6], dst[7] = 0xFF, 0xFF, 0xFF, 0xFF
		return
	}

	lo, hi := [3]int32{}, [3]int32{}
	if mode == EndpointsPrincipalAxis {
		lo, hi = principalAxisEndpoints(&pixels, transparent)
	} else {
		lo, hi = boundingBoxEndpoints(&pixels, transparent)
	}

	c0 := texel.Pack565(
		texel.Quant5(uint8(hi[0])),
		texel.Quant6(uint8(hi[1])),
		texel.Quant5(uint8(hi[2])))
	c1 := texel.Pack565(
		texel.Quant5(uint8(lo[0])),
		texel.Quant6(uint8(lo[1])),
		texel.Quant5(uint8(lo[2])))

	alphaMode := transparent != 0
	nudged := false
	if alphaMode {
		// 3-color + punch-through decode mode wants c0 <= c1.
		if c0 > c1 {
			c0, c1 = c1, c0
		}
	} else {
		// 4-color opaque mode wants c0 > c1. Equal endpoints are broken by
		// nudging one endpoint a single quantization step.
		if c0 < c1 {
			c0, c1 = c1, c0
		} else if c0 == c1 {
			nudged = true
			if c1 > 0 {
				c1--
			} else {
				c0++
			}
		}
	}

	indexes := uint32(0)
	if !nudged {
		indexes = assignIndexes(&pixels, transparent, c0, c1, alphaMode)
	}
	// A nudged block had one palette color before the nudge, so every pixel
	// keeps index 0 (the un-nudged endpoint).

	dst[0] = uint8(c0 >> 0)
	dst[1] = uint8(c0 >> 8)
	dst[2] = uint8(c1 >> 0)
	dst[3] = uint8(c1 >> 8)
	dst[4] = uint8(indexes >> 0)
	dst[5] = uint8(indexes >> 8)
	dst[6] = uint8(indexes >> 16)
	dst[7] = uint8(indexes >> 24)
}

// assignIndexes classifies each pixel against the candidate palette by
// projecting it onto the endpoint-to-endpoint axis and comparing against
// fixed fractional thresholds. The projection is a locally consistent
// approximation of the nearest-candidate search, not a global optimum.
func assignIndexes(pixels *[16][4]uint8, transparent uint16, c0 uint16, c1 uint16, alphaMode bool) uint32 {
	r0, g0, b0 := texel.Unpack565(c0)
	r1, g1, b1 := texel.Unpack565(c1)

	axisR := int32(r1) - int32(r0)
	axisG := int32(g1) - int32(g0)
	axisB := int32(b1) - int32(b0)
	span := (axisWeightR * axisR * axisR) +
		(axisWeightG * axisG * axisG) +
		(axisWeightB * axisB * axisB)

	indexes := uint32(0)
	for i := range 16 {
		index := uint32(0)

		if alphaMode && ((transparent>>i)&1 != 0) {
			// Punch-through pixels always take the transparent slot.
			index = 3

		} else if span == 0 {
			// Degenerate axis: both endpoints decode identically, any
			// opaque index is as good as index 0.
			index = 0

		} else {
			proj := (axisWeightR * axisR * (int32(pixels[i][0]) - int32(r0))) +
				(axisWeightG * axisG * (int32(pixels[i][1]) - int32(g0))) +
				(axisWeightB * axisB * (int32(pixels[i][2]) - int32(b0)))

			if alphaMode {
				// Candidates at t = 0, 1/2, 1 along the axis; thresholds
				// at 1/4 and 3/4.
				switch {
				case (4 * proj) < span:
					index = 0
				case (4 * proj) < (3 * span):
					index = 2
				default:
					index = 1
				}
			} else {
				// Candidates at t = 0, 1/3, 2/3, 1; thresholds at 1/6,
				// 1/2 and 5/6.
				switch {
				case (6 * proj) < span:
					index = 0
				case (2 * proj) < span:
					index = 2
				case (6 * proj) < (5 * span):
					index = 3
				default:
					index = 1
				}
			}
		}

		indexes |= index << (2 * i)
	}
	return indexes
}

// boundingBoxEndpoints returns the block's per-channel min and max over the
// non-transparent pixels, each inset by 1/16 of the channel's range.
func boundingBoxEndpoints(pixels *[16][4]uint8, transparent uint16) (lo [3]int32, hi [3]int32) {
	lo = [3]int32{255, 255, 255}
	for i := range 16 {
		if (transparent>>i)&1 != 0 {
			continue
		}
		for c := range 3 {
			v := int32(pixels[i][c])
			lo[c] = min(lo[c], v)
			hi[c] = max(hi[c], v)
		}
	}
	for c := range 3 {
		inset := (hi[c] - lo[c]) / 16
		lo[c] += inset
		hi[c] -= inset
	}
	return lo, hi
}

// principalAxisEndpoints fits the block's dominant color axis by power
// iteration on the 3×3 channel covariance matrix and takes the extreme
// projections along it, extended by 1/16 of the projected range.
func principalAxisEndpoints(pixels *[16][4]uint8, transparent uint16) (lo [3]int32, hi [3]int32) {
	mean := [3]float64{}
	n := 0
	for i := range 16 {
		if (transparent>>i)&1 != 0 {
			continue
		}
		mean[0] += float64(pixels[i][0])
		mean[1] += float64(pixels[i][1])
		mean[2] += float64(pixels[i][2])
		n++
	}
	mean[0] /= float64(n)
	mean[1] /= float64(n)
	mean[2] /= float64(n)

	cov := [3][3]float64{}
	for i := range 16 {
		if (transparent>>i)&1 != 0 {
			continue
		}
		d := [3]float64{
			float64(pixels[i][0]) - mean[0],
			float64(pixels[i][1]) - mean[1],
			float64(pixels[i][2]) - mean[2],
		}
		for a := range 3 {
			for b := range 3 {
				cov[a][b] += d[a] * d[b]
			}
		}
	}

	// Four power-iteration steps from a luminance-weighted seed approximate
	// the dominant eigenvector well enough for endpoint selection.
	axis := [3]float64{0.299, 0.587, 0.114}
	for range 4 {
		next := [3]float64{}
		for a := range 3 {
			next[a] = (cov[a][0] * axis[0]) + (cov[a][1] * axis[1]) + (cov[a][2] * axis[2])
		}
		length := math.Sqrt((next[0] * next[0]) + (next[1] * next[1]) + (next[2] * next[2]))
		if length == 0 {
			// Degenerate covariance (uniform block): keep the seed; every
			// projection collapses to the mean anyway.
			break
		}
		axis = [3]float64{next[0] / length, next[1] / length, next[2] / length}
	}

	minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
	for i := range 16 {
		if (transparent>>i)&1 != 0 {
			continue
		}
		proj := (float64(pixels[i][0]) * axis[0]) +
			(float64(pixels[i][1]) * axis[1]) +
			(float64(pixels[i][2]) * axis[2])
		minProj = min(minProj, proj)
		maxProj = max(maxProj, proj)
	}
	extend := (maxProj - minProj) / 16
	minProj -= extend
	maxProj += extend

	meanProj := (mean[0] * axis[0]) + (mean[1] * axis[1]) + (mean[2] * axis[2])
	for c := range 3 {
		lo[c] = int32(max(0, min(255, mean[c]+((minProj-meanProj)*axis[c])+0.5)))
		hi[c] = int32(max(0, min(255, mean[c]+((maxProj-meanProj)*axis[c])+0.5)))
	}
	return lo, hi
}
