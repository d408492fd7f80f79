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

const maxInt32 = int32(0x7FFF_FFFF)

// encoder holds one worker's per-block state. pixels is the current 4×4
// tile (stride 16), work is the decode target used to score candidate
// encodings, scratch backs edge-block extraction.
type encoder struct {
	pixels  [64]byte
	work    [64]byte
	scratch [64]byte
}

func (e *encoder) encode(speed Speed) uint64 {
	if speed == SpeedFastest {
		return e.encodeFastest()
	}

	// Reference path: encode with every strategy, keep the lowest weighted
	// squared error.
	bestCode := e.encodeSubBlocks()
	bestLoss := e.lossOf(bestCode)

	for _, code := range [3]uint64{e.encodePlanar(), e.encodeT(), e.encodeH()} {
		if loss := e.lossOf(code); bestLoss > loss {
			bestCode, bestLoss = code, loss
		}
	}
	return bestCode
}

// lossOf decodes code into e.work and sums the perceptually weighted squared
// error against the source pixels.
func (e *encoder) lossOf(code uint64) (loss int32) {
	decodeBlock(&e.work, code)
	for i := range 16 {
		j := 4 * i
		loss += texel.WeightedSqDist(
			e.pixels[j+0], e.pixels[j+1], e.pixels[j+2],
			e.work[j+0], e.work[j+1], e.work[j+2])
	}
	return loss
}

// ----------------
// Individual / differential sub-block modes.

// encodeSubBlocks splits the block into two 2×4 or 4×2 halves (both
// orientations are tried), represents each half by its quantized average
// color plus an intensity table, and keeps the lower-error orientation.
// Halves whose 5-bit averages differ by [-4, +3] per channel pack as one
// base plus a delta (differential); otherwise both pack as independent
// 4-bit colors (individual).
func (e *encoder) encodeSubBlocks() uint64 {
	bestCode, bestLoss := uint64(0), maxInt32

	for flip := range 2 {
		avg0 := e.halfAverage((2 * flip) + 0)
		avg1 := e.halfAverage((2 * flip) + 1)

		q0 := quantize555(avg0)
		q1 := quantize555(avg1)
		dR := q1[0] - q0[0]
		dG := q1[1] - q0[1]
		dB := q1[2] - q0[2]

		code := uint64(0)
		loss := int32(0)

		if (-4 <= dR) && (dR <= 3) &&
			(-4 <= dG) && (dG <= 3) &&
			(-4 <= dB) && (dB <= 3) {
			base0 := expand555(q0)
			base1 := expand555(q1)
			table0, indexes0, loss0 := e.searchHalf((2*flip)+0, &base0)
			table1, indexes1, loss1 := e.searchHalf((2*flip)+1, &base1)
			loss = loss0 + loss1

			code = 0 |
				(uint64(q0[0]) << 59) |
				(uint64(dR&7) << 56) |
				(uint64(q0[1]) << 51) |
				(uint64(dG&7) << 48) |
				(uint64(q0[2]) << 43) |
				(uint64(dB&7) << 40) |
				(uint64(table0) << 37) |
				(uint64(table1) << 34) |
				(1 << 33) | // Differential bit.
				(uint64(flip) << 32) |
				uint64(indexes1) |
				uint64(indexes0)

		} else {
			i0 := quantize444(avg0)
			i1 := quantize444(avg1)
			base0 := expand444(i0)
			base1 := expand444(i1)
			table0, indexes0, loss0 := e.searchHalf((2*flip)+0, &base0)
			table1, indexes1, loss1 := e.searchHalf((2*flip)+1, &base1)
			loss = loss0 + loss1

			code = 0 |
				(uint64(i0[0]) << 60) |
				(uint64(i1[0]) << 56) |
				(uint64(i0[1]) << 52) |
				(uint64(i1[1]) << 48) |
				(uint64(i0[2]) << 44) |
				(uint64(i1[2]) << 40) |
				(uint64(table0) << 37) |
				(uint64(table1) << 34) |
				(uint64(flip) << 32) |
				uint64(indexes1) |
				uint64(indexes0)
		}

		if bestLoss > loss {
			bestCode, bestLoss = code, loss
		}
	}
	return bestCode
}

func (e *encoder) halfAverage(orientation int) [3]float64 {
	sums := [3]int32{}
	for _, offset := range halfBlockOffsets[orientation] {
		sums[0] += int32(e.pixels[offset+0])
		sums[1] += int32(e.pixels[offset+1])
		sums[2] += int32(e.pixels[offset+2])
	}
	return [3]float64{
		float64(sums[0]) / 8,
		float64(sums[1]) / 8,
		float64(sums[2]) / 8,
	}
}

// searchHalf finds the intensity table minimizing the half-block's total
// weighted squared error, assigning each of its 8 pixels the nearest of the
// 4 modulated candidate colors. The returned indexes already sit in their
// final bitplane positions.
func (e *encoder) searchHalf(orientation int, base *[3]int32) (table uint32, indexes uint32, loss int32) {
	loss = maxInt32
	for t := range uint32(8) {
		tabIndexes, tabLoss := uint32(0), int32(0)

		for i, offset := range halfBlockOffsets[orientation] {
			bestJ, bestOneLoss := uint32(0), maxInt32
			for j := range uint32(4) {
				mod := int32(intensityModifiers[t][j])
				oneLoss := texel.WeightedSqDist(
					clamp8(base[0]+mod), clamp8(base[1]+mod), clamp8(base[2]+mod),
					e.pixels[int(offset)+0], e.pixels[int(offset)+1], e.pixels[int(offset)+2])
				if bestOneLoss > oneLoss {
					bestJ, bestOneLoss = j, oneLoss
				}
			}

			shift := halfBlockShifts[orientation][i]
			tabIndexes |= (bestJ & 2) << (shift + 0x0F)
			tabIndexes |= (bestJ & 1) << (shift + 0x00)
			tabLoss += bestOneLoss
		}

		if loss > tabLoss {
			table, indexes, loss = t, tabIndexes, tabLoss
		}
	}
	return table, indexes, loss
}

// ----------------
// T and H two-tone modes.

// colorPairs derives the three candidate base-color pairs the two-tone
// searches run over: the pixels at the luminance extremes, the left/right
// half averages and the top/bottom half averages.
func (e *encoder) colorPairs() [3][2][3]uint8 {
	minI, maxI := 0, 0
	minLum, maxLum := maxInt32, int32(-1)
	for i := range 16 {
		j := 4 * i
		lum := texel.Luminance(e.pixels[j+0], e.pixels[j+1], e.pixels[j+2])
		if minLum > lum {
			minLum, minI = lum, i
		}
		if maxLum < lum {
			maxLum, maxI = lum, i
		}
	}

	avg := func(orientation int) [3]uint8 {
		a := e.halfAverage(orientation)
		return [3]uint8{
			uint8(a[0] + 0.5),
			uint8(a[1] + 0.5),
			uint8(a[2] + 0.5),
		}
	}

	pixel := func(i int) [3]uint8 {
		j := 4 * i
		return [3]uint8{e.pixels[j+0], e.pixels[j+1], e.pixels[j+2]}
	}

	return [3][2][3]uint8{
		{pixel(minI), pixel(maxI)},
		{avg(0), avg(1)},
		{avg(2), avg(3)},
	}
}

// encodeT encodes the block in T mode: four paint colors, one standalone
// plus three derived from the second base color and a distance-table entry.
func (e *encoder) encodeT() uint64 {
	bestPair := [2][3]uint8{}
	bestSwap, bestWhich, bestIndexes, bestLoss := uint32(0), uint32(0), uint32(0), maxInt32

	for _, pair := range e.colorPairs() {
		rgb444 := [2][3]uint8{to444(pair[0]), to444(pair[1])}
		swap, which, indexes, loss := e.searchT(rgb444)
		if bestLoss > loss {
			bestPair, bestSwap, bestWhich, bestIndexes, bestLoss = rgb444, swap, which, indexes, loss
		}
	}

	if bestSwap > 0 {
		bestPair[0], bestPair[1] = bestPair[1], bestPair[0]
	}

	// T mode's idiosyncratic bit pattern: the red base color straddles the
	// opcode bits that must make the differential red field overflow.
	code := 0 |
		(uint64(bestPair[0][0]&0x0C) << 57) |
		(uint64(bestPair[0][0]&0x03) << 56) |
		(uint64(bestPair[0][1]) << 52) |
		(uint64(bestPair[0][2]) << 48) |
		(uint64(bestPair[1][0]) << 44) |
		(uint64(bestPair[1][1]) << 40) |
		(uint64(bestPair[1][2]) << 36) |
		(uint64(bestWhich&0x06) << 33) |
		(uint64(bestWhich&0x01) << 32) |
		(1 << 33) | // Differential bit.
		uint64(bestIndexes)

	baseHigh, deltaSign := overflowOpcodeBits(
		(code>>60)&1, (code>>59)&1, (code>>57)&1, (code>>56)&1)
	code |= baseHigh << 61
	code |= deltaSign << 58

	return code
}

func (e *encoder) searchT(rgb444 [2][3]uint8) (bestSwap, bestWhich, bestIndexes uint32, bestLoss int32) {
	bestLoss = maxInt32

	for swap := range uint32(2) {
		if swap > 0 {
			rgb444[0], rgb444[1] = rgb444[1], rgb444[0]
		}

		colors := [4][3]uint8{}
		colors[0] = expandRGB444(rgb444[0])
		colors[2] = expandRGB444(rgb444[1])

		for which := range uint32(8) {
			d := int32(distanceTable[which])
			for c := range 3 {
				colors[1][c] = clamp8(int32(colors[2][c]) + d)
				colors[3][c] = clamp8(int32(colors[2][c]) - d)
			}

			indexes, loss := e.assignPaintIndexes(&colors)
			if bestLoss > loss {
				bestSwap, bestWhich, bestIndexes, bestLoss = swap, which, indexes, loss
			}
		}
	}
	return bestSwap, bestWhich, bestIndexes, bestLoss
}

// encodeH encodes the block in H mode: two base colors, each split into a
// plus/minus pair by a distance-table entry. The distance index's low bit is
// not stored; the decoder reconstructs it from how the two base colors
// compare, so the packer reorders them to encode it.
func (e *encoder) encodeH() uint64 {
	bestPair := [2][3]uint8{}
	bestWhich, bestIndexes, bestLoss := uint32(0), uint32(0), maxInt32

	for _, pair := range e.colorPairs() {
		rgb444 := [2][3]uint8{to444(pair[0]), to444(pair[1])}
		sortColors444(&rgb444)
		which, indexes, loss := e.searchH(rgb444)
		if bestLoss > loss {
			bestPair, bestWhich, bestIndexes, bestLoss = rgb444, which, indexes, loss
		}
	}

	bestIndexes = reorderForParity(&bestPair, bestWhich, bestIndexes)

	// H mode's idiosyncratic bit pattern.
	code := 0 |
		(uint64(bestPair[0][0]) << 59) |
		(uint64(bestPair[0][1]&0x0E) << 55) |
		(uint64(bestPair[0][1]&0x01) << 52) |
		(uint64(bestPair[0][2]&0x08) << 48) |
		(uint64(bestPair[0][2]&0x07) << 47) |
		(uint64(bestPair[1][0]) << 43) |
		(uint64(bestPair[1][1]) << 39) |
		(uint64(bestPair[1][2]) << 35) |
		(uint64(bestWhich&0x04) << 32) |
		(uint64(bestWhich&0x02) << 31) |
		(1 << 33) | // Differential bit.
		uint64(bestIndexes)

	// The red field must not overflow, the green field must.
	code |= (((code >> 62) & 1) ^ 1) << 63
	baseHigh, deltaSign := overflowOpcodeBits(
		(code>>52)&1, (code>>51)&1, (code>>49)&1, (code>>48)&1)
	code |= baseHigh << 53
	code |= deltaSign << 50

	return code
}

func (e *encoder) searchH(rgb444 [2][3]uint8) (bestWhich, bestIndexes uint32, bestLoss int32) {
	bestLoss = maxInt32

	base0 := expandRGB444(rgb444[0])
	base1 := expandRGB444(rgb444[1])

	colors := [4][3]uint8{}
	for which := range uint32(8) {
		d := int32(distanceTable[which])
		for c := range 3 {
			colors[0][c] = clamp8(int32(base0[c]) + d)
			colors[1][c] = clamp8(int32(base0[c]) - d)
			colors[2][c] = clamp8(int32(base1[c]) + d)
			colors[3][c] = clamp8(int32(base1[c]) - d)
		}

		indexes, loss := e.assignPaintIndexes(&colors)
		if bestLoss > loss {
			bestWhich, bestIndexes, bestLoss = which, indexes, loss
		}
	}
	return bestWhich, bestIndexes, bestLoss
}

// assignPaintIndexes gives each of the 16 pixels the nearest of the four
// paint colors, returning the combined MSB/LSB index bitplanes and the total
// weighted squared error.
func (e *encoder) assignPaintIndexes(colors *[4][3]uint8) (indexes uint32, loss int32) {
	for i := range 16 {
		j := 4 * i
		bestJ, bestOneLoss := uint32(0), maxInt32
		for k := range uint32(4) {
			oneLoss := texel.WeightedSqDist(
				colors[k][0], colors[k][1], colors[k][2],
				e.pixels[j+0], e.pixels[j+1], e.pixels[j+2])
			if bestOneLoss > oneLoss {
				bestJ, bestOneLoss = k, oneLoss
			}
		}

		shift := wholeBlockShifts[i]
		indexes |= (bestJ & 2) << (shift + 0x0F)
		indexes |= (bestJ & 1) << (shift + 0x00)
		loss += bestOneLoss
	}
	return indexes, loss
}

// sortColors444 orders a pair of 4-bit colors so the first packs below the
// second, nudging one value when they are equal so the ordering (and with it
// H mode's reconstructed distance bit) stays well defined.
func sortColors444(a *[2][3]uint8) {
	c0 := pack444(a[0])
	c1 := pack444(a[1])

	if c0 < c1 {
		return
	} else if c0 > c1 {
		c0, c1 = c1, c0
	} else if c0 == 0 {
		c1 = c0 + 1
	} else {
		c0 = c1 - 1
	}

	a[0] = unpack444(c0)
	a[1] = unpack444(c1)
}

// reorderForParity makes the relative order of the two base colors encode
// the distance index's low bit. Swapping the bases exchanges paint colors
// {0,1} with {2,3}, which is an XOR of the index MSB plane.
func reorderForParity(a *[2][3]uint8, which uint32, indexes uint32) uint32 {
	c0 := pack444(a[0])
	c1 := pack444(a[1])

	if (c0 >= c1) == ((which & 1) == 1) {
		return indexes
	}

	a[0], a[1] = unpack444(c1), unpack444(c0)
	return 0xFFFF_0000 ^ indexes
}

// ----------------
// Planar mode.

// planarBasis spans the horizontal gradient, the vertical gradient and the
// constant term over the 4×4 sample grid; planarNormalInv is the
// precomputed inverse of the normal-equation matrix for that fixed
// geometry. Together they reduce the per-channel least-squares plane fit to
// a constant linear combination of three dot products.
var planarBasis = [3][16]float64{{
	+1.00, +0.75, +0.50, +0.25,
	+0.75, +0.50, +0.25, +0.00,
	+0.50, +0.25, +0.00, -0.25,
	+0.25, +0.00, -0.25, -0.50,
}, {
	+0.00, +0.25, +0.50, +0.75,
	+0.00, +0.25, +0.50, +0.75,
	+0.00, +0.25, +0.50, +0.75,
	+0.00, +0.25, +0.50, +0.75,
}, {
	+0.00, +0.00, +0.00, +0.00,
	+0.25, +0.25, +0.25, +0.25,
	+0.50, +0.50, +0.50, +0.50,
	+0.75, +0.75, +0.75, +0.75,
}}

var planarNormalInv = [3][3]float64{
	{+0.2875, -0.0125, -0.0125},
	{-0.0125, +0.4875, -0.3125},
	{-0.0125, -0.3125, +0.4875},
}

// fitPlane solves the least-squares plane for one channel, returning the
// origin, horizontal and vertical control values clamped to [0, 255].
func (e *encoder) fitPlane(channel int) (o, h, v float64) {
	dots := [3]float64{}
	for a := range 3 {
		sum := float64(0)
		for i := range 16 {
			sum += planarBasis[a][i] * float64(e.pixels[(4*i)+channel])
		}
		dots[a] = sum
	}

	x := [3]float64{}
	for a := range 3 {
		x[a] = (planarNormalInv[a][0] * dots[0]) +
			(planarNormalInv[a][1] * dots[1]) +
			(planarNormalInv[a][2] * dots[2])
	}

	return max(0, min(255, x[0])), max(0, min(255, x[1])), max(0, min(255, x[2]))
}

// encodePlanar encodes the block as three 6-7-6-bit control colors spanning
// a per-channel gradient plane.
func (e *encoder) encodePlanar() uint64 {
	o := [3]float64{}
	h := [3]float64{}
	v := [3]float64{}
	for channel := range 3 {
		o[channel], h[channel], v[channel] = e.fitPlane(channel)
	}

	oR := quantizePlanar(o[0], 0x3F)
	oG := quantizePlanar(o[1], 0x7F)
	oB := quantizePlanar(o[2], 0x3F)
	hR := quantizePlanar(h[0], 0x3F)
	hG := quantizePlanar(h[1], 0x7F)
	hB := quantizePlanar(h[2], 0x3F)
	vR := quantizePlanar(v[0], 0x3F)
	vG := quantizePlanar(v[1], 0x7F)
	vB := quantizePlanar(v[2], 0x3F)

	// Planar mode's idiosyncratic bit pattern.
	code := 0 |
		(uint64(oR) << 57) |
		(uint64(oG&0x40) << 50) |
		(uint64(oG&0x3F) << 49) |
		(uint64(oB&0x20) << 43) |
		(uint64(oB&0x18) << 40) |
		(uint64(oB&0x07) << 39) |
		(uint64(hR&0x3E) << 33) |
		(uint64(hR&0x01) << 32) |
		(uint64(hG) << 25) |
		(uint64(hB) << 19) |
		(uint64(vR) << 13) |
		(uint64(vG) << 6) |
		(uint64(vB) << 0) |
		(1 << 33) // Differential bit.

	// The red and green differential fields must not overflow; the blue
	// field must, and its free opcode bits are chosen per payload to do so.
	code |= (((code >> 62) & 1) ^ 1) << 63
	code |= (((code >> 54) & 1) ^ 1) << 55
	baseHigh, deltaSign := overflowOpcodeBits(
		(code>>44)&1, (code>>43)&1, (code>>41)&1, (code>>40)&1)
	code |= baseHigh << 45
	code |= deltaSign << 42

	return code
}

func quantizePlanar(v float64, maxQ int32) uint32 {
	return uint32(int32(((v * float64(maxQ)) / 255) + 0.5))
}

// ----------------
// Overflow opcode arithmetic.

// deltaOverflows reports whether a differential color field decodes outside
// [0, 31]: base5 is the 5-bit base value, delta3 the 3-bit two's-complement
// delta. The T, H and planar layouts exist only as this overflow, so their
// packers must make it fire; the sub-block differential packer must keep it
// from firing.
func deltaOverflows(base5 uint32, delta3 uint32) bool {
	d := int32(delta3 & 7)
	if d >= 4 {
		d -= 8
	}
	sum := int32(base5&31) + d
	return (sum < 0) || (sum > 31)
}

// overflowOpcodeBits picks a differential field's free opcode bits so that
// it overflows. a and b are the payload's two base bits, c and d its two
// delta bits; the returned values are the three free base bits (as one
// 3-bit field) and the delta's sign bit.
func overflowOpcodeBits(a, b, c, d uint64) (baseHigh uint64, deltaSign uint64) {
	base := uint32(0x1C | (a << 1) | b)
	delta := uint32((c << 1) | d)
	if deltaOverflows(base, delta) {
		return 7, 0
	}
	return 0, 1
}

// ----------------
// Fast classification.

type blockKind uint8

const (
	kindSubBlock = blockKind(0)
	kindTwoTone  = blockKind(1)
	kindGradient = blockKind(2)
)

// Classifier thresholds. These are tuning values: any deterministic choice
// produces a valid encoding, just not always the lowest-error one.
const (
	flatChannelRange  = 8
	halfChannelRange  = 16
	toneSpread        = 16 * 1000
	toneSeparation    = 48 * 1000
	gradientResidual  = 12
	gradientMinExtent = 24
)

func (e *encoder) encodeFastest() uint64 {
	switch e.classify() {
	case kindTwoTone:
		codeT := e.encodeT()
		codeH := e.encodeH()
		if e.lossOf(codeT) <= e.lossOf(codeH) {
			return codeT
		}
		return codeH

	case kindGradient:
		return e.encodePlanar()
	}
	return e.encodeSubBlocks()
}

// classify buckets the block into the coding strategy a cheap scan suggests:
// near-uniform blocks and blocks whose 2×4 or 4×2 halves are each
// near-uniform go to the sub-block modes, luminance-bimodal blocks to the
// two-tone modes, and blocks well explained by a linear ramp to planar.
func (e *encoder) classify() blockKind {
	lo := [3]int32{255, 255, 255}
	hi := [3]int32{}
	for i := range 16 {
		for c := range 3 {
			v := int32(e.pixels[(4*i)+c])
			lo[c] = min(lo[c], v)
			hi[c] = max(hi[c], v)
		}
	}
	if ((hi[0] - lo[0]) <= flatChannelRange) &&
		((hi[1] - lo[1]) <= flatChannelRange) &&
		((hi[2] - lo[2]) <= flatChannelRange) {
		return kindSubBlock
	}

	for flip := range 2 {
		if e.halfIsUniform((2*flip)+0) && e.halfIsUniform((2*flip)+1) {
			return kindSubBlock
		}
	}

	if e.isTwoTone() {
		return kindTwoTone
	}

	extent := max(hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])
	if (extent >= gradientMinExtent) && e.isGradient() {
		return kindGradient
	}

	return kindSubBlock
}

func (e *encoder) halfIsUniform(orientation int) bool {
	lo := [3]int32{255, 255, 255}
	hi := [3]int32{}
	for _, offset := range halfBlockOffsets[orientation] {
		for c := range 3 {
			v := int32(e.pixels[int(offset)+c])
			lo[c] = min(lo[c], v)
			hi[c] = max(hi[c], v)
		}
	}
	return ((hi[0] - lo[0]) <= halfChannelRange) &&
		((hi[1] - lo[1]) <= halfChannelRange) &&
		((hi[2] - lo[2]) <= halfChannelRange)
}

// isTwoTone splits the pixels around the mean luminance and accepts when
// both clusters are tight and clearly separated.
func (e *encoder) isTwoTone() bool {
	lums := [16]int32{}
	mean := int32(0)
	for i := range 16 {
		j := 4 * i
		lums[i] = texel.Luminance(e.pixels[j+0], e.pixels[j+1], e.pixels[j+2])
		mean += lums[i]
	}
	mean /= 16

	loMin, loMax := maxInt32, int32(-1)
	hiMin, hiMax := maxInt32, int32(-1)
	for _, lum := range lums {
		if lum < mean {
			loMin = min(loMin, lum)
			loMax = max(loMax, lum)
		} else {
			hiMin = min(hiMin, lum)
			hiMax = max(hiMax, lum)
		}
	}
	if (loMax < 0) || (hiMax < 0) {
		return false
	}
	return ((loMax - loMin) <= toneSpread) &&
		((hiMax - hiMin) <= toneSpread) &&
		((hiMin - loMax) >= toneSeparation)
}

// isGradient accepts when the per-channel least-squares planes reconstruct
// every pixel within a small residual.
func (e *encoder) isGradient() bool {
	for channel := range 3 {
		o, h, v := e.fitPlane(channel)
		dH := (h - o) / 4
		dV := (v - o) / 4
		for y := range 4 {
			for x := range 4 {
				want := o + (dH * float64(x)) + (dV * float64(y))
				got := float64(e.pixels[(16*y)+(4*x)+channel])
				if diff := want - got; (diff > gradientResidual) || (diff < -gradientResidual) {
					return false
				}
			}
		}
	}
	return true
}

// ----------------
// Quantization helpers and fixed tables.

func clamp8(v int32) uint8 {
	return uint8(max(0, min(255, v)))
}

func quantize555(avg [3]float64) [3]int32 {
	return [3]int32{
		int32(((avg[0] * 31) / 255) + 0.5),
		int32(((avg[1] * 31) / 255) + 0.5),
		int32(((avg[2] * 31) / 255) + 0.5),
	}
}

func quantize444(avg [3]float64) [3]int32 {
	return [3]int32{
		int32(((avg[0] * 15) / 255) + 0.5),
		int32(((avg[1] * 15) / 255) + 0.5),
		int32(((avg[2] * 15) / 255) + 0.5),
	}
}

func expand555(q [3]int32) [3]int32 {
	return [3]int32{
		int32(texel.Expand5(uint8(q[0]))),
		int32(texel.Expand5(uint8(q[1]))),
		int32(texel.Expand5(uint8(q[2]))),
	}
}

func expand444(q [3]int32) [3]int32 {
	return [3]int32{
		int32(texel.Expand4(uint8(q[0]))),
		int32(texel.Expand4(uint8(q[1]))),
		int32(texel.Expand4(uint8(q[2]))),
	}
}

func to444(c [3]uint8) [3]uint8 {
	return [3]uint8{texel.Quant4(c[0]), texel.Quant4(c[1]), texel.Quant4(c[2])}
}

func expandRGB444(c [3]uint8) [3]uint8 {
	return [3]uint8{texel.Expand4(c[0]), texel.Expand4(c[1]), texel.Expand4(c[2])}
}

func pack444(c [3]uint8) uint32 {
	return (uint32(c[0]) << 8) | (uint32(c[1]) << 4) | uint32(c[2])
}

func unpack444(packed uint32) [3]uint8 {
	return [3]uint8{
		uint8(15 & (packed >> 8)),
		uint8(15 & (packed >> 4)),
		uint8(15 & (packed >> 0)),
	}
}

// intensityModifiers is the sub-block modes' fixed modulation table, indexed
// by [table][stored pixel index].
var intensityModifiers = [8][4]int16{
	{2, 8, -2, -8},
	{5, 17, -5, -17},
	{9, 29, -9, -29},
	{13, 42, -13, -42},
	{18, 60, -18, -60},
	{24, 80, -24, -80},
	{33, 106, -33, -106},
	{47, 183, -47, -183},
}

// distanceTable is the T and H modes' fixed paint-color offset table.
var distanceTable = [8]int16{3, 6, 11, 16, 23, 32, 41, 64}

// Half-block geometry, by orientation:
//
//   - 0: 2×4 tall and thin,  not-flipped, left side.
//   - 1: 2×4 tall and thin,  not-flipped, right side.
//   - 2: 4×2 short and wide, yes-flipped, top side.
//   - 3: 4×2 short and wide, yes-flipped, bottom side.
//
// halfBlockOffsets holds byte offsets into the 64-byte tile, halfBlockShifts
// the matching LSB-plane bit positions (the MSB plane sits 16 bits higher).
var halfBlockOffsets = [4][8]uint8{
	{0x00, 0x10, 0x20, 0x30, 0x04, 0x14, 0x24, 0x34},
	{0x08, 0x18, 0x28, 0x38, 0x0C, 0x1C, 0x2C, 0x3C},
	{0x00, 0x10, 0x04, 0x14, 0x08, 0x18, 0x0C, 0x1C},
	{0x20, 0x30, 0x24, 0x34, 0x28, 0x38, 0x2C, 0x3C},
}

var halfBlockShifts = [4][8]uint32{
	{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	{0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F},
	{0x00, 0x01, 0x04, 0x05, 0x08, 0x09, 0x0C, 0x0D},
	{0x02, 0x03, 0x06, 0x07, 0x0A, 0x0B, 0x0E, 0x0F},
}

// wholeBlockShifts maps a raster-order pixel position to its LSB-plane bit
// position (the planes store pixels column-major).
var wholeBlockShifts = [16]uint32{
	0x00, 0x04, 0x08, 0x0C,
	0x01, 0x05, 0x09, 0x0D,
	0x02, 0x06, 0x0A, 0x0E,
	0x03, 0x07, 0x0B, 0x0F,
}
