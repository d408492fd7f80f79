// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalcSize(t *testing.T) {
	testCases := []struct {
		width  int
		height int
		want   int
	}{
		{1, 1, 8},
		{4, 4, 8},
		{5, 5, 32},
		{21, 32, 384},
		{0, 4, 0},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, CalcSize(tc.width, tc.height),
			"CalcSize(%d, %d)", tc.width, tc.height)
	}
}

func readU64BE(buf []byte) uint64 {
	return (uint64(buf[0]) << 56) |
		(uint64(buf[1]) << 48) |
		(uint64(buf[2]) << 40) |
		(uint64(buf[3]) << 32) |
		(uint64(buf[4]) << 24) |
		(uint64(buf[5]) << 16) |
		(uint64(buf[6]) << 8) |
		(uint64(buf[7]) << 0)
}

func solidRGBA(width int, height int, r, g, b uint8) []byte {
	pix := make([]byte, 4*width*height)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 0xFF
	}
	return pix
}

// requireDecodesWithin decodes one encoded block and checks every pixel's
// RGB channels against the source tile within tolerance.
func requireDecodesWithin(t *testing.T, pixels *[64]byte, code uint64, tolerance int) {
	t.Helper()
	work := [64]byte{}
	decodeBlock(&work, code)
	for i := range 16 {
		for c := range 3 {
			j := (4 * i) + c
			diff := int(pixels[j]) - int(work[j])
			if diff < 0 {
				diff = -diff
			}
			require.LessOrEqual(t, diff, tolerance,
				"pixel %d channel %d: got %d, want %d", i, c, work[j], pixels[j])
		}
	}
}

func tileOf(pix []byte) *[64]byte {
	tile := [64]byte{}
	copy(tile[:], pix)
	return &tile
}

func TestCompressSolid(t *testing.T) {
	pix := solidRGBA(8, 8, 200, 100, 50)
	compressed := Compress(pix, 8, 8)
	require.Len(t, compressed, 32)

	for i := 8; i < 32; i += 8 {
		require.Equal(t, compressed[0:8], compressed[i:i+8])
	}
	requireDecodesWithin(t, tileOf(pix[:64]), readU64BE(compressed), 8)
}

// redBlueRGBA builds a 4×4 block whose left half is pure red and right half
// pure blue.
func redBlueRGBA() []byte {
	pix := make([]byte, 4*16)
	for y := range 4 {
		for x := range 4 {
			i := (16 * y) + (4 * x)
			if x < 2 {
				pix[i+0] = 0xFF
			} else {
				pix[i+2] = 0xFF
			}
			pix[i+3] = 0xFF
		}
	}
	return pix
}

// TestRedBlueFastest: a block with a uniform left half and a uniform right
// half classifies as a sub-block encoding with a vertical split, and each
// internally uniform half takes intensity table 0.
func TestRedBlueFastest(t *testing.T) {
	pix := redBlueRGBA()
	compressed := CompressOptions(pix, 4, 4, &EncodeOptions{Speed: SpeedFastest})
	require.Len(t, compressed, 8)
	code := readU64BE(compressed)

	require.Zero(t, (code>>33)&1, "expected the individual layout")
	require.Zero(t, (code>>32)&1, "expected the not-flipped (vertical split) orientation")
	require.Zero(t, (code>>37)&7, "expected intensity table 0 for the left half")
	require.Zero(t, (code>>34)&7, "expected intensity table 0 for the right half")

	requireDecodesWithin(t, tileOf(pix), code, 4)
}

// TestRedBlueExhaustive: with the full mode search, the same block encodes
// losslessly (T mode represents two exact 4-bit colors).
func TestRedBlueExhaustive(t *testing.T) {
	pix := redBlueRGBA()
	compressed := Compress(pix, 4, 4)
	require.Len(t, compressed, 8)
	requireDecodesWithin(t, tileOf(pix), readU64BE(compressed), 0)
}

// TestGradientPlanar: a block that is linear in all three channels
// classifies as planar and reconstructs within quantization error.
func TestGradientPlanar(t *testing.T) {
	pix := make([]byte, 4*16)
	for y := range 4 {
		for x := range 4 {
			i := (16 * y) + (4 * x)
			pix[i+0] = uint8(40 + (10 * x) + (5 * y))
			pix[i+1] = uint8(60 + (8 * x) + (4 * y))
			pix[i+2] = uint8(30 + (6 * x) + (12 * y))
			pix[i+3] = 0xFF
		}
	}

	compressed := CompressOptions(pix, 4, 4, &EncodeOptions{Speed: SpeedFastest})
	require.Len(t, compressed, 8)
	code := readU64BE(compressed)

	require.NotZero(t, (code>>33)&1)
	require.False(t, deltaOverflows(uint32((code>>59)&31), uint32((code>>56)&7)))
	require.False(t, deltaOverflows(uint32((code>>51)&31), uint32((code>>48)&7)))
	require.True(t, deltaOverflows(uint32((code>>43)&31), uint32((code>>40)&7)),
		"expected the planar layout's blue field overflow")

	requireDecodesWithin(t, tileOf(pix), code, 8)
}

func TestDeltaOverflows(t *testing.T) {
	testCases := []struct {
		base5  uint32
		delta3 uint32
		want   bool
	}{
		{0, 0, false},
		{31, 0, false},
		{31, 1, true},
		{31, 3, true},
		{28, 3, false},
		{29, 3, true},
		{0, 7, true},  // Delta -1.
		{1, 7, false}, // Delta -1.
		{3, 4, true},  // Delta -4.
		{4, 4, false}, // Delta -4.
		{15, 3, false},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, deltaOverflows(tc.base5, tc.delta3),
			"deltaOverflows(%d, %d)", tc.base5, tc.delta3)
	}

	// Exhaustive check against an independently phrased rule: a positive
	// delta overflows past 31, a negative delta underflows past 0.
	for base := range uint32(32) {
		for delta := range uint32(8) {
			want := false
			if delta < 4 {
				want = (base + delta) > 31
			} else {
				want = base < (8 - delta)
			}
			require.Equal(t, want, deltaOverflows(base, delta),
				"deltaOverflows(%d, %d)", base, delta)
		}
	}
}

// TestOverflowOpcodeBits: for every combination of a field's four payload
// bits, the chosen free bits must make the field overflow. The T, H and
// planar layouts are unreachable without this.
func TestOverflowOpcodeBits(t *testing.T) {
	for payload := range uint64(16) {
		a := (payload >> 3) & 1
		b := (payload >> 2) & 1
		c := (payload >> 1) & 1
		d := (payload >> 0) & 1

		baseHigh, deltaSign := overflowOpcodeBits(a, b, c, d)
		base5 := uint32((baseHigh << 2) | (a << 1) | b)
		delta3 := uint32((deltaSign << 2) | (c << 1) | d)
		require.True(t, deltaOverflows(base5, delta3),
			"payload %04b: base %05b delta %03b", payload, base5, delta3)
	}
}

// TestModeDispatch encodes random blocks with each strategy and checks that
// the result decodes through the intended layout.
func TestModeDispatch(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	e := &encoder{}

	for range 64 {
		for i := range 16 {
			e.pixels[(4*i)+0] = uint8(rng.Intn(256))
			e.pixels[(4*i)+1] = uint8(rng.Intn(256))
			e.pixels[(4*i)+2] = uint8(rng.Intn(256))
			e.pixels[(4*i)+3] = 0xFF
		}

		fields := func(code uint64) (r, dr, g, dg, b, db uint32) {
			return uint32((code >> 59) & 31), uint32((code >> 56) & 7),
				uint32((code >> 51) & 31), uint32((code >> 48) & 7),
				uint32((code >> 43) & 31), uint32((code >> 40) & 7)
		}

		if code := e.encodeSubBlocks(); (code>>33)&1 != 0 {
			r, dr, g, dg, b, db := fields(code)
			require.False(t, deltaOverflows(r, dr), "differential sub-block leaked into T")
			require.False(t, deltaOverflows(g, dg), "differential sub-block leaked into H")
			require.False(t, deltaOverflows(b, db), "differential sub-block leaked into planar")
		}

		{
			r, dr, _, _, _, _ := fields(e.encodeT())
			require.True(t, deltaOverflows(r, dr), "T block missed its red overflow")
		}
		{
			r, dr, g, dg, _, _ := fields(e.encodeH())
			require.False(t, deltaOverflows(r, dr), "H block leaked into T")
			require.True(t, deltaOverflows(g, dg), "H block missed its green overflow")
		}
		{
			r, dr, g, dg, b, db := fields(e.encodePlanar())
			require.False(t, deltaOverflows(r, dr), "planar block leaked into T")
			require.False(t, deltaOverflows(g, dg), "planar block leaked into H")
			require.True(t, deltaOverflows(b, db), "planar block missed its blue overflow")
		}
	}
}

// TestEdgeClamp compresses a 6×6 image held in a tightly sized buffer: the
// edge blocks replicate in-bound pixels, so a uniform image produces four
// identical blocks.
func TestEdgeClamp(t *testing.T) {
	pix := solidRGBA(6, 6, 160, 32, 240)
	require.Len(t, pix, 144)

	compressed := Compress(pix, 6, 6)
	require.Len(t, compressed, 32)
	for i := 8; i < 32; i += 8 {
		require.Equal(t, compressed[0:8], compressed[i:i+8])
	}
}

func TestDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pix := make([]byte, 4*23*18)
	for i := range pix {
		pix[i] = uint8(rng.Intn(256))
	}

	for _, speed := range []Speed{SpeedDefault, SpeedFastest} {
		options := &EncodeOptions{Speed: speed}
		a := CompressOptions(pix, 23, 18, options)
		b := CompressOptions(pix, 23, 18, options)
		require.NotEmpty(t, a)
		require.True(t, bytes.Equal(a, b), "speed %d: repeated runs differ", speed)
	}
}

func TestCompressBadArguments(t *testing.T) {
	require.Nil(t, Compress(nil, 4, 4))
	require.Nil(t, Compress(make([]byte, 63), 4, 4))
	require.Nil(t, Compress(make([]byte, 64), 0, 4))
	require.Nil(t, Compress(make([]byte, 64), 4, -1))
}
