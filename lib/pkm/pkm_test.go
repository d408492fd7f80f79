// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package pkm

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeHeaderRoundTrip(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 7)
	}

	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, m, nil))
	require.Equal(t, HeaderSize+PayloadSize(5, 3), buf.Len())

	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, FormatETC2RGB, h.Format)
	require.Equal(t, 5, h.Width)
	require.Equal(t, 3, h.Height)
	require.Equal(t, PayloadSize(5, 3), buf.Len(), "payload should follow the header")
}

func TestEncodeDiscardsAlpha(t *testing.T) {
	opaque := image.NewRGBA(image.Rect(0, 0, 4, 4))
	translucent := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i+0], opaque.Pix[i+1], opaque.Pix[i+2], opaque.Pix[i+3] = 90, 140, 200, 0xFF
		translucent.Pix[i+0], translucent.Pix[i+1], translucent.Pix[i+2], translucent.Pix[i+3] = 90, 140, 200, 0x10
	}

	bufOpaque := &bytes.Buffer{}
	bufTranslucent := &bytes.Buffer{}
	require.NoError(t, Encode(bufOpaque, opaque, nil))
	require.NoError(t, Encode(bufTranslucent, translucent, nil))
	require.Equal(t, bufOpaque.Bytes(), bufTranslucent.Bytes())
}

func TestDecodeHeaderRejects(t *testing.T) {
	valid := func() []byte {
		m := image.NewUniform(color.Gray{Y: 0x80})
		buf := &bytes.Buffer{}
		err := Encode(buf, rgbaCopy(m, 8, 8), nil)
		require.NoError(t, err)
		return buf.Bytes()[:HeaderSize]
	}()

	corrupt := func(offset int, value byte) []byte {
		b := bytes.Clone(valid)
		b[offset] = value
		return b
	}

	testCases := []struct {
		name   string
		header []byte
	}{
		{"badMagic", corrupt(0, 'Q')},
		{"badVersion", corrupt(4, '3')},
		{"badVersionSuffix", corrupt(5, '1')},
		{"badFormat", corrupt(7, 0x02)},
		{"formatVersionMismatch", corrupt(7, byte(FormatETC1))},
		{"badRoundedWidth", corrupt(9, 0x09)},
		{"badRoundedHeight", corrupt(11, 0x09)},
	}
	for _, tc := range testCases {
		_, err := DecodeHeader(bytes.NewReader(tc.header))
		require.ErrorIs(t, err, ErrNotAPKMFile, "tc=%q", tc.name)
	}

	_, err := DecodeHeader(bytes.NewReader(valid[:7]))
	require.Error(t, err, "truncated header")

	_, err = DecodeHeader(bytes.NewReader(valid))
	require.NoError(t, err, "the uncorrupted header must still parse")
}

func rgbaCopy(src image.Image, width int, height int) image.Image {
	m := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			m.Set(x, y, src.At(x, y))
		}
	}
	return m
}
