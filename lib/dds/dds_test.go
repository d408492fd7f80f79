// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dds

import (
	"bytes"
	"image"
	"testing"

	"github.com/mauserzjeh/dxt"
	"github.com/stretchr/testify/require"

	"github.com/texturelab/blockpack/lib/texel"
)

func TestEncodeHeaderRoundTrip(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 5)
	}

	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, m, nil))
	require.Equal(t, HeaderSize+texel.EncodedLen(8, 4), buf.Len())

	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, FourCCDXT1, h.FourCC)
	require.Equal(t, 8, h.Width)
	require.Equal(t, 4, h.Height)
	require.Equal(t, texel.EncodedLen(8, 4), h.LinearSize)
	require.Equal(t, h.LinearSize, buf.Len(), "payload should follow the header")
}

// TestEncodePayloadDecodes feeds the payload to an independently written BC1
// decoder and checks the pixels come back close to the source.
func TestEncodePayloadDecodes(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i+0], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = 30, 180, 90, 0xFF
	}

	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, m, nil))

	h, err := DecodeHeader(buf)
	require.NoError(t, err)

	rgba, err := dxt.DecodeDXT1(buf.Bytes(), uint(h.Width), uint(h.Height))
	require.NoError(t, err)
	require.Len(t, rgba, 4*4*4)
	for i := 0; i < len(rgba); i += 4 {
		require.InDelta(t, 30, rgba[i+0], 8)
		require.InDelta(t, 180, rgba[i+1], 8)
		require.InDelta(t, 90, rgba[i+2], 8)
	}
}

func TestDecodeHeaderRejects(t *testing.T) {
	valid := func() []byte {
		buf := &bytes.Buffer{}
		err := Encode(buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil)
		require.NoError(t, err)
		return buf.Bytes()[:HeaderSize]
	}()

	corrupt := func(offset int, value byte) []byte {
		b := bytes.Clone(valid)
		b[offset] = value
		return b
	}

	_, err := DecodeHeader(bytes.NewReader(corrupt(0, 'X')))
	require.ErrorIs(t, err, ErrNotADDSFile)

	_, err = DecodeHeader(bytes.NewReader(corrupt(4, 0x7B)))
	require.ErrorIs(t, err, ErrNotADDSFile, "wrong header size field")

	_, err = DecodeHeader(bytes.NewReader(corrupt(80, 0x00)))
	require.ErrorIs(t, err, ErrUnsupportedDDS, "uncompressed pixel formats are not supported")

	_, err = DecodeHeader(bytes.NewReader(valid[:40]))
	require.Error(t, err, "truncated header")

	_, err = DecodeHeader(bytes.NewReader(valid))
	require.NoError(t, err, "the uncorrupted header must still parse")
}
