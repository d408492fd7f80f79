// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dds implements the DDS (DirectDraw Surface) container format for
// BC-compressed textures: a 4-byte magic and a 124-byte header followed by
// the compressed payload.
package dds

import (
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/texturelab/blockpack/lib/bc1"
	"github.com/texturelab/blockpack/lib/texel"
)

// Magic is the byte string prefix of every DDS file.
const Magic = "DDS "

// HeaderSize is the byte length of the DDS header, including the magic.
const HeaderSize = 4 + 124

var (
	ErrBadArgument     = errors.New("dds: bad argument")
	ErrNotADDSFile     = errors.New("dds: not a DDS file")
	ErrUnsupportedDDS  = errors.New("dds: unsupported DDS variant")
	ErrImageIsTooLarge = errors.New("dds: image is too large")
)

// Header field flags and caps, per the DDS_HEADER documentation.
const (
	flagCaps        = 0x0000_0001
	flagHeight      = 0x0000_0002
	flagWidth       = 0x0000_0004
	flagPixelFormat = 0x0000_1000
	flagLinearSize  = 0x0008_0000

	pixelFormatFourCC = 0x0000_0004

	capsTexture = 0x0000_1000
)

// FourCCDXT1 identifies BC1 texture data in the header's pixel format.
const FourCCDXT1 = "DXT1"

// Header is a parsed DDS file header, reduced to the fields this module
// cares about.
type Header struct {
	FourCC     string
	Width      int
	Height     int
	LinearSize int
}

// DecodeHeader reads and validates a DDS header from r, leaving r positioned
// at the start of the texture payload. Only FourCC-compressed variants are
// accepted.
func DecodeHeader(r io.Reader) (Header, error) {
	buf := [HeaderSize]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	if string(buf[0:4]) != Magic {
		return Header{}, ErrNotADDSFile
	}

	u32 := func(offset int) uint32 {
		return binary.LittleEndian.Uint32(buf[offset:])
	}

	if u32(4) != 124 {
		return Header{}, ErrNotADDSFile
	}
	if u32(76) != 32 { // Pixel format struct size.
		return Header{}, ErrNotADDSFile
	}
	if u32(80)&pixelFormatFourCC == 0 {
		return Header{}, ErrUnsupportedDDS
	}

	return Header{
		FourCC:     string(buf[84:88]),
		Height:     int(u32(12)),
		Width:      int(u32(16)),
		LinearSize: int(u32(20)),
	}, nil
}

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	Endpoints bc1.EndpointMode
}

// Encode writes src to w as a DDS file holding BC1 compressed texture data.
// Pixels with alpha below bc1.AlphaThreshold become punch-through
// transparent.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	if (w == nil) || (src == nil) {
		return ErrBadArgument
	}
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	linearSize := texel.EncodedLen(bW, bH)
	if linearSize == 0 {
		return ErrBadArgument
	}
	if (bW > 0x7FFF_FFFF) || (bH > 0x7FFF_FFFF) {
		return ErrImageIsTooLarge
	}

	buf := [HeaderSize]byte{}
	copy(buf[0:4], Magic)
	put := func(offset int, v uint32) {
		binary.LittleEndian.PutUint32(buf[offset:], v)
	}

	put(4, 124)
	put(8, flagCaps|flagHeight|flagWidth|flagPixelFormat|flagLinearSize)
	put(12, uint32(bH))
	put(16, uint32(bW))
	put(20, uint32(linearSize))
	put(76, 32)
	put(80, pixelFormatFourCC)
	copy(buf[84:88], FourCCDXT1)
	put(108, capsTexture)

	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	bcOptions := &bc1.EncodeOptions{}
	if options != nil {
		bcOptions.Endpoints = options.Endpoints
	}
	return bc1.Encode(w, src, bcOptions)
}
