// Copyright 2025 The Blockpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package pkm implements the PKM container format for ETC textures: a
// 16-byte header followed by the compressed payload.
package pkm

import (
	"errors"
	"image"
	"io"

	"github.com/texturelab/blockpack/lib/etc2"
	"github.com/texturelab/blockpack/lib/texel"
)

// Magic is the byte string prefix of every PKM image file.
const Magic = "PKM "

// HeaderSize is the byte length of the PKM header.
const HeaderSize = 16

var (
	ErrBadArgument     = errors.New("pkm: bad argument")
	ErrNotAPKMFile     = errors.New("pkm: not a PKM file")
	ErrImageIsTooLarge = errors.New("pkm: image is too large")
)

// Format is the PKM header's texture format field. This module only writes
// FormatETC2RGB, but the header reader recognizes the others.
type Format uint8

const (
	FormatETC1            = Format(0x00)
	FormatETC2RGB         = Format(0x01)
	FormatETC2RGBA8       = Format(0x03)
	FormatETC2RGBA1       = Format(0x04)
	FormatETC2R11Unsigned = Format(0x05)
	FormatETC2RG11        = Format(0x06)
	FormatETC2R11Signed   = Format(0x07)
	FormatETC2RG11Signed  = Format(0x08)
	FormatETC2SRGB        = Format(0x09)
	FormatETC2SRGBA8      = Format(0x0A)
	FormatETC2SRGBA1      = Format(0x0B)
)

func (f Format) String() string {
	switch f {
	case FormatETC1:
		return "ETC1"
	case FormatETC2RGB:
		return "ETC2-RGB"
	case FormatETC2RGBA8:
		return "ETC2-RGBA8"
	case FormatETC2RGBA1:
		return "ETC2-RGBA1"
	case FormatETC2R11Unsigned:
		return "ETC2-R11"
	case FormatETC2RG11:
		return "ETC2-RG11"
	case FormatETC2R11Signed:
		return "ETC2-R11-signed"
	case FormatETC2RG11Signed:
		return "ETC2-RG11-signed"
	case FormatETC2SRGB:
		return "ETC2-sRGB"
	case FormatETC2SRGBA8:
		return "ETC2-sRGBA8"
	case FormatETC2SRGBA1:
		return "ETC2-sRGBA1"
	}
	return "invalid"
}

// etcVersion returns the header version digit the format requires, or 0 for
// an unrecognized format.
func (f Format) etcVersion() int {
	switch {
	case f == FormatETC1:
		return 1
	case (f >= FormatETC2RGB) && (f <= FormatETC2SRGBA1) && (f != 0x02):
		return 2
	}
	return 0
}

// Header is a parsed PKM file header. Width and Height are the image's
// actual dimensions, before rounding up to whole 4×4 blocks.
type Header struct {
	Format Format
	Width  int
	Height int
}

// DecodeHeader reads and validates a PKM header from r, leaving r positioned
// at the start of the compressed payload.
func DecodeHeader(r io.Reader) (Header, error) {
	buf := [HeaderSize]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	} else if (buf[0] != Magic[0]) ||
		(buf[1] != Magic[1]) ||
		(buf[2] != Magic[2]) ||
		(buf[3] != Magic[3]) ||
		(buf[5] != '0') ||
		(buf[6] != 0x00) {
		return Header{}, ErrNotAPKMFile
	}

	version := 0
	switch buf[4] {
	case '1', '2':
		version = int(buf[4] - '0')
	default:
		return Header{}, ErrNotAPKMFile
	}

	format := Format(buf[7])
	if format.etcVersion() != version {
		return Header{}, ErrNotAPKMFile
	}

	roundedUpWidth := (int(buf[8]) << 8) | int(buf[9])
	roundedUpHeight := (int(buf[10]) << 8) | int(buf[11])
	width := (int(buf[12]) << 8) | int(buf[13])
	height := (int(buf[14]) << 8) | int(buf[15])

	if (((width + 3) &^ 3) != roundedUpWidth) ||
		(((height + 3) &^ 3) != roundedUpHeight) {
		return Header{}, ErrNotAPKMFile
	}

	return Header{
		Format: format,
		Width:  width,
		Height: height,
	}, nil
}

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	Speed etc2.Speed
}

// Encode writes src to w as a PKM file holding ETC2-RGB compressed texture
// data. Alpha is discarded.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	if (w == nil) || (src == nil) {
		return ErrBadArgument
	}
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW > 65532) || (bH > 65532) {
		return ErrImageIsTooLarge
	}

	buf := [HeaderSize]byte{}
	copy(buf[:4], Magic)
	buf[0x04] = '2'
	buf[0x05] = '0'
	buf[0x06] = 0x00
	buf[0x07] = byte(FormatETC2RGB)

	roundedUpW := (bW + 3) &^ 3
	roundedUpH := (bH + 3) &^ 3
	buf[0x08] = uint8(roundedUpW >> 8)
	buf[0x09] = uint8(roundedUpW >> 0)
	buf[0x0A] = uint8(roundedUpH >> 8)
	buf[0x0B] = uint8(roundedUpH >> 0)
	buf[0x0C] = uint8(bW >> 8)
	buf[0x0D] = uint8(bW >> 0)
	buf[0x0E] = uint8(bH >> 8)
	buf[0x0F] = uint8(bH >> 0)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	etcOptions := &etc2.EncodeOptions{}
	if options != nil {
		etcOptions.Speed = options.Speed
	}
	return etc2.Encode(w, src, etcOptions)
}

// PayloadSize returns the compressed payload size in bytes that follows the
// header of an ETC2-RGB (or ETC1) PKM file with the given dimensions.
func PayloadSize(width int, height int) int {
	return texel.EncodedLen(width, height)
}
