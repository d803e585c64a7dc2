// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "errors"

var (
	// ErrAssetNotFound is returned by Context.Load when the image source
	// has no file with the requested name.
	ErrAssetNotFound = errors.New("surface: asset not found")

	// ErrAssetDecode is returned by Context.Load when a file exists but is
	// not a decodable image.
	ErrAssetDecode = errors.New("surface: asset is not a valid image")

	// ErrPixelBufferSize is returned by SetPixels when the buffer length
	// does not match the surface size.
	ErrPixelBufferSize = errors.New("surface: pixel buffer size mismatch")

	// ErrContextClosed is returned by Context.Load after Close.
	ErrContextClosed = errors.New("surface: context closed")
)
