// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"io"
	"io/fs"
	"path"
)

// ImageSource opens image files by name.
type ImageSource interface {
	// Open returns the encoded file contents. A missing file must be
	// reported with an error matching fs.ErrNotExist.
	Open(name string) (io.ReadCloser, error)
}

// FSSource reads images from a file system, prefixing every name with
// Prefix.
type FSSource struct {
	FS     fs.FS
	Prefix string
}

// Open implements ImageSource.
func (s FSSource) Open(name string) (io.ReadCloser, error) {
	if s.Prefix != "" {
		name = path.Join(s.Prefix, name)
	}
	return s.FS.Open(name)
}
