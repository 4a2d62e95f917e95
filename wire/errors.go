// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "errors"

var (
	// ErrShortBuffer is returned when a frame ends before a fixed-width
	// field can be fully read.
	ErrShortBuffer = errors.New("wire: buffer too short")
	// ErrFrameTooLarge is returned when a frame's declared payload
	// length would overflow the maximum frame size.
	ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")
)
