// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ltime

import "errors"

var (
	// ErrIllegalTimeArithmetic is returned by Time.Sub when the
	// minuend is strictly less than the subtrahend.
	ErrIllegalTimeArithmetic = errors.New("illegal time arithmetic")

	// ErrCouldNotDecode is returned when a byte string does not match
	// the expected fixed width for the target Kind.
	ErrCouldNotDecode = errors.New("could not decode logical time")

	// ErrCouldNotCreateLogicalTimeFactory is returned by ParseKind for
	// an unrecognised logicalTimeImplementationName.
	ErrCouldNotCreateLogicalTimeFactory = errors.New("could not create logical time factory")
)
