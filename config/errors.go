// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	ErrInvalidRTINode         = errors.New("config: rtinode must be a host:port address")
	ErrInvalidLogicalTimeKind = errors.New("config: unrecognised logicalTimeImplementationName")
	ErrInvalidCallbackModel   = errors.New("config: unrecognised callbackModel")
)
