// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package federation implements the federate directory, message
// queue, LBTS computation, and advance-grant state machine (C2–C5):
// the distributed time-management core of an HLA-style federation
// execution.
package federation

import "fmt"

// FederateHandle is an opaque, stable-for-life identifier for a
// joined federate.
type FederateHandle uint64

func (h FederateHandle) String() string { return fmt.Sprintf("federate-%d", uint64(h)) }

// ObjectHandle identifies a registered object instance.
type ObjectHandle uint64

func (h ObjectHandle) String() string { return fmt.Sprintf("object-%d", uint64(h)) }

// AttributeHandle identifies an object class attribute.
type AttributeHandle uint64

func (h AttributeHandle) String() string { return fmt.Sprintf("attribute-%d", uint64(h)) }

// InteractionHandle identifies an interaction class.
type InteractionHandle uint64

func (h InteractionHandle) String() string { return fmt.Sprintf("interaction-%d", uint64(h)) }

// RetractionHandle names one specific in-flight timestamped message.
// It is unique per sender.
type RetractionHandle uint64

func (h RetractionHandle) String() string { return fmt.Sprintf("retraction-%d", uint64(h)) }
