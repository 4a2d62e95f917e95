// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import "github.com/luxfi/openrti/ltime"

// Order is a message's delivery order discipline.
type Order uint8

const (
	// Receive is arrival-order delivery.
	Receive Order = iota
	// Timestamp is time-stamp-order delivery.
	Timestamp
)

func (o Order) String() string {
	if o == Timestamp {
		return "Timestamp"
	}
	return "Receive"
}

// Kind distinguishes the three message shapes the queue carries.
type Kind uint8

const (
	Update Kind = iota
	Interaction
	Delete
)

// Envelope is the message record: an opaque payload
// tagged with its sender, its order discipline, and — when
// timestamp-ordered — its logical time and an optional retraction
// handle naming this specific in-flight message.
type Envelope struct {
	Kind             Kind
	ClassName        string
	InteractionClass InteractionHandle
	Object           ObjectHandle
	Payload          []byte
	Sender           FederateHandle
	SentOrder        uint64
	Order            Order
	Timestamp        ltime.Time
	Retraction       RetractionHandle
	HasRetraction    bool
}
